package service

import (
	"time"

	"i4.energy/across/tata/telemetry"
)

// Configuration is the device configuration. It is loaded once; only an
// authenticated remote service command changes ServiceEnabled afterwards.
type Configuration struct {
	// PhoneNumber is the paired phone. It receives alerts and boot calls,
	// and is the only caller whose calls are answered.
	PhoneNumber string `yaml:"phone_number"`
	// SMSPassword authenticates remote commands.
	SMSPassword string `yaml:"sms_password"`

	// ServiceEnabled turns the periodic battery and location check on.
	ServiceEnabled bool `yaml:"service_enabled"`
	// LocatorPollCount bounds the polls of one location attempt.
	LocatorPollCount   int `yaml:"locator_poll_count"`
	CheckPeriodSeconds int `yaml:"check_period_seconds"`

	CallAfterBoot bool `yaml:"call_after_boot"`
	// DebugAlerts sends parking and theft records to the paired phone.
	DebugAlerts   bool `yaml:"debug_alerts"`
	BatteryAlerts bool `yaml:"battery_alerts"`
	DetectParking bool `yaml:"detect_parking"`

	// KeepNSMS is how many handled messages are kept in module storage.
	KeepNSMS int `yaml:"keep_n_sms"`

	APN            string `yaml:"apn"`
	LocationServer string `yaml:"location_server"`
}

// DefaultConfiguration returns the settings used when a key is not
// configured.
func DefaultConfiguration() Configuration {
	return Configuration{
		ServiceEnabled:     true,
		LocatorPollCount:   30,
		CheckPeriodSeconds: 600,
		CallAfterBoot:      false,
		DebugAlerts:        false,
		BatteryAlerts:      true,
		DetectParking:      true,
		KeepNSMS:           10,
		APN:                telemetry.DefaultAPN,
		LocationServer:     telemetry.DefaultLocationServer,
	}
}

// CheckPeriod is CheckPeriodSeconds as a duration.
func (c Configuration) CheckPeriod() time.Duration {
	return time.Duration(c.CheckPeriodSeconds) * time.Second
}
