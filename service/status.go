package service

import (
	"time"

	"i4.energy/across/tata/geo"
)

// DeviceStatus is the state the orchestrator keeps between checks. It
// lives in memory only.
type DeviceStatus struct {
	// LastBigLocationChange is the fix time (unix ms) of the last
	// significant move.
	LastBigLocationChange int64
	Location              *geo.Location
	ParkLocation          *geo.Location
	// Battery is the charge level, 0..1.
	Battery float32
	// LastBatteryAlert is the board uptime of the last battery alert.
	LastBatteryAlert time.Duration
	BatteryAlerted   bool
}

// Snapshot is a copy of the orchestrator state for reporting.
type Snapshot struct {
	ServiceEnabled bool          `json:"service_enabled"`
	DetectParking  bool          `json:"detect_parking"`
	DebugAlerts    bool          `json:"debug_alerts"`
	BatteryAlerts  bool          `json:"battery_alerts"`
	PhoneNumber    string        `json:"phone_number"`
	Battery        float32       `json:"battery"`
	Location       *geo.Location `json:"location,omitempty"`
	ParkLocation   *geo.Location `json:"park_location,omitempty"`
	LastBigMove    int64         `json:"last_big_location_change"`
	Uptime         string        `json:"uptime"`
}

func (s *Service) snapshot() Snapshot {
	snap := Snapshot{
		ServiceEnabled: s.cfg.ServiceEnabled,
		DetectParking:  s.cfg.DetectParking,
		DebugAlerts:    s.cfg.DebugAlerts,
		BatteryAlerts:  s.cfg.BatteryAlerts,
		PhoneNumber:    s.cfg.PhoneNumber,
		Battery:        s.status.Battery,
		LastBigMove:    s.status.LastBigLocationChange,
		Uptime:         s.board.Uptime().Truncate(time.Second).String(),
	}
	if l := s.status.Location; l != nil {
		loc := *l
		snap.Location = &loc
	}
	if p := s.status.ParkLocation; p != nil {
		park := *p
		snap.ParkLocation = &park
	}
	return snap
}
