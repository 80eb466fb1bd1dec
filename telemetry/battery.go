package telemetry

import "i4.energy/across/tata/at"

// ChargeStatus is the charging state reported by AT+CBC.
type ChargeStatus int

const (
	NotCharging ChargeStatus = iota
	Charging
	ChargingFinished
)

// BatteryCharge reads the battery state (AT+CBC).
type BatteryCharge struct{}

func (BatteryCharge) Encode() string { return at.Execute("+CBC") }

type Charge struct {
	Status ChargeStatus
	// Level is the charge in percent.
	Level int
	// Voltage is in millivolts.
	Voltage int
}

func (BatteryCharge) Decode(raw string) (Charge, error) {
	var c Charge
	f, err := at.Fields(raw, "+CBC")
	if err != nil {
		return c, err
	}
	status, err := at.Int(f, 0)
	if err != nil {
		return c, err
	}
	c.Status = ChargeStatus(status)
	if c.Level, err = at.Int(f, 1); err != nil {
		return c, err
	}
	if c.Voltage, err = at.Int(f, 2); err != nil {
		return c, err
	}
	return c, nil
}
