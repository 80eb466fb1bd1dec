// Package network brings the module up and registered on the network.
package network

import (
	"time"

	"i4.energy/across/tata/at"
)

// EchoOff disables command echo (ATE0).
type EchoOff struct{ at.Empty }

func (EchoOff) Encode() string { return at.Execute("E0") }

// Attention is the liveness check (AT).
type Attention struct{ at.Empty }

func (Attention) Encode() string         { return at.Execute("") }
func (Attention) Timeout() time.Duration { return 5 * time.Second }

// Functionality reads the phone functionality level (AT+CFUN?). 1 is full
// functionality.
type Functionality struct{}

func (Functionality) Encode() string { return at.Read("+CFUN") }

func (Functionality) Decode(raw string) (int, error) {
	f, err := at.Fields(raw, "+CFUN")
	if err != nil {
		return 0, err
	}
	return at.Int(f, 0)
}

// SlowClock reads the low power clock mode (AT+CSCLK?).
type SlowClock struct{}

func (SlowClock) Encode() string { return at.Read("+CSCLK") }

func (SlowClock) Decode(raw string) (int, error) {
	f, err := at.Fields(raw, "+CSCLK")
	if err != nil {
		return 0, err
	}
	return at.Int(f, 0)
}

// RegistrationStatus is the <stat> of +CGREG.
type RegistrationStatus int

const (
	NotRegistered RegistrationStatus = iota
	Registered
	Searching
	Denied
	Unknown
	RegisteredRoaming
)

func (s RegistrationStatus) String() string {
	switch s {
	case NotRegistered:
		return "not registered"
	case Registered:
		return "registered"
	case Searching:
		return "searching"
	case Denied:
		return "denied"
	case RegisteredRoaming:
		return "registered, roaming"
	}
	return "unknown"
}

// Registration reads the GPRS network registration (AT+CGREG?).
type Registration struct{}

func (Registration) Encode() string { return at.Read("+CGREG") }

type RegistrationInfo struct {
	Mode   int
	Status RegistrationStatus
	// LAC and CellID are only reported with Mode 2.
	LAC    string
	CellID string
}

// Registered reports whether the module is on its home or a roaming network.
func (r RegistrationInfo) Registered() bool {
	return r.Status == Registered || r.Status == RegisteredRoaming
}

func (Registration) Decode(raw string) (RegistrationInfo, error) {
	var r RegistrationInfo
	f, err := at.Fields(raw, "+CGREG")
	if err != nil {
		return r, err
	}
	if r.Mode, err = at.Int(f, 0); err != nil {
		return r, err
	}
	stat, err := at.Int(f, 1)
	if err != nil {
		return r, err
	}
	r.Status = RegistrationStatus(stat)
	if len(f) > 3 {
		r.LAC, r.CellID = f[2], f[3]
	}
	return r, nil
}

// PINStatus reads the SIM PIN state (AT+CPIN?).
type PINStatus struct{}

func (PINStatus) Encode() string         { return at.Read("+CPIN") }
func (PINStatus) Timeout() time.Duration { return 5 * time.Second }

func (PINStatus) Decode(raw string) (string, error) {
	f, err := at.Fields(raw, "+CPIN")
	if err != nil {
		return "", err
	}
	return f[0], nil
}

// PINReady is the PINStatus of a SIM that needs no PIN.
const PINReady = "READY"

// SignalQuality reads the signal quality report (AT+CSQ).
type SignalQuality struct{}

func (SignalQuality) Encode() string { return at.Execute("+CSQ") }

type Signal struct {
	// RSSI is 0..31, 99 when unknown.
	RSSI int
	BER  int
}

// DBm converts RSSI to dBm. It reports false when the RSSI is unknown.
func (s Signal) DBm() (int, bool) {
	if s.RSSI < 0 || s.RSSI > 31 {
		return 0, false
	}
	return -113 + 2*s.RSSI, true
}

func (SignalQuality) Decode(raw string) (Signal, error) {
	var s Signal
	f, err := at.Fields(raw, "+CSQ")
	if err != nil {
		return s, err
	}
	if s.RSSI, err = at.Int(f, 0); err != nil {
		return s, err
	}
	if s.BER, err = at.Int(f, 1); err != nil {
		return s, err
	}
	return s, nil
}

// Operator reads the selected operator (AT+COPS?).
type Operator struct{}

func (Operator) Encode() string { return at.Read("+COPS") }

type OperatorInfo struct {
	Mode   int
	Format int
	Name   string
}

func (Operator) Decode(raw string) (OperatorInfo, error) {
	var o OperatorInfo
	f, err := at.Fields(raw, "+COPS")
	if err != nil {
		return o, err
	}
	if o.Mode, err = at.Int(f, 0); err != nil {
		return o, err
	}
	if len(f) > 2 {
		if o.Format, err = at.Int(f, 1); err != nil {
			return o, err
		}
		o.Name = f[2]
	}
	return o, nil
}
