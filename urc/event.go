// Package urc decodes unsolicited result codes from the radio module and
// fans them out to subscribers.
package urc

import (
	"strconv"
	"strings"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/hexstr"
)

// Kind tags an Event.
type Kind int

const (
	Ring Kind = iota + 1
	CallReady
	SMSReady
	Ready
	NormalPowerDown
	UnderVoltagePowerDown
	UnderVoltageWarning
	OverVoltagePowerDown
	OverVoltageWarning
	ChargeOnlyMode
	BearerDeactivated
	PDPDeactivated
	CallerID
	NewMessage
	PinStatus
)

var kindNames = map[Kind]string{
	Ring:                  "ring",
	CallReady:             "call-ready",
	SMSReady:              "sms-ready",
	Ready:                 "ready",
	NormalPowerDown:       "normal-power-down",
	UnderVoltagePowerDown: "under-voltage-power-down",
	UnderVoltageWarning:   "under-voltage-warning",
	OverVoltagePowerDown:  "over-voltage-power-down",
	OverVoltageWarning:    "over-voltage-warning",
	ChargeOnlyMode:        "charge-only-mode",
	BearerDeactivated:     "bearer-deactivated",
	PDPDeactivated:        "pdp-deactivated",
	CallerID:              "caller-id",
	NewMessage:            "new-message",
	PinStatus:             "pin-status",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a decoded unsolicited notification. Only the fields belonging to
// Kind are set.
type Event struct {
	Kind Kind

	// CallerID
	Number     string
	NumberType int

	// NewMessage
	Storage string
	Index   int

	// PinStatus
	Code string
}

var plain = map[string]Kind{
	at.UrcCall:                Ring,
	at.UrcCallReady:           CallReady,
	at.UrcSMSReady:            SMSReady,
	at.UrcReady:               Ready,
	at.UrcNormalPowerDown:     NormalPowerDown,
	at.UrcUnderVoltageDown:    UnderVoltagePowerDown,
	at.UrcUnderVoltageWarning: UnderVoltageWarning,
	at.UrcOverVoltageDown:     OverVoltagePowerDown,
	at.UrcOverVoltageWarning:  OverVoltageWarning,
	at.UrcChargeOnly:          ChargeOnlyMode,
	at.UrcBearerDeact:         BearerDeactivated,
	at.UrcPDPDeact:            PDPDeactivated,
}

// Parse decodes line. It reports false for lines that are not unsolicited
// notifications and for notifications with a malformed payload.
func Parse(line string) (Event, bool) {
	if kind, ok := plain[line]; ok {
		return Event{Kind: kind}, true
	}

	switch {
	case strings.HasPrefix(line, at.UrcCallerID):
		args := at.SplitArgs(line[len(at.UrcCallerID):])
		if len(args) < 2 {
			return Event{}, false
		}
		typ, err := strconv.Atoi(args[1])
		if err != nil {
			return Event{}, false
		}
		// A withheld number arrives empty and is still a call to reject.
		return Event{Kind: CallerID, Number: callerNumber(args[0]), NumberType: typ}, true

	case strings.HasPrefix(line, at.UrcNewMsg):
		args := at.SplitArgs(line[len(at.UrcNewMsg):])
		if len(args) != 2 || args[0] == "" {
			return Event{}, false
		}
		index, err := strconv.Atoi(args[1])
		if err != nil || index < 0 {
			return Event{}, false
		}
		return Event{Kind: NewMessage, Storage: args[0], Index: index}, true

	case strings.HasPrefix(line, at.UrcPinStatus):
		code := strings.TrimSpace(line[len(at.UrcPinStatus):])
		if code == "" {
			return Event{}, false
		}
		return Event{Kind: PinStatus, Code: code}, true
	}

	return Event{}, false
}

// callerNumber undoes the UCS2 hex encoding some firmware applies to +CLIP
// numbers while the UCS2 character set is selected. Text that does not
// decode to a dialable number is returned unchanged, so plain digits
// survive.
func callerNumber(s string) string {
	decoded, err := hexstr.DecodeUCS2(s)
	if err != nil || decoded == "" {
		return s
	}
	for _, r := range decoded {
		if !strings.ContainsRune("+0123456789*#", r) {
			return s
		}
	}
	return decoded
}
