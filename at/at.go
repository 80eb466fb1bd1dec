package at

const (
	// Terminal Control
	CR     = "\r"
	CRLF   = "\r\n"
	Prompt = "> "
	CtrlZ  = "\x1A"
	Esc    = "\x1B"

	// Response Codes
	OK         = "OK"
	ERROR      = "ERROR"
	NoCarrier  = "NO CARRIER"
	NoDialtone = "NO DIALTONE"
	Busy       = "BUSY"
	NoAnswer   = "NO ANSWER"
	CmeError   = "+CME ERROR:"
	CmsError   = "+CMS ERROR:"

	// URCs (Unsolicited Result Codes)
	UrcNewMsg              = "+CMTI:"
	UrcCallerID            = "+CLIP:"
	UrcCall                = "RING"
	UrcCallReady           = "Call Ready"
	UrcSMSReady            = "SMS Ready"
	UrcReady               = "RDY"
	UrcNormalPowerDown     = "NORMAL POWER DOWN"
	UrcUnderVoltageDown    = "UNDER-VOLTAGE POWER DOWN"
	UrcUnderVoltageWarning = "UNDER-VOLTAGE WARNNING"
	UrcOverVoltageDown     = "OVER-VOLTAGE POWER DOWN"
	UrcOverVoltageWarning  = "OVER-VOLTAGE WARNNING"
	UrcChargeOnly          = "CHARGE-ONLY MODE"
	UrcBearerDeact         = "+SAPBR 1: DEACT"
	UrcPDPDeact            = "+PDP: DEACT"

	// Responses that double as URCs when no command is in flight
	UrcPinStatus = "+CPIN:"
)

type ResponseType int

const (
	TypeFinal  ResponseType = iota // OK, ERROR
	TypeURC                        // Asynchronous notifications
	TypeData                       // Intermediate command output (+CSQ: ...)
	TypePrompt                     // SMS input prompt
)

func (t ResponseType) String() string {
	switch t {
	case TypeFinal:
		return "final"
	case TypeURC:
		return "urc"
	case TypeData:
		return "data"
	case TypePrompt:
		return "prompt"
	}
	return "unknown"
}
