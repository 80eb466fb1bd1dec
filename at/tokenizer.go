package at

import (
	"bufio"
	"bytes"
	"strings"
)

// Splitter tokenizes the byte stream coming from the module. It uses the
// signature of bufio.SplitFunc so it can be used directly with bufio.Scanner.
//
// Lines are split on CRLF. The SMS input prompt ("> ") is emitted as its own
// token because the module does not terminate it.
//
// Echoed commands (before ATE0 takes effect) come through as ordinary data
// lines; response decoders look for their own prefix and skip them.
func Splitter(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}

	if bytes.HasPrefix(data, []byte(Prompt)) {
		return len(Prompt), data[0:len(Prompt)], nil
	}

	if i := bytes.Index(data, []byte(CRLF)); i >= 0 {
		return i + len(CRLF), data[0:i], nil
	}

	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

var _ bufio.SplitFunc = Splitter

var urcLines = []string{
	UrcCall,
	UrcCallReady,
	UrcSMSReady,
	UrcReady,
	UrcNormalPowerDown,
	UrcUnderVoltageDown,
	UrcUnderVoltageWarning,
	UrcOverVoltageDown,
	UrcOverVoltageWarning,
	UrcChargeOnly,
	UrcBearerDeact,
	UrcPDPDeact,
}

// Classify identifies the nature of the modem output
func Classify(line string) ResponseType {
	if line == Prompt {
		return TypePrompt
	}

	switch line {
	case OK, ERROR, NoCarrier, NoDialtone, Busy, NoAnswer:
		return TypeFinal
	}

	switch {
	case strings.HasPrefix(line, CmeError), strings.HasPrefix(line, CmsError):
		return TypeFinal
	case strings.HasPrefix(line, UrcNewMsg), strings.HasPrefix(line, UrcCallerID):
		return TypeURC
	}

	for _, urc := range urcLines {
		if line == urc {
			return TypeURC
		}
	}
	return TypeData
}
