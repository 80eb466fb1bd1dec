package at

import (
	"errors"
	"strings"
)

var (
	// ErrParse is returned when a response does not have the shape the
	// command expects.
	//
	// The module answered, but a required line or field is missing or a
	// value could not be converted.
	ErrParse = errors.New("at: malformed response")

	// ErrTimeout is returned when no final result arrives within the
	// command's timeout.
	ErrTimeout = errors.New("at: timeout")

	// ErrProtocol is returned when the module reports a failure result
	// (ERROR, +CME ERROR, +CMS ERROR, NO CARRIER, ...).
	//
	// The concrete error is a *ProtocolError carrying the result line.
	ErrProtocol = errors.New("at: module reported failure")
)

// ProtocolError carries the final result line reported by the module.
type ProtocolError struct {
	Result string
}

func (e *ProtocolError) Error() string {
	return "at: " + e.Result
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}

// Code returns the numeric part of a +CME/+CMS error, or the empty string.
func (e *ProtocolError) Code() string {
	for _, prefix := range []string{CmeError, CmsError} {
		if rest, ok := strings.CutPrefix(e.Result, prefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
