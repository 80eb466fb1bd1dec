package service

import "errors"

var (
	// ErrUnauthorized is returned for a remote command with a wrong password.
	ErrUnauthorized = errors.New("service: wrong password")
	// ErrMalformedCommand is returned for a message that is not a remote
	// command.
	ErrMalformedCommand = errors.New("service: malformed command")
	// ErrStopped is returned by requests made after Run returned.
	ErrStopped = errors.New("service: not running")
)
