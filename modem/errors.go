package modem

import "errors"

var (
	// ErrNoDialer is returned when a Modem is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the module.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrNotInitialized is returned when an operation is attempted on a Modem
	// that has no transport.
	//
	// This can occur if the Dialer returned a nil Transport or if the Modem
	// was not created via New.
	ErrNotInitialized = errors.New("modem not initialized")

	// ErrAlreadyClosed is returned when Close is called on a Modem that has
	// already been closed, or when a command is issued after Close.
	ErrAlreadyClosed = errors.New("modem already closed")

	// ErrLoopRunning is returned when Loop is called while another Loop is
	// still running on the same Modem.
	ErrLoopRunning = errors.New("modem loop already running")

	// ErrLineTooLong is returned when a module response line exceeds the
	// maximum allowed length.
	//
	// This typically indicates malformed input, unexpected binary data,
	// or a protocol framing error.
	ErrLineTooLong = errors.New("response line too long")
)
