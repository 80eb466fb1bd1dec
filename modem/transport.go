package modem

//go:generate go tool mockgen -source=transport.go -destination=mock_transport.go -package=modem

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Transport represents an established, bidirectional byte stream to the
// radio module.
//
// A Transport is assumed to be already connected and ready for use. Typical
// implementations are serial ports or in-memory fakes used for testing.
type Transport interface {
	io.ReadWriteCloser
}

// Dialer opens a Transport to the radio module.
//
// Dialer is used during modem construction only. Once a Transport is
// obtained, the Dialer is no longer needed.
type Dialer interface {
	// Dial creates and returns a connected Transport. It should respect
	// cancellation of ctx.
	Dial(ctx context.Context) (Transport, error)
}

const defaultBaudRate = 115200

// SerialDialer opens the module UART with go.bug.st/serial.
type SerialDialer struct {
	PortName string
	// BaudRate is used when Mode is nil. Defaults to 115200.
	BaudRate int
	// Mode overrides the default 8N1 mode.
	Mode *serial.Mode
}

func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("modem: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("modem: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	port, err := serial.Open(d.PortName, d.mode())
	if err != nil {
		return nil, fmt.Errorf("modem: open %s: %w", d.PortName, err)
	}
	return port, nil
}

// mode is Mode, or 8N1 at BaudRate when Mode is nil.
func (d SerialDialer) mode() *serial.Mode {
	if d.Mode != nil {
		return d.Mode
	}
	baud := d.BaudRate
	if baud == 0 {
		baud = defaultBaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}
