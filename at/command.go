package at

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Command is a single AT command with a typed response.
//
// Encode returns the exact bytes written to the module, terminator included.
// Decode receives the intermediate lines of the response (final result line
// excluded) joined by "\n".
type Command[R any] interface {
	Encode() string
	Decode(raw string) (R, error)
}

// Deadliner is implemented by commands that need a non-default timeout.
type Deadliner interface {
	Timeout() time.Duration
}

// Terminator is implemented by commands whose response is not followed by a
// final result code. Terminal reports whether line completes the response.
type Terminator interface {
	Terminal(line string) bool
}

// Request is what a Client puts on the wire for one command.
type Request struct {
	Wire string
	// Timeout overrides the client default when non-zero.
	Timeout time.Duration
	// Terminal, when set, completes the command on a matching data line.
	Terminal func(line string) bool
}

// Client executes one request at a time against the module.
type Client interface {
	Exec(ctx context.Context, req Request) (string, error)
}

// NoResponse is the response type of commands answered only with OK.
type NoResponse struct{}

// Empty can be embedded by commands that expect no information response.
type Empty struct{}

func (Empty) Decode(string) (NoResponse, error) {
	return NoResponse{}, nil
}

// NewRequest builds the wire request for cmd.
func NewRequest[R any](cmd Command[R]) Request {
	req := Request{Wire: cmd.Encode()}
	if d, ok := cmd.(Deadliner); ok {
		req.Timeout = d.Timeout()
	}
	if t, ok := cmd.(Terminator); ok {
		req.Terminal = t.Terminal
	}
	return req
}

// Send executes cmd on c and decodes the response.
func Send[R any](ctx context.Context, c Client, cmd Command[R]) (R, error) {
	var zero R
	raw, err := c.Exec(ctx, NewRequest(cmd))
	if err != nil {
		return zero, err
	}
	return cmd.Decode(raw)
}

// SendLogged is Send with begin/end log events around it. The result is
// returned untouched.
func SendLogged[R any](ctx context.Context, c Client, cmd Command[R]) (R, error) {
	log := zerolog.Ctx(ctx)
	name := Name(cmd)

	log.Debug().Str("command", name).Msg("begin")
	resp, err := Send(ctx, c, cmd)
	if err != nil {
		log.Warn().Err(err).Str("command", name).Msg("end")
		return resp, err
	}
	log.Debug().Str("command", name).Msg("end")
	return resp, nil
}

// Name returns a short label for cmd used in logs.
func Name(cmd any) string {
	name := fmt.Sprintf("%T", cmd)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
