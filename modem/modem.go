package modem

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"i4.energy/across/tata/at"
	"i4.energy/across/tata/urc"
)

// Modem drives the radio module over a Transport. A single event loop owns
// all transport reads; commands are handed to it one at a time and
// unsolicited notifications are published on an event bus.
type Modem struct {
	// transport provides the physical connection to the module
	transport Transport
	// atTimeout is the default timeout for command responses
	atTimeout time.Duration
	// maxLineLength bounds a single scanned line
	maxLineLength int
	// drainPeriod is the quiet time that ends draining after a timeout
	drainPeriod time.Duration

	closed      atomic.Bool
	loopRunning atomic.Bool

	// events receives decoded unsolicited result codes
	events *urc.Bus
	// commands hands requests to the Loop; unbuffered so that at most one
	// command is in flight
	commands chan *commandRequest

	loopCtx    context.Context
	loopCancel context.CancelFunc
}

// commandRequest is a command waiting to be executed by the Loop.
type commandRequest struct {
	req      at.Request
	respChan chan commandResponse
	ctx      context.Context
}

type commandResponse struct {
	response string
	err      error
}

var _ at.Client = (*Modem)(nil)

// New dials the transport described by config and prepares the event loop.
// Loop must be started before commands can be executed.
func New(ctx context.Context, config Config) (*Modem, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	config.setDefaults()

	transport, err := config.dialer.Dial(ctx)
	if err != nil {
		return nil, fmt.Errorf("dial modem: %w", err)
	}
	if transport == nil {
		return nil, ErrNotInitialized
	}

	m := &Modem{
		transport:     transport,
		atTimeout:     config.atTimeout,
		maxLineLength: config.maxLineLength,
		drainPeriod:   config.drainPeriod,
		events:        urc.NewBus(config.eventCapacity),
		commands:      make(chan *commandRequest),
	}
	m.loopCtx, m.loopCancel = context.WithCancel(ctx)

	return m, nil
}

// Subscribe returns a subscription to unsolicited events.
func (m *Modem) Subscribe() *urc.Subscription {
	return m.events.Subscribe()
}

// Loop is the event loop that handles all transport I/O. It must run for
// Exec to make progress, typically in its own goroutine:
//
//	go m.Loop(ctx)
//
// Loop writes each command, collects its response lines until a final
// result (or the SMS prompt, or a line accepted by the command's
// terminator), and publishes unsolicited results to subscribers. Data lines
// that arrive while no command is in flight are tried as unsolicited
// results too.
//
// A command that times out may still be answered later. Until its final
// result arrives, or the line stays quiet for the drain period, Loop
// discards data lines and holds back the next command, so that a late
// answer is never credited to it.
//
// Loop returns when ctx or the Modem is cancelled, or the transport fails.
func (m *Modem) Loop(ctx context.Context) error {
	if !m.loopRunning.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer m.loopRunning.Store(false)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-m.loopCtx.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	log := zerolog.Ctx(ctx)

	scanner := bufio.NewScanner(m.transport)
	scanner.Buffer(make([]byte, 0, min(256, m.maxLineLength)), m.maxLineLength)
	scanner.Split(at.Splitter)

	tokens := make(chan string, 16)
	scanErrs := make(chan error, 1)

	go func() {
		defer close(tokens)
		for scanner.Scan() {
			token := scanner.Text()
			if token != at.Prompt {
				token = strings.TrimSpace(token)
			}
			if token == "" {
				continue
			}
			select {
			case tokens <- token:
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			if errors.Is(err, bufio.ErrTooLong) {
				err = ErrLineTooLong
			}
			select {
			case scanErrs <- err:
			case <-ctx.Done():
			}
		}
	}()

	var (
		current  *commandRequest
		lines    []string
		draining bool
	)
	quiet := time.NewTimer(m.drainPeriod)
	quiet.Stop()
	defer quiet.Stop()

	finish := func(resp commandResponse) {
		current.respChan <- resp
		current = nil
		lines = nil
	}
	drain := func() {
		draining = true
		quiet.Reset(m.drainPeriod)
	}
	stopDraining := func(reason string) {
		draining = false
		quiet.Stop()
		log.Debug().Str("reason", reason).Msg("stale response drained")
	}

	for {
		// Only accept a new command when none is in flight and no stale
		// response is pending.
		var (
			commands <-chan *commandRequest
			expired  <-chan struct{}
			quietC   <-chan time.Time
		)
		switch {
		case current != nil:
			expired = current.ctx.Done()
		case draining:
			quietC = quiet.C
		default:
			commands = m.commands
		}

		select {
		case <-ctx.Done():
			if current != nil {
				finish(commandResponse{err: ctx.Err()})
			}
			return ctx.Err()

		case req := <-commands:
			current = req
			lines = nil
			if _, err := m.transport.Write([]byte(req.req.Wire)); err != nil {
				finish(commandResponse{err: fmt.Errorf("write command %q: %w", strings.TrimSpace(req.req.Wire), err)})
			}

		case <-expired:
			err := current.ctx.Err()
			if errors.Is(err, context.DeadlineExceeded) {
				log.Warn().Str("command", strings.TrimSpace(current.req.Wire)).Msg("command timed out")
				err = fmt.Errorf("%w: %w", at.ErrTimeout, err)
			}
			finish(commandResponse{response: strings.Join(lines, "\n"), err: err})
			drain()

		case <-quietC:
			stopDraining("quiet")

		case token, ok := <-tokens:
			if !ok {
				if current != nil {
					finish(commandResponse{response: strings.Join(lines, "\n"), err: io.EOF})
				}
				return io.EOF
			}

			switch at.Classify(token) {
			case at.TypeURC:
				m.dispatch(ctx, token)

			case at.TypeFinal:
				if current == nil {
					if draining {
						stopDraining(token)
						continue
					}
					log.Debug().Str("line", token).Msg("orphaned final result")
					continue
				}
				response := strings.Join(lines, "\n")
				if token == at.OK {
					finish(commandResponse{response: response})
				} else {
					finish(commandResponse{response: response, err: &at.ProtocolError{Result: token}})
				}

			case at.TypeData:
				if current == nil {
					if draining {
						log.Debug().Str("line", token).Msg("discarding stale response line")
						quiet.Reset(m.drainPeriod)
						continue
					}
					m.dispatch(ctx, token)
					continue
				}
				lines = append(lines, token)
				if current.req.Terminal != nil && current.req.Terminal(token) {
					finish(commandResponse{response: strings.Join(lines, "\n")})
				}

			case at.TypePrompt:
				if current != nil {
					lines = append(lines, token)
					finish(commandResponse{response: strings.Join(lines, "\n")})
					continue
				}
				if draining {
					// A timed out SMS address still opened text input. Abort
					// it so the next command is not taken as message text.
					if _, err := m.transport.Write([]byte(at.Esc)); err != nil {
						log.Warn().Err(err).Msg("abort text input failed")
					}
					stopDraining("prompt")
				}
			}

		case err := <-scanErrs:
			if current != nil {
				finish(commandResponse{err: fmt.Errorf("read error: %w", err)})
			}
			return fmt.Errorf("scanner error: %w", err)
		}
	}
}

func (m *Modem) dispatch(ctx context.Context, line string) {
	ev, ok := urc.Parse(line)
	if !ok {
		zerolog.Ctx(ctx).Debug().Str("line", line).Msg("ignoring unsolicited line")
		return
	}
	m.events.Publish(ev)
}

// Exec sends one request to the module and waits for its response. It
// implements at.Client. The Loop must be running.
func (m *Modem) Exec(ctx context.Context, req at.Request) (string, error) {
	if m.closed.Load() {
		return "", ErrAlreadyClosed
	}
	if m.transport == nil {
		return "", ErrNotInitialized
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = m.atTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cr := &commandRequest{
		req:      req,
		respChan: make(chan commandResponse, 1),
		ctx:      ctx,
	}

	select {
	case m.commands <- cr:
	case <-ctx.Done():
		err := ctx.Err()
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", at.ErrTimeout, err)
		}
		return "", fmt.Errorf("command cancelled before sending: %w", err)
	}

	// The Loop always answers an accepted request, on timeout as well.
	resp := <-cr.respChan
	return resp.response, resp.err
}

// Close shuts down the modem and releases all resources. It stops the event
// loop, closes the transport and ends all event subscriptions.
func (m *Modem) Close() error {
	if !m.closed.CompareAndSwap(false, true) {
		return ErrAlreadyClosed
	}

	if m.loopCancel != nil {
		m.loopCancel()
	}
	if m.events != nil {
		m.events.Close()
	}
	if m.transport != nil {
		return m.transport.Close()
	}
	return nil
}
