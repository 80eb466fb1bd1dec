package modem

import (
	"io"
	"sync"
)

// TestTransport simulates the module side of a serial link using channels.
// Reads block until data is available, like a real serial port, which the
// Loop's scanner goroutine relies on.
//
// Replies registered with Respond are fed back when the matching command is
// written.
type TestTransport struct {
	mu       sync.Mutex
	readChan chan []byte
	closed   bool
	written  []string
	replies  map[string][]string
}

// NewTestTransport creates a new test transport for testing.
func NewTestTransport() *TestTransport {
	return &TestTransport{
		readChan: make(chan []byte, 64),
		replies:  make(map[string][]string),
	}
}

func (t *TestTransport) Write(p []byte) (n int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return 0, io.ErrClosedPipe
	}
	wire := string(p)
	t.written = append(t.written, wire)
	if queue := t.replies[wire]; len(queue) > 0 {
		t.replies[wire] = queue[1:]
		t.readChan <- []byte(queue[0])
	}
	return len(p), nil
}

func (t *TestTransport) Read(p []byte) (n int, err error) {
	data, ok := <-t.readChan
	if !ok {
		return 0, io.EOF
	}
	return copy(p, data), nil
}

func (t *TestTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	close(t.readChan)
	return nil
}

// SendData queues data to be read by the transport.
// This simulates receiving data from the module.
func (t *TestTransport) SendData(data string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.closed {
		t.readChan <- []byte(data)
	}
}

// Respond queues reply to be read after wire is next written.
func (t *TestTransport) Respond(wire, reply string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.replies[wire] = append(t.replies[wire], reply)
}

// Written returns everything written so far, one entry per Write.
func (t *TestTransport) Written() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.written...)
}
