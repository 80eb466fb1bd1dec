package board

import (
	"context"
	"sync"
	"time"
)

// TestBoard is a Board that never blocks. It records every call, and each
// Sleep advances its uptime by the requested duration.
type TestBoard struct {
	mu       sync.Mutex
	sleeps   []time.Duration
	leds     []bool
	restarts int
	uptime   time.Duration
}

var _ Board = (*TestBoard)(nil)

func NewTestBoard() *TestBoard {
	return &TestBoard{}
}

func (b *TestBoard) Sleep(_ context.Context, d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sleeps = append(b.sleeps, d)
	b.uptime += d
}

func (b *TestBoard) SetLED(on bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.leds = append(b.leds, on)
}

func (b *TestBoard) RestartModule(context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.restarts++
}

func (b *TestBoard) Uptime() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uptime
}

// Advance moves the uptime forward without recording a sleep.
func (b *TestBoard) Advance(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.uptime += d
}

func (b *TestBoard) Sleeps() []time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]time.Duration(nil), b.sleeps...)
}

func (b *TestBoard) LEDs() []bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]bool(nil), b.leds...)
}

func (b *TestBoard) Restarts() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.restarts
}

// Reset forgets recorded calls. Uptime is kept.
func (b *TestBoard) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sleeps = nil
	b.leds = nil
	b.restarts = 0
}
