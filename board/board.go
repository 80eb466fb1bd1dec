// Package board is the hardware shim around the radio module: timing, the
// status LED and the module power key.
package board

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Board is what the orchestration code needs from the hardware.
type Board interface {
	// Sleep pauses for d or until ctx is done.
	Sleep(ctx context.Context, d time.Duration)
	SetLED(on bool)
	// RestartModule power-cycles the radio module through its power key.
	RestartModule(ctx context.Context)
	// Uptime is the time since the board was brought up.
	Uptime() time.Duration
}

// Pins names the sysfs files driving the board's outputs.
type Pins struct {
	// LED is a brightness file, e.g. /sys/class/leds/led0/brightness.
	LED string
	// PowerKey is a GPIO value file wired to the module's PWRKEY.
	PowerKey string
}

// Sysfs is a Board driven through sysfs attribute files.
type Sysfs struct {
	pins    Pins
	started time.Time
	log     zerolog.Logger
}

var _ Board = (*Sysfs)(nil)

func NewSysfs(pins Pins, log zerolog.Logger) *Sysfs {
	return &Sysfs{pins: pins, started: time.Now(), log: log}
}

func (b *Sysfs) Sleep(ctx context.Context, d time.Duration) {
	sleep(ctx, d)
}

func (b *Sysfs) SetLED(on bool) {
	b.write(b.pins.LED, on)
}

// RestartModule holds the power key for 900 ms and then gives the module
// two seconds to boot.
func (b *Sysfs) RestartModule(ctx context.Context) {
	b.log.Info().Msg("restarting module")
	sleep(ctx, time.Second)

	b.SetLED(true)
	b.write(b.pins.PowerKey, true)
	sleep(ctx, 900*time.Millisecond)
	b.write(b.pins.PowerKey, false)
	b.SetLED(false)

	sleep(ctx, 2*time.Second)
	b.log.Info().Msg("module should be ready")
}

func (b *Sysfs) Uptime() time.Duration {
	return time.Since(b.started)
}

func (b *Sysfs) write(path string, on bool) {
	if path == "" {
		return
	}
	value := []byte("0")
	if on {
		value = []byte("1")
	}
	if err := os.WriteFile(path, value, 0); err != nil {
		b.log.Warn().Err(err).Str("path", path).Msg("board write failed")
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
