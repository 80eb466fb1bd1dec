package board

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// magicClose disarms the Linux watchdog when written right before close.
const magicClose = "V"

// DefaultFeedInterval keeps well inside a six second hardware window.
const DefaultFeedInterval = 2 * time.Second

// Watchdog keeps a hardware watchdog fed from its own goroutine.
type Watchdog struct {
	dev      io.WriteCloser
	interval time.Duration
}

// OpenWatchdog opens the watchdog device. Opening arms it.
func OpenWatchdog(path string, interval time.Duration) (*Watchdog, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return NewWatchdog(f, interval), nil
}

func NewWatchdog(dev io.WriteCloser, interval time.Duration) *Watchdog {
	if interval <= 0 {
		interval = DefaultFeedInterval
	}
	return &Watchdog{dev: dev, interval: interval}
}

// Run feeds the watchdog until ctx is done, then disarms and closes it.
func (w *Watchdog) Run(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Dur("interval", w.interval).Msg("watchdog started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if _, err := w.dev.Write([]byte(magicClose)); err != nil {
				log.Warn().Err(err).Msg("watchdog disarm failed")
			}
			return w.dev.Close()
		case <-ticker.C:
			if _, err := w.dev.Write([]byte{0}); err != nil {
				return err
			}
			log.Trace().Msg("watchdog fed")
		}
	}
}
