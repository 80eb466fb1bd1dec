package modem

import (
	"time"
)

const (
	defaultATTimeout     = 5 * time.Second
	defaultEventCapacity = 128
	defaultMaxLineLength = 1024
	defaultDrainPeriod   = 3 * time.Second
)

// Config holds the settings of a Modem. Use NewConfigBuilder to create one.
type Config struct {
	dialer        Dialer
	atTimeout     time.Duration
	eventCapacity int
	maxLineLength int
	drainPeriod   time.Duration
}

func (c *Config) validate() error {
	if c.dialer == nil {
		return ErrNoDialer
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.atTimeout == 0 {
		c.atTimeout = defaultATTimeout
	}
	if c.eventCapacity == 0 {
		c.eventCapacity = defaultEventCapacity
	}
	if c.maxLineLength == 0 {
		c.maxLineLength = defaultMaxLineLength
	}
	if c.drainPeriod == 0 {
		c.drainPeriod = defaultDrainPeriod
	}
}

// ConfigBuilder assembles a Config.
type ConfigBuilder struct {
	config Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

// WithDialer sets the Dialer used to open the transport. Required.
func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.config.dialer = d
	return b
}

// WithATTimeout sets the timeout of commands that do not declare their own.
func (b *ConfigBuilder) WithATTimeout(d time.Duration) *ConfigBuilder {
	b.config.atTimeout = d
	return b
}

// WithEventCapacity sets how many unsolicited events each subscriber may
// have pending before the oldest are dropped.
func (b *ConfigBuilder) WithEventCapacity(n int) *ConfigBuilder {
	b.config.eventCapacity = n
	return b
}

// WithMaxLineLength bounds the size of a single line read from the module.
func (b *ConfigBuilder) WithMaxLineLength(n int) *ConfigBuilder {
	b.config.maxLineLength = n
	return b
}

// WithDrainPeriod sets how long the line must stay quiet after a timed out
// command before the next command is written. A late final result for the
// timed out command ends the wait earlier.
func (b *ConfigBuilder) WithDrainPeriod(d time.Duration) *ConfigBuilder {
	b.config.drainPeriod = d
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	c := b.config
	if err := c.validate(); err != nil {
		return Config{}, err
	}
	c.setDefaults()
	return c, nil
}
