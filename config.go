package main

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"i4.energy/across/tata/service"
)

//go:embed config.schema.json
var configSchema []byte

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the maintenance API listens on (e.g. "127.0.0.1:8080")
	BindAddress string `yaml:"bind_address"`
	// SerialPort is the path to the module's serial port (e.g. "/dev/ttyS0")
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the baud rate for serial communication with the module (e.g. 115200)
	BaudRate int `yaml:"baud_rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// LogFormat is "json" or "console"
	LogFormat string `yaml:"log_format"`
	// AlarmSecond is the second of each minute at which housekeeping runs
	AlarmSecond int `yaml:"alarm_second"`

	Board  BoardConfig           `yaml:"board"`
	Device service.Configuration `yaml:"device"`
}

// BoardConfig names the sysfs files of the board. Empty paths are skipped.
type BoardConfig struct {
	LED      string `yaml:"led"`
	PowerKey string `yaml:"power_key"`
	Watchdog string `yaml:"watchdog"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "127.0.0.1:8080"
		c.SerialPort = "/dev/ttyS0"
		c.BaudRate = 115200
		c.LogLevel = "info"
		c.LogFormat = "json"
		c.AlarmSecond = 30
		c.Device = service.DefaultConfiguration()
		return nil
	}
}

// WithFile loads a YAML configuration file. The document is validated
// against the embedded schema before it is decoded; keys it leaves out keep
// their current values. An empty path is a no-op.
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config: %w", err)
		}
		if err := validateConfig(data); err != nil {
			return fmt.Errorf("config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("decode config %s: %w", path, err)
		}
		return nil
	}
}

func validateConfig(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	if doc == nil {
		return nil
	}

	// Round trip through JSON so the validator sees JSON types.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}
	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("convert yaml: %w", err)
	}

	schema, err := compileConfigSchema()
	if err != nil {
		return err
	}
	return schema.Validate(instance)
}

func compileConfigSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(configSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to add resource: %w", err)
	}
	compiled, err := c.Compile("config.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile: %w", err)
	}
	return compiled, nil
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if phone := os.Getenv("PHONE_NUMBER"); phone != "" {
			c.Device.PhoneNumber = phone
		}

		if password := os.Getenv("SMS_PASSWORD"); password != "" {
			c.Device.SMSPassword = password
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			}
		})
		return nil
	}
}
