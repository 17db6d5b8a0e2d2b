// Package config loads the vialctl configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DeviceFilter selects additional devices that do not carry the Vial serial
// magic (plain VIA keyboards).
type DeviceFilter struct {
	VendorID  uint16 `yaml:"vendor_id"`
	ProductID uint16 `yaml:"product_id"`
}

// Config is the tool configuration.
type Config struct {
	// Devices lists VID/PID pairs to treat as configurable keyboards in
	// addition to devices matched by the Vial serial magic.
	Devices []DeviceFilter `yaml:"devices"`

	// RawUSB switches the transport to raw USB endpoint I/O instead of
	// hidraw. Requires a Devices entry to locate the keyboard.
	RawUSB bool `yaml:"raw_usb"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`
}

// Load reads and validates a YAML config file. A missing path yields the
// zero config.
func Load(path string) (*Config, error) {
	cfg := &Config{LogLevel: "info"}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not open config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.RawUSB && len(c.Devices) == 0 {
		return fmt.Errorf("raw_usb requires at least one devices entry")
	}
	for i, d := range c.Devices {
		if d.VendorID == 0 {
			return fmt.Errorf("devices[%d]: vendor_id is required", i)
		}
	}
	return nil
}
