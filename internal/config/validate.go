package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable. The algorithm name is not
// checked here: an unknown algorithm is reported by the run itself.
func (c *Config) Validate() error {
	if err := c.validateHashing(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateProgress(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateHashing() error {
	if c.Hashing.Jobs < 0 {
		return errors.New("hashing.jobs must be 0 (auto) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console, or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateProgress() error {
	if c.Progress.IntervalMS < 0 {
		return errors.New("progress.interval_ms must be positive")
	}
	return nil
}
