package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	c.normalizeHashing()
	if err := c.normalizeWitness(); err != nil {
		return err
	}
	if err := c.normalizeCache(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeProgress()
	return nil
}

func (c *Config) normalizeHashing() {
	c.Hashing.Algorithm = strings.TrimSpace(c.Hashing.Algorithm)
	if c.Hashing.Algorithm == "" {
		c.Hashing.Algorithm = defaultAlgorithm
	}
}

func (c *Config) normalizeWitness() error {
	if value, ok := os.LookupEnv(witnessPathEnv); ok && strings.TrimSpace(value) != "" {
		c.Witness.Path = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Witness.Path) == "" {
		c.Witness.Path = defaultWitnessPath
	}
	var err error
	if c.Witness.Path, err = expandPath(c.Witness.Path); err != nil {
		return fmt.Errorf("witness.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeCache() error {
	if strings.TrimSpace(c.Cache.Path) == "" {
		c.Cache.Path = defaultCachePath()
	}
	var err error
	if c.Cache.Path, err = expandPath(c.Cache.Path); err != nil {
		return fmt.Errorf("cache.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeProgress() {
	if c.Progress.IntervalMS == 0 {
		c.Progress.IntervalMS = defaultProgressIntervalMS
	}
}
