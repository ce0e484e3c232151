package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// knownFormats mirrors the format table in internal/convert. It is duplicated
// here so configuration errors surface at load time without an import cycle.
var knownFormats = []string{"flac", "wav", "aac", "alac", "aup"}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateResources(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateResources() error {
	if c.Resources.SearchWindowMiB < 0 {
		return errors.New("resources.search_window_mib must be positive")
	}
	if strings.ContainsAny(c.Resources.Binary, `/\`) || c.Resources.Binary != filepath.Base(c.Resources.Binary) {
		return fmt.Errorf("resources.binary must be a bare file name, got %q", c.Resources.Binary)
	}
	return nil
}

func (c *Config) validateConversion() error {
	for _, name := range knownFormats {
		if c.Conversion.Format == name {
			return nil
		}
	}
	return fmt.Errorf("conversion.format: unsupported value %q (expected one of %s)", c.Conversion.Format, strings.Join(knownFormats, ", "))
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
