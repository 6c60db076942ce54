package config

import (
	"errors"
	"fmt"

	"customlogger/internal/logging"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLevel(); err != nil {
		return err
	}
	if err := c.validateLayout(); err != nil {
		return err
	}
	if err := c.validateColor(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLevel() error {
	if _, ok := logging.ParseLevel(c.Logging.Level); !ok {
		return fmt.Errorf("logging.level %q is not one of debug, info, warning, error, critical", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateLayout() error {
	layout := logging.FormatterConfig{
		MessageColumn: c.Logging.MessageColumn,
		SourceColumn:  c.Logging.Width,
		TimeFormat:    c.Logging.TimeFormat,
	}
	if err := layout.Validate(); err != nil {
		return fmt.Errorf("logging.width/logging.message_column: %w", err)
	}
	return nil
}

func (c *Config) validateColor() error {
	switch c.Logging.Color {
	case logging.ColorAuto, logging.ColorAlways, logging.ColorNever:
		return nil
	default:
		return errors.New("logging.color must be one of auto, always, never")
	}
}
