package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"customlogger/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CUSTOMLOGGER_"

// loadDotEnv loads .env from the working directory and from the config
// file's directory. Variables already set in the environment win.
func loadDotEnv(configPath string) error {
	candidates := []string{defaultEnvFile}
	if configPath != "" {
		candidates = append(candidates, filepath.Join(filepath.Dir(configPath), defaultEnvFile))
	}
	seen := make(map[string]bool, len(candidates))
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true
		if _, err := os.Stat(abs); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("stat %s: %w", abs, err)
		}
		if err := godotenv.Load(abs); err != nil {
			return fmt.Errorf("load %s: %w", abs, err)
		}
	}
	return nil
}

func lookupEnv(key string) (string, bool) {
	value, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func (c *Config) applyEnv() error {
	if value, ok := lookupEnv("LOG_FILE"); ok {
		c.Logging.LogFile = value
	}
	if value, ok := lookupEnv("ERROR_LOG_FILE"); ok {
		c.Logging.ErrorLogFile = value
	}
	if value, ok := lookupEnv("LEVEL"); ok {
		c.Logging.Level = value
	}
	if value, ok := lookupEnv("TIME_FORMAT"); ok {
		c.Logging.TimeFormat = value
	}
	if value, ok := lookupEnv("COLOR"); ok {
		c.Logging.Color = value
	}
	for key, dst := range map[string]*bool{
		"OVERWRITE":  &c.Logging.Overwrite,
		"EXCEPTIONS": &c.Logging.Exceptions,
	} {
		value, ok := lookupEnv(key)
		if !ok {
			continue
		}
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s%s: expected a boolean, got %q", EnvPrefix, key, value)
		}
		*dst = parsed
	}
	for key, dst := range map[string]*int{
		"WIDTH":          &c.Logging.Width,
		"MESSAGE_COLUMN": &c.Logging.MessageColumn,
	} {
		value, ok := lookupEnv(key)
		if !ok {
			continue
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s%s: expected an integer, got %q", EnvPrefix, key, value)
		}
		*dst = parsed
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	c.Logging.LogFile = strings.TrimSpace(c.Logging.LogFile)
	if c.Logging.LogFile, err = expandPath(c.Logging.LogFile); err != nil {
		return fmt.Errorf("logging.log_file: %w", err)
	}
	c.Logging.ErrorLogFile = strings.TrimSpace(c.Logging.ErrorLogFile)
	if c.Logging.ErrorLogFile, err = expandPath(c.Logging.ErrorLogFile); err != nil {
		return fmt.Errorf("logging.error_log_file: %w", err)
	}

	c.Logging.Level = strings.TrimSpace(c.Logging.Level)
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLevel
	}
	if _, ok := logging.ParseLevel(c.Logging.Level); ok {
		c.Logging.Level = strings.ToLower(logging.NormalizeLevelName(c.Logging.Level))
	}

	c.Logging.Color = strings.ToLower(strings.TrimSpace(c.Logging.Color))
	if c.Logging.Color == "" {
		c.Logging.Color = defaultColor
	}
	if c.Logging.TimeFormat == "" {
		c.Logging.TimeFormat = defaultTimeFormat
	}
	if c.Logging.Width == 0 {
		c.Logging.Width = defaultWidth
	}
	if c.Logging.MessageColumn == 0 {
		c.Logging.MessageColumn = defaultMessageColumn
	}
	return nil
}
