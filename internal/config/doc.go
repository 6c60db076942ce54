// Package config loads, normalizes, and validates customlogger settings.
//
// Settings come from a TOML file with a single [logging] table. Values in a
// .env file and CUSTOMLOGGER_* environment variables override the file, so a
// deployment can adjust the log level or paths without editing it. Paths are
// expanded (including ~) before validation.
//
// Use ToOptions to turn a loaded Config into logging.Options for Setup.
package config
