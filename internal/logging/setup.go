package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"customlogger/internal/hooks"
)

// DefaultLoggerName names the logger Setup configures when Options.Name is empty.
const DefaultLoggerName = "customlogger"

// Options describes the logger Setup assembles.
type Options struct {
	// Name selects the logger in Registry.
	Name string
	// LogFile receives every record at Level and above. Empty disables it.
	LogFile string
	// ErrorLogFile receives ERROR and above. Skipped when it names the same
	// file as LogFile.
	ErrorLogFile string
	// Level is a severity name; unknown names fall back to INFO.
	Level string
	// Overwrite truncates log files instead of appending.
	Overwrite bool
	// Width is the column where the source location starts.
	Width int
	// MessageColumn is the column where message text starts.
	MessageColumn int
	// TimeFormat is a Go time layout for the timestamp.
	TimeFormat string
	// Exceptions installs the crash hooks on Hooks.
	Exceptions bool
	// Color is one of ColorAuto, ColorAlways, ColorNever.
	Color string

	Console  io.Writer
	Registry *Registry
	Hooks    *hooks.State
}

// DefaultOptions returns the stock configuration: INFO, overwrite, width 220,
// crash hooks on, console on stdout.
func DefaultOptions() Options {
	return Options{
		Name:          DefaultLoggerName,
		Level:         "INFO",
		Overwrite:     true,
		Width:         DefaultWidth,
		MessageColumn: DefaultMessageColumn,
		TimeFormat:    logTimestampLayout,
		Exceptions:    true,
		Color:         ColorAuto,
		Console:       os.Stdout,
	}
}

func (o Options) formatterConfig() FormatterConfig {
	cfg := FormatterConfig{
		MessageColumn: o.MessageColumn,
		SourceColumn:  o.Width,
		TimeFormat:    o.TimeFormat,
	}
	if cfg.MessageColumn == 0 {
		cfg.MessageColumn = DefaultMessageColumn
	}
	if cfg.SourceColumn == 0 {
		cfg.SourceColumn = DefaultWidth
	}
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = logTimestampLayout
	}
	return cfg
}

// Setup configures the named logger and returns it. Calling Setup again
// reconfigures the same Logger: the new handlers are built first and only
// then swapped in, and the displaced ones are closed. Propagation to ancestor
// loggers is turned off. Errors creating or opening log files are returned
// and leave the logger's current handlers and level untouched.
func Setup(opts Options) (*Logger, error) {
	registry := opts.Registry
	if registry == nil {
		registry = defaultRegistry
	}
	name := opts.Name
	if strings.TrimSpace(name) == "" {
		name = DefaultLoggerName
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	fmtCfg := opts.formatterConfig()
	formatter, err := NewFormatter(fmtCfg, nil)
	if err != nil {
		return nil, err
	}

	level := parseLevel(opts.Level)
	handlers, err := buildHandlers(opts, console, fmtCfg, formatter, level)
	if err != nil {
		return nil, err
	}

	logger := registry.Get(name)
	logger.SetLevel(level)
	if err := logger.ReplaceHandlers(handlers); err != nil {
		return nil, fmt.Errorf("close previous log handlers: %w", err)
	}
	logger.SetPropagate(false)

	if opts.Exceptions {
		state := opts.Hooks
		if state == nil {
			state = hooks.Process()
		}
		state.Install(logger.Logger)
	}
	return logger, nil
}

// buildHandlers opens every output opts asks for. On failure the handlers
// opened so far are closed and nothing is returned.
func buildHandlers(opts Options, console io.Writer, fmtCfg FormatterConfig, formatter *Formatter, level slog.Level) ([]slog.Handler, error) {
	consoleHandler, err := newConsoleHandler(console, slog.LevelDebug, fmtCfg, opts.Color)
	if err != nil {
		return nil, err
	}
	handlers := []slog.Handler{consoleHandler}
	fail := func(err error) ([]slog.Handler, error) {
		_ = closeHandlers(handlers)
		return nil, err
	}

	var logPath string
	if strings.TrimSpace(opts.LogFile) != "" {
		logPath = resolveLogPath(opts.LogFile)
		fileHandler, err := newFileHandler(logPath, opts.Overwrite, level, formatter)
		if err != nil {
			return fail(err)
		}
		handlers = append(handlers, fileHandler)
	}

	if strings.TrimSpace(opts.ErrorLogFile) != "" {
		errPath := resolveLogPath(opts.ErrorLogFile)
		if errPath != logPath {
			errHandler, err := newFileHandler(errPath, opts.Overwrite, slog.LevelError, formatter)
			if err != nil {
				return fail(err)
			}
			handlers = append(handlers, errHandler)
		}
	}
	return handlers, nil
}
