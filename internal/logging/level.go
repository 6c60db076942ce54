package logging

import (
	"log/slog"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// LevelCritical sits above slog.LevelError for unrecoverable conditions.
const LevelCritical = slog.Level(12)

// ParseLevel maps a severity name to a level. Names are case-insensitive;
// "warning" and "warn" are equivalent, as are "critical" and "fatal".
// Unknown names report ok=false.
func ParseLevel(name string) (slog.Level, bool) {
	switch cases.Fold().String(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	case "critical", "fatal", "panic":
		return LevelCritical, true
	default:
		return slog.LevelInfo, false
	}
}

func parseLevel(name string) slog.Level {
	level, _ := ParseLevel(name)
	return level
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= LevelCritical:
		return "CRITICAL"
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARNING"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// NormalizeLevelName returns the canonical name for a severity string, or
// the upper-cased input when it is not a known level.
func NormalizeLevelName(name string) string {
	if level, ok := ParseLevel(name); ok {
		return levelLabel(level)
	}
	return cases.Upper(language.Und).String(strings.TrimSpace(name))
}
