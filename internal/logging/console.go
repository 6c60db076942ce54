package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

// Color modes accepted by Options.Color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

type consoleStyler struct{}

func (consoleStyler) Timestamp(s string) string {
	return text.Colors{text.Faint}.Sprint(s)
}

func (consoleStyler) Level(level slog.Level, label string) string {
	return levelColors(level).Sprint(label)
}

func (consoleStyler) Source(s string) string {
	return text.Colors{text.Faint, text.Italic}.Sprint(s)
}

func levelColors(level slog.Level) text.Colors {
	switch {
	case level >= LevelCritical:
		return text.Colors{text.Bold, text.FgHiWhite, text.BgRed}
	case level >= slog.LevelError:
		return text.Colors{text.Bold, text.FgRed}
	case level >= slog.LevelWarn:
		return text.Colors{text.FgYellow}
	case level >= slog.LevelInfo:
		return text.Colors{text.FgGreen}
	default:
		return text.Colors{text.FgBlue}
	}
}

// consoleColorEnabled decides whether console output gets ANSI colours.
// In auto mode colours are used only for terminals and never when NO_COLOR
// is set.
func consoleColorEnabled(w io.Writer, mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func newConsoleHandler(w io.Writer, level slog.Leveler, cfg FormatterConfig, colorMode string) (*alignedHandler, error) {
	var styler Styler
	if consoleColorEnabled(w, colorMode) {
		styler = consoleStyler{}
	}
	formatter, err := NewFormatter(cfg, styler)
	if err != nil {
		return nil, err
	}
	return newAlignedHandler(w, level, formatter), nil
}
