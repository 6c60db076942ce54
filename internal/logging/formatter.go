package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

const (
	// DefaultMessageColumn is where message text starts on every line.
	DefaultMessageColumn = 32
	// DefaultWidth is the default column at which the source location starts.
	DefaultWidth = 220
)

// ErrInvalidColumns reports a FormatterConfig that breaks
// SourceColumn > MessageColumn > 0.
var ErrInvalidColumns = errors.New("formatter columns must satisfy source_column > message_column > 0")

// FormatterConfig fixes the layout of formatted blocks.
type FormatterConfig struct {
	MessageColumn int
	SourceColumn  int
	TimeFormat    string
}

// DefaultFormatterConfig returns the standard 32/220 layout.
func DefaultFormatterConfig() FormatterConfig {
	return FormatterConfig{
		MessageColumn: DefaultMessageColumn,
		SourceColumn:  DefaultWidth,
		TimeFormat:    logTimestampLayout,
	}
}

// Validate checks the column invariant.
func (c FormatterConfig) Validate() error {
	if c.MessageColumn <= 0 || c.SourceColumn <= c.MessageColumn {
		return fmt.Errorf("%w (message_column=%d, source_column=%d)", ErrInvalidColumns, c.MessageColumn, c.SourceColumn)
	}
	return nil
}

// Entry is the formatter's view of a log record.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	// Source is "file:line"; empty when the record carries no caller.
	Source string
	// Attrs is pre-rendered "key=value" text appended to the first line.
	Attrs string
}

// Styler decorates pieces of the first line after the column math, so any
// escape sequences it adds never shift alignment.
type Styler interface {
	Timestamp(s string) string
	Level(level slog.Level, label string) string
	Source(s string) string
}

// Formatter renders entries as column-aligned text blocks.
type Formatter struct {
	cfg    FormatterConfig
	styler Styler
}

// NewFormatter validates cfg and returns a Formatter. A nil styler renders
// plain text.
func NewFormatter(cfg FormatterConfig, styler Styler) (*Formatter, error) {
	if cfg.TimeFormat == "" {
		cfg.TimeFormat = logTimestampLayout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Formatter{cfg: cfg, styler: styler}, nil
}

// Config returns the formatter's layout.
func (f *Formatter) Config() FormatterConfig {
	return f.cfg
}

// Format renders e. The first line holds timestamp, level, the first message
// line and the source; continuation lines are indented to MessageColumn.
// Lines are joined with '\n' and the block has no trailing newline.
func (f *Formatter) Format(e Entry) string {
	ts := formatTimestampLayout(e.Time, f.cfg.TimeFormat)
	label := levelLabel(e.Level)
	prefixWidth := runewidth.StringWidth(ts) + len(label) + 4 // " [" + "] "

	lines := splitLines(e.Message)

	var b strings.Builder
	b.Grow(f.cfg.SourceColumn + len(e.Message) + len(e.Source) + len(lines)*f.cfg.MessageColumn)

	b.WriteString(f.styleTimestamp(ts))
	b.WriteString(" [")
	b.WriteString(f.styleLevel(e.Level, label))
	b.WriteString("] ")
	padToMessage := max(1, f.cfg.MessageColumn-prefixWidth)
	b.WriteString(strings.Repeat(" ", padToMessage))
	b.WriteString(lines[0])

	if e.Source != "" {
		left := prefixWidth + padToMessage + runewidth.StringWidth(lines[0])
		if e.Attrs != "" {
			b.WriteByte(' ')
			b.WriteString(e.Attrs)
			left += 1 + runewidth.StringWidth(e.Attrs)
		}
		b.WriteString(strings.Repeat(" ", max(1, f.cfg.SourceColumn-left)))
		b.WriteString(f.styleSource(e.Source))
	} else if e.Attrs != "" {
		b.WriteByte(' ')
		b.WriteString(e.Attrs)
	}

	indent := strings.Repeat(" ", f.cfg.MessageColumn)
	for _, line := range lines[1:] {
		b.WriteByte('\n')
		b.WriteString(indent)
		b.WriteString(line)
	}
	return b.String()
}

func (f *Formatter) styleTimestamp(s string) string {
	if f.styler == nil {
		return s
	}
	return f.styler.Timestamp(s)
}

func (f *Formatter) styleLevel(level slog.Level, label string) string {
	if f.styler == nil {
		return label
	}
	return f.styler.Level(level, label)
}

func (f *Formatter) styleSource(s string) string {
	if f.styler == nil {
		return s
	}
	return f.styler.Source(s)
}

// splitLines breaks msg on \r\n, \r and \n. It always returns at least one
// element, and k line breaks yield k+1 lines.
func splitLines(msg string) []string {
	if strings.ContainsRune(msg, '\r') {
		msg = strings.ReplaceAll(msg, "\r\n", "\n")
		msg = strings.ReplaceAll(msg, "\r", "\n")
	}
	return strings.Split(msg, "\n")
}
