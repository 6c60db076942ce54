package logging

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// alignedHandler writes records through a Formatter, one block per record.
type alignedHandler struct {
	mu        *sync.Mutex
	writer    io.Writer
	closer    io.Closer
	level     slog.Leveler
	formatter *Formatter
	// attrs holds WithAttrs values already qualified by the groups open at
	// the time they were added.
	attrs  []kv
	groups []string
}

func newAlignedHandler(w io.Writer, level slog.Leveler, formatter *Formatter) *alignedHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &alignedHandler{mu: &sync.Mutex{}, writer: w, level: level, formatter: formatter}
}

func (h *alignedHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *alignedHandler) Handle(_ context.Context, record slog.Record) error {
	if record.Level < h.level.Level() {
		return nil
	}

	kvs := make([]kv, 0, record.NumAttrs()+len(h.attrs))
	kvs = append(kvs, h.attrs...)
	record.Attrs(func(attr slog.Attr) bool {
		flattenAttr(&kvs, h.groups, attr)
		return true
	})
	kvs = dedupeKVsByKey(kvs)

	block := h.formatter.Format(Entry{
		Time:    record.Time,
		Level:   record.Level,
		Message: record.Message,
		Source:  recordSource(record),
		Attrs:   renderKVs(kvs),
	})

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, block+"\n")
	return err
}

func (h *alignedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := h.clone()
	flattenAttrs(&clone.attrs, clone.groups, attrs)
	return clone
}

func (h *alignedHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := h.clone()
	clone.groups = append(clone.groups, name)
	return clone
}

// Close releases the underlying file, if any.
func (h *alignedHandler) Close() error {
	if h.closer == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closer.Close()
}

func (h *alignedHandler) clone() *alignedHandler {
	clone := &alignedHandler{
		mu:        h.mu,
		writer:    h.writer,
		level:     h.level,
		formatter: h.formatter,
	}
	if len(h.attrs) > 0 {
		clone.attrs = make([]kv, len(h.attrs))
		copy(clone.attrs, h.attrs)
	}
	if len(h.groups) > 0 {
		clone.groups = make([]string, len(h.groups))
		copy(clone.groups, h.groups)
	}
	return clone
}

func recordSource(record slog.Record) string {
	if record.PC == 0 {
		return ""
	}
	src, _ := runtime.CallersFrames([]uintptr{record.PC}).Next()
	if src.File == "" {
		return ""
	}
	return filepath.Base(src.File) + ":" + strconv.Itoa(src.Line)
}

func renderKVs(kvs []kv) string {
	if len(kvs) == 0 {
		return ""
	}
	var b strings.Builder
	for i, kv := range kvs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(formatKey(kv.key))
		b.WriteByte('=')
		b.WriteString(formatValue(kv.value))
	}
	return b.String()
}

type kv struct {
	key   string
	value slog.Value
}

func dedupeKVsByKey(attrs []kv) []kv {
	if len(attrs) < 2 {
		return attrs
	}
	positions := make(map[string]int, len(attrs))
	deduped := make([]kv, 0, len(attrs))
	for _, attr := range attrs {
		if attr.key == "" {
			continue
		}
		if pos, ok := positions[attr.key]; ok {
			deduped[pos].value = attr.value
			continue
		}
		positions[attr.key] = len(deduped)
		deduped = append(deduped, attr)
	}
	return deduped
}

func flattenAttrs(dst *[]kv, prefix []string, attrs []slog.Attr) {
	for _, attr := range attrs {
		flattenAttr(dst, prefix, attr)
	}
}

func flattenAttr(dst *[]kv, prefix []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	attr.Value = attr.Value.Resolve()
	switch attr.Value.Kind() {
	case slog.KindGroup:
		values := attr.Value.Group()
		nextPrefix := prefix
		if attr.Key != "" {
			nextPrefix = appendPrefix(prefix, attr.Key)
		}
		flattenAttrs(dst, nextPrefix, values)
	default:
		key := attr.Key
		if len(prefix) > 0 {
			if key != "" {
				key = strings.Join(appendPrefix(prefix, key), ".")
			} else {
				key = strings.Join(prefix, ".")
			}
		}
		*dst = append(*dst, kv{key: key, value: attr.Value})
	}
}

func appendPrefix(prefix []string, value string) []string {
	out := make([]string, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = value
	return out
}

// NewHandler returns a handler that writes Formatter blocks to w. A nil
// level means INFO.
func NewHandler(w io.Writer, level slog.Leveler, formatter *Formatter) slog.Handler {
	return newAlignedHandler(w, level, formatter)
}
