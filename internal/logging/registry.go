package logging

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// Logger is a named logger owned by a Registry. Its identity is stable:
// reconfiguring swaps the handler set, never the Logger. The embedded
// *slog.Logger routes every record through the current handler set.
type Logger struct {
	*slog.Logger

	name      string
	parent    *Logger
	level     slog.LevelVar
	propagate atomic.Bool

	mu       sync.RWMutex
	handlers []slog.Handler
}

func newLogger(name string, parent *Logger) *Logger {
	l := &Logger{name: name, parent: parent}
	l.propagate.Store(true)
	l.Logger = slog.New(&dispatchHandler{owner: l})
	return l
}

// Name returns the dotted logger name; the root logger's name is empty.
func (l *Logger) Name() string { return l.name }

// Parent returns the enclosing logger, or nil for the root.
func (l *Logger) Parent() *Logger { return l.parent }

// SetLevel sets the minimum level the logger passes to any handler.
func (l *Logger) SetLevel(level slog.Level) { l.level.Set(level) }

// Level returns the logger's minimum level.
func (l *Logger) Level() slog.Level { return l.level.Level() }

// SetPropagate controls whether records also reach ancestor handlers.
func (l *Logger) SetPropagate(on bool) { l.propagate.Store(on) }

// Propagate reports whether records reach ancestor handlers.
func (l *Logger) Propagate() bool { return l.propagate.Load() }

// AddHandler attaches h to the logger.
func (l *Logger) AddHandler(h slog.Handler) {
	if h == nil {
		return
	}
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// Handlers returns a copy of the attached handlers.
func (l *Logger) Handlers() []slog.Handler {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]slog.Handler, len(l.handlers))
	copy(out, l.handlers)
	return out
}

// HasHandlers reports whether the logger has any handler attached.
func (l *Logger) HasHandlers() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.handlers) > 0
}

// ClearHandlers detaches every handler and closes those that own a file.
func (l *Logger) ClearHandlers() error {
	return l.ReplaceHandlers(nil)
}

// ReplaceHandlers swaps in handlers as one step and then closes the
// handlers it displaced. Records logged concurrently see either the old set
// or the new one, never an empty logger in between.
func (l *Logger) ReplaceHandlers(handlers []slog.Handler) error {
	next := make([]slog.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			next = append(next, h)
		}
	}
	l.mu.Lock()
	old := l.handlers
	l.handlers = next
	l.mu.Unlock()
	return closeHandlers(old)
}

func closeHandlers(handlers []slog.Handler) error {
	var errs []error
	for _, h := range handlers {
		if c, ok := h.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// targets collects the handlers a record reaches: the logger's own, then each
// ancestor's for as long as propagation stays on.
func (l *Logger) targets() []slog.Handler {
	out := l.Handlers()
	for c := l; c.Propagate() && c.parent != nil; {
		c = c.parent
		out = append(out, c.Handlers()...)
	}
	return out
}

// dispatchHandler is the slog.Handler behind Logger. WithAttrs and WithGroup
// are recorded and replayed on the live handler set at Handle time, so
// derived loggers follow reconfiguration.
type dispatchHandler struct {
	owner *Logger
	ops   []func(slog.Handler) slog.Handler
}

func (h *dispatchHandler) Enabled(ctx context.Context, level slog.Level) bool {
	if level < h.owner.Level() {
		return false
	}
	for _, target := range h.owner.targets() {
		if target.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *dispatchHandler) Handle(ctx context.Context, record slog.Record) error {
	if record.Level < h.owner.Level() {
		return nil
	}
	targets := h.owner.targets()
	var errs []error
	for idx, target := range targets {
		for _, op := range h.ops {
			target = op(target)
		}
		if !target.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if idx < len(targets)-1 {
			rec = record.Clone()
		}
		if err := target.Handle(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *dispatchHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *dispatchHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *dispatchHandler) with(op func(slog.Handler) slog.Handler) *dispatchHandler {
	ops := make([]func(slog.Handler) slog.Handler, len(h.ops), len(h.ops)+1)
	copy(ops, h.ops)
	return &dispatchHandler{owner: h.owner, ops: append(ops, op)}
}

// Registry hands out named loggers. Names are dotted paths; a logger's parent
// is the logger named by its path minus the last segment, ending at the root.
type Registry struct {
	mu      sync.Mutex
	root    *Logger
	loggers map[string]*Logger
}

// NewRegistry returns a registry holding only a root logger.
func NewRegistry() *Registry {
	root := newLogger("", nil)
	return &Registry{root: root, loggers: map[string]*Logger{"": root}}
}

var defaultRegistry = NewRegistry()

// GetLogger returns the named logger from the process-wide registry.
func GetLogger(name string) *Logger { return defaultRegistry.Get(name) }

// Root returns the registry's root logger.
func (r *Registry) Root() *Logger { return r.root }

// Get returns the logger called name, creating it and any missing ancestors.
// Repeated calls with the same name return the same Logger.
func (r *Registry) Get(name string) *Logger {
	name = strings.Trim(strings.TrimSpace(name), ".")
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(name)
}

func (r *Registry) getLocked(name string) *Logger {
	if l, ok := r.loggers[name]; ok {
		return l
	}
	parentName := ""
	if idx := strings.LastIndexByte(name, '.'); idx >= 0 {
		parentName = name[:idx]
	}
	l := newLogger(name, r.getLocked(parentName))
	r.loggers[name] = l
	return l
}
