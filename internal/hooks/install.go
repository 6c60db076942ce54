package hooks

import (
	"context"
	"log/slog"
	"strings"

	"customlogger/internal/eventloop"
)

// FieldCrashID tags every crash report so console and file entries can be
// matched up.
const FieldCrashID = "crash_id"

// Install routes uncaught failures into logger using the process-wide State.
func Install(logger *slog.Logger) bool {
	return Process().Install(logger)
}

// Install wires logger into every failure channel. Only the first call on a
// State has any effect; it reports whether this call installed the hooks.
//
// The event loop channel is hooked only if a loop is running right now. A
// loop started later is never hooked.
func (s *State) Install(logger *slog.Logger) bool {
	if logger == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.installed {
		return false
	}

	s.main.append(s.logLink(logger, func(PanicEvent) string { return "Uncaught exception" }))
	s.worker.append(s.logLink(logger, func(ev PanicEvent) string {
		return "Uncaught goroutine panic (" + ev.Goroutine + ")"
	}))

	if loop := s.loopLookup(); loop != nil && !loop.IsClosed() {
		s.loop = loop
		s.origLoopHandler = loop.ExceptionHandler()
		loop.SetExceptionHandler(s.loopHandler(logger, s.origLoopHandler))
	}

	s.installed = true
	return true
}

func (s *State) logLink(logger *slog.Logger, title func(PanicEvent) string) Link {
	return func(ev PanicEvent, next func(PanicEvent)) {
		if !IsInterrupt(ev.Value) {
			logger.LogAttrs(context.Background(), slog.LevelError,
				title(ev)+"\n"+formatPanic(ev),
				slog.String(FieldCrashID, s.newID()),
			)
		}
		next(ev)
	}
}

func (s *State) loopHandler(logger *slog.Logger, orig eventloop.ExceptionHandler) eventloop.ExceptionHandler {
	return func(loop *eventloop.Loop, ec eventloop.ExceptionContext) {
		if ec.Err != nil {
			var b strings.Builder
			b.WriteString("Unhandled event loop exception\n")
			b.WriteString(ec.Err.Error())
			if stack := strings.TrimRight(string(ec.Stack), "\n"); stack != "" {
				b.WriteString("\n")
				b.WriteString(stack)
			}
			logger.LogAttrs(context.Background(), slog.LevelError, b.String(),
				slog.String(FieldCrashID, s.newID()),
			)
		} else {
			logger.LogAttrs(context.Background(), slog.LevelError,
				"Unhandled event loop error: "+loopMessage(ec),
				slog.String(FieldCrashID, s.newID()),
			)
		}
		if orig != nil {
			orig(loop, ec)
			return
		}
		loop.DefaultExceptionHandler(ec)
	}
}

func loopMessage(ec eventloop.ExceptionContext) string {
	msg := strings.TrimSpace(ec.Message)
	if msg == "" {
		msg = "unknown error"
	}
	if ec.Task != "" {
		msg += " (task " + ec.Task + ")"
	}
	return msg
}
