package hooks

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/google/uuid"

	"customlogger/internal/eventloop"
)

const (
	exitPanic     = 2
	exitInterrupt = 130
)

// State records whether hooks are installed and what they wrap.
type State struct {
	mu        sync.RWMutex
	installed bool
	main      chain
	worker    chain

	loop            *eventloop.Loop
	origLoopHandler eventloop.ExceptionHandler

	stderr     io.Writer
	exit       func(int)
	loopLookup func() *eventloop.Loop
	newID      func() string
}

// Option customizes a State.
type Option func(*State)

// WithStderr sets where the base handlers print crash reports.
func WithStderr(w io.Writer) Option {
	return func(s *State) {
		if w != nil {
			s.stderr = w
		}
	}
}

// WithExit replaces os.Exit in the base handlers.
func WithExit(exit func(int)) Option {
	return func(s *State) {
		if exit != nil {
			s.exit = exit
		}
	}
}

// WithLoopLookup replaces eventloop.Running as the source of the loop to hook.
func WithLoopLookup(lookup func() *eventloop.Loop) Option {
	return func(s *State) {
		if lookup != nil {
			s.loopLookup = lookup
		}
	}
}

// NewState returns an empty State whose chains end in the default terminal
// behaviour: print the panic and stack to stderr and exit.
func NewState(opts ...Option) *State {
	s := &State{
		stderr:     os.Stderr,
		exit:       os.Exit,
		loopLookup: eventloop.Running,
		newID:      uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.main.base = s.defaultMain
	s.worker.base = s.defaultWorker
	return s
}

var (
	processOnce  sync.Once
	processState *State
)

// Process returns the process-wide State.
func Process() *State {
	processOnce.Do(func() {
		processState = NewState()
	})
	return processState
}

// Installed reports whether Install has run on s.
func (s *State) Installed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.installed
}

// HookedLoop returns the event loop whose handler was wrapped, if any.
func (s *State) HookedLoop() *eventloop.Loop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loop
}

// Depth returns the number of installed links on the main and worker chains.
func (s *State) Depth() (main, worker int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.main.links), len(s.worker.links)
}

// RecoverMain must be deferred directly at the top of main. A panic escaping
// main is handed to the main chain.
func (s *State) RecoverMain() {
	if r := recover(); r != nil {
		s.HandleMainPanic(r, debug.Stack())
	}
}

// RecoverWorker must be deferred directly at the top of a goroutine.
func (s *State) RecoverWorker(name string) {
	if r := recover(); r != nil {
		s.HandleWorkerPanic(name, r, debug.Stack())
	}
}

// Go runs fn on a new goroutine whose panics go to the worker chain.
func (s *State) Go(name string, fn func()) {
	go func() {
		defer s.RecoverWorker(name)
		fn()
	}()
}

// HandleMainPanic dispatches a recovered main-goroutine panic.
func (s *State) HandleMainPanic(value any, stack []byte) {
	s.mu.RLock()
	c := s.main.snapshot()
	s.mu.RUnlock()
	c.dispatch(PanicEvent{Value: value, Stack: stack, Goroutine: "main"})
}

// HandleWorkerPanic dispatches a recovered worker-goroutine panic.
func (s *State) HandleWorkerPanic(name string, value any, stack []byte) {
	if strings.TrimSpace(name) == "" {
		name = "unknown"
	}
	s.mu.RLock()
	c := s.worker.snapshot()
	s.mu.RUnlock()
	c.dispatch(PanicEvent{Value: value, Stack: stack, Goroutine: name})
}

func (s *State) defaultMain(ev PanicEvent) {
	if IsInterrupt(ev.Value) {
		fmt.Fprintln(s.stderr, "interrupted")
		s.exit(exitInterrupt)
		return
	}
	fmt.Fprintln(s.stderr, formatPanic(ev))
	s.exit(exitPanic)
}

func (s *State) defaultWorker(ev PanicEvent) {
	if IsInterrupt(ev.Value) {
		fmt.Fprintf(s.stderr, "goroutine %s interrupted\n", ev.Goroutine)
		s.exit(exitInterrupt)
		return
	}
	fmt.Fprintf(s.stderr, "goroutine %s: %s\n", ev.Goroutine, formatPanic(ev))
	s.exit(exitPanic)
}

func formatPanic(ev PanicEvent) string {
	var b strings.Builder
	b.WriteString("panic: ")
	if err, ok := ev.Value.(error); ok {
		b.WriteString(err.Error())
	} else {
		fmt.Fprint(&b, ev.Value)
	}
	if stack := strings.TrimRight(string(ev.Stack), "\n"); stack != "" {
		b.WriteString("\n\n")
		b.WriteString(stack)
	}
	return b.String()
}
