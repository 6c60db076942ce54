package eventloop

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned when work is submitted to a stopped loop.
var ErrClosed = errors.New("event loop is closed")

// ExceptionContext describes a failure reported to a loop's exception handler.
type ExceptionContext struct {
	Message string
	Err     error
	Stack   []byte
	Task    string
}

// ExceptionHandler receives failures from tasks managed by a loop.
type ExceptionHandler func(loop *Loop, ec ExceptionContext)

// Task is a unit of work executed on the loop goroutine.
type Task func(ctx context.Context) error

type queuedTask struct {
	name string
	fn   Task
}

// Loop runs submitted tasks one at a time on the goroutine that called Run.
type Loop struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []queuedTask
	handler ExceptionHandler
	stopped bool
	closed  atomic.Bool
	ready   chan struct{}
	once    sync.Once
	out     io.Writer
}

// Option customizes a Loop.
type Option func(*Loop)

// WithOutput sets where the default exception handler writes reports.
func WithOutput(w io.Writer) Option {
	return func(l *Loop) {
		if w != nil {
			l.out = w
		}
	}
}

var running atomic.Pointer[Loop]

// Running returns the loop currently executing Run, or nil.
func Running() *Loop {
	return running.Load()
}

// New constructs an idle loop.
func New(opts ...Option) *Loop {
	l := &Loop{out: os.Stderr, ready: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Ready is closed once Run has registered the loop as running.
func (l *Loop) Ready() <-chan struct{} {
	return l.ready
}

// IsClosed reports whether the loop has finished running.
func (l *Loop) IsClosed() bool {
	return l.closed.Load()
}

// Submit queues fn for execution. Submitting to a closed loop fails.
func (l *Loop) Submit(name string, fn Task) error {
	if fn == nil {
		return errors.New("submit: nil task")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopped || l.closed.Load() {
		return ErrClosed
	}
	l.queue = append(l.queue, queuedTask{name: name, fn: fn})
	l.cond.Signal()
	return nil
}

// Stop asks Run to return once queued tasks have drained.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.cond.Broadcast()
	l.mu.Unlock()
}

// Run executes tasks until Stop is called or ctx is done. Only one loop may
// run per process at a time.
func (l *Loop) Run(ctx context.Context) error {
	if l.closed.Load() {
		return ErrClosed
	}
	if !running.CompareAndSwap(nil, l) {
		return errors.New("another event loop is already running")
	}
	defer func() {
		l.closed.Store(true)
		running.CompareAndSwap(l, nil)
	}()

	stopWatch := context.AfterFunc(ctx, l.Stop)
	defer stopWatch()

	l.once.Do(func() { close(l.ready) })

	for {
		task, ok := l.next()
		if !ok {
			return ctx.Err()
		}
		l.execute(ctx, task)
	}
}

func (l *Loop) next() (queuedTask, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for len(l.queue) == 0 && !l.stopped {
		l.cond.Wait()
	}
	if len(l.queue) == 0 {
		return queuedTask{}, false
	}
	task := l.queue[0]
	l.queue = l.queue[1:]
	return task, true
}

func (l *Loop) execute(ctx context.Context, task queuedTask) {
	defer func() {
		if r := recover(); r != nil {
			l.CallExceptionHandler(ExceptionContext{
				Message: "Task panicked",
				Err:     panicError(r),
				Stack:   debug.Stack(),
				Task:    task.name,
			})
		}
	}()
	if err := task.fn(ctx); err != nil {
		l.CallExceptionHandler(ExceptionContext{
			Message: "Task exception was never retrieved",
			Err:     err,
			Task:    task.name,
		})
	}
}

// ReportError routes a failure without an error value to the exception handler.
func (l *Loop) ReportError(message string) {
	l.CallExceptionHandler(ExceptionContext{Message: message})
}

// SetExceptionHandler replaces the loop's exception handler. Nil restores the
// default handler.
func (l *Loop) SetExceptionHandler(h ExceptionHandler) {
	l.mu.Lock()
	l.handler = h
	l.mu.Unlock()
}

// ExceptionHandler returns the installed handler, or nil when the default is in use.
func (l *Loop) ExceptionHandler() ExceptionHandler {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.handler
}

// CallExceptionHandler dispatches ec to the installed or default handler.
func (l *Loop) CallExceptionHandler(ec ExceptionContext) {
	if h := l.ExceptionHandler(); h != nil {
		h(l, ec)
		return
	}
	l.DefaultExceptionHandler(ec)
}

// DefaultExceptionHandler writes the report to the loop's output.
func (l *Loop) DefaultExceptionHandler(ec ExceptionContext) {
	var b strings.Builder
	msg := ec.Message
	if msg == "" {
		msg = "Unhandled exception in event loop"
	}
	b.WriteString(msg)
	if ec.Task != "" {
		b.WriteString("\ntask: ")
		b.WriteString(ec.Task)
	}
	if ec.Err != nil {
		b.WriteString("\n")
		b.WriteString(ec.Err.Error())
	}
	if len(ec.Stack) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.TrimRight(string(ec.Stack), "\n"))
	}
	b.WriteString("\n")
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, b.String())
}

func panicError(v any) error {
	if err, ok := v.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", v)
}
