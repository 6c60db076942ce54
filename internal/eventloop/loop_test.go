package eventloop

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T, l *Loop) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() { done <- l.Run(context.Background()) }()
	select {
	case <-l.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not start")
	}
	return done
}

func waitStopped(t *testing.T, l *Loop, done <-chan error) {
	t.Helper()
	l.Stop()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop")
	}
}

func TestRunExecutesTasksInOrder(t *testing.T) {
	l := New()
	done := startLoop(t, l)

	var mu sync.Mutex
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		if err := l.Submit("task", func(context.Context) error {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return nil
		}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	waitStopped(t, l, done)

	if len(order) != 5 {
		t.Fatalf("expected 5 tasks to run, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("tasks ran out of order: %v", order)
		}
	}
}

func TestRunningTracksActiveLoop(t *testing.T) {
	if Running() != nil {
		t.Fatal("expected no running loop before Run")
	}
	l := New()
	done := startLoop(t, l)
	if Running() != l {
		t.Fatal("expected Running to return the active loop")
	}
	waitStopped(t, l, done)
	if Running() != nil {
		t.Fatal("expected Running to be cleared after Run returns")
	}
	if !l.IsClosed() {
		t.Fatal("expected loop to be closed after Run returns")
	}
	if err := l.Submit("late", func(context.Context) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestTaskErrorReachesExceptionHandler(t *testing.T) {
	l := New()
	var got []ExceptionContext
	var mu sync.Mutex
	l.SetExceptionHandler(func(_ *Loop, ec ExceptionContext) {
		mu.Lock()
		got = append(got, ec)
		mu.Unlock()
	})
	done := startLoop(t, l)

	boom := errors.New("boom")
	_ = l.Submit("fails", func(context.Context) error { return boom })
	_ = l.Submit("panics", func(context.Context) error { panic("kaboom") })
	waitStopped(t, l, done)

	if len(got) != 2 {
		t.Fatalf("expected 2 exception reports, got %d", len(got))
	}
	if !errors.Is(got[0].Err, boom) || got[0].Task != "fails" {
		t.Fatalf("unexpected first report: %+v", got[0])
	}
	if got[1].Err == nil || !strings.Contains(got[1].Err.Error(), "kaboom") {
		t.Fatalf("expected panic error, got %+v", got[1])
	}
	if len(got[1].Stack) == 0 {
		t.Fatal("expected stack for panicking task")
	}
}

func TestDefaultExceptionHandlerWritesReport(t *testing.T) {
	var buf bytes.Buffer
	l := New(WithOutput(&buf))
	l.ReportError("socket closed unexpectedly")
	l.CallExceptionHandler(ExceptionContext{Err: errors.New("bad"), Task: "fetch"})

	out := buf.String()
	if !strings.Contains(out, "socket closed unexpectedly") {
		t.Fatalf("missing message in %q", out)
	}
	if !strings.Contains(out, "task: fetch") || !strings.Contains(out, "bad") {
		t.Fatalf("missing task report in %q", out)
	}
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	l := New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	<-l.Ready()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not stop on cancel")
	}
}
