package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func plainHandler(t *testing.T, buf *bytes.Buffer, level slog.Leveler) *alignedHandler {
	t.Helper()
	f, err := NewFormatter(DefaultFormatterConfig(), nil)
	if err != nil {
		t.Fatalf("NewFormatter: %v", err)
	}
	return newAlignedHandler(buf, level, f)
}

func TestRegistryReturnsSameLogger(t *testing.T) {
	r := NewRegistry()
	a := r.Get("svc.db")
	b := r.Get(" svc.db ")
	if a != b {
		t.Fatal("expected the same logger for the same name")
	}
	if a.Parent() != r.Get("svc") {
		t.Fatal("expected svc to be the parent of svc.db")
	}
	if r.Get("svc").Parent() != r.Root() {
		t.Fatal("expected root to be the parent of svc")
	}
	if r.Get("") != r.Root() {
		t.Fatal("expected empty name to return root")
	}
}

func TestPropagationReachesAncestors(t *testing.T) {
	r := NewRegistry()
	var rootBuf, childBuf bytes.Buffer
	r.Root().AddHandler(plainHandler(t, &rootBuf, nil))
	child := r.Get("app.worker")
	child.AddHandler(plainHandler(t, &childBuf, nil))

	child.Info("propagated")
	if !strings.Contains(childBuf.String(), "propagated") || !strings.Contains(rootBuf.String(), "propagated") {
		t.Fatalf("expected record in both handlers: child=%q root=%q", childBuf.String(), rootBuf.String())
	}

	rootBuf.Reset()
	r.Get("app").SetPropagate(false)
	child.Info("stops at app")
	if rootBuf.Len() != 0 {
		t.Fatalf("expected propagation to stop at app, root got %q", rootBuf.String())
	}
}

func TestLoggerLevelGatesHandlers(t *testing.T) {
	r := NewRegistry()
	var buf bytes.Buffer
	l := r.Get("gate")
	l.AddHandler(plainHandler(t, &buf, slog.LevelDebug))
	l.SetLevel(slog.LevelError)

	if l.Enabled(context.Background(), slog.LevelWarn) {
		t.Fatal("expected warn to be disabled")
	}
	l.Warn("dropped")
	l.Error("kept")
	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestDerivedLoggerFollowsReconfiguration(t *testing.T) {
	r := NewRegistry()
	l := r.Get("derived")
	var first, second bytes.Buffer
	l.AddHandler(plainHandler(t, &first, nil))

	child := l.With("request", "r-1").WithGroup("db")
	child.Info("query", "rows", 3)
	if !strings.Contains(first.String(), "request=r-1 db.rows=3") {
		t.Fatalf("expected attrs in output, got %q", first.String())
	}

	_ = l.ClearHandlers()
	l.AddHandler(plainHandler(t, &second, nil))
	child.Info("again")
	if !strings.Contains(second.String(), "again") {
		t.Fatalf("derived logger did not follow new handlers: %q", second.String())
	}
}

type closeTracker struct {
	slog.Handler
	closed bool
	err    error
}

func (c *closeTracker) Close() error {
	c.closed = true
	return c.err
}

func TestClearHandlersClosesClosers(t *testing.T) {
	r := NewRegistry()
	l := r.Get("closer")
	ok := &closeTracker{Handler: NoopHandler{}}
	bad := &closeTracker{Handler: NoopHandler{}, err: errors.New("close failed")}
	l.AddHandler(ok)
	l.AddHandler(bad)
	l.AddHandler(NoopHandler{})

	err := l.ClearHandlers()
	if err == nil || !strings.Contains(err.Error(), "close failed") {
		t.Fatalf("expected close error, got %v", err)
	}
	if !ok.closed || !bad.closed {
		t.Fatal("expected every closer to be closed")
	}
	if l.HasHandlers() {
		t.Fatal("expected no handlers after clear")
	}
}

func TestDispatchJoinsHandlerErrors(t *testing.T) {
	r := NewRegistry()
	l := r.Get("errs")
	var buf bytes.Buffer
	l.AddHandler(failingHandler{})
	l.AddHandler(plainHandler(t, &buf, nil))

	rec := slog.NewRecord(exampleTime, slog.LevelInfo, "still written", 0)
	if err := l.Handler().Handle(context.Background(), rec); err == nil {
		t.Fatal("expected handler error to surface")
	}
	if !strings.Contains(buf.String(), "still written") {
		t.Fatal("expected the healthy handler to receive the record")
	}
}

type failingHandler struct{ NoopHandler }

func (failingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (failingHandler) Handle(context.Context, slog.Record) error { return errors.New("disk full") }

func TestReplaceHandlersSwapsAndClosesOld(t *testing.T) {
	r := NewRegistry()
	l := r.Get("swap")
	old := &closeTracker{Handler: NoopHandler{}}
	l.AddHandler(old)

	var buf bytes.Buffer
	next := plainHandler(t, &buf, nil)
	if err := l.ReplaceHandlers([]slog.Handler{next, nil}); err != nil {
		t.Fatalf("ReplaceHandlers: %v", err)
	}
	if !old.closed {
		t.Fatal("expected displaced handler to be closed")
	}
	if got := l.Handlers(); len(got) != 1 || got[0] != next {
		t.Fatalf("handlers = %v, want only the new one", got)
	}
	l.Info("routed")
	if !strings.Contains(buf.String(), "routed") {
		t.Fatalf("new handler missed record: %q", buf.String())
	}
}
