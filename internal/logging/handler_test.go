package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestHandlerWritesOneBlockPerRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(plainHandler(t, &buf, nil))

	logger.Info("first\nsecond")
	logger.Info("third")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 physical lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "handler_test.go:") {
		t.Fatalf("expected source on first line, got %q", lines[0])
	}
	if strings.Contains(lines[1], ".go:") {
		t.Fatalf("continuation line carries a source: %q", lines[1])
	}
}

func TestHandlerQuotesAttrValues(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(plainHandler(t, &buf, nil))
	logger.Info("saved", "path", "/tmp/a b", "ok", true)

	if !strings.Contains(buf.String(), `path="/tmp/a b" ok=true`) {
		t.Fatalf("unexpected attrs rendering %q", buf.String())
	}
}

func TestHandlerConcurrentWritesStayWhole(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(plainHandler(t, &buf, nil))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("alpha\nbeta")
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 40 {
		t.Fatalf("expected 40 lines, got %d", len(lines))
	}
	for i := 0; i < len(lines); i += 2 {
		if !strings.Contains(lines[i], "alpha") || strings.TrimSpace(lines[i+1]) != "beta" {
			t.Fatalf("interleaved block at line %d: %q / %q", i, lines[i], lines[i+1])
		}
	}
}

func TestFileHandlerAppendsAndCloses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	f, _ := NewFormatter(DefaultFormatterConfig(), nil)

	h, err := newFileHandler(path, false, slog.LevelInfo, f)
	if err != nil {
		t.Fatalf("newFileHandler: %v", err)
	}
	slog.New(h).Info("persisted")
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "persisted") {
		t.Fatalf("expected entry in file, got %q", data)
	}
}

func TestResolveLogPathEquatesSpellings(t *testing.T) {
	dir := t.TempDir()
	a := resolveLogPath(filepath.Join(dir, "sub", "..", "app.log"))
	b := resolveLogPath(filepath.Join(dir, "app.log"))
	if a != b {
		t.Fatalf("expected equal paths, got %q and %q", a, b)
	}
}

func TestConsoleColorEnabled(t *testing.T) {
	var buf bytes.Buffer
	if consoleColorEnabled(&buf, ColorAuto) {
		t.Fatal("expected no colour for a non-terminal writer")
	}
	if !consoleColorEnabled(&buf, ColorAlways) {
		t.Fatal("expected colour when forced")
	}
	if consoleColorEnabled(os.Stdout, ColorNever) {
		t.Fatal("expected no colour when disabled")
	}
	t.Setenv("NO_COLOR", "1")
	if consoleColorEnabled(os.Stdout, ColorAuto) {
		t.Fatal("expected NO_COLOR to disable colour")
	}
}

func TestHandlerQuotesUnsafeKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(plainHandler(t, &buf, nil))

	logger.Info("one line", "bad\nkey", "v", slog.Group("grp\r", slog.String("k", "v")))

	out := strings.TrimRight(buf.String(), "\n")
	if strings.ContainsAny(out, "\n\r") {
		t.Fatalf("control characters in keys split the block: %q", out)
	}
	if !strings.Contains(out, `"bad\nkey"=v`) {
		t.Fatalf("expected quoted key in %q", out)
	}
	if !strings.Contains(out, `"grp\r.k"=v`) {
		t.Fatalf("expected quoted group key in %q", out)
	}
}

func TestFileSinkWaitsForSharedLockHolders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	sink, err := openFileSink(path, true)
	if err != nil {
		t.Fatalf("openFileSink: %v", err)
	}
	defer sink.Close()

	reader := flock.New(path)
	if err := reader.RLock(); err != nil {
		t.Fatalf("RLock: %v", err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = sink.Write([]byte("locked write\n"))
	}()

	select {
	case <-done:
		t.Fatal("write finished while a reader held the lock")
	case <-time.After(100 * time.Millisecond):
	}
	if err := reader.Unlock(); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("write did not finish after the reader released the lock")
	}
	if got := readAll(t, path); got != "locked write\n" {
		t.Fatalf("file contents = %q", got)
	}
}

func readAll(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
