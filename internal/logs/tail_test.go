package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"customlogger/internal/logs"
)

const sample = "2024-01-01 00:00:00 [INFO]      a\n" +
	"2024-01-01 00:00:01 [ERROR]     b\n" +
	"                                b2\n" +
	"                                b3\n" +
	"2024-01-01 00:00:02 [INFO]      c\n"

func writeLog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.log")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastEntriesKeepsBlocksWhole(t *testing.T) {
	path := writeLog(t, sample)

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("tail returned error: %v", err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %#v", result.Entries)
	}
	if got := result.Entries[0]; len(got.Lines) != 3 || !strings.HasSuffix(got.Header(), "b") {
		t.Fatalf("expected the multi-line entry intact, got %#v", got.Lines)
	}
	if !strings.HasSuffix(result.Entries[1].Header(), "c") {
		t.Fatalf("unexpected last entry %#v", result.Entries[1])
	}
	if result.Offset != int64(len(sample)) {
		t.Fatalf("offset = %d, want %d", result.Offset, len(sample))
	}
}

func TestTailFromOffset(t *testing.T) {
	path := writeLog(t, sample)
	first := strings.Index(sample, "\n") + 1

	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: int64(first)})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries after the first line, got %d", len(result.Entries))
	}
	if result.Entries[0].String() != strings.Join(strings.Split(sample, "\n")[1:4], "\n") {
		t.Fatalf("unexpected entry text %q", result.Entries[0].String())
	}
}

func TestTailTruncatedFileRestarts(t *testing.T) {
	path := writeLog(t, sample)
	if err := os.WriteFile(path, []byte("2024-01-01 00:00:09 [INFO]      fresh\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := logs.Tail(context.Background(), path, logs.TailOptions{Offset: int64(len(sample))})
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Entries) != 1 || !strings.HasSuffix(result.Entries[0].Header(), "fresh") {
		t.Fatalf("expected to reread truncated file, got %#v", result.Entries)
	}
}

func TestTailMissingFile(t *testing.T) {
	result, err := logs.Tail(context.Background(), filepath.Join(t.TempDir(), "none.log"), logs.TailOptions{Offset: -1, Limit: 5})
	if err != nil {
		t.Fatalf("expected no error for missing file, got %v", err)
	}
	if len(result.Entries) != 0 || result.Offset != 0 {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestTailFollowWaits(t *testing.T) {
	path := writeLog(t, "start\n")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	result, err := logs.Tail(ctx, path, logs.TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial tail: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected initial entry, got %#v", result.Entries)
	}

	done := make(chan struct{})
	go func(offset int64) {
		defer close(done)
		res, err := logs.Tail(ctx, path, logs.TailOptions{Offset: offset, Follow: true, Wait: 5 * time.Second})
		if err != nil {
			t.Errorf("follow tail error: %v", err)
		}
		if len(res.Entries) != 1 || res.Entries[0].String() != "later\n  more" {
			t.Errorf("unexpected follow entries: %#v", res.Entries)
		}
	}(result.Offset)

	time.Sleep(200 * time.Millisecond)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open append: %v", err)
	}
	if _, err := f.WriteString("later\n  more\n"); err != nil {
		t.Fatalf("append log: %v", err)
	}
	_ = f.Close()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("tail follow did not return")
	}
}
