package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
)

// Entry is one log record: its first line followed by continuation lines.
type Entry struct {
	Lines []string
}

// Header returns the entry's first line.
func (e Entry) Header() string {
	if len(e.Lines) == 0 {
		return ""
	}
	return e.Lines[0]
}

func (e Entry) String() string { return strings.Join(e.Lines, "\n") }

type TailOptions struct {
	// Offset is a byte offset to read from; negative means the last Limit
	// entries.
	Offset int64
	Limit  int
	Follow bool
	Wait   time.Duration
}

type TailResult struct {
	Entries []Entry
	Offset  int64
}

const pollInterval = 250 * time.Millisecond

func Tail(ctx context.Context, path string, opts TailOptions) (TailResult, error) {
	result := TailResult{Offset: opts.Offset}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Offset = 0
			return result, nil
		}
		return result, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		return result, fmt.Errorf("log path %q is a directory", path)
	}

	if opts.Wait < 0 {
		opts.Wait = 0
	}

	if opts.Offset < 0 {
		entries, offset, err := readLastEntries(path, opts.Limit)
		if err != nil {
			return result, err
		}
		result.Entries = entries
		result.Offset = offset
		if opts.Follow && opts.Wait > 0 && len(entries) == 0 {
			return waitForEntries(ctx, path, result.Offset, opts.Wait)
		}
		return result, nil
	}

	if opts.Offset > info.Size() {
		// Truncated since the last read (overwrite mode); start over.
		opts.Offset = 0
	}
	entries, newOffset, err := readForward(path, opts.Offset)
	if err != nil {
		return result, err
	}
	result.Entries = entries
	result.Offset = newOffset
	if opts.Follow && opts.Wait > 0 && len(entries) == 0 {
		return waitForEntries(ctx, path, newOffset, opts.Wait)
	}
	return result, nil
}

func isContinuation(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

// openLocked opens path for reading under a shared lock. The returned
// function releases both.
func openLocked(path string) (*os.File, func(), error) {
	lock := flock.New(path)
	locked := lock.RLock() == nil

	file, err := os.Open(path)
	if err != nil {
		if locked {
			_ = lock.Close()
		}
		return nil, nil, err
	}
	return file, func() {
		_ = file.Close()
		if locked {
			_ = lock.Close()
		}
	}, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return scanner
}

func readLastEntries(path string, limit int) ([]Entry, int64, error) {
	file, release, err := openLocked(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer release()

	if limit <= 0 {
		size, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return nil, 0, fmt.Errorf("seek log file: %w", err)
		}
		return nil, size, nil
	}

	ring := make([]Entry, limit)
	count, idx := 0, 0
	var current *Entry
	push := func() {
		if current == nil {
			return
		}
		ring[idx] = *current
		idx = (idx + 1) % limit
		if count < limit {
			count++
		}
		current = nil
	}

	scanner := newScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if current != nil && isContinuation(line) {
			current.Lines = append(current.Lines, line)
			continue
		}
		push()
		current = &Entry{Lines: []string{line}}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}
	push()

	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}

	entries := make([]Entry, count)
	if count == limit {
		for i := 0; i < count; i++ {
			entries[i] = ring[(idx+i)%limit]
		}
	} else {
		copy(entries, ring[:count])
	}
	return entries, offset, nil
}

func readForward(path string, offset int64) ([]Entry, int64, error) {
	file, release, err := openLocked(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open log file: %w", err)
	}
	defer release()

	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return nil, 0, fmt.Errorf("seek log file: %w", err)
	}

	var entries []Entry
	scanner := newScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if n := len(entries); n > 0 && isContinuation(line) {
			entries[n-1].Lines = append(entries[n-1].Lines, line)
			continue
		}
		entries = append(entries, Entry{Lines: []string{line}})
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("read log file: %w", err)
	}

	newOffset, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("determine log offset: %w", err)
	}
	return entries, newOffset, nil
}

func waitForEntries(ctx context.Context, path string, offset int64, wait time.Duration) (TailResult, error) {
	deadline := time.Now().Add(wait)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	result := TailResult{Offset: offset}
	for {
		entries, newOffset, err := readForward(path, offset)
		if err != nil {
			return result, err
		}
		if len(entries) > 0 {
			result.Entries = entries
			result.Offset = newOffset
			return result, nil
		}
		if time.Now().After(deadline) {
			result.Offset = newOffset
			return result, nil
		}

		select {
		case <-ctx.Done():
			result.Offset = newOffset
			return result, ctx.Err()
		case <-ticker.C:
		}
	}
}
