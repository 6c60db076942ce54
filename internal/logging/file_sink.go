package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// fileSink is a log file that holds an exclusive flock(2) on its own
// descriptor for the duration of each write, so processes sharing a file
// never interleave blocks. The lock is the same one gofrs/flock takes, so
// readers holding a shared lock see whole blocks.
type fileSink struct {
	path string
	file *os.File
}

func openFileSink(path string, overwrite bool) (*fileSink, error) {
	if err := ensureLogDir(path); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	flags := os.O_CREATE | os.O_WRONLY
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	file, err := os.OpenFile(path, flags, 0o664)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return &fileSink{path: path, file: file}, nil
}

func (s *fileSink) Write(p []byte) (int, error) {
	fd := int(s.file.Fd())
	// A failed lock still writes; losing the entry is worse than interleaving.
	if err := flockRetry(fd, unix.LOCK_EX); err == nil {
		defer flockRetry(fd, unix.LOCK_UN) //nolint:errcheck
	}
	return s.file.Write(p)
}

func (s *fileSink) Close() error {
	return s.file.Close()
}

func flockRetry(fd, how int) error {
	for {
		if err := unix.Flock(fd, how); err != unix.EINTR {
			return err
		}
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// resolveLogPath returns an absolute, symlink-free form of path so two
// spellings of the same file compare equal. The file need not exist.
func resolveLogPath(path string) string {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}

func newFileHandler(path string, overwrite bool, level slog.Leveler, formatter *Formatter) (*alignedHandler, error) {
	sink, err := openFileSink(path, overwrite)
	if err != nil {
		return nil, err
	}
	h := newAlignedHandler(sink, level, formatter)
	h.closer = sink
	return h, nil
}
