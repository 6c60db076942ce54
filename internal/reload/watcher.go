package reload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"customlogger/internal/config"
	"customlogger/internal/logging"
)

// DefaultDebounce is how long the file must stay quiet before it is reloaded.
const DefaultDebounce = 150 * time.Millisecond

// ApplyFunc installs a freshly loaded configuration.
type ApplyFunc func(*config.Config) error

// LoadFunc loads and validates the configuration at path.
type LoadFunc func(path string) (*config.Config, error)

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger for reload diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) { w.logger = logging.NewComponentLogger(logger, "config-reload") }
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLoader replaces config.Load.
func WithLoader(load LoadFunc) Option {
	return func(w *Watcher) {
		if load != nil {
			w.load = load
		}
	}
}

// Watcher reloads a config file on change.
type Watcher struct {
	path     string
	apply    ApplyFunc
	load     LoadFunc
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	fsw     *fsnotify.Watcher
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// New returns a Watcher for the config file at path.
func New(path string, apply ApplyFunc, opts ...Option) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("reload: config path is required")
	}
	if apply == nil {
		return nil, errors.New("reload: apply function is required")
	}
	abs, err := config.ExpandPath(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		apply:    apply,
		load:     loadConfig,
		logger:   logging.NewComponentLogger(nil, "config-reload"),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

func loadConfig(path string) (*config.Config, error) {
	cfg, _, _, err := config.Load(path)
	return cfg, err
}

// Path returns the watched config file.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. It returns once the watch is registered; events are
// processed until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.fsw = fsw
	w.quit = make(chan struct{})
	w.done = make(chan struct{})
	w.running = true

	go w.watchLoop(ctx, fsw, w.quit, w.done)

	w.logger.Info("config watcher started",
		logging.String(logging.FieldEventType, "config_watch_started"),
		logging.String(logging.FieldPath, w.path),
	)
	return nil
}

// Stop ends watching and waits for the event loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	close(w.quit)
	done := w.done
	fsw := w.fsw
	w.fsw, w.quit, w.done = nil, nil, nil
	w.running = false
	w.mu.Unlock()

	<-done
	_ = fsw.Close()

	w.logger.Info("config watcher stopped",
		logging.String(logging.FieldEventType, "config_watch_stopped"),
	)
}

// Running reports whether the watcher is active.
func (w *Watcher) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Run starts the watcher and blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	w.Stop()
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context, fsw *fsnotify.Watcher, quit <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-quit:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error",
				logging.Error(err),
				logging.String(logging.FieldEventType, "config_watch_error"),
				logging.String(logging.FieldImpact, "configuration changes may be missed"),
			)
		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) reload() {
	cfg, err := w.load(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected; keeping current settings",
			logging.Error(err),
			logging.String(logging.FieldEventType, "config_reload_rejected"),
			logging.String(logging.FieldPath, w.path),
			logging.String(logging.FieldErrorHint, "fix the file and save it again"),
		)
		return
	}
	if err := w.apply(cfg); err != nil {
		w.logger.Error("config reload failed",
			logging.Error(err),
			logging.String(logging.FieldEventType, "config_reload_failed"),
			logging.String(logging.FieldPath, w.path),
		)
		return
	}
	w.logger.Info("configuration reloaded",
		logging.String(logging.FieldEventType, "config_reloaded"),
		logging.String(logging.FieldPath, w.path),
		logging.String("level", cfg.Logging.Level),
	)
}
