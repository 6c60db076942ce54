package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"customlogger/internal/config"
	"customlogger/internal/fileutil"
	"customlogger/internal/logging"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a console-only config with colour and crash hooks off,
// rooted in a fresh temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfgVal := config.Default()
	cfgVal.Logging.Color = logging.ColorNever
	cfgVal.Logging.Exceptions = false

	builder := &configBuilder{
		t:       t,
		baseDir: t.TempDir(),
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithLogFiles points the general and error log at files under the temp dir.
func WithLogFiles() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Logging.LogFile = filepath.Join(b.baseDir, "logs", "app.log")
		b.cfg.Logging.ErrorLogFile = filepath.Join(b.baseDir, "logs", "errors.log")
	}
}

// WithLevel sets the minimum level.
func WithLevel(level string) ConfigOption {
	return func(b *configBuilder) { b.cfg.Logging.Level = level }
}

// WriteConfig encodes cfg as TOML and replaces path atomically.
func WriteConfig(t testing.TB, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		t.Fatalf("write config %s: %v", path, err)
	}
}

var envKeys = []string{
	"LOG_FILE", "ERROR_LOG_FILE", "LEVEL", "OVERWRITE", "WIDTH",
	"MESSAGE_COLUMN", "TIME_FORMAT", "EXCEPTIONS", "COLOR",
}

// IsolateEnv gives the test a private HOME and working directory and clears
// every CUSTOMLOGGER_ override. It returns the HOME directory.
func IsolateEnv(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	home := filepath.Join(base, "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(base); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prevWD); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
	for _, key := range envKeys {
		t.Setenv(config.EnvPrefix+key, "")
		if err := os.Unsetenv(config.EnvPrefix + key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
	return home
}
