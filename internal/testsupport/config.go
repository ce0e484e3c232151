package testsupport

import (
	"path/filepath"
	"testing"

	"otterpack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Resources.DevFolder = filepath.Join(base, "_otterpack")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	return builder.cfg
}

// WithDevMode enables the development resource folder and creates it with a
// stub encoder plus the named capture files.
func WithDevMode(captures ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resources.DevMode = true
		WriteStubBinary(b.t, b.cfg.Resources.DevFolder, b.cfg.Resources.Binary, "exit 0")
		WriteFiles(b.t, b.cfg.Resources.DevFolder, captures...)
	}
}

// WithFormat overrides the default conversion format.
func WithFormat(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Conversion.Format = name
	}
}

// WithHistoryDisabled turns off the run history database.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}
