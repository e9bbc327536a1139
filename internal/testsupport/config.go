package testsupport

import (
	"path/filepath"
	"testing"

	"specfetch/internal/config"
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
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Archive.UserAgent = "specfetch/test"
	cfgVal.Pipeline.Parallelism = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithArchiveURL points the archive client at a test server.
func WithArchiveURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Archive.BaseURL = url
	}
}

// WithMASTURL points the MAST client at a test server.
func WithMASTURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MAST.BaseURL = url
	}
}

// WithSIMBADURL points the SIMBAD client at a test server.
func WithSIMBADURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SIMBAD.BaseURL = url
	}
}

// WithHistoryDisabled turns off the fetch ledger.
func WithHistoryDisabled() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
