package testsupport

import (
	"path/filepath"
	"testing"

	"sumofix/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp state directory per
// test. History is disabled unless WithHistory is passed.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.History.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}
	for _, opt := range opts {
		opt(builder)
	}
	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithHistory enables the ledger in the test state directory.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// WithDiskWorkspace stages entries under the test temp dir instead of memory.
func WithDiskWorkspace() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Workspace.Backend = config.WorkspaceDisk
		b.cfg.Workspace.Dir = filepath.Join(b.baseDir, "workspaces")
	}
}

// WithProtectedKeys replaces the scrubber's protected keys.
func WithProtectedKeys(keys ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Repair.ProtectedKeys = keys
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
