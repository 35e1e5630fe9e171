package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"sumofix/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "sumofix")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if cfg.Repair.ArchiveExtension != ".sumo" || cfg.Repair.OutputSuffix != "_fixed" || cfg.Repair.BatchOutputDir != "fixed" {
		t.Fatalf("unexpected repair defaults: %+v", cfg.Repair)
	}
	if cfg.Repair.DefunctEndpoint != "sumo.app/api/auth/check" {
		t.Fatalf("unexpected endpoint: %q", cfg.Repair.DefunctEndpoint)
	}
	if strings.Join(cfg.Repair.ProtectedKeys, ",") != "materials,textures,images" {
		t.Fatalf("unexpected protected keys: %v", cfg.Repair.ProtectedKeys)
	}
	if cfg.Workspace.Backend != config.WorkspaceMemory {
		t.Fatalf("unexpected workspace backend: %q", cfg.Workspace.Backend)
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	info, err := os.Stat(cfg.Paths.StateDir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "sumofix.toml")

	type payload struct {
		Paths struct {
			StateDir string `toml:"state_dir"`
		} `toml:"paths"`
		Repair struct {
			ArchiveExtension string            `toml:"archive_extension"`
			ProtectedKeys    []string          `toml:"protected_keys"`
			GeometryRenames  map[string]string `toml:"geometry_renames"`
		} `toml:"repair"`
		Workspace struct {
			Backend string `toml:"backend"`
		} `toml:"workspace"`
	}
	custom := payload{}
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Repair.ArchiveExtension = "SUMO"
	custom.Repair.ProtectedKeys = []string{" materials ", "materials", "", "shaders"}
	custom.Repair.GeometryRenames = map[string]string{"CapsuleBufferGeometry": "CapsuleGeometry"}
	custom.Workspace.Backend = "Disk"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.StateDir != filepath.Join(tempDir, "state") {
		t.Fatalf("unexpected state dir %q", cfg.Paths.StateDir)
	}
	if cfg.Repair.ArchiveExtension != ".sumo" {
		t.Fatalf("expected normalized extension, got %q", cfg.Repair.ArchiveExtension)
	}
	if strings.Join(cfg.Repair.ProtectedKeys, ",") != "materials,shaders" {
		t.Fatalf("unexpected protected keys: %v", cfg.Repair.ProtectedKeys)
	}
	if cfg.Repair.GeometryRenames["CapsuleBufferGeometry"] != "CapsuleGeometry" {
		t.Fatalf("geometry renames not loaded: %v", cfg.Repair.GeometryRenames)
	}
	if cfg.Workspace.Backend != config.WorkspaceDisk {
		t.Fatalf("unexpected backend %q", cfg.Workspace.Backend)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "sumofix.toml")
	if err := os.WriteFile(configPath, []byte("[repair]\narchive_extention = \".sumo\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestEnvOverridesStateDirAndLevel(t *testing.T) {
	stateDir := filepath.Join(t.TempDir(), "env-state")
	t.Setenv("SUMOFIX_STATE_DIR", stateDir)
	t.Setenv("SUMOFIX_LOG_LEVEL", "DEBUG")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StateDir != stateDir {
		t.Errorf("expected state dir from env, got %q", cfg.Paths.StateDir)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level from env, got %q", cfg.Logging.Level)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "sumo.app/api/auth/check") {
		t.Fatalf("sample config missing endpoint: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Repair.BatchOutputDir != "fixed" {
		t.Fatalf("unexpected batch dir in sample: %q", cfg.Repair.BatchOutputDir)
	}

	loaded, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
	if loaded.Workspace.Backend != config.WorkspaceMemory {
		t.Fatalf("unexpected backend %q", loaded.Workspace.Backend)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad extension", func(c *config.Config) { c.Repair.ArchiveExtension = "sumo" }},
		{"nested extension", func(c *config.Config) { c.Repair.ArchiveExtension = ".a/b" }},
		{"empty suffix", func(c *config.Config) { c.Repair.OutputSuffix = "" }},
		{"suffix with separator", func(c *config.Config) { c.Repair.OutputSuffix = "/x" }},
		{"dot batch dir", func(c *config.Config) { c.Repair.BatchOutputDir = ".." }},
		{"nested batch dir", func(c *config.Config) { c.Repair.BatchOutputDir = "a/b" }},
		{"empty endpoint", func(c *config.Config) { c.Repair.DefunctEndpoint = "" }},
		{"chained rename", func(c *config.Config) {
			c.Repair.GeometryRenames = map[string]string{"BoxGeometry": "CubeGeometry"}
		}},
		{"unknown backend", func(c *config.Config) { c.Workspace.Backend = "s3" }},
		{"unknown level", func(c *config.Config) { c.Logging.Level = "trace" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}
