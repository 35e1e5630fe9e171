package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeRepair()
	if err := c.normalizeWorkspace(); err != nil {
		return err
	}
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("SUMOFIX_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeRepair() {
	ext := strings.ToLower(strings.TrimSpace(c.Repair.ArchiveExtension))
	if ext == "" {
		ext = defaultArchiveExtension
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	c.Repair.ArchiveExtension = ext

	c.Repair.OutputSuffix = strings.TrimSpace(c.Repair.OutputSuffix)
	if c.Repair.OutputSuffix == "" {
		c.Repair.OutputSuffix = defaultOutputSuffix
	}
	c.Repair.BatchOutputDir = strings.TrimSpace(c.Repair.BatchOutputDir)
	if c.Repair.BatchOutputDir == "" {
		c.Repair.BatchOutputDir = defaultBatchOutputDir
	}
	c.Repair.DefunctEndpoint = strings.TrimSpace(c.Repair.DefunctEndpoint)
	if c.Repair.DefunctEndpoint == "" {
		c.Repair.DefunctEndpoint = defaultDefunctEndpoint
	}

	if c.Repair.ProtectedKeys == nil {
		c.Repair.ProtectedKeys = defaultProtectedKeys()
	} else {
		keys := make([]string, 0, len(c.Repair.ProtectedKeys))
		seen := make(map[string]struct{}, len(c.Repair.ProtectedKeys))
		for _, key := range c.Repair.ProtectedKeys {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		c.Repair.ProtectedKeys = keys
	}

	if len(c.Repair.GeometryRenames) > 0 {
		renames := make(map[string]string, len(c.Repair.GeometryRenames))
		for from, to := range c.Repair.GeometryRenames {
			renames[strings.TrimSpace(from)] = strings.TrimSpace(to)
		}
		c.Repair.GeometryRenames = renames
	}
}

func (c *Config) normalizeWorkspace() error {
	c.Workspace.Backend = strings.ToLower(strings.TrimSpace(c.Workspace.Backend))
	if c.Workspace.Backend == "" {
		c.Workspace.Backend = WorkspaceMemory
	}
	var err error
	if c.Workspace.Dir, err = expandPath(strings.TrimSpace(c.Workspace.Dir)); err != nil {
		return fmt.Errorf("workspace.dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeHistory() error {
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	if value, ok := os.LookupEnv("SUMOFIX_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
