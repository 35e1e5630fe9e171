package config

import (
	"errors"
	"fmt"
	"strings"

	"sumofix/internal/geometry"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateRepair(); err != nil {
		return err
	}
	if err := c.validateWorkspace(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}

func (c *Config) validateRepair() error {
	r := c.Repair
	if len(r.ArchiveExtension) < 2 || !strings.HasPrefix(r.ArchiveExtension, ".") || strings.ContainsAny(r.ArchiveExtension[1:], `./\`) {
		return fmt.Errorf("repair.archive_extension %q must look like .sumo", r.ArchiveExtension)
	}
	if r.OutputSuffix == "" {
		return errors.New("repair.output_suffix must be set so outputs never overwrite inputs")
	}
	if strings.ContainsAny(r.OutputSuffix, `/\`) {
		return fmt.Errorf("repair.output_suffix %q must not contain path separators", r.OutputSuffix)
	}
	if r.BatchOutputDir == "" || r.BatchOutputDir == "." || r.BatchOutputDir == ".." || strings.ContainsAny(r.BatchOutputDir, `/\`) {
		return fmt.Errorf("repair.batch_output_dir %q must be a single directory name", r.BatchOutputDir)
	}
	if r.DefunctEndpoint == "" {
		return errors.New("repair.defunct_endpoint must be set")
	}
	for from := range r.GeometryRenames {
		if from == "" {
			return errors.New("repair.geometry_renames keys must not be empty")
		}
	}
	if len(r.GeometryRenames) > 0 {
		if _, err := geometry.NewTable(r.GeometryRenames); err != nil {
			return fmt.Errorf("repair.geometry_renames: %w", err)
		}
	}
	return nil
}

func (c *Config) validateWorkspace() error {
	switch c.Workspace.Backend {
	case WorkspaceMemory, WorkspaceDisk:
		return nil
	default:
		return fmt.Errorf("workspace.backend %q must be %q or %q", c.Workspace.Backend, WorkspaceMemory, WorkspaceDisk)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
}
