package preflight

import (
	"context"
	"os"

	"sumofix/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{CheckDirectoryAccess("State directory", cfg.Paths.StateDir)}

	if cfg.Workspace.Backend == config.WorkspaceDisk {
		dir := cfg.Workspace.Dir
		if dir == "" {
			dir = os.TempDir()
		}
		results = append(results, CheckDirectoryAccess("Workspace directory", dir))
	}

	results = append(results, CheckLock(cfg.LockPath()))

	if cfg.History.Enabled {
		results = append(results, CheckHistory(ctx, cfg.HistoryPath()))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
