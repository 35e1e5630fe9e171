package workspace

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"sumofix/internal/logging"
)

// DefaultStaleAge is how old a leftover disk workspace must be before
// CleanStale removes it.
const DefaultStaleAge = 24 * time.Hour

const dirPattern = "sumofix-*"

// CleanResult lists what CleanStale removed and what it could not.
type CleanResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory with the error removing it.
type CleanupError struct {
	Path string
	Err  error
}

// CleanStale removes disk workspaces under parentDir (the system temp dir when
// empty) whose modification time is older than maxAge. They are left behind
// only when a process dies before Close. Other directories are never touched.
func CleanStale(parentDir string, maxAge time.Duration, now time.Time, logger *slog.Logger) CleanResult {
	var result CleanResult

	parentDir = strings.TrimSpace(parentDir)
	if parentDir == "" {
		parentDir = os.TempDir()
	}
	entries, err := os.ReadDir(parentDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: parentDir, Err: err})
		}
		return result
	}

	cutoff := now.Add(-maxAge)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if ok, _ := filepath.Match(dirPattern, entry.Name()); !ok {
			continue
		}
		dirPath := filepath.Join(parentDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Err: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Err: err})
			if logger != nil {
				logging.WarnWithContext(logger, "failed to remove stale workspace", "workspace_cleanup_failed",
					logging.String("path", dirPath),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check workspace.dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		if logger != nil {
			logger.Info("removed stale workspace",
				logging.String("path", dirPath),
				logging.Duration("age", now.Sub(info.ModTime())),
				logging.String(logging.FieldEventType, "workspace_cleanup"),
			)
		}
	}
	return result
}
