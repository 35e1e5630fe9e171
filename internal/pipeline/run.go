package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"sumofix/internal/logging"
	"sumofix/internal/workspace"
)

// Mode selects single-archive or directory processing.
type Mode string

const (
	ModeSingle Mode = "single"
	ModeBatch  Mode = "batch"
)

// Selection is what an InputChooser picked. An empty Path means the user
// cancelled.
type Selection struct {
	Path string
	Mode Mode
	// Output overrides the single-mode output path.
	Output string
}

// InputChooser picks the archive or directory to repair.
type InputChooser interface {
	ChooseInput(ctx context.Context) (Selection, error)
}

// Reporter receives one human-readable summary per completed run.
type Reporter interface {
	Report(message string)
}

// ErrNothingRepaired is returned by Run when a batch produced no output but
// had at least one failure.
var ErrNothingRepaired = errors.New("no archives were repaired")

// NothingSelectedMessage is reported when the chooser returns no path.
const NothingSelectedMessage = "Nothing selected; no archives were processed."

// Run asks chooser for an input, processes it in the requested mode and
// reports the summary. A single-archive failure is reported and returned.
func (r *Repairer) Run(ctx context.Context, chooser InputChooser, reporter Reporter) error {
	selection, err := chooser.ChooseInput(ctx)
	if err != nil {
		return fmt.Errorf("choose input: %w", err)
	}
	if strings.TrimSpace(selection.Path) == "" {
		r.logger.Info("no input selected")
		reporter.Report(NothingSelectedMessage)
		return nil
	}

	mode := selection.Mode
	if mode == "" {
		mode = ModeSingle
		if info, statErr := os.Stat(selection.Path); statErr == nil && info.IsDir() {
			mode = ModeBatch
		}
	}

	if r.cfg.Paths.StateDir != "" {
		lock, err := AcquireLock(r.cfg.LockPath())
		if err != nil {
			return err
		}
		defer func() {
			if err := lock.Release(); err != nil {
				r.logger.Warn("failed to release run lock", logging.Error(err))
			}
		}()
	}

	if r.cfg.Workspace.Backend == workspace.BackendDisk {
		workspace.CleanStale(r.cfg.Workspace.Dir, workspace.DefaultStaleAge, r.now(), r.logger)
	}

	ctx = logging.WithRunID(ctx, r.runID)
	switch mode {
	case ModeSingle:
		res, err := r.ProcessFile(ctx, selection.Path, selection.Output)
		if err != nil {
			reporter.Report(FormatFailure(selection.Path, err))
			return err
		}
		reporter.Report(FormatResult(res))
		return nil
	case ModeBatch:
		batch, err := r.ProcessBatch(ctx, selection.Path)
		if batch != nil {
			reporter.Report(FormatBatch(batch))
		}
		if err != nil {
			if batch == nil {
				reporter.Report(FormatFailure(selection.Path, err))
			}
			return err
		}
		if batch.Succeeded() == 0 && len(batch.Failures) > 0 {
			return ErrNothingRepaired
		}
		return nil
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}
