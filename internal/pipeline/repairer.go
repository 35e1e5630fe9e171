package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"sumofix/internal/archive"
	"sumofix/internal/config"
	"sumofix/internal/document"
	"sumofix/internal/fileutil"
	"sumofix/internal/history"
	"sumofix/internal/logging"
	"sumofix/internal/workspace"
)

// ErrOutputWrite marks failures writing the repaired archive. No file is left
// at the output path when it is returned.
var ErrOutputWrite = errors.New("write output")

// Ledger stores one row per processed archive.
type Ledger interface {
	Record(ctx context.Context, run history.Run) (int64, error)
	FindByOutputDigest(ctx context.Context, digest string) (*history.Run, error)
}

// Repairer processes archives on disk.
type Repairer struct {
	cfg    *config.Config
	rules  Rules
	logger *slog.Logger
	ledger Ledger
	runID  string
	now    func() time.Time
}

// Option customizes a Repairer.
type Option func(*Repairer)

// WithLedger records every processed archive in ledger.
func WithLedger(ledger Ledger) Option {
	return func(r *Repairer) { r.ledger = ledger }
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(r *Repairer) {
		if id != "" {
			r.runID = id
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Repairer) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a Repairer from cfg. A nil logger discards output.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Repairer, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	rules, err := RulesFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	r := &Repairer{
		cfg:    cfg,
		rules:  rules,
		logger: logging.NewComponentLogger(logger, "pipeline"),
		runID:  uuid.NewString(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunID identifies this Repairer's invocation in logs and the ledger.
func (r *Repairer) RunID() string { return r.runID }

// Config returns the configuration in use.
func (r *Repairer) Config() *config.Config { return r.cfg }

// ProcessFile repairs input and writes the result to output. An empty output
// uses OutputPath with the configured suffix.
func (r *Repairer) ProcessFile(ctx context.Context, input, output string) (*Result, error) {
	if output == "" {
		output = OutputPath(input, r.cfg.Repair.OutputSuffix)
	}
	return r.process(ctx, input, output, "")
}

// ProcessBatch repairs every archive directly inside dir into its batch
// output directory. Per-archive failures are collected and never stop the
// batch; only listing the directory, creating the output directory, or
// cancellation return an error.
func (r *Repairer) ProcessBatch(ctx context.Context, dir string) (*BatchResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	ext := r.cfg.Repair.ArchiveExtension
	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() || !HasArchiveExtension(entry.Name(), ext) {
			continue
		}
		inputs = append(inputs, filepath.Join(dir, entry.Name()))
	}

	outDir := filepath.Join(dir, r.cfg.Repair.BatchOutputDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", outDir, err)
	}

	batchID := uuid.NewString()
	logger := r.logger.With(logging.String("batch_id", batchID))
	logger.Info("batch started",
		logging.String("dir", dir),
		logging.String("output_dir", outDir),
		logging.Int("archives", len(inputs)),
	)

	result := &BatchResult{Dir: dir, OutputDir: outDir}
	sampler := logging.NewProgressSampler(25)
	for i, input := range inputs {
		if err := ctx.Err(); err != nil {
			result.Cancelled = true
			logging.WarnWithContext(logger, "batch cancelled", "batch_cancelled",
				logging.Int("remaining", len(inputs)-i),
				logging.String(logging.FieldImpact, "remaining archives were not processed"),
				logging.String(logging.FieldErrorHint, "rerun the batch to process the rest"),
			)
			return result, err
		}

		output := BatchOutputPath(input, outDir, r.cfg.Repair.OutputSuffix)
		res, err := r.process(ctx, input, output, batchID)
		if err != nil {
			result.Failures = append(result.Failures, Failure{Input: input, Err: err})
		} else {
			result.Results = append(result.Results, res)
		}

		if sampler.ShouldLog(logging.Percent(i+1, len(inputs)), "batch") {
			logger.Info("batch progress",
				logging.Int("done", i+1),
				logging.Int("total", len(inputs)),
				logging.Int("failed", len(result.Failures)),
			)
		}
	}

	logger.Info("batch finished",
		logging.Int("succeeded", result.Succeeded()),
		logging.Int("failed", len(result.Failures)),
	)
	return result, nil
}

func (r *Repairer) process(ctx context.Context, input, output, batchID string) (res *Result, err error) {
	started := r.now()
	ctx = logging.WithArchive(ctx, input)
	logger := logging.WithContext(ctx, r.logger)

	run := history.Run{
		RunID:      r.runID,
		BatchID:    batchID,
		InputPath:  input,
		OutputPath: output,
		StartedAt:  started,
	}
	defer func() {
		run.FinishedAt = r.now()
		if err != nil {
			run.Status = history.StatusFailed
			run.ErrorMessage = err.Error()
			run.OutputPath = ""
			logging.ErrorWithContext(logger, "archive repair failed", failureEventType(err),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, failureHint(err)),
			)
		} else {
			run.Status = history.StatusSucceeded
			res.Duration = run.FinishedAt.Sub(started)
		}
		r.record(ctx, logger, run)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sameFile(input, output) {
		return nil, fmt.Errorf("%w: %s would overwrite the input", ErrOutputWrite, output)
	}

	data, err := os.ReadFile(input)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", input, err)
	}
	run.InputSHA256 = fileutil.SHA256Hex(data)
	r.warnIfAlreadyRepaired(ctx, logger, run.InputSHA256)

	contents, err := archive.Unpack(data)
	if err != nil {
		return nil, err
	}
	logger.Debug("archive unpacked",
		logging.String(logging.FieldStage, string(StageUnpacked)),
		logging.Int("entries", len(contents.Entries)),
		logging.Int("document_bytes", len(contents.DocumentBytes)),
	)

	ws, err := workspace.New(r.cfg.Workspace.Backend, r.cfg.Workspace.Dir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := ws.Close(); closeErr != nil {
			logging.WarnWithContext(logger, "workspace cleanup failed", "workspace_cleanup",
				logging.Error(closeErr),
				logging.String("workspace", ws.Root()),
				logging.String(logging.FieldImpact, "temporary files remain on disk"),
				logging.String(logging.FieldErrorHint, "remove the directory manually"),
			)
		}
	}()
	if err := ws.Stage(contents.Entries); err != nil {
		return nil, fmt.Errorf("stage entries: %w", err)
	}

	shadow, err := document.Parse(contents.DocumentBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse shadow: %w", archive.ErrMissingDocument, err)
	}

	outcome := r.rules.Repair(contents.Document, shadow)
	r.logOutcome(logger, outcome)
	run.GeometriesRenamed = outcome.Geometry.Renamed
	run.ImagesMatched = outcome.Images.Matched
	run.ImagesDecoded = outcome.Images.Decoded
	run.ImagesFailed = outcome.Images.Failed
	run.ImagesReverted = outcome.Images.Reverted
	run.ImageFormats = outcome.Images.Formats()
	run.FieldsRemoved = len(outcome.Removals)
	for _, removal := range outcome.Removals {
		run.Removals = append(run.Removals, history.Removal{
			ParentKey: removal.ParentKey,
			Key:       removal.Key,
			Path:      removal.Path.String(),
		})
	}

	entries, err := ws.Collect()
	if err != nil {
		return nil, fmt.Errorf("collect entries: %w", err)
	}
	var buf bytes.Buffer
	if err := archive.Pack(&buf, contents.Document, entries); err != nil {
		return nil, fmt.Errorf("repack: %w", err)
	}
	if err := fileutil.WriteFileAtomic(output, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOutputWrite, output, err)
	}
	run.OutputSHA256 = fileutil.SHA256Hex(buf.Bytes())

	logger.Info("archive repaired",
		logging.String(logging.FieldStage, string(StageRepacked)),
		logging.String("output", output),
		logging.Int("renamed", outcome.Geometry.Renamed),
		logging.Int("images_failed", outcome.Images.Failed),
		logging.Int("removed", len(outcome.Removals)),
	)

	return &Result{
		Input:       input,
		Output:      output,
		InputBytes:  int64(len(data)),
		OutputBytes: int64(buf.Len()),
		Entries:     len(entries),
		Outcome:     outcome,
	}, nil
}

func (r *Repairer) logOutcome(logger *slog.Logger, outcome Outcome) {
	logger.Debug("geometries normalized",
		logging.String(logging.FieldStage, string(StageGeometryFixed)),
		logging.Int("renamed", outcome.Geometry.Renamed),
	)
	logger.Debug("images validated",
		logging.String(logging.FieldStage, string(StageImagesValidated)),
		logging.Int("matched", outcome.Images.Matched),
		logging.Int("decoded", outcome.Images.Decoded),
		logging.Int("failed", outcome.Images.Failed),
		logging.Int("reverted", outcome.Images.Reverted),
	)
	for _, failure := range outcome.Images.Failures {
		if failure.Reverted {
			logging.WarnWithContext(logger, "corrupt image reverted to original", "image_reverted",
				logging.String("path", failure.Path.String()),
				logging.String("format", failure.Format),
				logging.String(logging.FieldImpact, "the image from the original document is used"),
				logging.String(logging.FieldErrorHint, "check the image in the editor"),
			)
			continue
		}
		logging.WarnWithContext(logger, "corrupt image left in place", "image_unrecoverable",
			logging.String("path", failure.Path.String()),
			logging.String("format", failure.Format),
			logging.String(logging.FieldImpact, "the image will not render"),
			logging.String(logging.FieldErrorHint, "re-import the image in the editor"),
		)
	}
	for _, removal := range outcome.Removals {
		logger.Info("defunct reference removed",
			logging.String(logging.FieldStage, string(StageReferencesScrubbed)),
			logging.String("parent_key", removal.ParentKey),
			logging.String("key", removal.Key),
			logging.String("path", removal.Path.String()),
		)
	}
}

func (r *Repairer) warnIfAlreadyRepaired(ctx context.Context, logger *slog.Logger, digest string) {
	if r.ledger == nil {
		return
	}
	prior, err := r.ledger.FindByOutputDigest(ctx, digest)
	if err != nil {
		logger.Debug("history lookup failed", logging.Error(err))
		return
	}
	if prior != nil {
		logging.WarnWithContext(logger, "archive was produced by an earlier repair", "already_repaired",
			logging.String("previous_input", prior.InputPath),
			logging.String("previous_run", prior.RunID),
			logging.String(logging.FieldImpact, "repairing again is harmless but unnecessary"),
			logging.String(logging.FieldErrorHint, "open the original archive instead"),
		)
	}
}

func (r *Repairer) record(ctx context.Context, logger *slog.Logger, run history.Run) {
	if r.ledger == nil {
		return
	}
	if _, err := r.ledger.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logger, "history record failed", "history_write",
			logging.Error(err),
			logging.String(logging.FieldImpact, "this run is missing from sumofix history"),
		)
	}
}

func failureEventType(err error) string {
	switch {
	case errors.Is(err, archive.ErrCorruptArchive):
		return "corrupt_archive"
	case errors.Is(err, archive.ErrMissingDocument):
		return "missing_document"
	case errors.Is(err, ErrOutputWrite):
		return "output_write"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "archive_failed"
	}
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, archive.ErrCorruptArchive):
		return "the file is not a readable zip archive; re-export it from the editor"
	case errors.Is(err, archive.ErrMissingDocument):
		return "the archive has no valid data.txt scene document"
	case errors.Is(err, ErrOutputWrite):
		return "check free space and permissions of the output directory"
	default:
		return "check logs for details"
	}
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
