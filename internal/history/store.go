package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Status is the outcome of one archive repair.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Removal is one scrubbed field as stored in the ledger.
type Removal struct {
	ParentKey string `json:"parent_key"`
	Key       string `json:"key"`
	Path      string `json:"path"`
}

// Run is one ledger row.
type Run struct {
	ID           int64
	RunID        string
	BatchID      string
	InputPath    string
	OutputPath   string
	InputSHA256  string
	OutputSHA256 string
	Status       Status
	ErrorMessage string

	GeometriesRenamed int
	ImagesMatched     int
	ImagesDecoded     int
	ImagesFailed      int
	ImagesReverted    int
	FieldsRemoved     int
	ImageFormats      []string
	Removals          []Removal

	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration reports how long the repair took.
func (r Run) Duration() time.Duration {
	if r.StartedAt.IsZero() || r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Store manages ledger persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run and returns its row id.
func (s *Store) Record(ctx context.Context, run Run) (int64, error) {
	if run.RunID == "" {
		return 0, errors.New("run id is required")
	}
	if run.InputPath == "" {
		return 0, errors.New("input path is required")
	}
	if run.Status == "" {
		return 0, errors.New("status is required")
	}

	var removals any
	if len(run.Removals) > 0 {
		encoded, err := json.Marshal(run.Removals)
		if err != nil {
			return 0, fmt.Errorf("encode removals: %w", err)
		}
		removals = string(encoded)
	}
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	started := run.StartedAt
	if started.IsZero() {
		started = finished
	}

	res, err := s.db.ExecContext(ctx, `INSERT INTO runs (
		run_id, batch_id, input_path, output_path, input_sha256, output_sha256,
		status, error_message, geometries_renamed, images_matched, images_decoded,
		images_failed, images_reverted, fields_removed, image_formats, removals_json,
		started_at, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		nullableString(run.BatchID),
		run.InputPath,
		nullableString(run.OutputPath),
		nullableString(run.InputSHA256),
		nullableString(run.OutputSHA256),
		string(run.Status),
		nullableString(run.ErrorMessage),
		run.GeometriesRenamed,
		run.ImagesMatched,
		run.ImagesDecoded,
		run.ImagesFailed,
		run.ImagesReverted,
		run.FieldsRemoved,
		nullableString(strings.Join(run.ImageFormats, ",")),
		removals,
		formatTime(started),
		formatTime(finished),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return res.LastInsertId()
}

const runColumns = "id, run_id, batch_id, input_path, output_path, input_sha256, output_sha256, status, error_message, geometries_renamed, images_matched, images_decoded, images_failed, images_reverted, fields_removed, image_formats, removals_json, started_at, finished_at"

// Recent returns up to limit rows, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM runs ORDER BY finished_at DESC, id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// FindByOutputDigest returns the most recent successful run that produced an
// archive with the given digest, or nil.
func (s *Store) FindByOutputDigest(ctx context.Context, digest string) (*Run, error) {
	if digest == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE output_sha256 = ? AND status = ? ORDER BY id DESC LIMIT 1",
		digest, string(StatusSucceeded))
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup output digest: %w", err)
	}
	return run, nil
}

// Stats returns row counts per status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM runs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(status)] = count
	}
	return stats, rows.Err()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		batchID      sql.NullString
		outputPath   sql.NullString
		inputSHA     sql.NullString
		outputSHA    sql.NullString
		status       string
		errorMessage sql.NullString
		formats      sql.NullString
		removals     sql.NullString
		startedRaw   string
		finishedRaw  string
	)
	if err := scanner.Scan(
		&run.ID,
		&run.RunID,
		&batchID,
		&run.InputPath,
		&outputPath,
		&inputSHA,
		&outputSHA,
		&status,
		&errorMessage,
		&run.GeometriesRenamed,
		&run.ImagesMatched,
		&run.ImagesDecoded,
		&run.ImagesFailed,
		&run.ImagesReverted,
		&run.FieldsRemoved,
		&formats,
		&removals,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run.BatchID = batchID.String
	run.OutputPath = outputPath.String
	run.InputSHA256 = inputSHA.String
	run.OutputSHA256 = outputSHA.String
	run.Status = Status(status)
	run.ErrorMessage = errorMessage.String
	if formats.String != "" {
		run.ImageFormats = strings.Split(formats.String, ",")
	}
	if removals.Valid && removals.String != "" {
		if err := json.Unmarshal([]byte(removals.String), &run.Removals); err != nil {
			return nil, fmt.Errorf("decode removals: %w", err)
		}
	}
	if t, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = t
	}
	if t, err := parseTimeString(finishedRaw); err == nil {
		run.FinishedAt = t
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	return time.Parse(time.RFC3339Nano, value)
}
