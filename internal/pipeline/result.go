package pipeline

import (
	"time"
)

// Result describes one successfully repaired archive.
type Result struct {
	Input       string
	Output      string
	InputBytes  int64
	OutputBytes int64
	// Entries counts the non-document members carried over.
	Entries  int
	Outcome  Outcome
	Duration time.Duration
}

// Failure is a per-archive error recorded during a batch.
type Failure struct {
	Input string
	Err   error
}

// BatchResult summarizes a directory run.
type BatchResult struct {
	Dir       string
	OutputDir string
	Results   []*Result
	Failures  []Failure
	// Cancelled is set when the context ended before every archive ran.
	Cancelled bool
}

// Succeeded returns the number of archives written.
func (b *BatchResult) Succeeded() int { return len(b.Results) }

// Total returns the number of archives attempted.
func (b *BatchResult) Total() int { return len(b.Results) + len(b.Failures) }
