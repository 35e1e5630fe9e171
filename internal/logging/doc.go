// Package logging assembles the structured slog loggers used by sumofix.
//
// It owns the console and JSON handlers, fans records out to the terminal and
// the state log file, tags every record with the run identifier, and exposes
// context helpers so repair code can attach the archive and stage to its log
// lines. A no-op logger is provided for tests and library callers.
package logging
