// Package preflight provides readiness checks for the paths and files sumofix
// depends on.
//
// The CLI "sumofix check" command runs RunAll and prints one line per check.
// Checks only report; they never create or repair anything. Disabled
// features (the history ledger, the disk workspace) are skipped.
package preflight
