// Package logs reads the sumofix log file for the CLI.
//
// The log file holds one JSON object per line. Last returns the trailing
// lines with bounded memory, Follow polls for lines appended after an
// offset, and Filter keeps lines whose fields match a run or archive so a
// history row can be traced back to its log output.
package logs
