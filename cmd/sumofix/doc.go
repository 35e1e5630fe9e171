// Package main hosts the sumofix CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the structured
// logger and the optional history ledger, and hands the chosen archive or
// directory to the repair pipeline. Repair logic lives in internal packages;
// commands here only translate flags and print summaries.
package main
