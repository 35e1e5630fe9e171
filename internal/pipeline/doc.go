// Package pipeline drives the repair of .sumo scene archives.
//
// Repair is the pure, in-memory core: it runs the geometry normalizer, the
// image validator and the reference scrubber over a parsed document in that
// order and returns an Outcome. A Repairer wraps it with file handling: it
// reads an archive, unpacks it, stages the asset entries in a workspace,
// repairs the document against an independently parsed shadow copy, repacks
// and writes the result atomically, and records the attempt in the history
// ledger. ProcessBatch applies the same steps to every archive in a
// directory, isolating per-archive failures.
//
// Run connects a Repairer to the two collaborators a front end provides: an
// InputChooser that picks the path and mode, and a Reporter that receives the
// human-readable summary.
package pipeline
