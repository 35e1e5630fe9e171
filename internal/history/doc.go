// Package history persists one ledger row per processed archive in SQLite.
//
// The store applies embedded, ordered migrations on open and records the
// counters, digests and removal log of each repair attempt so operators can
// review past runs with `sumofix history`.
package history
