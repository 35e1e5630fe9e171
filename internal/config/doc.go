// Package config loads, normalizes, and validates sumofix configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// SUMOFIX_STATE_DIR. The Config type centralizes the repair rules (archive
// extension, output naming, defunct endpoint, protected keys, extra geometry
// renames), the workspace backend, the history ledger, and logging.
//
// Always obtain settings through this package so downstream code receives
// expanded paths, canonical log formats, and clear validation errors.
package config
