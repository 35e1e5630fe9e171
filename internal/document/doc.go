// Package document models the JSON scene document stored in an archive's
// data.txt entry.
//
// Values form a tagged tree over null, bool, number, string, array and
// ordered object. Parsing keeps object key order and number literals so a
// parse/serialize round trip only changes what the repair stages change.
// Serialization is deterministic: two-space indentation, UTF-8 text without
// ASCII escaping, no trailing newline.
package document
