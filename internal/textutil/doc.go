// Package textutil renders the human-readable pieces of sumofix reports:
// rounded tables, upper-cased image format tags, byte sizes and
// pluralized counts.
package textutil
