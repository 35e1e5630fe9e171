// Package scrub removes document fields that reference the defunct
// authentication endpoint. Values under protected keys (materials, textures,
// images) are never inspected.
package scrub
