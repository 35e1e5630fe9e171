// Package geometry renames deprecated geometry type identifiers found under
// data.scene.geometries to their current names.
package geometry
