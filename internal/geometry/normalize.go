package geometry

import (
	"fmt"
	"maps"
	"slices"

	"sumofix/internal/document"
)

var defaultRenames = map[string]string{
	"BoxBufferGeometry":          "BoxGeometry",
	"PlaneBufferGeometry":        "PlaneGeometry",
	"CylinderBufferGeometry":     "CylinderGeometry",
	"SphereBufferGeometry":       "SphereGeometry",
	"CircleBufferGeometry":       "CircleGeometry",
	"ConeBufferGeometry":         "ConeGeometry",
	"TorusBufferGeometry":        "TorusGeometry",
	"TorusKnotBufferGeometry":    "TorusKnotGeometry",
	"DodecahedronBufferGeometry": "DodecahedronGeometry",
	"IcosahedronBufferGeometry":  "IcosahedronGeometry",
	"OctahedronBufferGeometry":   "OctahedronGeometry",
	"TetrahedronBufferGeometry":  "TetrahedronGeometry",
	"RingBufferGeometry":         "RingGeometry",
	"LatheBufferGeometry":        "LatheGeometry",
	"TubeBufferGeometry":         "TubeGeometry",
	"EdgesGeometry":              "EdgesGeometry",
}

// DefaultRenames returns a copy of the built-in deprecated → current type table.
func DefaultRenames() map[string]string {
	return maps.Clone(defaultRenames)
}

// Table is an immutable rename table.
type Table struct {
	renames map[string]string
}

// NewTable builds a table from the defaults plus extra pairs. Extra pairs
// override defaults with the same source. The result must be idempotent: no
// target may itself be renamed to something else.
func NewTable(extra map[string]string) (*Table, error) {
	renames := DefaultRenames()
	for from, to := range extra {
		renames[from] = to
	}
	if err := CheckIdempotent(renames); err != nil {
		return nil, err
	}
	return &Table{renames: renames}, nil
}

// DefaultTable returns the built-in table.
func DefaultTable() *Table {
	return &Table{renames: DefaultRenames()}
}

// CheckIdempotent reports an error when applying renames twice would differ
// from applying it once.
func CheckIdempotent(renames map[string]string) error {
	for _, from := range slices.Sorted(maps.Keys(renames)) {
		to := renames[from]
		if to == "" {
			return fmt.Errorf("geometry rename %q has an empty target", from)
		}
		if next, ok := renames[to]; ok && next != to {
			return fmt.Errorf("geometry rename %q -> %q chains to %q", from, to, next)
		}
	}
	return nil
}

// Lookup returns the replacement for a type name.
func (t *Table) Lookup(name string) (string, bool) {
	to, ok := t.renames[name]
	return to, ok
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.renames) }

// Result summarizes a normalization pass.
type Result struct {
	// Renamed counts geometries whose type string actually changed.
	Renamed int
	// ByType counts changes per original type name.
	ByType map[string]int
}

// Normalize rewrites data.scene.geometries[*].type according to the table.
// A missing or malformed path is not an error; the document is left as is.
func (t *Table) Normalize(doc *document.Value) Result {
	result := Result{ByType: map[string]int{}}
	geometries := document.Lookup(doc, "data", "scene", "geometries")
	for _, geom := range geometries.Items() {
		obj := geom.Object()
		if obj == nil {
			continue
		}
		typeValue, ok := obj.Get("type")
		if !ok {
			continue
		}
		name, ok := typeValue.Str()
		if !ok {
			continue
		}
		to, ok := t.renames[name]
		if !ok || to == name {
			continue
		}
		obj.Set("type", document.String(to))
		result.Renamed++
		result.ByType[name]++
	}
	return result
}

// Normalize applies the built-in table.
func Normalize(doc *document.Value) Result {
	return DefaultTable().Normalize(doc)
}
