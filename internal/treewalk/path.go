package treewalk

import (
	"strconv"
	"strings"
)

// Step is one hop in a Path: an object key or an array index.
type Step struct {
	Key     string
	Index   int
	IsIndex bool
}

// Path locates a node from the document root.
type Path []Step

// Key returns a new path extended by an object key.
func (p Path) Key(key string) Path {
	return p.with(Step{Key: key})
}

// Index returns a new path extended by an array index.
func (p Path) Index(i int) Path {
	return p.with(Step{Index: i, IsIndex: true})
}

func (p Path) with(step Step) Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return append(out, step)
}

// String renders the path as data.scene.geometries[0].type. The root is "$".
func (p Path) String() string {
	if len(p) == 0 {
		return "$"
	}
	var b strings.Builder
	for i, step := range p {
		if step.IsIndex {
			b.WriteByte('[')
			b.WriteString(strconv.Itoa(step.Index))
			b.WriteByte(']')
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step.Key)
	}
	return b.String()
}
