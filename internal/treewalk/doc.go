// Package treewalk traverses document trees with a visitor that can descend,
// replace a node in place, or skip a subtree.
//
// A shadow tree can be threaded alongside the working tree; each visited
// node receives the shadow value found at the same path, which lets callers
// fall back to original content without discarding other changes.
package treewalk
