package treewalk

import (
	"sumofix/internal/document"
)

type actionKind uint8

const (
	actionDescend actionKind = iota
	actionReplace
	actionSkip
)

// Action tells Walk what to do after visiting a node.
type Action struct {
	kind  actionKind
	value *document.Value
}

// Descend continues into the node's children. It is the zero Action.
func Descend() Action { return Action{kind: actionDescend} }

// Replace substitutes value for the visited node and does not descend into
// either the old or the new value.
func Replace(value *document.Value) Action { return Action{kind: actionReplace, value: value} }

// SkipSubtree leaves the node untouched and does not descend into it.
func SkipSubtree() Action { return Action{kind: actionSkip} }

// Node describes the position handed to a Visitor.
type Node struct {
	// Path locates the node from the root.
	Path Path
	// Key is the member key when Parent is an object; empty otherwise.
	Key string
	// ParentKey is the key of the nearest enclosing object member, carried
	// through arrays. Empty at the top level.
	ParentKey string
	// Parent is the containing array or object; nil for the root.
	Parent *document.Value
	// Value is the working value at Path.
	Value *document.Value
	// Shadow is the value at the same path in the shadow tree, or nil when
	// the shadow has no counterpart. It must not be mutated.
	Shadow *document.Value
}

// Visitor decides what happens at each node.
type Visitor func(Node) Action

// Walk traverses root depth-first in pre-order, visiting the root first,
// then object members in order and array elements by index. shadow may be
// nil. Walk returns the root, which differs from the argument only when the
// visitor replaced the root itself.
func Walk(root, shadow *document.Value, visit Visitor) *document.Value {
	w := walker{visit: visit}
	return w.walk(Node{Value: root, Shadow: shadow})
}

type walker struct {
	visit Visitor
}

func (w *walker) walk(n Node) *document.Value {
	action := w.visit(n)
	switch action.kind {
	case actionReplace:
		return action.value
	case actionSkip:
		return n.Value
	}

	switch n.Value.Kind() {
	case document.KindObject:
		w.walkObject(n)
	case document.KindArray:
		w.walkArray(n)
	}
	return n.Value
}

func (w *walker) walkObject(n Node) {
	obj := n.Value.Object()
	shadowObj := n.Shadow.Object()
	// Iterate a snapshot so a visitor cannot disturb traversal order.
	for _, m := range obj.Members() {
		var shadow *document.Value
		if shadowObj != nil {
			shadow, _ = shadowObj.Get(m.Key)
		}
		child := Node{
			Path:      n.Path.Key(m.Key),
			Key:       m.Key,
			ParentKey: n.memberParentKey(),
			Parent:    n.Value,
			Value:     m.Value,
			Shadow:    shadow,
		}
		if out := w.walk(child); out != m.Value {
			obj.Set(m.Key, out)
		}
	}
}

func (w *walker) walkArray(n Node) {
	shadowItems := n.Shadow.Items()
	items := n.Value.Items()
	for i := range items {
		var shadow *document.Value
		if i < len(shadowItems) {
			shadow = shadowItems[i]
		}
		child := Node{
			Path:      n.Path.Index(i),
			ParentKey: n.memberParentKey(),
			Parent:    n.Value,
			Value:     items[i],
			Shadow:    shadow,
		}
		if out := w.walk(child); out != items[i] {
			n.Value.SetItem(i, out)
		}
	}
}

// memberParentKey is the ParentKey for children of n: the key that owns n
// when n is an object member, otherwise whatever n itself inherited.
func (n Node) memberParentKey() string {
	if n.Parent.Kind() == document.KindObject {
		return n.Key
	}
	return n.ParentKey
}
