package document

import "fmt"

// Kind identifies the JSON type held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Value is a node of a schema-less JSON document.
//
// Numbers keep the literal text they were parsed from so a round trip does
// not reformat them. Arrays and objects hold child pointers; mutating a child
// through its pointer mutates the tree.
type Value struct {
	kind    Kind
	boolean bool
	text    string
	items   []*Value
	object  *Object
}

// Null returns a JSON null.
func Null() *Value { return &Value{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) *Value { return &Value{kind: KindBool, boolean: b} }

// String wraps a string.
func String(s string) *Value { return &Value{kind: KindString, text: s} }

// Number wraps a JSON number literal. The literal is not validated here;
// Parse only produces well-formed literals.
func Number(literal string) *Value { return &Value{kind: KindNumber, text: literal} }

// Array wraps a list of values.
func Array(items ...*Value) *Value {
	if items == nil {
		items = []*Value{}
	}
	return &Value{kind: KindArray, items: items}
}

// ObjectValue wraps an ordered object. A nil object becomes an empty one.
func ObjectValue(obj *Object) *Value {
	if obj == nil {
		obj = NewObject()
	}
	return &Value{kind: KindObject, object: obj}
}

// Kind reports the value's JSON type. A nil Value reports KindNull.
func (v *Value) Kind() Kind {
	if v == nil {
		return KindNull
	}
	return v.kind
}

// Str returns the string payload and whether v is a string.
func (v *Value) Str() (string, bool) {
	if v.Kind() != KindString {
		return "", false
	}
	return v.text, true
}

// BoolValue returns the boolean payload and whether v is a bool.
func (v *Value) BoolValue() (bool, bool) {
	if v.Kind() != KindBool {
		return false, false
	}
	return v.boolean, true
}

// NumberLiteral returns the number literal and whether v is a number.
func (v *Value) NumberLiteral() (string, bool) {
	if v.Kind() != KindNumber {
		return "", false
	}
	return v.text, true
}

// Items returns the elements of an array, or nil for any other kind.
func (v *Value) Items() []*Value {
	if v.Kind() != KindArray {
		return nil
	}
	return v.items
}

// Object returns the ordered object, or nil for any other kind.
func (v *Value) Object() *Object {
	if v.Kind() != KindObject {
		return nil
	}
	return v.object
}

// SetItem replaces the element at index i. It reports false when v is not
// an array or i is out of range.
func (v *Value) SetItem(i int, item *Value) bool {
	if v.Kind() != KindArray || i < 0 || i >= len(v.items) {
		return false
	}
	v.items[i] = item
	return true
}

// Append adds elements to an array value.
func (v *Value) Append(items ...*Value) {
	if v.Kind() != KindArray {
		return
	}
	v.items = append(v.items, items...)
}

// Clone returns a deep copy of v.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	out := &Value{kind: v.kind, boolean: v.boolean, text: v.text}
	switch v.kind {
	case KindArray:
		out.items = make([]*Value, len(v.items))
		for i, item := range v.items {
			out.items[i] = item.Clone()
		}
	case KindObject:
		out.object = v.object.Clone()
	}
	return out
}

// Equal reports whether two trees are deeply equal. Object member order is
// significant and numbers compare by literal.
func Equal(a, b *Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch a.Kind() {
	case KindNull:
		return true
	case KindBool:
		return a.boolean == b.boolean
	case KindNumber, KindString:
		return a.text == b.text
	case KindArray:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return a.object.equal(b.object)
	}
	return false
}

// Lookup follows object keys from root and returns the value found, or nil
// when any step is missing or not an object.
func Lookup(root *Value, keys ...string) *Value {
	cur := root
	for _, key := range keys {
		obj := cur.Object()
		if obj == nil {
			return nil
		}
		next, ok := obj.Get(key)
		if !ok {
			return nil
		}
		cur = next
	}
	return cur
}
