package document

// Member is a single key/value pair of an Object.
type Member struct {
	Key   string
	Value *Value
}

// Object is a JSON object that remembers insertion order.
type Object struct {
	members []Member
	index   map[string]int
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{index: make(map[string]int)}
}

// Len returns the number of members.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (*Value, bool) {
	if o == nil {
		return nil, false
	}
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.members[i].Value, true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Set stores value under key. An existing key keeps its position.
func (o *Object) Set(key string, value *Value) {
	if i, ok := o.index[key]; ok {
		o.members[i].Value = value
		return
	}
	o.index[key] = len(o.members)
	o.members = append(o.members, Member{Key: key, Value: value})
}

// Delete removes key and reports whether it was present. The remaining
// members keep their relative order.
func (o *Object) Delete(key string) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	copy(o.members[i:], o.members[i+1:])
	o.members[len(o.members)-1] = Member{}
	o.members = o.members[:len(o.members)-1]
	delete(o.index, key)
	for j := i; j < len(o.members); j++ {
		o.index[o.members[j].Key] = j
	}
	return true
}

// Keys returns the member keys in order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Members returns a snapshot of the members in order. Changing the returned
// slice does not change the object, but the values are shared.
func (o *Object) Members() []Member {
	if o == nil {
		return nil
	}
	out := make([]Member, len(o.members))
	copy(out, o.members)
	return out
}

// Clone deep-copies the object.
func (o *Object) Clone() *Object {
	out := NewObject()
	if o == nil {
		return out
	}
	out.members = make([]Member, len(o.members))
	for i, m := range o.members {
		out.members[i] = Member{Key: m.Key, Value: m.Value.Clone()}
		out.index[m.Key] = i
	}
	return out
}

func (o *Object) equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i := range o.Len() {
		a, b := o.members[i], other.members[i]
		if a.Key != b.Key || !Equal(a.Value, b.Value) {
			return false
		}
	}
	return true
}
