package pyvalue

import (
	"github.com/Velocidex/ordereddict"
)

// dictEntry pairs a Dict's original (possibly composite) key with its
// mapped value, since ordereddict.Dict itself is string-keyed.
type dictEntry struct {
	Key Value
	Val Value
}

// Dict is the ordered, mutable Python dict, backed by
// github.com/Velocidex/ordereddict so insertion order is preserved exactly
// as spec.md §3 requires. Always handled by pointer so aliasing works.
type Dict struct {
	od *ordereddict.Dict
	// DefaultFactory, when non-nil, marks this Dict as a defaultdict and
	// holds the callable invoked to populate a missing key. It lives in
	// this unexported-from-Python Go field rather than inside od, which
	// is what makes it invisible to len/in/iteration/keys/values/items/
	// str/repr without any filtering logic (spec.md §3's defaultdict
	// hiding invariant) — there is simply nowhere in od for it to leak
	// from.
	DefaultFactory Value
	// IsCounter marks a Dict constructed by collections.Counter, unlocking
	// the most_common/elements methods (registry/dictmethods.go) without
	// giving every plain dict a counting-specific vocabulary.
	IsCounter bool
}

func NewDict() *Dict {
	return &Dict{od: ordereddict.NewDict()}
}

func (*Dict) Kind() Kind       { return KindDict }
func (*Dict) TypeName() string { return "dict" }

// Set inserts or updates key -> val, preserving first-insertion order.
func (d *Dict) Set(key, val Value) error {
	k, err := CanonicalKey(key)
	if err != nil {
		return err
	}
	d.od.Set(k, &dictEntry{Key: key, Val: val})
	return nil
}

// Get returns the value for key, or (nil, false) if absent. It never
// triggers the defaultdict factory; that is the evaluator's job (the
// factory may be arbitrary user Python, so getItem in
// internal/evaluator/attrs.go invokes it through callValue).
func (d *Dict) Get(key Value) (Value, bool) {
	k, err := CanonicalKey(key)
	if err != nil {
		return nil, false
	}
	raw, ok := d.od.Get(k)
	if !ok {
		return nil, false
	}
	return raw.(*dictEntry).Val, true
}

// Delete removes key, reporting whether it was present.
func (d *Dict) Delete(key Value) bool {
	k, err := CanonicalKey(key)
	if err != nil {
		return false
	}
	if _, ok := d.od.Get(k); !ok {
		return false
	}
	d.od.Delete(k)
	return true
}

// Len excludes the hidden defaultdict factory key.
func (d *Dict) Len() int { return d.od.Len() }

// Keys returns keys in insertion order, never including the factory key.
func (d *Dict) Keys() []Value {
	out := make([]Value, 0, d.Len())
	for _, k := range d.od.Keys() {
		raw, _ := d.od.Get(k)
		out = append(out, raw.(*dictEntry).Key)
	}
	return out
}

// Values returns values in the same order as Keys.
func (d *Dict) Values() []Value {
	out := make([]Value, 0, d.Len())
	for _, k := range d.od.Keys() {
		raw, _ := d.od.Get(k)
		out = append(out, raw.(*dictEntry).Val)
	}
	return out
}

// Items returns (key, value) tuples in insertion order, matching Python's
// dict.items() iteration. Used directly by spec.md §8 scenario 2.
func (d *Dict) Items() []Tuple {
	out := make([]Tuple, 0, d.Len())
	for _, k := range d.od.Keys() {
		raw, _ := d.od.Get(k)
		e := raw.(*dictEntry)
		out = append(out, NewTuple(e.Key, e.Val))
	}
	return out
}

// Copy returns a shallow copy: a new Dict sharing element values but not
// sharing the backing map, so mutating the copy never mutates the
// original (and vice versa).
func (d *Dict) Copy() *Dict {
	nd := NewDict()
	for _, k := range d.od.Keys() {
		raw, _ := d.od.Get(k)
		e := raw.(*dictEntry)
		nd.od.Set(k, &dictEntry{Key: e.Key, Val: e.Val})
	}
	nd.DefaultFactory = d.DefaultFactory
	nd.IsCounter = d.IsCounter
	return nd
}

func (d *Dict) Clear() {
	d.od = ordereddict.NewDict()
}
