package registry

import (
	"sort"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func selfDict(args []pyvalue.Value) (*pyvalue.Dict, error) {
	if len(args) == 0 {
		return nil, pyerr.New(pyerr.TypeError, "missing receiver")
	}
	d, ok := args[0].(*pyvalue.Dict)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "expected dict receiver, got %s", pyvalue.TypeNameOf(args[0]))
	}
	return d, nil
}

func itemsAsTuples(items []pyvalue.Tuple) []pyvalue.Value {
	out := make([]pyvalue.Value, len(items))
	for i, it := range items {
		out[i] = it
	}
	return out
}

// registerDictMethods wires up the dict method family named in spec.md
// §4.5. dict is represented as *pyvalue.Dict (backed by ordereddict, see
// dict.go), so mutators write through the pointer directly, preserving
// the alias invariant of spec.md §3. keys()/values()/items() return
// materialized lists rather than CPython's lazy view objects — consistent
// with the generator-materialization simplification the spec already
// makes elsewhere (spec.md §9 Open Questions).
func registerDictMethods(t *Table) {
	const T = "dict"

	t.RegisterMethod(T, "get", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 {
			return nil, pyerr.New(pyerr.TypeError, "get() requires a key argument")
		}
		if v, ok := d.Get(a[1]); ok {
			return v, nil
		}
		if len(a) > 2 {
			return a[2], nil
		}
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "keys", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.NewList(d.Keys()...), nil
	})
	t.RegisterMethod(T, "values", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.NewList(d.Values()...), nil
	})
	t.RegisterMethod(T, "items", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.NewList(itemsAsTuples(d.Items())...), nil
	})
	t.RegisterMethod(T, "pop", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 {
			return nil, pyerr.New(pyerr.TypeError, "pop() requires a key argument")
		}
		if v, ok := d.Get(a[1]); ok {
			d.Delete(a[1])
			return v, nil
		}
		if len(a) > 2 {
			return a[2], nil
		}
		return nil, pyerr.New(pyerr.KeyError, "%s", pyvalue.PyRepr(a[1]))
	})
	t.RegisterMethod(T, "setdefault", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 {
			return nil, pyerr.New(pyerr.TypeError, "setdefault() requires a key argument")
		}
		if v, ok := d.Get(a[1]); ok {
			return v, nil
		}
		dflt := pyvalue.Value(pyvalue.NoneValue)
		if len(a) > 2 {
			dflt = a[2]
		}
		if err := d.Set(a[1], dflt); err != nil {
			return nil, err
		}
		return dflt, nil
	})
	t.RegisterMethod(T, "update", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		if len(a) > 1 {
			other, ok := a[1].(*pyvalue.Dict)
			if !ok {
				return nil, pyerr.New(pyerr.TypeError, "update() argument must be a dict")
			}
			for _, kv := range other.Items() {
				if err := d.Set(kv.Items[0], kv.Items[1]); err != nil {
					return nil, err
				}
			}
		}
		for k, v := range kwargs {
			if err := d.Set(pyvalue.Str(k), v); err != nil {
				return nil, err
			}
		}
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "clear", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		d.Clear()
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "copy", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		return d.Copy(), nil
	})
	// most_common/elements are only meaningful on a collections.Counter
	// (internal/stdlib/collectionsmod), flagged via Dict.IsCounter so a
	// plain dict never grows this vocabulary.
	t.RegisterMethod(T, "most_common", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		if !d.IsCounter {
			return nil, pyerr.New(pyerr.AttributeError, "'dict' object has no attribute 'most_common'")
		}
		items := d.Items()
		order := make([]int, len(items))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(x, y int) bool {
			cx, _ := items[order[x]].Items[1].(pyvalue.Int)
			cy, _ := items[order[y]].Items[1].(pyvalue.Int)
			return cx > cy
		})
		n := len(order)
		if len(a) > 1 {
			if lim, ok := a[1].(pyvalue.Int); ok && int(lim) < n {
				n = int(lim)
			}
		}
		out := make([]pyvalue.Value, n)
		for i := 0; i < n; i++ {
			kv := items[order[i]]
			out[i] = pyvalue.NewTuple(kv.Items[0], kv.Items[1])
		}
		return pyvalue.NewList(out...), nil
	})
	t.RegisterMethod(T, "elements", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		d, err := selfDict(a)
		if err != nil {
			return nil, err
		}
		if !d.IsCounter {
			return nil, pyerr.New(pyerr.AttributeError, "'dict' object has no attribute 'elements'")
		}
		var out []pyvalue.Value
		for _, kv := range d.Items() {
			count, _ := kv.Items[1].(pyvalue.Int)
			for i := pyvalue.Int(0); i < count; i++ {
				out = append(out, kv.Items[0])
			}
		}
		return pyvalue.NewList(out...), nil
	})
}

// registerSetMethods wires up the handful of set/frozenset mutators the
// evaluator's binary/membership operators don't already cover directly.
func registerSetMethods(t *Table) {
	const T = "set"
	t.RegisterMethod(T, "add", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, ok := a[0].(*pyvalue.Set)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "expected set receiver")
		}
		if err := s.Add(a[1]); err != nil {
			return nil, err
		}
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "remove", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, ok := a[0].(*pyvalue.Set)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "expected set receiver")
		}
		if !s.Remove(a[1]) {
			return nil, pyerr.New(pyerr.KeyError, "%s", pyvalue.PyRepr(a[1]))
		}
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "discard", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, ok := a[0].(*pyvalue.Set)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "expected set receiver")
		}
		s.Remove(a[1])
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "union", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, ok := a[0].(*pyvalue.Set)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "expected set receiver")
		}
		out := pyvalue.NewSet()
		for _, it := range s.Items() {
			out.Add(it)
		}
		for _, other := range a[1:] {
			items, err := toValueSlice(other)
			if err != nil {
				return nil, err
			}
			for _, it := range items {
				out.Add(it)
			}
		}
		return out, nil
	})
	t.RegisterMethod(T, "intersection", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, ok := a[0].(*pyvalue.Set)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "expected set receiver")
		}
		out := pyvalue.NewSet()
		for _, it := range s.Items() {
			keep := true
			for _, other := range a[1:] {
				items, err := toValueSlice(other)
				if err != nil {
					return nil, err
				}
				found := false
				for _, ot := range items {
					if ValuesEqual(it, ot) {
						found = true
						break
					}
				}
				if !found {
					keep = false
					break
				}
			}
			if keep {
				out.Add(it)
			}
		}
		return out, nil
	})
}
