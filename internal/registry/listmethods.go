package registry

import (
	"sort"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func selfList(args []pyvalue.Value) (*pyvalue.List, error) {
	if len(args) == 0 {
		return nil, pyerr.New(pyerr.TypeError, "missing receiver")
	}
	l, ok := args[0].(*pyvalue.List)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "expected list receiver, got %s", pyvalue.TypeNameOf(args[0]))
	}
	return l, nil
}

// registerListMethods wires up the list method family named in spec.md
// §4.5. list is represented as *pyvalue.List (see value.go), so every
// mutator here simply writes through the pointer — the alias invariant of
// spec.md §3 falls out naturally rather than needing MutateReq.
func registerListMethods(t *Table) {
	const T = "list"

	t.RegisterMethod(T, "append", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 {
			return nil, pyerr.New(pyerr.TypeError, "append() takes exactly one argument")
		}
		l.Items = append(l.Items, a[1])
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "extend", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 {
			return pyvalue.NoneValue, nil
		}
		items, err := toValueSlice(a[1])
		if err != nil {
			return nil, err
		}
		l.Items = append(l.Items, items...)
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "insert", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		idx := argInt(a, 1, 0)
		idx = clampInsertIndex(idx, len(l.Items))
		l.Items = append(l.Items, nil)
		copy(l.Items[idx+1:], l.Items[idx:])
		l.Items[idx] = a[2]
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "remove", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		for i, it := range l.Items {
			if ValuesEqual(it, a[1]) {
				l.Items = append(l.Items[:i], l.Items[i+1:]...)
				return pyvalue.NoneValue, nil
			}
		}
		return nil, pyerr.New(pyerr.ValueError, "list.remove(x): x not in list")
	})
	t.RegisterMethod(T, "pop", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		if len(l.Items) == 0 {
			return nil, pyerr.New(pyerr.IndexError, "pop from empty list")
		}
		idx := len(l.Items) - 1
		if len(a) > 1 {
			idx = argInt(a, 1, idx)
			if idx < 0 {
				idx += len(l.Items)
			}
		}
		if idx < 0 || idx >= len(l.Items) {
			return nil, pyerr.New(pyerr.IndexError, "pop index out of range")
		}
		v := l.Items[idx]
		l.Items = append(l.Items[:idx], l.Items[idx+1:]...)
		return v, nil
	})
	t.RegisterMethod(T, "index", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		for i, it := range l.Items {
			if ValuesEqual(it, a[1]) {
				return pyvalue.Int(i), nil
			}
		}
		return nil, pyerr.New(pyerr.ValueError, "%s is not in list", pyvalue.PyRepr(a[1]))
	})
	t.RegisterMethod(T, "count", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		n := 0
		for _, it := range l.Items {
			if ValuesEqual(it, a[1]) {
				n++
			}
		}
		return pyvalue.Int(n), nil
	})
	t.RegisterMethod(T, "sort", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		reverse := false
		if v, ok := kwargs["reverse"]; ok {
			reverse = pyvalue.Truthy(v)
		}
		var key pyvalue.Value
		if v, ok := kwargs["key"]; ok && v.Kind() != pyvalue.KindNone {
			key = v
		}
		if key != nil {
			return SortCallReq{Items: l.Items, Key: key, Reverse: reverse}, nil
		}
		sorted, err := NaturalSort(l.Items, reverse)
		if err != nil {
			return nil, err
		}
		copy(l.Items, sorted)
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "reverse", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		for i, j := 0, len(l.Items)-1; i < j; i, j = i+1, j-1 {
			l.Items[i], l.Items[j] = l.Items[j], l.Items[i]
		}
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "clear", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		l.Items = nil
		return pyvalue.NoneValue, nil
	})
	t.RegisterMethod(T, "copy", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		l, err := selfList(a)
		if err != nil {
			return nil, err
		}
		cp := make([]pyvalue.Value, len(l.Items))
		copy(cp, l.Items)
		return pyvalue.NewList(cp...), nil
	})
}

func clampInsertIndex(idx, n int) int {
	if idx < 0 {
		idx += n
		if idx < 0 {
			idx = 0
		}
	}
	if idx > n {
		idx = n
	}
	return idx
}

func toValueSlice(v pyvalue.Value) ([]pyvalue.Value, error) {
	switch x := v.(type) {
	case *pyvalue.List:
		return x.Items, nil
	case pyvalue.Tuple:
		return x.Items, nil
	case pyvalue.Str:
		out := make([]pyvalue.Value, 0, len(x))
		for _, r := range string(x) {
			out = append(out, pyvalue.Str(string(r)))
		}
		return out, nil
	case *pyvalue.Set:
		return x.Items(), nil
	case pyvalue.FrozenSet:
		return x.Items(), nil
	case pyvalue.Range:
		return x.Items(), nil
	case *pyvalue.Generator:
		return x.Values, nil
	default:
		return nil, pyerr.New(pyerr.TypeError, "%s object is not iterable", pyvalue.TypeNameOf(v))
	}
}

// NaturalSort orders items by Python's natural comparison rules for the
// subset of types it defines ordering on (numbers, strings), used when
// sort()/sorted() are called without a key function.
func NaturalSort(items []pyvalue.Value, reverse bool) ([]pyvalue.Value, error) {
	out := make([]pyvalue.Value, len(items))
	copy(out, items)
	var sortErr error
	sort.SliceStable(out, func(i, j int) bool {
		less, err := ValuesLess(out[i], out[j])
		if err != nil {
			sortErr = err
		}
		return less
	})
	if sortErr != nil {
		return nil, sortErr
	}
	if reverse {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

// ValuesLess implements Python's default ordering comparison across the
// numeric tower and strings; mixed incomparable types report TypeError.
func ValuesLess(a, b pyvalue.Value) (bool, error) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af < bf, nil
	}
	as, aok := a.(pyvalue.Str)
	bs, bok := b.(pyvalue.Str)
	if aok && bok {
		return as < bs, nil
	}
	return false, pyerr.New(pyerr.TypeError, "'<' not supported between instances of '%s' and '%s'", pyvalue.TypeNameOf(a), pyvalue.TypeNameOf(b))
}

func asFloat(v pyvalue.Value) (float64, bool) {
	switch x := v.(type) {
	case pyvalue.Int:
		return float64(x), true
	case pyvalue.Float:
		return float64(x), true
	case pyvalue.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// ValuesEqual implements Python's == for the value kinds the kernel
// defines equality on.
func ValuesEqual(a, b pyvalue.Value) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	if as, ok := a.(pyvalue.Str); ok {
		if bs, ok := b.(pyvalue.Str); ok {
			return as == bs
		}
	}
	if _, ok := a.(pyvalue.None); ok {
		_, ok2 := b.(pyvalue.None)
		return ok2
	}
	al, aok := a.(*pyvalue.List)
	bl, bok := b.(*pyvalue.List)
	if aok && bok {
		if len(al.Items) != len(bl.Items) {
			return false
		}
		for i := range al.Items {
			if !ValuesEqual(al.Items[i], bl.Items[i]) {
				return false
			}
		}
		return true
	}
	at, aok := a.(pyvalue.Tuple)
	bt, bok := b.(pyvalue.Tuple)
	if aok && bok {
		if len(at.Items) != len(bt.Items) {
			return false
		}
		for i := range at.Items {
			if !ValuesEqual(at.Items[i], bt.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
