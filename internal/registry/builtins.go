package registry

import (
	"math"
	"strconv"
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func strconvParseInt(s string, base int) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), base, 64)
}

func strconvParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

// registerBuiltins wires up the free-function builtins named in spec.md
// §2/§4.5: len, range, sorted, and the rest of the "free builtins" family.
// Builtins that must call back into user Python (map, filter, sorted with
// a key, min/max with a key) return a Request instead of computing the
// result themselves, per the signal protocol of spec.md §4.5.
func registerBuiltins(t *Table) {
	t.RegisterBuiltin("len", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		n, err := lengthOf(a[0])
		if err != nil {
			return nil, err
		}
		return pyvalue.Int(n), nil
	})
	t.RegisterBuiltin("range", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		var start, stop, step int64 = 0, 0, 1
		switch len(a) {
		case 1:
			stop = int64(a[0].(pyvalue.Int))
		case 2:
			start, stop = int64(a[0].(pyvalue.Int)), int64(a[1].(pyvalue.Int))
		case 3:
			start, stop, step = int64(a[0].(pyvalue.Int)), int64(a[1].(pyvalue.Int)), int64(a[2].(pyvalue.Int))
		default:
			return nil, pyerr.New(pyerr.TypeError, "range expected 1 to 3 arguments, got %d", len(a))
		}
		if step == 0 {
			return nil, pyerr.New(pyerr.ValueError, "range() arg 3 must not be zero")
		}
		return pyvalue.Range{Start: start, Stop: stop, Step: step}, nil
	})
	t.RegisterBuiltin("sorted", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		reverse := false
		if v, ok := kwargs["reverse"]; ok {
			reverse = pyvalue.Truthy(v)
		}
		var key pyvalue.Value
		if v, ok := kwargs["key"]; ok && v.Kind() != pyvalue.KindNone {
			key = v
		}
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterSortedReq{Iterable: a[0], Key: key, Reverse: reverse}, nil
		}
		if key != nil {
			return SortCallReq{Items: items, Key: key, Reverse: reverse}, nil
		}
		sorted, err := NaturalSort(items, reverse)
		if err != nil {
			return nil, err
		}
		return pyvalue.NewList(sorted...), nil
	})
	t.RegisterBuiltin("sum", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterSumReq{Iterable: a[0]}, nil
		}
		var start pyvalue.Value = pyvalue.Int(0)
		if len(a) > 1 {
			start = a[1]
		}
		return sumValues(start, items)
	})
	t.RegisterBuiltin("min", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		return minMax(a, kwargs, true)
	})
	t.RegisterBuiltin("max", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		return minMax(a, kwargs, false)
	})
	t.RegisterBuiltin("map", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) < 2 {
			return nil, pyerr.New(pyerr.TypeError, "map() requires a function and at least one iterable")
		}
		return MapCallReq{Fn: a[0], Iterables: a[1:]}, nil
	})
	t.RegisterBuiltin("filter", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) != 2 {
			return nil, pyerr.New(pyerr.TypeError, "filter() requires a predicate and an iterable")
		}
		var fn pyvalue.Value
		if a[0].Kind() != pyvalue.KindNone {
			fn = a[0]
		}
		return FilterCallReq{Fn: fn, Iterable: a[1]}, nil
	})
	t.RegisterBuiltin("zip", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		seqs := make([][]pyvalue.Value, len(a))
		minLen := -1
		for i, it := range a {
			items, err := toValueSlice(it)
			if err != nil {
				return nil, err
			}
			seqs[i] = items
			if minLen == -1 || len(items) < minLen {
				minLen = len(items)
			}
		}
		if minLen < 0 {
			minLen = 0
		}
		out := make([]pyvalue.Value, minLen)
		for i := 0; i < minLen; i++ {
			row := make([]pyvalue.Value, len(seqs))
			for j := range seqs {
				row[j] = seqs[j][i]
			}
			out[i] = pyvalue.NewTuple(row...)
		}
		return pyvalue.NewList(out...), nil
	})
	t.RegisterBuiltin("enumerate", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		items, err := toValueSlice(a[0])
		if err != nil {
			return nil, err
		}
		start := int64(0)
		if len(a) > 1 {
			start = int64(a[1].(pyvalue.Int))
		}
		out := make([]pyvalue.Value, len(items))
		for i, it := range items {
			out[i] = pyvalue.NewTuple(pyvalue.Int(start+int64(i)), it)
		}
		return pyvalue.NewList(out...), nil
	})
	t.RegisterBuiltin("reversed", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		items, err := toValueSlice(a[0])
		if err != nil {
			return nil, err
		}
		out := make([]pyvalue.Value, len(items))
		for i, it := range items {
			out[len(items)-1-i] = it
		}
		return pyvalue.NewList(out...), nil
	})
	t.RegisterBuiltin("iter", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if inst, ok := a[0].(*pyvalue.Instance); ok {
			return IterInstanceReq{Instance: inst}, nil
		}
		items, err := toValueSlice(a[0])
		if err != nil {
			return nil, err
		}
		return MakeIterReq{Items: items}, nil
	})
	t.RegisterBuiltin("next", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		it, ok := a[0].(pyvalue.Iterator)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "'%s' object is not an iterator; wrap with iter()", pyvalue.TypeNameOf(a[0]))
		}
		if len(a) > 1 {
			return IterNextDefaultReq{Handle: it.Handle, Default: a[1]}, nil
		}
		return IterNextReq{Handle: it.Handle}, nil
	})
	t.RegisterBuiltin("abs", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		switch x := a[0].(type) {
		case pyvalue.Int:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		case pyvalue.Float:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		default:
			return nil, pyerr.New(pyerr.TypeError, "bad operand type for abs(): '%s'", pyvalue.TypeNameOf(a[0]))
		}
	})
	t.RegisterBuiltin("round", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		return roundValue(a)
	})
	t.RegisterBuiltin("type", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		return pyvalue.Str(pyvalue.TypeNameOf(a[0])), nil
	})
	t.RegisterBuiltin("repr", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if inst, ok := a[0].(*pyvalue.Instance); ok {
			if _, _, ok := inst.Class.Lookup("__repr__"); ok {
				return DunderCallReq{Inst: inst, Name: "__repr__"}, nil
			}
		}
		return pyvalue.Str(pyvalue.PyRepr(a[0])), nil
	})
	t.RegisterBuiltin("str", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return pyvalue.Str(""), nil
		}
		if inst, ok := a[0].(*pyvalue.Instance); ok {
			if _, _, ok := inst.Class.Lookup("__str__"); ok {
				return DunderCallReq{Inst: inst, Name: "__str__"}, nil
			}
			if _, _, ok := inst.Class.Lookup("__repr__"); ok {
				return DunderCallReq{Inst: inst, Name: "__repr__"}, nil
			}
		}
		return pyvalue.Str(pyvalue.PyStr(a[0])), nil
	})
	t.RegisterBuiltin("print", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		sep, end := " ", "\n"
		if v, ok := kwargs["sep"]; ok {
			sep = string(v.(pyvalue.Str))
		}
		if v, ok := kwargs["end"]; ok {
			end = string(v.(pyvalue.Str))
		}
		return PrintCallReq{Args: a, Sep: sep, End: end}, nil
	})
	t.RegisterBuiltin("isinstance", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		return isInstanceOf(a[0], a[1])
	})
	t.RegisterBuiltin("issubclass", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		c, ok := a[0].(*pyvalue.Class)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "issubclass() arg 1 must be a class")
		}
		targets, err := classTuple(a[1])
		if err != nil {
			return nil, err
		}
		for _, t := range targets {
			if c.IsSubclassOf(t) {
				return pyvalue.Bool(true), nil
			}
		}
		return pyvalue.Bool(false), nil
	})
	t.RegisterBuiltin("callable", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		switch a[0].(type) {
		case *pyvalue.UserFunc, *pyvalue.BuiltinFunc, *pyvalue.BuiltinKWFunc, *pyvalue.BoundMethod, *pyvalue.BoundAttr, *pyvalue.Class, *pyvalue.TypeCtor:
			return pyvalue.Bool(true), nil
		default:
			return pyvalue.Bool(false), nil
		}
	})
	t.RegisterBuiltin("hasattr", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		name, ok := a[1].(pyvalue.Str)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "hasattr() attribute name must be string")
		}
		return DunderCallReq{Inst: a[0], Name: "__hasattr_probe__", Args: []pyvalue.Value{pyvalue.Str(name)}}, nil
	})
	t.RegisterBuiltin("getattr", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		name, ok := a[1].(pyvalue.Str)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "getattr() attribute name must be string")
		}
		var dflt pyvalue.Value
		hasDflt := len(a) > 2
		if hasDflt {
			dflt = a[2]
		}
		return DunderCallReq{Inst: a[0], Name: "__getattr_probe__", Args: []pyvalue.Value{pyvalue.Str(name), pyvalue.Bool(hasDflt), dflt}}, nil
	})
	t.RegisterBuiltin("setattr", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		name, ok := a[1].(pyvalue.Str)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "setattr() attribute name must be string")
		}
		return DunderCallReq{Inst: a[0], Name: "__setattr_probe__", Args: []pyvalue.Value{pyvalue.Str(name), a[2]}}, nil
	})
	t.RegisterBuiltin("super", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		return SuperCallReq{}, nil
	})
	t.RegisterBuiltin("all", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterAllReq{Iterable: a[0]}, nil
		}
		for _, it := range items {
			if !pyvalue.Truthy(it) {
				return pyvalue.Bool(false), nil
			}
		}
		return pyvalue.Bool(true), nil
	})
	t.RegisterBuiltin("any", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterAnyReq{Iterable: a[0]}, nil
		}
		for _, it := range items {
			if pyvalue.Truthy(it) {
				return pyvalue.Bool(true), nil
			}
		}
		return pyvalue.Bool(false), nil
	})
	t.RegisterBuiltin("chr", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		n, ok := a[0].(pyvalue.Int)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "an integer is required")
		}
		return pyvalue.Str(string(rune(n))), nil
	})
	t.RegisterBuiltin("ord", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, ok := a[0].(pyvalue.Str)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "ord() expected string")
		}
		r := []rune(string(s))
		if len(r) != 1 {
			return nil, pyerr.New(pyerr.TypeError, "ord() expected a character")
		}
		return pyvalue.Int(r[0]), nil
	})
	t.RegisterBuiltin("hex", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		n, ok := intArg(a[0])
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "hex() argument must be an integer")
		}
		if n < 0 {
			return pyvalue.Str("-0x" + strconv.FormatInt(-n, 16)), nil
		}
		return pyvalue.Str("0x" + strconv.FormatInt(n, 16)), nil
	})
	t.RegisterBuiltin("oct", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		n, ok := intArg(a[0])
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "oct() argument must be an integer")
		}
		if n < 0 {
			return pyvalue.Str("-0o" + strconv.FormatInt(-n, 8)), nil
		}
		return pyvalue.Str("0o" + strconv.FormatInt(n, 8)), nil
	})
	t.RegisterBuiltin("bin", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		n, ok := intArg(a[0])
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "bin() argument must be an integer")
		}
		if n < 0 {
			return pyvalue.Str("-0b" + strconv.FormatInt(-n, 2)), nil
		}
		return pyvalue.Str("0b" + strconv.FormatInt(n, 2)), nil
	})
	t.RegisterBuiltin("divmod", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		q, err := floorDiv(a[0], a[1])
		if err != nil {
			return nil, err
		}
		r, err := modVal(a[0], a[1])
		if err != nil {
			return nil, err
		}
		return pyvalue.NewTuple(q, r), nil
	})
	t.RegisterBuiltin("pow", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		return powVal(a[0], a[1])
	})

	// --- builtin type constructors ---
	t.RegisterBuiltin("int", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return pyvalue.Int(0), nil
		}
		return toInt(a[0], intBase(a))
	})
	t.RegisterBuiltin("float", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return pyvalue.Float(0), nil
		}
		return toFloatValue(a[0])
	})
	t.RegisterBuiltin("bool", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return pyvalue.Bool(false), nil
		}
		return pyvalue.Bool(pyvalue.Truthy(a[0])), nil
	})
	t.RegisterBuiltin("list", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return pyvalue.NewList(), nil
		}
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterToListReq{Iterable: a[0]}, nil
		}
		cp := make([]pyvalue.Value, len(items))
		copy(cp, items)
		return pyvalue.NewList(cp...), nil
	})
	t.RegisterBuiltin("tuple", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return pyvalue.NewTuple(), nil
		}
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterToTupleReq{Iterable: a[0]}, nil
		}
		return pyvalue.NewTuple(items...), nil
	})
	t.RegisterBuiltin("set", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s := pyvalue.NewSet()
		if len(a) == 0 {
			return s, nil
		}
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterToSetReq{Iterable: a[0]}, nil
		}
		for _, it := range items {
			if err := s.Add(it); err != nil {
				return nil, err
			}
		}
		return s, nil
	})
	t.RegisterBuiltin("frozenset", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return pyvalue.NewFrozenSet()
		}
		items, err := toValueSlice(a[0])
		if err != nil {
			return IterToSetReq{Iterable: a[0]}, nil
		}
		return pyvalue.NewFrozenSet(items...)
	})
	t.RegisterBuiltin("dict", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		d := pyvalue.NewDict()
		if len(a) > 0 {
			switch src := a[0].(type) {
			case *pyvalue.Dict:
				for _, kv := range src.Items() {
					if err := d.Set(kv.Items[0], kv.Items[1]); err != nil {
						return nil, err
					}
				}
			default:
				items, err := toValueSlice(a[0])
				if err != nil {
					return nil, pyerr.New(pyerr.TypeError, "dict() argument must be a dict or iterable of pairs")
				}
				for _, it := range items {
					pair, ok := it.(pyvalue.Tuple)
					if !ok || len(pair.Items) != 2 {
						return nil, pyerr.New(pyerr.TypeError, "dict() update sequence element is not a 2-tuple")
					}
					if err := d.Set(pair.Items[0], pair.Items[1]); err != nil {
						return nil, err
					}
				}
			}
		}
		for k, v := range kwargs {
			if err := d.Set(pyvalue.Str(k), v); err != nil {
				return nil, err
			}
		}
		return d, nil
	})
	t.RegisterBuiltin("open", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		if len(a) == 0 {
			return nil, pyerr.New(pyerr.TypeError, "open() requires a path argument")
		}
		path, ok := a[0].(pyvalue.Str)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "open() path must be a str")
		}
		mode := "r"
		if len(a) > 1 {
			if m, ok := a[1].(pyvalue.Str); ok {
				mode = string(m)
			}
		}
		if m, ok := kwargs["mode"]; ok {
			if ms, ok := m.(pyvalue.Str); ok {
				mode = string(ms)
			}
		}
		return OpenFileReq{Path: string(path), Mode: mode}, nil
	})
}

func intBase(a []pyvalue.Value) int {
	if len(a) > 1 {
		if b, ok := a[1].(pyvalue.Int); ok {
			return int(b)
		}
	}
	return 10
}

func toInt(v pyvalue.Value, base int) (pyvalue.Value, error) {
	switch x := v.(type) {
	case pyvalue.Int:
		return x, nil
	case pyvalue.Bool:
		if x {
			return pyvalue.Int(1), nil
		}
		return pyvalue.Int(0), nil
	case pyvalue.Float:
		return pyvalue.Int(int64(x)), nil
	case pyvalue.Str:
		n, err := strconvParseInt(string(x), base)
		if err != nil {
			return nil, pyerr.New(pyerr.ValueError, "invalid literal for int() with base %d: %s", base, pyvalue.PyRepr(v))
		}
		return pyvalue.Int(n), nil
	default:
		return nil, pyerr.New(pyerr.TypeError, "int() argument must be a string, a bytes-like object or a number, not '%s'", pyvalue.TypeNameOf(v))
	}
}

func toFloatValue(v pyvalue.Value) (pyvalue.Value, error) {
	switch x := v.(type) {
	case pyvalue.Float:
		return x, nil
	case pyvalue.Int:
		return pyvalue.Float(x), nil
	case pyvalue.Bool:
		if x {
			return pyvalue.Float(1), nil
		}
		return pyvalue.Float(0), nil
	case pyvalue.Str:
		f, err := strconvParseFloat(string(x))
		if err != nil {
			return nil, pyerr.New(pyerr.ValueError, "could not convert string to float: %s", pyvalue.PyRepr(v))
		}
		return pyvalue.Float(f), nil
	default:
		return nil, pyerr.New(pyerr.TypeError, "float() argument must be a string or a number, not '%s'", pyvalue.TypeNameOf(v))
	}
}

func lengthOf(v pyvalue.Value) (int, error) {
	switch x := v.(type) {
	case pyvalue.Str:
		return len([]rune(string(x))), nil
	case *pyvalue.List:
		return len(x.Items), nil
	case pyvalue.Tuple:
		return len(x.Items), nil
	case *pyvalue.Dict:
		return x.Len(), nil
	case *pyvalue.Set:
		return x.Len(), nil
	case pyvalue.FrozenSet:
		return x.Len(), nil
	case pyvalue.Range:
		return int(x.Len()), nil
	case *pyvalue.Generator:
		return len(x.Values), nil
	default:
		return 0, pyerr.New(pyerr.TypeError, "object of type '%s' has no len()", pyvalue.TypeNameOf(v))
	}
}

func sumValues(start pyvalue.Value, items []pyvalue.Value) (pyvalue.Value, error) {
	acc := start
	for _, it := range items {
		sf, sok := asFloat(acc)
		itf, itok := asFloat(it)
		if !sok || !itok {
			return nil, pyerr.New(pyerr.TypeError, "unsupported operand type(s) for +: '%s' and '%s'", pyvalue.TypeNameOf(acc), pyvalue.TypeNameOf(it))
		}
		_, accIsFloat := acc.(pyvalue.Float)
		_, itIsFloat := it.(pyvalue.Float)
		if accIsFloat || itIsFloat {
			acc = pyvalue.Float(sf + itf)
		} else {
			acc = pyvalue.Int(int64(sf) + int64(itf))
		}
	}
	return acc, nil
}

func minMax(a []pyvalue.Value, kwargs map[string]pyvalue.Value, wantMin bool) (Outcome, error) {
	var items []pyvalue.Value
	if len(a) == 1 {
		var err error
		items, err = toValueSlice(a[0])
		if err != nil {
			return nil, err
		}
	} else {
		items = a
	}
	var key pyvalue.Value
	if v, ok := kwargs["key"]; ok && v.Kind() != pyvalue.KindNone {
		key = v
	}
	if len(items) == 0 {
		if v, ok := kwargs["default"]; ok {
			return v, nil
		}
		return nil, pyerr.New(pyerr.ValueError, "min()/max() arg is an empty sequence")
	}
	if key != nil {
		if wantMin {
			return MinCallReq{Items: items, Key: key}, nil
		}
		return MaxCallReq{Items: items, Key: key}, nil
	}
	best := items[0]
	for _, it := range items[1:] {
		less, err := ValuesLess(it, best)
		if err != nil {
			return nil, err
		}
		if (wantMin && less) || (!wantMin && !less && !ValuesEqual(it, best)) {
			best = it
		}
	}
	return best, nil
}

func roundValue(a []pyvalue.Value) (pyvalue.Value, error) {
	f, ok := asFloat(a[0])
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "type %s doesn't define __round__ method", pyvalue.TypeNameOf(a[0]))
	}
	ndigits := 0
	hasNdigits := false
	if len(a) > 1 {
		if n, ok := a[1].(pyvalue.Int); ok {
			ndigits = int(n)
			hasNdigits = true
		}
	}
	mult := 1.0
	for i := 0; i < ndigits; i++ {
		mult *= 10
	}
	for i := 0; i > ndigits; i-- {
		mult /= 10
	}
	r := roundHalfToEven(f * mult) / mult
	if !hasNdigits {
		if _, isInt := a[0].(pyvalue.Int); isInt {
			return pyvalue.Int(int64(r)), nil
		}
		return pyvalue.Int(int64(r)), nil
	}
	return pyvalue.Float(r), nil
}

// roundHalfToEven rounds to the nearest integer and breaks an exact
// halfway tie toward the even neighbour (0.5 -> 0, 1.5 -> 2, 2.5 -> 2,
// -0.5 -> 0), computed here rather than by the host's math.Round.
func roundHalfToEven(f float64) float64 {
	floor := float64(int64(f))
	if f < 0 {
		floor = float64(int64(f))
		if f != floor {
			floor -= 1
		}
	}
	diff := f - floor
	switch {
	case diff < 0.5:
		return floor
	case diff > 0.5:
		return floor + 1
	default:
		if int64(floor)%2 == 0 {
			return floor
		}
		return floor + 1
	}
}

func isInstanceOf(v, typeArg pyvalue.Value) (pyvalue.Value, error) {
	if tup, ok := typeArg.(pyvalue.Tuple); ok {
		for _, t := range tup.Items {
			res, err := isInstanceOf(v, t)
			if err != nil {
				return nil, err
			}
			if bool(res.(pyvalue.Bool)) {
				return pyvalue.Bool(true), nil
			}
		}
		return pyvalue.Bool(false), nil
	}
	if cls, ok := typeArg.(*pyvalue.Class); ok {
		inst, ok := v.(*pyvalue.Instance)
		if !ok {
			return pyvalue.Bool(false), nil
		}
		return pyvalue.Bool(inst.Class.IsSubclassOf(cls)), nil
	}
	typeName, ok := typeArg.(pyvalue.Str)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "isinstance() arg 2 must be a type")
	}
	tn := pyvalue.TypeNameOf(v)
	if string(typeName) == "int" && tn == "bool" {
		return pyvalue.Bool(true), nil // bool is an int subtype, spec.md §3
	}
	return pyvalue.Bool(tn == string(typeName)), nil
}

func classTuple(v pyvalue.Value) ([]*pyvalue.Class, error) {
	if tup, ok := v.(pyvalue.Tuple); ok {
		out := make([]*pyvalue.Class, 0, len(tup.Items))
		for _, it := range tup.Items {
			c, ok := it.(*pyvalue.Class)
			if !ok {
				return nil, pyerr.New(pyerr.TypeError, "issubclass() arg 2 must be a class or tuple of classes")
			}
			out = append(out, c)
		}
		return out, nil
	}
	c, ok := v.(*pyvalue.Class)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "issubclass() arg 2 must be a class or tuple of classes")
	}
	return []*pyvalue.Class{c}, nil
}

func intArg(v pyvalue.Value) (int64, bool) {
	switch x := v.(type) {
	case pyvalue.Int:
		return int64(x), true
	case pyvalue.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func floorDiv(x, y pyvalue.Value) (pyvalue.Value, error) {
	xi, xok := intArg(x)
	yi, yok := intArg(y)
	if xok && yok {
		if yi == 0 {
			return nil, pyerr.New(pyerr.ZeroDivisionErr, "integer division or modulo by zero")
		}
		q := xi / yi
		if (xi%yi != 0) && ((xi < 0) != (yi < 0)) {
			q--
		}
		return pyvalue.Int(q), nil
	}
	xf, xok := asFloat(x)
	yf, yok := asFloat(y)
	if !xok || !yok {
		return nil, pyerr.New(pyerr.TypeError, "unsupported operand type(s) for divmod()")
	}
	if yf == 0 {
		return nil, pyerr.New(pyerr.ZeroDivisionErr, "float floor division by zero")
	}
	q := xf / yf
	return pyvalue.Float(math.Floor(q)), nil
}

func modVal(x, y pyvalue.Value) (pyvalue.Value, error) {
	xi, xok := intArg(x)
	yi, yok := intArg(y)
	if xok && yok {
		if yi == 0 {
			return nil, pyerr.New(pyerr.ZeroDivisionErr, "integer division or modulo by zero")
		}
		m := xi % yi
		if m != 0 && (m < 0) != (yi < 0) {
			m += yi
		}
		return pyvalue.Int(m), nil
	}
	xf, xok := asFloat(x)
	yf, yok := asFloat(y)
	if !xok || !yok {
		return nil, pyerr.New(pyerr.TypeError, "unsupported operand type(s) for divmod()")
	}
	if yf == 0 {
		return nil, pyerr.New(pyerr.ZeroDivisionErr, "float modulo")
	}
	m := xf - yf*math.Floor(xf/yf)
	return pyvalue.Float(m), nil
}

func powVal(x, y pyvalue.Value) (pyvalue.Value, error) {
	xi, xok := intArg(x)
	yi, yok := intArg(y)
	if xok && yok && yi >= 0 {
		result := int64(1)
		base := xi
		e := yi
		for e > 0 {
			if e&1 == 1 {
				result *= base
			}
			base *= base
			e >>= 1
		}
		return pyvalue.Int(result), nil
	}
	xf, xok := asFloat(x)
	yf, yok := asFloat(y)
	if !xok || !yok {
		return nil, pyerr.New(pyerr.TypeError, "unsupported operand type(s) for ** or pow()")
	}
	return pyvalue.Float(math.Pow(xf, yf)), nil
}
