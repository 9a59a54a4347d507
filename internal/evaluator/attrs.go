package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// getAttr resolves obj.attr, binding instance methods to their receiver
// and dispatching built-in-type attribute access through the method
// registry, per spec.md §4.4's attribute-access rule.
func (it *Interpreter) getAttr(obj pyvalue.Value, attr string, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	switch o := obj.(type) {
	case *pyvalue.Instance:
		if v, ok := o.Attrs[attr]; ok {
			return v, env, Signal{}
		}
		if v, _, ok := o.Class.Lookup(attr); ok {
			if _, isFn := v.(*pyvalue.UserFunc); isFn {
				return &pyvalue.BoundAttr{Receiver: o, AttrName: attr, Callable: v}, env, Signal{}
			}
			return v, env, Signal{}
		}
		return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", o.Class.Name, attr))

	case *pyvalue.Class:
		if v, _, ok := o.Lookup(attr); ok {
			return v, env, Signal{}
		}
		return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "type object '%s' has no attribute '%s'", o.Name, attr))

	case pyvalue.Super:
		for _, b := range o.CurClass.Bases {
			if v, _, ok := b.Lookup(attr); ok {
				if _, isFn := v.(*pyvalue.UserFunc); isFn {
					return &pyvalue.BoundAttr{Receiver: o.Instance, AttrName: attr, Callable: v}, env, Signal{}
				}
				return v, env, Signal{}
			}
		}
		return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "'super' object has no attribute '%s'", attr))

	case *pyvalue.Dict:
		// Imported modules are represented as plain Dict namespaces
		// (spec.md §4.6); attribute access reads through to module members.
		if v, ok := o.Get(pyvalue.Str(attr)); ok {
			return v, env, Signal{}
		}
		return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "module has no attribute '%s'", attr))

	default:
		if _, ok := it.Registry.LookupMethod(pyvalue.TypeNameOf(obj), attr); ok {
			return &pyvalue.BoundMethod{Receiver: obj, Method: attr}, env, Signal{}
		}
		return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", pyvalue.TypeNameOf(obj), attr))
	}
}

// getItem resolves obj[idx] for the sequence/mapping variants, dispatching
// to __getitem__ for Instance operands.
func (it *Interpreter) getItem(obj, idx pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	switch o := obj.(type) {
	case *pyvalue.List:
		i, err := normalizeIndex(idx, len(o.Items))
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return o.Items[i], env, Signal{}
	case pyvalue.Tuple:
		i, err := normalizeIndex(idx, len(o.Items))
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return o.Items[i], env, Signal{}
	case pyvalue.Str:
		runes := []rune(string(o))
		i, err := normalizeIndex(idx, len(runes))
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return pyvalue.Str(string(runes[i])), env, Signal{}
	case pyvalue.Range:
		items := o.Items()
		i, err := normalizeIndex(idx, len(items))
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return items[i], env, Signal{}
	case *pyvalue.Dict:
		if v, ok := o.Get(idx); ok {
			return v, env, Signal{}
		}
		if o.IsCounter {
			// collections.Counter returns its zero count for a missing
			// key without inserting it (unlike defaultdict) — the count
			// itself (Int(0)), never a callable, so it is returned
			// directly rather than going through callValue.
			return o.DefaultFactory, env, Signal{}
		}
		if o.DefaultFactory != nil {
			v, nenv, sig := it.callValue(o.DefaultFactory, nil, nil, env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			o.Set(idx, v)
			return v, nenv, Signal{}
		}
		return nil, env, excSignal(pyerr.New(pyerr.KeyError, "%s", pyvalue.PyRepr(idx)))
	case *pyvalue.Instance:
		if fn, _, ok := o.Class.Lookup("__getitem__"); ok {
			return it.callValue(fn, []pyvalue.Value{o, idx}, nil, env, ctx, gen)
		}
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object is not subscriptable", o.Class.Name))
	default:
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object is not subscriptable", pyvalue.TypeNameOf(obj)))
	}
}

func normalizeIndex(idx pyvalue.Value, n int) (int, error) {
	i, ok := intOf(idx)
	if !ok {
		return 0, pyerr.New(pyerr.TypeError, "indices must be integers")
	}
	ii := int(i)
	if ii < 0 {
		ii += n
	}
	if ii < 0 || ii >= n {
		return 0, pyerr.New(pyerr.IndexError, "index out of range")
	}
	return ii, nil
}

func sliceBounds(lo, hi, step int, n int) (int, int, int) {
	if step == 0 {
		step = 1
	}
	if step > 0 {
		if lo < 0 {
			lo += n
			if lo < 0 {
				lo = 0
			}
		}
		if lo > n {
			lo = n
		}
		if hi < 0 {
			hi += n
			if hi < 0 {
				hi = 0
			}
		}
		if hi > n {
			hi = n
		}
	} else {
		if lo < 0 {
			lo += n
			if lo < -1 {
				lo = -1
			}
		}
		if lo >= n {
			lo = n - 1
		}
		if hi < 0 {
			hi += n
			if hi < -1 {
				hi = -1
			}
		}
		if hi >= n {
			hi = n - 1
		}
	}
	return lo, hi, step
}

// evalSlice evaluates a Subscript whose Index is a Slice, producing a new
// container of the same kind (never an alias, per Python slice semantics).
func (it *Interpreter) evalSlice(obj pyvalue.Value, sl *ast.Slice, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	step := 1
	if sl.Step != nil {
		v, nenv, sig := it.evalExpr(sl.Step, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		si, ok := intOf(v)
		if !ok || si == 0 {
			return nil, env, excSignal(pyerr.New(pyerr.ValueError, "slice step cannot be zero"))
		}
		step = int(si)
	}

	var length int
	switch o := obj.(type) {
	case *pyvalue.List:
		length = len(o.Items)
	case pyvalue.Tuple:
		length = len(o.Items)
	case pyvalue.Str:
		length = len([]rune(string(o)))
	case pyvalue.Range:
		length = len(o.Items())
	default:
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object is not sliceable", pyvalue.TypeNameOf(obj)))
	}

	lo, hi := 0, length
	if step < 0 {
		lo, hi = length-1, -1
	}
	if sl.Lo != nil {
		v, nenv, sig := it.evalExpr(sl.Lo, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		if n, ok := intOf(v); ok {
			lo = int(n)
		}
	}
	if sl.Hi != nil {
		v, nenv, sig := it.evalExpr(sl.Hi, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		if n, ok := intOf(v); ok {
			hi = int(n)
		}
	}
	if sl.Lo != nil || sl.Hi != nil {
		lo, hi, step = sliceBounds(lo, hi, step, length)
	}

	var idxs []int
	if step > 0 {
		for i := lo; i < hi; i += step {
			idxs = append(idxs, i)
		}
	} else {
		for i := lo; i > hi; i += step {
			idxs = append(idxs, i)
		}
	}

	switch o := obj.(type) {
	case *pyvalue.List:
		out := make([]pyvalue.Value, len(idxs))
		for i, j := range idxs {
			out[i] = o.Items[j]
		}
		return pyvalue.NewList(out...), env, Signal{}
	case pyvalue.Tuple:
		out := make([]pyvalue.Value, len(idxs))
		for i, j := range idxs {
			out[i] = o.Items[j]
		}
		return pyvalue.NewTuple(out...), env, Signal{}
	case pyvalue.Str:
		runes := []rune(string(o))
		out := make([]rune, len(idxs))
		for i, j := range idxs {
			out[i] = runes[j]
		}
		return pyvalue.Str(string(out)), env, Signal{}
	case pyvalue.Range:
		items := o.Items()
		out := make([]pyvalue.Value, len(idxs))
		for i, j := range idxs {
			out[i] = items[j]
		}
		return pyvalue.NewList(out...), env, Signal{}
	}
	return nil, env, excToSignal(pyerr.Fault("unreachable slice kind"))
}
