package evaluator

import (
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
)

// iterableToSlice materializes v's elements eagerly, driving an Instance's
// __iter__/__next__ protocol by hand when v isn't one of the host's
// directly-sliceable container kinds.
func (it *Interpreter) iterableToSlice(v pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) ([]pyvalue.Value, *pyenv.Env, Signal) {
	switch x := v.(type) {
	case *pyvalue.List:
		return append([]pyvalue.Value{}, x.Items...), env, Signal{}
	case pyvalue.Tuple:
		return append([]pyvalue.Value{}, x.Items...), env, Signal{}
	case pyvalue.Str:
		out := make([]pyvalue.Value, 0, len(x))
		for _, r := range string(x) {
			out = append(out, pyvalue.Str(string(r)))
		}
		return out, env, Signal{}
	case *pyvalue.Set:
		return x.Items(), env, Signal{}
	case pyvalue.FrozenSet:
		return x.Items(), env, Signal{}
	case pyvalue.Range:
		return x.Items(), env, Signal{}
	case *pyvalue.Generator:
		if x.Err != nil {
			return nil, env, excToSignal(x.Err)
		}
		return x.Values, env, Signal{}
	case *pyvalue.Dict:
		return x.Keys(), env, Signal{}
	case *pyvalue.Instance:
		return it.driveIteration(x, env, ctx, gen)
	default:
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object is not iterable", pyvalue.TypeNameOf(v)))
	}
}

// driveIteration calls inst's __iter__ (if present; defaults to inst
// itself per Python's iterator-is-its-own-iterable convention) then
// __next__ repeatedly until a StopIteration-kind exception is raised.
func (it *Interpreter) driveIteration(inst *pyvalue.Instance, env *pyenv.Env, ctx *pycontext.Context, gen genSink) ([]pyvalue.Value, *pyenv.Env, Signal) {
	iterObj := pyvalue.Value(inst)
	if fn, _, ok := inst.Class.Lookup("__iter__"); ok {
		v, nenv, sig := it.callValue(fn, []pyvalue.Value{inst}, nil, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		iterObj = v
	}
	iterInst, ok := iterObj.(*pyvalue.Instance)
	if !ok {
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "iter() returned non-iterator"))
	}
	nextFn, _, ok := iterInst.Class.Lookup("__next__")
	if !ok {
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object is not an iterator", iterInst.Class.Name))
	}
	var out []pyvalue.Value
	for {
		if dr := ctx.Clock.CheckDeadline(); dr.Exceeded {
			return nil, env, excSignal(pyerr.New(pyerr.TimeoutError, "compute budget exceeded"))
		}
		v, nenv, sig := it.callValue(nextFn, []pyvalue.Value{iterInst}, nil, env, ctx, gen)
		env = nenv
		if sig.Kind == SigException {
			if sig.Exc != nil && string(sig.Exc.Kind) == "StopIteration" {
				return out, env, Signal{}
			}
			return nil, env, sig
		}
		if !sig.IsNone() {
			return nil, env, sig
		}
		out = append(out, v)
	}
}

// membershipTest implements `x in y` / `x not in y` across the container
// kinds spec.md §4.2 defines membership on, falling back to a linear scan
// via iterableToSlice (which itself drives __iter__/__next__ for Instance
// operands) when y doesn't define a faster native check.
func (it *Interpreter) membershipTest(x, y pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (bool, *pyenv.Env, Signal) {
	switch c := y.(type) {
	case pyvalue.Str:
		xs, ok := x.(pyvalue.Str)
		if !ok {
			return false, env, excSignal(pyerr.New(pyerr.TypeError, "'in <string>' requires string as left operand"))
		}
		return strings.Contains(string(c), string(xs)), env, Signal{}
	case *pyvalue.Set:
		return c.Contains(x), env, Signal{}
	case pyvalue.FrozenSet:
		return c.Contains(x), env, Signal{}
	case *pyvalue.Dict:
		_, ok := c.Get(x)
		return ok, env, Signal{}
	case *pyvalue.Instance:
		if fn, _, ok := c.Class.Lookup("__contains__"); ok {
			v, nenv, sig := it.callValue(fn, []pyvalue.Value{c, x}, nil, env, ctx, gen)
			if !sig.IsNone() {
				return false, nenv, sig
			}
			return pyvalue.Truthy(v), nenv, Signal{}
		}
	}
	items, nenv, sig := it.iterableToSlice(y, env, ctx, gen)
	if !sig.IsNone() {
		return false, nenv, sig
	}
	for _, item := range items {
		if registry.ValuesEqual(item, x) {
			return true, nenv, Signal{}
		}
	}
	return false, nenv, Signal{}
}
