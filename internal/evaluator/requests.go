package evaluator

import (
	"sort"
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
)

// resolveRequest services a registry.Request by calling back into the
// evaluator for whatever a bare builtin/method callback cannot do on its
// own: running user Python (a key/predicate/dunder), materializing an
// Instance's __iter__/__next__ protocol, or reaching a capability-gated
// resource on the context (spec.md §4.5).
func (it *Interpreter) resolveRequest(req registry.Request, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	switch r := req.(type) {
	case registry.ExceptionReq:
		ctx.RecordException(r.Kind, r.Message)
		return nil, env, excSignal(pyerr.New(pyerr.Kind(r.Kind), "%s", r.Message))

	case registry.PrintCallReq:
		parts := make([]string, len(r.Args))
		for i, a := range r.Args {
			s, nenv, sig := it.pyStrOf(a, env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			env = nenv
			parts[i] = s
		}
		ctx.RecordOutput(strings.Join(parts, r.Sep) + r.End)
		return pyvalue.NoneValue, env, Signal{}

	case registry.DunderCallReq:
		return it.resolveDunderCall(r, env, ctx, gen)

	case registry.IterSumReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		var acc pyvalue.Value = pyvalue.Int(0)
		for _, v := range items {
			sum, err := applyBinOp("+", acc, v)
			if err != nil {
				return nil, env, excToSignal(err)
			}
			acc = sum
		}
		return acc, env, Signal{}

	case registry.IterToListReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return pyvalue.NewList(items...), nenv, Signal{}

	case registry.IterToTupleReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return pyvalue.NewTuple(items...), nenv, Signal{}

	case registry.IterToSetReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		s := pyvalue.NewSet()
		for _, v := range items {
			if err := s.Add(v); err != nil {
				return nil, nenv, excToSignal(err)
			}
		}
		return s, nenv, Signal{}

	case registry.IterAllReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		for _, v := range items {
			if !pyvalue.Truthy(v) {
				return pyvalue.Bool(false), nenv, Signal{}
			}
		}
		return pyvalue.Bool(true), nenv, Signal{}

	case registry.IterAnyReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		for _, v := range items {
			if pyvalue.Truthy(v) {
				return pyvalue.Bool(true), nenv, Signal{}
			}
		}
		return pyvalue.Bool(false), nenv, Signal{}

	case registry.SortCallReq:
		return it.sortWithKey(r.Items, r.Key, r.Reverse, env, ctx, gen)

	case registry.IterSortedReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return it.sortWithKey(items, r.Key, r.Reverse, nenv, ctx, gen)

	case registry.MinCallReq:
		return it.minMaxWithKey(r.Items, r.Key, true, env, ctx, gen)

	case registry.MaxCallReq:
		return it.minMaxWithKey(r.Items, r.Key, false, env, ctx, gen)

	case registry.MapCallReq:
		seqs := make([][]pyvalue.Value, len(r.Iterables))
		minLen := -1
		for i, iterable := range r.Iterables {
			items, nenv, sig := it.iterableToSlice(iterable, env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			env = nenv
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
			v, nenv, sig := it.callValue(r.Fn, row, nil, env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			env = nenv
			out[i] = v
		}
		return pyvalue.NewList(out...), env, Signal{}

	case registry.FilterCallReq:
		items, nenv, sig := it.iterableToSlice(r.Iterable, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		var out []pyvalue.Value
		for _, v := range items {
			keep := pyvalue.Truthy(v)
			if r.Fn != nil {
				res, nenv2, sig2 := it.callValue(r.Fn, []pyvalue.Value{v}, nil, env, ctx, gen)
				if !sig2.IsNone() {
					return nil, nenv2, sig2
				}
				env = nenv2
				keep = pyvalue.Truthy(res)
			}
			if keep {
				out = append(out, v)
			}
		}
		return pyvalue.NewList(out...), env, Signal{}

	case registry.MakeIterReq:
		return pyvalue.Iterator{Handle: ctx.MakeIterator(r.Items)}, env, Signal{}

	case registry.IterInstanceReq:
		iterObj := pyvalue.Value(r.Instance)
		if fn, _, ok := r.Instance.Class.Lookup("__iter__"); ok {
			v, nenv, sig := it.callValue(fn, []pyvalue.Value{r.Instance}, nil, env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			env = nenv
			iterObj = v
		}
		iterInst, ok := iterObj.(*pyvalue.Instance)
		if !ok {
			return nil, env, excSignal(pyerr.New(pyerr.TypeError, "iter() returned non-iterator of type '%s'", pyvalue.TypeNameOf(iterObj)))
		}
		return pyvalue.Iterator{Handle: ctx.MakeInstanceIterator(iterInst)}, env, Signal{}

	case registry.IterNextReq:
		return it.advanceIterator(r.Handle, false, nil, env, ctx, gen)

	case registry.IterNextDefaultReq:
		return it.advanceIterator(r.Handle, true, r.Default, env, ctx, gen)

	case registry.MutateReq:
		// No call site currently threads a write-back target through this
		// request (every mutating method so far mutates a pointer-shared
		// receiver directly); kept for protocol completeness.
		return r.Return, env, Signal{}

	case registry.CtxCallReq:
		v, err := r.Fn(ctx)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return v, env, Signal{}

	case registry.IOCallReq:
		if err := ctx.RequireCapability(r.Capability); err != nil {
			return nil, env, excToSignal(err)
		}
		v, err := r.Fn(ctx)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return v, env, Signal{}

	case registry.SuperCallReq:
		clsVal, ok1 := env.Get("__class__")
		selfVal, ok2 := env.Get("__self__")
		if !ok1 || !ok2 {
			return nil, env, excSignal(pyerr.New(pyerr.TypeError, "super(): no arguments and no enclosing class/instance"))
		}
		cls, ok3 := clsVal.(*pyvalue.Class)
		self, ok4 := selfVal.(*pyvalue.Instance)
		if !ok3 || !ok4 {
			return nil, env, excSignal(pyerr.New(pyerr.TypeError, "super(): invalid enclosing class/instance"))
		}
		return pyvalue.Super{CurClass: cls, Instance: self}, env, Signal{}

	case registry.OpenFileReq:
		if err := ctx.RequireCapability("fs"); err != nil {
			return nil, env, excToSignal(err)
		}
		handle, err := ctx.Open(r.Path, pycontext.FileMode(r.Mode))
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return pyvalue.File{Handle: handle}, env, Signal{}

	case registry.SuspendedReq:
		return pyvalue.NoneValue, env, Signal{Kind: SigSuspended}

	default:
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "unsupported internal request %T", req))
	}
}

// resolveDunderCall services a DunderCallReq, distinguishing the three
// hasattr/getattr/setattr probe sentinels (which ask the evaluator to
// read/write an attribute generically, since a registry callback cannot
// reach getAttr/assignTo itself) from a genuine dunder-method call.
func (it *Interpreter) resolveDunderCall(r registry.DunderCallReq, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	switch r.Name {
	case "__hasattr_probe__":
		name := string(r.Args[0].(pyvalue.Str))
		_, nenv, sig := it.getAttr(r.Inst, name, env, ctx, gen)
		if sig.Kind == SigException {
			if sig.Exc != nil && sig.Exc.Kind == pyerr.AttributeError {
				return pyvalue.Bool(false), nenv, Signal{}
			}
			return nil, nenv, sig
		}
		return pyvalue.Bool(true), nenv, Signal{}

	case "__getattr_probe__":
		name := string(r.Args[0].(pyvalue.Str))
		hasDflt := bool(r.Args[1].(pyvalue.Bool))
		dflt := r.Args[2]
		v, nenv, sig := it.getAttr(r.Inst, name, env, ctx, gen)
		if sig.Kind == SigException {
			if hasDflt && sig.Exc != nil && sig.Exc.Kind == pyerr.AttributeError {
				return dflt, nenv, Signal{}
			}
			return nil, nenv, sig
		}
		return v, nenv, Signal{}

	case "__setattr_probe__":
		name := string(r.Args[0].(pyvalue.Str))
		val := r.Args[1]
		switch o := r.Inst.(type) {
		case *pyvalue.Instance:
			o.Attrs[name] = val
		case *pyvalue.Class:
			o.SetAttr(name, val)
		case *pyvalue.Dict:
			if err := o.Set(pyvalue.Str(name), val); err != nil {
				return nil, env, excToSignal(err)
			}
		default:
			return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", pyvalue.TypeNameOf(r.Inst), name))
		}
		return pyvalue.NoneValue, env, Signal{}

	default:
		var fn pyvalue.Value
		var ok bool
		switch o := r.Inst.(type) {
		case *pyvalue.Instance:
			fn, _, ok = o.Class.Lookup(r.Name)
		case *pyvalue.Class:
			fn, _, ok = o.Lookup(r.Name)
		}
		if !ok {
			return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", pyvalue.TypeNameOf(r.Inst), r.Name))
		}
		args := append([]pyvalue.Value{r.Inst}, r.Args...)
		return it.callValue(fn, args, nil, env, ctx, gen)
	}
}

// pyStrOf/pyReprOf render v through a user-defined __str__/__repr__ when
// v is an Instance that defines one, falling back to the host's pure
// formatter otherwise (spec.md §4.2: str()/repr() dispatch through the
// evaluator for user classes).
func (it *Interpreter) pyStrOf(v pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (string, *pyenv.Env, Signal) {
	inst, ok := v.(*pyvalue.Instance)
	if !ok {
		return pyvalue.PyStr(v), env, Signal{}
	}
	if fn, _, ok := inst.Class.Lookup("__str__"); ok {
		return it.callDunderStr(fn, inst, env, ctx, gen)
	}
	if fn, _, ok := inst.Class.Lookup("__repr__"); ok {
		return it.callDunderStr(fn, inst, env, ctx, gen)
	}
	return pyvalue.PyStr(v), env, Signal{}
}

func (it *Interpreter) pyReprOf(v pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (string, *pyenv.Env, Signal) {
	inst, ok := v.(*pyvalue.Instance)
	if !ok {
		return pyvalue.PyRepr(v), env, Signal{}
	}
	if fn, _, ok := inst.Class.Lookup("__repr__"); ok {
		return it.callDunderStr(fn, inst, env, ctx, gen)
	}
	return pyvalue.PyRepr(v), env, Signal{}
}

func (it *Interpreter) callDunderStr(fn pyvalue.Value, inst *pyvalue.Instance, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (string, *pyenv.Env, Signal) {
	res, nenv, sig := it.callValue(fn, []pyvalue.Value{inst}, nil, env, ctx, gen)
	if !sig.IsNone() {
		return "", nenv, sig
	}
	s, ok := res.(pyvalue.Str)
	if !ok {
		return "", nenv, excSignal(pyerr.New(pyerr.TypeError, "__str__ returned non-string (type %s)", pyvalue.TypeNameOf(res)))
	}
	return string(s), nenv, Signal{}
}

// sortWithKey computes a sort key for each item (when key is non-nil) via
// a possibly-user-defined callable and stable-sorts items by it.
func (it *Interpreter) sortWithKey(items []pyvalue.Value, key pyvalue.Value, reverse bool, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	if key == nil {
		sorted, err := registry.NaturalSort(items, reverse)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return pyvalue.NewList(sorted...), env, Signal{}
	}
	keys := make([]pyvalue.Value, len(items))
	for i, v := range items {
		kv, nenv, sig := it.callValue(key, []pyvalue.Value{v}, nil, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		keys[i] = kv
	}
	idx := make([]int, len(items))
	for i := range idx {
		idx[i] = i
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		less, err := registry.ValuesLess(keys[idx[a]], keys[idx[b]])
		if err != nil {
			sortErr = err
			return false
		}
		return less
	})
	if sortErr != nil {
		return nil, env, excToSignal(sortErr)
	}
	out := make([]pyvalue.Value, len(idx))
	for i, j := range idx {
		out[i] = items[j]
	}
	if reverse {
		for l, r := 0, len(out)-1; l < r; l, r = l+1, r-1 {
			out[l], out[r] = out[r], out[l]
		}
	}
	return pyvalue.NewList(out...), env, Signal{}
}

// minMaxWithKey mirrors registry.minMax's keyed comparison but is able to
// invoke a user-defined key function, which the registry package cannot
// do on its own.
func (it *Interpreter) minMaxWithKey(items []pyvalue.Value, key pyvalue.Value, wantMin bool, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	if len(items) == 0 {
		return nil, env, excSignal(pyerr.New(pyerr.ValueError, "min()/max() arg is an empty sequence"))
	}
	bestKey, nenv, sig := it.callValue(key, []pyvalue.Value{items[0]}, nil, env, ctx, gen)
	if !sig.IsNone() {
		return nil, nenv, sig
	}
	env = nenv
	best := items[0]
	for _, v := range items[1:] {
		kv, nenv2, sig2 := it.callValue(key, []pyvalue.Value{v}, nil, env, ctx, gen)
		if !sig2.IsNone() {
			return nil, nenv2, sig2
		}
		env = nenv2
		less, err := registry.ValuesLess(kv, bestKey)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		if (wantMin && less) || (!wantMin && !less && !registry.ValuesEqual(kv, bestKey)) {
			best, bestKey = v, kv
		}
	}
	return best, env, Signal{}
}

// advanceIterator services IterNextReq/IterNextDefaultReq, driving an
// instance-backed iterator's __next__ by hand or popping the next residual
// value, with StopIteration/default semantics per spec.md §4.5.
func (it *Interpreter) advanceIterator(handle int, hasDefault bool, dflt pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	entry, ok := ctx.IteratorEntryFor(handle)
	if !ok {
		return nil, env, excSignal(pyerr.New(pyerr.ValueError, "invalid iterator"))
	}
	if entry.Instance != nil {
		nextFn, _, ok := entry.Instance.Class.Lookup("__next__")
		if !ok {
			return nil, env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object is not an iterator", entry.Instance.Class.Name))
		}
		v, nenv, sig := it.callValue(nextFn, []pyvalue.Value{entry.Instance}, nil, env, ctx, gen)
		if sig.Kind == SigException && sig.Exc != nil && sig.Exc.Kind == pyerr.StopIteration {
			if hasDefault {
				return dflt, nenv, Signal{}
			}
			return nil, nenv, sig
		}
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return v, nenv, Signal{}
	}
	v, ok := entry.AdvanceResidual()
	if !ok {
		if hasDefault {
			return dflt, env, Signal{}
		}
		return nil, env, excSignal(pyerr.New(pyerr.StopIteration, "iteration has stopped"))
	}
	return v, env, Signal{}
}
