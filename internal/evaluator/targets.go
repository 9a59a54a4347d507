package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// assignTo writes v into tgt, handling plain names, attribute/subscript
// targets, and tuple/list destructuring with at most one StarTarget.
func (it *Interpreter) assignTo(tgt ast.Target, v pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	switch t := tgt.(type) {
	case *ast.NameTarget:
		env.Put(t.Ident, v)
		return env, Signal{}

	case *ast.AttrTarget:
		obj, nenv, sig := it.evalExpr(t.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		switch o := obj.(type) {
		case *pyvalue.Instance:
			o.Attrs[t.Attr] = v
			return env, Signal{}
		case *pyvalue.Class:
			o.SetAttr(t.Attr, v)
			return env, Signal{}
		default:
			return env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", pyvalue.TypeNameOf(obj), t.Attr))
		}

	case *ast.SubscriptTarget:
		obj, nenv, sig := it.evalExpr(t.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		idx, nenv2, sig2 := it.evalExpr(t.Index, env, ctx, gen)
		if !sig2.IsNone() {
			return nenv2, sig2
		}
		env = nenv2
		switch o := obj.(type) {
		case *pyvalue.List:
			i, err := normalizeIndex(idx, len(o.Items))
			if err != nil {
				return env, excToSignal(err)
			}
			o.Items[i] = v
			return env, Signal{}
		case *pyvalue.Dict:
			if err := o.Set(idx, v); err != nil {
				return env, excToSignal(err)
			}
			return env, Signal{}
		case *pyvalue.Instance:
			if fn, _, ok := o.Class.Lookup("__setitem__"); ok {
				_, nenv3, sig3 := it.callValue(fn, []pyvalue.Value{o, idx, v}, nil, env, ctx, gen)
				return nenv3, sig3
			}
			return env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object does not support item assignment", o.Class.Name))
		default:
			return env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object does not support item assignment", pyvalue.TypeNameOf(obj)))
		}

	case *ast.TupleTarget:
		return it.destructure(t.Elts, v, env, ctx, gen)

	case *ast.ListTarget:
		return it.destructure(t.Elts, v, env, ctx, gen)

	default:
		return env, excSignal(pyerr.New(pyerr.TypeError, "invalid assignment target %T", tgt))
	}
}

func (it *Interpreter) destructure(elts []ast.Target, v pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	items, nenv, sig := it.iterableToSlice(v, env, ctx, gen)
	if !sig.IsNone() {
		return nenv, sig
	}
	env = nenv

	starIdx := -1
	for i, e := range elts {
		if _, ok := e.(*ast.StarTarget); ok {
			starIdx = i
			break
		}
	}
	if starIdx < 0 {
		if len(items) != len(elts) {
			return env, excSignal(pyerr.New(pyerr.ValueError, "not enough values to unpack (expected %d, got %d)", len(elts), len(items)))
		}
		for i, e := range elts {
			var asSig Signal
			env, asSig = it.assignTo(e, items[i], env, ctx, gen)
			if !asSig.IsNone() {
				return env, asSig
			}
		}
		return env, Signal{}
	}

	before := starIdx
	after := len(elts) - starIdx - 1
	if len(items) < before+after {
		return env, excSignal(pyerr.New(pyerr.ValueError, "not enough values to unpack"))
	}
	for i := 0; i < before; i++ {
		var asSig Signal
		env, asSig = it.assignTo(elts[i], items[i], env, ctx, gen)
		if !asSig.IsNone() {
			return env, asSig
		}
	}
	mid := items[before : len(items)-after]
	star := elts[starIdx].(*ast.StarTarget)
	var starSig Signal
	env, starSig = it.assignTo(star.Inner, pyvalue.NewList(append([]pyvalue.Value{}, mid...)...), env, ctx, gen)
	if !starSig.IsNone() {
		return env, starSig
	}
	for i := 0; i < after; i++ {
		var asSig Signal
		env, asSig = it.assignTo(elts[starIdx+1+i], items[len(items)-after+i], env, ctx, gen)
		if !asSig.IsNone() {
			return env, asSig
		}
	}
	return env, Signal{}
}

// deleteTarget implements `del tgt` for every deletable target shape
// (spec.md §4.7's AST alphabet names `del` alongside assignment targets):
// a bare name, `del d[k]`, and `del obj.attr`. Destructuring targets
// (`del a, b = ...`-shaped nesting) aren't Python syntax for del and
// aren't reached here — the parser only ever hands `del` a flat list of
// non-tuple targets.
func (it *Interpreter) deleteTarget(tgt ast.Target, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	switch t := tgt.(type) {
	case *ast.NameTarget:
		env.Delete(t.Ident)
		return env, Signal{}

	case *ast.AttrTarget:
		obj, nenv, sig := it.evalExpr(t.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		switch o := obj.(type) {
		case *pyvalue.Instance:
			if _, ok := o.Attrs[t.Attr]; !ok {
				return env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", o.Class.Name, t.Attr))
			}
			delete(o.Attrs, t.Attr)
			return env, Signal{}
		default:
			return env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", pyvalue.TypeNameOf(obj), t.Attr))
		}

	case *ast.SubscriptTarget:
		obj, nenv, sig := it.evalExpr(t.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		idx, nenv2, sig2 := it.evalExpr(t.Index, env, ctx, gen)
		if !sig2.IsNone() {
			return nenv2, sig2
		}
		env = nenv2
		switch o := obj.(type) {
		case *pyvalue.Dict:
			if !o.Delete(idx) {
				return env, excSignal(pyerr.New(pyerr.KeyError, "%s", pyvalue.PyRepr(idx)))
			}
			return env, Signal{}
		case *pyvalue.List:
			i, err := normalizeIndex(idx, len(o.Items))
			if err != nil {
				return env, excToSignal(err)
			}
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return env, Signal{}
		case *pyvalue.Instance:
			if fn, _, ok := o.Class.Lookup("__delitem__"); ok {
				_, nenv3, sig3 := it.callValue(fn, []pyvalue.Value{o, idx}, nil, env, ctx, gen)
				return nenv3, sig3
			}
			return env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object doesn't support item deletion", o.Class.Name))
		default:
			return env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object doesn't support item deletion", pyvalue.TypeNameOf(obj)))
		}

	default:
		return env, excSignal(pyerr.New(pyerr.TypeError, "invalid delete target %T", tgt))
	}
}

// evalTarget reads the current value bound to tgt, used by AugAssign
// (`x += 1` must read x before writing it).
func (it *Interpreter) evalTarget(tgt ast.Target, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	switch t := tgt.(type) {
	case *ast.NameTarget:
		v, ok := env.Get(t.Ident)
		if !ok {
			return nil, env, excSignal(pyerr.New(pyerr.NameError, "name '%s' is not defined", t.Ident))
		}
		return v, env, Signal{}
	case *ast.AttrTarget:
		obj, nenv, sig := it.evalExpr(t.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return it.getAttr(obj, t.Attr, nenv, ctx, gen)
	case *ast.SubscriptTarget:
		obj, nenv, sig := it.evalExpr(t.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		idx, nenv2, sig2 := it.evalExpr(t.Index, env, ctx, gen)
		if !sig2.IsNone() {
			return nil, nenv2, sig2
		}
		return it.getItem(obj, idx, nenv2, ctx, gen)
	default:
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "invalid augmented-assignment target %T", tgt))
	}
}
