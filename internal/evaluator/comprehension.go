package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// evalComprehension evaluates elt once per binding produced by the chained
// for/if clauses of fors, in a scope inherited from (but not leaking back
// into) env, per spec.md §4.4's comprehension-scope rule.
func (it *Interpreter) evalComprehension(elt ast.Expr, fors []ast.CompFor, env *pyenv.Env, ctx *pycontext.Context, gen genSink) ([]pyvalue.Value, *pyenv.Env, Signal) {
	scope := env.PushScope()
	var out []pyvalue.Value
	sig := it.compFor(fors, 0, scope, ctx, gen, func(inner *pyenv.Env) Signal {
		v, nenv, s := it.evalExpr(elt, inner, ctx, gen)
		if !s.IsNone() {
			return s
		}
		scope = nenv
		out = append(out, v)
		return Signal{}
	})
	return out, env, sig
}

// evalDictComprehension is evalComprehension's {k: v for ...} counterpart,
// inserting directly into the caller-supplied dict as each binding fires.
func (it *Interpreter) evalDictComprehension(key, value ast.Expr, fors []ast.CompFor, env *pyenv.Env, ctx *pycontext.Context, gen genSink, d *pyvalue.Dict) Signal {
	scope := env.PushScope()
	return it.compFor(fors, 0, scope, ctx, gen, func(inner *pyenv.Env) Signal {
		k, nenv, s := it.evalExpr(key, inner, ctx, gen)
		if !s.IsNone() {
			return s
		}
		v, nenv2, s2 := it.evalExpr(value, nenv, ctx, gen)
		if !s2.IsNone() {
			return s2
		}
		scope = nenv2
		if err := d.Set(k, v); err != nil {
			return excToSignal(err)
		}
		return Signal{}
	})
}

// compFor recursively drives the i-th for-clause of a comprehension,
// invoking emit once per binding that survives every if-filter.
func (it *Interpreter) compFor(fors []ast.CompFor, i int, env *pyenv.Env, ctx *pycontext.Context, gen genSink, emit func(*pyenv.Env) Signal) Signal {
	if i == len(fors) {
		return emit(env)
	}
	cf := fors[i]
	iterVal, nenv, sig := it.evalExpr(cf.Iter, env, ctx, gen)
	if !sig.IsNone() {
		return sig
	}
	env = nenv
	items, nenv2, sig2 := it.iterableToSlice(iterVal, env, ctx, gen)
	if !sig2.IsNone() {
		return sig2
	}
	env = nenv2
	for _, item := range items {
		if dr := ctx.Clock.CheckDeadline(); dr.Exceeded {
			return excSignal(pyerr.New(pyerr.TimeoutError, "compute budget exceeded"))
		}
		var asSig Signal
		env, asSig = it.assignTo(cf.Target, item, env, ctx, gen)
		if !asSig.IsNone() {
			return asSig
		}
		ok := true
		for _, cond := range cf.Ifs {
			cv, nenv3, sig3 := it.evalExpr(cond, env, ctx, gen)
			if !sig3.IsNone() {
				return sig3
			}
			env = nenv3
			if !ctx.RecordBranch(pyvalue.Truthy(cv)) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		if sig := it.compFor(fors, i+1, env, ctx, gen, emit); !sig.IsNone() {
			return sig
		}
	}
	return Signal{}
}
