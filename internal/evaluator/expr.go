package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
)

// evalExpr evaluates e against env/ctx, returning either a value (Signal
// is none) or a control signal (Signal.Kind != SigNone) to propagate —
// only SigException and SigSuspended are valid outcomes from an
// expression; SigReturn/SigBreak/SigContinue never originate here.
func (it *Interpreter) evalExpr(e ast.Expr, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	switch n := e.(type) {
	case *ast.IntLit:
		return pyvalue.Int(n.Value), env, Signal{}
	case *ast.FloatLit:
		return pyvalue.Float(n.Value), env, Signal{}
	case *ast.StrLit:
		return pyvalue.Str(n.Value), env, Signal{}
	case *ast.BoolLit:
		return pyvalue.Bool(n.Value), env, Signal{}
	case *ast.NoneLit:
		return pyvalue.NoneValue, env, Signal{}

	case *ast.ListLit:
		items, nenv, sig := it.evalExprList(n.Elts, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return pyvalue.NewList(items...), nenv, Signal{}

	case *ast.TupleLit:
		items, nenv, sig := it.evalExprList(n.Elts, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return pyvalue.NewTuple(items...), nenv, Signal{}

	case *ast.SetLit:
		items, nenv, sig := it.evalExprList(n.Elts, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		s := pyvalue.NewSet()
		for _, it2 := range items {
			if err := s.Add(it2); err != nil {
				return nil, nenv, excToSignal(err)
			}
		}
		return s, nenv, Signal{}

	case *ast.DictLit:
		d := pyvalue.NewDict()
		for i := range n.Keys {
			k, nenv, sig := it.evalExpr(n.Keys[i], env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			env = nenv
			v, nenv2, sig2 := it.evalExpr(n.Values[i], env, ctx, gen)
			if !sig2.IsNone() {
				return nil, nenv2, sig2
			}
			env = nenv2
			if err := d.Set(k, v); err != nil {
				return nil, env, excToSignal(err)
			}
		}
		return d, env, Signal{}

	case *ast.FString:
		return it.evalFString(n, env, ctx, gen)

	case *ast.Name:
		if v, ok := env.Get(n.Ident); ok {
			return v, env, Signal{}
		}
		return nil, env, excSignal(pyerr.New(pyerr.NameError, "name '%s' is not defined", n.Ident))

	case *ast.GetAttr:
		obj, nenv, sig := it.evalExpr(n.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return it.getAttr(obj, n.Attr, nenv, ctx, gen)

	case *ast.Subscript:
		obj, nenv, sig := it.evalExpr(n.Obj, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		if sl, ok := n.Index.(*ast.Slice); ok {
			return it.evalSlice(obj, sl, env, ctx, gen)
		}
		idx, nenv2, sig2 := it.evalExpr(n.Index, env, ctx, gen)
		if !sig2.IsNone() {
			return nil, nenv2, sig2
		}
		return it.getItem(obj, idx, nenv2, ctx, gen)

	case *ast.UnaryOp:
		x, nenv, sig := it.evalExpr(n.X, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		v, err := applyUnaryOp(n.Op, x)
		if err != nil {
			return nil, nenv, excToSignal(err)
		}
		return v, nenv, Signal{}

	case *ast.NotOp:
		x, nenv, sig := it.evalExpr(n.X, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return pyvalue.Bool(!pyvalue.Truthy(x)), nenv, Signal{}

	case *ast.BinOp:
		x, nenv, sig := it.evalExpr(n.X, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		y, nenv2, sig2 := it.evalExpr(n.Y, env, ctx, gen)
		if !sig2.IsNone() {
			return nil, nenv2, sig2
		}
		if n.Op == "%" {
			if xs, ok := x.(pyvalue.Str); ok {
				args := percentArgs(y)
				out, err := registry.PercentFormat(string(xs), args)
				if err != nil {
					return nil, nenv2, excToSignal(err)
				}
				return pyvalue.Str(out), nenv2, Signal{}
			}
		}
		v, err := applyBinOp(n.Op, x, y)
		if err != nil {
			return nil, nenv2, excToSignal(err)
		}
		return v, nenv2, Signal{}

	case *ast.CompareChain:
		return it.evalCompareChain(n, env, ctx, gen)

	case *ast.BoolOp:
		var v pyvalue.Value
		for i, operand := range n.Operands {
			ov, nenv, sig := it.evalExpr(operand, env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			env = nenv
			v = ov
			truth := pyvalue.Truthy(v)
			taken := ctx.RecordBranch(truth)
			if n.Op == "and" && !taken {
				return v, env, Signal{}
			}
			if n.Op == "or" && taken {
				return v, env, Signal{}
			}
			if i == len(n.Operands)-1 {
				return v, env, Signal{}
			}
		}
		return v, env, Signal{}

	case *ast.IsOp:
		x, nenv, sig := it.evalExpr(n.X, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		y, nenv2, sig2 := it.evalExpr(n.Y, env, ctx, gen)
		if !sig2.IsNone() {
			return nil, nenv2, sig2
		}
		res := valuesIs(x, y)
		if n.Negated {
			res = !res
		}
		return pyvalue.Bool(res), nenv2, Signal{}

	case *ast.InOp:
		x, nenv, sig := it.evalExpr(n.X, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		y, nenv2, sig2 := it.evalExpr(n.Y, env, ctx, gen)
		if !sig2.IsNone() {
			return nil, nenv2, sig2
		}
		env = nenv2
		found, nenv3, sig3 := it.membershipTest(x, y, env, ctx, gen)
		if !sig3.IsNone() {
			return nil, nenv3, sig3
		}
		if n.Negated {
			found = !found
		}
		return pyvalue.Bool(found), nenv3, Signal{}

	case *ast.Ternary:
		cond, nenv, sig := it.evalExpr(n.Cond, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		if ctx.RecordBranch(pyvalue.Truthy(cond)) {
			return it.evalExpr(n.X, env, ctx, gen)
		}
		return it.evalExpr(n.Else, env, ctx, gen)

	case *ast.Call:
		return it.evalCall(n, env, ctx, gen)

	case *ast.Lambda:
		params, nenv, sig := it.evalParams(n.Params, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		fn := &pyvalue.UserFunc{
			Name:    "<lambda>",
			Params:  params,
			Body:    []ast.Stmt{&ast.Return{Value: n.Body}},
			Closure: env,
		}
		return fn, env, Signal{}

	case *ast.Yield:
		var v pyvalue.Value = pyvalue.NoneValue
		if n.Value != nil {
			var sig Signal
			v, env, sig = it.evalExpr(n.Value, env, ctx, gen)
			if !sig.IsNone() {
				return nil, env, sig
			}
		}
		if gen != nil {
			*gen = append(*gen, v)
		}
		return pyvalue.NoneValue, env, Signal{}

	case *ast.ListComp:
		vals, nenv, sig := it.evalComprehension(n.Elt, n.Fors, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return pyvalue.NewList(vals...), nenv, Signal{}

	case *ast.SetComp:
		vals, nenv, sig := it.evalComprehension(n.Elt, n.Fors, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		s := pyvalue.NewSet()
		for _, v := range vals {
			if err := s.Add(v); err != nil {
				return nil, nenv, excToSignal(err)
			}
		}
		return s, nenv, Signal{}

	case *ast.GeneratorExp:
		vals, nenv, sig := it.evalComprehension(n.Elt, n.Fors, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		return &pyvalue.Generator{Values: vals}, nenv, Signal{}

	case *ast.DictComp:
		env2 := env
		d := pyvalue.NewDict()
		sig := it.evalDictComprehension(n.Key, n.Value, n.Fors, env2, ctx, gen, d)
		if !sig.IsNone() {
			return nil, env2, sig
		}
		return d, env2, Signal{}

	default:
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "unsupported expression %T", e))
	}
}

func (it *Interpreter) evalExprList(elts []ast.Expr, env *pyenv.Env, ctx *pycontext.Context, gen genSink) ([]pyvalue.Value, *pyenv.Env, Signal) {
	out := make([]pyvalue.Value, 0, len(elts))
	for _, e := range elts {
		v, nenv, sig := it.evalExpr(e, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		out = append(out, v)
	}
	return out, env, Signal{}
}

func percentArgs(y pyvalue.Value) []pyvalue.Value {
	if t, ok := y.(pyvalue.Tuple); ok {
		return t.Items
	}
	return []pyvalue.Value{y}
}

func valuesIs(a, b pyvalue.Value) bool {
	if _, ok := a.(pyvalue.None); ok {
		_, ok2 := b.(pyvalue.None)
		return ok2
	}
	switch x := a.(type) {
	case *pyvalue.List:
		y, ok := b.(*pyvalue.List)
		return ok && x == y
	case *pyvalue.Dict:
		y, ok := b.(*pyvalue.Dict)
		return ok && x == y
	case *pyvalue.Set:
		y, ok := b.(*pyvalue.Set)
		return ok && x == y
	case *pyvalue.Instance:
		y, ok := b.(*pyvalue.Instance)
		return ok && x == y
	case *pyvalue.Class:
		y, ok := b.(*pyvalue.Class)
		return ok && x == y
	case pyvalue.Bool, pyvalue.Int, pyvalue.Str, pyvalue.Float:
		return registry.ValuesEqual(a, b)
	default:
		return false
	}
}

func (it *Interpreter) evalCompareChain(n *ast.CompareChain, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	vals := make([]pyvalue.Value, len(n.Operands))
	for i, oe := range n.Operands {
		v, nenv, sig := it.evalExpr(oe, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		vals[i] = v
	}
	for i, op := range n.Ops {
		ok, err := compareOp(op, vals[i], vals[i+1])
		if err != nil {
			return nil, env, excToSignal(err)
		}
		if !ok {
			return pyvalue.Bool(false), env, Signal{}
		}
	}
	return pyvalue.Bool(true), env, Signal{}
}
