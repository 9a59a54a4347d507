package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
)

// callValue is the single dispatch point for "call this value with these
// arguments", covering every callable variant of spec.md §3/§4.4: user
// functions (closures), builtin functions, bound methods, bound attrs,
// class instantiation, and the post-dispatch request protocol that a
// registry callback may hand back instead of a plain value.
func (it *Interpreter) callValue(callee pyvalue.Value, args []pyvalue.Value, kwargs map[string]pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	switch c := callee.(type) {
	case *pyvalue.UserFunc:
		return it.callUserFunc(c, args, kwargs, ctx)

	case *pyvalue.BuiltinFunc:
		v, err := c.Fn(args)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return v, env, Signal{}

	case *pyvalue.BuiltinKWFunc:
		if c.Fn != nil {
			v, err := c.Fn(args, kwargs)
			if err != nil {
				return nil, env, excToSignal(err)
			}
			return v, env, Signal{}
		}
		cb, ok := it.Registry.LookupBuiltin(c.Name)
		if !ok {
			return nil, env, excSignal(pyerr.New(pyerr.NameError, "name '%s' is not defined", c.Name))
		}
		out, err := cb(args, kwargs)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return it.resolveOutcome(out, env, ctx, gen)

	case *pyvalue.BoundMethod:
		cb, ok := it.Registry.LookupMethod(pyvalue.TypeNameOf(c.Receiver), c.Method)
		if !ok {
			return nil, env, excSignal(pyerr.New(pyerr.AttributeError, "'%s' object has no attribute '%s'", pyvalue.TypeNameOf(c.Receiver), c.Method))
		}
		fullArgs := append([]pyvalue.Value{c.Receiver}, args...)
		out, err := cb(fullArgs, kwargs)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return it.resolveOutcome(out, env, ctx, gen)

	case *pyvalue.BoundAttr:
		if _, ok := c.Callable.(*pyvalue.UserFunc); ok {
			return it.callValue(c.Callable, append([]pyvalue.Value{c.Receiver}, args...), kwargs, env, ctx, gen)
		}
		return it.callValue(c.Callable, args, kwargs, env, ctx, gen)

	case *pyvalue.TypeCtor:
		v, err := c.Fn(args, kwargs)
		if err != nil {
			return nil, env, excToSignal(err)
		}
		return v, env, Signal{}

	case *pyvalue.Class:
		return it.instantiate(c, args, kwargs, env, ctx, gen)

	default:
		return nil, env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object is not callable", pyvalue.TypeNameOf(callee)))
	}
}

// instantiate builds a new Instance of cls, dispatching to __init__ when
// one is found on the MRO (spec.md §4.4's DFS class lookup); Native
// classes (the builtin exception hierarchy) are constructed directly.
func (it *Interpreter) instantiate(cls *pyvalue.Class, args []pyvalue.Value, kwargs map[string]pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	if cls.Native {
		inst := pyvalue.NewInstance(cls)
		inst.Attrs["args"] = pyvalue.NewTuple(args...)
		if len(args) > 0 {
			inst.Attrs["message"] = args[0]
		} else {
			inst.Attrs["message"] = pyvalue.Str("")
		}
		return inst, env, Signal{}
	}
	inst := pyvalue.NewInstance(cls)
	if initFn, _, ok := cls.Lookup("__init__"); ok {
		_, nenv, sig := it.callValue(initFn, append([]pyvalue.Value{pyvalue.Value(inst)}, args...), kwargs, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
	}
	return inst, env, Signal{}
}

// callUserFunc pushes a fresh call frame from fn's captured closure,
// binds parameters, enforces the call-depth guard, and executes the body.
// A function whose body contains `yield` is materialized eagerly into a
// Generator per spec.md §9's simplification rather than scheduled lazily.
func (it *Interpreter) callUserFunc(fn *pyvalue.UserFunc, args []pyvalue.Value, kwargs map[string]pyvalue.Value, ctx *pycontext.Context) (pyvalue.Value, *pyenv.Env, Signal) {
	closureEnv, ok := fn.Closure.(*pyenv.Env)
	if !ok {
		return nil, nil, excSignal(pyerr.New(pyerr.TypeError, "corrupt closure for function '%s'", fn.Name))
	}
	bindings, err := bindParams(fn.Params, args, kwargs)
	if err != nil {
		return nil, closureEnv, excToSignal(err)
	}
	if err := ctx.EnterCall(); err != nil {
		return nil, closureEnv, excToSignal(err)
	}
	defer ctx.ExitCall()
	callEnv := closureEnv.PushScope()
	for name, v := range bindings {
		callEnv.Top().Vars[name] = v
	}
	if fn.OwnerClass != nil {
		callEnv.Top().Vars["__class__"] = fn.OwnerClass
		if len(fn.Params) > 0 {
			if self, ok := bindings[fn.Params[0].Name]; ok {
				callEnv.Top().Vars["__self__"] = self
			}
		}
	}
	ctx.RecordCallEnter(fn.Name)
	defer ctx.RecordCallExit(fn.Name)

	if hasYield(fn.Body) {
		sink := []pyvalue.Value{}
		_, _, sig := it.evalBlock(fn.Body, callEnv, ctx, &sink)
		switch sig.Kind {
		case SigNone, SigReturn:
			return &pyvalue.Generator{Values: sink}, closureEnv, Signal{}
		case SigException:
			return &pyvalue.Generator{Values: sink, Err: sig.Exc}, closureEnv, Signal{}
		default:
			return nil, closureEnv, excSignal(pyerr.New(pyerr.TypeError, "unexpected control signal inside generator"))
		}
	}

	_, _, sig := it.evalBlock(fn.Body, callEnv, ctx, nil)
	switch sig.Kind {
	case SigNone:
		return pyvalue.NoneValue, closureEnv, Signal{}
	case SigReturn:
		return sig.Value, closureEnv, Signal{}
	case SigException:
		return nil, closureEnv, sig
	default:
		return nil, closureEnv, excSignal(pyerr.New(pyerr.TypeError, "'%v' outside loop", sig.Kind))
	}
}

func bindParams(params []pyvalue.Param, args []pyvalue.Value, kwargs map[string]pyvalue.Value) (map[string]pyvalue.Value, error) {
	bindings := map[string]pyvalue.Value{}
	consumed := map[string]bool{}
	ai := 0
	hasVariadic := false
	for _, p := range params {
		if p.Variadic {
			hasVariadic = true
			break
		}
	}
	for _, p := range params {
		switch {
		case p.Variadic:
			rest := append([]pyvalue.Value{}, args[min(ai, len(args)):]...)
			bindings[p.Name] = pyvalue.NewTuple(rest...)
			ai = len(args)
		case p.VarKeyword:
			d := pyvalue.NewDict()
			for k, v := range kwargs {
				if !consumed[k] {
					d.Set(pyvalue.Str(k), v)
				}
			}
			bindings[p.Name] = d
		case !p.KeywordOnly && ai < len(args):
			bindings[p.Name] = args[ai]
			ai++
		default:
			if v, ok := kwargs[p.Name]; ok {
				bindings[p.Name] = v
				consumed[p.Name] = true
			} else if p.HasDefault {
				bindings[p.Name] = p.Default
			} else {
				return nil, pyerr.New(pyerr.TypeError, "missing required argument: '%s'", p.Name)
			}
		}
	}
	if !hasVariadic && ai < len(args) {
		return nil, pyerr.New(pyerr.TypeError, "too many positional arguments")
	}
	return bindings, nil
}

// hasYield reports whether stmts contains a `yield` reachable without
// crossing into a nested function/lambda/class body.
func hasYield(stmts []ast.Stmt) bool {
	for _, s := range stmts {
		if stmtHasYield(s) {
			return true
		}
	}
	return false
}

func stmtHasYield(s ast.Stmt) bool {
	switch n := s.(type) {
	case *ast.ExprStmt:
		return exprHasYield(n.X)
	case *ast.Assign:
		return exprHasYield(n.Value)
	case *ast.AugAssign:
		return exprHasYield(n.Value)
	case *ast.Return:
		return n.Value != nil && exprHasYield(n.Value)
	case *ast.If:
		return hasYield(n.Body) || hasYield(n.Else)
	case *ast.While:
		return exprHasYield(n.Cond) || hasYield(n.Body) || hasYield(n.Else)
	case *ast.For:
		return exprHasYield(n.Iter) || hasYield(n.Body) || hasYield(n.Else)
	case *ast.Try:
		if hasYield(n.Body) || hasYield(n.Else) || hasYield(n.Finally) {
			return true
		}
		for _, ex := range n.Excepts {
			if hasYield(ex.Body) {
				return true
			}
		}
		return false
	case *ast.With:
		return hasYield(n.Body)
	case *ast.Match:
		for _, c := range n.Cases {
			if hasYield(c.Body) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func exprHasYield(e ast.Expr) bool {
	switch e.(type) {
	case *ast.Yield:
		return true
	default:
		return false
	}
}

// resolveOutcome turns a registry.Callback's Outcome into either a plain
// value (the callback fully handled the call) or the result of servicing
// its Request by calling back into the evaluator (spec.md §4.5).
func (it *Interpreter) resolveOutcome(out registry.Outcome, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	req, isReq := out.(registry.Request)
	if !isReq {
		v, _ := out.(pyvalue.Value)
		return v, env, Signal{}
	}
	return it.resolveRequest(req, env, ctx, gen)
}
