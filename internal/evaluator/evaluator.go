// Package evaluator implements the tree-walking evaluator of spec.md §4:
// expression evaluation, statement sequencing, control flow, function and
// class machinery, and exception propagation, all carried in-band as a
// Signal rather than Go panics so that the context's event log stays a
// complete, replayable record of every decision the run made.
package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
	"github.com/ivarvong/pyex-sub002/internal/stdlib"
)

// SigKind tags the kind of in-band control signal a statement produced.
type SigKind int

const (
	SigNone SigKind = iota
	SigReturn
	SigBreak
	SigContinue
	SigException
	SigSuspended
)

// Signal is the evaluator's in-band control-flow carrier: the Go
// equivalent of spec.md §4's "(returned, broken, continued, exception,
// suspended)" tagged outcomes. A zero Signal means "keep going normally."
type Signal struct {
	Kind  SigKind
	Value pyvalue.Value    // payload for SigReturn
	Exc   *pyerr.Exception // payload for SigException
}

func (s Signal) IsNone() bool { return s.Kind == SigNone }

func excSignal(exc *pyerr.Exception) Signal { return Signal{Kind: SigException, Exc: exc} }

// genSink, when non-nil, collects values produced by `yield` during the
// eager materialization of a generator function call (spec.md §9: no
// lazy generator scheduling).
type genSink = *[]pyvalue.Value

// Interpreter owns the process-lifetime method/builtin registry and the
// free-builtin bindings seeded into every fresh module environment.
type Interpreter struct {
	Registry *registry.Table
	Stdlib   *stdlib.Registry
	builtins map[string]pyvalue.Value
}

// New constructs an Interpreter with a fresh registry, per spec.md §9:
// "the result is immutable after construction and safe to share across
// concurrently running interpreter instances." Panics only on a
// construction-time invariant violation (a stdlib module factory
// deadlocking its errgroup), never on guest input.
func New() *Interpreter {
	reg := registry.NewTable()
	sl, err := stdlib.New()
	if err != nil {
		panic(pyerr.Fault("stdlib registry construction failed: %s", err.Error()))
	}
	it := &Interpreter{Registry: reg, Stdlib: sl}
	it.builtins = map[string]pyvalue.Value{}
	for _, name := range reg.BuiltinNames() {
		it.builtins[name] = &pyvalue.BuiltinKWFunc{Name: name}
	}
	for name, cls := range exceptionHierarchy() {
		it.builtins[name] = cls
	}
	return it
}

// ConstructionIssues surfaces any registry registration conflicts found
// while building the Interpreter's method/builtin table (SPEC_FULL.md
// §10.2), for a host to inspect at startup rather than have construction
// fail silently on the first one.
func (it *Interpreter) ConstructionIssues() error {
	return it.Registry.ConstructionIssues()
}

// Run parses-already AST, evaluates module's top-level statements against
// a fresh builtins environment, and returns the value of the last
// top-level expression statement (None if there wasn't one), mirroring
// spec.md §6's run(ast, ctx) -> (value, ctx) contract.
func (it *Interpreter) Run(mod *ast.Module, ctx *pycontext.Context) (result pyvalue.Value, outCtx *pycontext.Context, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, outCtx, err = nil, ctx, pyerr.Fault("recovered panic: %v", r)
		}
	}()
	env := pyenv.NewModuleEnv()
	for name, v := range it.builtins {
		env.Root().Vars[name] = v
	}
	ctx.Clock.ResumeCompute()
	result = pyvalue.Value(pyvalue.NoneValue)
	for _, s := range mod.Body {
		if dr := ctx.Clock.CheckDeadline(); dr.Exceeded {
			return nil, ctx, pyerr.New(pyerr.TimeoutError, "compute budget exceeded")
		}
		var sig Signal
		if es, ok := s.(*ast.ExprStmt); ok {
			var v pyvalue.Value
			v, env, sig = it.evalExpr(es.X, env, ctx, nil)
			if sig.IsNone() {
				result = v
			}
		} else {
			env, sig = it.evalStmt(s, env, ctx, nil)
		}
		switch sig.Kind {
		case SigNone:
			continue
		case SigException:
			return nil, ctx, sig.Exc
		case SigSuspended:
			return pyvalue.NoneValue, ctx, nil
		default:
			return nil, ctx, pyerr.Fault("unexpected top-level control signal %v", sig.Kind)
		}
	}
	ctx.Clock.PauseCompute()
	return result, ctx, nil
}

// evalBlock runs stmts in sequence, threading env and stopping at the
// first non-None signal.
func (it *Interpreter) evalBlock(stmts []ast.Stmt, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	for _, s := range stmts {
		var sig Signal
		env, sig = it.evalStmt(s, env, ctx, gen)
		if !sig.IsNone() {
			return env, sig
		}
	}
	return env, Signal{}
}

func (it *Interpreter) evalStmt(s ast.Stmt, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		_, env, sig := it.evalExpr(n.X, env, ctx, gen)
		return env, sig

	case *ast.Assign:
		v, nenv, sig := it.evalExpr(n.Value, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		for _, tgt := range n.Targets {
			var asErr Signal
			env, asErr = it.assignTo(tgt, v, env, ctx, gen)
			if !asErr.IsNone() {
				return env, asErr
			}
		}
		return env, Signal{}

	case *ast.AugAssign:
		cur, nenv, sig := it.evalTarget(n.Target, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		rhs, nenv2, sig2 := it.evalExpr(n.Value, env, ctx, gen)
		if !sig2.IsNone() {
			return nenv2, sig2
		}
		env = nenv2
		result, err := applyBinOp(n.Op, cur, rhs)
		if err != nil {
			return env, excToSignal(err)
		}
		return it.assignTo(n.Target, result, env, ctx, gen)

	case *ast.Return:
		if n.Value == nil {
			return env, Signal{Kind: SigReturn, Value: pyvalue.NoneValue}
		}
		v, nenv, sig := it.evalExpr(n.Value, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		return nenv, Signal{Kind: SigReturn, Value: v}

	case *ast.Raise:
		if n.Exc == nil {
			return env, excSignal(pyerr.New(pyerr.Kind("RuntimeError"), "No active exception to re-raise"))
		}
		v, nenv, sig := it.evalExpr(n.Exc, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		return nenv, excSignal(exceptionFromValue(v))

	case *ast.If:
		cond, nenv, sig := it.evalExpr(n.Cond, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		taken := ctx.RecordBranch(pyvalue.Truthy(cond))
		if taken {
			return it.evalBlock(n.Body, env, ctx, gen)
		}
		return it.evalBlock(n.Else, env, ctx, gen)

	case *ast.While:
		for {
			if dr := ctx.Clock.CheckDeadline(); dr.Exceeded {
				return env, excSignal(pyerr.New(pyerr.TimeoutError, "compute budget exceeded"))
			}
			cond, nenv, sig := it.evalExpr(n.Cond, env, ctx, gen)
			if !sig.IsNone() {
				return nenv, sig
			}
			env = nenv
			if !ctx.RecordBranch(pyvalue.Truthy(cond)) {
				return it.evalBlock(n.Else, env, ctx, gen)
			}
			ctx.RecordLoopIter()
			var bodySig Signal
			env, bodySig = it.evalBlock(n.Body, env, ctx, gen)
			switch bodySig.Kind {
			case SigNone:
				continue
			case SigBreak:
				return env, Signal{}
			case SigContinue:
				continue
			default:
				return env, bodySig
			}
		}

	case *ast.For:
		iterVal, nenv, sig := it.evalExpr(n.Iter, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		items, nenv2, excSig := it.iterableToSlice(iterVal, env, ctx, gen)
		if !excSig.IsNone() {
			return nenv2, excSig
		}
		env = nenv2
		for _, item := range items {
			if dr := ctx.Clock.CheckDeadline(); dr.Exceeded {
				return env, excSignal(pyerr.New(pyerr.TimeoutError, "compute budget exceeded"))
			}
			ctx.RecordLoopIter()
			var asErr Signal
			env, asErr = it.assignTo(n.Target, item, env, ctx, gen)
			if !asErr.IsNone() {
				return env, asErr
			}
			var bodySig Signal
			env, bodySig = it.evalBlock(n.Body, env, ctx, gen)
			switch bodySig.Kind {
			case SigNone:
				continue
			case SigBreak:
				return env, Signal{}
			case SigContinue:
				continue
			default:
				return env, bodySig
			}
		}
		return it.evalBlock(n.Else, env, ctx, gen)

	case *ast.Try:
		return it.evalTry(n, env, ctx, gen)

	case *ast.With:
		return it.evalWith(n, env, ctx, gen)

	case *ast.FuncDef:
		params, nenv, sig := it.evalParams(n.Params, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		fn := &pyvalue.UserFunc{Name: n.Name, Params: params, Body: n.Body, Closure: env}
		var val pyvalue.Value = fn
		for i := len(n.Decorators) - 1; i >= 0; i-- {
			dec, nenv, sig := it.evalExpr(n.Decorators[i], env, ctx, gen)
			if !sig.IsNone() {
				return nenv, sig
			}
			env = nenv
			var excSig Signal
			val, env, excSig = it.callValue(dec, []pyvalue.Value{val}, nil, env, ctx, gen)
			if !excSig.IsNone() {
				return env, excSig
			}
		}
		env.Put(n.Name, val)
		return env, Signal{}

	case *ast.ClassDef:
		return it.evalClassDef(n, env, ctx, gen)

	case *ast.Import:
		return it.evalImport(n, env, ctx)

	case *ast.ImportFrom:
		return it.evalImportFrom(n, env, ctx)

	case *ast.Global:
		for _, name := range n.Names {
			env.DeclareGlobal(name)
		}
		return env, Signal{}

	case *ast.Nonlocal:
		for _, name := range n.Names {
			env.DeclareNonlocal(name)
		}
		return env, Signal{}

	case *ast.Delete:
		for _, tgt := range n.Targets {
			var sig Signal
			env, sig = it.deleteTarget(tgt, env, ctx, gen)
			if !sig.IsNone() {
				return env, sig
			}
		}
		return env, Signal{}

	case *ast.Pass:
		return env, Signal{}

	case *ast.Break:
		return env, Signal{Kind: SigBreak}

	case *ast.Continue:
		return env, Signal{Kind: SigContinue}

	case *ast.Match:
		return it.evalMatch(n, env, ctx, gen)

	default:
		return env, excSignal(pyerr.New(pyerr.TypeError, "unsupported statement %T", s))
	}
}

func excToSignal(err error) Signal {
	if exc, ok := err.(*pyerr.Exception); ok {
		return excSignal(exc)
	}
	return excSignal(pyerr.New(pyerr.TypeError, "%s", err.Error()))
}

// evalParams evaluates each parameter's default-value expression at
// definition time, per Python's "defaults are evaluated once" rule.
func (it *Interpreter) evalParams(params []ast.Param, env *pyenv.Env, ctx *pycontext.Context, gen genSink) ([]pyvalue.Param, *pyenv.Env, Signal) {
	out := make([]pyvalue.Param, len(params))
	for i, p := range params {
		vp := pyvalue.Param{
			Name:        p.Name,
			Variadic:    p.Variadic,
			VarKeyword:  p.VarKeyword,
			KeywordOnly: p.KeywordOnly,
		}
		if p.Default != nil {
			v, nenv, sig := it.evalExpr(p.Default, env, ctx, gen)
			if !sig.IsNone() {
				return nil, nenv, sig
			}
			env = nenv
			vp.Default = v
			vp.HasDefault = true
		}
		out[i] = vp
	}
	return out, env, Signal{}
}
