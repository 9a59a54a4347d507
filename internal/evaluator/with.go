package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// evalWith dispatches __enter__/__exit__ for each WithItem in order,
// nesting multiple items left-to-right and guaranteeing __exit__ runs for
// every already-entered item even if the body (or a later enter) raises.
func (it *Interpreter) evalWith(n *ast.With, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	type entered struct {
		inst *pyvalue.Instance
	}
	var stack []entered

	exitAll := func(env *pyenv.Env) (*pyenv.Env, Signal) {
		var last Signal
		for i := len(stack) - 1; i >= 0; i-- {
			inst := stack[i].inst
			if fn, _, ok := inst.Class.Lookup("__exit__"); ok {
				_, nenv, sig := it.callValue(fn, []pyvalue.Value{inst, pyvalue.NoneValue, pyvalue.NoneValue, pyvalue.NoneValue}, nil, env, ctx, gen)
				env = nenv
				if !sig.IsNone() {
					last = sig
				}
			}
		}
		return env, last
	}

	for _, item := range n.Items {
		ctxVal, nenv, sig := it.evalExpr(item.Ctx, env, ctx, gen)
		if !sig.IsNone() {
			env, _ = exitAll(nenv)
			return env, sig
		}
		env = nenv
		inst, ok := ctxVal.(*pyvalue.Instance)
		if !ok {
			env, _ = exitAll(env)
			return env, excSignal(pyerr.New(pyerr.TypeError, "'%s' object does not support the context manager protocol", pyvalue.TypeNameOf(ctxVal)))
		}
		var result pyvalue.Value = inst
		if fn, _, ok := inst.Class.Lookup("__enter__"); ok {
			var enterSig Signal
			result, env, enterSig = it.callValue(fn, []pyvalue.Value{inst}, nil, env, ctx, gen)
			if !enterSig.IsNone() {
				env, _ = exitAll(env)
				return env, enterSig
			}
		}
		stack = append(stack, entered{inst: inst})
		if item.Name != "" {
			env.Put(item.Name, result)
		}
	}

	env, bodySig := it.evalBlock(n.Body, env, ctx, gen)
	exitEnv, exitSig := exitAll(env)
	env = exitEnv
	if !bodySig.IsNone() {
		return env, bodySig
	}
	return env, exitSig
}
