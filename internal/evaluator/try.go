package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// evalTry implements try/except/else/finally, matching except clauses in
// order via exceptionMatches (isinstance semantics against the guest
// instance when present) and always running Finally regardless of how
// the guarded body completed.
func (it *Interpreter) evalTry(n *ast.Try, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	env, sig := it.evalBlock(n.Body, env, ctx, gen)

	if sig.Kind == SigException {
		for _, ex := range n.Excepts {
			matched := len(ex.Types) == 0
			for _, te := range ex.Types {
				tv, nenv, tsig := it.evalExpr(te, env, ctx, gen)
				if !tsig.IsNone() {
					return nenv, tsig
				}
				env = nenv
				if exceptionMatches(sig.Exc, tv) {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
			if ex.Name != "" {
				bound, ok := sig.Exc.Instance.(pyvalue.Value)
				if !ok {
					bound = pyvalue.NoneValue
				}
				env.Put(ex.Name, bound)
			}
			var handlerSig Signal
			env, handlerSig = it.evalBlock(ex.Body, env, ctx, gen)
			if ex.Name != "" {
				env.Delete(ex.Name)
			}
			sig = handlerSig
			break
		}
	} else if sig.IsNone() {
		env, sig = it.evalBlock(n.Else, env, ctx, gen)
	}

	if len(n.Finally) > 0 {
		finalEnv, finalSig := it.evalBlock(n.Finally, env, ctx, gen)
		env = finalEnv
		if !finalSig.IsNone() {
			return env, finalSig
		}
	}
	return env, sig
}
