package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// evalClassDef evaluates bases left-to-right, executes the class body in
// a fresh scope whose bindings become the class's attributes (methods and
// class variables alike), then builds and binds the resulting Class,
// applying decorators from the last-listed (innermost) to the first, like
// FuncDef.
func (it *Interpreter) evalClassDef(n *ast.ClassDef, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	bases := make([]*pyvalue.Class, 0, len(n.Bases))
	for _, be := range n.Bases {
		bv, nenv, sig := it.evalExpr(be, env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		bc, ok := bv.(*pyvalue.Class)
		if !ok {
			return env, excSignal(pyerr.New(pyerr.TypeError, "bases must be classes"))
		}
		bases = append(bases, bc)
	}

	bodyEnv := env.PushScope()
	var bodySig Signal
	bodyEnv, bodySig = it.evalBlock(n.Body, bodyEnv, ctx, gen)
	if !bodySig.IsNone() {
		return env, bodySig
	}

	cls := pyvalue.NewClass(n.Name, bases)
	for name, v := range bodyEnv.Top().Vars {
		if fn, ok := v.(*pyvalue.UserFunc); ok {
			fn.Closure = env
			fn.OwnerClass = cls
		}
		cls.SetAttr(name, v)
	}

	var val pyvalue.Value = cls
	for i := len(n.Decorators) - 1; i >= 0; i-- {
		dec, nenv, sig := it.evalExpr(n.Decorators[i], env, ctx, gen)
		if !sig.IsNone() {
			return nenv, sig
		}
		env = nenv
		var decSig Signal
		val, env, decSig = it.callValue(dec, []pyvalue.Value{val}, nil, env, ctx, gen)
		if !decSig.IsNone() {
			return env, decSig
		}
	}
	env.Put(n.Name, val)
	return env, Signal{}
}
