package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// evalCall evaluates the callee and argument list of a Call node,
// expanding *args/**kwargs expansion markers per spec.md §4.7's call-arg
// alphabet, then dispatches through callValue.
func (it *Interpreter) evalCall(n *ast.Call, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	callee, nenv, sig := it.evalExpr(n.Fn, env, ctx, gen)
	if !sig.IsNone() {
		return nil, nenv, sig
	}
	env = nenv

	var args []pyvalue.Value
	kwargs := map[string]pyvalue.Value{}
	for _, a := range n.Args {
		v, nenv, sig := it.evalExpr(a.Value, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv
		switch {
		case a.Star:
			items, nenv2, sig2 := it.iterableToSlice(v, env, ctx, gen)
			if !sig2.IsNone() {
				return nil, nenv2, sig2
			}
			env = nenv2
			args = append(args, items...)
		case a.DStar:
			d, ok := v.(*pyvalue.Dict)
			if !ok {
				return nil, env, excSignal(pyerr.New(pyerr.TypeError, "argument after ** must be a mapping"))
			}
			for _, kv := range d.Items() {
				k, ok := kv.Items[0].(pyvalue.Str)
				if !ok {
					return nil, env, excSignal(pyerr.New(pyerr.TypeError, "keywords must be strings"))
				}
				kwargs[string(k)] = kv.Items[1]
			}
		case a.Name != "":
			kwargs[a.Name] = v
		default:
			args = append(args, v)
		}
	}
	return it.callValue(callee, args, kwargs, env, ctx, gen)
}
