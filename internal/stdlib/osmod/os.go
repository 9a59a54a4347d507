// Package osmod synthesizes the os stdlib module of spec.md §4.6: an
// os.environ dict carrying the run's context.Environ, plus the handful of
// environment accessors a sandboxed script can use without any real
// process access (no os.system, no subprocess — that capability is out of
// scope, spec.md §1).
package osmod

import (
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// Module builds the os namespace for one run, carrying ctx's environ as
// os.environ. Unlike re/collections this cannot be a process-lifetime
// static module: each run has its own Environ, so the factory takes ctx.
func Module(ctx *pycontext.Context) pycontext.ModuleProvider {
	environ := pyvalue.NewDict()
	for k, v := range ctx.Environ {
		environ.Set(pyvalue.Str(k), pyvalue.Str(v))
	}
	getenv := &pyvalue.BuiltinKWFunc{Name: "getenv", Fn: func(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
		if len(args) == 0 {
			return pyvalue.NoneValue, nil
		}
		name, ok := args[0].(pyvalue.Str)
		if !ok {
			return pyvalue.NoneValue, nil
		}
		if v, ok := environ.Get(name); ok {
			return v, nil
		}
		if len(args) > 1 {
			return args[1], nil
		}
		return pyvalue.NoneValue, nil
	}}
	return pycontext.StaticModule(map[string]pyvalue.Value{
		"environ": environ,
		"getenv":  getenv,
		"sep":     pyvalue.Str("/"),
		"linesep": pyvalue.Str("\n"),
	})
}
