package evaluator

import (
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/importresolver"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// evalImport implements `import X` / `import X as Y` (spec.md §4.6).
func (it *Interpreter) evalImport(n *ast.Import, env *pyenv.Env, ctx *pycontext.Context) (*pyenv.Env, Signal) {
	val, sig := it.resolveModule(n.Module, ctx)
	if !sig.IsNone() {
		return env, sig
	}
	name := n.Alias
	if name == "" {
		root, _ := importresolver.SplitRoot(n.Module)
		name = root
	}
	env.Put(name, val)
	return env, Signal{}
}

// evalImportFrom implements `from X import a, b as c` (spec.md §4.6).
func (it *Interpreter) evalImportFrom(n *ast.ImportFrom, env *pyenv.Env, ctx *pycontext.Context) (*pyenv.Env, Signal) {
	val, sig := it.resolveModule(n.Module, ctx)
	if !sig.IsNone() {
		return env, sig
	}
	d, ok := val.(*pyvalue.Dict)
	if !ok {
		return env, excSignal(pyerr.New(pyerr.ImportError, "module '%s' is not a namespace", n.Module))
	}
	for _, nm := range n.Names {
		v, ok := d.Get(pyvalue.Str(nm.Name))
		if !ok {
			return env, excSignal(pyerr.New(pyerr.ImportError, "cannot import name '%s' from '%s'", nm.Name, n.Module))
		}
		bindName := nm.Alias
		if bindName == "" {
			bindName = nm.Name
		}
		env.Put(bindName, v)
	}
	return env, Signal{}
}

// resolveModule implements resolve_module(name, env, ctx) (spec.md §4.6):
// host-supplied modules first, then the stdlib registry, then a
// filesystem-backed module compiled and run in a fresh scope, cached for
// the run's lifetime. The result is always a *pyvalue.Dict namespace so
// attribute access and `from X import name` both work uniformly.
func (it *Interpreter) resolveModule(name string, ctx *pycontext.Context) (pyvalue.Value, Signal) {
	root, rest := importresolver.SplitRoot(name)

	if cached, ok := ctx.ImportedModules[name]; ok {
		return mapToDict(cached), Signal{}
	}

	if provider, ok := ctx.Modules[root]; ok {
		m, err := walkDotted(provider.ModuleValue(), rest)
		if err != nil {
			return nil, excToSignal(err)
		}
		return mapToDict(m), Signal{}
	}

	if it.Stdlib != nil {
		if provider, ok := it.Stdlib.Lookup(root, ctx); ok {
			m, err := walkDotted(provider.ModuleValue(), rest)
			if err != nil {
				return nil, excToSignal(err)
			}
			return mapToDict(m), Signal{}
		}
	}

	if ctx.FileSystem != nil && ctx.Parser != nil {
		path, err := importresolver.FilePath(name)
		if err != nil {
			return nil, excToSignal(err)
		}
		source, err := ctx.FileSystem.Read(path)
		if err == nil {
			mod, perr := ctx.Parser(source)
			if perr != nil {
				return nil, excSignal(pyerr.New(pyerr.SyntaxError, "error in '%s': %s", name, perr.Error()))
			}
			bindings, sig := it.runModuleBody(mod, ctx)
			if !sig.IsNone() {
				if sig.Kind == SigException {
					return nil, excSignal(pyerr.New(pyerr.ImportError, "error in '%s': %s", name, sig.Exc.Message))
				}
				return nil, sig
			}
			ctx.ImportedModules[name] = bindings
			return mapToDict(bindings), Signal{}
		}
	}

	hint := importresolver.Hint(name)
	if hint != "" {
		return nil, excSignal(pyerr.New(pyerr.ModuleNotFound, "no module named '%s' (did you mean '%s'?)", name, hint))
	}
	return nil, excSignal(pyerr.New(pyerr.ModuleNotFound, "no module named '%s'", name))
}

// runModuleBody evaluates mod's top-level statements in a fresh scope
// seeded from the builtins environment, returning every non-dunder
// binding left in the root scope as the module's namespace.
func (it *Interpreter) runModuleBody(mod *ast.Module, ctx *pycontext.Context) (map[string]pyvalue.Value, Signal) {
	env := pyenv.NewModuleEnv()
	for name, v := range it.builtins {
		env.Root().Vars[name] = v
	}
	for _, s := range mod.Body {
		var sig Signal
		env, sig = it.evalStmt(s, env, ctx, nil)
		if !sig.IsNone() {
			return nil, sig
		}
	}
	out := map[string]pyvalue.Value{}
	for name, v := range env.Root().Vars {
		if strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__") {
			continue
		}
		if _, isBuiltin := it.builtins[name]; isBuiltin {
			continue
		}
		out[name] = v
	}
	return out, Signal{}
}

// walkDotted follows rest (a dotted remainder after the root segment)
// through nested *pyvalue.Dict namespace values.
func walkDotted(m map[string]pyvalue.Value, rest string) (map[string]pyvalue.Value, error) {
	cur := m
	for rest != "" {
		var seg string
		seg, rest = importresolver.SplitRoot(rest)
		v, ok := cur[seg]
		if !ok {
			return nil, pyerr.New(pyerr.ModuleNotFound, "no module named '%s'", seg)
		}
		d, ok := v.(*pyvalue.Dict)
		if !ok {
			return nil, pyerr.New(pyerr.ModuleNotFound, "'%s' is not a module", seg)
		}
		next := map[string]pyvalue.Value{}
		for _, kv := range d.Items() {
			k, _ := kv.Items[0].(pyvalue.Str)
			next[string(k)] = kv.Items[1]
		}
		cur = next
	}
	return cur, nil
}

func mapToDict(m map[string]pyvalue.Value) *pyvalue.Dict {
	d := pyvalue.NewDict()
	for k, v := range m {
		d.Set(pyvalue.Str(k), v)
	}
	return d
}
