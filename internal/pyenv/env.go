// Package pyenv implements the lexical scope chain described in spec.md
// §4.1: a stack of scopes plus global/nonlocal declaration markers.
package pyenv

import "github.com/ivarvong/pyex-sub002/internal/pyvalue"

// Undefined is an exported marker value for a name that is not bound
// anywhere reachable from the current scope chain. Get does not return
// it; Get reports an unbound name as (nil, false).
type undefinedT struct{}

var Undefined = undefinedT{}

// Scope is one frame of the lexical chain: a name->value mapping plus the
// set of names this scope has declared global or nonlocal. Scopes are
// always referenced by pointer; two Envs that share a Scope pointer share
// its bindings, which is what lets a closure observe rebindings its call
// frame makes to a captured name (spec.md §3, §8's closure rebinding law)
// without any extra merge step. merge_closure_scopes is kept as a named
// operation below for API parity with spec.md's contract, but is a
// structural no-op under this design — see MergeClosureScopes.
type Scope struct {
	Vars      map[string]pyvalue.Value
	Globals   map[string]bool
	Nonlocals map[string]bool
	IsRoot    bool
}

func NewScope(isRoot bool) *Scope {
	return &Scope{Vars: map[string]pyvalue.Value{}, Globals: map[string]bool{}, Nonlocals: map[string]bool{}, IsRoot: isRoot}
}

// Env is a stack of scopes, innermost last.
type Env struct {
	Scopes []*Scope
}

// NewModuleEnv returns a fresh Env containing a single root scope, used
// for the module body and as the base of a freshly resolved module.
func NewModuleEnv() *Env {
	return &Env{Scopes: []*Scope{NewScope(true)}}
}

// Clone returns a new Env with the same scope stack (same *Scope
// pointers): this is how a closure's captured environment and a call
// frame's environment can share bindings while each maintains its own
// notion of "current top scope" after PushScope.
func (e *Env) Clone() *Env {
	cp := make([]*Scope, len(e.Scopes))
	copy(cp, e.Scopes)
	return &Env{Scopes: cp}
}

func (e *Env) Top() *Scope { return e.Scopes[len(e.Scopes)-1] }
func (e *Env) Root() *Scope { return e.Scopes[0] }

// PushScope appends a fresh, non-root scope and returns the new Env value
// (Env itself is a small value type; callers reassign their local env to
// the result, mirroring spec.md's "every function ... returns the updated
// pair").
func (e *Env) PushScope() *Env {
	ne := e.Clone()
	ne.Scopes = append(ne.Scopes, NewScope(false))
	return ne
}

// PopScope drops the innermost scope.
func (e *Env) PopScope() *Env {
	if len(e.Scopes) <= 1 {
		return e
	}
	ne := &Env{Scopes: e.Scopes[:len(e.Scopes)-1]}
	return ne
}

// DropTopScope discards the top scope's bindings in place by swapping in
// a fresh one at the same depth, without changing stack depth.
func (e *Env) DropTopScope() *Env {
	ne := e.Clone()
	ne.Scopes[len(ne.Scopes)-1] = NewScope(false)
	return ne
}

// declSourceScope finds the scope a name should be written to given the
// top scope's global/nonlocal declarations.
func (e *Env) declSourceScope(name string) *Scope {
	top := e.Top()
	if top.Globals[name] {
		return e.Root()
	}
	if top.Nonlocals[name] {
		for i := len(e.Scopes) - 2; i >= 1; i-- {
			if _, ok := e.Scopes[i].Vars[name]; ok {
				return e.Scopes[i]
			}
		}
		// Declared nonlocal but not yet bound anywhere outer: bind it
		// in the scope just below the top (the root scope when the stack
		// has only one). No SyntaxError is raised for a nonlocal that has
		// no outer binding; the evaluator's nonlocal statement only
		// records the declaration.
		if len(e.Scopes) >= 2 {
			return e.Scopes[len(e.Scopes)-2]
		}
		return e.Root()
	}
	return top
}

// Get walks scopes top-down honoring global/nonlocal declarations, per
// spec.md §4.1. Returns (value, true) if bound, or (nil, false).
func (e *Env) Get(name string) (pyvalue.Value, bool) {
	top := e.Top()
	if top.Globals[name] {
		v, ok := e.Root().Vars[name]
		return v, ok
	}
	if top.Nonlocals[name] {
		for i := len(e.Scopes) - 2; i >= 0; i-- {
			if v, ok := e.Scopes[i].Vars[name]; ok {
				return v, true
			}
		}
		return nil, false
	}
	for i := len(e.Scopes) - 1; i >= 0; i-- {
		if v, ok := e.Scopes[i].Vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Put writes name=value honoring global/nonlocal declarations in the top
// scope; otherwise it binds in the top scope (Python's default: assignment
// creates or updates a local binding).
func (e *Env) Put(name string, value pyvalue.Value) {
	e.declSourceScope(name).Vars[name] = value
}

// PutAtSource writes value to whichever scope already binds name,
// searching from the top down; if no scope binds it yet, falls back to
// Put's declaration-aware default.
func (e *Env) PutAtSource(name string, value pyvalue.Value) {
	for i := len(e.Scopes) - 1; i >= 0; i-- {
		if _, ok := e.Scopes[i].Vars[name]; ok {
			e.Scopes[i].Vars[name] = value
			return
		}
	}
	e.Put(name, value)
}

// DeclareGlobal marks name as resolving to the root scope in the current
// top scope, per the `global` statement.
func (e *Env) DeclareGlobal(name string) { e.Top().Globals[name] = true }

// DeclareNonlocal marks name as resolving to the nearest enclosing
// non-root scope that binds it, per the `nonlocal` statement.
func (e *Env) DeclareNonlocal(name string) { e.Top().Nonlocals[name] = true }

// Delete removes name from whichever scope currently binds it (`del`).
func (e *Env) Delete(name string) bool {
	for i := len(e.Scopes) - 1; i >= 0; i-- {
		if _, ok := e.Scopes[i].Vars[name]; ok {
			delete(e.Scopes[i].Vars, name)
			return true
		}
	}
	return false
}

// AllBindings returns a flattened view of every name reachable from the
// current scope, innermost wins, for module-body export (spec.md §4.1).
func (e *Env) AllBindings() map[string]pyvalue.Value {
	out := map[string]pyvalue.Value{}
	for _, s := range e.Scopes {
		for k, v := range s.Vars {
			out[k] = v
		}
	}
	return out
}

// MergeClosureScopes reconciles rebindings a call frame (postCall) made to
// names captured from old, the closure's originally-captured Env. Under
// this package's pointer-shared-scope design every write already lands in
// the shared *Scope, so there is nothing left to copy; this function
// exists to satisfy spec.md §4.1's named contract and as the single place
// a future copy-on-write scope representation would hook in.
func MergeClosureScopes(old, postCall *Env) *Env {
	return old
}
