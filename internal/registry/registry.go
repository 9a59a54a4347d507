package registry

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// Callback is the shape every method and builtin callback conforms to:
// either a pure function of its arguments, or one that returns a Request
// asking the evaluator to do something on its behalf (spec.md §4.5).
type Callback func(args []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error)

// Table is the flat (type-name x method-name) -> Callback lookup of
// spec.md §4.5/§9: "a flat (type-tag × method-name) → builtin-callable
// table, falling back to a 'type has no attribute' error." A second,
// separate table holds free builtins (len, range, sorted, ...).
type Table struct {
	methods  map[string]map[string]Callback
	builtins map[string]Callback
	// buildErr accumulates non-fatal registration conflicts (two
	// registerX calls claiming the same type/method or builtin name) so a
	// host can inspect every conflict at once instead of failing on the
	// first (SPEC_FULL.md §10.2).
	buildErr *multierror.Error
}

// NewTable builds the process-lifetime registry: every built-in method
// and free builtin this interpreter ships. Per spec.md §9 "Global state",
// the result is immutable after construction and safe to share across
// concurrently running interpreter instances.
func NewTable() *Table {
	t := &Table{
		methods:  map[string]map[string]Callback{},
		builtins: map[string]Callback{},
	}
	registerStrMethods(t)
	registerListMethods(t)
	registerDictMethods(t)
	registerSetMethods(t)
	registerFileMethods(t)
	registerMatchMethods(t)
	registerHashMethods(t)
	registerBuiltins(t)
	return t
}

// ConstructionIssues reports every registration conflict found while
// building the table, or nil if there were none.
func (t *Table) ConstructionIssues() error {
	if t.buildErr == nil {
		return nil
	}
	return t.buildErr.ErrorOrNil()
}

func (t *Table) RegisterMethod(typeName, method string, cb Callback) {
	m, ok := t.methods[typeName]
	if !ok {
		m = map[string]Callback{}
		t.methods[typeName] = m
	}
	if _, exists := m[method]; exists {
		t.buildErr = multierror.Append(t.buildErr, fmt.Errorf("duplicate method registration: %s.%s", typeName, method))
	}
	m[method] = cb
}

// LookupMethod resolves a method on a built-in type, per the two-level
// lookup of spec.md §9: "a flat (type-tag × method-name) → builtin-
// callable table, falling back to a 'type has no attribute' error."
func (t *Table) LookupMethod(typeName, method string) (Callback, bool) {
	m, ok := t.methods[typeName]
	if !ok {
		return nil, false
	}
	cb, ok := m[method]
	return cb, ok
}

func (t *Table) RegisterBuiltin(name string, cb Callback) {
	if _, exists := t.builtins[name]; exists {
		t.buildErr = multierror.Append(t.buildErr, fmt.Errorf("duplicate builtin registration: %s", name))
	}
	t.builtins[name] = cb
}

func (t *Table) LookupBuiltin(name string) (Callback, bool) {
	cb, ok := t.builtins[name]
	return cb, ok
}

// BuiltinNames returns every registered free-builtin name, used to seed
// the evaluator's builtins environment once at interpreter construction
// (spec.md §9's startup hook).
func (t *Table) BuiltinNames() []string {
	out := make([]string, 0, len(t.builtins))
	for name := range t.builtins {
		out = append(out, name)
	}
	return out
}
