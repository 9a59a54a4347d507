// Package collectionsmod implements the collections stdlib module named in
// spec.md §8 scenario 4 and §3's defaultdict hiding invariant:
// collections.Counter and collections.defaultdict.
package collectionsmod

import (
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// materialize flattens the handful of container kinds Counter's
// constructor realistically receives. Anything needing the evaluator's
// full iterator protocol (a custom __iter__ instance) is out of scope for
// a module-level constructor that runs outside the evaluator's request
// round-trip.
func materialize(v pyvalue.Value) ([]pyvalue.Value, error) {
	switch x := v.(type) {
	case pyvalue.Str:
		out := make([]pyvalue.Value, 0, len(x))
		for _, r := range string(x) {
			out = append(out, pyvalue.Str(string(r)))
		}
		return out, nil
	case *pyvalue.List:
		return x.Items, nil
	case pyvalue.Tuple:
		return x.Items, nil
	case *pyvalue.Set:
		return x.Items(), nil
	case pyvalue.FrozenSet:
		return x.Items(), nil
	default:
		return nil, pyerr.New(pyerr.TypeError, "'%s' object is not iterable", pyvalue.TypeNameOf(v))
	}
}

func newCounter(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	d := pyvalue.NewDict()
	d.IsCounter = true
	d.DefaultFactory = pyvalue.Int(0)
	if len(args) == 0 {
		return d, nil
	}
	items, err := materialize(args[0])
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		cur, _ := d.Get(item)
		n, _ := cur.(pyvalue.Int)
		if err := d.Set(item, n+1); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func newDefaultdict(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	d := pyvalue.NewDict()
	if len(args) > 0 {
		d.DefaultFactory = args[0]
	}
	return d, nil
}

// Module returns the collections module's namespace. It takes no context
// since Counter/defaultdict depend on no run-scoped state.
func Module() pycontext.ModuleProvider {
	return pycontext.StaticModule(map[string]pyvalue.Value{
		"Counter":     &pyvalue.BuiltinKWFunc{Name: "Counter", Fn: newCounter},
		"defaultdict": &pyvalue.BuiltinKWFunc{Name: "defaultdict", Fn: newDefaultdict},
	})
}
