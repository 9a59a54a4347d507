package registry

import (
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func selfMatch(args []pyvalue.Value) (*pyvalue.Match, error) {
	m, ok := args[0].(*pyvalue.Match)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "expected a re.Match receiver")
	}
	return m, nil
}

// registerMatchMethods wires the handful of re.Match accessors the
// `re` stdlib module's match()/search()/fullmatch() results expose
// (spec.md §8 scenario 5, internal/stdlib/remod).
func registerMatchMethods(t *Table) {
	const T = "re.Match"

	t.RegisterMethod(T, "group", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		m, err := selfMatch(a)
		if err != nil {
			return nil, err
		}
		if len(a) == 1 {
			return pyvalue.Str(m.Whole), nil
		}
		n, ok := a[1].(pyvalue.Int)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "group() argument must be an int")
		}
		if n == 0 {
			return pyvalue.Str(m.Whole), nil
		}
		idx := int(n) - 1
		if idx < 0 || idx >= len(m.Groups) {
			return nil, pyerr.New(pyerr.IndexError, "no such group")
		}
		if !m.GroupsFound[idx] {
			return pyvalue.NoneValue, nil
		}
		return pyvalue.Str(m.Groups[idx]), nil
	})
	t.RegisterMethod(T, "groups", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		m, err := selfMatch(a)
		if err != nil {
			return nil, err
		}
		out := make([]pyvalue.Value, len(m.Groups))
		for i, g := range m.Groups {
			if !m.GroupsFound[i] {
				out[i] = pyvalue.NoneValue
				continue
			}
			out[i] = pyvalue.Str(g)
		}
		return pyvalue.NewTuple(out...), nil
	})
	t.RegisterMethod(T, "start", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		m, err := selfMatch(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Int(m.Start), nil
	})
	t.RegisterMethod(T, "end", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		m, err := selfMatch(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Int(m.End), nil
	})
}
