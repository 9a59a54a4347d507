package remod

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func kwFn(t *testing.T, mod map[string]pyvalue.Value, name string) func([]pyvalue.Value, map[string]pyvalue.Value) (pyvalue.Value, error) {
	t.Helper()
	fn, ok := mod[name].(*pyvalue.BuiltinKWFunc)
	require.True(t, ok, "missing %s", name)
	return fn.Fn
}

func TestFindallGroupCases(t *testing.T) {
	mod := Module().ModuleValue()
	findall := kwFn(t, mod, "findall")

	v, err := findall(nil, nil)
	require.Nil(t, v)
	require.Error(t, err)

	v, err = findall([]pyvalue.Value{pyvalue.Str(`\d+`), pyvalue.Str("a1 b22 c333")}, nil)
	require.NoError(t, err)
	lst := v.(*pyvalue.List)
	require.Len(t, lst.Items, 3)
	require.Equal(t, pyvalue.Str("1"), lst.Items[0])
	require.Equal(t, pyvalue.Str("22"), lst.Items[1])
	require.Equal(t, pyvalue.Str("333"), lst.Items[2])
}

func TestSubBackreference(t *testing.T) {
	mod := Module().ModuleValue()
	sub := kwFn(t, mod, "sub")

	v, err := sub([]pyvalue.Value{pyvalue.Str(`(\w+)@(\w+)`), pyvalue.Str(`\2@\1`), pyvalue.Str("user@host")}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.Str("host@user"), v)
}

func TestMatchGroups(t *testing.T) {
	mod := Module().ModuleValue()
	search := kwFn(t, mod, "search")

	v, err := search([]pyvalue.Value{pyvalue.Str(`(\d+)-(\d+)`), pyvalue.Str("order 12-34 shipped")}, nil)
	require.NoError(t, err)
	m := v.(*pyvalue.Match)
	require.Equal(t, "12-34", m.Whole)
	require.Equal(t, []string{"12", "34"}, m.Groups)
}

func TestSearchNoMatchReturnsNone(t *testing.T) {
	mod := Module().ModuleValue()
	search := kwFn(t, mod, "search")

	v, err := search([]pyvalue.Value{pyvalue.Str(`xyz`), pyvalue.Str("abc")}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.NoneValue, v)
}
