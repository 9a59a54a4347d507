package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func TestMatchGroupAccessors(t *testing.T) {
	m := &pyvalue.Match{
		Whole:       "12-34",
		Groups:      []string{"12", "34"},
		GroupsFound: []bool{true, true},
		Start:       6,
		End:         11,
	}
	table := NewTable()

	group, ok := table.LookupMethod("re.Match", "group")
	require.True(t, ok)
	v, err := group([]pyvalue.Value{m}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.Str("12-34"), v)

	v, err = group([]pyvalue.Value{m, pyvalue.Int(2)}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.Str("34"), v)

	_, err = group([]pyvalue.Value{m, pyvalue.Int(5)}, nil)
	require.Error(t, err)

	groups, ok := table.LookupMethod("re.Match", "groups")
	require.True(t, ok)
	v, err = groups([]pyvalue.Value{m}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.NewTuple(pyvalue.Str("12"), pyvalue.Str("34")), v)

	start, _ := table.LookupMethod("re.Match", "start")
	v, err = start([]pyvalue.Value{m}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.Int(6), v)

	end, _ := table.LookupMethod("re.Match", "end")
	v, err = end([]pyvalue.Value{m}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.Int(11), v)
}

func TestMatchGroupUnmatchedOptional(t *testing.T) {
	m := &pyvalue.Match{
		Whole:       "a",
		Groups:      []string{"", ""},
		GroupsFound: []bool{true, false},
	}
	table := NewTable()
	group, _ := table.LookupMethod("re.Match", "group")
	v, err := group([]pyvalue.Value{m, pyvalue.Int(2)}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.NoneValue, v)
}
