package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func TestMostCommonGatedToCounter(t *testing.T) {
	table := NewTable()
	require.NoError(t, table.ConstructionIssues())

	plain := pyvalue.NewDict()
	require.NoError(t, plain.Set(pyvalue.Str("a"), pyvalue.Int(1)))
	cb, ok := table.LookupMethod("dict", "most_common")
	require.True(t, ok)
	_, err := cb([]pyvalue.Value{plain}, nil)
	require.Error(t, err)

	counter := pyvalue.NewDict()
	counter.IsCounter = true
	require.NoError(t, counter.Set(pyvalue.Str("a"), pyvalue.Int(3)))
	require.NoError(t, counter.Set(pyvalue.Str("b"), pyvalue.Int(7)))
	out, err := cb([]pyvalue.Value{counter}, nil)
	require.NoError(t, err)
	lst := out.(*pyvalue.List)
	require.Len(t, lst.Items, 2)
	first := lst.Items[0].(pyvalue.Tuple)
	require.Equal(t, pyvalue.Str("b"), first.Items[0])
	require.Equal(t, pyvalue.Int(7), first.Items[1])
}

func TestElementsGatedToCounter(t *testing.T) {
	table := NewTable()
	cb, ok := table.LookupMethod("dict", "elements")
	require.True(t, ok)

	plain := pyvalue.NewDict()
	_, err := cb([]pyvalue.Value{plain}, nil)
	require.Error(t, err)

	counter := pyvalue.NewDict()
	counter.IsCounter = true
	require.NoError(t, counter.Set(pyvalue.Str("x"), pyvalue.Int(2)))
	out, err := cb([]pyvalue.Value{counter}, nil)
	require.NoError(t, err)
	lst := out.(*pyvalue.List)
	require.Equal(t, []pyvalue.Value{pyvalue.Str("x"), pyvalue.Str("x")}, lst.Items)
}
