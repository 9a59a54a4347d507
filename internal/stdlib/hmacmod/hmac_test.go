package hmacmod

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/hashlibmod"
)

func TestNewWithStringDigestmod(t *testing.T) {
	mod := Module().ModuleValue()
	newFn := mod["new"].(*pyvalue.BuiltinKWFunc)

	v, err := newFn.Fn([]pyvalue.Value{pyvalue.Str("key"), pyvalue.Str("msg"), pyvalue.Str("sha256")}, nil)
	require.NoError(t, err)
	h := v.(*pyvalue.Hash)
	require.Equal(t, "hmac", h.Algo)
	require.NotEmpty(t, hex.EncodeToString(h.H.Sum(nil)))
}

func TestNewWithHashlibConstructorDigestmod(t *testing.T) {
	mod := Module().ModuleValue()
	newFn := mod["new"].(*pyvalue.BuiltinKWFunc)
	sha256Fn := hashlibmod.Module().ModuleValue()["sha256"].(*pyvalue.BuiltinKWFunc)

	byName, err := newFn.Fn([]pyvalue.Value{pyvalue.Str("key"), pyvalue.Str("msg"), pyvalue.Str("sha256")}, nil)
	require.NoError(t, err)
	byFunc, err := newFn.Fn([]pyvalue.Value{pyvalue.Str("key"), pyvalue.Str("msg"), sha256Fn}, nil)
	require.NoError(t, err)

	require.Equal(t,
		hex.EncodeToString(byName.(*pyvalue.Hash).H.Sum(nil)),
		hex.EncodeToString(byFunc.(*pyvalue.Hash).H.Sum(nil)),
	)
}

func TestCompareDigest(t *testing.T) {
	mod := Module().ModuleValue()
	cmp := mod["compare_digest"].(*pyvalue.BuiltinKWFunc)

	v, err := cmp.Fn([]pyvalue.Value{pyvalue.Str("abc"), pyvalue.Str("abc")}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.Bool(true), v)

	v, err = cmp.Fn([]pyvalue.Value{pyvalue.Str("abc"), pyvalue.Str("abd")}, nil)
	require.NoError(t, err)
	require.Equal(t, pyvalue.Bool(false), v)
}
