package hashlibmod

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func TestConstructorsHexdigest(t *testing.T) {
	mod := Module().ModuleValue()
	sha256Fn := mod["sha256"].(*pyvalue.BuiltinKWFunc)

	v, err := sha256Fn.Fn([]pyvalue.Value{pyvalue.Str("abc")}, nil)
	require.NoError(t, err)
	h, ok := v.(*pyvalue.Hash)
	require.True(t, ok)
	require.Equal(t, "sha256", h.Algo)
	require.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hex.EncodeToString(h.H.Sum(nil)))
}

func TestUnsupportedAlgorithm(t *testing.T) {
	_, err := NewHasher("sha512")
	require.Error(t, err)
}
