package registry

import (
	"encoding/hex"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// registerHashMethods wires the update/hexdigest/digest trio shared by the
// hashlib and hmac conformance fixture (SPEC_FULL.md §12) onto both the
// plain-hash and HMAC type tags, since both wrap the same *pyvalue.Hash
// shape and CPython exposes an identical method surface on each.
func registerHashMethods(t *Table) {
	for _, typeName := range []string{"_hashlib.HASH", "hmac.HMAC"} {
		t.RegisterMethod(typeName, "update", hashUpdate)
		t.RegisterMethod(typeName, "hexdigest", hashHexdigest)
		t.RegisterMethod(typeName, "digest", hashDigest)
	}
}

func selfHash(args []pyvalue.Value) (*pyvalue.Hash, error) {
	if len(args) == 0 {
		return nil, pyerr.New(pyerr.TypeError, "missing receiver")
	}
	h, ok := args[0].(*pyvalue.Hash)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "not a hash object")
	}
	return h, nil
}

func dataArg(v pyvalue.Value) ([]byte, error) {
	switch s := v.(type) {
	case pyvalue.Str:
		return []byte(s), nil
	default:
		return nil, pyerr.New(pyerr.TypeError, "a bytes-like object is required, not '%s'", v.TypeName())
	}
}

func hashUpdate(args []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
	h, err := selfHash(args)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, pyerr.New(pyerr.TypeError, "update() requires data")
	}
	data, err := dataArg(args[1])
	if err != nil {
		return nil, err
	}
	h.H.Write(data)
	return pyvalue.NoneValue, nil
}

func hashHexdigest(args []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
	h, err := selfHash(args)
	if err != nil {
		return nil, err
	}
	return pyvalue.Str(hex.EncodeToString(h.H.Sum(nil))), nil
}

func hashDigest(args []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
	h, err := selfHash(args)
	if err != nil {
		return nil, err
	}
	return pyvalue.Str(string(h.H.Sum(nil))), nil
}
