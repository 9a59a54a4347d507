// Package hashlibmod implements the subset of hashlib the Stripe-webhook
// conformance fixture of SPEC_FULL.md §12 exercises: sha256 (the
// digestmod hmac.new needs) plus sha1/md5 for completeness, each a
// constructor returning a live *pyvalue.Hash the registry's update/
// hexdigest/digest methods (internal/registry/hashmethods.go) operate on.
package hashlibmod

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"hash"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// NewHasher builds a fresh hash.Hash for name, used both by the
// constructors below and by hmacmod (which accepts a hashlib function
// value as its digestmod argument and needs to resolve it back to an
// algorithm name).
func NewHasher(name string) (hash.Hash, error) {
	switch name {
	case "sha256":
		return sha256.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "md5":
		return md5.New(), nil
	default:
		return nil, pyerr.New(pyerr.ValueError, "unsupported hash type %s", name)
	}
}

func constructor(name string) *pyvalue.BuiltinKWFunc {
	return &pyvalue.BuiltinKWFunc{Name: name, Fn: func(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
		h, err := NewHasher(name)
		if err != nil {
			return nil, err
		}
		if len(args) > 0 {
			s, ok := args[0].(pyvalue.Str)
			if !ok {
				return nil, pyerr.New(pyerr.TypeError, "a bytes-like object is required, not '%s'", args[0].TypeName())
			}
			h.Write([]byte(s))
		}
		return &pyvalue.Hash{Algo: name, H: h}, nil
	}}
}

// Module returns the hashlib namespace.
func Module() pycontext.ModuleProvider {
	return pycontext.StaticModule(map[string]pyvalue.Value{
		"sha256": constructor("sha256"),
		"sha1":   constructor("sha1"),
		"md5":    constructor("md5"),
	})
}
