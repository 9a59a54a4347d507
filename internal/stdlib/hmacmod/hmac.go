// Package hmacmod implements hmac.new and hmac.compare_digest, the other
// half of the Stripe-webhook-shaped HMAC verification conformance fixture
// of SPEC_FULL.md §12. Backed by crypto/hmac, grounded alongside
// hashlibmod's crypto/sha256 — both stdlib-only choices justified in
// SPEC_FULL.md §13 since no third-party MAC implementation appears
// anywhere in the retrieval pack.
package hmacmod

import (
	"crypto/hmac"
	"crypto/subtle"
	"hash"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/hashlibmod"
)

// digestmodName resolves hmac.new's third argument, which CPython accepts
// as either a digestmod module/function (e.g. hashlib.sha256) or its
// string name ("sha256"). This subset has no hashlib module object, only
// hashlib's own constructor functions, so a *pyvalue.BuiltinKWFunc's Name
// doubles as the algorithm name.
func digestmodName(v pyvalue.Value) (string, error) {
	switch d := v.(type) {
	case pyvalue.Str:
		return string(d), nil
	case *pyvalue.BuiltinKWFunc:
		return d.Name, nil
	default:
		return "", pyerr.New(pyerr.TypeError, "digestmod must be a hash name or hashlib constructor")
	}
}

func hmacNew(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	if len(args) < 1 {
		return nil, pyerr.New(pyerr.TypeError, "new() requires a key")
	}
	key, ok := args[0].(pyvalue.Str)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "key must be a bytes-like object")
	}
	var msg pyvalue.Str
	if len(args) > 1 {
		msg, ok = args[1].(pyvalue.Str)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "msg must be a bytes-like object")
		}
	}
	if len(args) < 3 {
		return nil, pyerr.New(pyerr.TypeError, "new() requires a digestmod in this subset (CPython's default is deprecated)")
	}
	algo, err := digestmodName(args[2])
	if err != nil {
		return nil, err
	}
	mac := hmac.New(func() hash.Hash {
		h, _ := hashlibmod.NewHasher(algo)
		return h
	}, []byte(key))
	if len(msg) > 0 {
		mac.Write([]byte(msg))
	}
	return &pyvalue.Hash{Algo: "hmac", H: mac}, nil
}

func compareDigest(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	if len(args) < 2 {
		return nil, pyerr.New(pyerr.TypeError, "compare_digest() requires two arguments")
	}
	a, ok1 := args[0].(pyvalue.Str)
	b, ok2 := args[1].(pyvalue.Str)
	if !ok1 || !ok2 {
		return nil, pyerr.New(pyerr.TypeError, "comparison requires bytes-like objects")
	}
	if len(a) != len(b) {
		return pyvalue.Bool(false), nil
	}
	return pyvalue.Bool(subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1), nil
}

// Module returns the hmac namespace.
func Module() pycontext.ModuleProvider {
	return pycontext.StaticModule(map[string]pyvalue.Value{
		"new":            &pyvalue.BuiltinKWFunc{Name: "new", Fn: hmacNew},
		"compare_digest": &pyvalue.BuiltinKWFunc{Name: "compare_digest", Fn: compareDigest},
	})
}
