// Package stdlib is the process-lifetime registry of standard-library
// modules this interpreter ships (spec.md §4.6 point 2(b)): re, collections,
// hashlib, hmac, os, requests. Per SPEC_FULL.md §11, the modules with no
// per-run state (re, collections, hashlib, hmac) are built once,
// concurrently, via golang.org/x/sync's errgroup, then frozen; os and
// requests carry run-scoped state (environ, network policy) and are
// instead built fresh per resolution, closing over the run's
// *pycontext.Context.
package stdlib

import (
	"golang.org/x/sync/errgroup"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/collectionsmod"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/hashlibmod"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/hmacmod"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/osmod"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/remod"
	"github.com/ivarvong/pyex-sub002/internal/stdlib/requestsmod"
)

// Registry holds the frozen, ctx-independent stdlib modules; the
// ctx-dependent ones (os, requests) are built per run by Lookup.
type Registry struct {
	re          pycontext.ModuleProvider
	collections pycontext.ModuleProvider
	hashlib     pycontext.ModuleProvider
	hmac        pycontext.ModuleProvider
}

// New builds the stdlib registry, constructing the static modules
// concurrently since each is an independent, side-effect-free table build.
func New() (*Registry, error) {
	r := &Registry{}
	var g errgroup.Group
	g.Go(func() error {
		r.re = remod.Module()
		return nil
	})
	g.Go(func() error {
		r.collections = collectionsmod.Module()
		return nil
	})
	g.Go(func() error {
		r.hashlib = hashlibmod.Module()
		return nil
	})
	g.Go(func() error {
		r.hmac = hmacmod.Module()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// Lookup resolves a stdlib root module name against ctx, building the
// per-run modules (os, requests) on demand since they carry run-scoped
// state the frozen static modules don't need.
func (r *Registry) Lookup(root string, ctx *pycontext.Context) (pycontext.ModuleProvider, bool) {
	switch root {
	case "re":
		return r.re, true
	case "collections":
		return r.collections, true
	case "hashlib":
		return r.hashlib, true
	case "hmac":
		return r.hmac, true
	case "os":
		return osmod.Module(ctx), true
	case "requests":
		return requestsmod.Module(ctx), true
	default:
		return nil, false
	}
}
