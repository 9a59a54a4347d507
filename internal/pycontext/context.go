// Package pycontext implements the execution context of spec.md §4.3: the
// deterministic event log, compute clock, capability set, network policy,
// environ, filesystem handles, iterator table, and call-depth guard that
// thread through every evaluation step.
package pycontext

import (
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pylog"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// Mode is one of the three context modes of spec.md §4.3.
type Mode int

const (
	ModeLive Mode = iota
	ModeReplay
	ModeNoOp
)

// DefaultCallDepthLimit is the default call-depth ceiling (spec.md §4.3).
const DefaultCallDepthLimit = 500

// ModuleProvider is the module protocol of spec.md §6: an object exposing
// a name->value mapping, possibly nested for dotted sub-modules.
type ModuleProvider interface {
	ModuleValue() map[string]pyvalue.Value
}

type staticModule map[string]pyvalue.Value

func (m staticModule) ModuleValue() map[string]pyvalue.Value { return m }

// StaticModule adapts a plain mapping to ModuleProvider, for the common
// case of a host module that is just a bag of values.
func StaticModule(m map[string]pyvalue.Value) ModuleProvider { return staticModule(m) }

// Options configures a new Context, mirroring the ctx.new(options) field
// list of spec.md §6.
type Options struct {
	Filesystem     FilesystemBackend
	Environ        map[string]string
	Modules        map[string]ModuleProvider
	TimeoutMS      int64
	Profile        bool
	Network        *NetworkPolicy
	Capabilities   []string
	CallDepthLimit int
	// Logger is nil by default, meaning silent (pylog.Disabled()).
	Logger *zerolog.Logger
	// Parser compiles a filesystem-resolved module's source into an AST
	// (spec.md §4.7's "parser is external" contract). Nil means
	// filesystem-backed imports are unavailable; host-supplied Modules and
	// the stdlib registry still resolve without it.
	Parser func(source string) (*ast.Module, error)

	// Per-capability shorthand flags, e.g. AllowFilesystem grants "fs"
	// without spelling it out in Capabilities.
	AllowFilesystem bool
	AllowNetwork    bool
	AllowSubprocess bool
}

// Context is the threaded execution context. It is never shared across
// evaluations per spec.md §5; each Run gets (and returns) its own.
type Context struct {
	Mode   Mode
	RunID  uuid.UUID
	Log    []Event
	cursor int

	Clock Clock

	Capabilities map[string]bool
	Network      *NetworkPolicy
	Environ      map[string]string
	Modules      map[string]ModuleProvider

	FileSystem FilesystemBackend
	Files      map[int]*FileHandle
	nextFileID int

	Iterators  map[int]*IteratorEntry
	nextIterID int

	CallDepth      int
	CallDepthLimit int

	// ImportedModules caches filesystem-resolved modules for the run's
	// lifetime, keyed by dotted module name (spec.md §3, §4.6).
	ImportedModules map[string]map[string]pyvalue.Value

	Profile bool
	Logger  zerolog.Logger
	Parser  func(source string) (*ast.Module, error)
}

// New constructs a fresh, live Context from Options.
func New(opts Options) *Context {
	caps := map[string]bool{}
	for _, c := range opts.Capabilities {
		caps[c] = true
	}
	if opts.AllowFilesystem {
		caps["fs"] = true
	}
	if opts.AllowNetwork {
		caps["network"] = true
	}
	if opts.AllowSubprocess {
		caps["subprocess"] = true
	}
	depthLimit := opts.CallDepthLimit
	if depthLimit <= 0 {
		depthLimit = DefaultCallDepthLimit
	}
	logger := pylog.Disabled()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	environ := map[string]string{}
	for k, v := range opts.Environ {
		environ[k] = v
	}
	modules := map[string]ModuleProvider{}
	for k, v := range opts.Modules {
		modules[k] = v
	}
	c := &Context{
		Mode:            ModeLive,
		RunID:           uuid.New(),
		Capabilities:    caps,
		Network:         opts.Network,
		Environ:         environ,
		Modules:         modules,
		FileSystem:      opts.Filesystem,
		Files:           map[int]*FileHandle{},
		Iterators:       map[int]*IteratorEntry{},
		CallDepthLimit:  depthLimit,
		ImportedModules: map[string]map[string]pyvalue.Value{},
		Profile:         opts.Profile,
		Logger:          logger,
		Parser:          opts.Parser,
	}
	c.Clock.BudgetMS = opts.TimeoutMS
	return c
}

// HasCapability reports whether name is granted.
func (c *Context) HasCapability(name string) bool { return c.Capabilities[name] }

// RequireCapability implements spec.md §4.3/§8's capability law: an
// absent capability fails with PermissionError and the guarded callback
// must not be invoked.
func (c *Context) RequireCapability(name string) error {
	if !c.HasCapability(name) {
		c.Logger.Warn().Str("capability", name).Msg("permission denied")
		return pyerr.New(pyerr.PermissionError, "capability %q is not granted to this run", name)
	}
	return nil
}

// EnterCall increments the call-depth counter, returning RecursionError on
// overflow (spec.md §4.3's call-depth guard).
func (c *Context) EnterCall() error {
	c.CallDepth++
	if c.CallDepth > c.CallDepthLimit {
		c.CallDepth--
		return pyerr.New(pyerr.RecursionError, "maximum recursion depth exceeded")
	}
	return nil
}

// ExitCall decrements the call-depth counter.
func (c *Context) ExitCall() {
	if c.CallDepth > 0 {
		c.CallDepth--
	}
}

// Suspend implements the suspend() builtin's cooperative yield (spec.md
// §5). It returns true when the caller should actually hand control back
// to the host now; in replay, a previously-recorded suspend point is
// consumed without re-suspending, letting replay run straight through to
// where live execution should resume.
func (c *Context) Suspend() bool {
	if c.Mode == ModeReplay && c.cursor < len(c.Log) {
		c.record(Event{Kind: EventSuspend})
		return false
	}
	c.record(Event{Kind: EventSuspend})
	return true
}

// ForResume re-enters replay mode from the beginning of the existing log,
// per spec.md §6's ctx.for_resume. Replaying to the end reproduces every
// decision already made; once the cursor passes the last recorded event
// the context flips back to live and execution continues past the
// previous suspension point.
func (c *Context) ForResume() *Context {
	nc := *c
	nc.Mode = ModeReplay
	nc.cursor = 0
	return &nc
}

// BranchAt re-enters replay mode starting at event index n instead of the
// beginning, per spec.md §6's ctx.branch_at — used to explore an
// alternate continuation from a specific decision point.
func (c *Context) BranchAt(n int) *Context {
	nc := *c
	nc.Mode = ModeReplay
	if n < 0 {
		n = 0
	}
	if n > len(nc.Log) {
		n = len(nc.Log)
	}
	nc.cursor = n
	return &nc
}

// WithNoOpRecording returns a copy of c with recording disabled, for
// performance-sensitive inner loops that don't need replay support.
func (c *Context) WithNoOpRecording() *Context {
	nc := *c
	nc.Mode = ModeNoOp
	return &nc
}
