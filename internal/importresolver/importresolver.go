// Package importresolver implements the pure, host-independent half of
// spec.md §4.6's resolve_module: translating a dotted module name to a
// sandboxed filesystem path and producing the ModuleNotFoundError hint
// table. The stateful half — walking ctx.Modules, the stdlib registry,
// and the filesystem backend, then caching the result — lives in the
// evaluator package, which is the only place that can both run a guest
// module's body and avoid importing this package's own callers.
package importresolver

import (
	"strings"

	"golang.org/x/mod/module"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
)

// hints maps a commonly-attempted-but-unsupported module name to the
// stdlib module this interpreter offers instead, per spec.md §4.6 point 3.
var hints = map[string]string{
	"urllib":    "requests",
	"urllib2":   "requests",
	"httplib":   "requests",
	"sys":       "os",
	"subprocess": "os",
	"json":      "(no built-in json module; hosts may register one via ctx.Modules)",
}

// Hint returns a suggestion string for name, or "" if none is known.
func Hint(name string) string {
	root := name
	if i := strings.IndexByte(root, '.'); i >= 0 {
		root = root[:i]
	}
	return hints[root]
}

// FilePath translates a dotted module name to the slash-separated relative
// path its filesystem-backed source would live at, validating along the
// way that no path segment escapes the sandboxed module root (no `..`,
// no empty segments, no absolute path) before it is ever handed to a
// FilesystemBackend.
func FilePath(name string) (string, error) {
	if name == "" {
		return "", pyerr.New(pyerr.ModuleNotFound, "no module named ''")
	}
	rel := strings.ReplaceAll(name, ".", "/") + ".py"
	// module.CheckFilePath validates the string as a well-formed,
	// traversal-free relative file path; it happens to live in the Go
	// module-path validator but the rule it enforces (no "..", no empty
	// elements, no absolute prefix) is exactly the sandboxing property an
	// import path needs before reaching a filesystem backend.
	if err := module.CheckFilePath(rel); err != nil {
		return "", pyerr.New(pyerr.ImportError, "invalid module path %q: %s", name, err.Error())
	}
	return rel, nil
}

// SplitRoot returns name's first dotted segment and the remainder (empty
// if name has no dot), for walking nested module mappings.
func SplitRoot(name string) (root, rest string) {
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return name, ""
}
