// Package remod implements the re stdlib module named in spec.md §8
// scenario 5 ("import re; re.findall(...)"), backed by regexp — the
// stdlib-only choice justified in SPEC_FULL.md §13 since no third-party
// regex engine appears anywhere in the retrieval pack.
package remod

import (
	"regexp"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, pyerr.New(pyerr.ValueError, "invalid regular expression %q: %s", pattern, err.Error())
	}
	return re, nil
}

func toMatch(re *regexp.Regexp, s string, loc []int) *pyvalue.Match {
	ngroups := re.NumSubexp()
	groups := make([]string, ngroups)
	found := make([]bool, ngroups)
	for i := 0; i < ngroups; i++ {
		gs, ge := loc[2+2*i], loc[2+2*i+1]
		if gs < 0 || ge < 0 {
			continue
		}
		groups[i] = s[gs:ge]
		found[i] = true
	}
	return &pyvalue.Match{Whole: s[loc[0]:loc[1]], Groups: groups, GroupsFound: found, Start: loc[0], End: loc[1]}
}

func reMatch(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	pattern, s, err := twoStrArgs(args)
	if err != nil {
		return nil, err
	}
	re, err := compile("^(?:" + pattern + ")")
	if err != nil {
		return nil, err
	}
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return pyvalue.NoneValue, nil
	}
	return toMatch(re, s, loc), nil
}

func reFullmatch(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	pattern, s, err := twoStrArgs(args)
	if err != nil {
		return nil, err
	}
	re, err := compile("^(?:" + pattern + ")$")
	if err != nil {
		return nil, err
	}
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return pyvalue.NoneValue, nil
	}
	return toMatch(re, s, loc), nil
}

func reSearch(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	pattern, s, err := twoStrArgs(args)
	if err != nil {
		return nil, err
	}
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return pyvalue.NoneValue, nil
	}
	return toMatch(re, s, loc), nil
}

func reFindall(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	pattern, s, err := twoStrArgs(args)
	if err != nil {
		return nil, err
	}
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	matches := re.FindAllStringSubmatch(s, -1)
	out := make([]pyvalue.Value, len(matches))
	for i, m := range matches {
		switch len(m) {
		case 1:
			out[i] = pyvalue.Str(m[0])
		case 2:
			out[i] = pyvalue.Str(m[1])
		default:
			groups := make([]pyvalue.Value, len(m)-1)
			for j, g := range m[1:] {
				groups[j] = pyvalue.Str(g)
			}
			out[i] = pyvalue.NewTuple(groups...)
		}
	}
	return pyvalue.NewList(out...), nil
}

func reSub(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	if len(args) < 3 {
		return nil, pyerr.New(pyerr.TypeError, "sub() requires pattern, repl, string")
	}
	pattern, ok := args[0].(pyvalue.Str)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "sub() pattern must be str")
	}
	repl, ok := args[1].(pyvalue.Str)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "sub() repl must be str")
	}
	s, ok := args[2].(pyvalue.Str)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "sub() string must be str")
	}
	re, err := compile(string(pattern))
	if err != nil {
		return nil, err
	}
	goRepl := convertBackrefs(string(repl))
	return pyvalue.Str(re.ReplaceAllString(string(s), goRepl)), nil
}

func reSplit(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	pattern, s, err := twoStrArgs(args)
	if err != nil {
		return nil, err
	}
	re, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	parts := re.Split(s, -1)
	out := make([]pyvalue.Value, len(parts))
	for i, p := range parts {
		out[i] = pyvalue.Str(p)
	}
	return pyvalue.NewList(out...), nil
}

func reCompile(args []pyvalue.Value, _ map[string]pyvalue.Value) (pyvalue.Value, error) {
	if len(args) < 1 {
		return nil, pyerr.New(pyerr.TypeError, "compile() requires a pattern")
	}
	pattern, ok := args[0].(pyvalue.Str)
	if !ok {
		return nil, pyerr.New(pyerr.TypeError, "compile() pattern must be str")
	}
	if _, err := compile(string(pattern)); err != nil {
		return nil, err
	}
	// re.compile() returns a Pattern object in CPython; this subset keeps
	// the pattern string itself, since every module-level function here
	// (match/search/findall/sub/split) also accepts a plain string
	// pattern and the kernel has no Pattern-method dispatch target.
	return pattern, nil
}

func twoStrArgs(args []pyvalue.Value) (string, string, error) {
	if len(args) < 2 {
		return "", "", pyerr.New(pyerr.TypeError, "expected (pattern, string) arguments")
	}
	pattern, ok := args[0].(pyvalue.Str)
	if !ok {
		return "", "", pyerr.New(pyerr.TypeError, "pattern must be str")
	}
	s, ok := args[1].(pyvalue.Str)
	if !ok {
		return "", "", pyerr.New(pyerr.TypeError, "string must be str")
	}
	return string(pattern), string(s), nil
}

// convertBackrefs rewrites Python's \1 backreference syntax to RE2's $1.
func convertBackrefs(repl string) string {
	out := make([]byte, 0, len(repl))
	for i := 0; i < len(repl); i++ {
		if repl[i] == '\\' && i+1 < len(repl) && repl[i+1] >= '0' && repl[i+1] <= '9' {
			out = append(out, '$', repl[i+1])
			i++
			continue
		}
		out = append(out, repl[i])
	}
	return string(out)
}

func kw(name string, fn func([]pyvalue.Value, map[string]pyvalue.Value) (pyvalue.Value, error)) *pyvalue.BuiltinKWFunc {
	return &pyvalue.BuiltinKWFunc{Name: name, Fn: fn}
}

// Module returns the re module's namespace. It takes no context since
// every function here is a pure transformation of its string arguments.
func Module() pycontext.ModuleProvider {
	return pycontext.StaticModule(map[string]pyvalue.Value{
		"match":     kw("match", reMatch),
		"fullmatch": kw("fullmatch", reFullmatch),
		"search":    kw("search", reSearch),
		"findall":   kw("findall", reFindall),
		"sub":       kw("sub", reSub),
		"split":     kw("split", reSplit),
		"compile":   kw("compile", reCompile),
	})
}
