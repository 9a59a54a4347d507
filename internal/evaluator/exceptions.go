package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// exceptionHierarchy builds the builtin exception class tree seeded into
// every module's root scope, mirroring CPython's BaseException hierarchy
// closely enough to support `class MyError(ValueError): ...` and
// `except (TypeError, KeyError):` against either builtin or user-derived
// exception types. Classes here are marked Native so calling them
// constructs an Instance directly instead of dispatching to a (nonexistent)
// AST __init__ body.
func exceptionHierarchy() map[string]*pyvalue.Class {
	mk := func(name string, bases ...*pyvalue.Class) *pyvalue.Class {
		c := pyvalue.NewClass(name, bases)
		c.Native = true
		return c
	}
	base := mk("BaseException")
	exc := mk("Exception", base)
	arith := mk("ArithmeticError", exc)
	lookup := mk("LookupError", exc)
	osErr := mk("OSError", exc)
	out := map[string]*pyvalue.Class{
		"BaseException":       base,
		"Exception":           exc,
		"TypeError":           mk("TypeError", exc),
		"ValueError":          mk("ValueError", exc),
		"AttributeError":      mk("AttributeError", exc),
		"NameError":           mk("NameError", exc),
		"ArithmeticError":     arith,
		"ZeroDivisionError":   mk("ZeroDivisionError", arith),
		"OverflowError":       mk("OverflowError", arith),
		"MemoryError":         mk("MemoryError", exc),
		"RecursionError":      mk("RecursionError", exc),
		"NotImplementedError": mk("NotImplementedError", exc),
		"LookupError":         lookup,
		"KeyError":            mk("KeyError", lookup),
		"IndexError":          mk("IndexError", lookup),
		"ImportError":         mk("ImportError", exc),
		"ModuleNotFoundError": nil, // filled below (subclasses ImportError)
		"SyntaxError":         mk("SyntaxError", exc),
		"OSError":             osErr,
		"IOError":             osErr,
		"PermissionError":     mk("PermissionError", osErr),
		"NetworkError":        mk("NetworkError", osErr),
		"StopIteration":       mk("StopIteration", exc),
		"TimeoutError":        mk("TimeoutError", osErr),
		"RuntimeError":        mk("RuntimeError", exc),
	}
	out["ModuleNotFoundError"] = mk("ModuleNotFoundError", out["ImportError"])
	return out
}

// exceptionFromValue converts a raised guest value into the host-carried
// pyerr.Exception, per spec.md §6's exception contract. Instances built
// from the builtin hierarchy (or a user subclass of it) carry their class
// through Exc.Instance so except-clause matching can use isinstance
// semantics instead of string comparison.
func exceptionFromValue(v pyvalue.Value) *pyerr.Exception {
	switch x := v.(type) {
	case *pyvalue.Instance:
		msg := ""
		if m, ok := x.Attrs["message"]; ok {
			msg = pyvalue.PyStr(m)
		} else if a, ok := x.Attrs["args"]; ok {
			if t, ok := a.(pyvalue.Tuple); ok && len(t.Items) > 0 {
				msg = pyvalue.PyStr(t.Items[0])
			}
		}
		return &pyerr.Exception{Kind: pyerr.Kind(x.Class.Name), Message: msg, Instance: x}
	case *pyvalue.Class:
		inst := pyvalue.NewInstance(x)
		inst.Attrs["args"] = pyvalue.NewTuple()
		return &pyerr.Exception{Kind: pyerr.Kind(x.Name), Instance: inst}
	case pyvalue.Str:
		return pyerr.New(pyerr.Kind("Exception"), "%s", string(x))
	default:
		return pyerr.New(pyerr.Kind("Exception"), "%s", pyvalue.PyStr(v))
	}
}

// exceptionMatches reports whether the raised exception matches one of
// the except-clause's type values, using isinstance on the guest instance
// when one is present, and a name/Exception-catch-all fallback otherwise
// (host-raised exceptions from operators/builtins rarely carry a full
// guest Instance).
func exceptionMatches(exc *pyerr.Exception, typeVal pyvalue.Value) bool {
	cls, ok := typeVal.(*pyvalue.Class)
	if !ok {
		return false
	}
	if inst, ok := exc.Instance.(*pyvalue.Instance); ok {
		return inst.Class.IsSubclassOf(cls)
	}
	if cls.Name == "Exception" || cls.Name == "BaseException" {
		return true
	}
	return string(exc.Kind) == cls.Name
}
