package pyvalue

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Truthy implements spec.md §4.2's truthy() rule for every variant that
// does not require evaluator re-entry. Instances are always true: the
// evaluator calls this function directly for if/while/not/and/or and
// friends, and neither it nor this function consults an Instance's
// __bool__ or __len__.
func Truthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case None:
		return false
	case Bool:
		return bool(x)
	case Int:
		return x != 0
	case Float:
		return float64(x) != 0
	case Str:
		return len(x) != 0
	case *List:
		return len(x.Items) != 0
	case Tuple:
		return len(x.Items) != 0
	case *Dict:
		return x.Len() != 0
	case *Set:
		return x.Len() != 0
	case FrozenSet:
		return x.Len() != 0
	case Range:
		return x.Len() != 0
	case *Generator:
		return len(x.Values) != 0
	default:
		return true
	}
}

// PyStr formats v with Python's str() rules (spec.md §4.2).
func PyStr(v Value) string {
	switch x := v.(type) {
	case nil:
		return "None"
	case None:
		return "None"
	case Bool:
		if x {
			return "True"
		}
		return "False"
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return formatFloat(float64(x))
	case Str:
		return string(x)
	case *List:
		return "[" + joinRepr(x.Items) + "]"
	case Tuple:
		return tupleStr(x)
	case *Dict:
		return dictStr(x)
	case *Set:
		if x.Len() == 0 {
			return "set()"
		}
		return "{" + joinRepr(x.Items()) + "}"
	case FrozenSet:
		if x.Len() == 0 {
			return "frozenset()"
		}
		return "frozenset({" + joinRepr(x.Items()) + "})"
	case Range:
		if x.Step == 1 {
			return fmt.Sprintf("range(%d, %d)", x.Start, x.Stop)
		}
		return fmt.Sprintf("range(%d, %d, %d)", x.Start, x.Stop, x.Step)
	case *Instance:
		return fmt.Sprintf("<%s object>", x.Class.Name)
	case *Class:
		return fmt.Sprintf("<class '%s'>", x.Name)
	case *UserFunc:
		return fmt.Sprintf("<function %s>", x.Name)
	case *BuiltinFunc:
		return fmt.Sprintf("<built-in function %s>", x.Name)
	case *BuiltinKWFunc:
		return fmt.Sprintf("<built-in function %s>", x.Name)
	case *BoundMethod:
		return fmt.Sprintf("<bound method %s>", x.Method)
	case *BoundAttr:
		return fmt.Sprintf("<bound method %s>", x.AttrName)
	default:
		return PyRepr(v)
	}
}

// PyRepr formats v with Python's repr() rules (spec.md §4.2): strings are
// quoted, tuples of length 1 get a trailing comma, etc.
func PyRepr(v Value) string {
	switch x := v.(type) {
	case Str:
		return reprString(string(x))
	case *List, Tuple, *Dict, *Set, FrozenSet, Range, None, nil, Bool, Int, Float, *Instance, *Class:
		return PyStr(v)
	default:
		return PyStr(v)
	}
}

func reprString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case rune(quote):
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}

func joinRepr(items []Value) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = PyRepr(it)
	}
	return strings.Join(parts, ", ")
}

func tupleStr(t Tuple) string {
	if len(t.Items) == 1 {
		return "(" + PyRepr(t.Items[0]) + ",)"
	}
	return "(" + joinRepr(t.Items) + ")"
}

func dictStr(d *Dict) string {
	items := d.Items()
	parts := make([]string, 0, len(items))
	for _, kv := range items {
		parts = append(parts, PyRepr(kv.Items[0])+": "+PyRepr(kv.Items[1]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// formatFloat uses the host's shortest round-tripping form, with Python's
// sentinel spellings for the non-finite values.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Python always shows a decimal point or exponent for floats, unlike
	// Go's shortest-form formatter which may print "1" for 1.0.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
