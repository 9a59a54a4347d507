package evaluator

import (
	"math"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
)

func applyUnaryOp(op string, x pyvalue.Value) (pyvalue.Value, error) {
	switch op {
	case "-":
		switch v := x.(type) {
		case pyvalue.Int:
			return -v, nil
		case pyvalue.Float:
			return -v, nil
		case pyvalue.Bool:
			if v {
				return pyvalue.Int(-1), nil
			}
			return pyvalue.Int(0), nil
		}
	case "+":
		switch v := x.(type) {
		case pyvalue.Int:
			return v, nil
		case pyvalue.Float:
			return v, nil
		case pyvalue.Bool:
			if v {
				return pyvalue.Int(1), nil
			}
			return pyvalue.Int(0), nil
		}
	case "~":
		if v, ok := x.(pyvalue.Int); ok {
			return ^v, nil
		}
		if v, ok := x.(pyvalue.Bool); ok {
			if v {
				return pyvalue.Int(-2), nil
			}
			return pyvalue.Int(-1), nil
		}
	case "not":
		return pyvalue.Bool(!pyvalue.Truthy(x)), nil
	}
	return nil, pyerr.New(pyerr.TypeError, "bad operand type for unary %s: '%s'", op, pyvalue.TypeNameOf(x))
}

func numToFloat(v pyvalue.Value) (float64, bool) {
	switch x := v.(type) {
	case pyvalue.Int:
		return float64(x), true
	case pyvalue.Float:
		return float64(x), true
	case pyvalue.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func isFloaty(v pyvalue.Value) bool {
	_, ok := v.(pyvalue.Float)
	return ok
}

func intOf(v pyvalue.Value) (int64, bool) {
	switch x := v.(type) {
	case pyvalue.Int:
		return int64(x), true
	case pyvalue.Bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// applyBinOp implements spec.md §4.2's arithmetic/bitwise/sequence
// operators across the numeric tower plus string/list/tuple concatenation
// and repetition.
func applyBinOp(op string, x, y pyvalue.Value) (pyvalue.Value, error) {
	switch op {
	case "+":
		return addOp(x, y)
	case "-":
		return numericOp(x, y, func(a, b int64) int64 { return a - b }, func(a, b float64) float64 { return a - b })
	case "*":
		return mulOp(x, y)
	case "/":
		af, aok := numToFloat(x)
		bf, bok := numToFloat(y)
		if !aok || !bok {
			return nil, typeErr(op, x, y)
		}
		if bf == 0 {
			return nil, pyerr.New(pyerr.ZeroDivisionErr, "division by zero")
		}
		return pyvalue.Float(af / bf), nil
	case "//":
		return floorDivOp(x, y)
	case "%":
		return modOp(x, y)
	case "**":
		return powOp(x, y)
	case "&":
		return bitwiseOp(op, x, y)
	case "|":
		return bitwiseOp(op, x, y)
	case "^":
		return bitwiseOp(op, x, y)
	case "<<":
		return bitwiseOp(op, x, y)
	case ">>":
		return bitwiseOp(op, x, y)
	}
	return nil, pyerr.New(pyerr.TypeError, "unsupported operator %q", op)
}

func typeErr(op string, x, y pyvalue.Value) error {
	return pyerr.New(pyerr.TypeError, "unsupported operand type(s) for %s: '%s' and '%s'", op, pyvalue.TypeNameOf(x), pyvalue.TypeNameOf(y))
}

func addOp(x, y pyvalue.Value) (pyvalue.Value, error) {
	if xs, ok := x.(pyvalue.Str); ok {
		if ys, ok := y.(pyvalue.Str); ok {
			return xs + ys, nil
		}
		return nil, typeErr("+", x, y)
	}
	if xl, ok := x.(*pyvalue.List); ok {
		if yl, ok := y.(*pyvalue.List); ok {
			out := make([]pyvalue.Value, 0, len(xl.Items)+len(yl.Items))
			out = append(out, xl.Items...)
			out = append(out, yl.Items...)
			return pyvalue.NewList(out...), nil
		}
		return nil, typeErr("+", x, y)
	}
	if xt, ok := x.(pyvalue.Tuple); ok {
		if yt, ok := y.(pyvalue.Tuple); ok {
			out := make([]pyvalue.Value, 0, len(xt.Items)+len(yt.Items))
			out = append(out, xt.Items...)
			out = append(out, yt.Items...)
			return pyvalue.NewTuple(out...), nil
		}
		return nil, typeErr("+", x, y)
	}
	return numericOp(x, y, func(a, b int64) int64 { return a + b }, func(a, b float64) float64 { return a + b })
}

func mulOp(x, y pyvalue.Value) (pyvalue.Value, error) {
	if xs, ok := x.(pyvalue.Str); ok {
		if n, ok := intOf(y); ok {
			return pyvalue.Str(repeatStr(string(xs), n)), nil
		}
	}
	if ys, ok := y.(pyvalue.Str); ok {
		if n, ok := intOf(x); ok {
			return pyvalue.Str(repeatStr(string(ys), n)), nil
		}
	}
	if xl, ok := x.(*pyvalue.List); ok {
		if n, ok := intOf(y); ok {
			return pyvalue.NewList(repeatItems(xl.Items, n)...), nil
		}
	}
	if yl, ok := y.(*pyvalue.List); ok {
		if n, ok := intOf(x); ok {
			return pyvalue.NewList(repeatItems(yl.Items, n)...), nil
		}
	}
	return numericOp(x, y, func(a, b int64) int64 { return a * b }, func(a, b float64) float64 { return a * b })
}

func repeatStr(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, len(s)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func repeatItems(items []pyvalue.Value, n int64) []pyvalue.Value {
	if n <= 0 {
		return nil
	}
	out := make([]pyvalue.Value, 0, len(items)*int(n))
	for i := int64(0); i < n; i++ {
		out = append(out, items...)
	}
	return out
}

func numericOp(x, y pyvalue.Value, fi func(a, b int64) int64, ff func(a, b float64) float64) (pyvalue.Value, error) {
	if isFloaty(x) || isFloaty(y) {
		af, aok := numToFloat(x)
		bf, bok := numToFloat(y)
		if !aok || !bok {
			return nil, typeErr("arith", x, y)
		}
		return pyvalue.Float(ff(af, bf)), nil
	}
	ai, aok := intOf(x)
	bi, bok := intOf(y)
	if !aok || !bok {
		return nil, typeErr("arith", x, y)
	}
	return pyvalue.Int(fi(ai, bi)), nil
}

func floorDivOp(x, y pyvalue.Value) (pyvalue.Value, error) {
	if isFloaty(x) || isFloaty(y) {
		af, aok := numToFloat(x)
		bf, bok := numToFloat(y)
		if !aok || !bok {
			return nil, typeErr("//", x, y)
		}
		if bf == 0 {
			return nil, pyerr.New(pyerr.ZeroDivisionErr, "float floor division by zero")
		}
		return pyvalue.Float(math.Floor(af / bf)), nil
	}
	ai, aok := intOf(x)
	bi, bok := intOf(y)
	if !aok || !bok {
		return nil, typeErr("//", x, y)
	}
	if bi == 0 {
		return nil, pyerr.New(pyerr.ZeroDivisionErr, "integer division or modulo by zero")
	}
	q := ai / bi
	if (ai%bi != 0) && ((ai < 0) != (bi < 0)) {
		q--
	}
	return pyvalue.Int(q), nil
}

func modOp(x, y pyvalue.Value) (pyvalue.Value, error) {
	if isFloaty(x) || isFloaty(y) {
		af, aok := numToFloat(x)
		bf, bok := numToFloat(y)
		if !aok || !bok {
			return nil, typeErr("%", x, y)
		}
		if bf == 0 {
			return nil, pyerr.New(pyerr.ZeroDivisionErr, "float modulo")
		}
		m := math.Mod(af, bf)
		if m != 0 && (m < 0) != (bf < 0) {
			m += bf
		}
		return pyvalue.Float(m), nil
	}
	ai, aok := intOf(x)
	bi, bok := intOf(y)
	if !aok || !bok {
		return nil, typeErr("%", x, y)
	}
	if bi == 0 {
		return nil, pyerr.New(pyerr.ZeroDivisionErr, "integer division or modulo by zero")
	}
	m := ai % bi
	if m != 0 && (m < 0) != (bi < 0) {
		m += bi
	}
	return pyvalue.Int(m), nil
}

func powOp(x, y pyvalue.Value) (pyvalue.Value, error) {
	if !isFloaty(x) && !isFloaty(y) {
		bi, bok := intOf(y)
		ai, aok := intOf(x)
		if aok && bok && bi >= 0 {
			result := int64(1)
			base := ai
			e := bi
			for e > 0 {
				if e&1 == 1 {
					result *= base
				}
				base *= base
				e >>= 1
			}
			return pyvalue.Int(result), nil
		}
	}
	af, aok := numToFloat(x)
	bf, bok := numToFloat(y)
	if !aok || !bok {
		return nil, typeErr("**", x, y)
	}
	return pyvalue.Float(math.Pow(af, bf)), nil
}

func bitwiseOp(op string, x, y pyvalue.Value) (pyvalue.Value, error) {
	ai, aok := intOf(x)
	bi, bok := intOf(y)
	if !aok || !bok {
		return nil, typeErr(op, x, y)
	}
	switch op {
	case "&":
		return pyvalue.Int(ai & bi), nil
	case "|":
		return pyvalue.Int(ai | bi), nil
	case "^":
		return pyvalue.Int(ai ^ bi), nil
	case "<<":
		if bi < 0 {
			return nil, pyerr.New(pyerr.ValueError, "negative shift count")
		}
		return pyvalue.Int(ai << uint(bi)), nil
	case ">>":
		if bi < 0 {
			return nil, pyerr.New(pyerr.ValueError, "negative shift count")
		}
		return pyvalue.Int(ai >> uint(bi)), nil
	}
	return nil, pyerr.New(pyerr.TypeError, "unsupported operator %q", op)
}

// compareOp implements one link of a chained comparison.
func compareOp(op string, a, b pyvalue.Value) (bool, error) {
	switch op {
	case "==":
		return registry.ValuesEqual(a, b), nil
	case "!=":
		return !registry.ValuesEqual(a, b), nil
	case "<":
		return registry.ValuesLess(a, b)
	case ">":
		return registry.ValuesLess(b, a)
	case "<=":
		gt, err := registry.ValuesLess(b, a)
		if err != nil {
			return false, err
		}
		return !gt, nil
	case ">=":
		lt, err := registry.ValuesLess(a, b)
		if err != nil {
			return false, err
		}
		return !lt, nil
	}
	return false, pyerr.New(pyerr.TypeError, "unsupported comparison %q", op)
}
