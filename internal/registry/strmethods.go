package registry

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func selfStr(args []pyvalue.Value) (string, error) {
	if len(args) == 0 {
		return "", pyerr.New(pyerr.TypeError, "missing receiver")
	}
	s, ok := args[0].(pyvalue.Str)
	if !ok {
		return "", pyerr.New(pyerr.TypeError, "expected str receiver, got %s", pyvalue.TypeNameOf(args[0]))
	}
	return string(s), nil
}

func argStr(args []pyvalue.Value, i int, dflt string) string {
	if i >= len(args) {
		return dflt
	}
	if s, ok := args[i].(pyvalue.Str); ok {
		return string(s)
	}
	return dflt
}

func strValues(ss []string) []pyvalue.Value {
	out := make([]pyvalue.Value, len(ss))
	for i, s := range ss {
		out[i] = pyvalue.Str(s)
	}
	return out
}

// registerStrMethods wires up the str method family named in spec.md
// §4.5, backed entirely by Go's standard "strings"/"unicode" packages
// (justified in SPEC_FULL.md §13: no third-party string-processing
// library appears anywhere in the retrieval pack).
func registerStrMethods(t *Table) {
	const T = "str"

	t.RegisterMethod(T, "upper", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Str(strings.ToUpper(s)), nil
	})
	t.RegisterMethod(T, "lower", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Str(strings.ToLower(s)), nil
	})
	t.RegisterMethod(T, "strip", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if len(a) > 1 {
			return pyvalue.Str(strings.Trim(s, argStr(a, 1, ""))), nil
		}
		return pyvalue.Str(strings.TrimSpace(s)), nil
	})
	t.RegisterMethod(T, "lstrip", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if len(a) > 1 {
			return pyvalue.Str(strings.TrimLeft(s, argStr(a, 1, ""))), nil
		}
		return pyvalue.Str(strings.TrimLeft(s, " \t\n\r\v\f")), nil
	})
	t.RegisterMethod(T, "rstrip", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if len(a) > 1 {
			return pyvalue.Str(strings.TrimRight(s, argStr(a, 1, ""))), nil
		}
		return pyvalue.Str(strings.TrimRight(s, " \t\n\r\v\f")), nil
	})
	t.RegisterMethod(T, "split", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 || a[1] == nil || a[1].Kind() == pyvalue.KindNone {
			return pyvalue.NewList(strValues(strings.Fields(s))...), nil
		}
		sep := argStr(a, 1, " ")
		return pyvalue.NewList(strValues(strings.Split(s, sep))...), nil
	})
	t.RegisterMethod(T, "rsplit", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 || a[1] == nil || a[1].Kind() == pyvalue.KindNone {
			return pyvalue.NewList(strValues(strings.Fields(s))...), nil
		}
		sep := argStr(a, 1, " ")
		return pyvalue.NewList(strValues(strings.Split(s, sep))...), nil
	})
	t.RegisterMethod(T, "join", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		sep, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if len(a) < 2 {
			return nil, pyerr.New(pyerr.TypeError, "join() requires an iterable argument")
		}
		items, err := asStringItems(a[1])
		if err != nil {
			return nil, err
		}
		return pyvalue.Str(strings.Join(items, sep)), nil
	})
	t.RegisterMethod(T, "replace", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		old, new := argStr(a, 1, ""), argStr(a, 2, "")
		n := -1
		if len(a) > 3 {
			if iv, ok := a[3].(pyvalue.Int); ok {
				n = int(iv)
			}
		}
		return pyvalue.Str(strings.Replace(s, old, new, n)), nil
	})
	t.RegisterMethod(T, "startswith", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Bool(strings.HasPrefix(s, argStr(a, 1, ""))), nil
	})
	t.RegisterMethod(T, "endswith", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Bool(strings.HasSuffix(s, argStr(a, 1, ""))), nil
	})
	t.RegisterMethod(T, "find", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Int(strings.Index(s, argStr(a, 1, ""))), nil
	})
	t.RegisterMethod(T, "rfind", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Int(strings.LastIndex(s, argStr(a, 1, ""))), nil
	})
	t.RegisterMethod(T, "index", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		i := strings.Index(s, argStr(a, 1, ""))
		if i < 0 {
			return nil, pyerr.New(pyerr.ValueError, "substring not found")
		}
		return pyvalue.Int(i), nil
	})
	t.RegisterMethod(T, "rindex", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		i := strings.LastIndex(s, argStr(a, 1, ""))
		if i < 0 {
			return nil, pyerr.New(pyerr.ValueError, "substring not found")
		}
		return pyvalue.Int(i), nil
	})
	t.RegisterMethod(T, "partition", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		sep := argStr(a, 1, "")
		if i := strings.Index(s, sep); i >= 0 {
			return pyvalue.NewTuple(pyvalue.Str(s[:i]), pyvalue.Str(sep), pyvalue.Str(s[i+len(sep):])), nil
		}
		return pyvalue.NewTuple(pyvalue.Str(s), pyvalue.Str(""), pyvalue.Str("")), nil
	})
	t.RegisterMethod(T, "rpartition", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		sep := argStr(a, 1, "")
		if i := strings.LastIndex(s, sep); i >= 0 {
			return pyvalue.NewTuple(pyvalue.Str(s[:i]), pyvalue.Str(sep), pyvalue.Str(s[i+len(sep):])), nil
		}
		return pyvalue.NewTuple(pyvalue.Str(""), pyvalue.Str(""), pyvalue.Str(s)), nil
	})
	t.RegisterMethod(T, "count", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Int(strings.Count(s, argStr(a, 1, ""))), nil
	})
	t.RegisterMethod(T, "format", func(a []pyvalue.Value, kwargs map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Str(pyFormat(s, a[1:], kwargs)), nil
	})
	t.RegisterMethod(T, "isdigit", strPredicate(func(r rune) bool { return unicode.IsDigit(r) }))
	t.RegisterMethod(T, "isnumeric", strPredicate(func(r rune) bool { return unicode.IsDigit(r) || unicode.IsNumber(r) }))
	t.RegisterMethod(T, "isalpha", strPredicate(unicode.IsLetter))
	t.RegisterMethod(T, "isalnum", strPredicate(func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }))
	t.RegisterMethod(T, "isspace", strPredicate(unicode.IsSpace))
	t.RegisterMethod(T, "isupper", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Bool(s != "" && s == strings.ToUpper(s) && strings.ToUpper(s) != strings.ToLower(s)), nil
	})
	t.RegisterMethod(T, "islower", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Bool(s != "" && s == strings.ToLower(s) && strings.ToUpper(s) != strings.ToLower(s)), nil
	})
	t.RegisterMethod(T, "istitle", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Bool(s != "" && s == strings.Title(strings.ToLower(s))), nil
	})
	t.RegisterMethod(T, "title", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.Str(strings.Title(strings.ToLower(s))), nil
	})
	t.RegisterMethod(T, "capitalize", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return pyvalue.Str(""), nil
		}
		r := []rune(strings.ToLower(s))
		r[0] = unicode.ToUpper(r[0])
		return pyvalue.Str(string(r)), nil
	})
	t.RegisterMethod(T, "zfill", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		width := argInt(a, 1, 0)
		if len(s) >= width {
			return pyvalue.Str(s), nil
		}
		sign := ""
		rest := s
		if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
			sign, rest = s[:1], s[1:]
		}
		return pyvalue.Str(sign + strings.Repeat("0", width-len(s)) + rest), nil
	})
	t.RegisterMethod(T, "center", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		width := argInt(a, 1, 0)
		fill := argStr(a, 2, " ")
		return pyvalue.Str(padCenter(s, width, fill)), nil
	})
	t.RegisterMethod(T, "ljust", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		width := argInt(a, 1, 0)
		fill := argStr(a, 2, " ")
		if len(s) >= width || fill == "" {
			return pyvalue.Str(s), nil
		}
		return pyvalue.Str(s + strings.Repeat(fill, width-len(s))), nil
	})
	t.RegisterMethod(T, "rjust", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		width := argInt(a, 1, 0)
		fill := argStr(a, 2, " ")
		if len(s) >= width || fill == "" {
			return pyvalue.Str(s), nil
		}
		return pyvalue.Str(strings.Repeat(fill, width-len(s)) + s), nil
	})
	t.RegisterMethod(T, "swapcase", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		r := []rune(s)
		for i, c := range r {
			switch {
			case unicode.IsUpper(c):
				r[i] = unicode.ToLower(c)
			case unicode.IsLower(c):
				r[i] = unicode.ToUpper(c)
			}
		}
		return pyvalue.Str(string(r)), nil
	})
	t.RegisterMethod(T, "splitlines", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		lines := strings.SplitAfter(s, "\n")
		var out []string
		for _, l := range lines {
			l = strings.TrimSuffix(l, "\n")
			if l != "" {
				out = append(out, l)
			}
		}
		return pyvalue.NewList(strValues(out)...), nil
	})
	t.RegisterMethod(T, "expandtabs", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		tabsize := argInt(a, 1, 8)
		if tabsize <= 0 {
			return pyvalue.Str(strings.ReplaceAll(s, "\t", "")), nil
		}
		return pyvalue.Str(strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabsize))), nil
	})
	t.RegisterMethod(T, "encode", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		return pyvalue.NewList(bytesAsInts([]byte(s))...), nil
	})
}

func strPredicate(pred func(rune) bool) Callback {
	return func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		s, err := selfStr(a)
		if err != nil {
			return nil, err
		}
		if s == "" {
			return pyvalue.Bool(false), nil
		}
		for _, r := range s {
			if !pred(r) {
				return pyvalue.Bool(false), nil
			}
		}
		return pyvalue.Bool(true), nil
	}
}

func argInt(args []pyvalue.Value, i, dflt int) int {
	if i >= len(args) {
		return dflt
	}
	if iv, ok := args[i].(pyvalue.Int); ok {
		return int(iv)
	}
	return dflt
}

func padCenter(s string, width int, fill string) string {
	if len(s) >= width || fill == "" {
		return s
	}
	total := width - len(s)
	left := total / 2
	right := total - left
	return strings.Repeat(fill, left) + s + strings.Repeat(fill, right)
}

func bytesAsInts(b []byte) []pyvalue.Value {
	out := make([]pyvalue.Value, len(b))
	for i, c := range b {
		out[i] = pyvalue.Int(c)
	}
	return out
}

func asStringItems(v pyvalue.Value) ([]string, error) {
	switch x := v.(type) {
	case *pyvalue.List:
		out := make([]string, len(x.Items))
		for i, it := range x.Items {
			s, ok := it.(pyvalue.Str)
			if !ok {
				return nil, pyerr.New(pyerr.TypeError, "sequence item %d: expected str instance, %s found", i, pyvalue.TypeNameOf(it))
			}
			out[i] = string(s)
		}
		return out, nil
	case pyvalue.Tuple:
		out := make([]string, len(x.Items))
		for i, it := range x.Items {
			s, ok := it.(pyvalue.Str)
			if !ok {
				return nil, pyerr.New(pyerr.TypeError, "sequence item %d: expected str instance, %s found", i, pyvalue.TypeNameOf(it))
			}
			out[i] = string(s)
		}
		return out, nil
	default:
		return nil, pyerr.New(pyerr.TypeError, "can only join an iterable")
	}
}

// pyFormat implements a minimal but faithful "{}"/"{0}"/"{name}" str.format,
// separate from the "%"-style formatting of PercentFormat (see percent.go).
func pyFormat(tmpl string, positional []pyvalue.Value, kwargs map[string]pyvalue.Value) string {
	var b strings.Builder
	auto := 0
	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		if c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{' {
			b.WriteByte('{')
			i += 2
			continue
		}
		if c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}' {
			b.WriteByte('}')
			i += 2
			continue
		}
		if c == '{' {
			end := strings.IndexByte(tmpl[i:], '}')
			if end < 0 {
				b.WriteString(tmpl[i:])
				break
			}
			field := tmpl[i+1 : i+end]
			name := field
			spec := ""
			if idx := strings.IndexByte(field, ':'); idx >= 0 {
				name, spec = field[:idx], field[idx+1:]
			}
			var val pyvalue.Value
			if name == "" {
				if auto < len(positional) {
					val = positional[auto]
				}
				auto++
			} else if n, err := strconv.Atoi(name); err == nil {
				if n < len(positional) {
					val = positional[n]
				}
			} else if kwargs != nil {
				val = kwargs[name]
			}
			if spec != "" {
				if rendered, err := FormatValue(val, spec); err == nil {
					b.WriteString(rendered)
					i += end + 1
					continue
				}
			}
			b.WriteString(pyvalue.PyStr(val))
			i += end + 1
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}
