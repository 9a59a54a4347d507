package registry

import (
	"strconv"
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// PercentFormat implements the "%"-style formatting of spec.md §4.5:
// %s %r %d %i %f %e %E %g %G %x %o, with flags - + 0 space #, width, and
// precision. args is consumed left to right, one value per directive
// (except a bare "%s" against a single non-tuple right-hand operand,
// which the evaluator already normalizes into a one-element slice).
func PercentFormat(tmpl string, args []pyvalue.Value) (string, error) {
	var b strings.Builder
	ai := 0
	next := func() (pyvalue.Value, error) {
		if ai >= len(args) {
			return nil, pyerr.New(pyerr.TypeError, "not enough arguments for format string")
		}
		v := args[ai]
		ai++
		return v, nil
	}
	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		if c != '%' {
			b.WriteByte(c)
			i++
			continue
		}
		if i+1 < len(tmpl) && tmpl[i+1] == '%' {
			b.WriteByte('%')
			i += 2
			continue
		}
		spec, consumed, err := parsePercentSpec(tmpl[i:])
		if err != nil {
			return "", err
		}
		i += consumed
		v, err := next()
		if err != nil {
			return "", err
		}
		out, err := applyPercentSpec(spec, v)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
	}
	return b.String(), nil
}

type percentSpec struct {
	Flags     string
	Width     int
	HasWidth  bool
	Precision int
	HasPrec   bool
	Verb      byte
}

func parsePercentSpec(s string) (percentSpec, int, error) {
	// s starts with '%'
	i := 1
	var spec percentSpec
	for i < len(s) && strings.ContainsRune("-+0 #", rune(s[i])) {
		spec.Flags += string(s[i])
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > start {
		spec.Width, _ = strconv.Atoi(s[start:i])
		spec.HasWidth = true
	}
	if i < len(s) && s[i] == '.' {
		i++
		start = i
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
		}
		spec.Precision, _ = strconv.Atoi(s[start:i])
		spec.HasPrec = true
	}
	if i >= len(s) {
		return spec, i, pyerr.New(pyerr.ValueError, "incomplete format")
	}
	spec.Verb = s[i]
	i++
	return spec, i, nil
}

func applyPercentSpec(spec percentSpec, v pyvalue.Value) (string, error) {
	var body string
	switch spec.Verb {
	case 's':
		body = pyvalue.PyStr(v)
		if spec.HasPrec && spec.Precision < len(body) {
			body = body[:spec.Precision]
		}
	case 'r':
		body = pyvalue.PyRepr(v)
		if spec.HasPrec && spec.Precision < len(body) {
			body = body[:spec.Precision]
		}
	case 'd', 'i':
		n, ok := asIntForFormat(v)
		if !ok {
			return "", pyerr.New(pyerr.TypeError, "%%d format: a number is required, not %s", pyvalue.TypeNameOf(v))
		}
		body = strconv.FormatInt(n, 10)
		body = applySignFlags(body, n >= 0, spec.Flags)
	case 'x':
		n, ok := asIntForFormat(v)
		if !ok {
			return "", pyerr.New(pyerr.TypeError, "%%x format: an integer is required, not %s", pyvalue.TypeNameOf(v))
		}
		body = strconv.FormatInt(n, 16)
		if strings.ContainsRune(spec.Flags, '#') {
			body = "0x" + body
		}
	case 'o':
		n, ok := asIntForFormat(v)
		if !ok {
			return "", pyerr.New(pyerr.TypeError, "%%o format: an integer is required, not %s", pyvalue.TypeNameOf(v))
		}
		body = strconv.FormatInt(n, 8)
		if strings.ContainsRune(spec.Flags, '#') {
			body = "0o" + body
		}
	case 'f', 'F', 'e', 'E', 'g', 'G':
		f, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.TypeError, "%%%c format: a number is required, not %s", spec.Verb, pyvalue.TypeNameOf(v))
		}
		prec := 6
		if spec.HasPrec {
			prec = spec.Precision
		}
		verb := spec.Verb
		if verb == 'F' {
			verb = 'f'
		}
		body = strconv.FormatFloat(f, byte(verb), prec, 64)
		if spec.Verb == 'F' {
			body = strings.ToUpper(body)
		}
		body = applySignFlags(body, f >= 0, spec.Flags)
	default:
		return "", pyerr.New(pyerr.ValueError, "unsupported format character '%c'", spec.Verb)
	}
	return padPercent(body, spec), nil
}

func applySignFlags(body string, nonNegative bool, flags string) string {
	if !nonNegative {
		return body // strconv already wrote the '-'
	}
	if strings.ContainsRune(flags, '+') {
		return "+" + body
	}
	if strings.ContainsRune(flags, ' ') {
		return " " + body
	}
	return body
}

func padPercent(body string, spec percentSpec) string {
	if !spec.HasWidth || len(body) >= spec.Width {
		return body
	}
	pad := spec.Width - len(body)
	if strings.ContainsRune(spec.Flags, '-') {
		return body + strings.Repeat(" ", pad)
	}
	if strings.ContainsRune(spec.Flags, '0') {
		sign := ""
		rest := body
		if len(body) > 0 && (body[0] == '+' || body[0] == '-') {
			sign, rest = body[:1], body[1:]
		}
		return sign + strings.Repeat("0", pad) + rest
	}
	return strings.Repeat(" ", pad) + body
}

func asIntForFormat(v pyvalue.Value) (int64, bool) {
	switch x := v.(type) {
	case pyvalue.Int:
		return int64(x), true
	case pyvalue.Bool:
		if x {
			return 1, true
		}
		return 0, true
	case pyvalue.Float:
		return int64(x), true
	default:
		return 0, false
	}
}
