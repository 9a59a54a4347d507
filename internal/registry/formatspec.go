package registry

import (
	"strconv"
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

// formatSpec is a parsed Format Specification Mini-Language field, the
// subset of Python's `[[fill]align][sign][#][0][width][,][.precision][type]`
// grammar this interpreter supports.
type formatSpec struct {
	fill      rune
	align     rune // 0, '<', '>', '^', '='
	sign      rune // 0, '+', '-', ' '
	width     int
	hasWidth  bool
	comma     bool
	precision int
	hasPrec   bool
	kind      rune // 0, 'd','f','e','g','s','x','X','o','b','%'
}

func parseFormatSpec(spec string) formatSpec {
	var fs formatSpec
	r := []rune(spec)
	i := 0
	if len(r) >= 2 && (r[1] == '<' || r[1] == '>' || r[1] == '^' || r[1] == '=') {
		fs.fill = r[0]
		fs.align = r[1]
		i = 2
	} else if len(r) >= 1 && (r[0] == '<' || r[0] == '>' || r[0] == '^' || r[0] == '=') {
		fs.align = r[0]
		i = 1
	}
	if i < len(r) && (r[i] == '+' || r[i] == '-' || r[i] == ' ') {
		fs.sign = r[i]
		i++
	}
	if i < len(r) && r[i] == '#' {
		i++ // alternate form: accepted and ignored, no prefix is added
	}
	if i < len(r) && r[i] == '0' {
		if fs.align == 0 {
			fs.align = '='
			fs.fill = '0'
		}
		i++
	}
	start := i
	for i < len(r) && r[i] >= '0' && r[i] <= '9' {
		i++
	}
	if i > start {
		fs.width, _ = strconv.Atoi(string(r[start:i]))
		fs.hasWidth = true
	}
	if i < len(r) && r[i] == ',' {
		fs.comma = true
		i++
	}
	if i < len(r) && r[i] == '.' {
		i++
		start = i
		for i < len(r) && r[i] >= '0' && r[i] <= '9' {
			i++
		}
		fs.precision, _ = strconv.Atoi(string(r[start:i]))
		fs.hasPrec = true
	}
	if i < len(r) {
		fs.kind = r[i]
	}
	return fs
}

func (fs formatSpec) pad(s string, numeric bool) string {
	if !fs.hasWidth || len(s) >= fs.width {
		return s
	}
	fill := fs.fill
	if fill == 0 {
		fill = ' '
	}
	align := fs.align
	if align == 0 {
		if numeric {
			align = '>'
		} else {
			align = '<'
		}
	}
	padLen := fs.width - len([]rune(s))
	padding := strings.Repeat(string(fill), padLen)
	switch align {
	case '<':
		return s + padding
	case '>':
		return padding + s
	case '^':
		left := padLen / 2
		right := padLen - left
		return strings.Repeat(string(fill), left) + s + strings.Repeat(string(fill), right)
	case '=':
		if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
			return s[:1] + padding + s[1:]
		}
		return padding + s
	}
	return s
}

func applySign(s string, neg bool, fs formatSpec) string {
	if neg {
		return "-" + s
	}
	switch fs.sign {
	case '+':
		return "+" + s
	case ' ':
		return " " + s
	}
	return s
}

func insertThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s, ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, frac = s[:idx], s[idx:]
	}
	var out []byte
	for i, c := range []byte(intPart) {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	res := string(out) + frac
	if neg {
		res = "-" + res
	}
	return res
}

// FormatValue renders v according to spec, the `{value:spec}` mini-language
// shared by f-strings and str.format.
func FormatValue(v pyvalue.Value, spec string) (string, error) {
	fs := parseFormatSpec(spec)
	switch fs.kind {
	case 'd':
		n, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'd' for non-number")
		}
		i := int64(n)
		neg := i < 0
		if neg {
			i = -i
		}
		s := strconv.FormatInt(i, 10)
		if fs.comma {
			s = insertThousands(s)
		}
		s = applySign(s, neg, fs)
		return fs.pad(s, true), nil
	case 'f', 'F':
		f, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'f' for non-number")
		}
		prec := 6
		if fs.hasPrec {
			prec = fs.precision
		}
		neg := f < 0
		s := strconv.FormatFloat(absF(f), 'f', prec, 64)
		if fs.comma {
			s = insertThousands(s)
		}
		s = applySign(s, neg, fs)
		return fs.pad(s, true), nil
	case 'e', 'E':
		f, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'e' for non-number")
		}
		prec := 6
		if fs.hasPrec {
			prec = fs.precision
		}
		s := strconv.FormatFloat(f, byte(fs.kind), prec, 64)
		return fs.pad(s, true), nil
	case 'g', 'G':
		f, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'g' for non-number")
		}
		s := strconv.FormatFloat(f, byte(fs.kind), -1, 64)
		return fs.pad(s, true), nil
	case '%':
		f, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code '%%' for non-number")
		}
		prec := 6
		if fs.hasPrec {
			prec = fs.precision
		}
		s := strconv.FormatFloat(f*100, 'f', prec, 64) + "%"
		return fs.pad(s, true), nil
	case 'x':
		n, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'x' for non-number")
		}
		return fs.pad(strconv.FormatInt(int64(n), 16), true), nil
	case 'X':
		n, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'X' for non-number")
		}
		return fs.pad(strings.ToUpper(strconv.FormatInt(int64(n), 16)), true), nil
	case 'o':
		n, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'o' for non-number")
		}
		return fs.pad(strconv.FormatInt(int64(n), 8), true), nil
	case 'b':
		n, ok := asFloat(v)
		if !ok {
			return "", pyerr.New(pyerr.ValueError, "unknown format code 'b' for non-number")
		}
		return fs.pad(strconv.FormatInt(int64(n), 2), true), nil
	case 's', 0:
		s := pyvalue.PyStr(v)
		if fs.hasPrec && len(s) > fs.precision {
			s = s[:fs.precision]
		}
		return fs.pad(s, false), nil
	default:
		return "", pyerr.New(pyerr.ValueError, "unknown format code '%c'", fs.kind)
	}
}

func absF(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
