package evaluator

import (
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
)

// evalFString renders an f-string's literal and expression parts in order,
// applying !r/!s conversions and the {expr:spec} mini-language (spec.md
// §4.5 "Formatting").
func (it *Interpreter) evalFString(n *ast.FString, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (pyvalue.Value, *pyenv.Env, Signal) {
	var b strings.Builder
	for _, part := range n.Parts {
		if part.Expr == nil {
			b.WriteString(part.Literal)
			continue
		}
		v, nenv, sig := it.evalExpr(part.Expr, env, ctx, gen)
		if !sig.IsNone() {
			return nil, nenv, sig
		}
		env = nenv

		var rendered string
		var rsig Signal
		switch part.Conversion {
		case "r":
			rendered, env, rsig = it.pyReprOf(v, env, ctx, gen)
		default:
			rendered, env, rsig = it.pyStrOf(v, env, ctx, gen)
		}
		if !rsig.IsNone() {
			return nil, env, rsig
		}
		if part.FormatSpec != "" {
			spec, nenv2, sig2 := it.resolveFormatSpec(part.FormatSpec, env, ctx, gen)
			if !sig2.IsNone() {
				return nil, nenv2, sig2
			}
			env = nenv2
			if out, err := registry.FormatValue(v, spec); err == nil {
				rendered = out
			}
		}
		b.WriteString(rendered)
	}
	return pyvalue.Str(b.String()), env, Signal{}
}

// resolveFormatSpec substitutes nested {name} sub-parts inside a format
// spec (e.g. {x:{width}}) before the spec string is parsed. The brace
// content is looked up as a plain variable name, not evaluated as an
// expression; an unbound name is replaced with nothing.
func (it *Interpreter) resolveFormatSpec(spec string, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (string, *pyenv.Env, Signal) {
	if !strings.ContainsAny(spec, "{}") {
		return spec, env, Signal{}
	}
	var b strings.Builder
	i := 0
	for i < len(spec) {
		if spec[i] == '{' {
			end := strings.IndexByte(spec[i:], '}')
			if end < 0 {
				b.WriteString(spec[i:])
				break
			}
			name := spec[i+1 : i+end]
			if v, ok := env.Get(name); ok {
				b.WriteString(pyvalue.PyStr(v))
			}
			i += end + 1
			continue
		}
		b.WriteByte(spec[i])
		i++
	}
	return b.String(), env, Signal{}
}
