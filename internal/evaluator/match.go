package evaluator

import (
	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyenv"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
	"github.com/ivarvong/pyex-sub002/internal/registry"
)

// evalMatch implements match/case over spec.md §4.4's pattern variants,
// trying each case in order and running the first whose pattern matches
// and whose guard (if any) is truthy.
func (it *Interpreter) evalMatch(n *ast.Match, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (*pyenv.Env, Signal) {
	subject, nenv, sig := it.evalExpr(n.Subject, env, ctx, gen)
	if !sig.IsNone() {
		return nenv, sig
	}
	env = nenv

	for _, c := range n.Cases {
		caseEnv := env.PushScope()
		matched, nenv2, msig := it.matchPattern(c.Pattern, subject, caseEnv, ctx, gen)
		if !msig.IsNone() {
			return nenv2, msig
		}
		if !matched {
			continue
		}
		caseEnv = nenv2
		if c.Guard != nil {
			gv, nenv3, gsig := it.evalExpr(c.Guard, caseEnv, ctx, gen)
			if !gsig.IsNone() {
				return nenv3, gsig
			}
			caseEnv = nenv3
			if !ctx.RecordBranch(pyvalue.Truthy(gv)) {
				continue
			}
		}
		return it.evalBlock(c.Body, caseEnv, ctx, gen)
	}
	return env, Signal{}
}

// matchPattern reports whether subject matches pat, binding any capture
// names into env as a side effect (bindings are discarded by the caller
// if the overall case doesn't match, since caseEnv is a fresh scope).
func (it *Interpreter) matchPattern(pat ast.Pattern, subject pyvalue.Value, env *pyenv.Env, ctx *pycontext.Context, gen genSink) (bool, *pyenv.Env, Signal) {
	switch p := pat.(type) {
	case *ast.CapturePattern:
		if p.Name != "_" {
			env.Put(p.Name, subject)
		}
		return true, env, Signal{}

	case *ast.LiteralPattern:
		lv, nenv, sig := it.evalExpr(p.Value, env, ctx, gen)
		if !sig.IsNone() {
			return false, nenv, sig
		}
		return registry.ValuesEqual(lv, subject), nenv, Signal{}

	case *ast.OrPattern:
		for _, alt := range p.Alternatives {
			matched, nenv, sig := it.matchPattern(alt, subject, env, ctx, gen)
			if !sig.IsNone() {
				return false, nenv, sig
			}
			if matched {
				return true, nenv, Signal{}
			}
		}
		return false, env, Signal{}

	case *ast.SequencePattern:
		var items []pyvalue.Value
		switch x := subject.(type) {
		case *pyvalue.List:
			items = x.Items
		case pyvalue.Tuple:
			items = x.Items
		default:
			return false, env, Signal{}
		}
		if p.StarIdx < 0 {
			if len(items) != len(p.Elts) {
				return false, env, Signal{}
			}
			for i, sub := range p.Elts {
				matched, nenv2, sig2 := it.matchPattern(sub, items[i], env, ctx, gen)
				if !sig2.IsNone() {
					return false, nenv2, sig2
				}
				env = nenv2
				if !matched {
					return false, env, Signal{}
				}
			}
			return true, env, Signal{}
		}
		before := p.StarIdx
		after := len(p.Elts) - p.StarIdx - 1
		if len(items) < before+after {
			return false, env, Signal{}
		}
		for i := 0; i < before; i++ {
			matched, nenv2, sig2 := it.matchPattern(p.Elts[i], items[i], env, ctx, gen)
			if !sig2.IsNone() {
				return false, nenv2, sig2
			}
			env = nenv2
			if !matched {
				return false, env, Signal{}
			}
		}
		if p.StarName != "" {
			mid := append([]pyvalue.Value{}, items[before:len(items)-after]...)
			env.Put(p.StarName, pyvalue.NewList(mid...))
		}
		for i := 0; i < after; i++ {
			matched, nenv2, sig2 := it.matchPattern(p.Elts[p.StarIdx+1+i], items[len(items)-after+i], env, ctx, gen)
			if !sig2.IsNone() {
				return false, nenv2, sig2
			}
			env = nenv2
			if !matched {
				return false, env, Signal{}
			}
		}
		return true, env, Signal{}

	case *ast.MappingPattern:
		d, ok := subject.(*pyvalue.Dict)
		if !ok {
			return false, env, Signal{}
		}
		matchedKeys := map[string]bool{}
		for i, ke := range p.Keys {
			kv, nenv, sig := it.evalExpr(ke, env, ctx, gen)
			if !sig.IsNone() {
				return false, nenv, sig
			}
			env = nenv
			v, ok := d.Get(kv)
			if !ok {
				return false, env, Signal{}
			}
			matched, nenv2, sig2 := it.matchPattern(p.Values[i], v, env, ctx, gen)
			if !sig2.IsNone() {
				return false, nenv2, sig2
			}
			env = nenv2
			if !matched {
				return false, env, Signal{}
			}
			if ks, ok := kv.(pyvalue.Str); ok {
				matchedKeys[string(ks)] = true
			}
		}
		if p.RestName != "" {
			rest := pyvalue.NewDict()
			for _, kv := range d.Items() {
				if ks, ok := kv.Items[0].(pyvalue.Str); ok && matchedKeys[string(ks)] {
					continue
				}
				rest.Set(kv.Items[0], kv.Items[1])
			}
			env.Put(p.RestName, rest)
		}
		return true, env, Signal{}

	case *ast.ClassPattern:
		cv, nenv, sig := it.evalExpr(p.Class, env, ctx, gen)
		if !sig.IsNone() {
			return false, nenv, sig
		}
		env = nenv
		cls, ok := cv.(*pyvalue.Class)
		if !ok {
			return false, env, Signal{}
		}
		inst, ok := subject.(*pyvalue.Instance)
		if !ok || !inst.Class.IsSubclassOf(cls) {
			return false, env, Signal{}
		}
		for i, sub := range p.Positional {
			fieldName := instancePositionalField(inst, i)
			v, ok := inst.Attrs[fieldName]
			if !ok {
				return false, env, Signal{}
			}
			matched, nenv2, sig2 := it.matchPattern(sub, v, env, ctx, gen)
			if !sig2.IsNone() {
				return false, nenv2, sig2
			}
			env = nenv2
			if !matched {
				return false, env, Signal{}
			}
		}
		for name, sub := range p.Keyword {
			v, ok := inst.Attrs[name]
			if !ok {
				return false, env, Signal{}
			}
			matched, nenv2, sig2 := it.matchPattern(sub, v, env, ctx, gen)
			if !sig2.IsNone() {
				return false, nenv2, sig2
			}
			env = nenv2
			if !matched {
				return false, env, Signal{}
			}
		}
		return true, env, Signal{}

	default:
		return false, env, Signal{}
	}
}

// instancePositionalField maps a ClassPattern positional index to an
// attribute name via the class's __match_args__ tuple if one is defined,
// falling back to attribute declaration order.
func instancePositionalField(inst *pyvalue.Instance, i int) string {
	if v, _, ok := inst.Class.Lookup("__match_args__"); ok {
		if t, ok := v.(pyvalue.Tuple); ok && i < len(t.Items) {
			if s, ok := t.Items[i].(pyvalue.Str); ok {
				return string(s)
			}
		}
	}
	if i < len(inst.Class.AttrOrder) {
		return inst.Class.AttrOrder[i]
	}
	return ""
}
