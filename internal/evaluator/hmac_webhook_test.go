package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"

	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
)

// TestHMACWebhookConformance builds the AST for testdata/hmac_webhook.txtar's
// webhook.py by hand (this repo ships no Python source parser, §4.7) and
// checks its printed output against the archive's expected.txt, exercising
// the hmac/hashlib stdlib modules end to end (SPEC_FULL.md §12 scenario 3).
func TestHMACWebhookConformance(t *testing.T) {
	arc, err := txtar.ParseFile("testdata/hmac_webhook.txtar")
	require.NoError(t, err)
	var expected string
	for _, f := range arc.Files {
		if f.Name == "expected.txt" {
			expected = string(f.Data)
		}
	}
	require.NotEmpty(t, expected)

	hmacNewCall := func(secret, payload ast.Expr) ast.Expr {
		return &ast.Call{
			Fn: &ast.GetAttr{Obj: &ast.Name{Ident: "hmac"}, Attr: "new"},
			Args: []ast.Arg{
				{Value: secret},
				{Value: payload},
				{Value: &ast.GetAttr{Obj: &ast.Name{Ident: "hashlib"}, Attr: "sha256"}},
			},
		}
	}
	hexdigestOf := func(call ast.Expr) ast.Expr {
		return &ast.Call{Fn: &ast.GetAttr{Obj: call, Attr: "hexdigest"}}
	}

	mod := &ast.Module{Body: []ast.Stmt{
		&ast.Import{Module: "hmac"},
		&ast.Import{Module: "hashlib"},
		&ast.FuncDef{
			Name:   "verify",
			Params: []ast.Param{{Name: "secret"}, {Name: "payload"}, {Name: "signature"}},
			Body: []ast.Stmt{
				&ast.Assign{
					Targets: []ast.Target{&ast.NameTarget{Ident: "expected"}},
					Value:   hexdigestOf(hmacNewCall(&ast.Name{Ident: "secret"}, &ast.Name{Ident: "payload"})),
				},
				&ast.Return{Value: &ast.Call{
					Fn: &ast.GetAttr{Obj: &ast.Name{Ident: "hmac"}, Attr: "compare_digest"},
					Args: []ast.Arg{
						{Value: &ast.Name{Ident: "expected"}},
						{Value: &ast.Name{Ident: "signature"}},
					},
				}},
			},
		},
		&ast.Assign{
			Targets: []ast.Target{&ast.NameTarget{Ident: "secret"}},
			Value:   &ast.StrLit{Value: "whsec_test"},
		},
		&ast.Assign{
			Targets: []ast.Target{&ast.NameTarget{Ident: "payload"}},
			Value:   &ast.StrLit{Value: `{"id": 1}`},
		},
		&ast.Assign{
			Targets: []ast.Target{&ast.NameTarget{Ident: "signature"}},
			Value:   hexdigestOf(hmacNewCall(&ast.Name{Ident: "secret"}, &ast.Name{Ident: "payload"})),
		},
		&ast.ExprStmt{X: &ast.Call{
			Fn: &ast.Name{Ident: "print"},
			Args: []ast.Arg{{Value: &ast.Call{
				Fn: &ast.Name{Ident: "verify"},
				Args: []ast.Arg{
					{Value: &ast.Name{Ident: "secret"}},
					{Value: &ast.Name{Ident: "payload"}},
					{Value: &ast.Name{Ident: "signature"}},
				},
			}}},
		}},
		&ast.ExprStmt{X: &ast.Call{
			Fn: &ast.Name{Ident: "print"},
			Args: []ast.Arg{{Value: &ast.Call{
				Fn: &ast.Name{Ident: "verify"},
				Args: []ast.Arg{
					{Value: &ast.Name{Ident: "secret"}},
					{Value: &ast.Name{Ident: "payload"}},
					{Value: &ast.StrLit{Value: "deadbeef"}},
				},
			}}},
		}},
	}}

	it := New()
	require.NoError(t, it.ConstructionIssues())
	ctx := pycontext.New(pycontext.Options{})
	_, ctx, err = it.Run(mod, ctx)
	require.NoError(t, err)

	var got string
	for _, line := range ctx.Output() {
		got += line
	}
	require.Equal(t, expected, got)
}
