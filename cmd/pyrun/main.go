// Command pyrun is a minimal smoke-test harness for the interpreter
// kernel, not a product CLI (SPEC_FULL.md §10.3): it runs one of a small
// set of embedded demo programs built directly from the ast package,
// since this repo ships no Python source parser (spec.md §4.7 — "the
// parser is external"). A host embedding this interpreter supplies its
// own parser via pycontext.Options.Parser; pyrun exists only to exercise
// Run end to end.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ivarvong/pyex-sub002/internal/ast"
	"github.com/ivarvong/pyex-sub002/internal/evaluator"
	"github.com/ivarvong/pyex-sub002/internal/pycontext"
)

func demoArithmetic() *ast.Module {
	return &ast.Module{Body: []ast.Stmt{
		&ast.ExprStmt{X: &ast.Call{
			Fn: &ast.Name{Ident: "print"},
			Args: []ast.Arg{{Value: &ast.BinOp{
				Op: "+",
				X:  &ast.IntLit{Value: 2},
				Y:  &ast.IntLit{Value: 3},
			}}},
		}},
	}}
}

func demoFibonacci() *ast.Module {
	// def f():
	//   x = [0, 1]
	//   while True:
	//     x[0], x[1] = x[1], x[0] + x[1]
	//     yield x[0]
	// print(list(iter(f()))[:7])
	fibBody := []ast.Stmt{
		&ast.Assign{
			Targets: []ast.Target{&ast.NameTarget{Ident: "x"}},
			Value:   &ast.ListLit{Elts: []ast.Expr{&ast.IntLit{Value: 0}, &ast.IntLit{Value: 1}}},
		},
		&ast.While{
			Cond: &ast.BoolLit{Value: true},
			Body: []ast.Stmt{
				&ast.Assign{
					Targets: []ast.Target{&ast.TupleTarget{Elts: []ast.Target{
						&ast.SubscriptTarget{Obj: &ast.Name{Ident: "x"}, Index: &ast.IntLit{Value: 0}},
						&ast.SubscriptTarget{Obj: &ast.Name{Ident: "x"}, Index: &ast.IntLit{Value: 1}},
					}}},
					Value: &ast.TupleLit{Elts: []ast.Expr{
						&ast.Subscript{Obj: &ast.Name{Ident: "x"}, Index: &ast.IntLit{Value: 1}},
						&ast.BinOp{Op: "+",
							X: &ast.Subscript{Obj: &ast.Name{Ident: "x"}, Index: &ast.IntLit{Value: 0}},
							Y: &ast.Subscript{Obj: &ast.Name{Ident: "x"}, Index: &ast.IntLit{Value: 1}},
						},
					}},
				},
				&ast.ExprStmt{X: &ast.Yield{Value: &ast.Subscript{Obj: &ast.Name{Ident: "x"}, Index: &ast.IntLit{Value: 0}}}},
			},
		},
	}
	return &ast.Module{Body: []ast.Stmt{
		&ast.FuncDef{Name: "f", Body: fibBody},
		&ast.ExprStmt{X: &ast.Call{
			Fn: &ast.Name{Ident: "print"},
			Args: []ast.Arg{{Value: &ast.Subscript{
				Obj: &ast.Call{Fn: &ast.Name{Ident: "list"}, Args: []ast.Arg{{Value: &ast.Call{
					Fn:   &ast.Name{Ident: "iter"},
					Args: []ast.Arg{{Value: &ast.Call{Fn: &ast.Name{Ident: "f"}}}},
				}}}},
				Index: &ast.Slice{Hi: &ast.IntLit{Value: 7}},
			}}},
		}},
	}}
}

var demos = map[string]func() *ast.Module{
	"arithmetic": demoArithmetic,
	"fibonacci":  demoFibonacci,
}

func main() {
	demoName := flag.String("demo", "arithmetic", "which embedded demo program to run (arithmetic, fibonacci)")
	allowFS := flag.Bool("allow-fs", false, "grant the run filesystem capability")
	allowNetwork := flag.Bool("allow-network", false, "grant the run network capability")
	timeoutMS := flag.Int64("timeout-ms", 0, "compute budget in milliseconds (0 = unlimited)")
	flag.Parse()

	build, ok := demos[*demoName]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown demo %q (want one of: arithmetic, fibonacci)\n", *demoName)
		os.Exit(2)
	}

	ctx := pycontext.New(pycontext.Options{
		AllowFilesystem: *allowFS,
		AllowNetwork:    *allowNetwork,
		TimeoutMS:       *timeoutMS,
	})
	it := evaluator.New()
	if err := it.ConstructionIssues(); err != nil {
		fmt.Fprintf(os.Stderr, "registry construction issues: %s\n", err.Error())
	}

	result, _, err := it.Run(build(), ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
	fmt.Printf("result: %s\n", result.TypeName())
}
