package registry

import (
	"strings"

	"github.com/ivarvong/pyex-sub002/internal/pycontext"
	"github.com/ivarvong/pyex-sub002/internal/pyerr"
	"github.com/ivarvong/pyex-sub002/internal/pyvalue"
)

func selfFile(args []pyvalue.Value) (pyvalue.File, error) {
	f, ok := args[0].(pyvalue.File)
	if !ok {
		return pyvalue.File{}, pyerr.New(pyerr.TypeError, "expected a file object")
	}
	return f, nil
}

// registerFileMethods wires the handful of methods a file object of
// spec.md §3/§4.3 exposes, all gated on the "fs" capability via IOCallReq
// since only the evaluator can reach the context's file-handle table.
func registerFileMethods(t *Table) {
	t.RegisterMethod("file", "read", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		f, err := selfFile(a)
		if err != nil {
			return nil, err
		}
		return IOCallReq{Capability: "fs", Fn: func(evalCtx any) (pyvalue.Value, error) {
			ctx := evalCtx.(*pycontext.Context)
			content, err := ctx.Read(f.Handle)
			if err != nil {
				return nil, err
			}
			return pyvalue.Str(content), nil
		}}, nil
	})
	t.RegisterMethod("file", "readline", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		f, err := selfFile(a)
		if err != nil {
			return nil, err
		}
		return IOCallReq{Capability: "fs", Fn: func(evalCtx any) (pyvalue.Value, error) {
			ctx := evalCtx.(*pycontext.Context)
			content, err := ctx.Read(f.Handle)
			if err != nil {
				return nil, err
			}
			if i := strings.IndexByte(content, '\n'); i >= 0 {
				return pyvalue.Str(content[:i+1]), nil
			}
			return pyvalue.Str(content), nil
		}}, nil
	})
	t.RegisterMethod("file", "readlines", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		f, err := selfFile(a)
		if err != nil {
			return nil, err
		}
		return IOCallReq{Capability: "fs", Fn: func(evalCtx any) (pyvalue.Value, error) {
			ctx := evalCtx.(*pycontext.Context)
			content, err := ctx.Read(f.Handle)
			if err != nil {
				return nil, err
			}
			lines := strings.SplitAfter(content, "\n")
			if len(lines) > 0 && lines[len(lines)-1] == "" {
				lines = lines[:len(lines)-1]
			}
			return pyvalue.NewList(strValues(lines)...), nil
		}}, nil
	})
	t.RegisterMethod("file", "write", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		f, err := selfFile(a)
		if err != nil {
			return nil, err
		}
		s, ok := a[1].(pyvalue.Str)
		if !ok {
			return nil, pyerr.New(pyerr.TypeError, "write() argument must be str")
		}
		return IOCallReq{Capability: "fs", Fn: func(evalCtx any) (pyvalue.Value, error) {
			ctx := evalCtx.(*pycontext.Context)
			n, err := ctx.Write(f.Handle, string(s))
			if err != nil {
				return nil, err
			}
			return pyvalue.Int(n), nil
		}}, nil
	})
	t.RegisterMethod("file", "close", func(a []pyvalue.Value, _ map[string]pyvalue.Value) (Outcome, error) {
		f, err := selfFile(a)
		if err != nil {
			return nil, err
		}
		return IOCallReq{Capability: "fs", Fn: func(evalCtx any) (pyvalue.Value, error) {
			ctx := evalCtx.(*pycontext.Context)
			if err := ctx.Close(f.Handle); err != nil {
				return nil, err
			}
			return pyvalue.NoneValue, nil
		}}, nil
	})
}
