// Package registry implements the method & builtin registry of spec.md
// §4.5: dispatch of methods on built-in types and free builtins, plus the
// post-dispatch request (signal) protocol that lets a builtin callback
// ask the evaluator to do something only it can do — call back into user
// code, mutate a receiver, obtain a capability-gated resource.
package registry

import "github.com/ivarvong/pyex-sub002/internal/pyvalue"

// Request is a post-dispatch request returned by a Callback instead of a
// plain value, per the table in spec.md §4.5.
type Request interface{ isRequest() }

// Outcome is what a Callback returns: either a plain pyvalue.Value (the
// callback fully handled the call itself) or a Request the evaluator must
// service before the call can complete.
type Outcome = any

// ExceptionReq asks the evaluator to raise a Python exception.
type ExceptionReq struct {
	Kind    string
	Message string
}

func (ExceptionReq) isRequest() {}

// PrintCallReq asks the evaluator to format and emit args through the
// event log (print()).
type PrintCallReq struct {
	Args []pyvalue.Value
	Sep  string
	End  string
}

func (PrintCallReq) isRequest() {}

// DunderCallReq asks the evaluator to look up Name on Inst (instance or
// class) and call it with Args.
type DunderCallReq struct {
	Inst pyvalue.Value
	Name string
	Args []pyvalue.Value
}

func (DunderCallReq) isRequest() {}

// IterSumReq/IterToListReq/IterToTupleReq/IterToSetReq ask the evaluator
// to exhaust Iterable, driving any instance __next__ calls itself.
type IterSumReq struct{ Iterable pyvalue.Value }
type IterToListReq struct{ Iterable pyvalue.Value }
type IterToTupleReq struct{ Iterable pyvalue.Value }
type IterToSetReq struct{ Iterable pyvalue.Value }

func (IterSumReq) isRequest()     {}
func (IterToListReq) isRequest()  {}
func (IterToTupleReq) isRequest() {}
func (IterToSetReq) isRequest()   {}

// IterAllReq/IterAnyReq ask the evaluator to exhaust Iterable (driving
// __iter__/__next__ for an Instance) and report the truthiness-quantified
// result, for all()/any() over an iterable the registry can't slice directly.
type IterAllReq struct{ Iterable pyvalue.Value }
type IterAnyReq struct{ Iterable pyvalue.Value }

func (IterAllReq) isRequest() {}
func (IterAnyReq) isRequest() {}

// SortCallReq/IterSortedReq ask the evaluator to sort Items (or exhaust
// then sort Iterable) using Key, a possibly-user-defined function.
type SortCallReq struct {
	Items   []pyvalue.Value
	Key     pyvalue.Value // nil means natural ordering
	Reverse bool
}
type IterSortedReq struct {
	Iterable pyvalue.Value
	Key      pyvalue.Value
	Reverse  bool
}

func (SortCallReq) isRequest()    {}
func (IterSortedReq) isRequest()  {}

// MinCallReq/MaxCallReq/MapCallReq/FilterCallReq ask the evaluator to run
// a higher-order operation whose predicate/key may be user Python.
type MinCallReq struct {
	Items []pyvalue.Value
	Key   pyvalue.Value
}
type MaxCallReq struct {
	Items []pyvalue.Value
	Key   pyvalue.Value
}
type MapCallReq struct {
	Fn        pyvalue.Value
	Iterables []pyvalue.Value
}
type FilterCallReq struct {
	Fn       pyvalue.Value // nil means filter by truthiness
	Iterable pyvalue.Value
}

func (MinCallReq) isRequest()    {}
func (MaxCallReq) isRequest()    {}
func (MapCallReq) isRequest()    {}
func (FilterCallReq) isRequest() {}

// MakeIterReq/IterInstanceReq ask the evaluator to produce an iterator
// handle (via the context's iterator table).
type MakeIterReq struct{ Items []pyvalue.Value }
type IterInstanceReq struct{ Instance *pyvalue.Instance }

func (MakeIterReq) isRequest()     {}
func (IterInstanceReq) isRequest() {}

// IterNextReq/IterNextDefaultReq ask the evaluator to advance the
// iterator at Handle, with StopIteration or Default semantics.
type IterNextReq struct{ Handle int }
type IterNextDefaultReq struct {
	Handle  int
	Default pyvalue.Value
}

func (IterNextReq) isRequest()        {}
func (IterNextDefaultReq) isRequest() {}

// MutateReq carries a replacement receiver (NewSelf) and a call result
// (Return). The evaluator returns Return as the call's result; NewSelf is
// not written back anywhere. No callback in this repository returns it:
// list.append and the other mutating methods change their pointer-typed
// receiver in place.
type MutateReq struct {
	NewSelf pyvalue.Value
	Return  pyvalue.Value
}

func (MutateReq) isRequest() {}

// CtxCallReq/IOCallReq ask the evaluator to invoke a Go closure, passing
// it the run's context (the environment is not passed); IOCallReq
// additionally gates the call on Capability.
type CtxCallReq struct {
	Fn func(evalCtx any) (pyvalue.Value, error)
}
type IOCallReq struct {
	Capability string
	Fn         func(evalCtx any) (pyvalue.Value, error)
}

func (CtxCallReq) isRequest() {}
func (IOCallReq) isRequest()  {}

// SuperCallReq asks the evaluator to build a super-proxy for the current
// call frame.
type SuperCallReq struct{}

func (SuperCallReq) isRequest() {}

// OpenFileReq asks the evaluator to open Path through the context's
// capability-gated filesystem backend (spec.md §4.3 "fs" capability).
type OpenFileReq struct {
	Path string
	Mode string
}

func (OpenFileReq) isRequest() {}

// SuspendedReq propagates a cooperative suspension request up through a
// builtin (used when a builtin itself needs to check for suspension,
// rare but kept for protocol completeness).
type SuspendedReq struct{}

func (SuspendedReq) isRequest() {}
