// Package pyerr defines the two error families the interpreter produces:
// guest-visible Python exceptions and host-internal invariant faults.
package pyerr

import "fmt"

// Kind is one of the guest-facing exception kind prefixes from spec.md §6.
type Kind string

const (
	TypeError        Kind = "TypeError"
	ValueError       Kind = "ValueError"
	AttributeError   Kind = "AttributeError"
	KeyError         Kind = "KeyError"
	IndexError       Kind = "IndexError"
	NameError        Kind = "NameError"
	ZeroDivisionErr  Kind = "ZeroDivisionError"
	OverflowError    Kind = "OverflowError"
	MemoryError      Kind = "MemoryError"
	RecursionError   Kind = "RecursionError"
	NotImplementedEr Kind = "NotImplementedError"
	ImportError      Kind = "ImportError"
	ModuleNotFound   Kind = "ModuleNotFoundError"
	SyntaxError      Kind = "SyntaxError"
	IOError          Kind = "IOError"
	PermissionError  Kind = "PermissionError"
	NetworkError     Kind = "NetworkError"
	StopIteration    Kind = "StopIteration"
	TimeoutError     Kind = "TimeoutError"
)

// Exception is a guest-visible Python exception. It is carried in-band as
// a signal by the evaluator (see internal/evaluator) and only becomes a Go
// error at the host boundary (Run's return value).
type Exception struct {
	Kind     Kind
	Message  string
	Line     int
	Instance interface{} // optional: the raised instance value, opaque here to avoid an import cycle with pyvalue
}

func New(kind Kind, format string, args ...interface{}) *Exception {
	return &Exception{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Exception) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d)", e.Kind, e.Message, e.Line)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Exception) WithLine(line int) *Exception {
	if e == nil || e.Line != 0 {
		return e
	}
	n := *e
	n.Line = line
	return &n
}

// HostFault marks an interpreter-internal invariant violation: something
// that should be unreachable from well-formed AST input. Run recovers
// these at the top level instead of letting them panic across the host
// boundary.
type HostFault struct {
	Reason string
}

func (h *HostFault) Error() string { return "internal interpreter fault: " + h.Reason }

func Fault(format string, args ...interface{}) *HostFault {
	return &HostFault{Reason: fmt.Sprintf(format, args...)}
}
