// Package pyvalue implements the interpreter's runtime value model: the
// tagged union described in spec.md §3, plus the value helpers of §4.2.
//
// Value is a Go interface rather than spec's "tagged union" because Go has
// no sum types; each concrete type below is one variant, and Kind() plays
// the role of the tag. Containers that Python aliases (list, dict, set)
// are represented as pointers so that binding x = y creates an alias, not
// a copy, per the invariant in spec.md §3.
package pyvalue

import (
	"hash"

	"github.com/ivarvong/pyex-sub002/internal/ast"
)

// Kind tags a Value's variant, mirroring spec.md §3's enumeration.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindStr
	KindBool
	KindNone
	KindList
	KindDict
	KindTuple
	KindSet
	KindFrozenSet
	KindUserFunc
	KindBuiltin
	KindBuiltinKW
	KindTypeCtor
	KindBoundMethod
	KindBoundAttr
	KindClass
	KindInstance
	KindRange
	KindGenerator
	KindIterator
	KindSuper
	KindFile
	KindSeries
	KindRolling
	KindDataFrame
	KindMatch
	KindHash
)

// Value is implemented by every runtime value variant.
type Value interface {
	Kind() Kind
	// TypeName is the Python type() string for this value, used by
	// type(), isinstance(), and error messages.
	TypeName() string
}

// --- scalars ---

type Int int64

func (Int) Kind() Kind           { return KindInt }
func (Int) TypeName() string     { return "int" }

// Float wraps a float64; +Inf, -Inf, and NaN are carried natively by the
// IEEE-754 representation and formatted per Python rules in format.go.
type Float float64

func (Float) Kind() Kind       { return KindFloat }
func (Float) TypeName() string { return "float" }

type Str string

func (Str) Kind() Kind       { return KindStr }
func (Str) TypeName() string { return "str" }

// Bool is a distinct variant from Int, but type_name/isinstance treat it
// as an int subtype per spec.md §3's invariant.
type Bool bool

func (Bool) Kind() Kind       { return KindBool }
func (Bool) TypeName() string { return "bool" }

// None is the singleton Python None value.
type None struct{}

func (None) Kind() Kind       { return KindNone }
func (None) TypeName() string { return "NoneType" }

// NoneValue is the single None instance; there is exactly one per spec.md's
// treatment of None as a singleton sentinel.
var NoneValue Value = None{}

// --- containers ---

// List is an ordered, mutable sequence. Always handled by pointer so that
// aliasing (x = y) shares the backing slice's owner.
type List struct {
	Items []Value
}

func NewList(items ...Value) *List { return &List{Items: items} }

func (*List) Kind() Kind       { return KindList }
func (*List) TypeName() string { return "list" }

// Tuple is a fixed-length immutable sequence; value semantics are fine
// since tuples can never be mutated in place.
type Tuple struct {
	Items []Value
}

func NewTuple(items ...Value) Tuple { return Tuple{Items: items} }

func (Tuple) Kind() Kind       { return KindTuple }
func (Tuple) TypeName() string { return "tuple" }

// Set is an unordered, mutable, unique-element collection.
type Set struct {
	// keyed by canonical key (see canon.go); values hold the original
	// element so iteration/str can reproduce it.
	elems map[string]Value
	// order records insertion order of canonical keys. Python sets are
	// unordered by contract, but a stable iteration order makes the
	// interpreter's own output (and replay) deterministic.
	order []string
}

func NewSet() *Set { return &Set{elems: map[string]Value{}} }

func (*Set) Kind() Kind       { return KindSet }
func (*Set) TypeName() string { return "set" }

func (s *Set) Add(v Value) error {
	k, err := CanonicalKey(v)
	if err != nil {
		return err
	}
	if _, ok := s.elems[k]; !ok {
		s.order = append(s.order, k)
	}
	s.elems[k] = v
	return nil
}

func (s *Set) Remove(v Value) bool {
	k, err := CanonicalKey(v)
	if err != nil {
		return false
	}
	if _, ok := s.elems[k]; !ok {
		return false
	}
	delete(s.elems, k)
	for i, kk := range s.order {
		if kk == k {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *Set) Contains(v Value) bool {
	k, err := CanonicalKey(v)
	if err != nil {
		return false
	}
	_, ok := s.elems[k]
	return ok
}

func (s *Set) Len() int { return len(s.order) }

func (s *Set) Items() []Value {
	out := make([]Value, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.elems[k])
	}
	return out
}

// FrozenSet is Set's immutable counterpart; it shares the same backing
// structure but is never exposed through mutating methods.
type FrozenSet struct {
	inner *Set
}

func NewFrozenSet(items ...Value) (FrozenSet, error) {
	s := NewSet()
	for _, it := range items {
		if err := s.Add(it); err != nil {
			return FrozenSet{}, err
		}
	}
	return FrozenSet{inner: s}, nil
}

func (FrozenSet) Kind() Kind       { return KindFrozenSet }
func (FrozenSet) TypeName() string { return "frozenset" }
func (f FrozenSet) Items() []Value { return f.inner.Items() }
func (f FrozenSet) Len() int       { return f.inner.Len() }
func (f FrozenSet) Contains(v Value) bool { return f.inner.Contains(v) }

// --- callables ---

// Param describes one formal parameter of a UserFunc.
type Param struct {
	Name      string
	Default   Value // nil if required
	HasDefault bool
	Variadic   bool // *args
	VarKeyword bool // **kwargs
	KeywordOnly bool
}

// UserFunc is a closure: a function value defined in guest source.
type UserFunc struct {
	Name    string
	Params  []Param
	Body    []ast.Stmt
	Closure interface{} // *pyenv.Env; interface{} to avoid an import cycle (pyenv imports pyvalue)
	// OwnerClass is set on a method defined in a class body (see
	// evalClassDef), letting the zero-argument form of super() recover the
	// class a method was defined on without the evaluator needing a
	// separate per-call frame stack.
	OwnerClass *Class
}

func (*UserFunc) Kind() Kind       { return KindUserFunc }
func (*UserFunc) TypeName() string { return "function" }

// BuiltinFunc is a positional-only builtin callback such as len() or abs().
type BuiltinFunc struct {
	Name string
	Fn   func(args []Value) (Value, error)
}

func (*BuiltinFunc) Kind() Kind       { return KindBuiltin }
func (*BuiltinFunc) TypeName() string { return "builtin_function_or_method" }

// BuiltinKWFunc is a builtin callback that also accepts keyword arguments,
// e.g. sorted(iterable, key=..., reverse=...).
type BuiltinKWFunc struct {
	Name string
	Fn   func(args []Value, kwargs map[string]Value) (Value, error)
}

func (*BuiltinKWFunc) Kind() Kind       { return KindBuiltinKW }
func (*BuiltinKWFunc) TypeName() string { return "builtin_function_or_method" }

// TypeCtor is a builtin type constructor, e.g. list(...), dict(...), int(...).
type TypeCtor struct {
	TypeName_ string
	Fn        func(args []Value, kwargs map[string]Value) (Value, error)
}

func (*TypeCtor) Kind() Kind       { return KindTypeCtor }
func (t *TypeCtor) TypeName() string { return "type" }

// BoundMethod binds a receiver to a named method resolved through the
// (type, method-name) registry (see internal/registry).
type BoundMethod struct {
	Receiver Value
	Method   string
}

func (*BoundMethod) Kind() Kind       { return KindBoundMethod }
func (*BoundMethod) TypeName() string { return "method" }

// BoundAttr binds a receiver to an already-resolved callable attribute
// (e.g. an instance method or a class's __call__).
type BoundAttr struct {
	Receiver Value
	AttrName string
	Callable Value
}

func (*BoundAttr) Kind() Kind       { return KindBoundAttr }
func (*BoundAttr) TypeName() string { return "method" }

// --- class / instance ---

// Class is a Python class object: name, base list, and its own attribute
// map (methods and class variables).
type Class struct {
	Name  string
	Bases []*Class
	Attrs map[string]Value
	// AttrOrder preserves declaration order for repr/dir-style needs.
	AttrOrder []string
	// Native marks a class whose instances are constructed directly by the
	// evaluator rather than through an AST __init__ body — used for the
	// builtin exception hierarchy (spec.md §6's exception contract).
	Native bool
}

func NewClass(name string, bases []*Class) *Class {
	return &Class{Name: name, Bases: bases, Attrs: map[string]Value{}}
}

func (*Class) Kind() Kind       { return KindClass }
func (*Class) TypeName() string { return "type" }

func (c *Class) SetAttr(name string, v Value) {
	if _, exists := c.Attrs[name]; !exists {
		c.AttrOrder = append(c.AttrOrder, name)
	}
	c.Attrs[name] = v
}

// Lookup walks bases left-to-right, depth-first (spec.md §4.4: no C3).
func (c *Class) Lookup(name string) (Value, *Class, bool) {
	if c == nil {
		return nil, nil, false
	}
	if v, ok := c.Attrs[name]; ok {
		return v, c, true
	}
	for _, b := range c.Bases {
		if v, owner, ok := b.Lookup(name); ok {
			return v, owner, true
		}
	}
	return nil, nil, false
}

// IsSubclassOf reports whether c is target or descends from it through the
// same DFS base order used for attribute lookup.
func (c *Class) IsSubclassOf(target *Class) bool {
	if c == nil || target == nil {
		return false
	}
	if c == target {
		return true
	}
	for _, b := range c.Bases {
		if b.IsSubclassOf(target) {
			return true
		}
	}
	return false
}

// Instance is an object of a user-defined class.
type Instance struct {
	Class *Class
	Attrs map[string]Value
}

func NewInstance(cls *Class) *Instance {
	return &Instance{Class: cls, Attrs: map[string]Value{}}
}

func (*Instance) Kind() Kind       { return KindInstance }
func (i *Instance) TypeName() string { return i.Class.Name }

// Lookup resolves an attribute first on the instance, then the class MRO.
func (i *Instance) Lookup(name string) (Value, bool) {
	if v, ok := i.Attrs[name]; ok {
		return v, true
	}
	if v, _, ok := i.Class.Lookup(name); ok {
		return v, true
	}
	return nil, false
}

// --- lazy / iteration ---

type Range struct {
	Start, Stop, Step int64
}

func (Range) Kind() Kind       { return KindRange }
func (Range) TypeName() string { return "range" }

func (r Range) Len() int64 {
	if r.Step == 0 {
		return 0
	}
	if r.Step > 0 {
		if r.Stop <= r.Start {
			return 0
		}
		return (r.Stop - r.Start + r.Step - 1) / r.Step
	}
	if r.Stop >= r.Start {
		return 0
	}
	return (r.Start - r.Stop - r.Step - 1) / (-r.Step)
}

func (r Range) Items() []Value {
	n := r.Len()
	out := make([]Value, 0, n)
	v := r.Start
	for i := int64(0); i < n; i++ {
		out = append(out, Int(v))
		v += r.Step
	}
	return out
}

// Generator is a materialized sequence of produced values (spec.md §4.4:
// yield expressions are eagerly materialized, not lazily scheduled).
type Generator struct {
	Values []Value
	// Err, if non-nil, records that production stopped early with an
	// exception; consuming code (iter(), list()) surfaces it.
	Err error
}

func (*Generator) Kind() Kind       { return KindGenerator }
func (*Generator) TypeName() string { return "generator" }

// Iterator is an opaque handle into the context's iterator table.
type Iterator struct {
	Handle int
}

func (Iterator) Kind() Kind       { return KindIterator }
func (Iterator) TypeName() string { return "list_iterator" }

// Super is a bound super-proxy: attribute access on it skips CurClass in
// the instance's MRO walk, per spec.md §4.4.
type Super struct {
	CurClass *Class
	Instance *Instance
}

func (Super) Kind() Kind       { return KindSuper }
func (Super) TypeName() string { return "super" }

// File is an opaque handle into the context's file-handle table.
type File struct {
	Handle int
}

func (File) Kind() Kind       { return KindFile }
func (File) TypeName() string { return "file" }

// Match is the result of re.match/re.search/re.fullmatch: the whole match
// plus numbered capture groups (empty string for a group that didn't
// participate), and the byte offsets of the whole match in the subject.
type Match struct {
	Whole       string
	Groups      []string
	GroupsFound []bool
	Start, End  int
}

func (*Match) Kind() Kind       { return KindMatch }
func (*Match) TypeName() string { return "re.Match" }

// Hash wraps a running hash.Hash state for hashlib/hmac (SPEC_FULL.md §12's
// HMAC-webhook conformance fixture): Algo names the algorithm for error
// messages and for hmac.new's digestmod lookup, H is the live digest state.
type Hash struct {
	Algo string
	H    hash.Hash
}

func (*Hash) Kind() Kind       { return KindHash }
func (h *Hash) TypeName() string {
	if h.Algo == "hmac" {
		return "hmac.HMAC"
	}
	return "_hashlib.HASH"
}

// --- domain extensions (pandas-style modules) ---

// Series, Rolling, and DataFrame are typed wrappers over host-native
// columnar data, per spec.md §3's "domain extensions" variant family. The
// kernel only needs to move these values around (assign, pass as
// arguments, store in containers); the numeric/columnar operations
// themselves belong to the pandas-shaped stdlib plug-in module, out of
// scope for the kernel per spec.md §1.
type Series struct {
	Name string
	Data []Value
}

func (*Series) Kind() Kind       { return KindSeries }
func (*Series) TypeName() string { return "Series" }

type Rolling struct {
	Source *Series
	Window int
}

func (*Rolling) Kind() Kind       { return KindRolling }
func (*Rolling) TypeName() string { return "Rolling" }

type DataFrame struct {
	Columns []string
	Data    map[string]*Series
}

func (*DataFrame) Kind() Kind       { return KindDataFrame }
func (*DataFrame) TypeName() string { return "DataFrame" }

// TypeNameOf is the exported form of spec.md §4.2's type_name(v): never
// empty, defined for every variant.
func TypeNameOf(v Value) string {
	if v == nil {
		return "NoneType"
	}
	return v.TypeName()
}
