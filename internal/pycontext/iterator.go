package pycontext

import "github.com/ivarvong/pyex-sub002/internal/pyvalue"

// IteratorEntry is one entry in the context's integer-keyed iterator
// table (spec.md §3, §4.3): either a residual value list, or an
// instance-driven iterator that the evaluator advances by calling the
// instance's __next__ method.
type IteratorEntry struct {
	ID       int
	Residual []pyvalue.Value
	Pos      int
	Instance *pyvalue.Instance // non-nil for instance-driven iterators
}

// MakeIterator registers a new list-backed iterator over items and
// returns its handle.
func (c *Context) MakeIterator(items []pyvalue.Value) int {
	c.nextIterID++
	c.Iterators[c.nextIterID] = &IteratorEntry{ID: c.nextIterID, Residual: items}
	return c.nextIterID
}

// MakeInstanceIterator registers an instance-driven iterator (an object
// whose __next__ method the evaluator will call on each Advance).
func (c *Context) MakeInstanceIterator(inst *pyvalue.Instance) int {
	c.nextIterID++
	c.Iterators[c.nextIterID] = &IteratorEntry{ID: c.nextIterID, Instance: inst}
	return c.nextIterID
}

// IteratorEntryFor returns the table entry for handle.
func (c *Context) IteratorEntryFor(handle int) (*IteratorEntry, bool) {
	e, ok := c.Iterators[handle]
	return e, ok
}

// AdvanceResidual pops the next value off a list-backed iterator.
// ok is false once exhausted (the evaluator then raises/StopIterations
// per the calling builtin's contract).
func (e *IteratorEntry) AdvanceResidual() (pyvalue.Value, bool) {
	if e.Instance != nil || e.Pos >= len(e.Residual) {
		return nil, false
	}
	v := e.Residual[e.Pos]
	e.Pos++
	return v, true
}

// PeekRemaining returns the values not yet consumed, without advancing.
func (e *IteratorEntry) PeekRemaining() []pyvalue.Value {
	if e.Instance != nil {
		return nil
	}
	return e.Residual[e.Pos:]
}

// UpdateInstance replaces the instance backing an instance-driven
// iterator (used when __iter__ returns a different object than self).
func (e *IteratorEntry) UpdateInstance(inst *pyvalue.Instance) { e.Instance = inst }

// DeleteIterator removes handle from the table.
func (c *Context) DeleteIterator(handle int) { delete(c.Iterators, handle) }
