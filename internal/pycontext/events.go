package pycontext

// EventKind enumerates the non-deterministic decision kinds the context
// records, per spec.md §4.3 and §6.
type EventKind string

const (
	EventAssign    EventKind = "assign"
	EventBranch    EventKind = "branch"
	EventLoopIter  EventKind = "loop_iter"
	EventCallEnter EventKind = "call_enter"
	EventCallExit  EventKind = "call_exit"
	EventSideEffect EventKind = "side_effect"
	EventSuspend   EventKind = "suspend"
	EventException EventKind = "exception"
	EventFileOp    EventKind = "file_op"
	EventOutput    EventKind = "output"
)

// Event is one append-only record in the event log (spec.md §6's "Event
// log format"). Payload is kind-specific and treated as opaque outside the
// interpreter, but every field here is a plain Go value so the record is
// deterministically serializable.
type Event struct {
	Kind    EventKind      `json:"kind"`
	Step    int            `json:"step_index"`
	Payload map[string]any `json:"payload"`
}

// record appends ev to the log in live mode, advances the replay cursor
// in replay mode (returning the recorded event instead of recording a new
// one), and does nothing in no-op mode.
//
// The returned Event is always the one the caller should act on: in live
// mode that's ev itself (now stamped with its step index); in replay mode
// it's whatever was actually recorded at the cursor, which may carry a
// different outcome than what the caller would otherwise decide (that is
// the entire point of replay).
func (c *Context) record(ev Event) Event {
	switch c.Mode {
	case ModeNoOp:
		return ev
	case ModeReplay:
		if c.cursor < len(c.Log) {
			recorded := c.Log[c.cursor]
			c.cursor++
			if c.cursor >= len(c.Log) {
				c.Mode = ModeLive
			}
			return recorded
		}
		c.Mode = ModeLive
		fallthrough
	default: // ModeLive
		ev.Step = len(c.Log)
		c.Log = append(c.Log, ev)
		return ev
	}
}

// RecordBranch records which side of an if/elif/else (or ternary) was
// taken.
func (c *Context) RecordBranch(taken bool) bool {
	ev := c.record(Event{Kind: EventBranch, Payload: map[string]any{"taken": taken}})
	v, _ := ev.Payload["taken"].(bool)
	return v
}

// RecordLoopIter records one while/for iteration taking place.
func (c *Context) RecordLoopIter() {
	c.record(Event{Kind: EventLoopIter})
}

// RecordCallEnter/RecordCallExit bracket a function call for replay and
// stack-trace reconstruction.
func (c *Context) RecordCallEnter(name string) {
	c.record(Event{Kind: EventCallEnter, Payload: map[string]any{"name": name}})
}

func (c *Context) RecordCallExit(name string) {
	c.record(Event{Kind: EventCallExit, Payload: map[string]any{"name": name}})
}

// RecordSideEffect records a generic non-deterministic side effect (e.g. a
// host-module callback whose result cannot be recomputed deterministically).
func (c *Context) RecordSideEffect(label string, result any) any {
	ev := c.record(Event{Kind: EventSideEffect, Payload: map[string]any{"label": label, "result": result}})
	return ev.Payload["result"]
}

// RecordSuspend records the suspend() cooperative yield point.
func (c *Context) RecordSuspend() {
	c.record(Event{Kind: EventSuspend})
}

// RecordException records a raised Python exception.
func (c *Context) RecordException(kind, message string) {
	c.record(Event{Kind: EventException, Payload: map[string]any{"kind": kind, "message": message}})
}

// RecordFileOp records a filesystem operation for replay.
func (c *Context) RecordFileOp(op, path string) {
	c.record(Event{Kind: EventFileOp, Payload: map[string]any{"op": op, "path": path}})
}

// RecordOutput records one emitted output line (print()).
func (c *Context) RecordOutput(line string) {
	c.record(Event{Kind: EventOutput, Payload: map[string]any{"line": line}})
}

// RecordAssignment records a top-level assignment for replay/debug tooling.
func (c *Context) RecordAssignment(name, repr string) {
	c.record(Event{Kind: EventAssign, Payload: map[string]any{"name": name, "value": repr}})
}

// Events returns the accumulated log (ctx.events(c) in spec.md §6).
func (c *Context) Events() []Event { return c.Log }

// Output extracts just the printed lines from the log (ctx.output(c)).
func (c *Context) Output() []string {
	var out []string
	for _, e := range c.Log {
		if e.Kind == EventOutput {
			if line, ok := e.Payload["line"].(string); ok {
				out = append(out, line)
			}
		}
	}
	return out
}
