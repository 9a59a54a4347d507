package pycontext

import "time"

// Clock is the monotonic compute-time accumulator of spec.md §4.3: it
// tracks nanoseconds of guest-language computation, pausing around every
// I/O or external call so that blocking time is never charged against the
// budget.
type Clock struct {
	AccumulatedNS int64
	startedAt     time.Time
	running       bool
	BudgetMS      int64 // 0 means unlimited
}

// ResumeCompute restarts the clock; idempotent if already running.
func (c *Clock) ResumeCompute() {
	if c.running {
		return
	}
	c.startedAt = time.Now()
	c.running = true
}

// PauseCompute stops the clock and folds the elapsed interval into
// AccumulatedNS; idempotent if already paused. Called around every I/O or
// external call per spec.md §5's "Blocking" rule.
func (c *Clock) PauseCompute() {
	if !c.running {
		return
	}
	c.AccumulatedNS += time.Since(c.startedAt).Nanoseconds()
	c.running = false
}

// DeadlineResult is check_deadline's return value.
type DeadlineResult struct {
	Exceeded    bool
	OvershootMS int64
}

// CheckDeadline returns exceeded(overshoot_ms) when accumulated + (now -
// started) >= budget, per spec.md §4.3. A zero budget means unlimited and
// never exceeds.
func (c *Clock) CheckDeadline() DeadlineResult {
	if c.BudgetMS <= 0 {
		return DeadlineResult{}
	}
	elapsed := c.AccumulatedNS
	if c.running {
		elapsed += time.Since(c.startedAt).Nanoseconds()
	}
	budgetNS := c.BudgetMS * int64(time.Millisecond)
	if elapsed < budgetNS {
		return DeadlineResult{}
	}
	overshootNS := elapsed - budgetNS
	return DeadlineResult{Exceeded: true, OvershootMS: overshootNS / int64(time.Millisecond)}
}

// ComputeTimeNS returns the total compute time counted so far, matching
// spec.md §8's compute-clock law: the sum of monotonic intervals between
// ResumeCompute and PauseCompute.
func (c *Clock) ComputeTimeNS() int64 {
	total := c.AccumulatedNS
	if c.running {
		total += time.Since(c.startedAt).Nanoseconds()
	}
	return total
}
