package sched

import "time"

// DefaultThrottle is the coalescing window used by the engine for resize and
// blur handling.
const DefaultThrottle = 50 * time.Millisecond

// Throttle limits fn to at most one call per window. The first call runs
// immediately; calls inside the window collapse into a single trailing call
// at the end of the window.
type Throttle struct {
	s        Scheduler
	fn       func()
	wait     time.Duration
	previous time.Time
	called   bool
	pending  Task
}

// NewThrottle creates a throttle for fn. A non-positive wait uses
// DefaultThrottle.
func NewThrottle(s Scheduler, wait time.Duration, fn func()) *Throttle {
	if wait <= 0 {
		wait = DefaultThrottle
	}
	return &Throttle{s: s, fn: fn, wait: wait}
}

// Call requests an invocation of the throttled function.
func (t *Throttle) Call() {
	now := t.s.Now()
	remaining := t.wait - now.Sub(t.previous)
	if !t.called || remaining <= 0 || remaining > t.wait {
		t.Cancel()
		t.called = true
		t.previous = now
		t.fn()
		return
	}
	if t.pending != nil && t.pending.Active() {
		return
	}
	t.pending = t.s.AfterFunc(remaining, func() {
		t.previous = t.s.Now()
		t.pending = nil
		t.fn()
	})
}

// Cancel drops a pending trailing call.
func (t *Throttle) Cancel() {
	if t.pending != nil {
		t.pending.Cancel()
		t.pending = nil
	}
}
