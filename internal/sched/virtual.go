package sched

import "time"

// Virtual is a deterministic Scheduler whose clock only moves when Advance
// is called. Callbacks run synchronously inside Advance, in due-time order,
// ties broken by scheduling order.
type Virtual struct {
	now   time.Time
	seq   uint64
	tasks []*virtualTask
}

// NewVirtual creates a virtual clock starting at start.
func NewVirtual(start time.Time) *Virtual {
	return &Virtual{now: start}
}

type virtualTask struct {
	due    time.Time
	period time.Duration
	seq    uint64
	fn     func()
	active bool
}

func (t *virtualTask) Cancel() bool {
	was := t.active
	t.active = false
	return was
}

func (t *virtualTask) Active() bool { return t.active }

// Now returns the virtual time.
func (v *Virtual) Now() time.Time { return v.now }

// AfterFunc schedules fn to run once d after the current virtual time.
func (v *Virtual) AfterFunc(d time.Duration, fn func()) Task {
	return v.schedule(max(d, 0), 0, fn)
}

// Every schedules fn every d. Non-positive periods are treated as 1ms so
// that Advance always terminates.
func (v *Virtual) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		d = time.Millisecond
	}
	return v.schedule(d, d, fn)
}

func (v *Virtual) schedule(d, period time.Duration, fn func()) Task {
	v.seq++
	t := &virtualTask{due: v.now.Add(d), period: period, seq: v.seq, fn: fn, active: true}
	v.tasks = append(v.tasks, t)
	return t
}

// Advance moves the clock forward by d, running every callback that comes
// due, including ones scheduled by callbacks during the advance.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now.Add(d)
	for {
		t := v.nextDue(target)
		if t == nil {
			break
		}
		if t.due.After(v.now) {
			v.now = t.due
		}
		if t.period > 0 {
			t.due = t.due.Add(t.period)
		} else {
			t.active = false
		}
		t.fn()
	}
	v.now = target
	v.compact()
}

// Flush runs every callback that is already due without moving the clock.
func (v *Virtual) Flush() { v.Advance(0) }

// Pending returns the number of active tasks.
func (v *Virtual) Pending() int {
	v.compact()
	return len(v.tasks)
}

func (v *Virtual) nextDue(target time.Time) *virtualTask {
	var next *virtualTask
	for _, t := range v.tasks {
		if !t.active || t.due.After(target) {
			continue
		}
		if next == nil || t.due.Before(next.due) || (t.due.Equal(next.due) && t.seq < next.seq) {
			next = t
		}
	}
	return next
}

func (v *Virtual) compact() {
	live := v.tasks[:0]
	for _, t := range v.tasks {
		if t.active {
			live = append(live, t)
		}
	}
	clear(v.tasks[len(live):])
	v.tasks = live
}

var _ Scheduler = (*Virtual)(nil)
