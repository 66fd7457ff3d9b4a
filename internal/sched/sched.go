package sched

import "time"

// Task is a handle to a scheduled callback.
type Task interface {
	// Cancel stops the task. It returns true if the task was still active.
	Cancel() bool

	// Active reports whether the task may still run.
	// One-shot tasks become inactive once they have fired.
	Active() bool
}

// Scheduler schedules callbacks on the UI loop.
type Scheduler interface {
	// AfterFunc runs fn once after d. A zero d defers fn until the current
	// callback has returned.
	AfterFunc(d time.Duration, fn func()) Task

	// Every runs fn repeatedly with period d until the task is cancelled.
	Every(d time.Duration, fn func()) Task

	// Now returns the scheduler's current time.
	Now() time.Time
}

// TaskSet tracks tasks so they can be cancelled together.
type TaskSet struct {
	tasks []Task
}

// Add records t and returns it.
func (s *TaskSet) Add(t Task) Task {
	s.prune()
	s.tasks = append(s.tasks, t)
	return t
}

// Live returns the number of tracked tasks that are still active.
func (s *TaskSet) Live() int {
	s.prune()
	return len(s.tasks)
}

// CancelAll cancels every tracked task and forgets them.
func (s *TaskSet) CancelAll() {
	for _, t := range s.tasks {
		t.Cancel()
	}
	s.tasks = nil
}

func (s *TaskSet) prune() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.Active() {
			live = append(live, t)
		}
	}
	clear(s.tasks[len(live):])
	s.tasks = live
}
