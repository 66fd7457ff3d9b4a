package sched

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultQueueSize is the capacity of the Loop's callback queue.
const DefaultQueueSize = 256

// Loop is a real-time Scheduler. Timers fire on runtime goroutines but their
// callbacks are posted to a queue and executed by Run, so every callback runs
// on the single goroutine that owns the engine.
type Loop struct {
	queue chan func()
	done  chan struct{}
	once  sync.Once
}

// NewLoop creates a loop with the given queue size. A non-positive size uses
// DefaultQueueSize.
func NewLoop(size int) *Loop {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		queue: make(chan func(), size),
		done:  make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled. It returns the
// context's error.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.queue:
			fn()
		}
	}
}

// Post queues fn to run on the loop goroutine. It returns false if the loop
// has stopped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.queue <- fn:
		return true
	case <-l.done:
		return false
	}
}

// Now returns the wall-clock time.
func (l *Loop) Now() time.Time { return time.Now() }

// AfterFunc runs fn on the loop once after d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Task {
	t := &loopTask{}
	t.active.Store(true)
	t.timer = time.AfterFunc(max(d, 0), func() {
		l.Post(func() {
			if t.active.CompareAndSwap(true, false) {
				fn()
			}
		})
	})
	return t
}

// Every runs fn on the loop with period d until cancelled.
func (l *Loop) Every(d time.Duration, fn func()) Task {
	if d <= 0 {
		d = time.Millisecond
	}
	t := &loopTask{}
	t.active.Store(true)
	var tick func()
	tick = func() {
		l.Post(func() {
			if !t.active.Load() {
				return
			}
			fn()
			if t.active.Load() {
				t.mu.Lock()
				t.timer = time.AfterFunc(d, tick)
				t.mu.Unlock()
			}
		})
	}
	t.mu.Lock()
	t.timer = time.AfterFunc(d, tick)
	t.mu.Unlock()
	return t
}

type loopTask struct {
	mu     sync.Mutex
	timer  *time.Timer
	active atomic.Bool
}

func (t *loopTask) Cancel() bool {
	was := t.active.Swap(false)
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()
	return was
}

func (t *loopTask) Active() bool { return t.active.Load() }

var _ Scheduler = (*Loop)(nil)
