package event

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/google/uuid"
)

// Option configures a subscription created by Binder.On.
type Option func(*subscription)

// WithCapture registers the listener for the capture phase.
func WithCapture() Option {
	return func(s *subscription) { s.capture = true }
}

// WithOnce removes the subscription after its first delivery.
func WithOnce() Option {
	return func(s *subscription) { s.once = true }
}

type subscription struct {
	id      string
	target  Target
	typ     Type
	capture bool
	once    bool
	remove  func()
}

// Binder records listener subscriptions made through a Listenable so they
// can be removed individually or all at once.
type Binder struct {
	mu     sync.Mutex
	src    Listenable
	subs   []*subscription
	failed []error
}

// NewBinder creates a binder over src.
func NewBinder(src Listenable) *Binder {
	return &Binder{src: src}
}

// On registers l for events of type typ on target and returns the
// subscription ID. If target or l is nil it returns "" and the failure is
// kept for Err.
func (b *Binder) On(target Target, typ Type, l Listener, opts ...Option) string {
	id, err := b.Subscribe(target, typ, l, opts...)
	if err != nil {
		b.mu.Lock()
		b.failed = append(b.failed, fmt.Errorf("listen %s: %w", typ, err))
		b.mu.Unlock()
		return ""
	}
	return id
}

// Err returns the failures of every On call so far, or nil.
func (b *Binder) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return errors.Join(b.failed...)
}

// Subscribe is On with explicit error reporting.
func (b *Binder) Subscribe(target Target, typ Type, l Listener, opts ...Option) (string, error) {
	if isNil(target) {
		return "", ErrNilTarget
	}
	if l == nil {
		return "", ErrNilListener
	}
	s := &subscription{id: uuid.NewString(), target: target, typ: typ}
	for _, opt := range opts {
		opt(s)
	}

	listener := l
	if s.once {
		listener = func(e *Event) {
			_ = b.Off(s.id)
			l(e)
		}
	}
	s.remove = b.src.Listen(target, typ, listener, s.capture)

	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return s.id, nil
}

// Off removes the subscription with the given ID.
func (b *Binder) Off(id string) error {
	b.mu.Lock()
	var found *subscription
	for i, s := range b.subs {
		if s.id == id {
			found = s
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			break
		}
	}
	b.mu.Unlock()
	if found == nil {
		return ErrSubscriptionNotFound
	}
	if found.remove != nil {
		found.remove()
	}
	return nil
}

// OffTarget removes every subscription on target and returns how many were
// removed.
func (b *Binder) OffTarget(target Target) int {
	b.mu.Lock()
	var removed []*subscription
	kept := b.subs[:0]
	for _, s := range b.subs {
		if s.target == target {
			removed = append(removed, s)
		} else {
			kept = append(kept, s)
		}
	}
	clear(b.subs[len(kept):])
	b.subs = kept
	b.mu.Unlock()

	for _, s := range removed {
		if s.remove != nil {
			s.remove()
		}
	}
	return len(removed)
}

// RemoveAll removes every subscription, most recent first.
func (b *Binder) RemoveAll() {
	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	for i := len(subs) - 1; i >= 0; i-- {
		if subs[i].remove != nil {
			subs[i].remove()
		}
	}
}

// Len returns the number of live subscriptions.
func (b *Binder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// isNil reports whether t is nil or a nil pointer held in the interface.
func isNil(t Target) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
