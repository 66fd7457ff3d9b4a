package event

import "errors"

// Sentinel errors for the binder.
var (
	// ErrSubscriptionNotFound is returned when removing an unknown subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrNilListener is returned when a nil listener is provided.
	ErrNilListener = errors.New("listener cannot be nil")

	// ErrNilTarget is returned when a nil target is provided.
	ErrNilTarget = errors.New("target cannot be nil")
)
