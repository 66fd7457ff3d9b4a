package command

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrAlreadyRegistered indicates Register was called twice.
	ErrAlreadyRegistered = errors.New("command: registry already populated")

	// ErrNilCommand indicates a nil extension value.
	ErrNilCommand = errors.New("command: nil command")

	// ErrHookArgs indicates a hook was dispatched with arguments of the
	// wrong type.
	ErrHookArgs = errors.New("command: invalid hook arguments")
)

// HookError wraps an error returned by a command hook.
type HookError struct {
	Command string
	Hook    string
	Err     error
}

// Error implements error.
func (e *HookError) Error() string {
	return fmt.Sprintf("command %s: hook %s: %v", e.Command, e.Hook, e.Err)
}

// Unwrap returns the underlying error.
func (e *HookError) Unwrap() error {
	return e.Err
}
