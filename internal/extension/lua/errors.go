package lua

import (
	"errors"
	"fmt"
)

// Errors for script execution.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua: state is closed")

	// ErrNotFunction is returned when a called global is not a function.
	ErrNotFunction = errors.New("lua: not a function")

	// ErrDetached is raised inside scripts that use the editor API before
	// init.
	ErrDetached = errors.New("lua: extension is not attached to an editor")
)

// ScriptError wraps a failure raised while running a script function.
type ScriptError struct {
	Script string
	Func   string
	Err    error
}

// Error implements error.
func (e *ScriptError) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("lua %s: %v", e.Script, e.Err)
	}
	return fmt.Sprintf("lua %s: %s: %v", e.Script, e.Func, e.Err)
}

// Unwrap returns the underlying error.
func (e *ScriptError) Unwrap() error {
	return e.Err
}
