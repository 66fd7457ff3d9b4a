package editor

import "errors"

var (
	// ErrInvalidElement indicates a nil or non-element node was given as a
	// surface.
	ErrInvalidElement = errors.New("editor: invalid element")

	// ErrNotActive indicates an operation that needs an active editor.
	ErrNotActive = errors.New("editor: not active")
)
