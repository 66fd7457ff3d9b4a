package toolbar

import "errors"

var (
	// ErrUnknownForm indicates ShowForm was given an unregistered form ID.
	ErrUnknownForm = errors.New("toolbar: unknown form")

	// ErrDuplicateForm indicates a form ID was registered twice.
	ErrDuplicateForm = errors.New("toolbar: duplicate form")
)
