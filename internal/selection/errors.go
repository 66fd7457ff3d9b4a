package selection

import "errors"

var (
	// ErrInvalidSnapshot is returned when decoded snapshot offsets are out of
	// order or negative.
	ErrInvalidSnapshot = errors.New("invalid selection snapshot")
)
