package config

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrInvalidOption indicates an option value of the wrong type or range.
	ErrInvalidOption = errors.New("config: invalid option")

	// ErrUnknownFormat indicates a file extension with no loader.
	ErrUnknownFormat = errors.New("config: unknown file format")

	// ErrWatcherClosed indicates use of a closed watcher.
	ErrWatcherClosed = errors.New("config: watcher is closed")
)

// OptionError describes an option that could not be applied.
type OptionError struct {
	// Key is the option name as it appeared in the source.
	Key string
	// Value is the rejected value.
	Value any
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *OptionError) Error() string {
	return fmt.Sprintf("option %s: %v (value: %v)", e.Key, e.Err, e.Value)
}

// Unwrap returns the underlying error.
func (e *OptionError) Unwrap() error {
	return e.Err
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	// Path is the file path that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
