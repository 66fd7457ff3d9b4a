package app

import (
	"errors"
	"os"
	"testing"
)

func TestOperationError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *OperationError
		expected string
	}{
		{"nil error", nil, ""},
		{"op only", &OperationError{Op: "save"}, "save"},
		{"op and target", &OperationError{Op: "open", Target: "/path/doc.html"}, "open /path/doc.html"},
		{"full", &OperationError{Op: "open", Target: "/path/doc.html", Err: errors.New("io error")}, "open /path/doc.html: io error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

func TestOperationError_Unwrap(t *testing.T) {
	err := NewOperationError("open", "doc.html", os.ErrNotExist)
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is did not see the wrapped error")
	}
	var nilErr *OperationError
	if nilErr.Unwrap() != nil {
		t.Error("expected nil from Unwrap() on nil receiver")
	}
}

func TestErrorList(t *testing.T) {
	var list ErrorList
	if list.AsError() != nil {
		t.Error("empty list is an error")
	}
	list.Add(nil)
	if list.Len() != 0 {
		t.Errorf("Len after Add(nil) = %d", list.Len())
	}

	list.Add(os.ErrClosed)
	if got := list.Error(); got != os.ErrClosed.Error() {
		t.Errorf("single error message = %q", got)
	}
	list.Add(errors.New("second"))
	err := list.AsError()
	if err == nil || list.Len() != 2 {
		t.Fatalf("AsError = %v, Len = %d", err, list.Len())
	}
	if !errors.Is(err, os.ErrClosed) {
		t.Error("errors.Is did not see a collected error")
	}
}

func TestValidateLogLevel(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warn", "error"} {
		if err := ValidateLogLevel(level); err != nil {
			t.Errorf("ValidateLogLevel(%q) = %v", level, err)
		}
	}
	if err := ValidateLogLevel("trace"); !errors.Is(err, ErrInvalidLogLevel) {
		t.Errorf("ValidateLogLevel(trace) = %v", err)
	}
}
