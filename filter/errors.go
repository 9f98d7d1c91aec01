package filter

import (
	"errors"
	"fmt"
)

// ErrFilterNotFound is returned when a named filter has not been registered
var ErrFilterNotFound = errors.New("filter not found")

// CompilationError indicates a filter expression could not be compiled
type CompilationError struct {
	Name       string // preset name, empty for ad-hoc expressions
	Expression string
	Reason     string
	Err        error
}

func (e *CompilationError) Error() string {
	msg := fmt.Sprintf("compilation error in '%s': %s", e.Expression, e.Reason)
	if e.Name != "" {
		msg = fmt.Sprintf("filter '%s': %s", e.Name, msg)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *CompilationError) Unwrap() error {
	return e.Err
}
