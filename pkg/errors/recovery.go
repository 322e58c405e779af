// Panic recovery utilities. Cursor-pumping goroutines convert unexpected
// panics (for example from a user-supplied column computation) into
// structured errors instead of crashing the process.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError represents an error created from a recovered panic. It keeps
// the original panic value and the stack trace captured at recovery time.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil as PanicError doesn't wrap another error by default.
func (e *PanicError) Unwrap() error {
	return nil
}

// String provides detailed information including the stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a new PanicError with the given operation context and
// panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error. It should be called with defer and
// a pointer to the error return value of the enclosing function:
//
//	func (c *cursor) pump() (err error) {
//	    defer errors.Recover(&err, "consolidate.pump")
//	    ...
//	}
//
// If the enclosing function already set an error, the recovered panic is
// attached to it rather than replacing it.
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := WithStack(NewPanicError(operation, r))
		if *err != nil {
			*err = Wrapf(panicErr, "panic after error: %v", *err)
			return
		}
		*err = panicErr
	}
}

// SafeGo runs fn in a new goroutine and delivers a recovered panic (or fn's
// own error) to onErr. onErr is not called when fn succeeds.
func SafeGo(operation string, fn func() error, onErr func(error)) {
	go func() {
		var err error
		defer func() {
			if err != nil && onErr != nil {
				onErr(err)
			}
		}()
		defer Recover(&err, operation)
		err = fn()
	}()
}
