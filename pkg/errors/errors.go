// Package errors provides structured error handling and the warning system
// used throughout the library. Errors fall into three families mirroring the
// failure taxonomy of the data-view core: configuration errors raised while
// binding columns, decode errors raised while loading persisted bindings, and
// contract violations raised when consuming code misuses a cursor.
package errors

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("ml-warning: %v\n", w)
	}
	// zerolog hook; lazily installed to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler sets the library-wide warning handler. Warnings are
// non-fatal conditions such as a column being dropped from an export.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc routes warnings through zerolog instead of the plain
// handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn raises a warning through the configured handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ColumnDroppedWarning is raised when a column cannot be represented in an
// exported pipeline and is omitted rather than failing the whole export.
type ColumnDroppedWarning struct {
	Column string
	Reason string
}

func (w *ColumnDroppedWarning) Error() string {
	return fmt.Sprintf("column %q dropped from export: %s", w.Column, w.Reason)
}

// MarshalZerologObject adds the structured warning fields to a zerolog event.
func (w *ColumnDroppedWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("reason", w.Reason).
		Str("type", "ColumnDroppedWarning")
}

// NewColumnDroppedWarning creates a new ColumnDroppedWarning.
func NewColumnDroppedWarning(column, reason string) *ColumnDroppedWarning {
	return &ColumnDroppedWarning{Column: column, Reason: reason}
}

// ===========================================================================
//
//	Configuration errors (bind time)
//
// ===========================================================================

// NameNotFoundError indicates that a declared source column name does not
// resolve in the input schema. Raised at bind time; pipeline construction
// aborts.
type NameNotFoundError struct {
	Op        string
	Name      string
	Available []string
}

func (e *NameNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("ml: %s: source column %q not found in input schema", e.Op, e.Name)
	}
	return fmt.Sprintf("ml: %s: source column %q not found in input schema (available: %s)",
		e.Op, e.Name, strings.Join(e.Available, ", "))
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NameNotFoundError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Name).
		Strs("available", e.Available).
		Str("type", "NameNotFoundError")
}

// NewNameNotFoundError creates a new NameNotFoundError with a stack trace.
func NewNameNotFoundError(op, name string, available []string) error {
	err := &NameNotFoundError{Op: op, Name: name, Available: available}
	return errors.WithStack(err)
}

// TypeRejectedError indicates that a resolved source column has a type the
// transform's input-type contract does not accept. The reason comes from the
// caller-supplied type validation predicate.
type TypeRejectedError struct {
	Op     string
	Column string
	Type   string
	Reason string
}

func (e *TypeRejectedError) Error() string {
	return fmt.Sprintf("ml: %s: source column %q has unsupported type %s: %s",
		e.Op, e.Column, e.Type, e.Reason)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *TypeRejectedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("column_type", e.Type).
		Str("reason", e.Reason).
		Str("type", "TypeRejectedError")
}

// NewTypeRejectedError creates a new TypeRejectedError with a stack trace.
func NewTypeRejectedError(op, column, columnType, reason string) error {
	err := &TypeRejectedError{Op: op, Column: column, Type: columnType, Reason: reason}
	return errors.WithStack(err)
}

// DuplicateColumnError indicates a column name that appears more than once
// where uniqueness is required (schema construction, new output columns).
type DuplicateColumnError struct {
	Op   string
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("ml: %s: duplicate column name %q", e.Op, e.Name)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DuplicateColumnError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Name).
		Str("type", "DuplicateColumnError")
}

// NewDuplicateColumnError creates a new DuplicateColumnError with a stack trace.
func NewDuplicateColumnError(op, name string) error {
	err := &DuplicateColumnError{Op: op, Name: name}
	return errors.WithStack(err)
}

// ValidationError indicates an invalid argument value outside the column
// naming and typing rules, e.g. a non-positive cursor count.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("ml: validation failed for parameter %q: %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a new ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Decode errors (load time)
//
// ===========================================================================

// DecodeError indicates corrupt or incompatible persisted binding data.
// Fatal: the load aborts and the error propagates to the caller.
type DecodeError struct {
	Op     string
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ml: %s: cannot decode persisted bindings: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("ml: %s: cannot decode persisted bindings: %s", e.Op, e.Reason)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DecodeError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "DecodeError")
}

// NewDecodeError creates a new DecodeError with a stack trace.
func NewDecodeError(op, reason string, err error) error {
	decodeErr := &DecodeError{Op: op, Reason: reason, Err: err}
	return errors.WithStack(decodeErr)
}

// ===========================================================================
//
//	Contract violations (call time)
//
// ===========================================================================

// InactiveColumnError indicates a getter request for a column that the
// cursor's active set does not include. This is a programming error in the
// consuming code; the call site must be fixed.
type InactiveColumnError struct {
	Op     string
	Column string
	Index  int
}

func (e *InactiveColumnError) Error() string {
	return fmt.Sprintf("ml: %s: column %q (index %d) is not active on this cursor; "+
		"declare it in the needed-columns predicate before requesting its getter",
		e.Op, e.Column, e.Index)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *InactiveColumnError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Int("index", e.Index).
		Str("type", "InactiveColumnError")
}

// NewInactiveColumnError creates a new InactiveColumnError with a stack trace.
func NewInactiveColumnError(op, column string, index int) error {
	err := &InactiveColumnError{Op: op, Column: column, Index: index}
	return errors.WithStack(err)
}

// TypeMismatchError indicates a typed accessor request whose value type does
// not match the column's declared runtime type. Fatal per call; the cursor
// remains usable for other columns.
type TypeMismatchError struct {
	Op     string
	Column string
	Want   string
	Got    string
}

func (e *TypeMismatchError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("ml: %s: value has type %s, requested %s", e.Op, e.Got, e.Want)
	}
	return fmt.Sprintf("ml: %s: column %q has type %s, requested %s", e.Op, e.Column, e.Got, e.Want)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *TypeMismatchError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("column", e.Column).
		Str("want", e.Want).
		Str("got", e.Got).
		Str("type", "TypeMismatchError")
}

// NewTypeMismatchError creates a new TypeMismatchError with a stack trace.
func NewTypeMismatchError(op, column, want, got string) error {
	err := &TypeMismatchError{Op: op, Column: column, Want: want, Got: got}
	return errors.WithStack(err)
}

// NotFittedError indicates Transform was called on an estimator before Fit.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("ml: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a new NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates an error with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// CombineErrors returns err, or otherErr when err is nil. Used to gather
// failures from release callbacks that must all run.
func CombineErrors(err, otherErr error) error {
	return errors.CombineErrors(err, otherErr)
}

// ===========================================================================
//
//	Common error values
//
// ===========================================================================

var (
	// ErrCursorClosed is returned by getters invoked after Close.
	ErrCursorClosed = New("cursor closed")

	// ErrNoCurrentRow is returned by getters invoked before the first
	// MoveNext or after MoveNext returned false.
	ErrNoCurrentRow = New("no current row")

	// ErrEmptyData is returned when an operation requires at least one row
	// or column and none was supplied.
	ErrEmptyData = New("empty data")
)
