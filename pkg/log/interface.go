// Package log provides a structured logging interface for the data-view
// pipeline core.
//
// This package defines a minimal, slog-compatible logging interface that
// allows for flexible implementation switching while providing pipeline
// specific structured logging. The interface integrates with Go's standard
// log/slog package and with zerolog, which backs the default implementation.
//
// Key features:
//   - slog-compatible interface for future-proofing
//   - pipeline-specific structured attributes (operations, schemas, cursors)
//   - context-aware logging with field chaining
//   - test-friendly with a buffer-capturing implementation
//
// Example usage:
//
//	logger := log.GetLogger().With(
//	    log.ComponentKey, "transform",
//	    log.TransformKey, "StandardScaler",
//	)
//	logger.Debug("cursor topology selected",
//	    log.OperationKey, "get_row_cursor",
//	    log.CursorCountKey, 4,
//	)
package log

import (
	"context"
)

// Logger defines a structured logging interface compatible with Go's
// log/slog. It is implementation-agnostic so backends can be swapped without
// touching call sites. With returns a contextual logger with pre-populated
// fields.
type Logger interface {
	// Debug logs a debug-level message with optional structured fields.
	Debug(msg string, fields ...any)

	// Info logs an info-level message with optional structured fields.
	Info(msg string, fields ...any)

	// Warn logs a warning-level message with optional structured fields.
	Warn(msg string, fields ...any)

	// Error logs an error-level message with optional structured fields.
	// If the first field is an error, stack trace information may be
	// included by the backing handler.
	Error(msg string, fields ...any)

	// With returns a new Logger with the given fields pre-populated.
	With(fields ...any) Logger

	// Enabled reports whether the logger emits records at the given level.
	// Use it to avoid building expensive attributes that would be dropped.
	Enabled(ctx context.Context, level Level) bool
}

// Level represents a logging level, compatible with slog.Level.
type Level int

// Standard logging levels, values are compatible with slog.Level.
const (
	LevelDebug Level = -4 // Detailed diagnostic information
	LevelInfo  Level = 0  // General operational information
	LevelWarn  Level = 4  // Warning conditions
	LevelError Level = 8  // Error conditions
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
