// Package errors provides structured error handling for FlatFiles.
package errors

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error.
type ErrorType string

const (
	// ErrorTypeSyntax represents a malformed raw record, such as an
	// unterminated quoted field or a short fixed-width line. Fatal to the
	// record it names.
	ErrorTypeSyntax ErrorType = "syntax"
	// ErrorTypeSchemaMismatch represents a raw field count that disagrees
	// with schema expectations.
	ErrorTypeSchemaMismatch ErrorType = "schema_mismatch"
	// ErrorTypeConversion represents a field that failed semantic type
	// parsing or formatting. The underlying parse failure is the cause.
	ErrorTypeConversion ErrorType = "conversion"
	// ErrorTypeConfig represents invalid options or an unresolvable schema.
	// Always fatal, raised at construction or resolution time.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeState represents API misuse, such as reading after
	// exhaustion or requesting values before any read. Always fatal.
	ErrorTypeState ErrorType = "state"
	// ErrorTypeIO represents a failure of the underlying character stream.
	ErrorTypeIO ErrorType = "io"
)

// Error represents a structured error with context.
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// WithRecord attaches the one-based record number the error occurred on.
func (e *Error) WithRecord(recordNumber int) *Error {
	return e.WithDetail("record", recordNumber)
}

// RecordNumber returns the record number attached to err, or 0 when the
// error carries none.
func RecordNumber(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return 0
	}
	if n, ok := e.Details["record"].(int); ok {
		return n
	}
	return 0
}

// New creates a new error with the given type and message.
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates a new error with a formatted message.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// IsRecoverable returns true if the error may be marked handled by a
// record-level error callback, allowing the session to skip the record and
// continue. Configuration, state, and stream errors are never recoverable.
func IsRecoverable(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}

	switch e.Type {
	case ErrorTypeSyntax, ErrorTypeSchemaMismatch, ErrorTypeConversion:
		return true
	default:
		return false
	}
}

// IsType checks if the error is of the given type.
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// captureStack captures the current call stack.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
