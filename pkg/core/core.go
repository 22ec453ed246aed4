// Package core defines the contracts shared by the delimited and
// fixed-width implementations: the pull-based Reader and Writer interfaces
// and the record-level error surface.
package core

import (
	"context"

	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

// Reader is a pull-based typed record reader. Implementations are
// single-threaded: one instance must not be used from multiple goroutines
// without external serialization.
type Reader interface {
	// Read advances to the next record. It returns false at end of
	// stream. After an unhandled record error the reader is failed and
	// every further Read returns a state error.
	Read(ctx context.Context) (bool, error)
	// Values returns a defensive copy of the last record's typed values.
	// Calling it before any successful Read, or after exhaustion, is a
	// state error.
	Values() ([]interface{}, error)
	// RecordNumber is the one-based number of the last record seen.
	RecordNumber() int
	// Schema returns the schema that converted the last record.
	Schema() *schema.Schema
}

// Writer is a typed record writer. Flush must be safe to call even when
// nothing was ever written.
type Writer interface {
	// Write formats and writes one record of logical values.
	Write(ctx context.Context, values []interface{}) error
	// Flush pushes any buffered output to the underlying stream. The
	// stream itself is owned by the caller and is never closed here.
	Flush() error
	// Schema returns the schema governing the writer.
	Schema() *schema.Schema
}

// ErrorHandler is the record-level error callback. It receives the record
// number and the error; returning true marks the error handled, the record
// is skipped, and the session continues. Returning false propagates the
// error and fails the session. Only syntax, schema mismatch, and
// conversion errors reach the handler.
type ErrorHandler func(recordNumber int, err error) bool

// RecordInspector examines a record's raw fields before conversion.
// Returning false skips the record. The fields slice is a defensive copy;
// the inspector may keep it.
type RecordInspector func(recordNumber int, fields []string) bool
