// Package fixedwidth implements the fixed-width record shape: each
// physical column occupies an exact character window in the line, with
// padding, truncation, and alignment instead of separators and quoting.
package fixedwidth

import (
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

// Options is the immutable per-session configuration for fixed-width
// reading and writing. Alignment, Fill, and Truncation are format-wide
// defaults; per-column windows override them.
type Options struct {
	// RecordSeparator terminates records. When empty, readers re-detect
	// "\r\n", "\n", or "\r" per record and writers use "\n".
	RecordSeparator string
	// PreambleLength is a number of characters skipped exactly once
	// before the first record.
	PreambleLength int
	// Alignment is the default value alignment inside a window.
	Alignment schema.Alignment
	// Fill is the default fill character. Defaults to a space.
	Fill rune
	// Truncation is the default policy for values wider than their
	// window.
	Truncation schema.Truncation
}

func (o Options) normalized() Options {
	if o.Fill == 0 {
		o.Fill = ' '
	}
	return o
}

func (o Options) validate() error {
	if o.PreambleLength < 0 {
		return errors.New(errors.ErrorTypeConfig, "preamble length cannot be negative")
	}
	return nil
}

// defaults is the window carrying the format-wide settings.
func (o Options) defaults() schema.Window {
	return schema.Window{Alignment: o.Alignment, Fill: o.Fill, Truncation: o.Truncation}
}

func (o Options) writeRecordSeparator() string {
	if o.RecordSeparator == "" {
		return "\n"
	}
	return o.RecordSeparator
}
