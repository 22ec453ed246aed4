// Package delimited implements the separator-delimited record shape:
// a pull-based tokenizer that understands quoting, escaping, and
// multi-character separators, plus a schema-driven Reader and Writer.
package delimited

import (
	"strings"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

// EscapePolicy selects how a literal quote character is represented inside
// a quoted field.
type EscapePolicy int

const (
	// EscapeDoubling treats a doubled quote inside a quoted field as a
	// literal quote. Default.
	EscapeDoubling EscapePolicy = iota
	// EscapeBackslash treats backslash-quote and backslash-backslash as
	// escapes inside a quoted field.
	EscapeBackslash
)

// Options is the immutable per-session configuration for delimited
// reading and writing. The zero value selects comma separation, double
// quotes, doubled-quote escaping, and per-record line-ending detection.
type Options struct {
	// Separator is the field separator token. May be multi-character.
	// Defaults to ",".
	Separator string
	// Quote is the quote character. Defaults to '"'.
	Quote rune
	// Escape selects the quote escaping policy.
	Escape EscapePolicy
	// RecordSeparator is the record separator token. When empty, readers
	// re-detect "\r\n", "\n", or "\r" per record (tolerating mixed line
	// endings) and writers use "\n". When set, only that token terminates
	// records.
	RecordSeparator string
	// FirstRecordIsSchema consumes the first record as a header: with an
	// explicit schema its field count is reconciled, without one an
	// all-text schema is built from the header names. Writers emit the
	// header before the first record.
	FirstRecordIsSchema bool
	// PreambleLength is a number of characters skipped exactly once before
	// the first record.
	PreambleLength int
}

// normalized returns a copy with defaults applied.
func (o Options) normalized() Options {
	if o.Separator == "" {
		o.Separator = ","
	}
	if o.Quote == 0 {
		o.Quote = '"'
	}
	return o
}

// validate rejects configurations that make records ambiguous. Raised at
// construction, never at read time.
func (o Options) validate() error {
	if o.PreambleLength < 0 {
		return errors.New(errors.ErrorTypeConfig, "preamble length cannot be negative")
	}
	if o.RecordSeparator != "" {
		if o.Separator == o.RecordSeparator {
			return errors.New(errors.ErrorTypeConfig, "separator cannot equal the record separator")
		}
		if strings.HasPrefix(o.Separator, o.RecordSeparator) {
			return errors.New(errors.ErrorTypeConfig, "record separator cannot be a prefix of the separator")
		}
		if strings.ContainsRune(o.RecordSeparator, o.Quote) {
			return errors.New(errors.ErrorTypeConfig, "record separator cannot contain the quote character")
		}
	}
	if strings.ContainsRune(o.Separator, o.Quote) {
		return errors.New(errors.ErrorTypeConfig, "separator cannot contain the quote character")
	}
	if o.Escape != EscapeDoubling && o.Escape != EscapeBackslash {
		return errors.New(errors.ErrorTypeConfig, "unknown escape policy")
	}
	return nil
}

// writeRecordSeparator is the token writers emit between records.
func (o Options) writeRecordSeparator() string {
	if o.RecordSeparator == "" {
		return "\n"
	}
	return o.RecordSeparator
}
