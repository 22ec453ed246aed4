package delimited

import (
	"bufio"
	"context"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/logger"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

// Writer formats typed values under a schema and writes delimited records.
// Fields containing the separator, the quote, the record separator, or a
// line ending are quoted, with quotes escaped per the configured policy.
type Writer struct {
	out           *bufio.Writer
	sch           *schema.Schema
	opts          Options
	recordSep     string
	recordNumber  int
	headerWritten bool
	log           *zap.Logger
}

var _ core.Writer = (*Writer)(nil)

// NewWriter creates a writer to w. A nil opts selects the defaults. The
// writer never closes w; call Flush before discarding it.
func NewWriter(w io.Writer, sch *schema.Schema, opts *Options) (*Writer, error) {
	if w == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "writer requires a sink stream")
	}
	if sch == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "writer requires a schema")
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	o = o.normalized()
	if err := o.validate(); err != nil {
		return nil, err
	}
	return &Writer{
		out:       bufio.NewWriter(w),
		sch:       sch,
		opts:      o,
		recordSep: o.writeRecordSeparator(),
		log:       logger.Named("delimited.writer"),
	}, nil
}

// Schema returns the schema governing the writer.
func (w *Writer) Schema() *schema.Schema {
	return w.sch
}

// RecordNumber is the number of records written so far, header excluded.
func (w *Writer) RecordNumber() int {
	return w.recordNumber
}

// WriteSchema writes the header record of physical column names. Called
// implicitly before the first record when FirstRecordIsSchema is set.
func (w *Writer) WriteSchema(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.headerWritten {
		return errors.New(errors.ErrorTypeState, "header already written")
	}
	w.headerWritten = true
	return w.writeRecord(w.sch.PhysicalNames())
}

// Write formats one record of logical values and writes it followed by
// the record separator.
func (w *Writer) Write(ctx context.Context, values []interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if w.opts.FirstRecordIsSchema && !w.headerWritten {
		if err := w.WriteSchema(ctx); err != nil {
			return err
		}
	}
	w.recordNumber++
	fields, err := w.sch.FormatValues(&schema.RecordContext{RecordNumber: w.recordNumber}, values)
	if err != nil {
		return decorate(err, w.recordNumber)
	}
	return w.writeRecord(fields)
}

// Flush pushes buffered output to the underlying stream. Safe to call
// even when nothing was written.
func (w *Writer) Flush() error {
	if err := w.out.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to flush output")
	}
	return nil
}

func (w *Writer) writeRecord(fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if _, err := w.out.WriteString(w.opts.Separator); err != nil {
				return errors.Wrap(err, errors.ErrorTypeIO, "failed to write separator")
			}
		}
		if _, err := w.out.WriteString(w.encode(field)); err != nil {
			return errors.Wrap(err, errors.ErrorTypeIO, "failed to write field")
		}
	}
	if _, err := w.out.WriteString(w.recordSep); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write record separator")
	}
	return nil
}

// encode quotes the field when its content would otherwise be read back
// as structure.
func (w *Writer) encode(field string) string {
	if !w.needsQuoting(field) {
		return field
	}
	quote := string(w.opts.Quote)
	var escaped string
	switch w.opts.Escape {
	case EscapeBackslash:
		escaped = strings.ReplaceAll(field, `\`, `\\`)
		escaped = strings.ReplaceAll(escaped, quote, `\`+quote)
	default:
		escaped = strings.ReplaceAll(field, quote, quote+quote)
	}
	return quote + escaped + quote
}

func (w *Writer) needsQuoting(field string) bool {
	if strings.Contains(field, w.opts.Separator) ||
		strings.ContainsRune(field, w.opts.Quote) ||
		strings.Contains(field, w.recordSep) {
		return true
	}
	// Bare line endings would split the record regardless of the
	// configured record separator.
	return strings.ContainsAny(field, "\r\n")
}
