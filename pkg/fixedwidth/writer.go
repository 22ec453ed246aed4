package fixedwidth

import (
	"bufio"
	"context"
	"io"

	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/logger"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"

	"go.uber.org/zap"
)

// Writer formats typed values under a schema and writes fixed-width
// records, padding or truncating each field to its window.
type Writer struct {
	out          *bufio.Writer
	sch          *schema.Schema
	opts         Options
	windows      []schema.Window
	recordSep    string
	recordNumber int
	log          *zap.Logger
}

var _ core.Writer = (*Writer)(nil)

// NewWriter creates a fixed-width writer to w. The window layout is
// resolved and checked here, at construction. The writer never closes w;
// call Flush before discarding it.
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
	windows, err := sch.Windows(o.defaults())
	if err != nil {
		return nil, err
	}
	return &Writer{
		out:       bufio.NewWriter(w),
		sch:       sch,
		opts:      o,
		windows:   windows,
		recordSep: o.writeRecordSeparator(),
		log:       logger.Named("fixedwidth.writer"),
	}, nil
}

// Schema returns the schema governing the writer.
func (w *Writer) Schema() *schema.Schema {
	return w.sch
}

// RecordNumber is the number of records written so far.
func (w *Writer) RecordNumber() int {
	return w.recordNumber
}

// Write formats one record of logical values, fits each field to its
// window, and writes the line followed by the record separator.
func (w *Writer) Write(ctx context.Context, values []interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.recordNumber++
	fields, err := w.sch.FormatValues(&schema.RecordContext{RecordNumber: w.recordNumber}, values)
	if err != nil {
		return decorate(err, w.recordNumber)
	}
	for i, field := range fields {
		if _, err := w.out.WriteString(fit(field, w.windows[i])); err != nil {
			return errors.Wrap(err, errors.ErrorTypeIO, "failed to write field")
		}
	}
	if _, err := w.out.WriteString(w.recordSep); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to write record separator")
	}
	return nil
}

// Flush pushes buffered output to the underlying stream. Safe to call
// even when nothing was written.
func (w *Writer) Flush() error {
	if err := w.out.Flush(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to flush output")
	}
	return nil
}
