package delimited

import (
	"context"
	stderrors "errors"
	"io"

	"go.uber.org/zap"

	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/logger"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

type readerState int

const (
	stateInitial readerState = iota
	stateActive
	stateExhausted
	stateFailed
)

// Reader reads delimited records and converts them to typed values under
// a schema, either fixed for the session or resolved per record through a
// schema.Selector.
type Reader struct {
	tok      *tokenizer
	sch      *schema.Schema
	selector *schema.Selector
	opts     Options
	onError  core.ErrorHandler
	inspect  core.RecordInspector

	values     []interface{}
	lastSchema *schema.Schema
	state      readerState
	headerDone bool
	log        *zap.Logger
}

var _ core.Reader = (*Reader)(nil)

// NewReader creates a reader over r using a fixed schema. A nil opts
// selects the defaults. The reader never closes r.
func NewReader(r io.Reader, sch *schema.Schema, opts *Options) (*Reader, error) {
	if sch == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "reader requires a schema")
	}
	return newReader(r, sch, nil, opts)
}

// NewHeaderReader creates a reader with no predefined schema: the first
// record is consumed as a header and an all-text nullable schema is built
// from its names. FirstRecordIsSchema is implied.
func NewHeaderReader(r io.Reader, opts *Options) (*Reader, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.FirstRecordIsSchema = true
	return newReader(r, nil, nil, &o)
}

// NewDynamicReader creates a reader whose schema is resolved per record by
// the selector, first match wins.
func NewDynamicReader(r io.Reader, selector *schema.Selector, opts *Options) (*Reader, error) {
	if selector == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "dynamic reader requires a selector")
	}
	return newReader(r, nil, selector, opts)
}

func newReader(r io.Reader, sch *schema.Schema, selector *schema.Selector, opts *Options) (*Reader, error) {
	if r == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "reader requires a source stream")
	}
	var o Options
	if opts != nil {
		o = *opts
	}
	o = o.normalized()
	if err := o.validate(); err != nil {
		return nil, err
	}
	rd := &Reader{
		tok:      newTokenizer(r, o),
		sch:      sch,
		selector: selector,
		opts:     o,
		log:      logger.Named("delimited.reader"),
	}
	rd.log.Debug("reader created",
		zap.String("separator", o.Separator),
		zap.Bool("header", o.FirstRecordIsSchema),
		zap.Bool("dynamic", selector != nil))
	return rd, nil
}

// OnError installs the record-level error callback.
func (r *Reader) OnError(h core.ErrorHandler) *Reader {
	r.onError = h
	return r
}

// OnRecord installs the raw record inspection hook.
func (r *Reader) OnRecord(i core.RecordInspector) *Reader {
	r.inspect = i
	return r
}

// RecordNumber is the one-based number of the last record seen.
func (r *Reader) RecordNumber() int {
	return r.tok.RecordNumber()
}

// Schema returns the schema that converted the last record, or the fixed
// schema when one was supplied.
func (r *Reader) Schema() *schema.Schema {
	if r.lastSchema != nil {
		return r.lastSchema
	}
	return r.sch
}

// Read advances to the next record, returning false at end of stream.
// Syntax, schema mismatch, and conversion errors are offered to the error
// callback; if handled the record is skipped and reading continues,
// otherwise the reader enters a terminal failed state.
func (r *Reader) Read(ctx context.Context) (bool, error) {
	switch r.state {
	case stateFailed:
		return false, errors.New(errors.ErrorTypeState, "reader has failed; no further reads are possible")
	case stateExhausted:
		return false, errors.New(errors.ErrorTypeState, "reader is exhausted")
	}

	for {
		fields, err := r.tok.readRecord(ctx)
		if err == io.EOF {
			r.state = stateExhausted
			r.values = nil
			return false, nil
		}
		if err != nil {
			if handled := r.offer(err); handled {
				continue
			}
			r.fail(err)
			return false, err
		}

		recordNumber := r.tok.RecordNumber()

		if r.opts.FirstRecordIsSchema && !r.headerDone {
			r.headerDone = true
			if err := r.consumeHeader(fields); err != nil {
				if r.offer(err) {
					continue
				}
				r.fail(err)
				return false, err
			}
			continue
		}

		if r.inspect != nil {
			copied := append([]string(nil), fields...)
			if !r.inspect(recordNumber, copied) {
				r.log.Debug("record skipped by inspector", zap.Int("record", recordNumber))
				continue
			}
		}

		sch := r.sch
		if r.selector != nil {
			resolved, err := r.selector.Resolve(fields)
			if err != nil {
				// Unresolvable schema is a configuration error: fatal,
				// never offered to the callback.
				r.fail(err)
				return false, err
			}
			sch = resolved
		}

		values, err := sch.ParseValues(&schema.RecordContext{RecordNumber: recordNumber}, fields)
		if err != nil {
			err = decorate(err, recordNumber)
			if r.offer(err) {
				continue
			}
			r.fail(err)
			return false, err
		}

		r.values = values
		r.lastSchema = sch
		r.state = stateActive
		return true, nil
	}
}

// Values returns a defensive copy of the last record's typed values.
func (r *Reader) Values() ([]interface{}, error) {
	switch r.state {
	case stateInitial:
		return nil, errors.New(errors.ErrorTypeState, "no record has been read")
	case stateExhausted:
		return nil, errors.New(errors.ErrorTypeState, "reader is exhausted")
	case stateFailed:
		return nil, errors.New(errors.ErrorTypeState, "reader has failed")
	}
	return append([]interface{}(nil), r.values...), nil
}

// consumeHeader handles the schema record. With a fixed schema the field
// count is reconciled; with a dynamic selector the header is skipped; with
// neither an all-text schema is built from the header names.
func (r *Reader) consumeHeader(fields []string) error {
	if r.sch != nil {
		if len(fields) != r.sch.PhysicalCount() {
			return errors.Newf(errors.ErrorTypeSchemaMismatch,
				"header has %d fields, schema expects %d", len(fields), r.sch.PhysicalCount()).
				WithRecord(r.tok.RecordNumber())
		}
		return nil
	}
	if r.selector != nil {
		return nil
	}
	sch, err := schema.AllText(fields)
	if err != nil {
		return err
	}
	r.sch = sch
	r.log.Debug("schema built from header", zap.Int("columns", sch.PhysicalCount()))
	return nil
}

// offer hands a recoverable error to the callback. It reports whether the
// error was marked handled.
func (r *Reader) offer(err error) bool {
	if r.onError == nil || !errors.IsRecoverable(err) {
		return false
	}
	recordNumber := errors.RecordNumber(err)
	if recordNumber == 0 {
		recordNumber = r.tok.RecordNumber()
	}
	if r.onError(recordNumber, err) {
		r.log.Debug("record error handled, skipping",
			zap.Int("record", recordNumber), zap.Error(err))
		return true
	}
	return false
}

func (r *Reader) fail(err error) {
	r.state = stateFailed
	r.values = nil
	r.log.Debug("reader failed", zap.Error(err))
}

// decorate attaches the record number to a conversion-layer error.
func decorate(err error, recordNumber int) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		e.WithRecord(recordNumber)
		return e
	}
	return err
}
