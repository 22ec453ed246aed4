package fixedwidth

import (
	"context"
	stderrors "errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/vandenbergjp/FlatFiles/pkg/buffer"
	"github.com/vandenbergjp/FlatFiles/pkg/core"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
	"github.com/vandenbergjp/FlatFiles/pkg/logger"
	"github.com/vandenbergjp/FlatFiles/pkg/schema"
)

var (
	crlf = []rune("\r\n")
	lf   = []rune("\n")
	cr   = []rune("\r")
)

type readerState int

const (
	stateInitial readerState = iota
	stateActive
	stateExhausted
	stateFailed
)

// lineTokenizer yields one raw line per call. There is no quoting in the
// fixed-width shape; a line runs to the record separator or end of stream.
type lineTokenizer struct {
	matcher      *buffer.TokenMatcher
	recordSep    []rune // nil means per-record auto-detection
	recordNumber int
	preamble     int
}

func (t *lineTokenizer) readLine(ctx context.Context) (string, error) {
	if t.preamble > 0 {
		if _, err := t.matcher.Skip(ctx, t.preamble); err != nil {
			return "", err
		}
		t.preamble = 0
	}
	for {
		eos, err := t.matcher.IsEndOfStream(ctx)
		if err != nil {
			return "", err
		}
		if eos {
			return "", io.EOF
		}
		t.recordNumber++
		var line strings.Builder
		for {
			eos, err := t.matcher.IsEndOfStream(ctx)
			if err != nil {
				return "", err
			}
			if eos {
				break
			}
			done, err := t.matchRecordSeparator(ctx)
			if err != nil {
				return "", err
			}
			if done {
				break
			}
			r, err := t.matcher.Next(ctx)
			if err != nil {
				return "", err
			}
			line.WriteRune(r)
		}
		if line.Len() == 0 {
			// Blank line, not a record.
			continue
		}
		return line.String(), nil
	}
}

func (t *lineTokenizer) matchRecordSeparator(ctx context.Context) (bool, error) {
	if t.recordSep != nil {
		return t.matcher.TryMatch(ctx, t.recordSep)
	}
	for _, candidate := range [][]rune{crlf, lf, cr} {
		matched, err := t.matcher.TryMatch(ctx, candidate)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// Reader reads fixed-width records and converts them to typed values. The
// schema's per-column windows, merged with the format-wide defaults,
// define the physical layout; every physical column must carry a window.
type Reader struct {
	tok        *lineTokenizer
	sch        *schema.Schema
	selector   *schema.Selector
	opts       Options
	windows    []schema.Window // nil when dynamic
	totalWidth int
	onError    core.ErrorHandler
	inspect    core.RecordInspector

	values     []interface{}
	lastSchema *schema.Schema
	state      readerState
	log        *zap.Logger
}

var _ core.Reader = (*Reader)(nil)

// NewReader creates a fixed-width reader over r using a fixed schema. The
// window layout is resolved and checked here, at construction.
func NewReader(r io.Reader, sch *schema.Schema, opts *Options) (*Reader, error) {
	if sch == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "reader requires a schema")
	}
	rd, err := newReader(r, opts)
	if err != nil {
		return nil, err
	}
	rd.sch = sch
	rd.windows, err = sch.Windows(rd.opts.defaults())
	if err != nil {
		return nil, err
	}
	for _, w := range rd.windows {
		rd.totalWidth += w.Width
	}
	return rd, nil
}

// NewDynamicReader creates a fixed-width reader whose schema is resolved
// per line by the selector. Predicates receive a single raw field holding
// the whole line, since the physical split depends on the schema chosen.
// Window layouts are resolved lazily per resolved schema.
func NewDynamicReader(r io.Reader, selector *schema.Selector, opts *Options) (*Reader, error) {
	if selector == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "dynamic reader requires a selector")
	}
	rd, err := newReader(r, opts)
	if err != nil {
		return nil, err
	}
	rd.selector = selector
	return rd, nil
}

func newReader(r io.Reader, opts *Options) (*Reader, error) {
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
	tok := &lineTokenizer{
		matcher:  buffer.NewTokenMatcher(r),
		preamble: o.PreambleLength,
	}
	if o.RecordSeparator != "" {
		tok.recordSep = []rune(o.RecordSeparator)
	}
	return &Reader{
		tok:  tok,
		opts: o,
		log:  logger.Named("fixedwidth.reader"),
	}, nil
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
	return r.tok.recordNumber
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
func (r *Reader) Read(ctx context.Context) (bool, error) {
	switch r.state {
	case stateFailed:
		return false, errors.New(errors.ErrorTypeState, "reader has failed; no further reads are possible")
	case stateExhausted:
		return false, errors.New(errors.ErrorTypeState, "reader is exhausted")
	}

	for {
		line, err := r.tok.readLine(ctx)
		if err == io.EOF {
			r.state = stateExhausted
			r.values = nil
			return false, nil
		}
		if err != nil {
			r.fail(err)
			return false, err
		}

		recordNumber := r.tok.recordNumber

		sch, windows, totalWidth := r.sch, r.windows, r.totalWidth
		if r.selector != nil {
			resolved, err := r.selector.Resolve([]string{line})
			if err != nil {
				r.fail(err)
				return false, err
			}
			windows, err = resolved.Windows(r.opts.defaults())
			if err != nil {
				r.fail(err)
				return false, err
			}
			totalWidth = 0
			for _, w := range windows {
				totalWidth += w.Width
			}
			sch = resolved
		}

		fields, err := extract(line, windows, totalWidth, recordNumber)
		if err != nil {
			if r.offer(err) {
				continue
			}
			r.fail(err)
			return false, err
		}

		if r.inspect != nil {
			copied := append([]string(nil), fields...)
			if !r.inspect(recordNumber, copied) {
				r.log.Debug("record skipped by inspector", zap.Int("record", recordNumber))
				continue
			}
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

// extract slices the line into exactly one window per physical column,
// unpadding each. A line shorter than the sum of widths is a syntax
// error; characters beyond the last window are ignored.
func extract(line string, windows []schema.Window, totalWidth, recordNumber int) ([]string, error) {
	runes := []rune(line)
	if len(runes) < totalWidth {
		return nil, errors.Newf(errors.ErrorTypeSyntax,
			"record %d is %d characters, layout requires %d", recordNumber, len(runes), totalWidth).
			WithRecord(recordNumber)
	}
	fields := make([]string, 0, len(windows))
	offset := 0
	for _, w := range windows {
		fields = append(fields, unpad(string(runes[offset:offset+w.Width]), w))
		offset += w.Width
	}
	return fields, nil
}

func (r *Reader) offer(err error) bool {
	if r.onError == nil || !errors.IsRecoverable(err) {
		return false
	}
	recordNumber := errors.RecordNumber(err)
	if recordNumber == 0 {
		recordNumber = r.tok.recordNumber
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
