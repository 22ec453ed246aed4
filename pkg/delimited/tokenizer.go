package delimited

import (
	"context"
	"io"
	"strings"

	"github.com/vandenbergjp/FlatFiles/pkg/buffer"
	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

var (
	crlf = []rune("\r\n")
	lf   = []rune("\n")
	cr   = []rune("\r")
)

// tokenizer consumes the buffered character stream and yields one raw
// record per call. It is purely pull-based: every record is produced
// synchronously in response to readRecord, and nothing is consumed beyond
// the record's terminating separator.
type tokenizer struct {
	matcher      *buffer.TokenMatcher
	opts         Options
	separator    []rune
	recordSep    []rune // nil means per-record auto-detection
	quote        rune
	recordNumber int
	preamble     int
}

// newTokenizer expects opts to be normalized and validated.
func newTokenizer(r io.Reader, opts Options) *tokenizer {
	t := &tokenizer{
		matcher:   buffer.NewTokenMatcher(r),
		opts:      opts,
		separator: []rune(opts.Separator),
		quote:     opts.Quote,
		preamble:  opts.PreambleLength,
	}
	if opts.RecordSeparator != "" {
		t.recordSep = []rune(opts.RecordSeparator)
	}
	return t
}

// RecordNumber is the one-based number of the last record produced,
// counting skipped blank records.
func (t *tokenizer) RecordNumber() int {
	return t.recordNumber
}

// readRecord returns the next record's raw fields, or io.EOF at end of
// stream. Blank records (a single empty unquoted field, i.e. an empty
// line) are skipped; a quoted empty field is still a record.
func (t *tokenizer) readRecord(ctx context.Context) ([]string, error) {
	if t.preamble > 0 {
		if _, err := t.matcher.Skip(ctx, t.preamble); err != nil {
			return nil, err
		}
		t.preamble = 0
	}
	for {
		eos, err := t.matcher.IsEndOfStream(ctx)
		if err != nil {
			return nil, err
		}
		if eos {
			return nil, io.EOF
		}
		t.recordNumber++
		fields, sawQuote, err := t.parseRecord(ctx)
		if err != nil {
			// A malformed record must not leave the stream mid-record:
			// once the error is handled, the next read starts at the
			// next record boundary instead of tokenizing the tail of
			// this one as fresh data.
			if errors.IsType(err, errors.ErrorTypeSyntax) {
				t.skipToRecordBoundary(ctx)
			}
			return nil, err
		}
		if len(fields) == 1 && fields[0] == "" && !sawQuote {
			continue
		}
		return fields, nil
	}
}

// parseRecord tokenizes one record. The boolean reports whether any field
// in the record was quoted.
func (t *tokenizer) parseRecord(ctx context.Context) ([]string, bool, error) {
	var fields []string
	var field strings.Builder
	sawQuote := false
	fieldQuoted := false

	for {
		eos, err := t.matcher.IsEndOfStream(ctx)
		if err != nil {
			return nil, false, err
		}
		if eos {
			fields = append(fields, field.String())
			return fields, sawQuote, nil
		}

		done, err := t.matchRecordSeparator(ctx)
		if err != nil {
			return nil, false, err
		}
		if done {
			fields = append(fields, field.String())
			return fields, sawQuote, nil
		}

		matched, err := t.matcher.TryMatch(ctx, t.separator)
		if err != nil {
			return nil, false, err
		}
		if matched {
			fields = append(fields, field.String())
			field.Reset()
			fieldQuoted = false
			continue
		}

		r, err := t.matcher.Next(ctx)
		if err != nil {
			return nil, false, err
		}
		if r == t.quote && field.Len() == 0 && !fieldQuoted {
			content, err := t.parseQuoted(ctx)
			if err != nil {
				return nil, false, err
			}
			field.WriteString(content)
			fieldQuoted = true
			sawQuote = true
			continue
		}
		if fieldQuoted {
			return nil, false, errors.Newf(errors.ErrorTypeSyntax,
				"unexpected character %q after quoted field in record %d", r, t.recordNumber).
				WithRecord(t.recordNumber)
		}
		field.WriteRune(r)
	}
}

// parseQuoted consumes a quoted field's content; the opening quote has
// already been consumed. Separator and record separator tokens are literal
// inside quotes.
func (t *tokenizer) parseQuoted(ctx context.Context) (string, error) {
	var content strings.Builder
	for {
		r, err := t.matcher.Next(ctx)
		if err == io.EOF {
			return "", errors.Newf(errors.ErrorTypeSyntax,
				"unterminated quoted field in record %d", t.recordNumber).
				WithRecord(t.recordNumber)
		}
		if err != nil {
			return "", err
		}
		if t.opts.Escape == EscapeBackslash && r == '\\' {
			escaped, err := t.matcher.Next(ctx)
			if err == io.EOF {
				return "", errors.Newf(errors.ErrorTypeSyntax,
					"unterminated quoted field in record %d", t.recordNumber).
					WithRecord(t.recordNumber)
			}
			if err != nil {
				return "", err
			}
			content.WriteRune(escaped)
			continue
		}
		if r == t.quote {
			if t.opts.Escape == EscapeDoubling {
				doubled, err := t.matcher.TryMatch(ctx, []rune{t.quote})
				if err != nil {
					return "", err
				}
				if doubled {
					content.WriteRune(t.quote)
					continue
				}
			}
			return content.String(), nil
		}
		content.WriteRune(r)
	}
}

// skipToRecordBoundary drains the malformed record's remaining characters
// up to and including the next record separator, or to end of stream. A
// failure here is left for the next read to surface.
func (t *tokenizer) skipToRecordBoundary(ctx context.Context) {
	for {
		eos, err := t.matcher.IsEndOfStream(ctx)
		if err != nil || eos {
			return
		}
		done, err := t.matchRecordSeparator(ctx)
		if err != nil || done {
			return
		}
		if _, err := t.matcher.Next(ctx); err != nil {
			return
		}
	}
}

// matchRecordSeparator consumes the record separator at the head of the
// stream, if present. With no fixed separator configured, the line ending
// is re-detected per record so mixed endings are tolerated.
func (t *tokenizer) matchRecordSeparator(ctx context.Context) (bool, error) {
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
