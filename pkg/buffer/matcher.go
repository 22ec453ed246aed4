package buffer

import (
	"bufio"
	"context"
	"io"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

// fillBlock is how many runes a single fill pulls from the source beyond
// the immediate requirement, amortizing the per-rune decode cost.
const fillBlock = 256

// TokenMatcher wraps a raw character source plus a LookaheadBuffer to
// support ambiguous multi-character token recognition. A failed match
// leaves every buffered character available for subsequent reads, which is
// what disambiguates e.g. a two-character record separator from a
// one-character prefix that is itself valid content.
//
// Only the fill step performs I/O and observes context cancellation; all
// matching is synchronous CPU work over the buffer.
type TokenMatcher struct {
	src     *bufio.Reader
	buf     *LookaheadBuffer
	srcDone bool
}

// NewTokenMatcher creates a matcher over r. The matcher never closes r.
func NewTokenMatcher(r io.Reader) *TokenMatcher {
	return &TokenMatcher{
		src: bufio.NewReader(r),
		buf: NewLookaheadBuffer(0),
	}
}

// fill ensures at least n runes are buffered, or that the source is known
// to be exhausted. Cancellation is checked before each blocking read.
func (m *TokenMatcher) fill(ctx context.Context, n int) error {
	if m.buf.Len() >= n || m.srcDone {
		return nil
	}
	block := make([]rune, 0, fillBlock)
	want := n - m.buf.Len() + fillBlock
	for i := 0; i < want; i++ {
		if err := ctx.Err(); err != nil {
			m.buf.EnqueueRange(block)
			return err
		}
		r, _, err := m.src.ReadRune()
		if err == io.EOF {
			m.srcDone = true
			break
		}
		if err != nil {
			m.buf.EnqueueRange(block)
			return errors.Wrap(err, errors.ErrorTypeIO, "failed to read from source")
		}
		block = append(block, r)
		if m.buf.Len()+len(block) >= n && m.src.Buffered() == 0 {
			// Enough to satisfy the caller and nothing decodable without
			// blocking again.
			break
		}
	}
	m.buf.EnqueueRange(block)
	return nil
}

// IsEndOfStream reports whether the stream is exhausted: true only when
// the buffer is empty and the underlying source has no more data.
func (m *TokenMatcher) IsEndOfStream(ctx context.Context) (bool, error) {
	if m.buf.Len() > 0 {
		return false, nil
	}
	if err := m.fill(ctx, 1); err != nil {
		return false, err
	}
	return m.buf.Len() == 0 && m.srcDone, nil
}

// TryMatch attempts to match token against the next len(token) characters.
// On success it consumes exactly those characters and returns true. On
// failure nothing is consumed. Empty tokens never match.
func (m *TokenMatcher) TryMatch(ctx context.Context, token []rune) (bool, error) {
	if len(token) == 0 {
		return false, nil
	}
	if err := m.fill(ctx, len(token)); err != nil {
		return false, err
	}
	if m.buf.Len() < len(token) {
		return false, nil
	}
	for i, r := range token {
		if m.buf.Peek(i) != r {
			return false, nil
		}
	}
	m.buf.DequeueN(len(token))
	return true, nil
}

// Next consumes and returns one character. It returns io.EOF once the
// stream is exhausted.
func (m *TokenMatcher) Next(ctx context.Context) (rune, error) {
	if err := m.fill(ctx, 1); err != nil {
		return 0, err
	}
	if m.buf.Len() == 0 {
		return 0, io.EOF
	}
	return m.buf.Dequeue(), nil
}

// Peek returns the next character without consuming it. It returns io.EOF
// once the stream is exhausted.
func (m *TokenMatcher) Peek(ctx context.Context) (rune, error) {
	if err := m.fill(ctx, 1); err != nil {
		return 0, err
	}
	if m.buf.Len() == 0 {
		return 0, io.EOF
	}
	return m.buf.Peek(0), nil
}

// Skip discards up to n characters and returns how many were discarded.
// Used to skip a configured preamble exactly once.
func (m *TokenMatcher) Skip(ctx context.Context, n int) (int, error) {
	skipped := 0
	for skipped < n {
		if _, err := m.Next(ctx); err == io.EOF {
			return skipped, nil
		} else if err != nil {
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}
