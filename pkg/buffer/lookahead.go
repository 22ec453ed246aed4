// Package buffer provides the streaming character-buffering layer used by
// the record tokenizers: a growable circular lookahead buffer plus a token
// matcher that recognizes ambiguous multi-character tokens with rollback.
//
// Nothing in this package is safe for concurrent use. Each reader owns its
// buffer exclusively, which keeps every operation allocation-free outside
// of capacity growth.
package buffer

const defaultCapacity = 64

// LookaheadBuffer is a growable circular buffer of pending runes. It
// supports peeking at any logical offset without consuming, which is what
// allows the token matcher to roll back a failed multi-character match
// without data loss.
type LookaheadBuffer struct {
	items []rune
	front int
	count int
}

// NewLookaheadBuffer creates a buffer with the given initial capacity.
// Capacities below one fall back to the default.
func NewLookaheadBuffer(capacity int) *LookaheadBuffer {
	if capacity < 1 {
		capacity = defaultCapacity
	}
	return &LookaheadBuffer{items: make([]rune, capacity)}
}

// Len returns the number of logical elements not yet dequeued.
func (b *LookaheadBuffer) Len() int {
	return b.count
}

// Enqueue appends a single rune at the back. Amortized O(1): on overflow
// the buffer doubles its capacity and re-linearizes the (possibly wrapped)
// contents starting at index 0.
func (b *LookaheadBuffer) Enqueue(r rune) {
	if b.count == len(b.items) {
		b.grow(b.count + 1)
	}
	b.items[(b.front+b.count)%len(b.items)] = r
	b.count++
}

// EnqueueRange bulk-appends runes at the back, growing at most once. This
// is the path used for block reads from the source, avoiding per-character
// overhead.
func (b *LookaheadBuffer) EnqueueRange(rs []rune) {
	if len(rs) == 0 {
		return
	}
	if b.count+len(rs) > len(b.items) {
		b.grow(b.count + len(rs))
	}
	for _, r := range rs {
		b.items[(b.front+b.count)%len(b.items)] = r
		b.count++
	}
}

// Peek returns the logical element at offset from the front without
// consuming it. Peek panics when offset is not below Len; callers are
// expected to have filled the buffer first.
func (b *LookaheadBuffer) Peek(offset int) rune {
	if offset < 0 || offset >= b.count {
		panic("buffer: peek offset out of range")
	}
	return b.items[(b.front+offset)%len(b.items)]
}

// Dequeue removes and returns the front element. It panics on an empty
// buffer.
func (b *LookaheadBuffer) Dequeue() rune {
	if b.count == 0 {
		panic("buffer: dequeue from empty buffer")
	}
	r := b.items[b.front]
	b.front = (b.front + 1) % len(b.items)
	b.count--
	return r
}

// DequeueN advances the front pointer past n elements. It panics when n
// exceeds Len.
func (b *LookaheadBuffer) DequeueN(n int) {
	if n < 0 || n > b.count {
		panic("buffer: dequeue count out of range")
	}
	b.front = (b.front + n) % len(b.items)
	b.count -= n
}

// grow doubles capacity until it covers min, copying the logical contents
// to the start of the new backing slice so front becomes 0 again.
func (b *LookaheadBuffer) grow(min int) {
	capacity := len(b.items) * 2
	if capacity < min {
		capacity = min
	}
	items := make([]rune, capacity)
	for i := 0; i < b.count; i++ {
		items[i] = b.items[(b.front+i)%len(b.items)]
	}
	b.items = items
	b.front = 0
}
