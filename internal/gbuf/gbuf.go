// Package gbuf implements an append-only, exponentially growing byte
// buffer, the scratch space every text-producing component in aushape-go
// writes into before it is sliced into gbtree nodes.
package gbuf

import "fmt"

const minGrow = 64

// Buffer is a reallocating byte vector. The zero value is ready to use.
// Buffer never shrinks; Reset only rewinds the length.
type Buffer struct {
	b []byte
}

// New returns a Buffer pre-sized to hold at least capacity bytes.
func New(capacity int) *Buffer {
	if capacity < 0 {
		capacity = 0
	}
	return &Buffer{b: make([]byte, 0, capacity)}
}

// Len returns the number of bytes currently held.
func (buf *Buffer) Len() int {
	return len(buf.b)
}

// Bytes returns the buffer's contents. The slice is valid until the next
// mutating call.
func (buf *Buffer) Bytes() []byte {
	return buf.b
}

// Reset empties the buffer without releasing its backing array.
func (buf *Buffer) Reset() {
	buf.b = buf.b[:0]
}

func (buf *Buffer) grow(extra int) {
	need := len(buf.b) + extra
	if need <= cap(buf.b) {
		return
	}
	newCap := cap(buf.b)
	if newCap < minGrow {
		newCap = minGrow
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(buf.b), newCap)
	copy(grown, buf.b)
	buf.b = grown
}

// AppendByte appends a single byte.
func (buf *Buffer) AppendByte(c byte) {
	buf.grow(1)
	buf.b = append(buf.b, c)
}

// AppendBytes appends a span of bytes.
func (buf *Buffer) AppendBytes(p []byte) {
	buf.grow(len(p))
	buf.b = append(buf.b, p...)
}

// AppendString appends a string's bytes.
func (buf *Buffer) AppendString(s string) {
	buf.grow(len(s))
	buf.b = append(buf.b, s...)
}

// AppendBuffer appends the full contents of another Buffer.
func (buf *Buffer) AppendBuffer(other *Buffer) {
	buf.AppendBytes(other.Bytes())
}

// AppendFormat appends a fmt.Sprintf-formatted string.
func (buf *Buffer) AppendFormat(format string, args ...interface{}) {
	buf.b = fmt.Appendf(buf.b, format, args...)
}

// PutAt writes p at the given byte offset, zero-padding the buffer if the
// offset lies beyond the current length. Existing bytes at [at, at+len(p))
// are overwritten.
func (buf *Buffer) PutAt(at int, p []byte) {
	end := at + len(p)
	if end > len(buf.b) {
		old := len(buf.b)
		buf.grow(end - old)
		buf.b = buf.b[:end]
		for i := old; i < at; i++ {
			buf.b[i] = 0
		}
	}
	copy(buf.b[at:end], p)
}

// Truncate shortens the buffer to n bytes. It panics if n is out of range.
func (buf *Buffer) Truncate(n int) {
	if n < 0 || n > len(buf.b) {
		panic("gbuf: truncate out of range")
	}
	buf.b = buf.b[:n]
}

// Slice returns a copy-free view of buf[from:to].
func (buf *Buffer) Slice(from, to int) []byte {
	return buf.b[from:to]
}
