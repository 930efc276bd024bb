package engine

import (
	"bytes"

	"github.com/valyala/bytebufferpool"
)

// ReceiveBuffer is an append-only byte container with O(1) amortized
// append and cheap prefix removal (Component A, spec.md §4.A).
//
// Grounded on _examples/original_source/h11/_receivebuffer.py's
// ReceiveBuffer, whose exact extraction semantics are pinned by
// tests/test_receivebuffer.py (ported in buffer_test.go). The backing
// array is a pooled *bytebufferpool.ByteBuffer, matching the teacher's
// bytebuffer.go pooling idiom, rather than a bare growable slice.
type ReceiveBuffer struct {
	buf *bytebufferpool.ByteBuffer

	// consumed is how many leading bytes of buf.B are logically gone
	// (removed lazily; compacted at the start of the next Append so
	// that extraction itself never has to memmove).
	consumed int

	// lookahead is the resume offset for MaybeExtractNextLine's scan,
	// relative to consumed, so repeated probing is O(total bytes).
	lookahead int
}

// NewReceiveBuffer returns an empty buffer backed by a pooled arena.
func NewReceiveBuffer() *ReceiveBuffer {
	return &ReceiveBuffer{buf: bytebufferpool.Get()}
}

// Release returns the backing arena to the pool. The ReceiveBuffer
// must not be used afterward.
func (b *ReceiveBuffer) Release() {
	bytebufferpool.Put(b.buf)
	b.buf = nil
}

func (b *ReceiveBuffer) live() []byte {
	return b.buf.B[b.consumed:]
}

// compact drops already-consumed bytes so that Append's underlying
// slice doesn't grow without bound across a long-lived connection.
func (b *ReceiveBuffer) compact() {
	if b.consumed == 0 {
		return
	}
	n := copy(b.buf.B, b.buf.B[b.consumed:])
	b.buf.B = b.buf.B[:n]
	b.consumed = 0
	b.lookahead = 0
}

// Append adds bytes to the buffer. Previously extracted slices are
// independent copies (extraction always copies, see extractCopy) so
// Append never invalidates them.
func (b *ReceiveBuffer) Append(data []byte) {
	b.compact()
	b.buf.B = append(b.buf.B, data...)
}

// Len returns the number of unconsumed bytes.
func (b *ReceiveBuffer) Len() int { return len(b.live()) }

// IsEmpty reports whether there are no unconsumed bytes.
func (b *ReceiveBuffer) IsEmpty() bool { return b.Len() == 0 }

// AsBytes returns the unconsumed bytes. The returned slice aliases the
// buffer's internal storage and is only valid until the next mutating
// call (Append or any MaybeExtract* method).
func (b *ReceiveBuffer) AsBytes() []byte { return b.live() }

func (b *ReceiveBuffer) extractCopy(n int) []byte {
	out := make([]byte, n)
	copy(out, b.live()[:n])
	b.consumed += n
	b.lookahead = 0
	return out
}

// MaybeExtractAtMost consumes up to n bytes and returns them, or nil
// only when the buffer is empty. If fewer than n bytes are available,
// all of them are returned.
func (b *ReceiveBuffer) MaybeExtractAtMost(n int) []byte {
	avail := b.Len()
	if avail == 0 {
		return nil
	}
	if n > avail {
		n = avail
	}
	return b.extractCopy(n)
}

// MaybeExtractNextLine consumes through the next '\n' (inclusive) and
// returns it, or nil if no newline has arrived yet. The scan resumes
// from the previous call's end point so that feeding a long line one
// byte at a time remains linear overall (spec.md §4.A).
func (b *ReceiveBuffer) MaybeExtractNextLine() []byte {
	live := b.live()
	if b.lookahead > len(live) {
		b.lookahead = len(live)
	}
	idx := bytes.IndexByte(live[b.lookahead:], '\n')
	if idx < 0 {
		b.lookahead = len(live)
		return nil
	}
	n := b.lookahead + idx + 1
	return b.extractCopy(n)
}

// MaybeExtractLines consumes a header block up to and including its
// terminating blank line, returning each line with its trailing
// "\r?\n" stripped (empty slice if the block itself is empty). Returns
// nil if the terminator hasn't arrived yet. Tolerates both "\r\n" and
// bare "\n" delimiters within the block (spec.md §4.A, §6).
func (b *ReceiveBuffer) MaybeExtractLines() [][]byte {
	live := b.live()

	// Empty header block: buffer starts with the blank-line terminator.
	if bytes.HasPrefix(live, []byte("\r\n")) {
		b.extractCopy(2)
		return [][]byte{}
	}
	if len(live) > 0 && live[0] == '\n' {
		b.extractCopy(1)
		return [][]byte{}
	}

	end := findBlankLine(live)
	if end < 0 {
		return nil
	}

	block := b.extractCopy(end)
	lines := make([][]byte, 0, 8)
	for len(block) > 0 {
		idx := bytes.IndexByte(block, '\n')
		if idx < 0 {
			break
		}
		line := block[:idx]
		block = block[idx+1:]
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(line) == 0 && len(block) == 0 {
			// trailing blank-line terminator, not a header line
			break
		}
		lines = append(lines, line)
	}
	return lines
}

// findBlankLine returns the length of the prefix of b up to and
// including the first blank-line terminator ("\r\n\r\n" or "\n\n" or
// "\r\n\n"/"\n\r\n"), or -1 if none is present yet.
func findBlankLine(b []byte) int {
	for i := 0; i < len(b); i++ {
		if b[i] != '\n' {
			continue
		}
		// b[:i+1] ends the current line; is the next line blank?
		rest := b[i+1:]
		if len(rest) >= 1 && rest[0] == '\n' {
			return i + 2
		}
		if len(rest) >= 2 && rest[0] == '\r' && rest[1] == '\n' {
			return i + 3
		}
	}
	return -1
}
