package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Ported from _examples/original_source/h11/tests/test_receivebuffer.py,
// which pins ReceiveBuffer's exact extraction semantics byte for byte.
func TestReceiveBuffer(t *testing.T) {
	b := NewReceiveBuffer()
	defer b.Release()

	assert.True(t, b.IsEmpty())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, []byte(""), b.AsBytes())

	b.Append([]byte("123"))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 3, b.Len())
	assert.Equal(t, []byte("123"), b.AsBytes())
	assert.Equal(t, []byte("123"), b.AsBytes())

	assert.Equal(t, []byte("12"), b.MaybeExtractAtMost(2))
	assert.False(t, b.IsEmpty())
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, []byte("3"), b.AsBytes())
	assert.Equal(t, []byte("3"), b.AsBytes())

	assert.Equal(t, []byte("3"), b.MaybeExtractAtMost(10))
	assert.Equal(t, []byte(""), b.AsBytes())

	assert.Nil(t, b.MaybeExtractAtMost(10))
	assert.True(t, b.IsEmpty())

	// maybe_extract_next_line
	b.Append([]byte("12345\n6789\r\n"))

	assert.Equal(t, []byte("12345\n"), b.MaybeExtractNextLine())
	assert.Equal(t, []byte("6789\r\n"), b.AsBytes())

	assert.Equal(t, []byte("6789\r\n"), b.MaybeExtractNextLine())
	assert.Equal(t, []byte(""), b.AsBytes())

	b.Append([]byte("12\r"))
	assert.Nil(t, b.MaybeExtractNextLine())
	assert.Equal(t, []byte("12\r"), b.AsBytes())

	// repeated searches for the same needle exercise the
	// pickup-where-we-left-off lookahead.
	b.Append([]byte("345\n\r"))
	assert.Equal(t, []byte("12\r345\n"), b.MaybeExtractNextLine())
	assert.Equal(t, []byte("\r"), b.AsBytes())

	b.Append([]byte("6789aaa123\n"))
	assert.Equal(t, []byte("\r6789aaa123\n"), b.MaybeExtractNextLine())
	assert.Equal(t, []byte(""), b.AsBytes())

	// maybe_extract_lines
	b.Append([]byte("123\r\na: b\r\nfoo:bar\r\n\r\ntrailing"))
	lines := b.MaybeExtractLines()
	assert.Equal(t, [][]byte{[]byte("123"), []byte("a: b"), []byte("foo:bar")}, lines)
	assert.Equal(t, []byte("trailing"), b.AsBytes())

	assert.Nil(t, b.MaybeExtractLines())

	b.Append([]byte("\r\n\r"))
	assert.Nil(t, b.MaybeExtractLines())

	assert.Equal(t, []byte("trailing\r\n\r"), b.MaybeExtractAtMost(100))
	assert.True(t, b.IsEmpty())

	// Empty body case (end of chunked encoding with no trailers).
	b.Append([]byte("\r\ntrailing"))
	assert.Equal(t, [][]byte{}, b.MaybeExtractLines())
	assert.Equal(t, []byte("trailing"), b.AsBytes())
}

func TestReceiveBufferToleratesMixedLineDelimiters(t *testing.T) {
	cases := map[string][]string{
		"with_crlf_delimiter": {
			"HTTP/1.1 200 OK\r\n",
			"Content-type: text/plain\r\n",
			"Connection: close\r\n",
			"\r\n",
			"Some body",
		},
		"with_lf_only_delimiter": {
			"HTTP/1.1 200 OK\n",
			"Content-type: text/plain\n",
			"Connection: close\n",
			"\n",
			"Some body",
		},
		"with_mixed_crlf_and_lf": {
			"HTTP/1.1 200 OK\n",
			"Content-type: text/plain\r\n",
			"Connection: close\n",
			"\n",
			"Some body",
		},
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			b := NewReceiveBuffer()
			defer b.Release()
			for _, line := range data {
				b.Append([]byte(line))
			}

			lines := b.MaybeExtractLines()
			assert.Equal(t, [][]byte{
				[]byte("HTTP/1.1 200 OK"),
				[]byte("Content-type: text/plain"),
				[]byte("Connection: close"),
			}, lines)
			assert.Equal(t, []byte("Some body"), b.AsBytes())
		})
	}
}
