package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentLengthReader(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()

	r := newContentLengthReader(5)
	buf.Append([]byte("abc"))
	ev, ok, err := r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindData, ev.Kind)
	assert.Equal(t, []byte("abc"), ev.Data)

	buf.Append([]byte("de"))
	ev, ok, err = r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("de"), ev.Data)

	ev, ok, err = r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindEndOfMessage, ev.Kind)
}

func TestContentLengthReaderEOFMidBodyIsProtocolError(t *testing.T) {
	r := newContentLengthReader(10)
	r.remaining = 3
	_, err := r.onEOF()
	assert.Error(t, err)
}

func TestChunkedReaderSingleChunk(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()
	buf.Append([]byte("5\r\nhello\r\n0\r\n\r\n"))

	r := newChunkedReader(0)

	ev, ok, err := r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindData, ev.Kind)
	assert.Equal(t, []byte("hello"), ev.Data)
	assert.True(t, ev.ChunkStart)
	assert.True(t, ev.ChunkEnd)

	ev, ok, err = r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindEndOfMessage, ev.Kind)
}

func TestChunkedReaderWithExtensionAndTrailers(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()
	buf.Append([]byte("3;foo=bar\r\nabc\r\n0\r\nX-Trailer: v\r\n\r\n"))

	r := newChunkedReader(0)
	ev, ok, err := r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("abc"), ev.Data)

	ev, ok, err = r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindEndOfMessage, ev.Kind)
	assert.Equal(t, []byte("x-trailer"), ev.HeaderList[0].Name)
	assert.Equal(t, []byte("v"), ev.HeaderList[0].Value)
}

func TestChunkedReaderSplitAcrossFeeds(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()
	r := newChunkedReader(0)

	// Only the chunk-size line plus a partial prefix of its data has
	// arrived; the reader returns the partial data immediately rather
	// than buffering the whole chunk, the same way contentLengthReader
	// does for a Content-Length body.
	buf.Append([]byte("5\r\nhel"))
	ev, ok, err := r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("hel"), ev.Data)
	assert.True(t, ev.ChunkStart)
	assert.False(t, ev.ChunkEnd)

	buf.Append([]byte("lo\r\n0\r\n\r\n"))
	ev, ok, err = r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("lo"), ev.Data)
	assert.False(t, ev.ChunkStart)
	assert.True(t, ev.ChunkEnd)

	ev, ok, err = r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindEndOfMessage, ev.Kind)
}

func TestHTTP10ReaderReadsUntilEOF(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()
	buf.Append([]byte("some body"))

	r := newHTTP10Reader(0)
	ev, ok, err := r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("some body"), ev.Data)

	_, ok, err = r.step(buf)
	assert.NoError(t, err)
	assert.False(t, ok)

	ev, err = r.onEOF()
	assert.NoError(t, err)
	assert.Equal(t, KindEndOfMessage, ev.Kind)
}

func TestNoBodyReaderEndsImmediately(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()

	r := &noBodyReader{}
	ev, ok, err := r.step(buf)
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, KindEndOfMessage, ev.Kind)
}

func TestNewBodyReaderRejectsContentLengthOverLimit(t *testing.T) {
	_, err := newBodyReader(Framing{Kind: FramingContentLength, ContentLength: 100}, 10)
	assert.Error(t, err)
	var rpe *RemoteProtocolError
	assert.ErrorAs(t, err, &rpe)
}

func TestChunkedReaderRejectsBodyOverLimit(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()
	buf.Append([]byte("5\r\nhello\r\n0\r\n\r\n"))

	r := newChunkedReader(3)
	_, _, err := r.step(buf)
	assert.Error(t, err)
	var rpe *RemoteProtocolError
	assert.ErrorAs(t, err, &rpe)
}

func TestHTTP10ReaderRejectsBodyOverLimit(t *testing.T) {
	buf := NewReceiveBuffer()
	defer buf.Release()
	buf.Append([]byte("some body"))

	r := newHTTP10Reader(4)
	_, _, err := r.step(buf)
	assert.Error(t, err)
	var rpe *RemoteProtocolError
	assert.ErrorAs(t, err, &rpe)
}
