package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequestLine(t *testing.T) {
	method, target, version, err := parseRequestLine([]byte("GET /index.html HTTP/1.1"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("GET"), method)
	assert.Equal(t, []byte("/index.html"), target)
	assert.Equal(t, []byte("HTTP/1.1"), version)
}

func TestParseRequestLineRejectsMalformed(t *testing.T) {
	_, _, _, err := parseRequestLine([]byte("GET /index.html"))
	assert.Error(t, err)

	_, _, _, err = parseRequestLine([]byte("GET /index.html BOGUS"))
	assert.Error(t, err)

	_, _, _, err = parseRequestLine([]byte("G=ET /index.html HTTP/1.1"))
	assert.Error(t, err)
}

func TestParseStatusLineWithReason(t *testing.T) {
	version, code, reason, err := parseStatusLine([]byte("HTTP/1.1 200 OK"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("HTTP/1.1"), version)
	assert.Equal(t, 200, code)
	assert.Equal(t, []byte("OK"), reason)
}

func TestParseStatusLineMissingReason(t *testing.T) {
	version, code, reason, err := parseStatusLine([]byte("HTTP/1.1 204"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("HTTP/1.1"), version)
	assert.Equal(t, 204, code)
	assert.Empty(t, reason)
}

func TestParseHeaderField(t *testing.T) {
	name, value, err := parseHeaderField([]byte("Content-Length:  42  "))
	assert.NoError(t, err)
	assert.Equal(t, []byte("Content-Length"), name)
	assert.Equal(t, []byte("42"), value)
}

func TestParseHeaderFieldRejectsMissingColon(t *testing.T) {
	_, _, err := parseHeaderField([]byte("not-a-header"))
	assert.Error(t, err)
}

func TestParseChunkHeaderDiscardsExtension(t *testing.T) {
	size, err := parseChunkHeader([]byte("1a;ignored-ext=123\r\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0x1a, size)
}

func TestParseChunkHeaderLastChunk(t *testing.T) {
	size, err := parseChunkHeader([]byte("0\r\n"))
	assert.NoError(t, err)
	assert.Equal(t, 0, size)
}

func TestParseContentLength(t *testing.T) {
	n, err := parseContentLength([]byte("123"))
	assert.NoError(t, err)
	assert.Equal(t, 123, n)

	_, err = parseContentLength([]byte("123x"))
	assert.Error(t, err)
}

func TestIsValidToken(t *testing.T) {
	assert.True(t, isValidToken([]byte("Content-Length")))
	assert.False(t, isValidToken([]byte("Content Length")))
	assert.False(t, isValidToken([]byte("")))
}
