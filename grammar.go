package engine

import "bytes"

// Byte-class lookup tables, adapted from the teacher's
// bytesconv_table_gen.go (toUpperTable/toLowerTable/hex2intTable
// generation algorithm). The teacher builds these via a go:generate
// script invoked once at release time; this module builds them with a
// package-level init() since the generator script itself isn't part
// of the protocol-engine's build surface.

const toLowerDelta = 'a' - 'A'

var (
	toLowerTable [256]byte
	toUpperTable [256]byte
	hexValueTable [256]byte // 0-15, or 0xFF if not a hex digit

	// tokenTable marks bytes legal in an RFC 7230 "token" (field-name,
	// method), i.e. tchar.
	tokenTable [256]bool

	// fieldValueTable marks bytes legal in a header field-value
	// (VCHAR / obs-text / SP / HTAB), i.e. anything but CTLs.
	fieldValueTable [256]bool
)

func init() {
	for i := 0; i < 256; i++ {
		c := byte(i)
		toLowerTable[i] = c
		if c >= 'A' && c <= 'Z' {
			toLowerTable[i] = c + toLowerDelta
		}
		toUpperTable[i] = c
		if c >= 'a' && c <= 'z' {
			toUpperTable[i] = c - toLowerDelta
		}

		switch {
		case c >= '0' && c <= '9':
			hexValueTable[i] = c - '0'
		case c >= 'a' && c <= 'f':
			hexValueTable[i] = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			hexValueTable[i] = c - 'A' + 10
		default:
			hexValueTable[i] = 0xFF
		}
	}

	const tchar = "!#$%&'*+-.^_`|~"
	for i := 0; i < 256; i++ {
		c := byte(i)
		isAlnum := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		tokenTable[i] = isAlnum || bytes.IndexByte([]byte(tchar), c) >= 0
	}

	for i := 0; i < 256; i++ {
		c := byte(i)
		// VCHAR (0x21-0x7E), obs-text (0x80-0xFF), SP, HTAB.
		fieldValueTable[i] = c == ' ' || c == '\t' || (c >= 0x21 && c <= 0x7E) || c >= 0x80
	}
}

func lowerInPlace(b []byte) {
	for i, c := range b {
		b[i] = toLowerTable[c]
	}
}

func isValidToken(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	for _, c := range b {
		if !tokenTable[c] {
			return false
		}
	}
	return true
}

func isValidFieldValue(b []byte) bool {
	for _, c := range b {
		if !fieldValueTable[c] {
			return false
		}
	}
	return true
}

// parseRequestLine recognizes "method SP target SP HTTP-version" and
// returns its three captures. Equivalent acceptance to h11's
// request_line ABNF production, hand-rolled per the teacher's
// RequestHeader.parseFirstLine rather than via a regex dependency
// (see DESIGN.md).
func parseRequestLine(line []byte) (method, target, version []byte, err error) {
	n := bytes.IndexByte(line, ' ')
	if n <= 0 {
		return nil, nil, nil, newRemoteProtocolErrorStatus("illegal request line: "+bufferSnippet(line), 400)
	}
	method = line[:n]
	if !isValidToken(method) {
		return nil, nil, nil, newRemoteProtocolErrorStatus("illegal method: "+bufferSnippet(method), 400)
	}
	rest := line[n+1:]

	n = bytes.IndexByte(rest, ' ')
	if n <= 0 {
		return nil, nil, nil, newRemoteProtocolErrorStatus("illegal request line: "+bufferSnippet(line), 400)
	}
	target = rest[:n]
	version = rest[n+1:]
	if !isValidHTTPVersion(version) {
		return nil, nil, nil, newRemoteProtocolErrorStatus("illegal HTTP version: "+bufferSnippet(version), 400)
	}
	return method, target, version, nil
}

// parseStatusLine recognizes "HTTP-version SP status-code [SP reason]".
// A missing reason phrase is tolerated; reason becomes empty (spec.md §8).
func parseStatusLine(line []byte) (version []byte, statusCode int, reason []byte, err error) {
	n := bytes.IndexByte(line, ' ')
	if n <= 0 {
		return nil, 0, nil, newRemoteProtocolErrorStatus("illegal status line: "+bufferSnippet(line), 400)
	}
	version = line[:n]
	if !isValidHTTPVersion(version) {
		return nil, 0, nil, newRemoteProtocolErrorStatus("illegal HTTP version: "+bufferSnippet(version), 400)
	}
	rest := line[n+1:]

	code, consumed, perr := parseUintBytes(rest)
	if perr != nil || consumed != 3 {
		return nil, 0, nil, newRemoteProtocolErrorStatus("illegal status code: "+bufferSnippet(rest), 400)
	}
	statusCode = code
	rest = rest[consumed:]
	if len(rest) == 0 {
		return version, statusCode, nil, nil
	}
	if rest[0] != ' ' {
		return nil, 0, nil, newRemoteProtocolErrorStatus("illegal status line: "+bufferSnippet(line), 400)
	}
	reason = rest[1:]
	return version, statusCode, reason, nil
}

func isValidHTTPVersion(v []byte) bool {
	// "HTTP/" DIGIT "." DIGIT
	if len(v) != 8 {
		return false
	}
	if !bytes.HasPrefix(v, []byte("HTTP/")) {
		return false
	}
	return v[5] >= '0' && v[5] <= '9' && v[6] == '.' && v[7] >= '0' && v[7] <= '9'
}

// parseHeaderField recognizes 'field-name ":" OWS field-value OWS'.
func parseHeaderField(line []byte) (name, value []byte, err error) {
	n := bytes.IndexByte(line, ':')
	if n <= 0 {
		return nil, nil, newRemoteProtocolErrorStatus("illegal header line: "+bufferSnippet(line), 400)
	}
	name = line[:n]
	if !isValidToken(name) {
		return nil, nil, newRemoteProtocolErrorStatus("illegal header field-name: "+bufferSnippet(name), 400)
	}
	value = trimOWS(line[n+1:])
	if !isValidFieldValue(value) {
		return nil, nil, newRemoteProtocolErrorStatus("illegal header field-value: "+bufferSnippet(value), 400)
	}
	return name, value, nil
}

func trimOWS(b []byte) []byte {
	i := 0
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}
	j := len(b)
	for j > i && (b[j-1] == ' ' || b[j-1] == '\t') {
		j--
	}
	return b[i:j]
}

// parseChunkHeader recognizes '1*HEXDIG [";" chunk-ext]' (the CRLF is
// consumed by the caller via maybe_extract_next_line). Chunk extensions
// are parsed syntactically (scanned over) and discarded, per spec.md §9.
func parseChunkHeader(line []byte) (size int, err error) {
	// Strip the line terminator the buffer extraction left attached.
	line = bytes.TrimRight(line, "\r\n")
	ext := bytes.IndexByte(line, ';')
	sizeField := line
	if ext >= 0 {
		sizeField = line[:ext]
	}
	if len(sizeField) == 0 {
		return 0, newRemoteProtocolErrorStatus("illegal chunk header: "+bufferSnippet(line), 400)
	}
	n := 0
	for _, c := range sizeField {
		v := hexValueTable[c]
		if v == 0xFF {
			return 0, newRemoteProtocolErrorStatus("illegal chunk size: "+bufferSnippet(sizeField), 400)
		}
		n = n<<4 | int(v)
	}
	return n, nil
}

// parseUintBytes parses a leading run of ASCII digits from b, grounded
// on the teacher's parseUintBuf in bytesconv.go, adapted to operate
// without a trailing-character error (callers inspect the consumed
// count themselves, as parseStatusLine does for its fixed-width code).
func parseUintBytes(b []byte) (value, consumed int, err error) {
	if len(b) == 0 {
		return 0, 0, newRemoteProtocolErrorStatus("empty integer", 400)
	}
	v := 0
	i := 0
	for ; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			break
		}
		nv := v*10 + int(c-'0')
		if nv < v {
			return 0, 0, newRemoteProtocolErrorStatus("integer overflow", 400)
		}
		v = nv
	}
	if i == 0 {
		return 0, 0, newRemoteProtocolErrorStatus("expected digit", 400)
	}
	return v, i, nil
}

// parseContentLength parses a full Content-Length header value,
// rejecting trailing garbage, grounded on the teacher's
// parseContentLength in header.go.
func parseContentLength(b []byte) (int, error) {
	v, n, err := parseUintBytes(b)
	if err != nil {
		return -1, err
	}
	if n != len(b) {
		return -1, newRemoteProtocolErrorStatus("illegal Content-Length: "+bufferSnippet(b), 400)
	}
	return v, nil
}
