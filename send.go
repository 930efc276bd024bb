package engine

// Send validates ev against the transition table for our own role and
// state, serializes it to wire bytes, and advances our state (spec.md
// §4.H send). An event illegal in the current state is a
// LocalProtocolError and moves the connection to ERROR, matching
// NextEvent's fail-fast behavior for the receiving side.
//
// Serialization itself is intentionally minimal (spec.md §6 calls it
// "format-level, out of scope of the hard part"): request/status
// lines and header blocks are appended CRLF-terminated in the
// teacher's AppendBytes style (header.go), and Data/EndOfMessage defer
// to the framing derived from the head event just sent, so chunked
// output gets size-line/trailer wrapping and identity/HTTP10 output
// doesn't.
func (c *Connection) Send(ev Event) ([]byte, error) {
	if c.err != nil {
		return nil, c.err
	}

	our := c.ourRole

	if ev.Kind == KindConnectionClosed {
		c.state[CLIENT] = CLOSED
		c.state[SERVER] = CLOSED
		return nil, nil
	}

	cur := c.state[our]
	if _, err := applyTransition(our, cur, ev.Kind); err != nil {
		c.fail(err)
		return nil, err
	}

	switch ev.Kind {
	case KindRequest:
		f, err := resolveFraming(false, nil, 0, ev.HTTPVersion, ev.HeaderList)
		if err != nil {
			c.fail(err)
			return nil, err
		}
		c.lastRequestMethod = append([]byte(nil), ev.Method...)
		c.headVersion[CLIENT] = ev.HTTPVersion
		c.headHeaders[CLIENT] = ev.HeaderList
		c.outFraming[CLIENT] = f
	case KindResponse:
		f, err := resolveFraming(true, c.lastRequestMethod, ev.StatusCode, ev.HTTPVersion, ev.HeaderList)
		if err != nil {
			c.fail(err)
			return nil, err
		}
		c.headVersion[SERVER] = ev.HTTPVersion
		c.headHeaders[SERVER] = ev.HeaderList
		c.outFraming[SERVER] = f
	}

	data, err := c.encodeEvent(our, ev)
	if err != nil {
		c.fail(err)
		return nil, err
	}

	// Request/Response/InformationalResponse only ever match one role's
	// table entry at the moment they're sent, so the shared both-role
	// helper is safe and does the reciprocal bookkeeping for free (e.g.
	// CLIENT's own Send(Request) moves the local SERVER-side
	// expectation from IDLE to SEND_RESPONSE, mirroring onHeadEvent on
	// the receiving side). Data/EndOfMessage are scoped to our own role
	// only: under pipelining both roles can be in SEND_BODY at once, and
	// the shared helper would let our own body events spuriously
	// advance the peer's independently-tracked body progress.
	switch ev.Kind {
	case KindData, KindEndOfMessage:
		c.transitionRole(our, ev.Kind)
	default:
		c.transition(ev.Kind)
	}
	if ev.Kind == KindEndOfMessage && c.state[our] == DONE &&
		closeSignaled(c.headVersion[our], c.headHeaders[our]) {
		c.state[our] = MUST_CLOSE
	}
	if switchesProtocol(c.lastRequestMethod, ev) {
		c.state[CLIENT] = SWITCHED_PROTOCOL
		c.state[SERVER] = SWITCHED_PROTOCOL
	}

	return data, nil
}

func (c *Connection) encodeEvent(role Role, ev Event) ([]byte, error) {
	switch ev.Kind {
	case KindRequest:
		return encodeRequestLine(ev), nil
	case KindInformationalResponse, KindResponse:
		return encodeStatusLine(ev), nil
	case KindData:
		return encodeData(c.outFraming[role], ev), nil
	case KindEndOfMessage:
		return encodeEndOfMessage(c.outFraming[role], ev), nil
	default:
		return nil, newLocalProtocolErrorStatus("event kind "+ev.Kind.String()+" cannot be sent", 500)
	}
}

func encodeRequestLine(ev Event) []byte {
	buf := make([]byte, 0, 64+headerBytesLen(ev.HeaderList))
	buf = append(buf, ev.Method...)
	buf = append(buf, ' ')
	buf = append(buf, ev.Target...)
	buf = append(buf, ' ')
	buf = append(buf, ev.HTTPVersion...)
	buf = append(buf, strCRLF...)
	buf = appendHeaderLines(buf, ev.HeaderList)
	buf = append(buf, strCRLF...)
	return buf
}

func encodeStatusLine(ev Event) []byte {
	buf := make([]byte, 0, 64+headerBytesLen(ev.HeaderList))
	buf = append(buf, ev.HTTPVersion...)
	buf = append(buf, ' ')
	buf = appendUint(buf, ev.StatusCode)
	buf = append(buf, ' ')
	buf = append(buf, ev.Reason...)
	buf = append(buf, strCRLF...)
	buf = appendHeaderLines(buf, ev.HeaderList)
	buf = append(buf, strCRLF...)
	return buf
}

func appendHeaderLines(buf []byte, headers []Header) []byte {
	for _, h := range headers {
		buf = append(buf, h.Name...)
		buf = append(buf, strColon...)
		buf = append(buf, ' ')
		buf = append(buf, h.Value...)
		buf = append(buf, strCRLF...)
	}
	return buf
}

func headerBytesLen(headers []Header) int {
	n := 0
	for _, h := range headers {
		n += len(h.Name) + len(h.Value) + 4
	}
	return n
}

func encodeData(f Framing, ev Event) []byte {
	if f.Kind != FramingChunked {
		return append([]byte(nil), ev.Data...)
	}
	buf := make([]byte, 0, len(ev.Data)+16)
	if ev.ChunkStart {
		buf = appendHex(buf, len(ev.Data))
		buf = append(buf, strCRLF...)
	}
	buf = append(buf, ev.Data...)
	if ev.ChunkEnd {
		buf = append(buf, strCRLF...)
	}
	return buf
}

func encodeEndOfMessage(f Framing, ev Event) []byte {
	if f.Kind != FramingChunked {
		return nil
	}
	buf := make([]byte, 0, 16+headerBytesLen(ev.HeaderList))
	buf = append(buf, '0')
	buf = append(buf, strCRLF...)
	buf = appendHeaderLines(buf, ev.HeaderList)
	buf = append(buf, strCRLF...)
	return buf
}

// appendUint appends the decimal ASCII form of a non-negative int,
// mirroring the teacher's bytesconv.go avoidance of strconv on hot
// serialization paths.
func appendUint(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}
	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	return append(buf, tmp[i:]...)
}

// appendHex appends the lowercase hex ASCII form of a non-negative
// int, used for chunk-size lines (spec.md §4.E).
func appendHex(buf []byte, n int) []byte {
	if n == 0 {
		return append(buf, '0')
	}
	const digits = "0123456789abcdef"
	var tmp [16]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = digits[n%16]
		n /= 16
	}
	return append(buf, tmp[i:]...)
}
