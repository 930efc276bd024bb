package engine

// foldObsoleteLines applies RFC 7230 §3.2.4 obsolete line folding: a
// line beginning with SP or HTAB continues the previous line, with its
// leading whitespace run replaced by a single space. A fold at the
// start of the block is a LocalProtocolError (spec.md §4.F).
//
// Grounded on the teacher's headerscanner.go
// (readContinuedLineSlice/skipSpace), which already folds continuation
// lines while scanning; this module performs the same fold as a
// separate pre-pass over already-extracted lines, matching
// _examples/original_source/h11/_readers.py's _obsolete_line_fold
// generator in spirit (run in a single forward pass, O(n)).
func foldObsoleteLines(lines [][]byte) ([][]byte, error) {
	out := make([][]byte, 0, len(lines))
	for _, line := range lines {
		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			if len(out) == 0 {
				return nil, newLocalProtocolErrorStatus("continuation line at start of headers", 400)
			}
			cont := trimOWS(line)
			last := out[len(out)-1]
			merged := make([]byte, 0, len(last)+1+len(cont))
			merged = append(merged, last...)
			merged = append(merged, ' ')
			merged = append(merged, cont...)
			out[len(out)-1] = merged
			continue
		}
		out = append(out, line)
	}
	return out, nil
}

// decodeHeaderLines folds obsolete continuations and then parses each
// resulting line as a header-field (spec.md §4.F).
func decodeHeaderLines(lines [][]byte) ([]Header, error) {
	folded, err := foldObsoleteLines(lines)
	if err != nil {
		return nil, err
	}
	headers := make([]Header, 0, len(folded))
	for _, line := range folded {
		name, value, err := parseHeaderField(line)
		if err != nil {
			return nil, err
		}
		headers = append(headers, newHeader(name, value))
	}
	return headers, nil
}

// readRequest implements the (CLIENT, IDLE) head reader: extract the
// full header block, parse line 0 as a request-line, decode the rest
// as headers, emit Request. An empty block is a LocalProtocolError
// (spec.md §4.F), grounded on
// _examples/original_source/h11/_readers.py's
// maybe_read_from_IDLE_client.
func readRequest(buf *ReceiveBuffer) (Event, bool, error) {
	lines := buf.MaybeExtractLines()
	if lines == nil {
		return Event{}, false, nil
	}
	if len(lines) == 0 {
		return Event{}, false, newLocalProtocolErrorStatus("no request line received", 400)
	}
	method, target, version, err := parseRequestLine(lines[0])
	if err != nil {
		return Event{}, false, err
	}
	headers, err := decodeHeaderLines(lines[1:])
	if err != nil {
		return Event{}, false, err
	}
	return NewRequest(method, target, version, headers), true, nil
}

// readResponse implements the (SERVER, IDLE | SEND_RESPONSE) head
// reader: extract the header block, parse line 0 as a status-line
// (tolerating a missing reason phrase), decode the rest as headers,
// emit InformationalResponse for 1xx or Response otherwise. Grounded
// on maybe_read_from_SEND_RESPONSE_server.
func readResponse(buf *ReceiveBuffer) (Event, bool, error) {
	lines := buf.MaybeExtractLines()
	if lines == nil {
		return Event{}, false, nil
	}
	if len(lines) == 0 {
		return Event{}, false, newLocalProtocolErrorStatus("no response line received", 400)
	}
	version, statusCode, reason, err := parseStatusLine(lines[0])
	if err != nil {
		return Event{}, false, err
	}
	headers, err := decodeHeaderLines(lines[1:])
	if err != nil {
		return Event{}, false, err
	}
	if statusCode >= 100 && statusCode < 200 {
		return NewInformationalResponse(version, statusCode, reason, headers), true, nil
	}
	return NewResponse(version, statusCode, reason, headers), true, nil
}
