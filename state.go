package engine

// Role identifies which side of a connection a state tracker belongs
// to (spec.md §3). A Connection holds one tracker per role.
type Role int

const (
	CLIENT Role = iota
	SERVER
)

func (r Role) String() string {
	if r == CLIENT {
		return "CLIENT"
	}
	return "SERVER"
}

// State is a per-role position in the connection lifecycle (spec.md §3).
type State int

const (
	IDLE State = iota
	SEND_HEADERS
	SEND_RESPONSE // server-only: between Request observed and final Response sent
	SEND_BODY
	DONE
	MUST_CLOSE
	CLOSED
	MIGHT_SWITCH_PROTOCOL
	SWITCHED_PROTOCOL
	ERROR
)

func (s State) String() string {
	switch s {
	case IDLE:
		return "IDLE"
	case SEND_HEADERS:
		return "SEND_HEADERS"
	case SEND_RESPONSE:
		return "SEND_RESPONSE"
	case SEND_BODY:
		return "SEND_BODY"
	case DONE:
		return "DONE"
	case MUST_CLOSE:
		return "MUST_CLOSE"
	case CLOSED:
		return "CLOSED"
	case MIGHT_SWITCH_PROTOCOL:
		return "MIGHT_SWITCH_PROTOCOL"
	case SWITCHED_PROTOCOL:
		return "SWITCHED_PROTOCOL"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// transitionKey is a table key of (role, current state, event kind),
// grounded on spec.md §9's explicit design note: encode transitions as
// data (a lookup map), the same choice
// _examples/original_source/h11/_readers.py's READERS dict makes for
// reader selection (spec.md §4.G mirrors this for dispatch; this map
// mirrors it for state transition).
type transitionKey struct {
	role  Role
	state State
	kind  EventKind
}

// transitions is the literal table from spec.md §4.D. Any (role,
// state, kind) absent from this map is a LocalProtocolError — an
// event illegal in the current state.
var transitions = map[transitionKey]State{
	{CLIENT, IDLE, KindRequest}: SEND_BODY,

	{SERVER, IDLE, KindRequest}:                SEND_RESPONSE, // server observes the client's Request
	{SERVER, SEND_RESPONSE, KindInformationalResponse}: SEND_RESPONSE,
	{SERVER, SEND_RESPONSE, KindResponse}:              SEND_BODY,

	{CLIENT, SEND_BODY, KindData}:         SEND_BODY,
	{CLIENT, SEND_BODY, KindEndOfMessage}: DONE,
	{SERVER, SEND_BODY, KindData}:         SEND_BODY,
	{SERVER, SEND_BODY, KindEndOfMessage}: DONE,
}

// A head event with NoBody framing (HEAD responses, 1xx, 204, 304, or
// bodyless requests) goes straight to SEND_BODY and then immediately
// accepts EndOfMessage — the transition
// table above already allows {SEND_BODY, EndOfMessage} -> DONE, so a
// NoBody message is simply one whose driver immediately feeds a
// synthetic EndOfMessage once it enters SEND_BODY; no separate table
// entry is required (kept as a design note, not code, per spec.md §4.E).

// applyTransition advances cur given an emitted/sent event of the
// given kind, or returns a LocalProtocolError if the combination isn't
// tabled (spec.md §4.D's "any untabled combination is a
// LocalProtocolError").
func applyTransition(role Role, cur State, kind EventKind) (State, error) {
	if kind == KindConnectionClosed {
		return CLOSED, nil
	}
	next, ok := transitions[transitionKey{role, cur, kind}]
	if !ok {
		return ERROR, newLocalProtocolErrorStatus(
			"can't handle event type "+kind.String()+" when role="+role.String()+" and state="+cur.String(), 500)
	}
	return next, nil
}

// closeSignaled reports whether headers (already normalized, lowercase
// names) or the HTTP version indicate the sender must close the
// connection after this message (spec.md §4.D "Close signaling"):
// an explicit Connection: close, or HTTP/1.0 without Connection:
// keep-alive.
func closeSignaled(httpVersion []byte, headers []Header) bool {
	conn := Headers(headers, "connection")
	if hasToken(conn, "close") {
		return true
	}
	if !isHTTP11(httpVersion) {
		return !hasToken(conn, "keep-alive")
	}
	return false
}

func isHTTP11(version []byte) bool {
	return len(version) == 8 && version[5] == '1' && version[7] == '1'
}

// hasToken reports whether value contains tok as one of its
// comma-separated, whitespace-trimmed tokens (case-insensitive),
// grounded on the teacher's headerValueScanner/hasHeaderValue in
// header.go.
func hasToken(value []byte, tok string) bool {
	for len(value) > 0 {
		i := indexByte(value, ',')
		var field []byte
		if i < 0 {
			field = value
			value = nil
		} else {
			field = value[:i]
			value = value[i+1:]
		}
		field = trimOWS(field)
		if len(field) == len(tok) && equalFoldASCII(field, tok) {
			return true
		}
	}
	return false
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}

func equalFoldASCII(b []byte, s string) bool {
	for i := 0; i < len(b); i++ {
		if toLowerTable[b[i]] != toLowerTable[s[i]] {
			return false
		}
	}
	return true
}

// switchesProtocol reports whether, given the client's request method
// and the server's response, both roles should move to
// SWITCHED_PROTOCOL (spec.md §4.D "Protocol switch"): a successful
// "101 Switching Protocols", or a CONNECT met with a 2xx.
func switchesProtocol(requestMethod []byte, resp Event) bool {
	if resp.Kind == KindInformationalResponse && resp.StatusCode == 101 {
		return true
	}
	if resp.Kind == KindResponse && len(requestMethod) == len("CONNECT") &&
		equalFoldASCII(requestMethod, "connect") && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return true
	}
	return false
}
