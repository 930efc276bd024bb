package engine

// Header is a single (field-name, field-value) pair, normalized on
// construction: the name is lowercased, the value has surrounding
// whitespace stripped (spec.md §3, §4.C). Order and duplicates are
// both preserved by whoever holds a []Header.
type Header struct {
	Name  []byte
	Value []byte
}

func newHeader(name, value []byte) Header {
	n := append([]byte(nil), name...)
	lowerInPlace(n)
	v := append([]byte(nil), trimOWS(value)...)
	return Header{Name: n, Value: v}
}

// normalizeHeaders returns a copy of raw with the per-header
// normalization of newHeader applied to every pair. Every New*
// constructor calls it, so events built from a decoded header block
// (headreader.go) and events the caller builds to Send (send.go) are
// normalized alike, satisfying spec.md §4.C regardless of entry point.
func normalizeHeaders(raw []Header) []Header {
	out := make([]Header, len(raw))
	for i, kv := range raw {
		out[i] = newHeader(kv.Name, kv.Value)
	}
	return out
}

// Headers finds the first header matching name (case-sensitive; name
// must already be lowercase), or returns nil.
func Headers(h []Header, name string) []byte {
	for _, kv := range h {
		if string(kv.Name) == name {
			return kv.Value
		}
	}
	return nil
}

// HeadersAll finds every header value matching name, preserving order.
func HeadersAll(h []Header, name string) [][]byte {
	var out [][]byte
	for _, kv := range h {
		if string(kv.Name) == name {
			out = append(out, kv.Value)
		}
	}
	return out
}

// EventKind tags the variant carried by Event, following spec.md §3's
// tagged-variant data model. This module models events as a single
// concrete struct rather than an interface hierarchy (spec.md §9's
// "events as immutable values, no back-pointers") so that equality is
// a field-by-field comparison (Event holds slices, so reflect.DeepEqual
// rather than ==) and callers switch on Kind.
type EventKind int

const (
	KindRequest EventKind = iota
	KindInformationalResponse
	KindResponse
	KindData
	KindEndOfMessage
	KindConnectionClosed
	KindNeedData
	KindPaused
)

func (k EventKind) String() string {
	switch k {
	case KindRequest:
		return "Request"
	case KindInformationalResponse:
		return "InformationalResponse"
	case KindResponse:
		return "Response"
	case KindData:
		return "Data"
	case KindEndOfMessage:
		return "EndOfMessage"
	case KindConnectionClosed:
		return "ConnectionClosed"
	case KindNeedData:
		return "NeedData"
	case KindPaused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// Event is a tagged, immutable value carrying exactly the fields its
// Kind uses; all other fields are the zero value. Constructed only by
// the package (via the New* constructors) so that normalization
// (lowercase header names, trimmed values) always applies.
type Event struct {
	Kind EventKind

	// Request / Response / InformationalResponse
	Method      []byte
	Target      []byte
	HTTPVersion []byte
	StatusCode  int
	Reason      []byte
	HeaderList  []Header

	// Data
	Data       []byte
	ChunkStart bool
	ChunkEnd   bool
}

// NewRequest constructs a Request event (spec.md §3).
func NewRequest(method, target, httpVersion []byte, headers []Header) Event {
	return Event{
		Kind:        KindRequest,
		Method:      append([]byte(nil), method...),
		Target:      append([]byte(nil), target...),
		HTTPVersion: append([]byte(nil), httpVersion...),
		HeaderList:  normalizeHeaders(headers),
	}
}

// NewInformationalResponse constructs a 1xx response event.
func NewInformationalResponse(httpVersion []byte, statusCode int, reason []byte, headers []Header) Event {
	return Event{
		Kind:        KindInformationalResponse,
		HTTPVersion: append([]byte(nil), httpVersion...),
		StatusCode:  statusCode,
		Reason:      append([]byte(nil), reason...),
		HeaderList:  normalizeHeaders(headers),
	}
}

// NewResponse constructs a final (>= 200) response event.
func NewResponse(httpVersion []byte, statusCode int, reason []byte, headers []Header) Event {
	return Event{
		Kind:        KindResponse,
		HTTPVersion: append([]byte(nil), httpVersion...),
		StatusCode:  statusCode,
		Reason:      append([]byte(nil), reason...),
		HeaderList:  normalizeHeaders(headers),
	}
}

// NewData constructs a body-data event. chunkStart/chunkEnd are only
// meaningful under chunked framing (spec.md §4.E).
func NewData(data []byte, chunkStart, chunkEnd bool) Event {
	return Event{Kind: KindData, Data: data, ChunkStart: chunkStart, ChunkEnd: chunkEnd}
}

// NewEndOfMessage constructs an end-of-message event carrying trailers
// (possibly empty).
func NewEndOfMessage(trailers []Header) Event {
	return Event{Kind: KindEndOfMessage, HeaderList: normalizeHeaders(trailers)}
}

var (
	eventConnectionClosed = Event{Kind: KindConnectionClosed}
	eventNeedData         = Event{Kind: KindNeedData}
	eventPaused           = Event{Kind: KindPaused}
)
