package engine

// headReaderFunc is the shape of readRequest/readResponse.
type headReaderFunc func(buf *ReceiveBuffer) (Event, bool, error)

// headReaderKey mirrors transitionKey: dispatch is a literal map from
// protocol situation to reader, per spec.md §4.G and §9's explicit
// preference for a lookup table over polymorphism, grounded on
// _examples/original_source/h11/_readers.py's READERS dict.
type headReaderKey struct {
	role  Role
	state State
}

var headReaders = map[headReaderKey]headReaderFunc{
	{CLIENT, IDLE}:         readRequest,
	{SERVER, IDLE}:         readResponse,
	{SERVER, SEND_RESPONSE}: readResponse,
}

// expectNothing implements the (*, DONE|MUST_CLOSE|CLOSED) dispatch
// entry: any buffered bytes are a LocalProtocolError (spec.md §4.G).
func expectNothing(buf *ReceiveBuffer) error {
	if !buf.IsEmpty() {
		return newLocalProtocolErrorStatus("Got data when expecting EOF", 500)
	}
	return nil
}

func isExpectNothingState(s State) bool {
	return s == DONE || s == MUST_CLOSE || s == CLOSED
}
