package engine

import (
	"fmt"

	"github.com/pkg/errors"
)

// LocalProtocolError is returned when the caller itself attempted an
// event that is illegal in the current state, or asked the engine to
// serialize malformed headers. A few peer-input conditions also produce
// it: a header block that opens with a continuation line, an empty head
// block, and bytes arriving when no further message is expected.
type LocalProtocolError struct {
	Msg    string
	Status int
}

func (e *LocalProtocolError) Error() string {
	return fmt.Sprintf("LocalProtocolError: %s", e.Msg)
}

func newLocalProtocolError(msg string) error {
	return errors.WithStack(&LocalProtocolError{Msg: msg, Status: 500})
}

func newLocalProtocolErrorStatus(msg string, status int) error {
	return errors.WithStack(&LocalProtocolError{Msg: msg, Status: status})
}

// RemoteProtocolError is returned when bytes received from the peer
// violate HTTP/1.1 syntax, framing rules, or truncate the stream.
type RemoteProtocolError struct {
	Msg    string
	Status int
}

func (e *RemoteProtocolError) Error() string {
	return fmt.Sprintf("RemoteProtocolError: %s", e.Msg)
}

func newRemoteProtocolError(msg string) error {
	return errors.WithStack(&RemoteProtocolError{Msg: msg, Status: 400})
}

func newRemoteProtocolErrorStatus(msg string, status int) error {
	return errors.WithStack(&RemoteProtocolError{Msg: msg, Status: status})
}

// bufferSnippet truncates b for safe inclusion in an error message,
// mirroring the teacher's bufferSnippet in header.go.
func bufferSnippet(b []byte) string {
	const head = 64
	if len(b) <= head {
		return fmt.Sprintf("%q", b)
	}
	return fmt.Sprintf("%q...(%d more bytes)", b[:head], len(b)-head)
}

// Cause unwraps a pkg/errors-wrapped error back to the underlying
// *LocalProtocolError or *RemoteProtocolError, if any.
func Cause(err error) error {
	return errors.Cause(err)
}
