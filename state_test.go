package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyTransitionKnownEdge(t *testing.T) {
	next, err := applyTransition(CLIENT, IDLE, KindRequest)
	assert.NoError(t, err)
	assert.Equal(t, SEND_BODY, next)
}

func TestApplyTransitionUntabledIsLocalProtocolError(t *testing.T) {
	_, err := applyTransition(CLIENT, DONE, KindRequest)
	assert.Error(t, err)
	var lpe *LocalProtocolError
	assert.ErrorAs(t, err, &lpe)
}

func TestCloseSignaledExplicitClose(t *testing.T) {
	headers := []Header{newHeader([]byte("Connection"), []byte("close"))}
	assert.True(t, closeSignaled([]byte("HTTP/1.1"), headers))
}

func TestCloseSignaledHTTP10WithoutKeepAlive(t *testing.T) {
	assert.True(t, closeSignaled([]byte("HTTP/1.0"), nil))
}

func TestCloseSignaledHTTP10WithKeepAlive(t *testing.T) {
	headers := []Header{newHeader([]byte("Connection"), []byte("keep-alive"))}
	assert.False(t, closeSignaled([]byte("HTTP/1.0"), headers))
}

func TestCloseSignaledHTTP11Default(t *testing.T) {
	assert.False(t, closeSignaled([]byte("HTTP/1.1"), nil))
}

func TestHasTokenAmongCommaSeparatedValues(t *testing.T) {
	assert.True(t, hasToken([]byte("foo, chunked , bar"), "chunked"))
	assert.False(t, hasToken([]byte("foo, bar"), "chunked"))
}

func TestSwitchesProtocolOnSwitchingProtocolsResponse(t *testing.T) {
	resp := NewInformationalResponse([]byte("HTTP/1.1"), 101, []byte("Switching Protocols"), nil)
	assert.True(t, switchesProtocol([]byte("GET"), resp))
}

func TestSwitchesProtocolOnConnectSuccess(t *testing.T) {
	resp := NewResponse([]byte("HTTP/1.1"), 200, []byte("Connection Established"), nil)
	assert.True(t, switchesProtocol([]byte("CONNECT"), resp))
}

func TestSwitchesProtocolNotForOrdinaryResponse(t *testing.T) {
	resp := NewResponse([]byte("HTTP/1.1"), 200, []byte("OK"), nil)
	assert.False(t, switchesProtocol([]byte("GET"), resp))
}

func TestSwitchesProtocolDoesNotPanicOnLongMethod(t *testing.T) {
	resp := NewResponse([]byte("HTTP/1.1"), 200, []byte("OK"), nil)
	assert.NotPanics(t, func() {
		switchesProtocol([]byte("SOME-VERY-LONG-METHOD-NAME"), resp)
	})
}
