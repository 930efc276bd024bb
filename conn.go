package engine

// Options configures buffer/body growth caps. The engine performs no
// I/O and reads no files/env/CLI (spec.md §6); Options is passed by
// value to NewConnection, analogous to the teacher's
// Server.ReadBufferSize/MaxRequestBodySize tunables.
type Options struct {
	// MaxHeaderBytes caps the size of a header block before a
	// LocalProtocolError-adjacent RemoteProtocolError is raised. Zero
	// means unbounded (the caller's receive buffer growth is the only
	// limit).
	MaxHeaderBytes int
	// MaxBodyBytes caps the size of a message body, mirroring the
	// teacher's Server.MaxRequestBodySize. For Content-Length framing
	// it is checked against the declared length before the body reader
	// is even constructed; for chunked and HTTP/1.0 read-until-close
	// framing, where the total size isn't known upfront, it is checked
	// against the running total as bytes arrive. Zero means unbounded.
	MaxBodyBytes int
	// Logger receives debug/warn diagnostics. Defaults to a logrus
	// logger at Warn level if nil (see log.go).
	Logger Logger
}

// Connection is the sans-I/O driver (Component H, spec.md §4.H): it
// glues the receive buffer, grammar, state machine, and readers
// together, feeding bytes in and emitting typed events out. It
// performs no I/O and spawns no goroutines (spec.md §5).
type Connection struct {
	ourRole Role
	state   [2]State // indexed by Role

	buf *ReceiveBuffer
	eof bool

	curBodyReader bodyReader

	// headVersion/headHeaders remember the most recent head event's
	// HTTP version and headers per role, consulted at EndOfMessage
	// time to decide DONE vs MUST_CLOSE (spec.md §4.D close signaling).
	headVersion [2][]byte
	headHeaders [2][]Header

	// outFraming remembers the framing derived for the message this
	// role is currently sending, so Data/EndOfMessage serialization
	// knows whether to chunk-wrap (send.go).
	outFraming [2]Framing

	lastRequestMethod []byte

	err error

	opts   Options
	logger Logger
}

// NewConnection constructs a driver for one side of a connection.
// ourRole is CLIENT for an HTTP client, SERVER for an HTTP server;
// the engine parses bytes arriving from the opposite role.
func NewConnection(ourRole Role, opts Options) *Connection {
	logger := opts.Logger
	if logger == nil {
		logger = defaultLoggerInstance()
	}
	return &Connection{
		ourRole: ourRole,
		buf:     NewReceiveBuffer(),
		opts:    opts,
		logger:  logger,
	}
}

// Close releases the connection's pooled receive buffer. Safe to call
// once, after the caller is done with the driver.
func (c *Connection) Close() {
	if c.buf != nil {
		c.buf.Release()
		c.buf = nil
	}
}

func (c *Connection) theirRole() Role {
	if c.ourRole == CLIENT {
		return SERVER
	}
	return CLIENT
}

// OurState and TheirState are the read-only accessors spec.md §6 asks
// for (their_state, our_state).
func (c *Connection) OurState() State   { return c.state[c.ourRole] }
func (c *Connection) TheirState() State { return c.state[c.theirRole()] }

// ReceiveData appends bytes arrived from the peer (spec.md
// §4.H receive_data). It never parses; parsing happens lazily in
// NextEvent.
func (c *Connection) ReceiveData(data []byte) {
	if len(data) > 0 {
		c.buf.Append(data)
	}
}

// ReceiveEOF marks the peer's stream as closed. Subsequent NextEvent
// calls let the active reader's onEOF decide whether this is a
// natural terminator or a RemoteProtocolError (spec.md §4.H).
func (c *Connection) ReceiveEOF() {
	c.eof = true
}

func (c *Connection) fail(err error) {
	c.err = err
	c.state[CLIENT] = ERROR
	c.state[SERVER] = ERROR
	if _, ok := Cause(err).(*RemoteProtocolError); ok {
		c.logger.Warnf("connection entered ERROR on peer violation: %v", err)
	} else {
		c.logger.Errorf("connection entered ERROR: %v", err)
	}
}

// transition applies kind to whichever role(s) have a matching table
// entry for their current state (spec.md §4.D); a kind irrelevant to
// a role's current state simply leaves that role untouched, which is
// what lets one shared table drive both roles' bookkeeping (e.g. a
// client Request also advances the server from IDLE to SEND_RESPONSE).
func (c *Connection) transition(kind EventKind) {
	for _, role := range [...]Role{CLIENT, SERVER} {
		if next, ok := transitions[transitionKey{role, c.state[role], kind}]; ok {
			c.logger.Debugf("%s: %s -> %s on %s", role, c.state[role], next, kind)
			c.state[role] = next
		}
	}
}

// transitionRole applies kind to a single role only. Data/EndOfMessage
// must use this instead of transition: unlike Request/Response, which
// only ever match one role's table entry at the moment they occur,
// both roles can simultaneously sit in SEND_BODY under pipelining, so
// applying the shared table to "whichever role matches" would let one
// role's body events spuriously advance the other's.
func (c *Connection) transitionRole(role Role, kind EventKind) {
	if next, ok := transitions[transitionKey{role, c.state[role], kind}]; ok {
		c.logger.Debugf("%s: %s -> %s on %s", role, c.state[role], next, kind)
		c.state[role] = next
	}
}

// NextEvent consumes buffered bytes and returns the next Event, or
// the NeedData/Paused sentinels (spec.md §4.H).
func (c *Connection) NextEvent() (Event, error) {
	if c.err != nil {
		return Event{}, c.err
	}

	their := c.theirRole()
	ts := c.state[their]

	switch {
	case ts == SWITCHED_PROTOCOL:
		return eventPaused, nil
	case isExpectNothingState(ts):
		return c.nextExpectNothingEvent()
	case ts == SEND_BODY:
		return c.nextBodyEvent(their)
	default:
		return c.nextHeadEvent(their, ts)
	}
}

func (c *Connection) nextExpectNothingEvent() (Event, error) {
	if err := expectNothing(c.buf); err != nil {
		c.fail(err)
		return Event{}, err
	}
	if c.eof {
		c.state[CLIENT] = CLOSED
		c.state[SERVER] = CLOSED
		return eventConnectionClosed, nil
	}
	return eventPaused, nil
}

func (c *Connection) nextHeadEvent(their Role, ts State) (Event, error) {
	reader, ok := headReaders[headReaderKey{their, ts}]
	if !ok {
		err := newLocalProtocolErrorStatus(
			"no reader for role="+their.String()+" state="+ts.String(), 500)
		c.fail(err)
		return Event{}, err
	}

	before := c.buf.Len()
	ev, got, err := reader(c.buf)
	if err != nil {
		c.fail(err)
		return Event{}, err
	}
	if c.opts.MaxHeaderBytes > 0 {
		// A complete head consumed exactly its own bytes; an incomplete
		// one is everything still buffered.
		size := before - c.buf.Len()
		if !got {
			size = c.buf.Len()
		}
		if size > c.opts.MaxHeaderBytes {
			err := newRemoteProtocolErrorStatus("header block exceeds configured limit", 431)
			c.fail(err)
			return Event{}, err
		}
	}
	if !got {
		if c.eof {
			if c.buf.IsEmpty() && ts == IDLE {
				c.state[CLIENT] = CLOSED
				c.state[SERVER] = CLOSED
				return eventConnectionClosed, nil
			}
			err := newRemoteProtocolErrorStatus("peer closed connection while sending message head", 400)
			c.fail(err)
			return Event{}, err
		}
		return eventNeedData, nil
	}

	if err := c.onHeadEvent(their, ev); err != nil {
		c.fail(err)
		return Event{}, err
	}
	return ev, nil
}

func (c *Connection) onHeadEvent(their Role, ev Event) error {
	switch ev.Kind {
	case KindRequest:
		c.lastRequestMethod = append([]byte(nil), ev.Method...)
		c.headVersion[CLIENT] = ev.HTTPVersion
		c.headHeaders[CLIENT] = ev.HeaderList
		c.transition(KindRequest)
		if c.state[their] == SEND_BODY {
			f, err := resolveFraming(false, nil, 0, ev.HTTPVersion, ev.HeaderList)
			if err != nil {
				return err
			}
			r, err := newBodyReader(f, c.opts.MaxBodyBytes)
			if err != nil {
				return err
			}
			c.curBodyReader = r
		}

	case KindInformationalResponse:
		c.transition(KindInformationalResponse)
		if switchesProtocol(c.lastRequestMethod, ev) {
			c.state[CLIENT] = SWITCHED_PROTOCOL
			c.state[SERVER] = SWITCHED_PROTOCOL
		}

	case KindResponse:
		c.headVersion[SERVER] = ev.HTTPVersion
		c.headHeaders[SERVER] = ev.HeaderList
		c.transition(KindResponse)
		if c.state[their] == SEND_BODY {
			f, err := resolveFraming(true, c.lastRequestMethod, ev.StatusCode, ev.HTTPVersion, ev.HeaderList)
			if err != nil {
				return err
			}
			r, err := newBodyReader(f, c.opts.MaxBodyBytes)
			if err != nil {
				return err
			}
			c.curBodyReader = r
		}
		if switchesProtocol(c.lastRequestMethod, ev) {
			c.state[CLIENT] = SWITCHED_PROTOCOL
			c.state[SERVER] = SWITCHED_PROTOCOL
		}
	}
	return nil
}

func (c *Connection) nextBodyEvent(their Role) (Event, error) {
	if c.curBodyReader == nil {
		c.curBodyReader = &noBodyReader{}
	}

	ev, got, err := c.curBodyReader.step(c.buf)
	if err != nil {
		c.fail(err)
		return Event{}, err
	}
	if !got {
		if c.eof {
			ev, err = c.curBodyReader.onEOF()
			if err != nil {
				c.fail(err)
				return Event{}, err
			}
			c.onBodyEvent(their, ev)
			return ev, nil
		}
		return eventNeedData, nil
	}

	c.onBodyEvent(their, ev)
	return ev, nil
}

func (c *Connection) onBodyEvent(their Role, ev Event) {
	c.transitionRole(their, ev.Kind)
	if ev.Kind != KindEndOfMessage {
		return
	}
	c.curBodyReader = nil
	if c.state[their] == DONE && closeSignaled(c.headVersion[their], c.headHeaders[their]) {
		c.state[their] = MUST_CLOSE
	}
}

// StartNextCycle resets both roles to IDLE for a new pipelined
// exchange, once both have reached DONE (spec.md §4.D, §4.H).
func (c *Connection) StartNextCycle() error {
	if c.err != nil {
		return c.err
	}
	if c.state[CLIENT] != DONE || c.state[SERVER] != DONE {
		err := newLocalProtocolErrorStatus("not every role is DONE; can't start next cycle", 500)
		c.fail(err)
		return err
	}
	c.state[CLIENT] = IDLE
	c.state[SERVER] = IDLE
	c.curBodyReader = nil
	c.lastRequestMethod = nil
	c.headVersion = [2][]byte{}
	c.headHeaders = [2][]Header{}
	c.outFraming = [2]Framing{}
	return nil
}
