// Package conn implements the connection state machine at the heart of
// the driver: one TCP socket, a single background reader, stream-id
// multiplexed requests coordinated through an in-flight table, and
// automatic re-preparation of statements the server has forgotten.
//
// A Conn owns its socket for life: one goroutine reads frames and
// dispatches them to whichever caller is waiting on that stream id (or
// to the event subscriber registry, for the reserved event stream);
// every other goroutine writes directly, serialized by a mutex, since
// the protocol allows interleaved requests but never interleaved
// writes of a single frame's bytes.
package conn

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/onoffswitch/gocassa/internal/build"
	"github.com/onoffswitch/gocassa/internal/compress"
	"github.com/onoffswitch/gocassa/internal/frame"
	"github.com/onoffswitch/gocassa/internal/message"
	"github.com/onoffswitch/gocassa/internal/prepared"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/result"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Logger is the driver's minimal observability hook. A nil Logger in
// Config is replaced with noopLogger; logging is never required for
// correctness.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}
func (noopLogger) Errorf(string, ...any) {}

// Config carries every connection-scoped setting Connect needs. The
// cassandra package's public Options is validated and translated into
// one of these before dialing.
type Config struct {
	ProtocolVersion protocol.ProtocolVersion
	Keyspace        string
	Username        string
	Password        string
	Compression     compress.Codec // nil means no compression negotiated
	MaxStreams      int
	ConnectTimeout  time.Duration
	RequestTimeout  time.Duration
	EventTypes      []protocol.EventType
	Logger          Logger

	// DisableUnpreparedRetry turns off the automatic re-prepare-and-retry
	// behavior on an UNPREPARED response, surfacing the server error to
	// the caller instead. Off by default.
	DisableUnpreparedRetry bool

	// SubmitNonBlocking makes every request fail fast with a
	// QueueFullError when the stream id pool is exhausted instead of
	// blocking the caller until one frees up. Off by default.
	SubmitNonBlocking bool
}

// Prepared is the id and metadata returned by Prepare, plus the
// (keyspace, query text) key needed to transparently re-prepare it
// after an UNPREPARED response.
type Prepared struct {
	Keyspace   string
	Query      string
	Descriptor *result.Prepared
}

// Conn is one live connection to a single Cassandra node.
type Conn struct {
	netConn net.Conn
	version protocol.ProtocolVersion
	codec   compress.Codec
	logger  Logger

	requestTimeout         time.Duration
	disableUnpreparedRetry bool
	submitNonBlocking      bool

	streams  *streamPool
	inflight *inflightTable
	events   *eventRegistry
	prepared *prepared.Registry

	writeMu sync.Mutex

	stateMu sync.Mutex
	state   State

	keyspaceMu sync.RWMutex
	keyspace   string

	closeOnce sync.Once
	closed    chan struct{}
	readDone  chan struct{}
}

// Connect dials addr, performs the STARTUP handshake (including
// authentication, if the server requires it), optionally issues a USE
// for cfg.Keyspace and a REGISTER for cfg.EventTypes, and returns a
// Conn ready to serve requests.
func Connect(ctx context.Context, addr string, cfg Config) (*Conn, error) {
	dialer := net.Dialer{Timeout: cfg.ConnectTimeout}
	netConn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &xerrors.IOError{Op: "dial", Err: err}
	}

	return connectOverSocket(ctx, netConn, cfg)
}

// connectOverSocket runs the handshake over an already-established
// net.Conn, split out of Connect so tests can drive it over an
// in-memory net.Pipe instead of a real TCP dial.
func connectOverSocket(ctx context.Context, netConn net.Conn, cfg Config) (*Conn, error) {
	if cfg.Logger == nil {
		cfg.Logger = noopLogger{}
	}
	if cfg.ProtocolVersion == 0 {
		cfg.ProtocolVersion = protocol.ProtocolVersionMax
	}
	codec := cfg.Compression
	if codec == nil {
		codec = compress.NoopCodec{}
	}

	maxStreams := cfg.MaxStreams
	if maxStreams <= 0 {
		maxStreams = protocol.MaxStreams
	}

	c := &Conn{
		netConn:                netConn,
		version:                cfg.ProtocolVersion,
		codec:                  codec,
		logger:                 cfg.Logger,
		requestTimeout:         cfg.RequestTimeout,
		disableUnpreparedRetry: cfg.DisableUnpreparedRetry,
		submitNonBlocking:      cfg.SubmitNonBlocking,
		streams:                newStreamPool(maxStreams),
		inflight:               newInflightTable(),
		events:                 newEventRegistry(),
		prepared:               prepared.NewRegistry(),
		state:                  StateTCPConnected,
		keyspace:               cfg.Keyspace,
		closed:                 make(chan struct{}),
		readDone:               make(chan struct{}),
	}

	go c.readLoop()

	if err := c.handshake(ctx, cfg); err != nil {
		_ = c.Close(0)
		return nil, err
	}

	if cfg.Keyspace != "" {
		if _, err := c.Query(ctx, "USE "+quoteIdentifier(cfg.Keyspace), Params{}); err != nil {
			_ = c.Close(0)
			return nil, err
		}
	}

	if len(cfg.EventTypes) > 0 {
		if _, err := c.Subscribe(cfg.EventTypes, nil); err != nil {
			_ = c.Close(0)
			return nil, err
		}
	}

	return c, nil
}

func quoteIdentifier(ks string) string { return `"` + ks + `"` }

func (c *Conn) handshake(ctx context.Context, cfg Config) error {
	if err := c.negotiateOptions(ctx); err != nil {
		return err
	}

	c.setState(StateStartupSent)

	startupOpts := map[string]string{
		message.CQLVersionKey:    message.DefaultCQLVersion,
		message.DriverNameKey:    build.Name,
		message.DriverVersionKey: build.Version,
	}
	if _, ok := c.codec.(compress.NoopCodec); !ok {
		startupOpts[message.CompressionKey] = c.codec.Name()
	}
	body, err := message.EncodeStartup(message.Startup{Options: startupOpts})
	if err != nil {
		return err
	}

	f, err := c.sendRequestUncompressed(ctx, protocol.OpCodeStartup, body)
	if err != nil {
		return err
	}

	switch f.OpCode {
	case protocol.OpCodeReady:
		c.setState(StateReady)
		return nil

	case protocol.OpCodeAuthenticate:
		c.setState(StateAuthenticating)
		return c.authenticate(ctx, cfg)

	default:
		return &xerrors.ProtocolViolationError{Reason: fmt.Sprintf("unexpected opcode 0x%02x responding to STARTUP", f.OpCode)}
	}
}

// negotiateOptions runs the OPTIONS/SUPPORTED exchange ahead of STARTUP,
// confirming the server actually advertises the compression algorithm
// cfg.Compression asked for rather than discovering a mismatch only
// once a compressed frame fails to decompress.
func (c *Conn) negotiateOptions(ctx context.Context) error {
	c.setState(StateOptionsSent)

	f, err := c.sendRequestUncompressed(ctx, protocol.OpCodeOptions, message.EncodeOptions(message.Options{}))
	if err != nil {
		return err
	}
	if f.OpCode != protocol.OpCodeSupported {
		return &xerrors.ProtocolViolationError{Reason: fmt.Sprintf("unexpected opcode 0x%02x responding to OPTIONS", f.OpCode)}
	}
	if _, isNoop := c.codec.(compress.NoopCodec); isNoop {
		return nil
	}
	supported, err := message.DecodeSupported(f.Body)
	if err != nil {
		return err
	}
	if !containsString(supported.Options[message.CompressionKey], c.codec.Name()) {
		return &xerrors.ProtocolViolationError{Reason: fmt.Sprintf("server does not advertise support for compression %q", c.codec.Name())}
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (c *Conn) authenticate(ctx context.Context, cfg Config) error {
	token := []byte("\x00" + cfg.Username + "\x00" + cfg.Password)
	body, err := message.EncodeAuthResponse(message.AuthResponse{Token: token})
	if err != nil {
		return err
	}
	f, err := c.sendRequestUncompressed(ctx, protocol.OpCodeAuthResponse, body)
	if err != nil {
		return err
	}
	switch f.OpCode {
	case protocol.OpCodeAuthSuccess:
		c.setState(StateReady)
		return nil
	case protocol.OpCodeAuthChallenge:
		// This driver only implements single-round password
		// authentication; a server demanding a further challenge round
		// is using a SASL mechanism we don't support.
		return &xerrors.ProtocolViolationError{Reason: "server requested a multi-round SASL exchange, which this driver does not support"}
	default:
		return &xerrors.ProtocolViolationError{Reason: fmt.Sprintf("unexpected opcode 0x%02x during authentication", f.OpCode)}
	}
}

func (c *Conn) setState(s State) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if !c.state.canTransitionTo(s) {
		// A connection that lost its socket mid-handshake may already be
		// Closing when a handshake step tries to advance it further;
		// that isn't a bug, just a race between two shutdown triggers.
		if c.state == StateClosing || c.state == StateClosed {
			return
		}
	}
	c.state = s
}

// State reports the connection's current lifecycle state.
func (c *Conn) State() State {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	return c.state
}

func (c *Conn) currentKeyspace() string {
	c.keyspaceMu.RLock()
	defer c.keyspaceMu.RUnlock()
	return c.keyspace
}

func (c *Conn) setKeyspace(ks string) {
	c.keyspaceMu.Lock()
	c.keyspace = ks
	c.keyspaceMu.Unlock()
}

func (c *Conn) resultMetadataIDPresent() bool {
	return c.version >= protocol.ProtocolVersion5
}

// sendRequestUncompressed is used for OPTIONS/STARTUP/AUTH_RESPONSE,
// before compression (if any) has been negotiated with the server.
func (c *Conn) sendRequestUncompressed(ctx context.Context, op protocol.OpCode, body []byte) (*frame.Frame, error) {
	return c.send(ctx, op, body, false, false)
}

func (c *Conn) sendRequest(ctx context.Context, op protocol.OpCode, body []byte) (*frame.Frame, error) {
	return c.sendTraced(ctx, op, body, false)
}

func (c *Conn) sendTraced(ctx context.Context, op protocol.OpCode, body []byte, trace bool) (*frame.Frame, error) {
	_, isNoop := c.codec.(compress.NoopCodec)
	return c.send(ctx, op, body, !isNoop, trace)
}

func (c *Conn) send(ctx context.Context, op protocol.OpCode, body []byte, compressed, trace bool) (*frame.Frame, error) {
	if c.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()
	}

	var streamID int16
	var err error
	if c.submitNonBlocking {
		streamID, err = c.streams.tryAcquire()
	} else {
		streamID, err = c.streams.acquire(ctx)
	}
	if err != nil {
		return nil, err
	}

	waiter := c.inflight.register(streamID)

	var flags uint8
	if compressed {
		flags |= uint8(protocol.FlagCompression)
	}
	if trace {
		flags |= uint8(protocol.FlagTracing)
	}
	f := &frame.Frame{
		Version:  c.version,
		Response: false,
		Flags:    flags,
		StreamID: streamID,
		OpCode:   op,
		Body:     body,
	}
	wire, err := frame.Encode(f, c.codec)
	if err != nil {
		c.inflight.forget(streamID)
		c.streams.release(streamID)
		return nil, err
	}

	c.writeMu.Lock()
	_, writeErr := c.netConn.Write(wire)
	c.writeMu.Unlock()
	if writeErr != nil {
		c.inflight.forget(streamID)
		c.streams.release(streamID)
		return nil, &xerrors.IOError{Op: "write", Err: writeErr}
	}

	select {
	case resp := <-waiter:
		c.streams.release(streamID)
		if resp.err != nil {
			return nil, resp.err
		}
		if resp.frame.OpCode == protocol.OpCodeError {
			se, err := message.DecodeError(resp.frame.Body)
			if err != nil {
				return nil, err
			}
			se.TraceID = resp.frame.TracingID
			return resp.frame, se
		}
		return resp.frame, nil

	case <-ctx.Done():
		// The stream id stays checked out: a late response (or the
		// connection reset that eventually follows) is what reclaims
		// it, not this timeout.
		c.inflight.forget(streamID)
		return nil, &xerrors.TimeoutError{StreamID: streamID, Opcode: fmt.Sprintf("0x%02x", op)}

	case <-c.closed:
		c.inflight.forget(streamID)
		return nil, &xerrors.ConnectionClosedError{}
	}
}

// Query executes a CQL statement directly (no prepare step).
func (c *Conn) Query(ctx context.Context, cql string, params Params) (*result.Result, error) {
	body, err := message.EncodeQuery(message.Query{QueryString: cql, Params: params.toQueryParameters()}, c.version)
	if err != nil {
		return nil, err
	}
	f, err := c.sendTraced(ctx, protocol.OpCodeQuery, body, params.Trace)
	if err != nil {
		return nil, err
	}
	res, err := result.Decode(f.Body, c.resultMetadataIDPresent())
	if err != nil {
		return nil, err
	}
	res.TraceID = f.TracingID
	if res.Kind == protocol.ResultKindSetKeyspace {
		c.setKeyspace(res.SetKeyspace)
	}
	return res, nil
}

// Prepare registers cql with the server (or returns the cached
// descriptor from a previous call against the same keyspace), via
// internal/prepared's singleflight-coalesced registry.
func (c *Conn) Prepare(ctx context.Context, cql string) (*Prepared, error) {
	ks := c.currentKeyspace()
	desc, err := c.prepared.Prepare(ctx, ks, cql, c.doPrepare)
	if err != nil {
		return nil, err
	}
	return &Prepared{Keyspace: ks, Query: cql, Descriptor: desc}, nil
}

func (c *Conn) doPrepare(ctx context.Context, keyspace, query string) (*result.Prepared, error) {
	body, err := message.EncodePrepare(message.Prepare{Query: query}, c.version)
	if err != nil {
		return nil, err
	}
	f, err := c.sendRequest(ctx, protocol.OpCodePrepare, body)
	if err != nil {
		return nil, err
	}
	res, err := result.Decode(f.Body, c.resultMetadataIDPresent())
	if err != nil {
		return nil, err
	}
	if res.Kind != protocol.ResultKindPrepared || res.Prepared == nil {
		return nil, &xerrors.ProtocolViolationError{Reason: "PREPARE response was not a Prepared result"}
	}
	return res.Prepared, nil
}

// Execute binds params against a previously prepared statement. If the
// server has forgotten the statement (an UNPREPARED response, e.g.
// after a schema change invalidated its cache), Execute transparently
// re-prepares it once and retries, unless DisableUnpreparedRetry was
// set.
func (c *Conn) Execute(ctx context.Context, p *Prepared, params Params) (*result.Result, error) {
	res, err := c.execute(ctx, p, params)
	if err == nil {
		return res, nil
	}

	var se *xerrors.ServerError
	if !c.disableUnpreparedRetry && errors.As(err, &se) && se.IsUnprepared() {
		c.prepared.Invalidate(p.Keyspace, p.Query)
		newDesc, prepErr := c.prepared.Prepare(ctx, p.Keyspace, p.Query, c.doPrepare)
		if prepErr != nil {
			return nil, prepErr
		}
		p.Descriptor = newDesc
		return c.execute(ctx, p, params)
	}
	return nil, err
}

func (c *Conn) execute(ctx context.Context, p *Prepared, params Params) (*result.Result, error) {
	body, err := message.EncodeExecute(message.Execute{
		ID:               p.Descriptor.ID,
		ResultMetadataID: p.Descriptor.ResultMetadataID,
		Params:           params.toQueryParameters(),
	}, c.version)
	if err != nil {
		return nil, err
	}
	f, err := c.sendTraced(ctx, protocol.OpCodeExecute, body, params.Trace)
	if err != nil {
		return nil, err
	}
	res, err := result.Decode(f.Body, c.resultMetadataIDPresent())
	if err != nil {
		return nil, err
	}
	res.TraceID = f.TracingID
	return res, nil
}

// BatchStatement is one statement within a batch: either a prepared
// statement bound by position, or a raw query string.
type BatchStatement struct {
	Prepared *Prepared
	Query    string
	Values   []message.Value
}

// BatchSpec describes a BATCH request.
type BatchSpec struct {
	Kind              protocol.BatchKind
	Statements        []BatchStatement
	Consistency       protocol.Consistency
	SerialConsistency protocol.Consistency
	Timestamp         *int64
	Keyspace          string
	Trace             bool
}

func (spec BatchSpec) build() (message.Batch, error) {
	children := make([]message.BatchChild, len(spec.Statements))
	for i, s := range spec.Statements {
		if s.Prepared != nil {
			children[i] = message.BatchChild{IsPrepared: true, ID: s.Prepared.Descriptor.ID, Values: s.Values}
		} else {
			if s.Query == "" {
				return message.Batch{}, &xerrors.ValidationError{Field: "statements", Message: "batch statement has neither a prepared handle nor a query string"}
			}
			children[i] = message.BatchChild{IsPrepared: false, Query: s.Query, Values: s.Values}
		}
	}
	return message.Batch{
		Kind:              spec.Kind,
		Children:          children,
		Consistency:       spec.Consistency,
		SerialConsistency: spec.SerialConsistency,
		Timestamp:         spec.Timestamp,
		Keyspace:          spec.Keyspace,
	}, nil
}

// Batch executes a BATCH request, retrying exactly like Execute when
// the server reports one of its prepared children UNPREPARED.
func (c *Conn) Batch(ctx context.Context, spec BatchSpec) (*result.Result, error) {
	res, err := c.batchOnce(ctx, spec)
	if err == nil {
		return res, nil
	}

	var se *xerrors.ServerError
	if !c.disableUnpreparedRetry && errors.As(err, &se) && se.IsUnprepared() {
		found := false
		for _, s := range spec.Statements {
			if s.Prepared != nil && bytes.Equal(s.Prepared.Descriptor.ID, se.UnpreparedID) {
				c.prepared.Invalidate(s.Prepared.Keyspace, s.Prepared.Query)
				newDesc, prepErr := c.prepared.Prepare(ctx, s.Prepared.Keyspace, s.Prepared.Query, c.doPrepare)
				if prepErr != nil {
					return nil, prepErr
				}
				s.Prepared.Descriptor = newDesc
				found = true
			}
		}
		if found {
			return c.batchOnce(ctx, spec)
		}
	}
	return nil, err
}

func (c *Conn) batchOnce(ctx context.Context, spec BatchSpec) (*result.Result, error) {
	b, err := spec.build()
	if err != nil {
		return nil, err
	}
	body, err := message.EncodeBatch(b)
	if err != nil {
		return nil, err
	}
	f, err := c.sendTraced(ctx, protocol.OpCodeBatch, body, spec.Trace)
	if err != nil {
		return nil, err
	}
	res, err := result.Decode(f.Body, c.resultMetadataIDPresent())
	if err != nil {
		return nil, err
	}
	res.TraceID = f.TracingID
	return res, nil
}

// Subscribe registers for server-pushed EVENT frames of the given
// types and returns a subscription id for Unsubscribe. sink may be nil
// to register interest (so Connect's initial REGISTER can run) without
// anyone actually consuming events yet.
func (c *Conn) Subscribe(eventTypes []protocol.EventType, sink chan<- message.Event) (int, error) {
	body, err := message.EncodeRegister(message.Register{EventTypes: eventTypes})
	if err != nil {
		return 0, err
	}
	if _, err := c.sendRequest(context.Background(), protocol.OpCodeRegister, body); err != nil {
		return 0, err
	}
	if sink == nil {
		return 0, nil
	}
	return c.events.subscribe(sink), nil
}

// Unsubscribe removes a previously registered event sink. It does not
// un-REGISTER with the server; the connection simply stops forwarding
// events to this subscriber.
func (c *Conn) Unsubscribe(subID int) {
	c.events.unsubscribe(subID)
}

// readLoop is the connection's single reader: it reads one frame at a
// time and either delivers it to the waiter for its stream id, or (for
// the reserved event stream) fans it out to event subscribers. A
// decode or I/O error here poisons the connection, since framing sync
// with the server is unrecoverable once lost.
func (c *Conn) readLoop() {
	defer close(c.readDone)

	header := make([]byte, protocol.HeaderLength)
	for {
		if _, err := io.ReadFull(c.netConn, header); err != nil {
			c.poison(&xerrors.IOError{Op: "read header", Err: err})
			return
		}
		bodyLen, err := frame.BodyLength(header)
		if err != nil {
			c.poison(err)
			return
		}
		body := make([]byte, bodyLen)
		if bodyLen > 0 {
			if _, err := io.ReadFull(c.netConn, body); err != nil {
				c.poison(&xerrors.IOError{Op: "read body", Err: err})
				return
			}
		}

		f, err := frame.DecodeHeader(header)
		if err != nil {
			c.poison(err)
			return
		}
		if err := frame.DecodePayload(&f, body, c.codec); err != nil {
			c.poison(err)
			return
		}

		if f.StreamID == protocol.EventStreamID {
			if f.OpCode == protocol.OpCodeEvent {
				if ev, err := message.DecodeEvent(f.Body); err == nil {
					c.events.dispatch(ev)
				} else {
					c.logger.Warnf("discarding malformed EVENT frame: %v", err)
				}
			}
			continue
		}

		if !c.inflight.complete(f.StreamID, pendingResponse{frame: &f}) {
			// No waiter found: the caller already gave up on this
			// stream id after a request timeout. A response has now
			// genuinely arrived for it, so reclaim it for reuse rather
			// than leaking it for the life of the connection.
			c.streams.release(f.StreamID)
		}
	}
}

// poison transitions the connection to Closing/Closed and wakes every
// pending waiter with err, mirroring what a deliberate Close does.
func (c *Conn) poison(err error) {
	c.logger.Errorf("connection poisoned: %v", err)
	c.closeOnce.Do(func() {
		c.setState(StateClosing)
		c.inflight.drainAll(err)
		_ = c.netConn.Close()
		c.setState(StateClosed)
		close(c.closed)
	})
}

// Close stops accepting new requests, waits up to grace for in-flight
// requests to drain, then fails any still pending with
// ConnectionClosedError and closes the socket. A grace of zero closes
// immediately.
func (c *Conn) Close(grace time.Duration) error {
	c.closeOnce.Do(func() {
		c.setState(StateClosing)

		if grace > 0 {
			deadline := time.Now().Add(grace)
			for c.inflight.len() > 0 && time.Now().Before(deadline) {
				time.Sleep(time.Millisecond)
			}
		}

		c.inflight.drainAll(&xerrors.ConnectionClosedError{Reason: "closed by caller"})
		_ = c.netConn.Close()
		c.setState(StateClosed)
		close(c.closed)
	})
	<-c.readDone
	return nil
}
