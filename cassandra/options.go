package cassandra

import (
	"time"

	"github.com/onoffswitch/gocassa/internal/compress"
	"github.com/onoffswitch/gocassa/internal/conn"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Options configures a connection before it dials. Connect validates
// it eagerly and translates it into an internal/conn.Config; nothing
// in Options is re-read after Connect returns.
type Options struct {
	// Keyspace issues a USE statement right after the handshake. Empty
	// means no keyspace is selected until the caller runs one.
	Keyspace string

	// Username and Password authenticate via PasswordAuthenticator, if
	// the server's AUTHENTICATE response names it. Leaving both empty
	// is valid for servers with authentication disabled.
	Username string
	Password string

	// Compression names the negotiated frame codec: "lz4", "snappy",
	// or empty for none. See internal/compress.ByName for the set of
	// recognized names.
	Compression string

	// ProtocolVersion pins the wire version; zero selects the
	// driver's maximum supported version.
	ProtocolVersion protocol.ProtocolVersion

	// MaxStreams caps how many requests this connection multiplexes at
	// once; zero selects the protocol's maximum (protocol.MaxStreams).
	MaxStreams int

	// ConnectTimeout bounds the initial TCP dial. Zero means no
	// timeout beyond ctx's own deadline.
	ConnectTimeout time.Duration

	// RequestTimeout bounds every request issued on this connection
	// unless the caller's context carries an earlier deadline. Zero
	// means no per-request timeout beyond the caller's context.
	RequestTimeout time.Duration

	// EventTypes subscribes the connection to server-pushed EVENT
	// frames of these categories as part of the handshake. Empty
	// means no REGISTER is sent.
	EventTypes []protocol.EventType

	// Logger receives the connection's diagnostic output. A nil
	// Logger discards it.
	Logger conn.Logger

	// DisableUnpreparedRetry turns off Execute/Batch's automatic
	// re-prepare-and-retry on a server UNPREPARED response.
	DisableUnpreparedRetry bool

	// SubmitNonBlocking makes a request fail immediately with a
	// QueueFullError when every stream id is in flight, instead of
	// waiting for one to free up.
	SubmitNonBlocking bool
}

// Validate reports the first structurally invalid field, or nil if
// Options is ready to dial. Connect calls this before touching the
// network.
func (o Options) Validate() error {
	if o.MaxStreams < 0 {
		return &xerrors.ValidationError{Field: "MaxStreams", Message: "must not be negative"}
	}
	if o.MaxStreams > int(protocol.MaxStreams) {
		return &xerrors.ValidationError{Field: "MaxStreams", Message: "exceeds the protocol's maximum stream count"}
	}
	if o.ConnectTimeout < 0 {
		return &xerrors.ValidationError{Field: "ConnectTimeout", Message: "must not be negative"}
	}
	if o.RequestTimeout < 0 {
		return &xerrors.ValidationError{Field: "RequestTimeout", Message: "must not be negative"}
	}
	if o.ProtocolVersion != 0 && (o.ProtocolVersion < protocol.ProtocolVersionMin || o.ProtocolVersion > protocol.ProtocolVersionMax) {
		return &xerrors.ValidationError{Field: "ProtocolVersion", Message: "unsupported protocol version"}
	}
	if o.Compression != "" {
		if _, err := compress.ByName(o.Compression); err != nil {
			return &xerrors.ValidationError{Field: "Compression", Message: err.Error()}
		}
	}
	if (o.Username == "") != (o.Password == "") {
		return &xerrors.ValidationError{Field: "Password", Message: "Username and Password must both be set or both be empty"}
	}
	return nil
}

func (o Options) toConfig() (conn.Config, error) {
	var codec compress.Codec
	if o.Compression != "" {
		c, err := compress.ByName(o.Compression)
		if err != nil {
			return conn.Config{}, &xerrors.ValidationError{Field: "Compression", Message: err.Error()}
		}
		codec = c
	}
	return conn.Config{
		ProtocolVersion:        o.ProtocolVersion,
		Keyspace:               o.Keyspace,
		Username:               o.Username,
		Password:               o.Password,
		Compression:            codec,
		MaxStreams:             o.MaxStreams,
		ConnectTimeout:         o.ConnectTimeout,
		RequestTimeout:         o.RequestTimeout,
		EventTypes:             o.EventTypes,
		Logger:                 o.Logger,
		DisableUnpreparedRetry: o.DisableUnpreparedRetry,
		SubmitNonBlocking:      o.SubmitNonBlocking,
	}, nil
}
