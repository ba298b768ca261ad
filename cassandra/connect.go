package cassandra

import (
	"context"
	"time"

	"github.com/onoffswitch/gocassa/internal/conn"
)

// Conn is one live connection to a single Cassandra node. It is safe
// for concurrent use: the underlying connection multiplexes requests
// over the native protocol's stream ids and serializes writes itself.
type Conn struct {
	inner *conn.Conn
}

// Connect dials addr, validates opts, performs the STARTUP handshake
// (including authentication if the server requires it), optionally
// issues a USE for opts.Keyspace and a REGISTER for opts.EventTypes,
// and returns a Conn ready to serve requests.
func Connect(ctx context.Context, addr string, opts Options) (*Conn, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	cfg, err := opts.toConfig()
	if err != nil {
		return nil, err
	}
	ic, err := conn.Connect(ctx, addr, cfg)
	if err != nil {
		return nil, err
	}
	return &Conn{inner: ic}, nil
}

// Close stops accepting new requests, waits up to grace for in-flight
// requests to drain, then fails any still pending and closes the
// socket. A grace of zero closes immediately.
func (c *Conn) Close(grace time.Duration) error {
	return c.inner.Close(grace)
}

// Subscribe registers for server-pushed EVENT frames of the given
// types and returns a subscription id for Unsubscribe. sink may be nil
// to register interest without consuming events.
func (c *Conn) Subscribe(eventTypes []EventType, sink chan<- Event) (int, error) {
	return c.inner.Subscribe(eventTypes, sink)
}

// Unsubscribe removes a previously registered event sink.
func (c *Conn) Unsubscribe(subID int) {
	c.inner.Unsubscribe(subID)
}
