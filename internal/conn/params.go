package conn

import (
	"github.com/onoffswitch/gocassa/internal/message"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// Params is a connection-level view of a statement's bind values and
// per-request settings. Values are already wire-encoded
// (message.Value) by the time they reach this package; the
// cassandra package's Val/TypedVal constructors own turning a Go value
// plus its CQL type into that encoding via internal/datatype.
type Params struct {
	Values            []message.Value
	Consistency       protocol.Consistency // zero value defaults to LOCAL_ONE
	SkipMetadata      bool
	PageSize          int32
	PagingState       []byte
	SerialConsistency protocol.Consistency
	Timestamp         *int64
	Keyspace          string
	NowInSeconds      *int32

	// Trace requests a tracing session for this one request; the trace
	// id, if any, comes back on the Result (or on the ServerError, if
	// the request failed server-side).
	Trace bool
}

func (p Params) toQueryParameters() message.QueryParameters {
	cl := p.Consistency
	if cl == 0 {
		cl = protocol.ConsistencyLocalOne
	}
	return message.QueryParameters{
		Consistency:       cl,
		Values:            p.Values,
		SkipMetadata:      p.SkipMetadata,
		PageSize:          p.PageSize,
		PagingState:       p.PagingState,
		SerialConsistency: p.SerialConsistency,
		Timestamp:         p.Timestamp,
		Keyspace:          p.Keyspace,
		NowInSeconds:      p.NowInSeconds,
	}
}
