package cassandra

import (
	"github.com/onoffswitch/gocassa/internal/conn"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// Consistency is the replication-agreement level required for a read
// or write.
type Consistency = protocol.Consistency

// The consistency levels the native protocol defines.
const (
	ConsistencyAny         = protocol.ConsistencyAny
	ConsistencyOne         = protocol.ConsistencyOne
	ConsistencyTwo         = protocol.ConsistencyTwo
	ConsistencyThree       = protocol.ConsistencyThree
	ConsistencyQuorum      = protocol.ConsistencyQuorum
	ConsistencyAll         = protocol.ConsistencyAll
	ConsistencyLocalQuorum = protocol.ConsistencyLocalQuorum
	ConsistencyEachQuorum  = protocol.ConsistencyEachQuorum
	ConsistencySerial      = protocol.ConsistencySerial
	ConsistencyLocalSerial = protocol.ConsistencyLocalSerial
	ConsistencyLocalOne    = protocol.ConsistencyLocalOne
)

// Params is a statement's bind values and per-request settings.
type Params struct {
	Values            []Value
	Consistency       Consistency // zero value defaults to LOCAL_ONE
	SkipMetadata      bool
	PageSize          int32
	PagingState       []byte
	SerialConsistency Consistency
	Timestamp         *int64
	Keyspace          string
	NowInSeconds      *int32

	// Trace requests a tracing session for this one request; the
	// session id comes back on Result.TraceID, or on the
	// *xerrors.ServerError if the request fails server-side.
	Trace bool
}

// Bind builds Params.Values from bare Go values, using Val's default
// type inference for each one. Use Params.Values directly (with
// TypedVal) when a bind marker needs an explicit, non-default type.
func Bind(values ...any) ([]Value, error) {
	out := make([]Value, len(values))
	for i, v := range values {
		val, err := Val(v)
		if err != nil {
			return nil, err
		}
		out[i] = val
	}
	return out, nil
}

func (p Params) toInternal() conn.Params {
	return conn.Params{
		Values:            p.Values,
		Consistency:       p.Consistency,
		SkipMetadata:      p.SkipMetadata,
		PageSize:          p.PageSize,
		PagingState:       p.PagingState,
		SerialConsistency: p.SerialConsistency,
		Timestamp:         p.Timestamp,
		Keyspace:          p.Keyspace,
		NowInSeconds:      p.NowInSeconds,
		Trace:             p.Trace,
	}
}
