package cassandra

import (
	"context"

	"github.com/onoffswitch/gocassa/internal/conn"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// BatchKind identifies the kind of statement in a BATCH entry.
type BatchKind = protocol.BatchKind

// The batch kinds the native protocol supports.
const (
	BatchLogged   = protocol.BatchKindLogged
	BatchUnlogged = protocol.BatchKindUnlogged
	BatchCounter  = protocol.BatchKindCounter
)

// BatchStatement is one statement within a batch: either a prepared
// statement bound by position, or a raw query string.
type BatchStatement struct {
	Prepared *Prepared
	Query    string
	Values   []Value
}

// BatchSpec describes a BATCH request.
type BatchSpec struct {
	Kind              BatchKind
	Statements        []BatchStatement
	Consistency       Consistency
	SerialConsistency Consistency
	Timestamp         *int64
	Keyspace          string
	Trace             bool
}

func (spec BatchSpec) toInternal() conn.BatchSpec {
	statements := make([]conn.BatchStatement, len(spec.Statements))
	for i, s := range spec.Statements {
		cs := conn.BatchStatement{Query: s.Query, Values: s.Values}
		if s.Prepared != nil {
			cs.Prepared = s.Prepared.toInternal()
		}
		statements[i] = cs
	}
	return conn.BatchSpec{
		Kind:              spec.Kind,
		Statements:        statements,
		Consistency:       spec.Consistency,
		SerialConsistency: spec.SerialConsistency,
		Timestamp:         spec.Timestamp,
		Keyspace:          spec.Keyspace,
		Trace:             spec.Trace,
	}
}

// Batch executes a BATCH request, retrying exactly like Execute when
// the server reports one of its prepared children UNPREPARED.
func (c *Conn) Batch(ctx context.Context, spec BatchSpec) (*Result, error) {
	internalSpec := spec.toInternal()
	r, err := c.inner.Batch(ctx, internalSpec)
	if err != nil {
		return nil, err
	}
	// A statement's descriptor may have been refreshed by an
	// UNPREPARED retry; propagate it back to the caller's handles.
	for i, cs := range internalSpec.Statements {
		if spec.Statements[i].Prepared != nil && cs.Prepared != nil {
			spec.Statements[i].Prepared.descriptor = cs.Prepared.Descriptor
		}
	}
	return wrapResult(r), nil
}
