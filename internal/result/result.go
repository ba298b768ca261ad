package result

import (
	"fmt"

	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// SchemaChange mirrors message.Event's SCHEMA_CHANGE payload: the
// RESULT variant is sent as the direct response to the DDL statement
// that caused it, whereas the EVENT variant is pushed later to every
// other registered connection.
type SchemaChange struct {
	ChangeType    string
	Target        string
	Keyspace      string
	Name          string
	ArgumentTypes []string
}

// Result is the decoded RESULT body, tagged by Kind; only the field
// matching Kind is populated.
type Result struct {
	Kind         protocol.ResultKind
	SetKeyspace  string
	Rows         *Rows
	Prepared     *Prepared
	SchemaChange *SchemaChange

	// TraceID is populated by the connection layer when the request that
	// produced this result set the tracing frame flag; Decode itself
	// never sees the frame header, so it always leaves this nil.
	TraceID *[16]byte
}

// Decode parses a RESULT body. resultMetadataIDPresent threads through
// to Prepared decoding (protocol v5 only).
func Decode(body []byte, resultMetadataIDPresent bool) (*Result, error) {
	r := primitive.NewReader(body)
	kindRaw, err := r.Int("result.kind")
	if err != nil {
		return nil, err
	}
	kind := protocol.ResultKind(kindRaw)
	res := &Result{Kind: kind}

	switch kind {
	case protocol.ResultKindVoid:
		// no body

	case protocol.ResultKindSetKeyspace:
		ks, err := r.String("result.keyspace")
		if err != nil {
			return nil, err
		}
		res.SetKeyspace = ks

	case protocol.ResultKindRows:
		rows, err := DecodeRows(r)
		if err != nil {
			return nil, err
		}
		res.Rows = rows

	case protocol.ResultKindPrepared:
		p, err := DecodePrepared(r, resultMetadataIDPresent)
		if err != nil {
			return nil, err
		}
		res.Prepared = p

	case protocol.ResultKindSchemaChange:
		sc, err := decodeSchemaChange(r)
		if err != nil {
			return nil, err
		}
		res.SchemaChange = sc

	default:
		return nil, &xerrors.ProtocolViolationError{Reason: fmt.Sprintf("unknown result kind %d", kind)}
	}

	return res, nil
}

func decodeSchemaChange(r *primitive.Reader) (*SchemaChange, error) {
	changeType, err := r.String("result.schema_change.change_type")
	if err != nil {
		return nil, err
	}
	target, err := r.String("result.schema_change.target")
	if err != nil {
		return nil, err
	}
	keyspace, err := r.String("result.schema_change.keyspace")
	if err != nil {
		return nil, err
	}
	sc := &SchemaChange{ChangeType: changeType, Target: target, Keyspace: keyspace}

	switch target {
	case "TABLE", "TYPE":
		name, err := r.String("result.schema_change.name")
		if err != nil {
			return nil, err
		}
		sc.Name = name
	case "FUNCTION", "AGGREGATE":
		name, err := r.String("result.schema_change.name")
		if err != nil {
			return nil, err
		}
		args, err := r.StringList("result.schema_change.argument_types")
		if err != nil {
			return nil, err
		}
		sc.Name, sc.ArgumentTypes = name, args
	case "KEYSPACE":
		// no further fields
	}
	return sc, nil
}
