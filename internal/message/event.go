package message

import (
	"net"

	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Event is a server-pushed notification delivered on the reserved event
// stream after a successful REGISTER. Only the fields relevant to Type
// are populated; the rest stay at their zero value.
type Event struct {
	Type protocol.EventType

	// TOPOLOGY_CHANGE / STATUS_CHANGE
	ChangeType string
	Address    net.IP
	Port       int32

	// SCHEMA_CHANGE
	SchemaChangeType string
	Target           string
	Keyspace         string
	Name             string
	ArgumentTypes    []string
}

// DecodeEvent parses an EVENT body.
func DecodeEvent(body []byte) (Event, error) {
	r := primitive.NewReader(body)
	typ, err := r.String("event.type")
	if err != nil {
		return Event{}, err
	}
	e := Event{Type: protocol.EventType(typ)}

	switch e.Type {
	case protocol.EventTopologyChange, protocol.EventStatusChange:
		changeType, err := r.String("event.change_type")
		if err != nil {
			return Event{}, err
		}
		ip, port, err := r.InetAddrWithPort("event.address")
		if err != nil {
			return Event{}, err
		}
		e.ChangeType, e.Address, e.Port = changeType, ip, port

	case protocol.EventSchemaChange:
		changeType, err := r.String("event.schema_change_type")
		if err != nil {
			return Event{}, err
		}
		target, err := r.String("event.target")
		if err != nil {
			return Event{}, err
		}
		keyspace, err := r.String("event.keyspace")
		if err != nil {
			return Event{}, err
		}
		e.SchemaChangeType, e.Target, e.Keyspace = changeType, target, keyspace

		switch target {
		case "TABLE", "TYPE":
			name, err := r.String("event.name")
			if err != nil {
				return Event{}, err
			}
			e.Name = name
		case "FUNCTION", "AGGREGATE":
			name, err := r.String("event.name")
			if err != nil {
				return Event{}, err
			}
			argTypes, err := r.StringList("event.argument_types")
			if err != nil {
				return Event{}, err
			}
			e.Name, e.ArgumentTypes = name, argTypes
		case "KEYSPACE":
			// no further fields
		}

	default:
		return Event{}, &xerrors.ProtocolViolationError{Reason: "unknown EVENT type " + typ}
	}

	return e, nil
}
