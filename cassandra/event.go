package cassandra

import (
	"github.com/onoffswitch/gocassa/internal/message"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// EventType identifies a subscription category for Subscribe.
type EventType = protocol.EventType

// The event categories the native protocol supports.
const (
	EventTopologyChange = protocol.EventTopologyChange
	EventStatusChange   = protocol.EventStatusChange
	EventSchemaChange   = protocol.EventSchemaChange
)

// Event is a server-pushed notification delivered to a Subscribe sink.
type Event = message.Event
