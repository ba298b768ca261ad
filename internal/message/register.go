package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// Register is the REGISTER request: a list of event types the
// connection wants pushed to it as unsolicited EVENT frames on the
// reserved event stream.
type Register struct {
	EventTypes []protocol.EventType
}

// EncodeRegister renders a REGISTER body.
func EncodeRegister(reg Register) ([]byte, error) {
	list := make([]string, len(reg.EventTypes))
	for i, t := range reg.EventTypes {
		list[i] = string(t)
	}
	w := primitive.NewWriter(32)
	if err := w.StringList("register.event_types", list); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeRegister is provided for the driver's own round-trip tests.
func DecodeRegister(body []byte) (Register, error) {
	r := primitive.NewReader(body)
	list, err := r.StringList("register.event_types")
	if err != nil {
		return Register{}, err
	}
	out := make([]protocol.EventType, len(list))
	for i, s := range list {
		out[i] = protocol.EventType(s)
	}
	return Register{EventTypes: out}, nil
}
