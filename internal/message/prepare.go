package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// Prepare is the PREPARE request. Keyspace is only sent on protocol v5,
// letting a statement be prepared against a keyspace other than the
// connection's current one without a USE.
type Prepare struct {
	Query    string
	Keyspace string
}

// EncodePrepare renders a PREPARE body. The flags word (and Keyspace)
// exist only at protocol v5; v3/v4 bodies are just the query string.
func EncodePrepare(p Prepare, version protocol.ProtocolVersion) ([]byte, error) {
	w := primitive.NewWriter(len(p.Query) + 8)
	if err := w.LongString("prepare.query", p.Query); err != nil {
		return nil, err
	}
	if version >= protocol.ProtocolVersion5 {
		if p.Keyspace != "" {
			w.Int(0x01) // v5 PREPARE flags: bit 0 = with keyspace
			if err := w.String("prepare.keyspace", p.Keyspace); err != nil {
				return nil, err
			}
		} else {
			w.Int(0)
		}
	}
	return w.Bytes(), nil
}

// DecodePrepare is provided for the driver's own round-trip tests.
func DecodePrepare(body []byte, version protocol.ProtocolVersion) (Prepare, error) {
	r := primitive.NewReader(body)
	q, err := r.LongString("prepare.query")
	if err != nil {
		return Prepare{}, err
	}
	p := Prepare{Query: q}
	if version >= protocol.ProtocolVersion5 {
		flags, err := r.Int("prepare.flags")
		if err != nil {
			return Prepare{}, err
		}
		if flags&0x01 != 0 {
			ks, err := r.String("prepare.keyspace")
			if err != nil {
				return Prepare{}, err
			}
			p.Keyspace = ks
		}
	}
	return p, nil
}
