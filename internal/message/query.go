package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// Query is the QUERY request: a CQL statement text plus its bind
// parameters and consistency settings.
type Query struct {
	QueryString string
	Params      QueryParameters
}

// EncodeQuery renders a QUERY body for the given protocol version.
func EncodeQuery(q Query, version protocol.ProtocolVersion) ([]byte, error) {
	w := primitive.NewWriter(len(q.QueryString) + 16)
	if err := w.LongString("query.query_string", q.QueryString); err != nil {
		return nil, err
	}
	if err := EncodeQueryParameters(w, q.Params, version); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeQuery is provided for the driver's own round-trip tests.
func DecodeQuery(body []byte, version protocol.ProtocolVersion) (Query, error) {
	r := primitive.NewReader(body)
	qs, err := r.LongString("query.query_string")
	if err != nil {
		return Query{}, err
	}
	params, err := DecodeQueryParameters(r, version)
	if err != nil {
		return Query{}, err
	}
	return Query{QueryString: qs, Params: params}, nil
}
