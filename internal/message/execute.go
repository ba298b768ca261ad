package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// Execute is the EXECUTE request: a prepared statement id plus the
// bound values and consistency settings for this invocation.
// ResultMetadataID is sent only at protocol v5, where EXECUTE carries
// the result-set metadata id the server handed back from PREPARE so it
// can tell the driver when that metadata has since changed.
type Execute struct {
	ID               []byte
	ResultMetadataID []byte
	Params           QueryParameters
}

// EncodeExecute renders an EXECUTE body: <id>[<result_metadata_id>]<query_parameters>,
// the middle field present only at protocol v5.
func EncodeExecute(e Execute, version protocol.ProtocolVersion) ([]byte, error) {
	w := primitive.NewWriter(len(e.ID) + 16)
	if err := w.ShortBytes("execute.id", e.ID); err != nil {
		return nil, err
	}
	if version >= protocol.ProtocolVersion5 {
		if err := w.ShortBytes("execute.result_metadata_id", e.ResultMetadataID); err != nil {
			return nil, err
		}
	}
	if err := EncodeQueryParameters(w, e.Params, version); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// DecodeExecute is provided for the driver's own round-trip tests.
func DecodeExecute(body []byte, version protocol.ProtocolVersion) (Execute, error) {
	r := primitive.NewReader(body)
	id, err := r.ShortBytes("execute.id")
	if err != nil {
		return Execute{}, err
	}
	var resultMetadataID []byte
	if version >= protocol.ProtocolVersion5 {
		resultMetadataID, err = r.ShortBytes("execute.result_metadata_id")
		if err != nil {
			return Execute{}, err
		}
	}
	params, err := DecodeQueryParameters(r, version)
	if err != nil {
		return Execute{}, err
	}
	return Execute{ID: id, ResultMetadataID: resultMetadataID, Params: params}, nil
}
