package result

import "github.com/onoffswitch/gocassa/internal/primitive"

// Prepared is a RESULT body of kind Prepared: the opaque statement id a
// client presents in subsequent EXECUTE requests, plus the metadata
// describing the bind markers and the eventual result columns.
type Prepared struct {
	ID                []byte
	ResultMetadataID  []byte // v5 only
	VariablesMetadata Metadata
	ResultMetadata    Metadata
}

// DecodePrepared parses a Prepared RESULT body (the kind field has
// already been consumed). resultMetadataIDPresent is true on protocol
// v5, where a short-bytes result_metadata_id follows the statement id.
func DecodePrepared(r *primitive.Reader, resultMetadataIDPresent bool) (*Prepared, error) {
	id, err := r.ShortBytes("prepared.id")
	if err != nil {
		return nil, err
	}
	p := &Prepared{ID: id}

	if resultMetadataIDPresent {
		rmID, err := r.ShortBytes("prepared.result_metadata_id")
		if err != nil {
			return nil, err
		}
		p.ResultMetadataID = rmID
	}

	vars, err := DecodeMetadata(r, true)
	if err != nil {
		return nil, err
	}
	p.VariablesMetadata = vars

	res, err := DecodeMetadata(r, false)
	if err != nil {
		return nil, err
	}
	p.ResultMetadata = res

	return p, nil
}
