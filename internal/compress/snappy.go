package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// SnappyCodec implements the native protocol's "snappy" body
// compression. Unlike lz4 it carries no separate length prefix; the
// Snappy block format encodes its own uncompressed length. We use klauspost/compress/s2's
// Snappy-compatible encoder rather than a pure Snappy implementation:
// it decodes any Snappy stream a Cassandra server produces while giving
// faster encode on our side (CQL binary protocol v4 §4.1.1.1, "snappy").
type SnappyCodec struct{}

var _ Codec = SnappyCodec{}

// NewSnappyCodec returns a Snappy-compatible body codec.
func NewSnappyCodec() SnappyCodec { return SnappyCodec{} }

func (SnappyCodec) Name() string { return "snappy" }

func (c SnappyCodec) Compress(data []byte) ([]byte, error) {
	return s2.EncodeSnappy(nil, data), nil
}

func (c SnappyCodec) Decompress(data []byte) ([]byte, error) {
	out, err := s2.Decode(nil, data)
	if err != nil {
		return nil, &xerrors.DecodeError{Field: "snappy.body", Err: err}
	}
	return out, nil
}
