package compress

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// lz4CompressorPool pools lz4.Compressor instances; they carry internal
// match-finder state that is worth reusing across frames rather than
// allocating per call.
var lz4CompressorPool = sync.Pool{
	New: func() any { return &lz4.Compressor{} },
}

// LZ4Codec implements the native protocol's "lz4" body compression. The
// wire form is the block-compression API (not the frame format):
// a 4-byte big-endian uncompressed length, followed by the LZ4 block
// (CQL binary protocol v4 §4.1.1.1, "lz4").
type LZ4Codec struct{}

var _ Codec = LZ4Codec{}

// NewLZ4Codec returns an LZ4 body codec.
func NewLZ4Codec() LZ4Codec { return LZ4Codec{} }

func (LZ4Codec) Name() string { return "lz4" }

func (c LZ4Codec) Compress(data []byte) ([]byte, error) {
	bound := lz4.CompressBlockBound(len(data))
	out := make([]byte, 4+bound)
	binary.BigEndian.PutUint32(out[:4], uint32(len(data)))

	if len(data) == 0 {
		return out[:4], nil
	}

	comp, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(comp)

	n, err := comp.CompressBlock(data, out[4:])
	if err != nil {
		return nil, &xerrors.EncodeError{Field: "lz4.body", Err: err}
	}
	if n == 0 {
		// Incompressible input: lz4 leaves the block empty rather than
		// expanding it. Fall back to storing the data uncompressed is
		// not an option here since the wire form has no "stored" flag,
		// so widen the destination and retry without the bound hint.
		out = append(out[:4], make([]byte, len(data)+16)...)
		n, err = comp.CompressBlock(data, out[4:])
		if err != nil || n == 0 {
			return nil, &xerrors.EncodeError{Field: "lz4.body", Err: fmt.Errorf("block did not compress")}
		}
	}
	return out[:4+n], nil
}

func (c LZ4Codec) Decompress(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, &xerrors.DecodeError{Field: "lz4.body", Err: fmt.Errorf("body shorter than the 4-byte length prefix")}
	}
	n := binary.BigEndian.Uint32(data[:4])
	if n == 0 {
		return []byte{}, nil
	}
	dst := make([]byte, n)
	written, err := lz4.UncompressBlock(data[4:], dst)
	if err != nil {
		return nil, &xerrors.DecodeError{Field: "lz4.body", Err: err}
	}
	return dst[:written], nil
}
