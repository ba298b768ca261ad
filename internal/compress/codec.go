// Package compress implements the pluggable frame-body compression the
// native protocol negotiates during STARTUP (CQL binary protocol v4
// §4.1.1.1, option "COMPRESSION"): once a connection and the server have
// agreed on an algorithm, every frame after STARTUP carries its body
// compressed, sender-to-receiver, with the FlagCompression header bit
// set.
//
// A connection picks its Codec once, at Options validation time, and
// applies it uniformly; there is no per-frame negotiation.
package compress

import "fmt"

// Codec compresses outgoing frame bodies and decompresses incoming ones.
// Implementations must be safe for concurrent use: a single Conn may
// compress a write on one goroutine while decompressing a read on
// another.
type Codec interface {
	// Name is the wire identifier sent in STARTUP's COMPRESSION option
	// and reported back in the OPTIONS/SUPPORTED exchange ("lz4" or
	// "snappy").
	Name() string

	// Compress returns the compressed form of data. It does not retain
	// data past the call.
	Compress(data []byte) ([]byte, error)

	// Decompress returns the decompressed form of data.
	Decompress(data []byte) ([]byte, error)
}

// ByName resolves one of the driver's built-in codecs by its wire name.
// It is used when Options.Compression names a codec instead of supplying
// one directly.
func ByName(name string) (Codec, error) {
	switch name {
	case "", "none":
		return NoopCodec{}, nil
	case "lz4":
		return NewLZ4Codec(), nil
	case "snappy":
		return NewSnappyCodec(), nil
	default:
		return nil, fmt.Errorf("compress: unknown codec %q", name)
	}
}

// NoopCodec implements Codec without compressing; it exists so a
// connection can uniformly call through the Codec interface even when
// Options.Compression is unset.
type NoopCodec struct{}

var _ Codec = NoopCodec{}

func (NoopCodec) Name() string { return "none" }

func (NoopCodec) Compress(data []byte) ([]byte, error) { return data, nil }

func (NoopCodec) Decompress(data []byte) ([]byte, error) { return data, nil }
