// Package frame implements the native protocol's outermost envelope: the
// 9-byte header, the optional body compression, and the tracing-id /
// warnings / custom-payload prefix that a response body may carry ahead
// of its message-specific content (CQL binary protocol v4 §2).
//
// Everything below the header is opaque to this package; the message
// bytes it returns are handed to internal/message for opcode-specific
// decoding.
package frame

import (
	"fmt"

	"github.com/onoffswitch/gocassa/internal/compress"
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Frame is a fully decoded envelope: header fields plus whatever
// optional metadata its flags declared, with Body holding only the
// opcode-specific bytes a message codec needs.
type Frame struct {
	Version  protocol.ProtocolVersion
	Response bool
	Flags    uint8
	StreamID int16
	OpCode   protocol.OpCode

	TracingID     *[16]byte
	CustomPayload map[string][]byte
	Warnings      []string

	Body []byte
}

// Encode renders f as wire bytes, compressing the body with codec when
// f.Flags requests it. STARTUP and OPTIONS are never compressed (the
// server has not yet agreed on an algorithm when they are sent), which
// callers enforce by leaving FlagCompression unset on those frames.
func Encode(f *Frame, codec compress.Codec) ([]byte, error) {
	w := primitive.NewWriter(len(f.Body) + 32)

	if f.TracingID != nil {
		w.UUID(*f.TracingID)
	}
	if len(f.Warnings) > 0 {
		if err := w.StringList("warnings", f.Warnings); err != nil {
			return nil, err
		}
	}
	if f.CustomPayload != nil {
		if err := w.BytesMap("custom_payload", f.CustomPayload); err != nil {
			return nil, err
		}
	}
	w.Raw(f.Body)

	payload := w.Bytes()
	compressed := f.Flags&uint8(protocol.FlagCompression) != 0
	if compressed {
		var err error
		payload, err = codec.Compress(payload)
		if err != nil {
			return nil, &xerrors.EncodeError{Field: "frame.body", Err: err}
		}
	}
	if len(payload) > protocol.MaxBodyLength {
		return nil, &xerrors.OversizedFrameError{Declared: len(payload), Max: protocol.MaxBodyLength}
	}

	out := make([]byte, 0, protocol.HeaderLength+len(payload))
	hw := primitive.NewWriter(protocol.HeaderLength)
	versionByte := uint8(f.Version)
	if f.Response {
		versionByte |= protocol.DirectionResponseBit
	}
	hw.Byte(versionByte)
	hw.Byte(f.Flags)
	hw.Short(uint16(f.StreamID))
	hw.Byte(uint8(f.OpCode))
	hw.Int(int32(len(payload)))
	out = append(out, hw.Bytes()...)
	out = append(out, payload...)
	return out, nil
}

// DecodeHeader parses the fixed 9-byte header from buf, which must be
// exactly that long; it is the caller's job (internal/conn's read loop)
// to read exactly HeaderLength bytes off the wire before calling this.
func DecodeHeader(buf []byte) (f Frame, err error) {
	if len(buf) != protocol.HeaderLength {
		return Frame{}, &xerrors.ProtocolViolationError{Reason: fmt.Sprintf("header must be %d bytes, got %d", protocol.HeaderLength, len(buf))}
	}
	r := primitive.NewReader(buf)
	versionByte, err := r.Byte("version")
	if err != nil {
		return Frame{}, err
	}
	f.Response = versionByte&protocol.DirectionResponseBit != 0
	f.Version = protocol.ProtocolVersion(versionByte &^ protocol.DirectionResponseBit)

	flags, err := r.Byte("flags")
	if err != nil {
		return Frame{}, err
	}
	if !protocol.KnownHeaderFlags(flags) {
		return Frame{}, &xerrors.ProtocolViolationError{Reason: fmt.Sprintf("unknown header flag bits in 0x%02x", flags)}
	}
	f.Flags = flags

	streamID, err := r.Short("stream_id")
	if err != nil {
		return Frame{}, err
	}
	f.StreamID = int16(streamID)

	opByte, err := r.Byte("opcode")
	if err != nil {
		return Frame{}, err
	}
	f.OpCode = protocol.OpCode(opByte)

	return f, nil
}

// BodyLength reads the declared body length out of the raw 9-byte
// header, so the read loop knows how many more bytes to buffer before
// calling DecodePayload.
func BodyLength(header []byte) (int, error) {
	if len(header) != protocol.HeaderLength {
		return 0, &xerrors.ProtocolViolationError{Reason: "header must be 9 bytes to read its length field"}
	}
	r := primitive.NewReader(header[5:9])
	n, err := r.Int("length")
	if err != nil {
		return 0, err
	}
	if n < 0 || int(n) > protocol.MaxBodyLength {
		return 0, &xerrors.OversizedFrameError{Declared: int(n), Max: protocol.MaxBodyLength}
	}
	return int(n), nil
}

// DecodePayload fills in f's metadata and Body from the already-read
// body bytes, decompressing first if FlagCompression is set. f must
// already carry Version/Response/Flags/StreamID/OpCode from
// DecodeHeader.
func DecodePayload(f *Frame, body []byte, codec compress.Codec) error {
	if f.Flags&uint8(protocol.FlagCompression) != 0 {
		decompressed, err := codec.Decompress(body)
		if err != nil {
			return &xerrors.DecodeError{Field: "frame.body", Err: err}
		}
		body = decompressed
	}

	r := primitive.NewReader(body)

	if f.Response && f.Flags&uint8(protocol.FlagTracing) != 0 {
		id, err := r.UUID("tracing_id")
		if err != nil {
			return err
		}
		f.TracingID = &id
	}
	if f.Response && f.Flags&uint8(protocol.FlagWarning) != 0 {
		warnings, err := r.StringList("warnings")
		if err != nil {
			return err
		}
		f.Warnings = warnings
	}
	if f.Flags&uint8(protocol.FlagCustomPayload) != 0 {
		payload, err := r.BytesMap("custom_payload")
		if err != nil {
			return err
		}
		f.CustomPayload = payload
	}

	f.Body = r.Tail()
	return nil
}
