// Package primitive implements the byte-level alphabet of the Cassandra
// native protocol: the fixed- and variable-width integers, strings,
// collections of strings and bytes, UUIDs and inet addresses that every
// frame and message body is built from (CQL binary protocol v4 §3).
//
// Reader and Writer both operate over a single flat buffer and track an
// explicit cursor, rather than wrapping io.Reader/io.Writer, because
// frame bodies are always fully buffered before decoding begins and
// fully assembled before a write — there is no streaming boundary to
// abstract over.
package primitive

import (
	"encoding/binary"
	"fmt"
	"math"
	"net"
	"unicode/utf8"

	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Reader decodes primitives from a byte slice, advancing an internal
// cursor. It never copies the backing slice; the byte slices returned
// by Bytes, Value, ShortBytes and Tail alias it, while strings, UUIDs
// and inet addresses are copies.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for decoding.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read cursor, useful for error reporting and
// for splitting a buffer at a known boundary (e.g. after the header).
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

// Tail returns the unread tail of the buffer without advancing the
// cursor.
func (r *Reader) Tail() []byte { return r.buf[r.pos:] }

func (r *Reader) need(field string, n int) ([]byte, error) {
	if r.Remaining() < n {
		return nil, &xerrors.TruncatedFrameError{Field: field, Need: n, Have: r.Remaining()}
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// Byte reads a single unsigned byte.
func (r *Reader) Byte(field string) (byte, error) {
	b, err := r.need(field, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Short reads a big-endian uint16 ([short]).
func (r *Reader) Short(field string) (uint16, error) {
	b, err := r.need(field, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Int reads a big-endian int32 ([int]).
func (r *Reader) Int(field string) (int32, error) {
	b, err := r.need(field, 4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// Long reads a big-endian int64 ([long]).
func (r *Reader) Long(field string) (int64, error) {
	b, err := r.need(field, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// Float reads an IEEE-754 binary32 ([float]).
func (r *Reader) Float(field string) (float32, error) {
	b, err := r.need(field, 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

// Double reads an IEEE-754 binary64 ([double]).
func (r *Reader) Double(field string) (float64, error) {
	b, err := r.need(field, 8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// String reads a [string]: a u16 byte length followed by that many
// UTF-8 bytes. The length field counts bytes, never code points.
func (r *Reader) String(field string) (string, error) {
	n, err := r.Short(field + ".length")
	if err != nil {
		return "", err
	}
	b, err := r.need(field, int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &xerrors.InvalidUTF8Error{Field: field}
	}
	return string(b), nil
}

// LongString reads a [long string]: an i32 byte length followed by that
// many UTF-8 bytes.
func (r *Reader) LongString(field string) (string, error) {
	n, err := r.Int(field + ".length")
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", &xerrors.DecodeError{Field: field, Err: fmt.Errorf("negative length %d", n)}
	}
	b, err := r.need(field, int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", &xerrors.InvalidUTF8Error{Field: field}
	}
	return string(b), nil
}

// UUID reads 16 raw bytes ([uuid]).
func (r *Reader) UUID(field string) ([16]byte, error) {
	var out [16]byte
	b, err := r.need(field, 16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

// StringList reads a [string list]: a u16 count followed by that many
// [string] entries.
func (r *Reader) StringList(field string) ([]string, error) {
	n, err := r.Short(field + ".count")
	if err != nil {
		return nil, err
	}
	out := make([]string, n)
	for i := range out {
		s, err := r.String(fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// Bytes reads a [bytes] value: an i32 length, −1 for null (returns nil,
// ok=false), otherwise that many raw bytes.
func (r *Reader) Bytes(field string) (b []byte, ok bool, err error) {
	n, err := r.Int(field + ".length")
	if err != nil {
		return nil, false, err
	}
	if n < 0 {
		return nil, false, nil
	}
	buf, err := r.need(field, int(n))
	if err != nil {
		return nil, false, err
	}
	return buf, true, nil
}

// Value reads a [value]: like Bytes but distinguishes null (−1) from
// unset (−2), the latter only legal inside bind values (protocol v4+).
func (r *Reader) Value(field string) (b []byte, null, unset bool, err error) {
	n, err := r.Int(field + ".length")
	if err != nil {
		return nil, false, false, err
	}
	switch {
	case n == -1:
		return nil, true, false, nil
	case n == -2:
		return nil, false, true, nil
	case n < -2:
		return nil, false, false, &xerrors.DecodeError{Field: field, Err: fmt.Errorf("invalid value length %d", n)}
	}
	buf, err := r.need(field, int(n))
	if err != nil {
		return nil, false, false, err
	}
	return buf, false, false, nil
}

// ShortBytes reads a [short bytes] value: a u16 length followed by that
// many raw bytes. Used for prepared statement ids and paging state.
func (r *Reader) ShortBytes(field string) ([]byte, error) {
	n, err := r.Short(field + ".length")
	if err != nil {
		return nil, err
	}
	return r.need(field, int(n))
}

// Inet reads an [inet] value: a length byte (4 or 16) followed by that
// many address bytes.
func (r *Reader) Inet(field string) (net.IP, error) {
	n, err := r.Byte(field + ".length")
	if err != nil {
		return nil, err
	}
	if n != 4 && n != 16 {
		return nil, &xerrors.DecodeError{Field: field, Err: fmt.Errorf("invalid inet address length %d", n)}
	}
	b, err := r.need(field, int(n))
	if err != nil {
		return nil, err
	}
	ip := make(net.IP, len(b))
	copy(ip, b)
	return ip, nil
}

// InetAddrWithPort reads an [inet] address followed by an [int] port,
// the form used in EVENT bodies and STATUS_CHANGE payloads.
func (r *Reader) InetAddrWithPort(field string) (net.IP, int32, error) {
	ip, err := r.Inet(field)
	if err != nil {
		return nil, 0, err
	}
	port, err := r.Int(field + ".port")
	if err != nil {
		return nil, 0, err
	}
	return ip, port, nil
}

// StringMap reads a [string map]: a u16 count followed by that many
// (string, string) pairs.
func (r *Reader) StringMap(field string) (map[string]string, error) {
	n, err := r.Short(field + ".count")
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, n)
	for i := 0; i < int(n); i++ {
		k, err := r.String(fmt.Sprintf("%s[%d].key", field, i))
		if err != nil {
			return nil, err
		}
		v, err := r.String(fmt.Sprintf("%s[%d].value", field, i))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// StringMultimap reads a [string multimap]: a u16 count followed by
// that many (string, string list) pairs.
func (r *Reader) StringMultimap(field string) (map[string][]string, error) {
	n, err := r.Short(field + ".count")
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, n)
	for i := 0; i < int(n); i++ {
		k, err := r.String(fmt.Sprintf("%s[%d].key", field, i))
		if err != nil {
			return nil, err
		}
		v, err := r.StringList(fmt.Sprintf("%s[%d].value", field, i))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// BytesMap reads a [bytes map]: a u16 count followed by that many
// (string, bytes) pairs. Used for custom payloads.
func (r *Reader) BytesMap(field string) (map[string][]byte, error) {
	n, err := r.Short(field + ".count")
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, n)
	for i := 0; i < int(n); i++ {
		k, err := r.String(fmt.Sprintf("%s[%d].key", field, i))
		if err != nil {
			return nil, err
		}
		v, _, err := r.Bytes(fmt.Sprintf("%s[%d].value", field, i))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// Consistency reads a [consistency] value (u16 enum).
func (r *Reader) Consistency(field string) (uint16, error) {
	return r.Short(field)
}
