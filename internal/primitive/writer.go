package primitive

import (
	"encoding/binary"
	"math"
	"net"

	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Writer appends primitives to a growable byte buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with an empty buffer, optionally
// preallocated to size hint bytes.
func NewWriter(sizeHint int) *Writer {
	return &Writer{buf: make([]byte, 0, sizeHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// Byte appends a single byte.
func (w *Writer) Byte(b byte) { w.buf = append(w.buf, b) }

// Raw appends b verbatim, with no length prefix.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }

// Short appends a big-endian uint16 ([short]).
func (w *Writer) Short(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// Int appends a big-endian int32 ([int]).
func (w *Writer) Int(v int32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(v))
	w.buf = append(w.buf, b[:]...)
}

// Long appends a big-endian int64 ([long]).
func (w *Writer) Long(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf = append(w.buf, b[:]...)
}

// Float appends an IEEE-754 binary32 ([float]).
func (w *Writer) Float(v float32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], math.Float32bits(v))
	w.buf = append(w.buf, b[:]...)
}

// Double appends an IEEE-754 binary64 ([double]).
func (w *Writer) Double(v float64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf = append(w.buf, b[:]...)
}

// String appends a [string]: a u16 byte length (not code point count)
// followed by the UTF-8 bytes. Returns EncodeError if s exceeds 65535
// bytes.
func (w *Writer) String(field, s string) error {
	if len(s) > math.MaxUint16 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Short(uint16(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// LongString appends a [long string]: an i32 byte length followed by
// the UTF-8 bytes.
func (w *Writer) LongString(field, s string) error {
	if len(s) > math.MaxInt32 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Int(int32(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// UUID appends 16 raw bytes ([uuid]).
func (w *Writer) UUID(u [16]byte) { w.buf = append(w.buf, u[:]...) }

// StringList appends a [string list].
func (w *Writer) StringList(field string, list []string) error {
	if len(list) > math.MaxUint16 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Short(uint16(len(list)))
	for _, s := range list {
		if err := w.String(field, s); err != nil {
			return err
		}
	}
	return nil
}

// BytesField appends a [bytes] value: nil means null (length −1),
// otherwise an i32 length followed by the raw bytes (possibly
// zero-length). Named to avoid colliding with the no-arg Bytes, which
// returns the writer's accumulated buffer.
func (w *Writer) BytesField(field string, b []byte, null bool) error {
	if null {
		w.Int(-1)
		return nil
	}
	if len(b) > math.MaxInt32 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Int(int32(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

// Value appends a [value]: length −1 for null, −2 for unset, or an i32
// length followed by the raw bytes.
func (w *Writer) Value(field string, b []byte, null, unset bool) error {
	switch {
	case unset:
		w.Int(-2)
		return nil
	case null:
		w.Int(-1)
		return nil
	default:
		return w.BytesField(field, b, false)
	}
}

// ShortBytes appends a [short bytes] value (u16 length + raw bytes).
func (w *Writer) ShortBytes(field string, b []byte) error {
	if len(b) > math.MaxUint16 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Short(uint16(len(b)))
	w.buf = append(w.buf, b...)
	return nil
}

// Inet appends an [inet] value: a length byte (4 or 16) followed by the
// address bytes.
func (w *Writer) Inet(field string, ip net.IP) error {
	v4 := ip.To4()
	switch {
	case v4 != nil:
		w.Byte(4)
		w.buf = append(w.buf, v4...)
	case len(ip) == 16:
		w.Byte(16)
		w.buf = append(w.buf, ip...)
	default:
		return &xerrors.EncodeError{Field: field}
	}
	return nil
}

// InetAddrWithPort appends an [inet] address followed by an [int] port.
func (w *Writer) InetAddrWithPort(field string, ip net.IP, port int32) error {
	if err := w.Inet(field, ip); err != nil {
		return err
	}
	w.Int(port)
	return nil
}

// StringMap appends a [string map].
func (w *Writer) StringMap(field string, m map[string]string) error {
	if len(m) > math.MaxUint16 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Short(uint16(len(m)))
	for k, v := range m {
		if err := w.String(field, k); err != nil {
			return err
		}
		if err := w.String(field, v); err != nil {
			return err
		}
	}
	return nil
}

// StringMultimap appends a [string multimap].
func (w *Writer) StringMultimap(field string, m map[string][]string) error {
	if len(m) > math.MaxUint16 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Short(uint16(len(m)))
	for k, v := range m {
		if err := w.String(field, k); err != nil {
			return err
		}
		if err := w.StringList(field, v); err != nil {
			return err
		}
	}
	return nil
}

// BytesMap appends a [bytes map] (used for custom payloads).
func (w *Writer) BytesMap(field string, m map[string][]byte) error {
	if len(m) > math.MaxUint16 {
		return &xerrors.EncodeError{Field: field}
	}
	w.Short(uint16(len(m)))
	for k, v := range m {
		if err := w.String(field, k); err != nil {
			return err
		}
		if err := w.BytesField(field, v, v == nil); err != nil {
			return err
		}
	}
	return nil
}

// Consistency appends a [consistency] value (u16 enum).
func (w *Writer) Consistency(c uint16) { w.Short(c) }
