package datatype

import (
	"fmt"
	"math/big"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// epochDateBias is the offset added to days-since-epoch so that
// 1970-01-01 (day 0) encodes as 2^31 in the CQL [date] encoding's
// unsigned 32-bit range (CQL binary protocol v4 §6, "date").
const epochDateBias = int64(1) << 31

// Encode renders v, a Go value assignable to t, as the contents of a
// [value] (the part after the length prefix). Null and unset are
// handled by the caller before Encode is reached.
func Encode(v any, t Type) ([]byte, error) {
	switch t.Code {
	case protocol.DataTypeAscii, protocol.DataTypeVarchar:
		s, ok := v.(string)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		if t.Code == protocol.DataTypeAscii {
			for i := 0; i < len(s); i++ {
				if s[i] > 127 {
					return nil, &xerrors.EncodeError{Field: "ascii", Err: fmt.Errorf("byte %d (0x%x) is not ASCII", i, s[i])}
				}
			}
		}
		return []byte(s), nil

	case protocol.DataTypeBigint, protocol.DataTypeCounter:
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		w := primitive.NewWriter(8)
		w.Long(n)
		return w.Bytes(), nil

	case protocol.DataTypeBlob:
		b, ok := v.([]byte)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return b, nil

	case protocol.DataTypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil

	case protocol.DataTypeDate:
		return encodeDate(v)

	case protocol.DataTypeDecimal:
		d, ok := v.(Decimal)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		w := primitive.NewWriter(8)
		w.Int(d.Scale)
		w.Raw(EncodeVarint(d.Unscaled))
		return w.Bytes(), nil

	case protocol.DataTypeDouble:
		f, err := asFloat64(v)
		if err != nil {
			return nil, err
		}
		w := primitive.NewWriter(8)
		w.Double(f)
		return w.Bytes(), nil

	case protocol.DataTypeFloat:
		f, err := asFloat64(v)
		if err != nil {
			return nil, err
		}
		w := primitive.NewWriter(4)
		w.Float(float32(f))
		return w.Bytes(), nil

	case protocol.DataTypeInet:
		ip, ok := v.(net.IP)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		w := primitive.NewWriter(16)
		if err := w.Inet("inet", ip); err != nil {
			return nil, err
		}
		return w.Bytes(), nil

	case protocol.DataTypeInt:
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		if n < -(1<<31) || n > (1<<31)-1 {
			return nil, &xerrors.EncodeError{Field: "int", Err: fmt.Errorf("%d overflows int32", n)}
		}
		w := primitive.NewWriter(4)
		w.Int(int32(n))
		return w.Bytes(), nil

	case protocol.DataTypeSmallint:
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		if n < -(1<<15) || n > (1<<15)-1 {
			return nil, &xerrors.EncodeError{Field: "smallint", Err: fmt.Errorf("%d overflows int16", n)}
		}
		w := primitive.NewWriter(2)
		w.Short(uint16(int16(n)))
		return w.Bytes(), nil

	case protocol.DataTypeTinyint:
		n, err := asInt64(v)
		if err != nil {
			return nil, err
		}
		if n < -128 || n > 127 {
			return nil, &xerrors.EncodeError{Field: "tinyint", Err: fmt.Errorf("%d overflows int8", n)}
		}
		return []byte{byte(int8(n))}, nil

	case protocol.DataTypeTime:
		n, err := asInt64Time(v)
		if err != nil {
			return nil, err
		}
		w := primitive.NewWriter(8)
		w.Long(n)
		return w.Bytes(), nil

	case protocol.DataTypeTimestamp:
		ms, err := asTimestampMillis(v)
		if err != nil {
			return nil, err
		}
		w := primitive.NewWriter(8)
		w.Long(ms)
		return w.Bytes(), nil

	case protocol.DataTypeUUID, protocol.DataTypeTimeUUID:
		u, err := asUUID(v)
		if err != nil {
			return nil, err
		}
		b := u[:]
		return b, nil

	case protocol.DataTypeVarint:
		n, ok := v.(*big.Int)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return EncodeVarint(n), nil

	case protocol.DataTypeDuration:
		d, ok := v.(Duration)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return EncodeDuration(d), nil

	case protocol.DataTypeList, protocol.DataTypeSet:
		return encodeList(v, *t.Elem)

	case protocol.DataTypeMap:
		return encodeMap(v, *t.Key, *t.Elem)

	case protocol.DataTypeTuple:
		return encodeTuple(v, t.Elems)

	case protocol.DataTypeUDT:
		return encodeUDT(v, t.Fields)

	case protocol.DataTypeCustom:
		b, ok := v.([]byte)
		if !ok {
			return nil, typeMismatch(t, v)
		}
		return b, nil

	default:
		return nil, &xerrors.EncodeError{Field: t.String(), Err: fmt.Errorf("unsupported type code %d", t.Code)}
	}
}

// Decode parses the contents of a [value] (already stripped of its
// length prefix; b is never nil here — null/unset are handled by the
// caller) into a Go value appropriate for t.
func Decode(b []byte, t Type) (any, error) {
	switch t.Code {
	case protocol.DataTypeAscii, protocol.DataTypeVarchar:
		return string(b), nil

	case protocol.DataTypeBigint, protocol.DataTypeCounter:
		r := primitive.NewReader(b)
		return r.Long(t.String())

	case protocol.DataTypeBlob, protocol.DataTypeCustom:
		return b, nil

	case protocol.DataTypeBoolean:
		if len(b) < 1 {
			return nil, &xerrors.DecodeError{Field: "boolean", Err: fmt.Errorf("empty value")}
		}
		return b[0] != 0, nil

	case protocol.DataTypeDate:
		r := primitive.NewReader(b)
		biased, err := r.Int("date")
		if err != nil {
			return nil, err
		}
		days := int64(uint32(biased)) - epochDateBias
		return time.Unix(days*86400, 0).UTC(), nil

	case protocol.DataTypeDecimal:
		r := primitive.NewReader(b)
		scale, err := r.Int("decimal.scale")
		if err != nil {
			return nil, err
		}
		return Decimal{Unscaled: DecodeVarint(r.Tail()), Scale: scale}, nil

	case protocol.DataTypeDouble:
		r := primitive.NewReader(b)
		return r.Double("double")

	case protocol.DataTypeFloat:
		r := primitive.NewReader(b)
		return r.Float("float")

	case protocol.DataTypeInet:
		r := primitive.NewReader(b)
		return r.Inet("inet")

	case protocol.DataTypeInt:
		r := primitive.NewReader(b)
		return r.Int("int")

	case protocol.DataTypeSmallint:
		r := primitive.NewReader(b)
		v, err := r.Short("smallint")
		if err != nil {
			return nil, err
		}
		return int16(v), nil

	case protocol.DataTypeTinyint:
		if len(b) < 1 {
			return nil, &xerrors.DecodeError{Field: "tinyint", Err: fmt.Errorf("empty value")}
		}
		return int8(b[0]), nil

	case protocol.DataTypeTime:
		r := primitive.NewReader(b)
		ns, err := r.Long("time")
		if err != nil {
			return nil, err
		}
		return time.Duration(ns), nil

	case protocol.DataTypeTimestamp:
		r := primitive.NewReader(b)
		ms, err := r.Long("timestamp")
		if err != nil {
			return nil, err
		}
		return time.UnixMilli(ms).UTC(), nil

	case protocol.DataTypeUUID, protocol.DataTypeTimeUUID:
		if len(b) != 16 {
			return nil, &xerrors.DecodeError{Field: "uuid", Err: fmt.Errorf("want 16 bytes, got %d", len(b))}
		}
		var raw [16]byte
		copy(raw[:], b)
		u, err := uuid.FromBytes(raw[:])
		if err != nil {
			return nil, &xerrors.DecodeError{Field: "uuid", Err: err}
		}
		return u, nil

	case protocol.DataTypeVarint:
		return DecodeVarint(b), nil

	case protocol.DataTypeDuration:
		return DecodeDuration(b)

	case protocol.DataTypeList, protocol.DataTypeSet:
		return decodeList(b, *t.Elem)

	case protocol.DataTypeMap:
		return decodeMap(b, *t.Key, *t.Elem)

	case protocol.DataTypeTuple:
		return decodeTuple(b, t.Elems)

	case protocol.DataTypeUDT:
		return decodeUDT(b, t.Fields)

	default:
		return nil, &xerrors.DecodeError{Field: t.String(), Err: fmt.Errorf("unsupported type code %d", t.Code)}
	}
}

func typeMismatch(t Type, v any) error {
	return &xerrors.EncodeError{Field: t.String(), Err: fmt.Errorf("value of type %T does not match %s", v, t)}
}

func encodeDate(v any) ([]byte, error) {
	var days int64
	switch x := v.(type) {
	case time.Time:
		days = x.UTC().Unix() / 86400
	case int64:
		days = x
	case int:
		days = int64(x)
	default:
		return nil, typeMismatch(Date, v)
	}
	w := primitive.NewWriter(4)
	w.Int(int32(uint32(days + epochDateBias)))
	return w.Bytes(), nil
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	default:
		return 0, &xerrors.EncodeError{Field: "integer", Err: fmt.Errorf("value of type %T is not an integer", v)}
	}
}

func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		n, err := asInt64(v)
		if err != nil {
			return 0, &xerrors.EncodeError{Field: "float", Err: fmt.Errorf("value of type %T is not numeric", v)}
		}
		return float64(n), nil
	}
}

func asInt64Time(v any) (int64, error) {
	switch x := v.(type) {
	case time.Duration:
		return int64(x), nil
	case int64:
		return x, nil
	default:
		return 0, typeMismatch(Time, v)
	}
}

func asTimestampMillis(v any) (int64, error) {
	switch x := v.(type) {
	case time.Time:
		return x.UnixMilli(), nil
	case int64:
		return x, nil
	default:
		return 0, typeMismatch(Timestamp, v)
	}
}

func asUUID(v any) (uuid.UUID, error) {
	switch x := v.(type) {
	case uuid.UUID:
		return x, nil
	case [16]byte:
		return uuid.UUID(x), nil
	case string:
		return uuid.Parse(x)
	default:
		return uuid.UUID{}, typeMismatch(UUID, v)
	}
}
