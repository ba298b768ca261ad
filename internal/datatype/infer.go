package datatype

import (
	"math/big"
	"net"
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Infer picks a default Type for a bare Go value, per the native
// protocol's convenience-constructor rules (CQL binary protocol v4 §6
// default mappings): integers default to int, floats to double,
// booleans to boolean, strings to varchar, []byte to blob, net.IP to
// inet, uuid.UUID to uuid, time.Time to timestamp, *big.Int to varint.
// Callers needing a different mapping (bigint for a small int, ascii
// instead of varchar, a parametric collection type) must supply an
// explicit Type rather than rely on inference.
func Infer(v any) (Type, error) {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int, nil
	case float32, float64:
		return Double, nil
	case bool:
		return Boolean, nil
	case string:
		return Varchar, nil
	case []byte:
		return Blob, nil
	case net.IP:
		return Inet, nil
	case uuid.UUID:
		return UUID, nil
	case time.Time:
		return Timestamp, nil
	case *big.Int:
		return Varint, nil
	case Decimal:
		return DecimalType, nil
	case Duration:
		return DurationType, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Len() == 4 || rv.Len() == 16 {
			if _, ok := v.([]byte); ok {
				return Inet, nil
			}
		}
		return Type{}, &xerrors.EncodeError{Field: "value", Err: errNoInference(v)}
	case reflect.Map:
		return Type{}, &xerrors.EncodeError{Field: "value", Err: errNoInference(v)}
	default:
		return Type{}, &xerrors.EncodeError{Field: "value", Err: errNoInference(v)}
	}
}

func errNoInference(v any) error {
	return inferError{v: v}
}

type inferError struct{ v any }

func (e inferError) Error() string {
	return "cannot infer a CQL type for this value; use an explicit (Type, Value) pair"
}
