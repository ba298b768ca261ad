package cassandra

import (
	"github.com/onoffswitch/gocassa/internal/datatype"
	"github.com/onoffswitch/gocassa/internal/message"
)

// Value is one bind marker's wire-encoded form: either present bytes,
// SQL null, or unset (the marker is left out of the write entirely,
// distinct from null per the native protocol's UNSET_VALUE).
type Value = message.Value

// Type describes a CQL type for TypedVal and the parametric
// constructors below, when Val's default mapping isn't the one a
// statement's bind marker expects.
type Type = datatype.Type

// The scalar CQL types, for use with TypedVal.
var (
	Ascii     = datatype.Ascii
	Bigint    = datatype.Bigint
	Blob      = datatype.Blob
	Boolean   = datatype.Boolean
	Counter   = datatype.Counter
	Decimal   = datatype.DecimalType
	Double    = datatype.Double
	Float     = datatype.Float
	Int       = datatype.Int
	Timestamp = datatype.Timestamp
	UUID      = datatype.UUID
	Varchar   = datatype.Varchar
	Varint    = datatype.Varint
	TimeUUID  = datatype.TimeUUID
	Inet      = datatype.Inet
	Date      = datatype.Date
	Time      = datatype.Time
	Smallint  = datatype.Smallint
	Tinyint   = datatype.Tinyint
	Duration  = datatype.DurationType
)

// List returns the parametric type list<elem>.
func List(elem Type) Type { return datatype.List(elem) }

// Set returns the parametric type set<elem>.
func Set(elem Type) Type { return datatype.Set(elem) }

// Map returns the parametric type map<key, value>.
func Map(key, value Type) Type { return datatype.Map(key, value) }

// Tuple returns the parametric type tuple<elems...>.
func Tuple(elems ...Type) Type { return datatype.Tuple(elems...) }

// Val encodes v as a bind value, picking its CQL type via Infer's
// default mapping (int64 -> bigint's sibling int, string -> varchar,
// []byte -> blob, and so on; see internal/datatype.Infer for the full
// table). Use TypedVal when the statement's bind marker expects a
// different type than Infer would choose.
func Val(v any) (Value, error) {
	t, err := datatype.Infer(v)
	if err != nil {
		return Value{}, err
	}
	return TypedVal(v, t)
}

// TypedVal encodes v as a bind value of the explicit CQL type t.
func TypedVal(v any, t Type) (Value, error) {
	b, err := datatype.Encode(v, t)
	if err != nil {
		return Value{}, err
	}
	return Value{Bytes: b}, nil
}

// NullVal is a bind value explicitly set to CQL null.
func NullVal() Value { return Value{Null: true} }

// UnsetVal omits the bind marker from the write entirely: on tables
// with TTL or counters, this is different from NullVal, which performs
// a tombstoning write.
func UnsetVal() Value { return Value{Unset: true} }

// Named attaches a name to a bind value for QUERY/EXECUTE requests
// that bind by name instead of position.
func Named(name string, v Value) Value {
	v.Name = name
	return v
}
