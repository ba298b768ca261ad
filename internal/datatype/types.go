// Package datatype implements the CQL typed-value codec: encoding and
// decoding of every scalar and parametric type listed in the native
// protocol spec (CQL binary protocol v4 §6) to and from the
// length-prefixed byte representation used for bind values and result
// rows alike.
//
// A Type is a tagged variant mirroring the protocol's type descriptors.
// Encode and Decode operate on the *contents* of a [value] — the i32
// length prefix that distinguishes null/unset from present data is the
// caller's responsibility (internal/primitive.Writer.Value /
// Reader.Value), since that prefix is shared wire grammar, not
// type-specific.
package datatype

import "github.com/onoffswitch/gocassa/internal/protocol"

// Type describes a CQL type: either a plain scalar (Code alone is
// meaningful) or a parametric type with nested Elem/Key/Fields.
type Type struct {
	Code protocol.DataTypeCode

	// List/Set
	Elem *Type

	// Map
	Key *Type

	// Tuple
	Elems []Type

	// UDT
	Keyspace string
	Name     string
	Fields   []UDTField

	// Custom
	ClassName string
}

// UDTField is one named, typed member of a user-defined type, in
// declared order (order is significant: it is the wire order).
type UDTField struct {
	Name string
	Type Type
}

func scalar(code protocol.DataTypeCode) Type { return Type{Code: code} }

var (
	Ascii       = scalar(protocol.DataTypeAscii)
	Bigint      = scalar(protocol.DataTypeBigint)
	Blob        = scalar(protocol.DataTypeBlob)
	Boolean     = scalar(protocol.DataTypeBoolean)
	Counter     = scalar(protocol.DataTypeCounter)
	DecimalType = scalar(protocol.DataTypeDecimal)
	Double      = scalar(protocol.DataTypeDouble)
	Float       = scalar(protocol.DataTypeFloat)
	Int         = scalar(protocol.DataTypeInt)
	Timestamp   = scalar(protocol.DataTypeTimestamp)
	UUID        = scalar(protocol.DataTypeUUID)
	Varchar     = scalar(protocol.DataTypeVarchar)
	Varint      = scalar(protocol.DataTypeVarint)
	TimeUUID    = scalar(protocol.DataTypeTimeUUID)
	Inet        = scalar(protocol.DataTypeInet)
	Date        = scalar(protocol.DataTypeDate)
	Time        = scalar(protocol.DataTypeTime)
	Smallint    = scalar(protocol.DataTypeSmallint)
	Tinyint     = scalar(protocol.DataTypeTinyint)
	DurationType = scalar(protocol.DataTypeDuration)
)

// List returns the parametric type list<elem>.
func List(elem Type) Type { return Type{Code: protocol.DataTypeList, Elem: &elem} }

// Set returns the parametric type set<elem>.
func Set(elem Type) Type { return Type{Code: protocol.DataTypeSet, Elem: &elem} }

// Map returns the parametric type map<key, value>.
func Map(key, value Type) Type { return Type{Code: protocol.DataTypeMap, Key: &key, Elem: &value} }

// Tuple returns the parametric type tuple<elems...>.
func Tuple(elems ...Type) Type { return Type{Code: protocol.DataTypeTuple, Elems: elems} }

// UDT returns a user-defined type with fields in declared (wire) order.
func UDT(keyspace, name string, fields ...UDTField) Type {
	return Type{Code: protocol.DataTypeUDT, Keyspace: keyspace, Name: name, Fields: fields}
}

// Custom returns an opaque server-defined type identified by its Java
// class name; Encode/Decode treat its payload as raw bytes.
func Custom(className string) Type {
	return Type{Code: protocol.DataTypeCustom, ClassName: className}
}

// String renders a human-readable type name, mirroring CQL syntax,
// useful in error messages.
func (t Type) String() string {
	switch t.Code {
	case protocol.DataTypeList:
		return "list<" + t.Elem.String() + ">"
	case protocol.DataTypeSet:
		return "set<" + t.Elem.String() + ">"
	case protocol.DataTypeMap:
		return "map<" + t.Key.String() + ", " + t.Elem.String() + ">"
	case protocol.DataTypeTuple:
		s := "tuple<"
		for i, e := range t.Elems {
			if i > 0 {
				s += ", "
			}
			s += e.String()
		}
		return s + ">"
	case protocol.DataTypeUDT:
		return t.Keyspace + "." + t.Name
	case protocol.DataTypeCustom:
		return "custom(" + t.ClassName + ")"
	default:
		return scalarName[t.Code]
	}
}

var scalarName = map[protocol.DataTypeCode]string{
	protocol.DataTypeAscii:     "ascii",
	protocol.DataTypeBigint:    "bigint",
	protocol.DataTypeBlob:      "blob",
	protocol.DataTypeBoolean:   "boolean",
	protocol.DataTypeCounter:   "counter",
	protocol.DataTypeDecimal:   "decimal",
	protocol.DataTypeDouble:    "double",
	protocol.DataTypeFloat:     "float",
	protocol.DataTypeInt:       "int",
	protocol.DataTypeTimestamp: "timestamp",
	protocol.DataTypeUUID:      "uuid",
	protocol.DataTypeVarchar:   "varchar",
	protocol.DataTypeVarint:    "varint",
	protocol.DataTypeTimeUUID:  "timeuuid",
	protocol.DataTypeInet:      "inet",
	protocol.DataTypeDate:      "date",
	protocol.DataTypeTime:      "time",
	protocol.DataTypeSmallint:  "smallint",
	protocol.DataTypeTinyint:   "tinyint",
	protocol.DataTypeDuration:  "duration",
}
