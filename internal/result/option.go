// Package result implements the RESULT message body (CQL binary
// protocol v4 §4.2.5): row metadata, the materialized row set, prepared
// statement descriptors, SET_KEYSPACE acknowledgements and
// SCHEMA_CHANGE notifications, all keyed off the kind field every
// RESULT body leads with.
package result

import (
	"fmt"

	"github.com/onoffswitch/gocassa/internal/datatype"
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// decodeOption parses one [option]: a data type id followed by whatever
// extra structure that id requires (nested options for collections, a
// keyspace/name/field list for UDTs, a class name for custom types).
func decodeOption(r *primitive.Reader) (datatype.Type, error) {
	idRaw, err := r.Short("option.id")
	if err != nil {
		return datatype.Type{}, err
	}
	id := protocol.DataTypeCode(idRaw)

	switch id {
	case protocol.DataTypeCustom:
		name, err := r.String("option.custom_class")
		if err != nil {
			return datatype.Type{}, err
		}
		return datatype.Custom(name), nil

	case protocol.DataTypeList, protocol.DataTypeSet:
		elem, err := decodeOption(r)
		if err != nil {
			return datatype.Type{}, err
		}
		if id == protocol.DataTypeList {
			return datatype.List(elem), nil
		}
		return datatype.Set(elem), nil

	case protocol.DataTypeMap:
		key, err := decodeOption(r)
		if err != nil {
			return datatype.Type{}, err
		}
		val, err := decodeOption(r)
		if err != nil {
			return datatype.Type{}, err
		}
		return datatype.Map(key, val), nil

	case protocol.DataTypeTuple:
		count, err := r.Short("option.tuple.count")
		if err != nil {
			return datatype.Type{}, err
		}
		elems := make([]datatype.Type, count)
		for i := range elems {
			elems[i], err = decodeOption(r)
			if err != nil {
				return datatype.Type{}, err
			}
		}
		return datatype.Tuple(elems...), nil

	case protocol.DataTypeUDT:
		keyspace, err := r.String("option.udt.keyspace")
		if err != nil {
			return datatype.Type{}, err
		}
		name, err := r.String("option.udt.name")
		if err != nil {
			return datatype.Type{}, err
		}
		count, err := r.Short("option.udt.field_count")
		if err != nil {
			return datatype.Type{}, err
		}
		fields := make([]datatype.UDTField, count)
		for i := range fields {
			fname, err := r.String("option.udt.field_name")
			if err != nil {
				return datatype.Type{}, err
			}
			ftype, err := decodeOption(r)
			if err != nil {
				return datatype.Type{}, err
			}
			fields[i] = datatype.UDTField{Name: fname, Type: ftype}
		}
		return datatype.UDT(keyspace, name, fields...), nil

	default:
		t, ok := scalarByCode[id]
		if !ok {
			return datatype.Type{}, &xerrors.DecodeError{Field: "option.id", Err: fmt.Errorf("unknown data type code 0x%04x", id)}
		}
		return t, nil
	}
}

// encodeOption appends t's [option] encoding to w.
func encodeOption(w *primitive.Writer, t datatype.Type) error {
	w.Short(uint16(t.Code))
	switch t.Code {
	case protocol.DataTypeCustom:
		return w.String("option.custom_class", t.ClassName)

	case protocol.DataTypeList, protocol.DataTypeSet:
		return encodeOption(w, *t.Elem)

	case protocol.DataTypeMap:
		if err := encodeOption(w, *t.Key); err != nil {
			return err
		}
		return encodeOption(w, *t.Elem)

	case protocol.DataTypeTuple:
		w.Short(uint16(len(t.Elems)))
		for _, e := range t.Elems {
			if err := encodeOption(w, e); err != nil {
				return err
			}
		}
		return nil

	case protocol.DataTypeUDT:
		if err := w.String("option.udt.keyspace", t.Keyspace); err != nil {
			return err
		}
		if err := w.String("option.udt.name", t.Name); err != nil {
			return err
		}
		w.Short(uint16(len(t.Fields)))
		for _, f := range t.Fields {
			if err := w.String("option.udt.field_name", f.Name); err != nil {
				return err
			}
			if err := encodeOption(w, f.Type); err != nil {
				return err
			}
		}
		return nil

	default:
		return nil
	}
}

var scalarByCode = map[protocol.DataTypeCode]datatype.Type{
	protocol.DataTypeAscii:     datatype.Ascii,
	protocol.DataTypeBigint:    datatype.Bigint,
	protocol.DataTypeBlob:      datatype.Blob,
	protocol.DataTypeBoolean:   datatype.Boolean,
	protocol.DataTypeCounter:   datatype.Counter,
	protocol.DataTypeDecimal:   datatype.DecimalType,
	protocol.DataTypeDouble:    datatype.Double,
	protocol.DataTypeFloat:     datatype.Float,
	protocol.DataTypeInt:       datatype.Int,
	protocol.DataTypeTimestamp: datatype.Timestamp,
	protocol.DataTypeUUID:      datatype.UUID,
	protocol.DataTypeVarchar:   datatype.Varchar,
	protocol.DataTypeVarint:    datatype.Varint,
	protocol.DataTypeTimeUUID:  datatype.TimeUUID,
	protocol.DataTypeInet:      datatype.Inet,
	protocol.DataTypeDate:      datatype.Date,
	protocol.DataTypeTime:      datatype.Time,
	protocol.DataTypeSmallint:  datatype.Smallint,
	protocol.DataTypeTinyint:   datatype.Tinyint,
	protocol.DataTypeDuration:  datatype.DurationType,
}
