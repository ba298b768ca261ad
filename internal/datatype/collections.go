package datatype

import (
	"fmt"
	"reflect"

	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// encodeList renders v (any slice type) as [i32 count, count ×
// [i32 len + bytes]], the wire form shared by list and set.
func encodeList(v any, elem Type) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, &xerrors.EncodeError{Field: "list", Err: fmt.Errorf("value of type %T is not a slice", v)}
	}
	w := primitive.NewWriter(rv.Len() * 8)
	w.Int(int32(rv.Len()))
	for i := 0; i < rv.Len(); i++ {
		eb, err := Encode(rv.Index(i).Interface(), elem)
		if err != nil {
			return nil, err
		}
		if err := w.BytesField(fmt.Sprintf("list[%d]", i), eb, false); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func decodeList(b []byte, elem Type) ([]any, error) {
	r := primitive.NewReader(b)
	count, err := r.Int("list.count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, &xerrors.DecodeError{Field: "list.count", Err: fmt.Errorf("negative count %d", count)}
	}
	out := make([]any, count)
	for i := range out {
		eb, ok, err := r.Bytes(fmt.Sprintf("list[%d]", i))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := Decode(eb, elem)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// encodeMap renders v (any map type) as [i32 count, count × (key,
// value)], each length-prefixed independently.
func encodeMap(v any, key, val Type) ([]byte, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map {
		return nil, &xerrors.EncodeError{Field: "map", Err: fmt.Errorf("value of type %T is not a map", v)}
	}
	keys := rv.MapKeys()
	w := primitive.NewWriter(len(keys) * 16)
	w.Int(int32(len(keys)))
	for _, k := range keys {
		kb, err := Encode(k.Interface(), key)
		if err != nil {
			return nil, err
		}
		if err := w.BytesField("map.key", kb, false); err != nil {
			return nil, err
		}
		vb, err := Encode(rv.MapIndex(k).Interface(), val)
		if err != nil {
			return nil, err
		}
		if err := w.BytesField("map.value", vb, false); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// MapEntry is one decoded (key, value) pair. Decode returns a slice of
// entries rather than a Go map because map iteration order is
// unspecified and the native protocol does not promise one either
// (§8: "Map ordering is not preserved on decode").
type MapEntry struct {
	Key   any
	Value any
}

func decodeMap(b []byte, key, val Type) ([]MapEntry, error) {
	r := primitive.NewReader(b)
	count, err := r.Int("map.count")
	if err != nil {
		return nil, err
	}
	if count < 0 {
		return nil, &xerrors.DecodeError{Field: "map.count", Err: fmt.Errorf("negative count %d", count)}
	}
	out := make([]MapEntry, count)
	for i := range out {
		kb, _, err := r.Bytes("map.key")
		if err != nil {
			return nil, err
		}
		k, err := Decode(kb, key)
		if err != nil {
			return nil, err
		}
		vb, _, err := r.Bytes("map.value")
		if err != nil {
			return nil, err
		}
		v, err := Decode(vb, val)
		if err != nil {
			return nil, err
		}
		out[i] = MapEntry{Key: k, Value: v}
	}
	return out, nil
}

// encodeTuple renders v (a []any in declared order) as elems.length ×
// length-prefixed values; any element may be nil for a CQL null.
func encodeTuple(v any, elems []Type) ([]byte, error) {
	vals, ok := v.([]any)
	if !ok {
		return nil, &xerrors.EncodeError{Field: "tuple", Err: fmt.Errorf("value of type %T is not []any", v)}
	}
	if len(vals) != len(elems) {
		return nil, &xerrors.EncodeError{Field: "tuple", Err: fmt.Errorf("got %d elements, want %d", len(vals), len(elems))}
	}
	w := primitive.NewWriter(len(elems) * 8)
	for i, t := range elems {
		if vals[i] == nil {
			w.Int(-1)
			continue
		}
		eb, err := Encode(vals[i], t)
		if err != nil {
			return nil, err
		}
		if err := w.BytesField(fmt.Sprintf("tuple[%d]", i), eb, false); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func decodeTuple(b []byte, elems []Type) ([]any, error) {
	r := primitive.NewReader(b)
	out := make([]any, len(elems))
	for i, t := range elems {
		eb, ok, err := r.Bytes(fmt.Sprintf("tuple[%d]", i))
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := Decode(eb, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// encodeUDT renders v (a map[string]any keyed by field name) in the
// UDT's declared field order; an absent or nil field encodes as null.
func encodeUDT(v any, fields []UDTField) ([]byte, error) {
	vals, ok := v.(map[string]any)
	if !ok {
		return nil, &xerrors.EncodeError{Field: "udt", Err: fmt.Errorf("value of type %T is not map[string]any", v)}
	}
	w := primitive.NewWriter(len(fields) * 8)
	for _, f := range fields {
		fv, present := vals[f.Name]
		if !present || fv == nil {
			w.Int(-1)
			continue
		}
		eb, err := Encode(fv, f.Type)
		if err != nil {
			return nil, err
		}
		if err := w.BytesField("udt."+f.Name, eb, false); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func decodeUDT(b []byte, fields []UDTField) (map[string]any, error) {
	r := primitive.NewReader(b)
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		eb, ok, err := r.Bytes("udt." + f.Name)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		v, err := Decode(eb, f.Type)
		if err != nil {
			return nil, err
		}
		out[f.Name] = v
	}
	return out, nil
}
