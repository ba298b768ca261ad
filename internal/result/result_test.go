package result

import (
	"testing"

	"github.com/onoffswitch/gocassa/internal/datatype"
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

func TestMetadataRoundTripGlobalTableSpec(t *testing.T) {
	m := Metadata{
		Flags: protocol.RowsFlagGlobalTablesSpec,
		Columns: []ColumnSpec{
			{Keyspace: "ks1", Table: "tbl1", Name: "id", Type: datatype.UUID},
			{Keyspace: "ks1", Table: "tbl1", Name: "name", Type: datatype.Varchar},
		},
	}
	w := primitive.NewWriter(64)
	if err := EncodeMetadata(w, m, false); err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	r := primitive.NewReader(w.Bytes())
	got, err := DecodeMetadata(r, false)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if len(got.Columns) != 2 || got.Columns[1].Name != "name" || got.Columns[0].Type.Code != protocol.DataTypeUUID {
		t.Fatalf("got %+v", got.Columns)
	}
	if got.Columns[0].Keyspace != "ks1" || got.Columns[1].Table != "tbl1" {
		t.Fatalf("global table spec not propagated: %+v", got.Columns)
	}
}

func TestMetadataParametricTypes(t *testing.T) {
	m := Metadata{
		Columns: []ColumnSpec{
			{Keyspace: "ks", Table: "t", Name: "tags", Type: datatype.Set(datatype.Varchar)},
			{Keyspace: "ks", Table: "t", Name: "props", Type: datatype.Map(datatype.Varchar, datatype.Int)},
			{Keyspace: "ks", Table: "t", Name: "point", Type: datatype.Tuple(datatype.Int, datatype.Int)},
			{Keyspace: "ks", Table: "t", Name: "addr", Type: datatype.UDT("ks", "address", datatype.UDTField{Name: "city", Type: datatype.Varchar})},
		},
	}
	w := primitive.NewWriter(128)
	if err := EncodeMetadata(w, m, false); err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	got, err := DecodeMetadata(primitive.NewReader(w.Bytes()), false)
	if err != nil {
		t.Fatalf("DecodeMetadata: %v", err)
	}
	if got.Columns[0].Type.Code != protocol.DataTypeSet || got.Columns[0].Type.Elem.Code != protocol.DataTypeVarchar {
		t.Fatalf("set element type lost: %+v", got.Columns[0].Type)
	}
	if got.Columns[1].Type.Key.Code != protocol.DataTypeVarchar || got.Columns[1].Type.Elem.Code != protocol.DataTypeInt {
		t.Fatalf("map key/value type lost: %+v", got.Columns[1].Type)
	}
	if len(got.Columns[2].Type.Elems) != 2 {
		t.Fatalf("tuple arity lost: %+v", got.Columns[2].Type)
	}
	if got.Columns[3].Type.Name != "address" || len(got.Columns[3].Type.Fields) != 1 {
		t.Fatalf("udt shape lost: %+v", got.Columns[3].Type)
	}
}

func TestDecodeRowsAndColumnCache(t *testing.T) {
	w := primitive.NewWriter(128)
	w.Int(int32(protocol.ResultKindRows))
	m := Metadata{
		Flags: protocol.RowsFlagGlobalTablesSpec,
		Columns: []ColumnSpec{
			{Keyspace: "ks", Table: "t", Name: "id", Type: datatype.Int},
			{Keyspace: "ks", Table: "t", Name: "name", Type: datatype.Varchar},
		},
	}
	if err := EncodeMetadata(w, m, false); err != nil {
		t.Fatalf("EncodeMetadata: %v", err)
	}
	w.Int(2) // row count

	idBytes, _ := datatype.Encode(int32(1), datatype.Int)
	nameBytes, _ := datatype.Encode("alice", datatype.Varchar)
	_ = w.BytesField("cell", idBytes, false)
	_ = w.BytesField("cell", nameBytes, false)

	idBytes2, _ := datatype.Encode(int32(2), datatype.Int)
	_ = w.BytesField("cell", idBytes2, false)
	_ = w.BytesField("cell", nil, true) // null name

	res, err := Decode(w.Bytes(), false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Kind != protocol.ResultKindRows {
		t.Fatalf("got kind %v", res.Kind)
	}
	rows := res.Rows
	if rows.RowCount() != 2 || rows.ColumnCount() != 2 {
		t.Fatalf("got %d rows, %d cols", rows.RowCount(), rows.ColumnCount())
	}
	v, err := rows.Value(0, 1)
	if err != nil || v != "alice" {
		t.Fatalf("got %v, %v", v, err)
	}
	_, null, err := rows.Raw(1, 1)
	if err != nil || !null {
		t.Fatalf("expected row 1 col 1 null, got null=%v err=%v", null, err)
	}

	col, err := rows.Column(0)
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if col[0].(int32) != 1 || col[1].(int32) != 2 {
		t.Fatalf("got %v", col)
	}
	col2, err := rows.Column(0)
	if err != nil || &col2[0] != &col[0] {
		t.Fatalf("second Column(0) did not return the cached slice (err %v)", err)
	}
	if rows.ColumnIndex("name") != 1 || rows.ColumnIndex("missing") != -1 {
		t.Fatalf("ColumnIndex wrong: %d", rows.ColumnIndex("name"))
	}
}

func TestDecodeSetKeyspace(t *testing.T) {
	w := primitive.NewWriter(16)
	w.Int(int32(protocol.ResultKindSetKeyspace))
	_ = w.String("ks", "analytics")
	res, err := Decode(w.Bytes(), false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.SetKeyspace != "analytics" {
		t.Fatalf("got %q", res.SetKeyspace)
	}
}

func TestDecodeVoid(t *testing.T) {
	w := primitive.NewWriter(4)
	w.Int(int32(protocol.ResultKindVoid))
	res, err := Decode(w.Bytes(), false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.Kind != protocol.ResultKindVoid {
		t.Fatalf("got %v", res.Kind)
	}
}

func TestDecodeSchemaChange(t *testing.T) {
	w := primitive.NewWriter(32)
	w.Int(int32(protocol.ResultKindSchemaChange))
	_ = w.String("f", "CREATED")
	_ = w.String("f", "TABLE")
	_ = w.String("f", "ks1")
	_ = w.String("f", "tbl1")
	res, err := Decode(w.Bytes(), false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if res.SchemaChange.Name != "tbl1" || res.SchemaChange.ChangeType != "CREATED" {
		t.Fatalf("got %+v", res.SchemaChange)
	}
}

func TestDecodePreparedWithPKIndices(t *testing.T) {
	w := primitive.NewWriter(64)
	w.Int(int32(protocol.ResultKindPrepared))
	_ = w.ShortBytes("id", []byte{1, 2, 3, 4})

	vars := Metadata{Columns: []ColumnSpec{
		{Keyspace: "ks", Table: "t", Name: "id", Type: datatype.UUID},
	}, PKIndices: []uint16{0}}
	if err := EncodeMetadata(w, vars, true); err != nil {
		t.Fatalf("EncodeMetadata(vars): %v", err)
	}
	result := Metadata{Columns: []ColumnSpec{
		{Keyspace: "ks", Table: "t", Name: "id", Type: datatype.UUID},
	}}
	if err := EncodeMetadata(w, result, false); err != nil {
		t.Fatalf("EncodeMetadata(result): %v", err)
	}

	res, err := Decode(w.Bytes(), false)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	p := res.Prepared
	if len(p.VariablesMetadata.PKIndices) != 1 || p.VariablesMetadata.PKIndices[0] != 0 {
		t.Fatalf("got pk indices %v", p.VariablesMetadata.PKIndices)
	}
	if len(p.ResultMetadata.Columns) != 1 {
		t.Fatalf("got result metadata %+v", p.ResultMetadata)
	}
}
