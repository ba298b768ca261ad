package message

import (
	"bytes"
	"net"
	"testing"

	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

func newTestWriter() *primitive.Writer { return primitive.NewWriter(64) }

func TestStartupRoundTrip(t *testing.T) {
	s := Startup{Options: map[string]string{CQLVersionKey: DefaultCQLVersion, CompressionKey: "lz4"}}
	body, err := EncodeStartup(s)
	if err != nil {
		t.Fatalf("EncodeStartup: %v", err)
	}
	got, err := DecodeStartup(body)
	if err != nil {
		t.Fatalf("DecodeStartup: %v", err)
	}
	if got.Options[CQLVersionKey] != DefaultCQLVersion || got.Options[CompressionKey] != "lz4" {
		t.Fatalf("got %+v", got.Options)
	}
}

func TestSupportedDecode(t *testing.T) {
	w := newTestWriter()
	_ = w.StringMultimap("x", map[string][]string{"CQL_VERSION": {"3.0.0"}})
	got, err := DecodeSupported(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeSupported: %v", err)
	}
	if len(got.Options["CQL_VERSION"]) != 1 || got.Options["CQL_VERSION"][0] != "3.0.0" {
		t.Fatalf("got %+v", got.Options)
	}
}

func TestQueryRoundTrip(t *testing.T) {
	ts := int64(1234)
	q := Query{
		QueryString: "SELECT * FROM ks.tbl WHERE id = ?",
		Params: QueryParameters{
			Consistency: protocol.ConsistencyQuorum,
			Values:      []Value{{Bytes: []byte{0, 0, 0, 1}}},
			PageSize:    100,
			Timestamp:   &ts,
		},
	}
	body, err := EncodeQuery(q, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("EncodeQuery: %v", err)
	}
	got, err := DecodeQuery(body, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("DecodeQuery: %v", err)
	}
	if got.QueryString != q.QueryString {
		t.Fatalf("got query %q", got.QueryString)
	}
	if got.Params.Consistency != protocol.ConsistencyQuorum || got.Params.PageSize != 100 {
		t.Fatalf("got params %+v", got.Params)
	}
	if *got.Params.Timestamp != ts {
		t.Fatalf("got timestamp %d, want %d", *got.Params.Timestamp, ts)
	}
	if !bytes.Equal(got.Params.Values[0].Bytes, q.Params.Values[0].Bytes) {
		t.Fatalf("values mismatch")
	}
}

func TestQueryUnsetValue(t *testing.T) {
	q := Query{QueryString: "INSERT INTO t (a, b) VALUES (?, ?)", Params: QueryParameters{
		Values: []Value{{Bytes: []byte{1}}, {Unset: true}},
	}}
	body, err := EncodeQuery(q, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("EncodeQuery: %v", err)
	}
	got, err := DecodeQuery(body, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("DecodeQuery: %v", err)
	}
	if !got.Params.Values[1].Unset || got.Params.Values[1].Null {
		t.Fatalf("expected values[1] unset, got %+v", got.Params.Values[1])
	}
	if got.Params.Values[0].Null || got.Params.Values[0].Unset {
		t.Fatalf("expected values[0] present, got %+v", got.Params.Values[0])
	}
}

func TestQueryParametersFlagsWidthByVersion(t *testing.T) {
	p := QueryParameters{Consistency: protocol.ConsistencyOne, PageSize: 100}

	w4 := newTestWriter()
	if err := EncodeQueryParameters(w4, p, protocol.ProtocolVersion4); err != nil {
		t.Fatalf("EncodeQueryParameters (v4): %v", err)
	}
	// consistency (2 bytes) + a 1-byte flags field + page size (4 bytes).
	if got, want := w4.Len(), 2+1+4; got != want {
		t.Fatalf("v4 body length = %d, want %d", got, want)
	}

	w5 := newTestWriter()
	if err := EncodeQueryParameters(w5, p, protocol.ProtocolVersion5); err != nil {
		t.Fatalf("EncodeQueryParameters (v5): %v", err)
	}
	// consistency (2 bytes) + a 4-byte flags field + page size (4 bytes).
	if got, want := w5.Len(), 2+4+4; got != want {
		t.Fatalf("v5 body length = %d, want %d", got, want)
	}

	got4, err := DecodeQueryParameters(primitive.NewReader(w4.Bytes()), protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("DecodeQueryParameters (v4): %v", err)
	}
	if got4.PageSize != p.PageSize {
		t.Fatalf("v4 round trip: got page size %d, want %d", got4.PageSize, p.PageSize)
	}

	got5, err := DecodeQueryParameters(primitive.NewReader(w5.Bytes()), protocol.ProtocolVersion5)
	if err != nil {
		t.Fatalf("DecodeQueryParameters (v5): %v", err)
	}
	if got5.PageSize != p.PageSize {
		t.Fatalf("v5 round trip: got page size %d, want %d", got5.PageSize, p.PageSize)
	}
}

func TestPrepareRoundTrip(t *testing.T) {
	p := Prepare{Query: "SELECT * FROM t", Keyspace: "ks1"}
	body, err := EncodePrepare(p, protocol.ProtocolVersion5)
	if err != nil {
		t.Fatalf("EncodePrepare: %v", err)
	}
	got, err := DecodePrepare(body, protocol.ProtocolVersion5)
	if err != nil {
		t.Fatalf("DecodePrepare: %v", err)
	}
	if got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestPrepareRoundTripV4HasNoFlagsWord(t *testing.T) {
	p := Prepare{Query: "SELECT * FROM t"}
	body, err := EncodePrepare(p, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("EncodePrepare: %v", err)
	}
	// [long string] is a 4-byte length plus the UTF-8 bytes; at v4 that
	// is the entire body, with no trailing flags word.
	if len(body) != 4+len(p.Query) {
		t.Fatalf("expected v4 PREPARE body to be exactly the query string, got %d bytes", len(body))
	}
	got, err := DecodePrepare(body, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("DecodePrepare: %v", err)
	}
	if got != p {
		t.Fatalf("got %+v, want %+v", got, p)
	}
}

func TestExecuteRoundTrip(t *testing.T) {
	e := Execute{ID: []byte{0xAB, 0xCD}, Params: QueryParameters{Consistency: protocol.ConsistencyLocalOne}}
	body, err := EncodeExecute(e, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("EncodeExecute: %v", err)
	}
	got, err := DecodeExecute(body, protocol.ProtocolVersion4)
	if err != nil {
		t.Fatalf("DecodeExecute: %v", err)
	}
	if !bytes.Equal(got.ID, e.ID) || got.Params.Consistency != e.Params.Consistency {
		t.Fatalf("got %+v", got)
	}
}

func TestExecuteRoundTripV5CarriesResultMetadataID(t *testing.T) {
	e := Execute{
		ID:               []byte{0xAB, 0xCD},
		ResultMetadataID: []byte{1, 2, 3},
		Params:           QueryParameters{Consistency: protocol.ConsistencyLocalOne},
	}
	body, err := EncodeExecute(e, protocol.ProtocolVersion5)
	if err != nil {
		t.Fatalf("EncodeExecute: %v", err)
	}
	got, err := DecodeExecute(body, protocol.ProtocolVersion5)
	if err != nil {
		t.Fatalf("DecodeExecute: %v", err)
	}
	if !bytes.Equal(got.ResultMetadataID, e.ResultMetadataID) {
		t.Fatalf("got result_metadata_id %v, want %v", got.ResultMetadataID, e.ResultMetadataID)
	}
}

func TestBatchRoundTrip(t *testing.T) {
	b := Batch{
		Kind: protocol.BatchKindLogged,
		Children: []BatchChild{
			{Query: "INSERT INTO t (a) VALUES (?)", Values: []Value{{Bytes: []byte{1}}}},
			{IsPrepared: true, ID: []byte{9, 9}, Values: []Value{{Null: true}}},
		},
		Consistency: protocol.ConsistencyOne,
	}
	body, err := EncodeBatch(b)
	if err != nil {
		t.Fatalf("EncodeBatch: %v", err)
	}
	got, err := DecodeBatch(body)
	if err != nil {
		t.Fatalf("DecodeBatch: %v", err)
	}
	if len(got.Children) != 2 || got.Children[0].Query != b.Children[0].Query {
		t.Fatalf("got %+v", got)
	}
	if !got.Children[1].IsPrepared || !bytes.Equal(got.Children[1].ID, b.Children[1].ID) {
		t.Fatalf("got prepared child %+v", got.Children[1])
	}
	if !got.Children[1].Values[0].Null {
		t.Fatalf("expected null value in second child")
	}
}

func TestRegisterRoundTrip(t *testing.T) {
	reg := Register{EventTypes: []protocol.EventType{protocol.EventSchemaChange, protocol.EventStatusChange}}
	body, err := EncodeRegister(reg)
	if err != nil {
		t.Fatalf("EncodeRegister: %v", err)
	}
	got, err := DecodeRegister(body)
	if err != nil {
		t.Fatalf("DecodeRegister: %v", err)
	}
	if len(got.EventTypes) != 2 || got.EventTypes[0] != protocol.EventSchemaChange {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeEventStatusChange(t *testing.T) {
	w := newTestWriter()
	_ = w.String("f", "STATUS_CHANGE")
	_ = w.String("f", "UP")
	_ = w.InetAddrWithPort("event.address", net.ParseIP("10.0.0.5"), 9042)
	got, err := DecodeEvent(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got.ChangeType != "UP" || got.Port != 9042 || got.Address.String() != "10.0.0.5" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeEventSchemaChangeTable(t *testing.T) {
	w := newTestWriter()
	_ = w.String("f", "SCHEMA_CHANGE")
	_ = w.String("f", "UPDATED")
	_ = w.String("f", "TABLE")
	_ = w.String("f", "ks1")
	_ = w.String("f", "tbl1")
	got, err := DecodeEvent(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if got.Keyspace != "ks1" || got.Name != "tbl1" || got.SchemaChangeType != "UPDATED" {
		t.Fatalf("got %+v", got)
	}
}

func TestDecodeErrorUnavailable(t *testing.T) {
	w := newTestWriter()
	w.Int(int32(protocol.ErrorCodeUnavailable))
	_ = w.String("f", "not enough replicas")
	w.Consistency(uint16(protocol.ConsistencyQuorum))
	w.Int(3)
	w.Int(1)
	se, err := DecodeError(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeError: %v", err)
	}
	if se.Required != 3 || se.Alive != 1 {
		t.Fatalf("got required=%d alive=%d", se.Required, se.Alive)
	}
	if se.IsUnprepared() {
		t.Fatalf("unavailable error should not report IsUnprepared")
	}
}

func TestDecodeErrorUnprepared(t *testing.T) {
	w := newTestWriter()
	w.Int(int32(protocol.ErrorCodeUnprepared))
	_ = w.String("f", "unprepared")
	_ = w.ShortBytes("id", []byte{1, 2, 3, 4})
	se, err := DecodeError(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeError: %v", err)
	}
	if !se.IsUnprepared() {
		t.Fatal("expected IsUnprepared")
	}
	if !bytes.Equal(se.UnpreparedID, []byte{1, 2, 3, 4}) {
		t.Fatalf("got id %v", se.UnpreparedID)
	}
}
