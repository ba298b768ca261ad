package cassandra

import (
	"net"
	"testing"

	"github.com/google/uuid"
)

func TestValInfersScalarTypes(t *testing.T) {
	cases := []struct {
		name string
		in   any
	}{
		{"int", 7},
		{"string", "hello"},
		{"bool", true},
		{"float", 3.14},
		{"bytes", []byte("blob")},
		{"ip", net.ParseIP("10.0.0.1")},
		{"uuid", uuid.New()},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := Val(c.in)
			if err != nil {
				t.Fatalf("Val(%v): %v", c.in, err)
			}
			if v.Null || v.Unset {
				t.Fatalf("Val(%v) should not be null/unset", c.in)
			}
			if v.Bytes == nil {
				t.Fatalf("Val(%v) produced no bytes", c.in)
			}
		})
	}
}

func TestValRejectsUninferableType(t *testing.T) {
	type custom struct{ X int }
	if _, err := Val(custom{X: 1}); err == nil {
		t.Fatal("expected an error inferring a type for an unsupported struct")
	}
}

func TestTypedValOverridesInference(t *testing.T) {
	v, err := TypedVal(int64(42), Bigint)
	if err != nil {
		t.Fatalf("TypedVal: %v", err)
	}
	if len(v.Bytes) != 8 {
		t.Fatalf("expected an 8-byte bigint encoding, got %d bytes", len(v.Bytes))
	}
}

func TestNullAndUnsetVal(t *testing.T) {
	n := NullVal()
	if !n.Null || n.Unset {
		t.Fatalf("NullVal() = %+v, want Null=true Unset=false", n)
	}
	u := UnsetVal()
	if !u.Unset || u.Null {
		t.Fatalf("UnsetVal() = %+v, want Unset=true Null=false", u)
	}
}

func TestNamed(t *testing.T) {
	v, err := Val("x")
	if err != nil {
		t.Fatalf("Val: %v", err)
	}
	named := Named("col_name", v)
	if named.Name != "col_name" {
		t.Fatalf("Named did not set Name, got %+v", named)
	}
	if named.Bytes == nil {
		t.Fatal("Named should preserve the encoded bytes")
	}
}

func TestBindEncodesEachArgument(t *testing.T) {
	values, err := Bind(1, "two", 3.0)
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if len(values) != 3 {
		t.Fatalf("expected 3 values, got %d", len(values))
	}
	for i, v := range values {
		if v.Bytes == nil {
			t.Errorf("value %d has no encoded bytes", i)
		}
	}
}

func TestParametricTypeConstructors(t *testing.T) {
	if got := List(Int).String(); got == "" {
		t.Error("List(Int).String() should not be empty")
	}
	if got := Map(Varchar, Int).String(); got == "" {
		t.Error("Map(Varchar, Int).String() should not be empty")
	}
	_ = Set(Varchar)
	_ = Tuple(Int, Varchar)
}
