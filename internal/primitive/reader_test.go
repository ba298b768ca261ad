package primitive

import (
	"net"
	"testing"
)

func TestShortRoundTrip(t *testing.T) {
	w := NewWriter(2)
	w.Short(0xBEEF)
	r := NewReader(w.Bytes())
	got, err := r.Short("test")
	if err != nil {
		t.Fatalf("Short: %v", err)
	}
	if got != 0xBEEF {
		t.Fatalf("got %x, want BEEF", got)
	}
}

func TestIntLongRoundTrip(t *testing.T) {
	w := NewWriter(12)
	w.Int(-123456)
	w.Long(1 << 40)
	r := NewReader(w.Bytes())
	i, err := r.Int("i")
	if err != nil || i != -123456 {
		t.Fatalf("Int: got %d, err %v", i, err)
	}
	l, err := r.Long("l")
	if err != nil || l != 1<<40 {
		t.Fatalf("Long: got %d, err %v", l, err)
	}
}

func TestStringByteLength(t *testing.T) {
	// "Hello World برای همه" has fewer code points than UTF-8 bytes;
	// the length prefix must count bytes.
	s := "Hello World برای همه"
	w := NewWriter(0)
	if err := w.String("s", s); err != nil {
		t.Fatalf("String: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := r.String("s")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != s {
		t.Fatalf("got %q, want %q", got, s)
	}
}

func TestBytesNullVsEmptyVsUnset(t *testing.T) {
	w := NewWriter(0)
	_ = w.BytesField("null", nil, true)
	_ = w.BytesField("empty", []byte{}, false)
	_ = w.Value("unset", nil, false, true)

	r := NewReader(w.Bytes())
	_, ok, err := r.Bytes("null")
	if err != nil || ok {
		t.Fatalf("null: ok=%v err=%v", ok, err)
	}
	b, ok, err := r.Bytes("empty")
	if err != nil || !ok || len(b) != 0 {
		t.Fatalf("empty: b=%v ok=%v err=%v", b, ok, err)
	}
	_, null, unset, err := r.Value("unset")
	if err != nil || null || !unset {
		t.Fatalf("unset: null=%v unset=%v err=%v", null, unset, err)
	}
}

func TestTruncatedFrame(t *testing.T) {
	r := NewReader([]byte{0x00})
	if _, err := r.Int("x"); err == nil {
		t.Fatal("expected truncated frame error")
	}
}

func TestInvalidUTF8(t *testing.T) {
	buf := []byte{0x00, 0x02, 0xff, 0xfe}
	r := NewReader(buf)
	if _, err := r.String("x"); err == nil {
		t.Fatal("expected invalid utf-8 error")
	}
}

func TestInetRoundTrip(t *testing.T) {
	w := NewWriter(0)
	ip := net.ParseIP("192.168.1.1")
	if err := w.Inet("ip", ip); err != nil {
		t.Fatalf("Inet: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := r.Inet("ip")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.Equal(ip) {
		t.Fatalf("got %v, want %v", got, ip)
	}
}

func TestInetWithPort(t *testing.T) {
	w := NewWriter(0)
	ip := net.ParseIP("::1")
	if err := w.InetAddrWithPort("ip", ip, 9042); err != nil {
		t.Fatalf("encode: %v", err)
	}
	r := NewReader(w.Bytes())
	gotIP, gotPort, err := r.InetAddrWithPort("ip")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !gotIP.Equal(ip) || gotPort != 9042 {
		t.Fatalf("got %v:%d, want %v:9042", gotIP, gotPort, ip)
	}
}

func TestStringMapRoundTrip(t *testing.T) {
	w := NewWriter(0)
	m := map[string]string{"CQL_VERSION": "3.0.0", "COMPRESSION": "lz4"}
	if err := w.StringMap("m", m); err != nil {
		t.Fatalf("encode: %v", err)
	}
	r := NewReader(w.Bytes())
	got, err := r.StringMap("m")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(m) || got["CQL_VERSION"] != "3.0.0" {
		t.Fatalf("got %v, want %v", got, m)
	}
}
