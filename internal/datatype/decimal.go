package datatype

import "math/big"

// Decimal is an arbitrary-precision decimal: value == Unscaled *
// 10^-Scale. It mirrors the native protocol's [decimal] wire format
// (CQL binary protocol v4 §6, "decimal"): an i32 scale followed by a
// [varint] unscaled value.
type Decimal struct {
	Unscaled *big.Int
	Scale    int32
}

// Equal reports whether d and other represent the same scaled value,
// the round-trip equality the typed-value codec promises for decimal
// (scale is preserved exactly, unlike a normalized float comparison).
func (d Decimal) Equal(other Decimal) bool {
	return d.Scale == other.Scale && d.Unscaled.Cmp(other.Unscaled) == 0
}

func (d Decimal) String() string {
	return d.Unscaled.String() + "e-" + big.NewInt(int64(d.Scale)).String()
}
