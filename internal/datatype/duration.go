package datatype

// Duration is the protocol v5 [duration] value: three independently
// signed components, because calendar months and days don't have a
// fixed nanosecond length. Wire form is three [vint]s in this order:
// months, days, nanoseconds.
type Duration struct {
	Months      int32
	Days        int32
	Nanoseconds int64
}

// EncodeDuration renders d as three vints.
func EncodeDuration(d Duration) []byte {
	out := EncodeVint(int64(d.Months))
	out = append(out, EncodeVint(int64(d.Days))...)
	out = append(out, EncodeVint(d.Nanoseconds)...)
	return out
}

// DecodeDuration parses three vints into a Duration.
func DecodeDuration(b []byte) (Duration, error) {
	months, n, err := DecodeVint(b)
	if err != nil {
		return Duration{}, err
	}
	b = b[n:]
	days, n, err := DecodeVint(b)
	if err != nil {
		return Duration{}, err
	}
	b = b[n:]
	nanos, _, err := DecodeVint(b)
	if err != nil {
		return Duration{}, err
	}
	return Duration{Months: int32(months), Days: int32(days), Nanoseconds: nanos}, nil
}
