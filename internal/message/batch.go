package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// batch-specific flag bits (CQL binary protocol v4 §4.1.7). Only these
// four are defined for BATCH; each has the same value as the QueryFlag
// constant of the same name.
const (
	batchFlagSerialConsistency = 0x10
	batchFlagTimestamp         = 0x20
	batchFlagWithNames         = 0x40
	batchFlagWithKeyspace      = 0x80 // v5
)

// BatchChild is one statement inside a BATCH: either a plain query
// string or a prepared statement id, each with its own bound values.
type BatchChild struct {
	IsPrepared bool
	Query      string // set when !IsPrepared
	ID         []byte // set when IsPrepared
	Values     []Value
}

// Batch is the BATCH request: a kind (logged/unlogged/counter) and an
// ordered list of child statements sharing one consistency level.
type Batch struct {
	Kind              protocol.BatchKind
	Children          []BatchChild
	Consistency       protocol.Consistency
	SerialConsistency protocol.Consistency
	Timestamp         *int64
	Keyspace          string
}

func (b Batch) flags() byte {
	var f byte
	if len(b.Children) > 0 && hasNamedValues(b.Children) {
		f |= batchFlagWithNames
	}
	if b.SerialConsistency != 0 {
		f |= batchFlagSerialConsistency
	}
	if b.Timestamp != nil {
		f |= batchFlagTimestamp
	}
	if b.Keyspace != "" {
		f |= batchFlagWithKeyspace
	}
	return f
}

func hasNamedValues(children []BatchChild) bool {
	for _, c := range children {
		for _, v := range c.Values {
			if v.Name != "" {
				return true
			}
		}
	}
	return false
}

// EncodeBatch renders a BATCH body.
func EncodeBatch(b Batch) ([]byte, error) {
	w := primitive.NewWriter(64 * len(b.Children))
	w.Byte(byte(b.Kind))
	w.Short(uint16(len(b.Children)))

	flags := b.flags()
	withNames := flags&batchFlagWithNames != 0

	for _, c := range b.Children {
		if c.IsPrepared {
			w.Byte(1)
			if err := w.ShortBytes("batch.child.id", c.ID); err != nil {
				return nil, err
			}
		} else {
			w.Byte(0)
			if err := w.LongString("batch.child.query", c.Query); err != nil {
				return nil, err
			}
		}
		w.Short(uint16(len(c.Values)))
		for _, v := range c.Values {
			if withNames {
				if err := w.String("batch.child.values.name", v.Name); err != nil {
					return nil, err
				}
			}
			if err := w.Value("batch.child.values", v.Bytes, v.Null, v.Unset); err != nil {
				return nil, err
			}
		}
	}

	w.Consistency(uint16(b.Consistency))
	w.Byte(flags)
	if flags&batchFlagSerialConsistency != 0 {
		w.Consistency(uint16(b.SerialConsistency))
	}
	if flags&batchFlagTimestamp != 0 {
		w.Long(*b.Timestamp)
	}
	if flags&batchFlagWithKeyspace != 0 {
		if err := w.String("batch.keyspace", b.Keyspace); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

// DecodeBatch is provided for the driver's own round-trip tests.
func DecodeBatch(body []byte) (Batch, error) {
	r := primitive.NewReader(body)
	kind, err := r.Byte("batch.kind")
	if err != nil {
		return Batch{}, err
	}
	count, err := r.Short("batch.count")
	if err != nil {
		return Batch{}, err
	}
	b := Batch{Kind: protocol.BatchKind(kind), Children: make([]BatchChild, count)}

	for i := range b.Children {
		kindByte, err := r.Byte("batch.child.kind")
		if err != nil {
			return Batch{}, err
		}
		var c BatchChild
		if kindByte == 1 {
			c.IsPrepared = true
			c.ID, err = r.ShortBytes("batch.child.id")
		} else {
			c.Query, err = r.LongString("batch.child.query")
		}
		if err != nil {
			return Batch{}, err
		}
		valCount, err := r.Short("batch.child.values.count")
		if err != nil {
			return Batch{}, err
		}
		c.Values = make([]Value, valCount)
		for j := range c.Values {
			bts, null, unset, err := r.Value("batch.child.values")
			if err != nil {
				return Batch{}, err
			}
			c.Values[j] = Value{Bytes: bts, Null: null, Unset: unset}
		}
		b.Children[i] = c
	}

	cl, err := r.Consistency("batch.consistency")
	if err != nil {
		return Batch{}, err
	}
	b.Consistency = protocol.Consistency(cl)

	flags, err := r.Byte("batch.flags")
	if err != nil {
		return Batch{}, err
	}
	if flags&batchFlagSerialConsistency != 0 {
		sc, err := r.Consistency("batch.serial_consistency")
		if err != nil {
			return Batch{}, err
		}
		b.SerialConsistency = protocol.Consistency(sc)
	}
	if flags&batchFlagTimestamp != 0 {
		ts, err := r.Long("batch.timestamp")
		if err != nil {
			return Batch{}, err
		}
		b.Timestamp = &ts
	}
	if flags&batchFlagWithKeyspace != 0 {
		ks, err := r.String("batch.keyspace")
		if err != nil {
			return Batch{}, err
		}
		b.Keyspace = ks
	}
	return b, nil
}
