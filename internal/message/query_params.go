package message

import (
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Value is one bound parameter: either a present value, an explicit SQL
// null, or (protocol v4+, bind values only) unset, meaning "leave
// whatever is already there" rather than overwriting with null.
type Value struct {
	Name   string // set only when QueryFlagWithNames is used
	Bytes  []byte
	Null   bool
	Unset  bool
}

// QueryParameters is the shared parameter block that QUERY and EXECUTE
// serialize in the same flags-then-fields layout (CQL binary protocol
// v4 §4.1.4). BATCH child statements carry only their values; the batch
// trailer is written by EncodeBatch itself.
type QueryParameters struct {
	Consistency       protocol.Consistency
	Values            []Value
	SkipMetadata      bool
	PageSize          int32
	PagingState       []byte
	SerialConsistency protocol.Consistency
	Timestamp         *int64
	Keyspace          string // v5, QueryFlagWithKeyspace
	NowInSeconds      *int32 // v5, QueryFlagNowInSeconds
}

func (p QueryParameters) flags() protocol.QueryFlag {
	var f protocol.QueryFlag
	if len(p.Values) > 0 {
		f |= protocol.QueryFlagValues
		for _, v := range p.Values {
			if v.Name != "" {
				f |= protocol.QueryFlagWithNames
				break
			}
		}
	}
	if p.SkipMetadata {
		f |= protocol.QueryFlagSkipMetadata
	}
	if p.PageSize > 0 {
		f |= protocol.QueryFlagPageSize
	}
	if p.PagingState != nil {
		f |= protocol.QueryFlagPagingState
	}
	if p.SerialConsistency != 0 {
		f |= protocol.QueryFlagSerialConsistency
	}
	if p.Timestamp != nil {
		f |= protocol.QueryFlagTimestamp
	}
	if p.Keyspace != "" {
		f |= protocol.QueryFlagWithKeyspace
	}
	if p.NowInSeconds != nil {
		f |= protocol.QueryFlagNowInSeconds
	}
	return f
}

// EncodeQueryParameters appends p to w. version selects the wire width
// of the flags field: a single byte through protocol v4, a four-byte
// int from v5 on (CQL binary protocol, "flags_byte (v4) or flags_int
// (v5)").
func EncodeQueryParameters(w *primitive.Writer, p QueryParameters, version protocol.ProtocolVersion) error {
	w.Consistency(uint16(p.Consistency))
	flags := p.flags()
	if version >= protocol.ProtocolVersion5 {
		w.Int(int32(flags))
	} else {
		w.Byte(byte(flags))
	}

	if flags&protocol.QueryFlagValues != 0 {
		w.Short(uint16(len(p.Values)))
		for _, v := range p.Values {
			if flags&protocol.QueryFlagWithNames != 0 {
				if err := w.String("query.values.name", v.Name); err != nil {
					return err
				}
			}
			if err := w.Value("query.values", v.Bytes, v.Null, v.Unset); err != nil {
				return &xerrors.EncodeError{Field: "query.values", Err: err}
			}
		}
	}
	if flags&protocol.QueryFlagPageSize != 0 {
		w.Int(p.PageSize)
	}
	if flags&protocol.QueryFlagPagingState != 0 {
		if err := w.BytesField("query.paging_state", p.PagingState, false); err != nil {
			return err
		}
	}
	if flags&protocol.QueryFlagSerialConsistency != 0 {
		w.Consistency(uint16(p.SerialConsistency))
	}
	if flags&protocol.QueryFlagTimestamp != 0 {
		w.Long(*p.Timestamp)
	}
	if flags&protocol.QueryFlagWithKeyspace != 0 {
		if err := w.String("query.keyspace", p.Keyspace); err != nil {
			return err
		}
	}
	if flags&protocol.QueryFlagNowInSeconds != 0 {
		w.Int(*p.NowInSeconds)
	}
	return nil
}

// DecodeQueryParameters parses a QueryParameters block, provided mainly
// for the driver's own encode/decode round-trip tests: a client never
// receives these from a server, since QUERY/EXECUTE/BATCH are requests.
func DecodeQueryParameters(r *primitive.Reader, version protocol.ProtocolVersion) (QueryParameters, error) {
	var p QueryParameters
	cl, err := r.Consistency("query.consistency")
	if err != nil {
		return p, err
	}
	p.Consistency = protocol.Consistency(cl)

	var flags protocol.QueryFlag
	if version >= protocol.ProtocolVersion5 {
		flagsRaw, err := r.Int("query.flags")
		if err != nil {
			return p, err
		}
		flags = protocol.QueryFlag(uint32(flagsRaw))
	} else {
		flagsRaw, err := r.Byte("query.flags")
		if err != nil {
			return p, err
		}
		flags = protocol.QueryFlag(flagsRaw)
	}

	if flags&protocol.QueryFlagValues != 0 {
		count, err := r.Short("query.values.count")
		if err != nil {
			return p, err
		}
		p.Values = make([]Value, count)
		for i := range p.Values {
			var v Value
			if flags&protocol.QueryFlagWithNames != 0 {
				name, err := r.String("query.values.name")
				if err != nil {
					return p, err
				}
				v.Name = name
			}
			b, null, unset, err := r.Value("query.values")
			if err != nil {
				return p, err
			}
			v.Bytes, v.Null, v.Unset = b, null, unset
			p.Values[i] = v
		}
	}
	p.SkipMetadata = flags&protocol.QueryFlagSkipMetadata != 0
	if flags&protocol.QueryFlagPageSize != 0 {
		n, err := r.Int("query.page_size")
		if err != nil {
			return p, err
		}
		p.PageSize = n
	}
	if flags&protocol.QueryFlagPagingState != 0 {
		b, _, err := r.Bytes("query.paging_state")
		if err != nil {
			return p, err
		}
		p.PagingState = b
	}
	if flags&protocol.QueryFlagSerialConsistency != 0 {
		cl, err := r.Consistency("query.serial_consistency")
		if err != nil {
			return p, err
		}
		p.SerialConsistency = protocol.Consistency(cl)
	}
	if flags&protocol.QueryFlagTimestamp != 0 {
		ts, err := r.Long("query.timestamp")
		if err != nil {
			return p, err
		}
		p.Timestamp = &ts
	}
	if flags&protocol.QueryFlagWithKeyspace != 0 {
		ks, err := r.String("query.keyspace")
		if err != nil {
			return p, err
		}
		p.Keyspace = ks
	}
	if flags&protocol.QueryFlagNowInSeconds != 0 {
		n, err := r.Int("query.now_in_seconds")
		if err != nil {
			return p, err
		}
		p.NowInSeconds = &n
	}
	return p, nil
}
