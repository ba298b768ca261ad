package result

import (
	"github.com/onoffswitch/gocassa/internal/datatype"
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/protocol"
)

// ColumnSpec describes one result or bind-marker column: its owning
// keyspace and table (repeated per column unless RowsFlagGlobalTablesSpec
// is set, in which case every column shares the one table named in
// Metadata) and its CQL type.
type ColumnSpec struct {
	Keyspace string
	Table    string
	Name     string
	Type     datatype.Type
}

// Metadata is the column/paging metadata block shared by the Rows
// result and by a Prepared result's two metadata sections (bind
// variables and result columns use the same wire layout).
type Metadata struct {
	Flags       protocol.RowsFlag
	PagingState []byte
	NewMetadataID []byte // v5 only, present when RowsFlagMetadataChanged
	Columns     []ColumnSpec

	// PKIndices is populated only when decoding the bind-variables
	// metadata of a Prepared result (DecodeMetadata's withPKIndices);
	// it names the partition key's position(s) among the bind markers,
	// letting a caller route an EXECUTE to the right token-aware host.
	PKIndices []uint16
}

// DecodeMetadata parses one metadata block. withPKIndices must be true
// only for a Prepared result's variables metadata; every other use
// (Rows metadata, a Prepared result's result metadata) sets it false.
func DecodeMetadata(r *primitive.Reader, withPKIndices bool) (Metadata, error) {
	var m Metadata
	flagsRaw, err := r.Int("metadata.flags")
	if err != nil {
		return m, err
	}
	m.Flags = protocol.RowsFlag(uint32(flagsRaw))

	count, err := r.Int("metadata.column_count")
	if err != nil {
		return m, err
	}

	if withPKIndices {
		pkCount, err := r.Int("metadata.pk_count")
		if err != nil {
			return m, err
		}
		m.PKIndices = make([]uint16, pkCount)
		for i := range m.PKIndices {
			idx, err := r.Short("metadata.pk_index")
			if err != nil {
				return m, err
			}
			m.PKIndices[i] = idx
		}
	}

	if m.Flags&protocol.RowsFlagMetadataChanged != 0 {
		id, err := r.ShortBytes("metadata.new_metadata_id")
		if err != nil {
			return m, err
		}
		m.NewMetadataID = id
	}

	if m.Flags&protocol.RowsFlagHasMorePages != 0 {
		ps, _, err := r.Bytes("metadata.paging_state")
		if err != nil {
			return m, err
		}
		m.PagingState = ps
	}

	if m.Flags&protocol.RowsFlagNoMetadata != 0 {
		return m, nil
	}

	global := m.Flags&protocol.RowsFlagGlobalTablesSpec != 0
	var globalKeyspace, globalTable string
	if global {
		globalKeyspace, err = r.String("metadata.global_keyspace")
		if err != nil {
			return m, err
		}
		globalTable, err = r.String("metadata.global_table")
		if err != nil {
			return m, err
		}
	}

	m.Columns = make([]ColumnSpec, count)
	for i := range m.Columns {
		cs := ColumnSpec{Keyspace: globalKeyspace, Table: globalTable}
		if !global {
			cs.Keyspace, err = r.String("metadata.column.keyspace")
			if err != nil {
				return m, err
			}
			cs.Table, err = r.String("metadata.column.table")
			if err != nil {
				return m, err
			}
		}
		cs.Name, err = r.String("metadata.column.name")
		if err != nil {
			return m, err
		}
		cs.Type, err = decodeOption(r)
		if err != nil {
			return m, err
		}
		m.Columns[i] = cs
	}
	return m, nil
}

// EncodeMetadata appends m to w, mirroring DecodeMetadata's layout. It
// exists for the driver's own round-trip tests; a client never sends a
// metadata block (it only appears in server responses).
func EncodeMetadata(w *primitive.Writer, m Metadata, withPKIndices bool) error {
	w.Int(int32(m.Flags))
	w.Int(int32(len(m.Columns)))

	if withPKIndices {
		w.Int(int32(len(m.PKIndices)))
		for _, idx := range m.PKIndices {
			w.Short(idx)
		}
	}

	if m.Flags&protocol.RowsFlagMetadataChanged != 0 {
		if err := w.ShortBytes("metadata.new_metadata_id", m.NewMetadataID); err != nil {
			return err
		}
	}
	if m.Flags&protocol.RowsFlagHasMorePages != 0 {
		if err := w.BytesField("metadata.paging_state", m.PagingState, false); err != nil {
			return err
		}
	}
	if m.Flags&protocol.RowsFlagNoMetadata != 0 {
		return nil
	}

	global := m.Flags&protocol.RowsFlagGlobalTablesSpec != 0
	if global && len(m.Columns) > 0 {
		if err := w.String("metadata.global_keyspace", m.Columns[0].Keyspace); err != nil {
			return err
		}
		if err := w.String("metadata.global_table", m.Columns[0].Table); err != nil {
			return err
		}
	}
	for _, cs := range m.Columns {
		if !global {
			if err := w.String("metadata.column.keyspace", cs.Keyspace); err != nil {
				return err
			}
			if err := w.String("metadata.column.table", cs.Table); err != nil {
				return err
			}
		}
		if err := w.String("metadata.column.name", cs.Name); err != nil {
			return err
		}
		if err := encodeOption(w, cs.Type); err != nil {
			return err
		}
	}
	return nil
}
