package result

import (
	"fmt"
	"sync"

	"github.com/onoffswitch/gocassa/internal/datatype"
	"github.com/onoffswitch/gocassa/internal/primitive"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// Rows is a RESULT body of kind Rows: the column metadata plus the
// materialized cell bytes, row-major, each cell either present bytes or
// null. Typed decoding happens lazily and is cached per column, since a
// caller iterating rows column-by-column (the common case) would
// otherwise re-run datatype.Decode on every access.
type Rows struct {
	Metadata Metadata
	cells    [][]rowCell

	mu       sync.Mutex
	decoded  map[int][]any // column index -> decoded values, cached on first use
}

type rowCell struct {
	bytes []byte
	null  bool
}

// DecodeRows parses a Rows RESULT body (the kind field itself has
// already been consumed by the caller).
func DecodeRows(r *primitive.Reader) (*Rows, error) {
	meta, err := DecodeMetadata(r, false)
	if err != nil {
		return nil, err
	}
	rowCount, err := r.Int("rows.row_count")
	if err != nil {
		return nil, err
	}
	if rowCount < 0 {
		return nil, &xerrors.DecodeError{Field: "rows.row_count", Err: fmt.Errorf("negative row count %d", rowCount)}
	}

	width := len(meta.Columns)
	cells := make([][]rowCell, rowCount)
	for i := range cells {
		row := make([]rowCell, width)
		for c := 0; c < width; c++ {
			b, ok, err := r.Bytes("rows.cell")
			if err != nil {
				return nil, err
			}
			row[c] = rowCell{bytes: b, null: !ok}
		}
		cells[i] = row
	}

	return &Rows{Metadata: meta, cells: cells}, nil
}

// RowCount returns the number of materialized rows in this page.
func (rs *Rows) RowCount() int { return len(rs.cells) }

// ColumnCount returns the number of columns.
func (rs *Rows) ColumnCount() int { return len(rs.Metadata.Columns) }

// Raw returns the cell at (row, col) without decoding it: the raw bytes
// and whether it is SQL null.
func (rs *Rows) Raw(row, col int) (b []byte, null bool, err error) {
	if row < 0 || row >= len(rs.cells) {
		return nil, false, fmt.Errorf("row index %d out of range [0, %d)", row, len(rs.cells))
	}
	if col < 0 || col >= len(rs.Metadata.Columns) {
		return nil, false, fmt.Errorf("column index %d out of range [0, %d)", col, len(rs.Metadata.Columns))
	}
	c := rs.cells[row][col]
	return c.bytes, c.null, nil
}

// Value decodes the cell at (row, col) into a Go value using the
// column's declared CQL type, returning nil for a SQL null.
func (rs *Rows) Value(row, col int) (any, error) {
	b, null, err := rs.Raw(row, col)
	if err != nil {
		return nil, err
	}
	if null {
		return nil, nil
	}
	return datatype.Decode(b, rs.Metadata.Columns[col].Type)
}

// Column decodes every row's value for col, caching the result: callers
// that iterate a column across all rows (the common access pattern for
// bulk processing) pay the decode cost once per column, not once per
// cell lookup.
func (rs *Rows) Column(col int) ([]any, error) {
	if col < 0 || col >= len(rs.Metadata.Columns) {
		return nil, fmt.Errorf("column index %d out of range [0, %d)", col, len(rs.Metadata.Columns))
	}
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if rs.decoded == nil {
		rs.decoded = make(map[int][]any)
	}
	if cached, ok := rs.decoded[col]; ok {
		return cached, nil
	}
	out := make([]any, len(rs.cells))
	typ := rs.Metadata.Columns[col].Type
	for i, row := range rs.cells {
		c := row[col]
		if c.null {
			continue
		}
		v, err := datatype.Decode(c.bytes, typ)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	rs.decoded[col] = out
	return out, nil
}

// ColumnIndex looks up a column's position by name, or -1 if absent.
func (rs *Rows) ColumnIndex(name string) int {
	for i, cs := range rs.Metadata.Columns {
		if cs.Name == name {
			return i
		}
	}
	return -1
}
