package cassandra

import (
	"fmt"

	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/result"
)

// ResultKind tags which field of a Result is populated.
type ResultKind = protocol.ResultKind

// SchemaChange mirrors an Event's SCHEMA_CHANGE payload, for the
// variant returned directly as the response to the DDL statement that
// caused it.
type SchemaChange = result.SchemaChange

// Result is a decoded RESULT frame, tagged by Kind; only the field
// matching Kind is populated.
type Result struct {
	Kind         ResultKind
	SetKeyspace  string
	Rows         *Rows
	Prepared     *Prepared
	SchemaChange *SchemaChange

	// TraceID is populated when the request that produced this result
	// set Params.Trace or BatchSpec.Trace.
	TraceID *[16]byte
}

func wrapResult(r *result.Result) *Result {
	if r == nil {
		return nil
	}
	out := &Result{
		Kind:         r.Kind,
		SetKeyspace:  r.SetKeyspace,
		SchemaChange: r.SchemaChange,
		TraceID:      r.TraceID,
	}
	if r.Rows != nil {
		out.Rows = &Rows{inner: r.Rows}
	}
	if r.Prepared != nil {
		out.Prepared = &Prepared{descriptor: r.Prepared}
	}
	return out
}

// Rows is a materialized page of query results: column metadata plus
// every cell's bytes, decoded lazily and cached per column.
type Rows struct {
	inner *result.Rows
}

// RowCount returns the number of rows in this page.
func (rs *Rows) RowCount() int { return rs.inner.RowCount() }

// ColumnCount returns the number of columns.
func (rs *Rows) ColumnCount() int { return rs.inner.ColumnCount() }

// ColumnIndex looks up a column's position by name, or -1 if absent.
func (rs *Rows) ColumnIndex(name string) int { return rs.inner.ColumnIndex(name) }

// Column decodes every row's value for col in one pass, caching the
// result for repeated access.
func (rs *Rows) Column(col int) ([]any, error) { return rs.inner.Column(col) }

// Row returns a view over one row of this page. It does not copy or
// decode anything until Get/Scan is called.
func (rs *Rows) Row(i int) Row { return Row{rows: rs, index: i} }

// Row is a single row within a Rows page.
type Row struct {
	rows  *Rows
	index int
}

// Get decodes the named column's value for this row, or nil if the
// cell is SQL null.
func (row Row) Get(name string) (any, error) {
	col := row.rows.ColumnIndex(name)
	if col < 0 {
		return nil, fmt.Errorf("no such column %q", name)
	}
	return row.rows.inner.Value(row.index, col)
}

// MustGet is Get without an error return, for callers certain the
// column name is valid; it panics otherwise.
func (row Row) MustGet(name string) any {
	v, err := row.Get(name)
	if err != nil {
		panic(err)
	}
	return v
}

// Raw returns the column's undecoded bytes and whether it is null.
func (row Row) Raw(col int) (b []byte, null bool, err error) {
	return row.rows.inner.Raw(row.index, col)
}

// Prepared is the id and metadata returned by Prepare, presented to
// Execute.
type Prepared struct {
	keyspace   string
	query      string
	descriptor *result.Prepared
}
