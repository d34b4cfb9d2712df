// Package dataset holds the in-memory tabular structure shared by the
// ingestion, projection and chart stages, together with its parsers and
// the serialized snapshot form that crosses stage boundaries.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Dataset is an ordered sequence of named columns with an aligned row
// count. Cells are scalars: float64, string or time.Time. A Dataset is
// immutable once produced by ingestion.
type Dataset struct {
	Columns []string
	Rows    [][]any
}

// NumRows returns the number of data rows.
func (d *Dataset) NumRows() int { return len(d.Rows) }

// NumCols returns the number of columns.
func (d *Dataset) NumCols() int { return len(d.Columns) }

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns the cell values of the named column in row order.
func (d *Dataset) Column(name string) ([]any, bool) {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]any, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Validate checks the aligned-row-count invariant.
func (d *Dataset) Validate() error {
	for i, row := range d.Rows {
		if len(row) != len(d.Columns) {
			return fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(d.Columns))
		}
	}
	return nil
}

// inferCell turns raw text into a typed cell: number if it parses as
// one, the string otherwise. NaN and the infinities parse as floats
// but have no JSON form, so they stay text to keep snapshots
// serializable.
func inferCell(s string) any {
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return s
		}
		return f
	}
	return s
}

// CellString renders a cell for display or labeling. Times use the same
// canonical form the snapshot codec writes.
func CellString(v any) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case time.Time:
		return c.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", c)
	}
}

// CellFloat coerces a cell to a number where possible.
func CellFloat(v any) (float64, bool) {
	switch c := v.(type) {
	case float64:
		return c, true
	case string:
		f, err := strconv.ParseFloat(c, 64)
		return f, err == nil
	default:
		return 0, false
	}
}
