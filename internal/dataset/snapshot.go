package dataset

import (
	"encoding/json"
	"fmt"
	"time"
)

// snapshotDoc is the wire shape of a snapshot: column names, a row
// index, and the cell matrix. It is the split-orient layout the front
// end already understands.
type snapshotDoc struct {
	Columns []string `json:"columns"`
	Index   []int    `json:"index"`
	Data    [][]any  `json:"data"`
}

// MarshalSnapshot serializes a Dataset into its transport form. Time
// cells are normalized to UTC RFC3339 text; numbers and strings pass
// through unchanged.
func MarshalSnapshot(d *Dataset) (string, error) {
	if err := d.Validate(); err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	doc := snapshotDoc{
		Columns: append([]string(nil), d.Columns...),
		Index:   make([]int, len(d.Rows)),
		Data:    make([][]any, len(d.Rows)),
	}
	for i, row := range d.Rows {
		doc.Index[i] = i
		out := make([]any, len(row))
		for j, cell := range row {
			if t, ok := cell.(time.Time); ok {
				out[j] = t.UTC().Format(time.RFC3339)
			} else {
				out[j] = cell
			}
		}
		doc.Data[i] = out
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(b), nil
}

// UnmarshalSnapshot deserializes a snapshot produced by
// MarshalSnapshot. Numeric cells come back as float64, everything else
// as string (times stay in their canonical textual form).
func UnmarshalSnapshot(s string) (*Dataset, error) {
	var doc snapshotDoc
	if err := json.Unmarshal([]byte(s), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	d := &Dataset{Columns: doc.Columns, Rows: doc.Data}
	if d.Columns == nil {
		d.Columns = []string{}
	}
	if d.Rows == nil {
		d.Rows = [][]any{}
	}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return d, nil
}
