// Package projection derives the column schema a session's controls
// are populated from.
package projection

import "github.com/mborhani/vizboard/internal/dataset"

// Projection is everything the control panel needs from the current
// snapshot: whether to show the visualization region at all, the
// column menu entries, and the default axis picks.
type Projection struct {
	Visible  bool     `json:"visible"`
	Columns  []string `json:"columns"`
	XDefault string   `json:"x_default"`
	YDefault string   `json:"y_default"`
}

// Project recomputes the projection from a snapshot. An empty snapshot
// is the reset state: hidden region, no columns, no defaults. Snapshots
// are produced by ingestion only, so a malformed one is treated the
// same as none.
func Project(snapshot string) Projection {
	if snapshot == "" {
		return Projection{Columns: []string{}}
	}
	d, err := dataset.UnmarshalSnapshot(snapshot)
	if err != nil {
		return Projection{Columns: []string{}}
	}

	p := Projection{
		Visible: true,
		Columns: append([]string(nil), d.Columns...),
	}
	if len(d.Columns) > 0 {
		p.XDefault = d.Columns[0]
	}
	if len(d.Columns) > 1 {
		p.YDefault = d.Columns[1]
	}
	return p
}

// HasColumn reports whether name is one of the projected columns.
func (p Projection) HasColumn(name string) bool {
	for _, c := range p.Columns {
		if c == name {
			return true
		}
	}
	return false
}
