// Package chart builds renderable chart descriptions from a snapshot
// and the session's axis and type selections.
package chart

import (
	"github.com/mborhani/vizboard/internal/dataset"
)

// Type is the closed set of chart kinds the dashboard offers.
type Type string

const (
	Scatter   Type = "scatter"
	Line      Type = "line"
	Bar       Type = "bar"
	Histogram Type = "histogram"
	Pie       Type = "pie"
)

// DefaultType is preselected in the UI.
const DefaultType = Scatter

// DefaultTransitionMS is the animation hint attached to every built
// chart.
const DefaultTransitionMS = 500

// Known reports whether s names one of the five chart kinds. Unknown
// tags are not an error; dispatch just yields the empty chart.
func Known(s string) bool {
	switch Type(s) {
	case Scatter, Line, Bar, Histogram, Pie:
		return true
	}
	return false
}

// Trace is one plotted series in a Spec, shaped the way the front-end
// plotting collaborator consumes figures.
type Trace struct {
	Kind   string    `json:"type"`
	Mode   string    `json:"mode,omitempty"`
	X      []any     `json:"x,omitempty"`
	Y      []any     `json:"y,omitempty"`
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// Transition is the uniform animation hint.
type Transition struct {
	DurationMS int `json:"duration"`
}

// Layout carries axis titles and the transition hint.
type Layout struct {
	XTitle     string     `json:"x_title,omitempty"`
	YTitle     string     `json:"y_title,omitempty"`
	Transition Transition `json:"transition"`
}

// Spec is a declarative chart description, derived fresh on every
// request and never cached.
type Spec struct {
	Data   []Trace `json:"data"`
	Layout *Layout `json:"layout,omitempty"`
}

// IsEmpty reports the inert placeholder chart.
func (s Spec) IsEmpty() bool { return len(s.Data) == 0 }

// Empty is the no-op chart shown while selections are incomplete.
func Empty() Spec { return Spec{Data: []Trace{}} }

// Build dispatches on the chart type. The guard requires snapshot and
// both axis selections before any dispatch happens; histogram only
// consumes X but is guarded the same way, matching shipped behavior
// (see DESIGN.md, open question c).
func Build(snapshot, x, y string, typ Type, transitionMS int) Spec {
	if snapshot == "" || x == "" || y == "" {
		return Empty()
	}
	d, err := dataset.UnmarshalSnapshot(snapshot)
	if err != nil {
		return Empty()
	}
	xs, ok := d.Column(x)
	if !ok {
		return Empty()
	}
	ys, ok := d.Column(y)
	if !ok {
		return Empty()
	}
	if transitionMS <= 0 {
		transitionMS = DefaultTransitionMS
	}
	layout := &Layout{XTitle: x, YTitle: y, Transition: Transition{DurationMS: transitionMS}}

	switch typ {
	case Scatter:
		return Spec{Data: []Trace{{Kind: "scatter", Mode: "markers", X: xs, Y: ys}}, Layout: layout}
	case Line:
		// row order preserved as stored
		return Spec{Data: []Trace{{Kind: "scatter", Mode: "lines", X: xs, Y: ys}}, Layout: layout}
	case Bar:
		return Spec{Data: []Trace{{Kind: "bar", X: xs, Y: ys}}, Layout: layout}
	case Histogram:
		layout.YTitle = "count"
		return Spec{Data: []Trace{{Kind: "histogram", X: xs}}, Layout: layout}
	case Pie:
		labels, values := sliceTotals(xs, ys)
		layout.XTitle, layout.YTitle = "", ""
		return Spec{Data: []Trace{{Kind: "pie", Labels: labels, Values: values}}, Layout: layout}
	default:
		return Empty()
	}
}

// sliceTotals folds magnitudes per distinct label, first-appearance
// order. Rows whose magnitude is not numeric are dropped.
func sliceTotals(labels, magnitudes []any) ([]string, []float64) {
	order := make([]string, 0)
	totals := make(map[string]float64)
	for i, lv := range labels {
		mag, ok := dataset.CellFloat(magnitudes[i])
		if !ok {
			continue
		}
		label := dataset.CellString(lv)
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += mag
	}
	values := make([]float64, len(order))
	for i, l := range order {
		values[i] = totals[l]
	}
	return order, values
}
