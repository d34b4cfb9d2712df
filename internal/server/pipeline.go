package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mborhani/vizboard/internal/chart"
	"github.com/mborhani/vizboard/internal/dataset"
	"github.com/mborhani/vizboard/internal/ingest"
	"github.com/mborhani/vizboard/internal/projection"
	"github.com/mborhani/vizboard/internal/session"
	"github.com/mborhani/vizboard/internal/telemetry"
)

// EventKind names the UI events the shell emits.
type EventKind string

const (
	EventUpload      EventKind = "upload"
	EventURL         EventKind = "url"
	EventXChanged    EventKind = "x-changed"
	EventYChanged    EventKind = "y-changed"
	EventTypeChanged EventKind = "type-changed"
)

// Event is one UI event plus its payload.
type Event struct {
	Kind      EventKind
	Upload    *ingest.RawUpload
	URL       string
	X, Y      string
	ChartType string
}

// Update is the union of outputs pushed back to the page after an
// event: status line, control panel contents, and the current chart.
type Update struct {
	Status      string     `json:"status"`
	StatusColor string     `json:"status_color"`
	Visible     bool       `json:"visible"`
	Columns     []string   `json:"columns"`
	X           string     `json:"x"`
	Y           string     `json:"y"`
	ChartType   string     `json:"chart_type"`
	Chart       chart.Spec `json:"chart"`
}

type stageFn func(ctx context.Context, st *session.State, ev Event, out *Update)

func marshalDataset(d *dataset.Dataset) (string, error) {
	s, err := dataset.MarshalSnapshot(d)
	if err != nil {
		return "", &ingest.ParseError{Cause: err}
	}
	return s, nil
}

// Pipeline replaces the original reactive callback graph with an
// explicit dispatch table: each event kind lists the stages it re-runs,
// in order. Projection and chart always re-derive from the snapshot;
// only the ingestion stages write it.
type Pipeline struct {
	Ingest       *ingest.Service
	Tele         *telemetry.Telemetry
	TransitionMS int
	Logger       *log.Logger
}

func (p *Pipeline) stages(kind EventKind) []stageFn {
	switch kind {
	case EventUpload, EventURL:
		return []stageFn{p.runIngest, p.runProject, p.runChart}
	case EventXChanged, EventYChanged, EventTypeChanged:
		return []stageFn{p.runSelect, p.runProject, p.runChart}
	default:
		return nil
	}
}

// Dispatch runs the stages declared for the event against the
// session's state and returns the UI update. The caller persists the
// mutated state.
func (p *Pipeline) Dispatch(ctx context.Context, st *session.State, ev Event) (Update, error) {
	stages := p.stages(ev.Kind)
	if stages == nil {
		return Update{}, fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	var out Update
	for _, stage := range stages {
		stage(ctx, st, ev, &out)
	}
	return out, nil
}

// runIngest parses the upload or link, then replaces the snapshot and
// resets the axis selections on success. Any failure clears the
// snapshot, even over a previously loaded dataset (see DESIGN.md, open
// question a).
func (p *Pipeline) runIngest(ctx context.Context, st *session.State, ev Event, out *Update) {
	start := time.Now()
	var (
		snapshot string
		msg      string
		err      error
		source   string
	)
	switch ev.Kind {
	case EventUpload:
		source = "upload"
		if ev.Upload == nil {
			err = &ingest.ParseError{Cause: fmt.Errorf("no upload payload")}
			break
		}
		ds, m, e := p.Ingest.FromUpload(*ev.Upload)
		msg, err = m, e
		if e == nil {
			snapshot, err = marshalDataset(ds)
		}
	case EventURL:
		source = "url"
		ds, m, e := p.Ingest.FromURL(ctx, ev.URL)
		msg, err = m, e
		if e == nil {
			snapshot, err = marshalDataset(ds)
		}
	}

	if err != nil {
		p.Logger.Printf("ingest %s: %s: %v", source, ingest.Kind(err), err)
		p.Tele.ObserveIngest(source, ingest.Kind(err), time.Since(start))
		st.Snapshot = ""
		st.X, st.Y = "", ""
		out.Status = err.Error()
		out.StatusColor = "red"
		return
	}

	p.Tele.ObserveIngest(source, "success", time.Since(start))
	st.Snapshot = snapshot
	proj := projection.Project(snapshot)
	st.X, st.Y = proj.XDefault, proj.YDefault
	p.Logger.Printf("ingest %s: snapshot replaced, %d columns, defaults %q/%q", source, len(proj.Columns), st.X, st.Y)
	if st.ChartType == "" {
		st.ChartType = string(chart.DefaultType)
	}
	out.Status = msg
	out.StatusColor = "green"
}

// runSelect applies a dropdown change. Axis picks must be members of
// the current column list; anything else is refused and the previous
// selection stands.
func (p *Pipeline) runSelect(_ context.Context, st *session.State, ev Event, out *Update) {
	proj := projection.Project(st.Snapshot)
	switch ev.Kind {
	case EventXChanged:
		if ev.X != "" && !proj.HasColumn(ev.X) {
			out.Status = fmt.Sprintf("column %q is not in the current dataset", ev.X)
			out.StatusColor = "red"
			return
		}
		st.X = ev.X
	case EventYChanged:
		if ev.Y != "" && !proj.HasColumn(ev.Y) {
			out.Status = fmt.Sprintf("column %q is not in the current dataset", ev.Y)
			out.StatusColor = "red"
			return
		}
		st.Y = ev.Y
	case EventTypeChanged:
		// unknown tags are stored as-is; chart dispatch answers them
		// with the empty chart
		st.ChartType = ev.ChartType
	}
}

// runProject refreshes the control panel from the snapshot.
func (p *Pipeline) runProject(_ context.Context, st *session.State, _ Event, out *Update) {
	proj := projection.Project(st.Snapshot)
	out.Visible = proj.Visible
	out.Columns = proj.Columns
	out.X, out.Y = st.X, st.Y
	out.ChartType = st.ChartType
}

// runChart re-derives the chart spec from the current state.
func (p *Pipeline) runChart(_ context.Context, st *session.State, _ Event, out *Update) {
	out.Chart = chart.Build(st.Snapshot, st.X, st.Y, chart.Type(st.ChartType), p.TransitionMS)
	p.Tele.CountChart(st.ChartType)
}
