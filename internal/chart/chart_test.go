package chart

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mborhani/vizboard/internal/dataset"
)

func snap(t *testing.T, csv string) string {
	t.Helper()
	d, err := dataset.ParseCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ParseCSV: %v", err)
	}
	s, err := dataset.MarshalSnapshot(d)
	if err != nil {
		t.Fatalf("MarshalSnapshot: %v", err)
	}
	return s
}

func TestBuildGuard(t *testing.T) {
	s := snap(t, "x,y\n1,2\n3,4\n")
	for _, typ := range []Type{Scatter, Line, Bar, Histogram, Pie} {
		if got := Build("", "x", "y", typ, 500); !got.IsEmpty() {
			t.Fatalf("%s: missing snapshot should be empty", typ)
		}
		if got := Build(s, "", "y", typ, 500); !got.IsEmpty() {
			t.Fatalf("%s: missing x should be empty", typ)
		}
		// histogram ignores y but is still guarded on it
		if got := Build(s, "x", "", typ, 500); !got.IsEmpty() {
			t.Fatalf("%s: missing y should be empty", typ)
		}
	}
}

func TestBuildScatter(t *testing.T) {
	got := Build(snap(t, "x,y\n1,2\n3,4\n"), "x", "y", Scatter, 500)
	if got.IsEmpty() {
		t.Fatal("expected a chart")
	}
	tr := got.Data[0]
	if tr.Kind != "scatter" || tr.Mode != "markers" {
		t.Fatalf("trace = %+v", tr)
	}
	if !reflect.DeepEqual(tr.X, []any{1.0, 3.0}) || !reflect.DeepEqual(tr.Y, []any{2.0, 4.0}) {
		t.Fatalf("points = %v / %v, want (1,2),(3,4)", tr.X, tr.Y)
	}
	if got.Layout == nil || got.Layout.Transition.DurationMS != 500 {
		t.Fatalf("layout = %+v, want 500ms transition", got.Layout)
	}
}

func TestBuildLinePreservesRowOrder(t *testing.T) {
	got := Build(snap(t, "x,y\n3,1\n1,2\n2,3\n"), "x", "y", Line, 500)
	tr := got.Data[0]
	if tr.Mode != "lines" {
		t.Fatalf("mode = %q", tr.Mode)
	}
	if !reflect.DeepEqual(tr.X, []any{3.0, 1.0, 2.0}) {
		t.Fatalf("x order changed: %v", tr.X)
	}
}

func TestBuildHistogramIgnoresY(t *testing.T) {
	got := Build(snap(t, "x,y\n1,2\n3,4\n"), "x", "y", Histogram, 500)
	tr := got.Data[0]
	if tr.Kind != "histogram" {
		t.Fatalf("kind = %q", tr.Kind)
	}
	if tr.Y != nil {
		t.Fatalf("histogram should carry no y values, got %v", tr.Y)
	}
}

func TestBuildPieAggregatesPerLabel(t *testing.T) {
	got := Build(snap(t, "a,b\nred,1\nblue,2\nred,3\n"), "a", "b", Pie, 500)
	tr := got.Data[0]
	if tr.Kind != "pie" {
		t.Fatalf("kind = %q", tr.Kind)
	}
	if !reflect.DeepEqual(tr.Labels, []string{"red", "blue"}) {
		t.Fatalf("labels = %v", tr.Labels)
	}
	if !reflect.DeepEqual(tr.Values, []float64{4, 2}) {
		t.Fatalf("values = %v", tr.Values)
	}
}

func TestBuildUnknownTypeFallsThrough(t *testing.T) {
	got := Build(snap(t, "x,y\n1,2\n"), "x", "y", Type("sunburst"), 500)
	if !got.IsEmpty() {
		t.Fatalf("unknown type should be empty, got %+v", got)
	}
}

func TestBuildUnknownColumn(t *testing.T) {
	got := Build(snap(t, "x,y\n1,2\n"), "nope", "y", Scatter, 500)
	if !got.IsEmpty() {
		t.Fatal("unknown column should be empty")
	}
}

func TestBuildDefaultTransition(t *testing.T) {
	got := Build(snap(t, "x,y\n1,2\n"), "x", "y", Bar, 0)
	if got.Layout.Transition.DurationMS != DefaultTransitionMS {
		t.Fatalf("transition = %d", got.Layout.Transition.DurationMS)
	}
}

func TestKnown(t *testing.T) {
	for _, s := range []string{"scatter", "line", "bar", "histogram", "pie"} {
		if !Known(s) {
			t.Fatalf("%s should be known", s)
		}
	}
	if Known("sunburst") {
		t.Fatal("sunburst should be unknown")
	}
}
