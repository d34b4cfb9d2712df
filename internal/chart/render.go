package chart

import (
	"errors"
	"fmt"
	"io"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mborhani/vizboard/internal/dataset"
)

// ErrEmptyChart is returned when the guard would have produced the
// placeholder chart; callers answer with no image instead of an error
// page.
var ErrEmptyChart = errors.New("chart: nothing to render")

const histogramBins = 10

func pointStyle(col drawing.Color) gochart.Style {
	return gochart.Style{
		StrokeWidth: gochart.Disabled,
		DotWidth:    4,
		DotColor:    col,
	}
}

// Render rasterizes the current chart to PNG. It applies the same
// guard and dispatch as Build; the pie path uses the same per-label
// totals the declarative spec carries.
func Render(w io.Writer, snapshot, x, y string, typ Type, width, height int) error {
	if snapshot == "" || x == "" || y == "" {
		return ErrEmptyChart
	}
	d, err := dataset.UnmarshalSnapshot(snapshot)
	if err != nil {
		return ErrEmptyChart
	}
	xs, ok := d.Column(x)
	if !ok {
		return ErrEmptyChart
	}
	ys, ok := d.Column(y)
	if !ok {
		return ErrEmptyChart
	}

	switch typ {
	case Scatter:
		return renderXY(w, x, y, xs, ys, pointStyle(gochart.ColorBlue), width, height)
	case Line:
		return renderXY(w, x, y, xs, ys, gochart.Style{StrokeWidth: 2}, width, height)
	case Bar:
		return renderBars(w, categoryBars(xs, ys), width, height)
	case Histogram:
		return renderBars(w, histogramBars(xs), width, height)
	case Pie:
		labels, values := sliceTotals(xs, ys)
		if len(labels) == 0 {
			return ErrEmptyChart
		}
		vals := make([]gochart.Value, len(labels))
		for i := range labels {
			vals[i] = gochart.Value{Label: labels[i], Value: values[i]}
		}
		pie := gochart.PieChart{Width: width, Height: height, Values: vals}
		return pie.Render(gochart.PNG, w)
	default:
		return ErrEmptyChart
	}
}

// renderXY plots the numeric pairs of (xs, ys); rows where either cell
// is not numeric are skipped.
func renderXY(w io.Writer, xName, yName string, xs, ys []any, style gochart.Style, width, height int) error {
	var fx, fy []float64
	for i := range xs {
		xv, okX := dataset.CellFloat(xs[i])
		yv, okY := dataset.CellFloat(ys[i])
		if !okX || !okY {
			continue
		}
		fx = append(fx, xv)
		fy = append(fy, yv)
	}
	if len(fx) == 0 {
		return ErrEmptyChart
	}
	// go-chart refuses series shorter than 2; duplicate a lone point so
	// a one-row dataset still renders.
	if len(fx) == 1 {
		fx = append(fx, fx[0])
		fy = append(fy, fy[0])
	}
	ch := gochart.Chart{
		Width:  width,
		Height: height,
		XAxis:  gochart.XAxis{Name: xName},
		YAxis:  gochart.YAxis{Name: yName},
		Series: []gochart.Series{
			gochart.ContinuousSeries{XValues: fx, YValues: fy, Style: style},
		},
	}
	return ch.Render(gochart.PNG, w)
}

func renderBars(w io.Writer, bars []gochart.Value, width, height int) error {
	if len(bars) == 0 {
		return ErrEmptyChart
	}
	ch := gochart.BarChart{
		Width:    width,
		Height:   height,
		BarWidth: 40,
		Bars:     bars,
	}
	return ch.Render(gochart.PNG, w)
}

// categoryBars folds Y per distinct X category, first-appearance order.
func categoryBars(xs, ys []any) []gochart.Value {
	labels, values := sliceTotals(xs, ys)
	bars := make([]gochart.Value, len(labels))
	for i := range labels {
		bars[i] = gochart.Value{Label: labels[i], Value: values[i]}
	}
	return bars
}

// histogramBars buckets the numeric values of xs into equal-width bins.
func histogramBars(xs []any) []gochart.Value {
	var vals []float64
	for _, v := range xs {
		if f, ok := dataset.CellFloat(v); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return nil
	}
	min, max := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	if min == max {
		return []gochart.Value{{Label: dataset.CellString(min), Value: float64(len(vals))}}
	}
	width := (max - min) / histogramBins
	counts := make([]int, histogramBins)
	for _, v := range vals {
		bin := int((v - min) / width)
		if bin >= histogramBins {
			bin = histogramBins - 1
		}
		counts[bin]++
	}
	bars := make([]gochart.Value, histogramBins)
	for i, c := range counts {
		lo := min + float64(i)*width
		bars[i] = gochart.Value{Label: fmt.Sprintf("%.3g", lo), Value: float64(c)}
	}
	return bars
}
