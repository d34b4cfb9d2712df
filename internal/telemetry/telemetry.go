// Package telemetry exposes the dashboard's operational counters.
package telemetry

import (
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Telemetry tracks ingestion outcomes and chart builds.
type Telemetry struct {
	logger         *log.Logger
	ingestTotal    *prometheus.CounterVec
	ingestDuration prometheus.Histogram
	chartBuilds    *prometheus.CounterVec
}

// NewTelemetry registers the dashboard metrics on reg. Pass
// prometheus.DefaultRegisterer in the server, a fresh registry in
// tests.
func NewTelemetry(reg prometheus.Registerer) *Telemetry {
	t := &Telemetry{
		logger: log.New(log.Writer(), "[TELEMETRY] ", log.LstdFlags),
		ingestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vizboard_ingest_total",
			Help: "Ingestion attempts by outcome kind.",
		}, []string{"source", "outcome"}),
		ingestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vizboard_ingest_duration_seconds",
			Help:    "Wall time of ingestion attempts.",
			Buckets: prometheus.DefBuckets,
		}),
		chartBuilds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vizboard_chart_builds_total",
			Help: "Chart specs built by chart type (empty included).",
		}, []string{"type"}),
	}
	reg.MustRegister(t.ingestTotal, t.ingestDuration, t.chartBuilds)
	return t
}

// ObserveIngest records one ingestion attempt. outcome is "success" or
// the error kind; source is "upload" or "url".
func (t *Telemetry) ObserveIngest(source, outcome string, dur time.Duration) {
	t.ingestTotal.WithLabelValues(source, outcome).Inc()
	t.ingestDuration.Observe(dur.Seconds())
	if outcome != "success" {
		t.logger.Printf("ingest %s failed: %s (%s)", source, outcome, dur.Round(time.Millisecond))
	}
}

// CountChart records one chart build by type tag.
func (t *Telemetry) CountChart(typ string) {
	if typ == "" {
		typ = "none"
	}
	t.chartBuilds.WithLabelValues(typ).Inc()
}
