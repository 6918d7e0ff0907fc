// Package metrics collects per-run query metrics in a private Prometheus
// registry. A CLI run has no scrape endpoint, so the registry is written to
// a node_exporter textfile when one is configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage names.
const (
	StageFetchInvitations = "fetch_invitations"
	StageFetchFamilies    = "fetch_families"
	StageRetrieve         = "retrieve"
	StageAssemble         = "assemble"
	StageInvoke           = "invoke"
)

// Run outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeNoData   = "no_data"
	OutcomeError    = "error"
)

// Record kinds.
const (
	KindInvitation = "invitation"
	KindFamily     = "family"
)

// Metrics holds the query collectors.
type Metrics struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	runsTotal     *prometheus.CounterVec
	records       *prometheus.GaugeVec
	documents     prometheus.Gauge
	lastRun       prometheus.Gauge
}

// New creates the collectors under namespace and registers them.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of each query stage in seconds",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"stage", "status"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Query runs by outcome",
			},
			[]string{"outcome"},
		),
		records: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "records_fetched",
				Help:      "Records matched for the customer in the last run",
			},
			[]string{"kind"},
		),
		documents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "documents_retrieved",
			Help:      "Documents returned by the similarity search in the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}

	m.registry.MustRegister(m.stageDuration, m.runsTotal, m.records, m.documents, m.lastRun)
	return m
}

// ObserveStage records how long stage took and whether it failed.
func (m *Metrics) ObserveStage(stage string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.stageDuration.WithLabelValues(stage, status).Observe(d.Seconds())
}

// SetRecords records how many records of kind matched.
func (m *Metrics) SetRecords(kind string, n int) {
	m.records.WithLabelValues(kind).Set(float64(n))
}

// SetDocuments records how many documents the search returned.
func (m *Metrics) SetDocuments(n int) {
	m.documents.Set(float64(n))
}

// RecordOutcome counts a finished run.
func (m *Metrics) RecordOutcome(outcome string) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.lastRun.SetToCurrentTime()
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the registry to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
