// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// A batch pipeline has no long-lived process for Prometheus to scrape, so
// metrics are collected in a private registry and pushed to a Pushgateway
// when the run finishes. All Prometheus-specific dependencies stay inside
// this package; the rest of the project only sees metrics.Backend.
package prompush

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"mitoref/internal/metrics"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	runID      string
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // mitoref_step_total
	stepDuration *prometheus.SummaryVec // mitoref_step_duration_seconds

	rowCounter   *prometheus.CounterVec // mitoref_rows_total
	batchCounter prometheus.Counter     // mitoref_batches_total
}

// NewBackend constructs a Pushgateway backend. jobName becomes the
// Pushgateway "job" grouping key; runID, if non-empty, is added as a "run"
// grouping label so concurrent runs of the same job do not overwrite each
// other.
func NewBackend(jobName, gatewayURL, runID string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "mitoref"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mitoref_step_total",
			Help: "Total pipeline stage executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "mitoref_step_duration_seconds",
			Help:       "Duration of pipeline stages in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)
	rowCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mitoref_rows_total",
			Help: "Row-level counts per kind (parsed, annotated, filtered_out, written).",
		},
		[]string{"kind"},
	)
	batchCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mitoref_batches_total",
			Help: "Total number of write batches flushed for this run.",
		},
	)

	for _, c := range []prometheus.Collector{stepCounter, stepDuration, rowCounter, batchCounter} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}

	return &Backend{
		gatewayURL:   gatewayURL,
		jobName:      jobName,
		runID:        runID,
		reg:          reg,
		stepCounter:  stepCounter,
		stepDuration: stepDuration,
		rowCounter:   rowCounter,
		batchCounter: batchCounter,
	}, nil
}

// IncCounter routes known counter names onto their collectors; unknown names
// are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "mitoref_step_total":
		b.stepCounter.WithLabelValues(labels["step"], labels["status"]).Add(delta)
	case "mitoref_rows_total":
		b.rowCounter.WithLabelValues(labels["kind"]).Add(delta)
	case "mitoref_batches_total":
		b.batchCounter.Add(delta)
	}
}

// ObserveDuration routes stage durations onto the summary collector.
func (b *Backend) ObserveDuration(name string, value float64, labels metrics.Labels) {
	if name != "mitoref_step_duration_seconds" {
		return
	}
	b.stepDuration.WithLabelValues(labels["step"], labels["status"]).Observe(value)
}

// Flush pushes the registry to the Pushgateway.
func (b *Backend) Flush() error {
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	if b.runID != "" {
		p = p.Grouping("run", b.runID)
	}
	return p.Push()
}
