// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// This package adapts the generic metrics.Backend interface to Prometheus by:
//
//   - Using client_golang counter and summary collectors.
//   - Mapping the common run labels (job, step, status) onto Prometheus labels.
//   - Pushing collected metrics to a Prometheus Pushgateway instance instead of
//     exposing an HTTP scrape endpoint, since a generation run is a batch job
//     that exits before any scraper would find it.
//
// The package intentionally contains all Prometheus-specific dependencies so
// that the rest of the project remains decoupled from Prometheus and can swap
// to alternative backends (e.g. Datadog, StatsD) without changes to the
// generation engine.
package prompush

import (
	"fmt"

	"synthgen/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091
	jobName    string // Pushgateway "job" group, usually the run ID
	reg        *prometheus.Registry

	// Step-level metrics
	stepCounter  *prometheus.CounterVec // "synthgen_step_total"
	stepDuration *prometheus.SummaryVec // "synthgen_step_duration_seconds"

	// Dataset-level metrics
	cellCounter   *prometheus.CounterVec // "synthgen_cells_total"
	columnCounter *prometheus.CounterVec // "synthgen_columns_total"
	rowsCounter   prometheus.Counter     // "synthgen_rows_written_total"
}

// NewBackend constructs a Prometheus Pushgateway backend.
// jobName: the Pushgateway "job" grouping key (often the per-run identifier).
// gatewayURL: base URL of the Pushgateway server.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if gatewayURL == "" {
		return nil, fmt.Errorf("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = "synthgen"
	}

	reg := prometheus.NewRegistry()

	// job is the Pushgateway grouping key, so the collectors only carry the
	// finer-grained labels.
	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthgen_step_total",
			Help: "Total number of run step executions, partitioned by step and status.",
		},
		[]string{"step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "synthgen_step_duration_seconds",
			Help:       "Duration of run steps in seconds, partitioned by step and status.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"step", "status"},
	)

	// CELL metrics: kind (valid, missing, contaminated, shortfall).
	cellCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthgen_cells_total",
			Help: "Generated cell counts per kind (valid, missing, contaminated, etc.).",
		},
		[]string{"kind"},
	)

	// COLUMN metrics: outcome (built, skipped-exists, skipped-derived, ...).
	columnCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "synthgen_columns_total",
			Help: "Column build outcomes (built, skipped-exists, skipped-derived, etc.).",
		},
		[]string{"outcome"},
	)

	// ROW metrics: simple counter per job (job is the grouping label).
	rowsCounter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "synthgen_rows_written_total",
			Help: "Total number of dataset rows written to the sink for this run.",
		},
	)

	if err := reg.Register(stepCounter); err != nil {
		return nil, fmt.Errorf("prompush: register step counter: %w", err)
	}
	if err := reg.Register(stepDuration); err != nil {
		return nil, fmt.Errorf("prompush: register step summary: %w", err)
	}
	if err := reg.Register(cellCounter); err != nil {
		return nil, fmt.Errorf("prompush: register cell counter: %w", err)
	}
	if err := reg.Register(columnCounter); err != nil {
		return nil, fmt.Errorf("prompush: register column counter: %w", err)
	}
	if err := reg.Register(rowsCounter); err != nil {
		return nil, fmt.Errorf("prompush: register rows counter: %w", err)
	}

	return &Backend{
		gatewayURL:    gatewayURL,
		jobName:       jobName,
		reg:           reg,
		stepCounter:   stepCounter,
		stepDuration:  stepDuration,
		cellCounter:   cellCounter,
		columnCounter: columnCounter,
		rowsCounter:   rowsCounter,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case "synthgen_step_total":
		if b.stepCounter == nil {
			return
		}
		step := labels["step"]
		status := labels["status"]
		b.stepCounter.WithLabelValues(step, status).Add(delta)

	case "synthgen_cells_total":
		if b.cellCounter == nil {
			return
		}
		kind := labels["kind"]
		b.cellCounter.WithLabelValues(kind).Add(delta)

	case "synthgen_columns_total":
		if b.columnCounter == nil {
			return
		}
		outcome := labels["outcome"]
		b.columnCounter.WithLabelValues(outcome).Add(delta)

	case "synthgen_rows_written_total":
		if b.rowsCounter == nil {
			return
		}
		b.rowsCounter.Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name != "synthgen_step_duration_seconds" || b.stepDuration == nil {
		return
	}
	step := labels["step"]
	status := labels["status"]
	b.stepDuration.WithLabelValues(step, status).Observe(value)
}

// Flush pushes the current registry to the Pushgateway.
func (b *Backend) Flush() error {
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}
