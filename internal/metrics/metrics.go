// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from dataset generation runs.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data (histograms).
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the sink abstraction pattern used elsewhere in the project
//     (e.g. sink.Writer), allowing the rest of the codebase to depend only on
//     this interface while keeping concrete metric systems isolated in
//     subpackages.
//
// The primary use case is instrumentation of the run stages (metadata intake,
// lint, dataset build, sink write) without coupling the generation engine to a
// specific metrics system such as Prometheus or Datadog.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
// It is intentionally generic so we can plug in Prometheus, Datadog, etc.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep is a convenience for the common pattern:
// measure latency + success/failure per run stage.
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("synthgen_step_total", 1, lbls)
	backend.ObserveHistogram("synthgen_step_duration_seconds", d.Seconds(), lbls)
}

// RecordCells increments a cell-level counter for the given job and kind.
//
// Typical kinds mirror the build result fields, e.g.:
//   - "valid"
//   - "missing"
//   - "contaminated"
//   - "shortfall"
func RecordCells(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("synthgen_cells_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordColumns increments a column-level counter for the given job and
// outcome ("built", "skipped-exists", "skipped-derived", ...).
func RecordColumns(job, outcome string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("synthgen_columns_total", float64(delta), Labels{
		"job":     job,
		"outcome": outcome,
	})
}

// RecordRows increments the count of dataset rows written to the sink.
func RecordRows(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("synthgen_rows_written_total", float64(delta), Labels{
		"job": job,
	})
}
