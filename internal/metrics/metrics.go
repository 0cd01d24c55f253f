// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the reference-dataset pipeline.
//
// The package keeps the rest of the codebase decoupled from any concrete
// metrics system:
//
//   - Backend is a narrow interface covering counters and duration
//     observations.
//   - A global, pluggable backend defaults to a no-op implementation, so
//     metric calls are always safe even when nothing is configured.
//   - Concrete systems (Prometheus Pushgateway) live in subpackages and are
//     installed with SetBackend, mirroring the storage factory pattern.
//
// The pipeline stages (fetch, extract, normalize, parse, annotate, filter,
// write) call RecordStep and RecordRows; a batch pipeline flushes once at the
// end with Flush.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes accumulated metrics if the backend needs it.
	Flush() error
}

// nopBackend is used by default so metrics stay optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)      {}
func (nopBackend) ObserveDuration(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                              { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the current one.
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

// RecordStep records one pipeline stage execution: its latency plus a
// success/failure counter.
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

	backend.IncCounter("mitoref_step_total", 1, lbls)
	backend.ObserveDuration("mitoref_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds:
//   - "parsed"
//   - "annotated"
//   - "filtered_out"
//   - "written"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("mitoref_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the write-batch counter for the given job.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("mitoref_batches_total", float64(delta), Labels{
		"job": job,
	})
}
