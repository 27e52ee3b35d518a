// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the pipeline.
//
// The package is intentionally minimal and opinionated:
//
//   - It exposes a narrow interface (Backend) focused on counters and timing
//     data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - Concrete metric systems stay isolated in subpackages; the rest of the
//     codebase depends only on this interface.
//
// The primary use case is instrumentation of the pipeline stages (generate,
// ingest, transform, quality, warehouse) without coupling the core logic to a
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

// RecordStage is a convenience for the common pattern:
// measure latency + success/failure per pipeline stage.
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}

	backend.IncCounter("pipeline_stage_total", 1, lbls)
	backend.ObserveHistogram("pipeline_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a record-level counter for the given job and kind.
//
// Typical kinds mirror the per-stage row counts, e.g.:
//   - "generated_products"
//   - "generated_sales"
//   - "ingested"
//   - "cleaned_removed"
//   - "enriched"
//   - "loaded"
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("pipeline_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordCheck counts one quality check verdict for the given job.
func RecordCheck(job, check string, passed bool) {
	status := "passed"
	if !passed {
		status = "failed"
	}
	backend.IncCounter("pipeline_quality_checks_total", 1, Labels{
		"job":    job,
		"check":  check,
		"status": status,
	})
}
