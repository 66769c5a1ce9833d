// Package metrics records operational metrics for report evaluation.
//
// Callers depend only on the Backend interface; concrete systems live in
// subpackages (prompush, datadog). The global backend defaults to a no-op, so
// recording is always safe even when nothing is configured.
package metrics

import "time"

// Metric names emitted by the helpers below. Backends switch on these.
const (
	StepTotal           = "covidstats_step_total"
	StepDurationSeconds = "covidstats_step_duration_seconds"
	RecordsTotal        = "covidstats_records_total"
	ReportsTotal        = "covidstats_reports_total"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

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

func status(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// RecordStep counts one execution of a pipeline stage and observes its
// duration. Stages are "read", "parse", "normalize", "merge", "query".
func RecordStep(job, step string, err error, d time.Duration) {
	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status(err),
	}
	backend.IncCounter(StepTotal, 1, lbls)
	backend.ObserveHistogram(StepDurationSeconds, d.Seconds(), lbls)
}

// RecordRow adds delta to the record counter for kind. Kinds used by the
// pipeline:
//   - "parsed"  data rows out of the CSV parser
//   - "skipped" lines the parser could not split
//   - "records" merged country records
//   - "dropped" records rejected by a query's requirements
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordReport counts one evaluated report.
func RecordReport(job string, err error) {
	backend.IncCounter(ReportsTotal, 1, Labels{
		"job":    job,
		"status": status(err),
	})
}
