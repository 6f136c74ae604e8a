// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the paket pipeline and its HTTP front end.
//
// The package exposes a narrow interface (Backend) focused on counters and
// timing data, and a global pluggable backend that defaults to a no-op, so
// metrics are always safe to call even when nothing is configured. Concrete
// systems live in subpackages (prompush, datadog).
package metrics

import (
	"strconv"
	"sync"
	"time"
)

// Metric names shared by every backend.
const (
	StepTotal       = "paket_step_total"
	StepDuration    = "paket_step_duration_seconds"
	RecordsTotal    = "paket_records_total"
	BatchesTotal    = "paket_batches_total"
	CacheTotal      = "paket_cache_requests_total"
	RequestsTotal   = "paket_http_requests_total"
	RequestDuration = "paket_http_request_duration_seconds"
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

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one pipeline step
// ("clean", "format", "fetch") for a module.
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
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRecords increments a record-level counter for the given module.
// Kinds are "in", "filtered", "deduped" and "out".
func RecordRecords(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordBatches increments the chunk counter of the batched strategy.
func RecordBatches(job string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"job": job,
	})
}

// RecordCache adds the hits and misses of one run against a memo cache
// ("text" or "bonus").
func RecordCache(job, cache string, hits, misses uint64) {
	b := current()
	if hits > 0 {
		b.IncCounter(CacheTotal, float64(hits), Labels{"job": job, "cache": cache, "result": "hit"})
	}
	if misses > 0 {
		b.IncCounter(CacheTotal, float64(misses), Labels{"job": job, "cache": cache, "result": "miss"})
	}
}

// RecordRequest counts one served HTTP request and its latency.
func RecordRequest(route string, status int, d time.Duration) {
	lbls := Labels{"route": route, "code": strconv.Itoa(status)}
	b := current()
	b.IncCounter(RequestsTotal, 1, lbls)
	b.ObserveHistogram(RequestDuration, d.Seconds(), lbls)
}
