// Package prompush implements a Prometheus backend for the metrics package.
//
// Collectors live in a private registry that is both pushed to a Pushgateway
// on Flush (batch runs of the CLI) and exposed through Handler for scraping
// (the long-running API server). Either side is optional: without a gateway
// URL Flush is a no-op.
package prompush

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"

	"paketetl/internal/metrics"
)

// Backend is a Prometheus metrics backend.
type Backend struct {
	gatewayURL string // e.g. http://pushgateway:9091; empty disables push
	jobName    string // Pushgateway "job" group
	reg        *prometheus.Registry

	stepCounter  *prometheus.CounterVec // paket_step_total
	stepDuration *prometheus.SummaryVec // paket_step_duration_seconds

	recordCounter *prometheus.CounterVec // paket_records_total
	batchCounter  *prometheus.CounterVec // paket_batches_total
	cacheCounter  *prometheus.CounterVec // paket_cache_requests_total

	requestCounter  *prometheus.CounterVec   // paket_http_requests_total
	requestDuration *prometheus.HistogramVec // paket_http_request_duration_seconds
}

// NewBackend constructs a Prometheus backend. jobName is the Pushgateway
// grouping key; gatewayURL may be empty for scrape-only use.
func NewBackend(jobName, gatewayURL string) (*Backend, error) {
	if jobName == "" {
		jobName = "paketetl"
	}

	reg := prometheus.NewRegistry()

	stepCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.StepTotal,
			Help: "Pipeline step executions, partitioned by module, step and status.",
		},
		[]string{"module", "step", "status"},
	)
	stepDuration := prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       metrics.StepDuration,
			Help:       "Duration of pipeline steps in seconds.",
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{"module", "step", "status"},
	)
	recordCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RecordsTotal,
			Help: "Catalog records per module and kind (in, filtered, deduped, out).",
		},
		[]string{"module", "kind"},
	)
	batchCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.BatchesTotal,
			Help: "Chunks processed by the batched dispatch strategy.",
		},
		[]string{"module"},
	)
	cacheCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.CacheTotal,
			Help: "Memo cache lookups per module, cache and result (hit, miss).",
		},
		[]string{"module", "cache", "result"},
	)
	requestCounter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: metrics.RequestsTotal,
			Help: "HTTP requests served, partitioned by route and status code.",
		},
		[]string{"route", "code"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    metrics.RequestDuration,
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "code"},
	)

	for name, c := range map[string]prometheus.Collector{
		"step counter":     stepCounter,
		"step summary":     stepDuration,
		"record counter":   recordCounter,
		"batch counter":    batchCounter,
		"cache counter":    cacheCounter,
		"request counter":  requestCounter,
		"request duration": requestDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register %s: %w", name, err)
		}
	}

	return &Backend{
		gatewayURL:      gatewayURL,
		jobName:         jobName,
		reg:             reg,
		stepCounter:     stepCounter,
		stepDuration:    stepDuration,
		recordCounter:   recordCounter,
		batchCounter:    batchCounter,
		cacheCounter:    cacheCounter,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}, nil
}

func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch name {
	case metrics.StepTotal:
		if b.stepCounter == nil {
			return
		}
		b.stepCounter.WithLabelValues(labels["job"], labels["step"], labels["status"]).Add(delta)

	case metrics.RecordsTotal:
		if b.recordCounter == nil {
			return
		}
		b.recordCounter.WithLabelValues(labels["job"], labels["kind"]).Add(delta)

	case metrics.BatchesTotal:
		if b.batchCounter == nil {
			return
		}
		b.batchCounter.WithLabelValues(labels["job"]).Add(delta)

	case metrics.CacheTotal:
		if b.cacheCounter == nil {
			return
		}
		b.cacheCounter.WithLabelValues(labels["job"], labels["cache"], labels["result"]).Add(delta)

	case metrics.RequestsTotal:
		if b.requestCounter == nil {
			return
		}
		b.requestCounter.WithLabelValues(labels["route"], labels["code"]).Add(delta)

	default:
		// unknown metric name: ignore
	}
}

func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	switch name {
	case metrics.StepDuration:
		if b.stepDuration == nil {
			return
		}
		b.stepDuration.WithLabelValues(labels["job"], labels["step"], labels["status"]).Observe(value)
	case metrics.RequestDuration:
		if b.requestDuration == nil {
			return
		}
		b.requestDuration.WithLabelValues(labels["route"], labels["code"]).Observe(value)
	}
}

// Flush pushes the current registry to the Pushgateway, if one is configured.
func (b *Backend) Flush() error {
	if b.gatewayURL == "" {
		return nil
	}
	return push.New(b.gatewayURL, b.jobName).
		Gatherer(b.reg).
		Push()
}

// Handler serves the registry in the Prometheus exposition format.
func (b *Backend) Handler() http.Handler {
	return promhttp.HandlerFor(b.reg, promhttp.HandlerOpts{Registry: b.reg})
}
