package main

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"paketetl/internal/config"
	"paketetl/internal/metrics"
	"paketetl/internal/metrics/datadog"
	"paketetl/internal/metrics/prompush"
)

// setupMetrics installs the configured backend. It returns the scrape
// handler (Prometheus only) and a func that flushes and releases the
// backend. Backend failures are logged and leave metrics disabled.
func setupMetrics(m config.Metrics, log zerolog.Logger) (http.Handler, func()) {
	nop := func() {}
	flush := func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush failed")
		}
	}

	switch kind := strings.ToLower(m.Backend); kind {
	case "prometheus", "pushgateway":
		job := m.Namespace
		if job == "" {
			job = "paketetl"
		}
		b, err := prompush.NewBackend(job, m.PushgatewayURL)
		if err != nil {
			log.Warn().Err(err).Msg("metrics: prometheus backend unavailable; using nop")
			return nil, nop
		}
		metrics.SetBackend(b)
		log.Debug().Str("backend", kind).Str("pushgateway", m.PushgatewayURL).Str("job", job).Msg("metrics enabled")
		return b.Handler(), flush

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{
			Addr:       m.DatadogAddr,
			Namespace:  m.Namespace,
			GlobalTags: m.Tags,
		})
		if err != nil {
			log.Warn().Err(err).Msg("metrics: datadog backend unavailable; using nop")
			return nil, nop
		}
		metrics.SetBackend(b)
		log.Debug().Str("backend", kind).Str("addr", m.DatadogAddr).Msg("metrics enabled")
		return nil, func() {
			flush()
			if err := b.Close(); err != nil {
				log.Warn().Err(err).Msg("metrics: datadog close failed")
			}
		}

	case "", "none":
		return nil, nop

	default:
		log.Warn().Str("backend", m.Backend).Msg("metrics: unknown backend; metrics disabled")
		return nil, nop
	}
}
