package main

import (
	"covidstats/internal/config"
	"covidstats/internal/metrics"
	"covidstats/internal/metrics/datadog"
	"covidstats/internal/metrics/prompush"

	"github.com/rs/zerolog/log"
)

// setupMetrics installs the configured backend and returns the function that
// flushes it. Backends that fail to initialize leave the no-op backend in
// place.
func setupMetrics(p config.Pipeline) func() {
	var (
		b   metrics.Backend
		err error
	)
	switch p.Metrics.Backend {
	case "pushgateway":
		b, err = prompush.NewBackend(p.Job, p.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       p.Metrics.DatadogAddr,
			Namespace:  "covidstats.",
			GlobalTags: []string{"job:" + p.Job},
		})
	case "", "none":
		log.Debug().Msg("metrics: disabled")
		return func() {}
	default:
		log.Warn().Str("backend", p.Metrics.Backend).Msg("metrics: unknown backend; metrics disabled")
		return func() {}
	}
	if err != nil {
		log.Warn().Err(err).Str("backend", p.Metrics.Backend).Msg("metrics: init failed; using nop")
		return func() {}
	}

	log.Info().Str("backend", p.Metrics.Backend).Str("job", p.Job).Msg("metrics: enabled")
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn().Err(err).Msg("metrics: flush error")
		}
	}
}
