package metrics

import (
	"time"

	"cmmc/validator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// LookupMetrics tracks requests to the identifier and structure services.
//
// Metrics:
//   - cmmc_validator_lookups_total: lookups by service and outcome
//   - cmmc_validator_lookup_duration_seconds: lookup latency histogram
//   - cmmc_validator_lookup_retries_total: retries by service
//   - cmmc_validator_service_health: 1 healthy, 0 unhealthy
type LookupMetrics struct {
	lookupsTotal   *prometheus.CounterVec
	lookupDuration *prometheus.HistogramVec
	retriesTotal   *prometheus.CounterVec
	serviceHealth  *prometheus.GaugeVec
}

// NewLookupMetrics creates and registers lookup metrics with the provided registry.
func NewLookupMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *LookupMetrics {
	lm := &LookupMetrics{
		lookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lookups_total",
				Help:      "Total number of lookup requests by service and outcome",
			},
			[]string{"service", "outcome"},
		),

		lookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lookup_duration_seconds",
				Help:      "Latency of lookup requests in seconds",
				Buckets:   cfg.LookupDurationBuckets,
			},
			[]string{"service"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "lookup_retries_total",
				Help:      "Total number of lookup retries by service",
			},
			[]string{"service"},
		),

		serviceHealth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "service_health",
				Help:      "Lookup service health status (1=healthy, 0=unhealthy)",
			},
			[]string{"service"},
		),
	}

	registry.MustRegister(lm.lookupsTotal, lm.lookupDuration, lm.retriesTotal, lm.serviceHealth)

	return lm
}

// RecordLookup records one request.
func (lm *LookupMetrics) RecordLookup(service, outcome string, latency time.Duration) {
	lm.lookupsTotal.WithLabelValues(service, outcome).Inc()
	lm.lookupDuration.WithLabelValues(service).Observe(latency.Seconds())
}

// RecordRetry counts a retry.
func (lm *LookupMetrics) RecordRetry(service string) {
	lm.retriesTotal.WithLabelValues(service).Inc()
}

// UpdateHealth sets the health gauge.
func (lm *LookupMetrics) UpdateHealth(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	lm.serviceHealth.WithLabelValues(service).Set(value)
}
