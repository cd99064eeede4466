package metrics

import (
	"cmmc/validator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// VocabularyMetrics tracks controlled vocabulary loads.
//
// Metrics:
//   - cmmc_validator_vocabulary_reloads_total: load attempts by outcome
//   - cmmc_validator_vocabulary_values: allowed values per controlled field
//   - cmmc_validator_vocabulary_last_reload_timestamp_seconds: time of the last successful load
type VocabularyMetrics struct {
	reloadsTotal *prometheus.CounterVec
	values       *prometheus.GaugeVec
	lastReload   prometheus.Gauge
}

// NewVocabularyMetrics creates and registers vocabulary metrics with the provided registry.
func NewVocabularyMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *VocabularyMetrics {
	vm := &VocabularyMetrics{
		reloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "vocabulary_reloads_total",
				Help:      "Total number of vocabulary load attempts by outcome",
			},
			[]string{"outcome"},
		),

		values: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "vocabulary_values",
				Help:      "Number of allowed values per controlled field",
			},
			[]string{"field"},
		),

		lastReload: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "vocabulary_last_reload_timestamp_seconds",
				Help:      "Unix time of the last successful vocabulary load",
			},
		),
	}

	registry.MustRegister(vm.reloadsTotal, vm.values, vm.lastReload)

	return vm
}

// RecordReload records a load attempt.
func (vm *VocabularyMetrics) RecordReload(success bool, sizes map[string]int) {
	if !success {
		vm.reloadsTotal.WithLabelValues("failure").Inc()
		return
	}
	vm.reloadsTotal.WithLabelValues("success").Inc()
	for field, n := range sizes {
		vm.values.WithLabelValues(field).Set(float64(n))
	}
	vm.lastReload.SetToCurrentTime()
}
