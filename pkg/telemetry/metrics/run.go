package metrics

import (
	"time"

	"cmmc/validator/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// RunMetrics tracks validation runs.
//
// Metrics:
//   - cmmc_validator_runs_total: runs by outcome
//   - cmmc_validator_run_duration_seconds: run duration histogram
//   - cmmc_validator_rows_total: rows validated
//   - cmmc_validator_verdicts_total: cell verdicts by output column and kind
type RunMetrics struct {
	runsTotal     *prometheus.CounterVec
	runDuration   prometheus.Histogram
	rowsTotal     prometheus.Counter
	verdictsTotal *prometheus.CounterVec
}

// NewRunMetrics creates and registers run metrics with the provided registry.
func NewRunMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *RunMetrics {
	rm := &RunMetrics{
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "runs_total",
				Help:      "Total number of validation runs by outcome",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "run_duration_seconds",
				Help:      "Duration of validation runs in seconds",
				Buckets:   cfg.RunDurationBuckets,
			},
		),

		rowsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "rows_total",
				Help:      "Total number of rows validated",
			},
		),

		verdictsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "verdicts_total",
				Help:      "Cell verdicts by output column and kind",
			},
			[]string{"column", "kind"},
		),
	}

	registry.MustRegister(rm.runsTotal, rm.runDuration, rm.rowsTotal, rm.verdictsTotal)

	return rm
}

// RecordRun records a finished run. Rows are only counted for completed runs.
func (rm *RunMetrics) RecordRun(outcome string, rows int, duration time.Duration) {
	rm.runsTotal.WithLabelValues(outcome).Inc()
	rm.runDuration.Observe(duration.Seconds())
	if outcome == "completed" {
		rm.rowsTotal.Add(float64(rows))
	}
}

// RecordVerdict counts one verdict.
func (rm *RunMetrics) RecordVerdict(column, kind string) {
	rm.verdictsTotal.WithLabelValues(column, kind).Inc()
}
