package metrics

import (
	"context"
	"errors"
	"sync"
	"time"

	"cmmc/validator/pkg/config"
	"cmmc/validator/pkg/validation"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns every Prometheus metric of the validator. It implements
// the observer interfaces of the validation, resolver and vocabulary
// packages so a single instance can be handed to each of them.
//
// All Observe methods are no-ops when metrics are disabled.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	runMetrics        *RunMetrics
	lookupMetrics     *LookupMetrics
	vocabularyMetrics *VocabularyMetrics
	httpMetrics       *HTTPMetrics

	// Output columns come from configuration, so the column label is bounded.
	cardinalityLimiter *CardinalityLimiter
}

// NewCollector creates a collector and registers its metrics with registry.
// A nil registry gets a fresh one. Empty namespace, subsystem and buckets
// are filled from the config package defaults.
//
// Example:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	pipeline, _ := validation.NewPipeline(validation.PipelineConfig{Observer: collector, ...})
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = config.DefaultMetricsNamespace
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = config.DefaultMetricsSubsystem
	}
	if len(cfg.LookupDurationBuckets) == 0 {
		cfg.LookupDurationBuckets = append([]float64(nil), config.DefaultLookupDurationBuckets...)
	}
	if len(cfg.RunDurationBuckets) == 0 {
		cfg.RunDurationBuckets = append([]float64(nil), config.DefaultRunDurationBuckets...)
	}

	return &Collector{
		config:             cfg,
		registry:           registry,
		runMetrics:         NewRunMetrics(cfg, registry),
		lookupMetrics:      NewLookupMetrics(cfg, registry),
		vocabularyMetrics:  NewVocabularyMetrics(cfg, registry),
		httpMetrics:        NewHTTPMetrics(cfg, registry),
		cardinalityLimiter: NewCardinalityLimiter(64),
	}
}

// ObserveVerdict counts one cell verdict.
func (c *Collector) ObserveVerdict(column string, kind validation.Kind) {
	if !c.config.IsEnabled() {
		return
	}
	if !c.cardinalityLimiter.Allow(column) {
		column = "other"
	}
	c.runMetrics.RecordVerdict(column, kind.String())
}

// ObserveRetry counts one retry against a lookup service.
func (c *Collector) ObserveRetry(service string, attempt int) {
	if !c.config.IsEnabled() {
		return
	}
	c.lookupMetrics.RecordRetry(service)
}

// ObserveRun records a finished run.
func (c *Collector) ObserveRun(rows int, duration time.Duration, err error) {
	if !c.config.IsEnabled() {
		return
	}
	c.runMetrics.RecordRun(runOutcome(err), rows, duration)
}

// ObserveLookup records one request to a lookup service.
func (c *Collector) ObserveLookup(service string, statusCode int, err error, latency time.Duration) {
	if !c.config.IsEnabled() {
		return
	}
	c.lookupMetrics.RecordLookup(service, lookupOutcome(statusCode, err), latency)
}

// ObserveHealth sets the health gauge of a lookup service.
func (c *Collector) ObserveHealth(service string, healthy bool) {
	if !c.config.IsEnabled() {
		return
	}
	c.lookupMetrics.UpdateHealth(service, healthy)
}

// ObserveVocabularyReload records a vocabulary load attempt. Sizes are only
// updated on success.
func (c *Collector) ObserveVocabularyReload(source string, sizes map[string]int, err error) {
	if !c.config.IsEnabled() {
		return
	}
	c.vocabularyMetrics.RecordReload(err == nil, sizes)
}

// RecordHTTPRequest records one API request.
func (c *Collector) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if !c.config.IsEnabled() {
		return
	}
	c.httpMetrics.RecordRequest(method, route, status, duration)
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func runOutcome(err error) string {
	var missing *validation.MissingColumnsError
	switch {
	case err == nil:
		return "completed"
	case errors.As(err, &missing):
		return "schema_error"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

func lookupOutcome(statusCode int, err error) string {
	switch {
	case statusCode == 200:
		return "success"
	case statusCode >= 500:
		return "server_error"
	case statusCode > 0:
		return "rejected"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "transport_error"
	}
}

// CardinalityLimiter prevents metric cardinality explosion by limiting
// the number of unique label values.
type CardinalityLimiter struct {
	maxCardinality int
	current        map[string]struct{}
	mu             sync.RWMutex
}

// NewCardinalityLimiter creates a limiter admitting at most maxCardinality values.
func NewCardinalityLimiter(maxCardinality int) *CardinalityLimiter {
	return &CardinalityLimiter{
		maxCardinality: maxCardinality,
		current:        make(map[string]struct{}),
	}
}

// Allow reports whether value is already known or still fits under the limit.
func (cl *CardinalityLimiter) Allow(value string) bool {
	cl.mu.RLock()
	_, exists := cl.current[value]
	cl.mu.RUnlock()
	if exists {
		return true
	}

	cl.mu.Lock()
	defer cl.mu.Unlock()

	if _, exists := cl.current[value]; exists {
		return true
	}
	if len(cl.current) >= cl.maxCardinality {
		return false
	}
	cl.current[value] = struct{}{}
	return true
}

// Count returns the current cardinality.
func (cl *CardinalityLimiter) Count() int {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return len(cl.current)
}
