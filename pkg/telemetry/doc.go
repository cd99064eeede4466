// Package telemetry groups the observability packages of the validator.
//
// # Components
//
//   - logging: structured slog logging with run, row and column context
//   - metrics: Prometheus metrics for runs, verdicts, lookups and reloads
//   - health: liveness and readiness checks for the HTTP API
//
// # Usage
//
//	cfg := config.GetConfig()
//
//	logger, err := logging.New(logging.Config{
//		Level:  cfg.Telemetry.Logging.Level,
//		Format: cfg.Telemetry.Logging.Format,
//	})
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	pipeline, err := validation.NewPipeline(validation.PipelineConfig{
//		Observer: collector,
//		Logger:   logger.Slog(),
//		...
//	})
//
//	checker := health.New(0)
//	checker.RegisterCheck("vocabulary", health.VocabularyCheck(store))
//
// Metrics are only recorded where a collector is wired; the validate
// command runs without one.
package telemetry
