// Package metrics provides Prometheus metrics collection for the validator.
//
// # Metrics Categories
//
//   - Run metrics: runs by outcome, run duration, rows, verdicts per column and kind
//   - Lookup metrics: identifier and structure service requests, latency, retries, health
//   - Vocabulary metrics: reload outcomes and allowed value counts
//   - HTTP metrics: API requests by route and status
//
// # Usage
//
// A Collector satisfies validation.Observer, resolver.Observer and
// vocabulary.Observer:
//
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	identifier, _ := resolver.New(idCfg, resolver.WithObserver(collector))
//	store := vocabulary.NewStore(loader, source, collector, logger)
//	pipeline, _ := validation.NewPipeline(validation.PipelineConfig{Observer: collector, ...})
//
//	http.Handle(cfg.Telemetry.Metrics.Path, collector.Handler())
package metrics
