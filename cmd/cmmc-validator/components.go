package main

import (
	"fmt"

	"cmmc/validator/pkg/config"
	"cmmc/validator/pkg/resolver"
	"cmmc/validator/pkg/retry"
	"cmmc/validator/pkg/telemetry/logging"
	"cmmc/validator/pkg/telemetry/metrics"
	"cmmc/validator/pkg/validation"
	"cmmc/validator/pkg/vocabulary"
)

// components are the parts every command assembles from the configuration.
type components struct {
	identifier *resolver.HTTPResolver
	structure  *resolver.HTTPResolver
	store      *vocabulary.Store
	pipeline   *validation.Pipeline
}

// componentOptions adjust what buildComponents assembles.
type componentOptions struct {
	// source overrides the configured vocabulary source when set.
	source string

	// collector observes lookups, runs and reloads. Nil observes nothing.
	collector *metrics.Collector

	// progress is handed to the pipeline.
	progress func(done, total int)
}

// buildComponents wires resolvers, the vocabulary store and the pipeline.
func buildComponents(cfg *config.Config, opts componentOptions, logger *logging.Logger) (*components, error) {
	collector := opts.collector
	var (
		resolverOpts = []resolver.Option{resolver.WithLogger(logger.Slog())}
		vocabObs     vocabulary.Observer
		runObs       validation.Observer
	)
	if collector != nil {
		resolverOpts = append(resolverOpts, resolver.WithObserver(collector))
		vocabObs = collector
		runObs = collector
	}

	identifier, err := resolver.New(
		resolverConfig(resolver.IdentifierConfig(), cfg.Services.Identifier, cfg.Services.UserAgent),
		resolverOpts...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create identifier resolver: %w", err)
	}
	structure, err := resolver.New(
		resolverConfig(resolver.StructureConfig(), cfg.Services.Structure, cfg.Services.UserAgent),
		resolverOpts...,
	)
	if err != nil {
		_ = identifier.Close()
		return nil, fmt.Errorf("failed to create structure resolver: %w", err)
	}

	source := opts.source
	if source == "" {
		source = cfg.Vocabulary.Source
	}
	loader := vocabulary.NewLoader(vocabulary.LoaderConfig{
		Strict:   cfg.Vocabulary.Strict,
		Timeout:  cfg.Vocabulary.Timeout,
		MaxBytes: cfg.Vocabulary.MaxBytes,
	}, nil, logger.Slog())
	store := vocabulary.NewStore(loader, source, vocabObs, logger.Slog())

	pipeline, err := validation.NewPipeline(validation.PipelineConfig{
		Identifier:         identifier,
		Structure:          structure,
		IdentifierPolicy:   retryPolicy(cfg.Services.Identifier),
		StructurePolicy:    retryPolicy(cfg.Services.Structure),
		Concurrency:        cfg.Pipeline.Concurrency,
		CacheSize:          max(cfg.Services.Identifier.CacheSize, 0),
		StructureCacheSize: cfg.Services.Structure.CacheSize,
		Observer:           runObs,
		Logger:             logger.Slog(),
		Progress:           opts.progress,
	})
	if err != nil {
		_ = identifier.Close()
		_ = structure.Close()
		return nil, fmt.Errorf("failed to create validation pipeline: %w", err)
	}

	return &components{
		identifier: identifier,
		structure:  structure,
		store:      store,
		pipeline:   pipeline,
	}, nil
}

// Close releases the resolvers.
func (c *components) Close() {
	_ = c.identifier.Close()
	_ = c.structure.Close()
}

func resolverConfig(base resolver.Config, svc config.ServiceConfig, userAgent string) resolver.Config {
	if svc.BaseURL != "" {
		base.BaseURL = svc.BaseURL
	}
	if svc.Timeout > 0 {
		base.Timeout = svc.Timeout
	}
	if svc.MaxInFlight > 0 {
		base.MaxInFlight = svc.MaxInFlight
	}
	base.RateLimit = svc.RateLimit
	base.RateBurst = svc.RateBurst
	base.HealthCheckInterval = svc.HealthCheckInterval
	base.UserAgent = userAgent
	return base
}

func retryPolicy(svc config.ServiceConfig) retry.Policy {
	return retry.Policy{
		MaxAttempts: max(svc.MaxAttempts, 1),
		Delay:       svc.RetryDelay,
		Multiplier:  svc.BackoffMultiplier,
		MaxDelay:    svc.MaxRetryDelay,
	}
}
