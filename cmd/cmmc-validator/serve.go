package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cmmc/validator/pkg/cli"
	"cmmc/validator/pkg/config"
	"cmmc/validator/pkg/server"
	"cmmc/validator/pkg/telemetry/health"
	"cmmc/validator/pkg/telemetry/logging"
	"cmmc/validator/pkg/telemetry/metrics"
	"cmmc/validator/pkg/vocabulary"
)

var serveFlags struct {
	listenAddress string
	vocabulary    string
	logLevel      string
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the validation HTTP API",
	Long: `Start the validation HTTP API.

The server accepts deposition tables on POST /v1/validate and answers with
the verdict summary or the annotated table. The vocabulary is loaded at
startup and can be reloaded when the file changes (vocabulary.watch) or
on a cron schedule (vocabulary.refresh_schedule).

Endpoints:
  POST /v1/validate       validate a table (?format=tsv for the annotated table)
  GET  /v1/vocabulary     current vocabulary and required columns
  GET  /health/live       liveness
  GET  /health/ready      readiness
  GET  /version           build information
  GET  /metrics           Prometheus metrics (telemetry.metrics.path)

Examples:
  # Start with defaults
  cmmc-validator serve

  # Start with a config file and override the listen address
  cmmc-validator serve --config validator.yaml --listen 0.0.0.0:8080`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.vocabulary, "vocabulary", "", "vocabulary file or URL (overrides vocabulary.source)")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if serveFlags.vocabulary != "" {
		cfg.Vocabulary.Source = serveFlags.vocabulary
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("config", err.Error())
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx := cli.SetupSignalHandler()
	srv, stop, err := newServer(ctx, cfg, logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Fprintf(out, "✓ Health endpoint: http://%s/health/ready\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.IsEnabled() {
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	fmt.Fprintln(out, "✓ Server stopped")
	return nil
}

// newServer assembles the server and its background jobs. The returned
// stop function releases everything newServer started.
func newServer(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*server.Server, func(), error) {
	var collector *metrics.Collector
	if cfg.Telemetry.Metrics.IsEnabled() {
		collector = metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
	}

	comps, err := buildComponents(cfg, componentOptions{collector: collector}, logger)
	if err != nil {
		return nil, nil, err
	}

	var stops []func()
	stop := func() {
		for i := len(stops) - 1; i >= 0; i-- {
			stops[i]()
		}
	}
	stops = append(stops, comps.Close)

	// A failed initial load leaves the server up but not ready; the watcher
	// or the scheduler can still bring the vocabulary in later.
	if err := comps.store.Reload(ctx); err != nil {
		logger.Warn("vocabulary not loaded at startup", "source", comps.store.Source(), "error", err)
	}

	if cfg.Vocabulary.Watch && !vocabulary.IsRemote(comps.store.Source()) {
		watcher, err := vocabulary.NewWatcher(comps.store.Source(), cfg.Vocabulary.DebounceInterval, logger.Slog())
		if err != nil {
			stop()
			return nil, nil, fmt.Errorf("failed to watch vocabulary: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx, func() error { return comps.store.Reload(ctx) }); err != nil {
				logger.Error("vocabulary watcher failed", "error", err)
			}
		}()
		stops = append(stops, func() { _ = watcher.Stop() })
	}

	if cfg.Vocabulary.RefreshSchedule != "" {
		scheduler := vocabulary.NewScheduler(comps.store, cfg.Vocabulary.RefreshSchedule, logger.Slog())
		if err := scheduler.Start(ctx); err != nil {
			stop()
			return nil, nil, err
		}
		if next := scheduler.NextRun(); next != nil {
			logger.Debug("vocabulary scheduler started", "next_refresh", next)
		}
		stops = append(stops, scheduler.Stop)
	}

	checker := health.New(0)
	checker.RegisterCheck("vocabulary", health.VocabularyCheck(comps.store))
	checker.RegisterOptionalCheck(comps.identifier.Name(), health.ServiceCheck(comps.identifier))
	checker.RegisterOptionalCheck(comps.structure.Name(), health.ServiceCheck(comps.structure))

	if cfg.Services.Identifier.HealthCheckInterval > 0 {
		comps.identifier.StartHealthChecker(ctx)
	}
	if cfg.Services.Structure.HealthCheckInterval > 0 {
		comps.structure.StartHealthChecker(ctx)
	}

	srv, err := server.New(cfg.Server, server.Dependencies{
		Validator:   comps.pipeline,
		Vocabulary:  comps.store,
		Checker:     checker,
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Version:     health.NewVersionInfo(Version, GitCommit, BuildDate),
		Logger:      logger,
	})
	if err != nil {
		stop()
		return nil, nil, err
	}
	return srv, stop, nil
}
