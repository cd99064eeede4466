package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"cmmc/validator/pkg/config"
	"cmmc/validator/pkg/records"
	"cmmc/validator/pkg/telemetry/health"
	"cmmc/validator/pkg/telemetry/logging"
	"cmmc/validator/pkg/telemetry/metrics"
	"cmmc/validator/pkg/validation"
	"cmmc/validator/pkg/vocabulary"

	"github.com/go-chi/chi/v5"
)

// Validator runs validations. It is satisfied by *validation.Pipeline.
type Validator interface {
	Run(ctx context.Context, vocab *vocabulary.Set, set *records.RecordSet) (*validation.Result, error)
	RequiredColumns(vocab *vocabulary.Set) []string
}

// VocabularySource provides the current vocabulary. It is satisfied by
// *vocabulary.Store.
type VocabularySource interface {
	Get() (*vocabulary.Set, error)
}

// Dependencies are the components a Server serves.
type Dependencies struct {
	Validator  Validator
	Vocabulary VocabularySource

	// Checker backs the health endpoints. Nil gets a checker with only a
	// vocabulary check.
	Checker *health.Checker

	// Metrics is optional. When set, requests are recorded and the
	// registry is exposed at MetricsPath.
	Metrics     *metrics.Collector
	MetricsPath string

	Version health.VersionInfo
	Logger  *logging.Logger
}

// Server is the HTTP API server.
type Server struct {
	config       config.ServerConfig
	deps         Dependencies
	logger       *logging.Logger
	httpServer   *http.Server
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server. It returns an error when a required dependency is missing.
func New(cfg config.ServerConfig, deps Dependencies) (*Server, error) {
	if deps.Validator == nil {
		return nil, errors.New("server: validator is required")
	}
	if deps.Vocabulary == nil {
		return nil, errors.New("server: vocabulary source is required")
	}
	if deps.Logger == nil {
		logger, err := logging.New(logging.Config{})
		if err != nil {
			return nil, err
		}
		deps.Logger = logger
	}
	if deps.Checker == nil {
		deps.Checker = health.New(0)
		deps.Checker.RegisterCheck("vocabulary", health.VocabularyCheck(deps.Vocabulary))
	}
	if deps.MetricsPath == "" {
		deps.MetricsPath = config.DefaultMetricsPath
	}

	return &Server{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.With("component", "server"),
	}, nil
}

// Start serves until ctx is cancelled or the listener fails, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}
	s.isRunning = true
	s.httpServer = &http.Server{
		Addr:           s.config.ListenAddress,
		Handler:        s.Handler(),
		ReadTimeout:    s.config.ReadTimeout,
		WriteTimeout:   s.config.WriteTimeout,
		IdleTimeout:    s.config.IdleTimeout,
		MaxHeaderBytes: s.config.MaxHeaderBytes,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting validation server", "address", s.config.ListenAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	}
}

// Shutdown gracefully stops the server within the configured timeout.
// In-flight validations see their request context cancelled when the
// timeout expires.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		httpServer := s.httpServer
		running := s.isRunning
		s.mu.Unlock()
		if !running || httpServer == nil {
			return
		}

		s.logger.Info("initiating graceful shutdown", "timeout", s.config.ShutdownTimeout.String())

		shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("error during server shutdown", "error", err)
			shutdownErr = fmt.Errorf("server shutdown error: %w", err)
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("validation server stopped")
	})

	return shutdownErr
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Handler returns the router with the full middleware chain.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(s.recoveryMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	if s.deps.Metrics != nil {
		r.Use(s.metricsMiddleware)
	}

	h := &handler{
		validator:  s.deps.Validator,
		vocabulary: s.deps.Vocabulary,
		maxUpload:  s.config.MaxUploadBytes,
		logger:     s.logger,
	}
	h.Register(r)

	r.Get("/health/live", s.deps.Checker.LivenessHandler())
	r.Head("/health/live", s.deps.Checker.LivenessHandler())
	r.Get("/health/ready", s.deps.Checker.ReadinessHandler())
	r.Head("/health/ready", s.deps.Checker.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.deps.Version))
	if s.deps.Metrics != nil {
		r.Method(http.MethodGet, s.deps.MetricsPath, s.deps.Metrics.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed on "+r.URL.Path)
	})

	return r
}
