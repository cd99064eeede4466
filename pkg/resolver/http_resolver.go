package resolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

const maxDrainBytes = 64 << 10

// HTTPResolver resolves values against an HTTP lookup endpoint.
type HTTPResolver struct {
	config   Config
	baseURL  *url.URL
	client   *http.Client
	limiter  *rate.Limiter
	inFlight *semaphore.Weighted
	observer Observer
	logger   *slog.Logger

	health   Health
	healthMu sync.RWMutex

	stopHealthCheck    chan struct{}
	healthCheckStopped chan struct{}
	checkerStarted     atomic.Bool
	closeOnce          sync.Once
}

// Option customises an HTTPResolver.
type Option func(*HTTPResolver)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *HTTPResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver reports lookups and health changes to o.
func WithObserver(o Observer) Option {
	return func(r *HTTPResolver) {
		r.observer = o
	}
}

// WithTransport replaces the pooled transport, mostly for tests.
func WithTransport(rt http.RoundTripper) Option {
	return func(r *HTTPResolver) {
		r.client.Transport = rt
	}
}

// New creates an HTTPResolver with connection pooling.
func New(config Config, opts ...Option) (*HTTPResolver, error) {
	if config.Name == "" {
		return nil, &ConfigError{Service: "resolver", Field: "name", Message: "must not be empty"}
	}
	if config.QueryParam == "" {
		return nil, &ConfigError{Service: config.Name, Field: "query_param", Message: "must not be empty"}
	}
	base, err := url.Parse(config.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &ConfigError{Service: config.Name, Field: "base_url", Message: fmt.Sprintf("invalid URL %q", config.BaseURL)}
	}
	if config.MaxInFlight <= 0 {
		config.MaxInFlight = 8
	}

	limit := rate.Inf
	if config.RateLimit > 0 {
		limit = rate.Limit(config.RateLimit)
	}
	burst := config.RateBurst
	if burst <= 0 {
		burst = config.MaxInFlight
	}

	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	r := &HTTPResolver{
		config:   config,
		baseURL:  base,
		client:   &http.Client{Transport: transport, Timeout: config.Timeout},
		limiter:  rate.NewLimiter(limit, burst),
		inFlight: semaphore.NewWeighted(int64(config.MaxInFlight)),
		logger:   slog.Default(),
		health: Health{
			IsHealthy:             true,
			LastCheck:             time.Now(),
			LastSuccessfulRequest: time.Now(),
		},
		stopHealthCheck:    make(chan struct{}),
		healthCheckStopped: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With("service", config.Name)

	return r, nil
}

// Name returns the configured service name.
func (r *HTTPResolver) Name() string {
	return r.config.Name
}

// Config returns the resolver configuration.
func (r *HTTPResolver) Config() Config {
	return r.config
}

// Lookup performs one GET request for value.
func (r *HTTPResolver) Lookup(ctx context.Context, value string) error {
	if err := r.inFlight.Acquire(ctx, 1); err != nil {
		return err
	}
	defer r.inFlight.Release(1)

	if err := r.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Service: r.config.Name, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.lookupURL(value), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if r.config.UserAgent != "" {
		req.Header.Set("User-Agent", r.config.UserAgent)
	}

	start := time.Now()
	resp, err := r.client.Do(req)
	latency := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		terr := &TransportError{Service: r.config.Name, Cause: err}
		r.recordRequest(false)
		r.updateHealth(false, terr)
		r.observeLookup(0, terr, latency)
		r.logger.Debug("lookup failed", "error", err, "latency", latency)
		return terr
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		r.recordRequest(true)
		r.updateHealth(true, nil)
		r.observeLookup(resp.StatusCode, nil, latency)
		return nil
	}

	serr := &StatusError{Service: r.config.Name, StatusCode: resp.StatusCode}
	r.recordRequest(false)
	// A 4xx means the service answered and rejected the value.
	r.updateHealth(resp.StatusCode < http.StatusInternalServerError, serr)
	r.observeLookup(resp.StatusCode, serr, latency)
	r.logger.Debug("lookup rejected", "status", resp.StatusCode, "latency", latency)
	return serr
}

func (r *HTTPResolver) lookupURL(value string) string {
	u := *r.baseURL
	q := u.Query()
	q.Set(r.config.QueryParam, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// IsHealthy returns the current health status.
func (r *HTTPResolver) IsHealthy() bool {
	r.healthMu.RLock()
	defer r.healthMu.RUnlock()
	return r.health.IsHealthy
}

// GetHealth returns detailed health information.
func (r *HTTPResolver) GetHealth() Health {
	r.healthMu.RLock()
	defer r.healthMu.RUnlock()
	return r.health
}

func (r *HTTPResolver) updateHealth(success bool, err error) {
	r.healthMu.Lock()
	wasHealthy := r.health.IsHealthy
	r.health.LastCheck = time.Now()

	if success {
		r.health.IsHealthy = true
		r.health.ConsecutiveFailures = 0
		r.health.LastError = nil
		r.health.LastSuccessfulRequest = time.Now()
	} else {
		r.health.ConsecutiveFailures++
		r.health.LastError = err
		if r.health.ConsecutiveFailures >= 3 {
			r.health.IsHealthy = false
		}
	}
	healthy := r.health.IsHealthy
	failures := r.health.ConsecutiveFailures
	r.healthMu.Unlock()

	if wasHealthy == healthy {
		return
	}
	if healthy {
		r.logger.Info("service marked healthy")
	} else {
		r.logger.Warn("service marked unhealthy", "consecutive_failures", failures, "error", err)
	}
	if r.observer != nil {
		r.observer.ObserveHealth(r.config.Name, healthy)
	}
}

func (r *HTTPResolver) recordRequest(success bool) {
	r.healthMu.Lock()
	defer r.healthMu.Unlock()

	r.health.TotalRequests++
	if !success {
		r.health.FailedRequests++
	}
}

func (r *HTTPResolver) observeLookup(status int, err error, latency time.Duration) {
	if r.observer != nil {
		r.observer.ObserveLookup(r.config.Name, status, err, latency)
	}
}

// Close stops the health checker and releases idle connections.
func (r *HTTPResolver) Close() error {
	r.closeOnce.Do(func() {
		close(r.stopHealthCheck)
	})

	if r.checkerStarted.Load() {
		select {
		case <-r.healthCheckStopped:
		case <-time.After(5 * time.Second):
			r.logger.Warn("health checker did not stop in time")
		}
	}

	r.client.CloseIdleConnections()
	return nil
}
