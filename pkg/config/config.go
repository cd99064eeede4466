package config

import "time"

// Config is the root configuration structure for the validator.
// It contains the lookup service endpoints, the vocabulary source, pipeline
// tuning, the HTTP server and telemetry settings.
type Config struct {
	// Services contains the identifier and structure lookup services.
	Services ServicesConfig `yaml:"services"`

	// Vocabulary describes where the controlled vocabulary comes from and
	// how it is kept fresh.
	Vocabulary VocabularyConfig `yaml:"vocabulary"`

	// Pipeline contains validation run tuning.
	Pipeline PipelineConfig `yaml:"pipeline"`

	// Server contains HTTP API server configuration.
	Server ServerConfig `yaml:"server"`

	// Telemetry contains logging and metrics configuration.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServicesConfig groups the two remote lookup services.
type ServicesConfig struct {
	// Identifier is the spectrum identifier (USI) resolution service.
	Identifier ServiceConfig `yaml:"identifier"`

	// Structure is the chemical structure (SMILES) conversion service.
	Structure ServiceConfig `yaml:"structure"`

	// UserAgent is sent with every lookup request.
	// Default: "cmmc-validator"
	UserAgent string `yaml:"user_agent"`
}

// ServiceConfig contains the settings for one lookup service.
type ServiceConfig struct {
	// BaseURL is the lookup endpoint. The value under test is appended
	// as a query parameter.
	BaseURL string `yaml:"base_url"`

	// Timeout bounds a single lookup request.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxAttempts is the total number of tries per value, first call included.
	// Default: 3 for identifier, 1 for structure
	MaxAttempts int `yaml:"max_attempts"`

	// RetryDelay is the wait before the second attempt.
	// Default: 1s
	RetryDelay time.Duration `yaml:"retry_delay"`

	// BackoffMultiplier scales the delay after each failed attempt.
	// Default: 1 (constant delay)
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`

	// MaxRetryDelay caps the grown delay (0 = no cap).
	MaxRetryDelay time.Duration `yaml:"max_retry_delay"`

	// MaxInFlight bounds concurrent requests to the service.
	// Default: 8
	MaxInFlight int `yaml:"max_in_flight"`

	// RateLimit is the sustained request rate per second (0 = unlimited).
	RateLimit float64 `yaml:"rate_limit"`

	// RateBurst is the token bucket size when RateLimit is set.
	// Default: 1
	RateBurst int `yaml:"rate_burst"`

	// CacheSize is the number of resolved values remembered per run. A
	// negative value turns the memo off.
	// Default: 1024
	CacheSize int `yaml:"cache_size"`

	// HealthCheckInterval is the period of background health probes in serve
	// mode (0 = disabled).
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
}

// VocabularyConfig contains controlled vocabulary settings.
type VocabularyConfig struct {
	// Source is a local TSV path or an http(s) URL.
	// Default: "vocabulary.tsv"
	Source string `yaml:"source"`

	// Strict rejects a vocabulary that lacks any controlled field column.
	Strict bool `yaml:"strict"`

	// Watch reloads a local vocabulary file when it changes (serve mode).
	Watch bool `yaml:"watch"`

	// DebounceInterval coalesces bursts of file events.
	// Default: 100ms
	DebounceInterval time.Duration `yaml:"debounce_interval"`

	// RefreshSchedule is a cron expression for periodic reloads (serve mode).
	// Empty disables scheduled refresh.
	RefreshSchedule string `yaml:"refresh_schedule"`

	// Timeout bounds fetching a remote vocabulary.
	// Default: 30s
	Timeout time.Duration `yaml:"timeout"`

	// MaxBytes limits the size of a remote vocabulary body.
	// Default: 10MB
	MaxBytes int64 `yaml:"max_bytes"`
}

// PipelineConfig contains validation run tuning.
type PipelineConfig struct {
	// Concurrency is the number of cell checks that may run at once.
	// Default: 16
	Concurrency int `yaml:"concurrency"`
}

// ServerConfig contains HTTP API server configuration.
type ServerConfig struct {
	// ListenAddress is the address the server listens on.
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 60s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. Validation of large files happens inside this window.
	// Default: 10m
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes limits request header size.
	// Default: 1MB
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// MaxUploadBytes limits the uploaded TSV size.
	// Default: 32MB
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics collection configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is one of json, text, console.
	// Default: "console"
	Format string `yaml:"format"`

	// AddSource includes source file and line in log records.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains metrics collection configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics collection is active.
	// Default: true
	Enabled *bool `yaml:"enabled"`

	// Path is the HTTP path for the Prometheus metrics endpoint.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the metric name prefix.
	// Default: "cmmc"
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem name.
	// Default: "validator"
	Subsystem string `yaml:"subsystem"`

	// LookupDurationBuckets defines histogram buckets for lookup latency (seconds).
	LookupDurationBuckets []float64 `yaml:"lookup_duration_buckets"`

	// RunDurationBuckets defines histogram buckets for run duration (seconds).
	RunDurationBuckets []float64 `yaml:"run_duration_buckets"`
}

// IsEnabled reports whether metrics are collected. An unset Enabled counts
// as enabled.
func (m *MetricsConfig) IsEnabled() bool {
	return m.Enabled == nil || *m.Enabled
}
