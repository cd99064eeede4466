package config

import "time"

// Default configuration values.
const (
	DefaultIdentifierBaseURL = "https://metabolomics-usi.gnps2.org/json/"
	DefaultStructureBaseURL  = "https://structure.gnps2.org/convert"
	DefaultUserAgent         = "cmmc-validator"

	DefaultServiceTimeout     = 30 * time.Second
	DefaultIdentifierAttempts = 3
	DefaultStructureAttempts  = 1
	DefaultRetryDelay         = 1 * time.Second
	DefaultBackoffMultiplier  = 1.0
	DefaultMaxInFlight        = 8
	DefaultRateBurst          = 1
	DefaultLookupCacheSize    = 1024

	DefaultVocabularySource   = "vocabulary.tsv"
	DefaultVocabularyTimeout  = 30 * time.Second
	DefaultVocabularyMaxBytes = 10 * 1024 * 1024
	DefaultDebounceInterval   = 100 * time.Millisecond

	DefaultConcurrency = 16

	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 60 * time.Second
	DefaultWriteTimeout    = 10 * time.Minute
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1 << 20
	DefaultMaxUploadBytes  = 32 << 20

	DefaultLoggingLevel     = "info"
	DefaultLoggingFormat    = "console"
	DefaultMetricsPath      = "/metrics"
	DefaultMetricsNamespace = "cmmc"
	DefaultMetricsSubsystem = "validator"
)

var (
	// DefaultLookupDurationBuckets covers fast cache-warm services up to the request timeout.
	DefaultLookupDurationBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

	// DefaultRunDurationBuckets covers small deposits up to files with thousands of rows.
	DefaultRunDurationBuckets = []float64{0.5, 1, 5, 15, 30, 60, 300, 900}
)

// NewDefaultConfig returns a configuration with every default applied. It is
// used when no configuration file is given.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults. Fields that
// were set explicitly are left alone.
func ApplyDefaults(cfg *Config) {
	if cfg.Services.Identifier.BaseURL == "" {
		cfg.Services.Identifier.BaseURL = DefaultIdentifierBaseURL
	}
	if cfg.Services.Structure.BaseURL == "" {
		cfg.Services.Structure.BaseURL = DefaultStructureBaseURL
	}
	if cfg.Services.Identifier.MaxAttempts == 0 {
		cfg.Services.Identifier.MaxAttempts = DefaultIdentifierAttempts
	}
	if cfg.Services.Structure.MaxAttempts == 0 {
		cfg.Services.Structure.MaxAttempts = DefaultStructureAttempts
	}
	if cfg.Services.UserAgent == "" {
		cfg.Services.UserAgent = DefaultUserAgent
	}
	applyServiceDefaults(&cfg.Services.Identifier)
	applyServiceDefaults(&cfg.Services.Structure)

	// Vocabulary defaults
	if cfg.Vocabulary.Source == "" {
		cfg.Vocabulary.Source = DefaultVocabularySource
	}
	if cfg.Vocabulary.Timeout == 0 {
		cfg.Vocabulary.Timeout = DefaultVocabularyTimeout
	}
	if cfg.Vocabulary.MaxBytes == 0 {
		cfg.Vocabulary.MaxBytes = DefaultVocabularyMaxBytes
	}
	if cfg.Vocabulary.DebounceInterval == 0 {
		cfg.Vocabulary.DebounceInterval = DefaultDebounceInterval
	}

	if cfg.Pipeline.Concurrency == 0 {
		cfg.Pipeline.Concurrency = DefaultConcurrency
	}

	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	if cfg.Server.MaxUploadBytes == 0 {
		cfg.Server.MaxUploadBytes = DefaultMaxUploadBytes
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	applyMetricsDefaults(&cfg.Telemetry.Metrics)
}

func applyServiceDefaults(svc *ServiceConfig) {
	if svc.Timeout == 0 {
		svc.Timeout = DefaultServiceTimeout
	}
	if svc.RetryDelay == 0 {
		svc.RetryDelay = DefaultRetryDelay
	}
	if svc.BackoffMultiplier == 0 {
		svc.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if svc.MaxInFlight == 0 {
		svc.MaxInFlight = DefaultMaxInFlight
	}
	if svc.RateBurst == 0 {
		svc.RateBurst = DefaultRateBurst
	}
	if svc.CacheSize == 0 {
		svc.CacheSize = DefaultLookupCacheSize
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.Enabled == nil {
		enabled := true
		m.Enabled = &enabled
	}
	if m.Path == "" {
		m.Path = DefaultMetricsPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if m.Subsystem == "" {
		m.Subsystem = DefaultMetricsSubsystem
	}
	if len(m.LookupDurationBuckets) == 0 {
		m.LookupDurationBuckets = append([]float64(nil), DefaultLookupDurationBuckets...)
	}
	if len(m.RunDurationBuckets) == 0 {
		m.RunDurationBuckets = append([]float64(nil), DefaultRunDurationBuckets...)
	}
}
