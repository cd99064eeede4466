package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "services.identifier.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateService("services.identifier", &cfg.Services.Identifier)...)
	errs = append(errs, validateService("services.structure", &cfg.Services.Structure)...)
	errs = append(errs, validateVocabulary(&cfg.Vocabulary)...)

	if cfg.Pipeline.Concurrency < 1 {
		errs = append(errs, FieldError{
			Field:   "pipeline.concurrency",
			Message: fmt.Sprintf("must be at least 1, got %d", cfg.Pipeline.Concurrency),
		})
	}

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

func validateService(prefix string, svc *ServiceConfig) []FieldError {
	var errs []FieldError

	if svc.BaseURL == "" {
		errs = append(errs, FieldError{Field: prefix + ".base_url", Message: "base URL is required"})
	} else if u, err := url.Parse(svc.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, FieldError{
			Field:   prefix + ".base_url",
			Message: fmt.Sprintf("invalid URL %q: must be an absolute http or https URL", svc.BaseURL),
		})
	}

	if svc.Timeout <= 0 {
		errs = append(errs, FieldError{Field: prefix + ".timeout", Message: "timeout must be positive"})
	}
	if svc.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   prefix + ".max_attempts",
			Message: fmt.Sprintf("must be at least 1, got %d", svc.MaxAttempts),
		})
	}
	if svc.RetryDelay < 0 {
		errs = append(errs, FieldError{Field: prefix + ".retry_delay", Message: "retry delay cannot be negative"})
	}
	if svc.BackoffMultiplier < 1 {
		errs = append(errs, FieldError{
			Field:   prefix + ".backoff_multiplier",
			Message: fmt.Sprintf("must be at least 1, got %g", svc.BackoffMultiplier),
		})
	}
	if svc.MaxRetryDelay < 0 {
		errs = append(errs, FieldError{Field: prefix + ".max_retry_delay", Message: "max retry delay cannot be negative"})
	}
	if svc.MaxInFlight < 1 {
		errs = append(errs, FieldError{
			Field:   prefix + ".max_in_flight",
			Message: fmt.Sprintf("must be at least 1, got %d", svc.MaxInFlight),
		})
	}
	if svc.RateLimit < 0 {
		errs = append(errs, FieldError{Field: prefix + ".rate_limit", Message: "rate limit cannot be negative"})
	}
	if svc.RateBurst < 1 {
		errs = append(errs, FieldError{
			Field:   prefix + ".rate_burst",
			Message: fmt.Sprintf("must be at least 1, got %d", svc.RateBurst),
		})
	}
	if svc.HealthCheckInterval < 0 {
		errs = append(errs, FieldError{Field: prefix + ".health_check_interval", Message: "interval cannot be negative"})
	}

	return errs
}

func validateVocabulary(cfg *VocabularyConfig) []FieldError {
	var errs []FieldError

	if cfg.Source == "" {
		errs = append(errs, FieldError{Field: "vocabulary.source", Message: "vocabulary source is required"})
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "vocabulary.timeout", Message: "timeout must be positive"})
	}
	if cfg.MaxBytes <= 0 {
		errs = append(errs, FieldError{Field: "vocabulary.max_bytes", Message: "max bytes must be positive"})
	}
	if cfg.RefreshSchedule != "" {
		if _, err := cron.ParseStandard(cfg.RefreshSchedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "vocabulary.refresh_schedule",
				Message: fmt.Sprintf("invalid cron expression %q: %v", cfg.RefreshSchedule, err),
			})
		}
	}
	isRemote := strings.HasPrefix(cfg.Source, "http://") || strings.HasPrefix(cfg.Source, "https://")
	if cfg.Watch && isRemote {
		errs = append(errs, FieldError{
			Field:   "vocabulary.watch",
			Message: "watch requires a local vocabulary file; use refresh_schedule for URLs",
		})
	}

	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	} else if !strings.Contains(cfg.ListenAddress, ":") {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: fmt.Sprintf("invalid listen address %q: expected host:port", cfg.ListenAddress),
		})
	}

	timeouts := []struct {
		field string
		value int64
	}{
		{"server.read_timeout", int64(cfg.ReadTimeout)},
		{"server.write_timeout", int64(cfg.WriteTimeout)},
		{"server.idle_timeout", int64(cfg.IdleTimeout)},
		{"server.shutdown_timeout", int64(cfg.ShutdownTimeout)},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			errs = append(errs, FieldError{Field: t.field, Message: "timeout must be positive"})
		}
	}

	if cfg.MaxUploadBytes <= 0 {
		errs = append(errs, FieldError{Field: "server.max_upload_bytes", Message: "max upload bytes must be positive"})
	}

	return errs
}

func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json', 'text', or 'console'", cfg.Logging.Format),
		})
	}

	if cfg.Metrics.IsEnabled() {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if !strings.HasPrefix(cfg.Metrics.Path, "/") {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: fmt.Sprintf("metrics path %q must start with '/'", cfg.Metrics.Path),
			})
		}
		errs = append(errs, validateBuckets("telemetry.metrics.lookup_duration_buckets", cfg.Metrics.LookupDurationBuckets)...)
		errs = append(errs, validateBuckets("telemetry.metrics.run_duration_buckets", cfg.Metrics.RunDurationBuckets)...)
	}

	return errs
}

func validateBuckets(field string, buckets []float64) []FieldError {
	for i := 1; i < len(buckets); i++ {
		if buckets[i] <= buckets[i-1] {
			return []FieldError{{Field: field, Message: "buckets must be strictly increasing"}}
		}
	}
	return nil
}
