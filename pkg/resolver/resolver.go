package resolver

import (
	"context"
	"time"
)

// Service names used in logs, metrics and errors.
const (
	ServiceIdentifier = "identifier"
	ServiceStructure  = "structure"
)

// Default endpoints of the public services.
const (
	DefaultIdentifierURL = "https://metabolomics-usi.gnps2.org/json/"
	DefaultStructureURL  = "https://structure.gnps2.org/convert"
)

// Resolver looks a single value up in a remote service.
type Resolver interface {
	// Lookup returns nil when the service resolves value.
	Lookup(ctx context.Context, value string) error

	// Name returns the service name.
	Name() string
}

// Observer receives the outcome of every lookup and health transition.
type Observer interface {
	ObserveLookup(service string, statusCode int, err error, latency time.Duration)
	ObserveHealth(service string, healthy bool)
}

// Config configures an HTTPResolver.
type Config struct {
	// Name identifies the service in logs and metrics.
	Name string

	// BaseURL is the lookup endpoint. Existing query parameters are kept.
	BaseURL string

	// QueryParam carries the looked-up value.
	QueryParam string

	// Timeout bounds a single request including reading the response.
	Timeout time.Duration

	// MaxInFlight bounds concurrent requests. Zero means 8.
	MaxInFlight int

	// RateLimit is the sustained requests per second. Zero disables pacing.
	RateLimit float64

	// RateBurst is the token bucket size. Zero means MaxInFlight.
	RateBurst int

	// HealthCheckInterval is the period of StartHealthChecker.
	HealthCheckInterval time.Duration

	MaxIdleConns        int
	MaxIdleConnsPerHost int
	IdleConnTimeout     time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string
}

// IdentifierConfig returns the defaults for the spectrum identifier service.
func IdentifierConfig() Config {
	return Config{
		Name:                ServiceIdentifier,
		BaseURL:             DefaultIdentifierURL,
		QueryParam:          "usi1",
		Timeout:             30 * time.Second,
		MaxInFlight:         8,
		HealthCheckInterval: time.Minute,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}
}

// StructureConfig returns the defaults for the structure conversion service.
func StructureConfig() Config {
	return Config{
		Name:                ServiceStructure,
		BaseURL:             DefaultStructureURL,
		QueryParam:          "smiles",
		Timeout:             30 * time.Second,
		MaxInFlight:         8,
		HealthCheckInterval: time.Minute,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     90 * time.Second,
	}
}

// Health is a snapshot of a resolver's recent behaviour.
type Health struct {
	IsHealthy             bool
	LastCheck             time.Time
	ConsecutiveFailures   int
	LastError             error
	LastSuccessfulRequest time.Time
	TotalRequests         int64
	FailedRequests        int64
}
