package resolver

import (
	"errors"
	"fmt"
)

// StatusError is returned when the service answered with a status other
// than 200.
type StatusError struct {
	Service    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s service returned status %d", e.Service, e.StatusCode)
}

// TransportError is returned when no response was received.
type TransportError struct {
	Service string
	Cause   error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s service request failed: %v", e.Service, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// ConfigError reports an invalid resolver configuration.
type ConfigError struct {
	Service string
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s resolver configuration error for field %q: %s", e.Service, e.Field, e.Message)
}

// IsRetryable reports whether err is a status error. Transport errors are
// not retried.
func IsRetryable(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr)
}

// StatusCode extracts the HTTP status from err.
func StatusCode(err error) (int, bool) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode, true
	}
	return 0, false
}
