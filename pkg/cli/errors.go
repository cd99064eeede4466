package cli

import (
	"errors"
	"fmt"

	"cmmc/validator/pkg/validation"
)

// Process exit codes.
const (
	ExitOK         = 0
	ExitError      = 1
	ExitRowsFailed = 2
)

// ErrRowsFailed is returned by the validate command when at least one row
// failed and failing was requested.
var ErrRowsFailed = errors.New("one or more rows failed validation")

// ConfigError represents an error in configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		Field:   field,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps a command error to the process exit code. Failed rows exit
// with 2; a missing column and every other error exit with 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, ErrRowsFailed) {
		return ExitRowsFailed
	}
	return ExitError
}

// Hint returns extra guidance for err, if any.
func Hint(err error) string {
	var missing *validation.MissingColumnsError
	if errors.As(err, &missing) {
		return missing.Hint()
	}
	return ""
}
