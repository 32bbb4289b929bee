// Package errors provides structured error handling for the devrun CLI.
// It includes categorized errors with actionable remediation guidance.
package errors

import (
	"errors"
	"fmt"
)

// ErrorCategory represents the type of error that occurred.
type ErrorCategory int

const (
	// Argument errors are caused by invalid or missing command arguments.
	Argument ErrorCategory = iota
	// Configuration errors are caused by invalid or missing configuration,
	// including duplicate command registrations.
	Configuration
	// Spawn errors occur when an external binary cannot be located or
	// started. They indicate environment misconfiguration rather than a
	// tool-level failure.
	Spawn
	// Runtime errors occur during step execution (non-zero exits).
	Runtime
)

// String returns a human-readable name for the error category.
func (c ErrorCategory) String() string {
	switch c {
	case Argument:
		return "Argument Error"
	case Configuration:
		return "Configuration Error"
	case Spawn:
		return "Spawn Error"
	case Runtime:
		return "Runtime Error"
	default:
		return "Error"
	}
}

// CLIError is a structured error with category and remediation guidance.
type CLIError struct {
	// Category is the type of error (Argument, Configuration, etc.)
	Category ErrorCategory
	// Message is a human-readable description of what went wrong.
	Message string
	// Remediation is a list of actionable steps to resolve the error.
	Remediation []string
	// Usage shows the correct command syntax (optional, for argument errors).
	Usage string
	// ExitCode is the exit status carried by runtime errors (0 when unset).
	ExitCode int
	// cause is the wrapped underlying error, if any.
	cause error
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *CLIError) Unwrap() error {
	return e.cause
}

// NewDuplicateCommandError reports a command name registered twice.
func NewDuplicateCommandError(name string) *CLIError {
	return &CLIError{
		Category: Configuration,
		Message:  fmt.Sprintf("command %q is already registered", name),
		Remediation: []string{
			"Rename the custom command in .devrun/config.yml",
			"Built-in command names cannot be overridden",
		},
	}
}

// NewCommandNotFoundError reports an unrecognized command name.
func NewCommandNotFoundError(name string) *CLIError {
	return &CLIError{
		Category: Argument,
		Message:  fmt.Sprintf("unknown command %q", name),
		Usage:    "devrun <command>",
		Remediation: []string{
			"Run 'devrun' with no arguments to list available commands",
		},
	}
}

// NewSpawnError reports that an external binary could not be started.
func NewSpawnError(binary string, err error) *CLIError {
	return &CLIError{
		Category: Spawn,
		Message:  fmt.Sprintf("could not start %q: %v", binary, err),
		Remediation: []string{
			fmt.Sprintf("Check that %q is installed and on your PATH", binary),
			"Run 'devrun doctor' to verify your environment",
		},
		cause: err,
	}
}

// NewStepFailedError reports a step that exited non-zero.
func NewStepFailedError(step string, exitCode int) *CLIError {
	return &CLIError{
		Category: Runtime,
		Message:  fmt.Sprintf("step %s exited with code %d", step, exitCode),
		ExitCode: exitCode,
	}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, remediation ...string) *CLIError {
	return &CLIError{
		Category:    Configuration,
		Message:     message,
		Remediation: remediation,
	}
}

// Wrap wraps an existing error with a CLIError, preserving the original
// message and exposing the cause via Unwrap.
func Wrap(err error, category ErrorCategory, remediation ...string) *CLIError {
	if err == nil {
		return nil
	}
	return &CLIError{
		Category:    category,
		Message:     err.Error(),
		Remediation: remediation,
		cause:       err,
	}
}

// IsSpawn reports whether err (or anything it wraps) is a spawn failure.
func IsSpawn(err error) bool {
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr.Category == Spawn
	}
	return false
}
