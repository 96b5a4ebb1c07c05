// Package apperrors defines application-level error types.
package apperrors

import (
	"fmt"
)

// ValidationError indicates config or request validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// BuildFailedError indicates the build ran but did not succeed.
// The report carries the details; this only signals the outcome to callers
// that need an error (e.g. for the process exit code).
type BuildFailedError struct {
	Sketch string
	Errors int
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("build failed for %s (%d errors)", e.Sketch, e.Errors)
}

// NewBuildFailedError creates a new build failed error.
func NewBuildFailedError(sketch string, errs int) *BuildFailedError {
	return &BuildFailedError{
		Sketch: sketch,
		Errors: errs,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
