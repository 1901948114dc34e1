package plan

import (
	"errors"
	"fmt"
)

// ConfigError reports a configuration defect: a plan, descriptor or
// domain file that names something that does not exist or cannot be
// parsed. Configuration errors are fatal and never retried.
type ConfigError struct {
	// Code identifies the error category.
	Code ConfigErrorCode

	// Message is a human-readable description.
	Message string

	// Table is the affected table, if any.
	Table string

	// Field is the affected field, if any.
	Field string

	// Err is the underlying cause, if any.
	Err error
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeInvalidPlan indicates a plan that fails validation.
	ErrCodeInvalidPlan ConfigErrorCode = "INVALID_PLAN"

	// ErrCodeMissingFile indicates a descriptor or domain file that does not exist.
	ErrCodeMissingFile ConfigErrorCode = "MISSING_FILE"

	// ErrCodeBadDescriptor indicates a descriptor or domain file that cannot be parsed.
	ErrCodeBadDescriptor ConfigErrorCode = "BAD_DESCRIPTOR"

	// ErrCodeUnknownField indicates a field named in configuration that
	// the schema or source table does not define.
	ErrCodeUnknownField ConfigErrorCode = "UNKNOWN_FIELD"
)

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Table != "" && e.Field != "":
		msg += fmt.Sprintf(" (table=%s, field=%s)", e.Table, e.Field)
	case e.Table != "":
		msg += fmt.Sprintf(" (table=%s)", e.Table)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// IsConfigError returns true if err is or wraps a ConfigError.
// Uses errors.As to handle wrapped errors.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// NewUnknownFieldError creates a ConfigError for a field that the table
// or source does not define.
func NewUnknownFieldError(table, field, context string) *ConfigError {
	return &ConfigError{
		Code:    ErrCodeUnknownField,
		Message: fmt.Sprintf("%s names a field that does not exist", context),
		Table:   table,
		Field:   field,
	}
}

func invalidf(format string, args ...any) *ConfigError {
	return &ConfigError{Code: ErrCodeInvalidPlan, Message: fmt.Sprintf(format, args...)}
}
