package common

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure the pipeline can produce maps to exactly one of
// these, so operators can tell "we are misconfigured" from "the producer is
// down" from "the producer is violating the contract". Match with errors.Is.
var (
	ErrConfiguration       = errors.New("configuration error")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrProducerUnavailable = errors.New("producer unavailable")
	ErrMalformedOutput     = errors.New("malformed producer output")
	ErrSchemaViolation     = errors.New("schema violation")
)

// AppError represents application-specific errors.
type AppError struct {
	Kind    error
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) Is(target error) bool {
	return target == e.Kind
}

// Error constructors
func ConfigurationError(message string) error {
	return &AppError{Kind: ErrConfiguration, Message: message}
}

func InvalidRequestError(message string) error {
	return &AppError{Kind: ErrInvalidRequest, Message: message}
}

func ProducerUnavailableError(message string, cause error) error {
	return &AppError{Kind: ErrProducerUnavailable, Message: message, Cause: cause}
}

func InvalidRequestErrorf(format string, args ...interface{}) error {
	return InvalidRequestError(fmt.Sprintf(format, args...))
}

// MalformedOutputError means the producer response could not be parsed as
// structured data at all. Raw preserves the original text for diagnosis.
type MalformedOutputError struct {
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed producer output: %v", e.Cause)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

func (e *MalformedOutputError) Is(target error) bool {
	return target == ErrMalformedOutput
}

// SchemaViolationError means the producer response parsed but failed the
// contract. Violations carries "field path: constraint" entries so prompt
// drift can be diagnosed, never silently patched.
type SchemaViolationError struct {
	Violations []string
	Raw        string
}

func (e *SchemaViolationError) Error() string {
	return "schema violation: " + strings.Join(e.Violations, "; ")
}

func (e *SchemaViolationError) Is(target error) bool {
	return target == ErrSchemaViolation
}
