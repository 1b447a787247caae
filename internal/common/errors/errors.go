// internal/common/errors/errors.go
// Package errors provides the standardized error taxonomy for the query
// engine. Per-source failures and synthesis failures are expected outcomes
// recorded as values; nothing in this package is ever allowed to crash a
// request.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code represents standardized internal error codes.
type Code string

// Per-source errors: always caught and recorded in the source's result,
// never fatal.
const (
	CodeTransport     Code = "TRANSPORT_ERROR"
	CodeBadStatus     Code = "BAD_STATUS"
	CodeParseFailure  Code = "PARSE_FAILURE"
	CodeSourceTimeout Code = "SOURCE_TIMEOUT"
)

// Synthesis errors: surfaced as a failure outcome to the caller.
const (
	CodeModelNotReady     Code = "MODEL_NOT_READY"
	CodeGenerationError   Code = "GENERATION_ERROR"
	CodeInvalidParameters Code = "INVALID_PARAMETERS"
)

// Configuration errors are the only ones reported before any network
// activity begins.
const (
	CodeInvalidConfig Code = "INVALID_CONFIG"
)

// SourceError is a structured error produced by a source client.
type SourceError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewTransportError wraps a network-level failure.
func NewTransportError(err error) *SourceError {
	return &SourceError{Code: CodeTransport, Message: err.Error()}
}

// NewBadStatusError records a non-success HTTP status.
func NewBadStatusError(status int) *SourceError {
	return &SourceError{Code: CodeBadStatus, Message: fmt.Sprintf("unexpected status %d", status)}
}

// NewBadStatusErrorf records a non-success status with extra detail, e.g.
// a rate-limit explanation.
func NewBadStatusErrorf(status int, format string, args ...interface{}) *SourceError {
	return &SourceError{
		Code:    CodeBadStatus,
		Message: fmt.Sprintf("status %d: %s", status, fmt.Sprintf(format, args...)),
	}
}

// NewParseFailureError records a malformed response body.
func NewParseFailureError(err error) *SourceError {
	return &SourceError{Code: CodeParseFailure, Message: err.Error()}
}

// SynthesisError is a structured error produced by the synthesis engine.
type SynthesisError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewModelNotReadyError(state string) *SynthesisError {
	return &SynthesisError{Code: CodeModelNotReady, Message: fmt.Sprintf("model is %s, not ready", state)}
}

func NewGenerationError(err error) *SynthesisError {
	return &SynthesisError{Code: CodeGenerationError, Message: err.Error()}
}

func NewInvalidParametersError(detail string) *SynthesisError {
	return &SynthesisError{Code: CodeInvalidParameters, Message: detail}
}

// ConfigError reports a configuration that would make every request
// fail. It aborts startup.
type ConfigError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewInvalidConfigError(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Code: CodeInvalidConfig, Message: fmt.Sprintf(format, args...)}
}

// CodeOf extracts the taxonomy code from an error, defaulting to
// CodeTransport for untyped failures from the network layer.
func CodeOf(err error) Code {
	var se *SourceError
	if stderrors.As(err, &se) {
		return se.Code
	}
	var ye *SynthesisError
	if stderrors.As(err, &ye) {
		return ye.Code
	}
	var ce *ConfigError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return CodeTransport
}
