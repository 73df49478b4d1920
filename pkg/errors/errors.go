// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package errors provides typed error handling with rich context for Studio.
package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
)

// ErrorCode classifies Studio errors for monitoring and user hints.
type ErrorCode string

const (
	// CodeInternal indicates an internal system error.
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// CodeInvalidInput indicates the input was invalid.
	CodeInvalidInput ErrorCode = "INVALID_INPUT"

	// CodeConfig indicates the process configuration is unusable.
	CodeConfig ErrorCode = "CONFIG_ERROR"

	// CodeTimeout indicates an operation exceeded its time limit.
	CodeTimeout ErrorCode = "TIMEOUT"

	// CodeCanceled indicates the caller gave up on the operation.
	CodeCanceled ErrorCode = "CANCELED"

	// CodeRateLimit indicates the model service throttled the request.
	CodeRateLimit ErrorCode = "RATE_LIMITED"

	// CodeNotFound indicates a resource was not found.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeUnauthorized indicates the credential was rejected.
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// CodeNetwork indicates the model service could not be reached.
	CodeNetwork ErrorCode = "NETWORK_ERROR"

	// CodeLLMError indicates an LLM provider error.
	CodeLLMError ErrorCode = "LLM_ERROR"
)

// StudioError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type StudioError struct {
	Code        ErrorCode
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
	StatusCode  int // HTTP status for the web front-end
}

// Error implements the error interface.
func (e *StudioError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *StudioError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *StudioError) MarshalJSON() ([]byte, error) {
	var cause string
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return json.Marshal(&struct {
		Message     string                 `json:"message"`
		Code        string                 `json:"code"`
		Err         string                 `json:"error,omitempty"`
		Recoverable bool                   `json:"recoverable"`
		Context     map[string]interface{} `json:"context,omitempty"`
		Attributes  map[string]string      `json:"attributes,omitempty"`
	}{
		Message:     e.Error(),
		Code:        string(e.Code),
		Err:         cause,
		Recoverable: e.Recoverable,
		Context:     e.Context,
		Attributes:  e.Attributes,
	})
}

// New creates a new StudioError with the given code, message, and cause.
func New(code ErrorCode, msg string, cause error) *StudioError {
	return &StudioError{
		Code:       code,
		Message:    msg,
		Err:        cause,
		Context:    make(map[string]interface{}),
		Attributes: make(map[string]string),
		StatusCode: codeToStatusCode(code),
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *StudioError) WithContext(key string, value interface{}) *StudioError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *StudioError) WithAttribute(key, value string) *StudioError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable sets whether the error can be recovered from.
// Returns the error for method chaining.
func (e *StudioError) WithRecoverable(recoverable bool) *StudioError {
	e.Recoverable = recoverable
	return e
}

// AsStudioError converts an error to a StudioError.
// Returns the error as StudioError if one is in the chain, or wraps it otherwise.
func AsStudioError(err error) *StudioError {
	if err == nil {
		return nil
	}
	var se *StudioError
	if stderrors.As(err, &se) {
		return se
	}
	return New(CodeInternal, "wrapped error", err)
}

// CodeOf returns the code of the first StudioError in the chain, or the code
// Classify infers from the error text.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var se *StudioError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return Classify(err)
}

// Classify infers an error code from a raw provider fault. It is used for
// logs and metrics only.
func Classify(err error) ErrorCode {
	if err == nil {
		return ""
	}
	switch {
	case stderrors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case stderrors.Is(err, context.Canceled):
		return CodeCanceled
	}
	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return CodeTimeout
		}
		return CodeNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "401", "403", "api key", "api_key", "unauthorized", "permission denied", "unauthenticated"):
		return CodeUnauthorized
	case containsAny(msg, "429", "rate limit", "quota", "resource_exhausted", "resource exhausted"):
		return CodeRateLimit
	case containsAny(msg, "deadline exceeded", "timed out", "timeout"):
		return CodeTimeout
	case containsAny(msg, "connection refused", "no such host", "connection reset"):
		return CodeNetwork
	default:
		return CodeLLMError
	}
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *StudioError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// codeToStatusCode maps error codes to HTTP status codes.
func codeToStatusCode(code ErrorCode) int {
	switch code {
	case CodeNotFound:
		return 404
	case CodeUnauthorized:
		return 401
	case CodeInvalidInput:
		return 400
	case CodeTimeout:
		return 408
	case CodeRateLimit:
		return 429
	case CodeConfig, CodeNetwork, CodeLLMError:
		return 503
	default:
		return 500
	}
}
