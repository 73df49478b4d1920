// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/multiagent-studio/studio/pkg/errors"
)

// CLIError wraps StudioError with CLI-specific formatting and hints.
type CLIError struct {
	*errors.StudioError
	Hint string
}

// NewCLIError creates a new CLI error.
func NewCLIError(se *errors.StudioError, hint string) *CLIError {
	return &CLIError{
		StudioError: se,
		Hint:        hint,
	}
}

// Error returns the formatted error message with hints.
func (e *CLIError) Error() string {
	if e.StudioError == nil {
		return "unknown error"
	}

	msg := e.StudioError.Error()
	if e.Hint != "" {
		msg += "\n  Hint: " + e.Hint
	}
	return msg
}

// PrintError writes the error to w, as JSON when asJSON is set.
func (e *CLIError) PrintError(w io.Writer, asJSON bool) {
	if asJSON {
		payload := map[string]any{"error": map[string]string{
			"code":    string(e.Code),
			"message": e.Message,
			"hint":    e.Hint,
		}}
		_ = json.NewEncoder(w).Encode(payload)
		return
	}

	fmt.Fprintf(w, "Error [%s]: %s\n", FormatErrorCode(e.Code), describe(e.StudioError))
	if e.Hint != "" {
		fmt.Fprintf(w, "  Hint: %s\n", e.Hint)
	}
}

func describe(se *errors.StudioError) string {
	if se.Err != nil {
		return se.Message + ": " + se.Err.Error()
	}
	return se.Message
}

// NewConfigError creates a configuration error with CLI hints.
func NewConfigError(err error, configPath string) *CLIError {
	se := errors.AsStudioError(err)
	if se == nil || se.Code != errors.CodeConfig {
		se = errors.New(errors.CodeConfig, "configuration error", err)
	}
	se = se.WithContext("config_path", configPath).WithRecoverable(false)

	hint := "check --set values and STUDIO_ environment variables"
	if configPath != "" {
		hint = fmt.Sprintf("check %s for syntax errors", configPath)
	}
	return NewCLIError(se, hint)
}

// NewInvalidArgumentError creates an invalid argument error with CLI hints.
func NewInvalidArgumentError(arg, reason string) *CLIError {
	se := errors.New(errors.CodeInvalidInput, fmt.Sprintf("invalid argument: %s", reason), nil).
		WithContext("argument", arg).
		WithContext("reason", reason).
		WithRecoverable(false)
	return NewCLIError(se, "run 'studio help' for usage information")
}

// NewServeError wraps a web server failure.
func NewServeError(err error, addr string) *CLIError {
	se := errors.New(errors.CodeNetwork, "web server stopped", err).
		WithContext("address", addr).
		WithRecoverable(true)
	return NewCLIError(se, fmt.Sprintf("check that %s is free or pass --addr", addr))
}

// NewUnexpectedError wraps a fault that escaped the session loop.
func NewUnexpectedError(err error) *CLIError {
	se := errors.New(errors.CodeInternal, "unexpected error", err).WithRecoverable(false)
	return NewCLIError(se, "")
}

// FormatErrorCode returns a user-friendly name for error codes.
func FormatErrorCode(code errors.ErrorCode) string {
	switch code {
	case errors.CodeInternal:
		return "Internal Error"
	case errors.CodeInvalidInput:
		return "Invalid Input"
	case errors.CodeConfig:
		return "Configuration"
	case errors.CodeNotFound:
		return "Not Found"
	case errors.CodeUnauthorized:
		return "Unauthorized"
	case errors.CodeTimeout:
		return "Timeout"
	case errors.CodeCanceled:
		return "Canceled"
	case errors.CodeRateLimit:
		return "Rate Limited"
	case errors.CodeNetwork:
		return "Network"
	case errors.CodeLLMError:
		return "LLM Error"
	default:
		return string(code)
	}
}
