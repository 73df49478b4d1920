// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package agent implements role personas and the sequential crew that runs
// them against an LLM provider.
package agent

import (
	"github.com/multiagent-studio/studio/pkg/errors"
)

// WrapLLMError wraps a provider error. The code is inferred from the fault so
// logs and metrics can tell bad credentials from rate limits.
func WrapLLMError(err error, model string) *errors.StudioError {
	if err == nil {
		return nil
	}
	code := errors.Classify(err)
	return errors.New(code, "LLM call failed", err).
		WithContext("model", model).
		WithAttribute("llm.model", model).
		WithRecoverable(code == errors.CodeRateLimit || code == errors.CodeTimeout || code == errors.CodeNetwork)
}

// NewEmptyResponseError reports a model reply with no text.
func NewEmptyResponseError(model string) *errors.StudioError {
	return errors.New(errors.CodeLLMError, "model returned an empty response", nil).
		WithContext("model", model).
		WithAttribute("llm.model", model).
		WithRecoverable(true)
}

// NewInvalidInputError creates a new invalid input error.
func NewInvalidInputError(msg string) *errors.StudioError {
	return errors.New(errors.CodeInvalidInput, msg, nil).
		WithRecoverable(false)
}
