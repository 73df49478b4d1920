// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package telemetry provides OpenTelemetry integration for agent runs.
package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys. LLM keys follow the gen_ai semantic conventions.
const (
	AttrAgentRole  = "studio.agent.role"
	AttrAgentModel = "studio.agent.model"
	AttrRunID      = "studio.run.id"
	AttrSessionID  = "studio.session.id"

	AttrTaskID     = "studio.task.id"
	AttrTaskStatus = "studio.task.status"
	AttrTaskLength = "studio.task.length"

	AttrOutcome   = "studio.execution.outcome"
	AttrErrorCode = "error.code"

	AttrLLMModel        = "gen_ai.request.model"
	AttrLLMProvider     = "gen_ai.system"
	AttrLLMTemperature  = "gen_ai.request.temperature"
	AttrLLMMessages     = "gen_ai.request.messages"
	AttrLLMTokensInput  = "gen_ai.usage.input_tokens"
	AttrLLMTokensOutput = "gen_ai.usage.output_tokens"
	AttrLLMTokensTotal  = "gen_ai.usage.total_tokens"
	AttrLLMDurationMs   = "gen_ai.duration_ms"

	AttrEventType = "studio.event.type"
)

// ExecutionAttributes describes one gateway execution.
func ExecutionAttributes(role, model, runID string, temperature float64) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrAgentRole, role),
		attribute.String(AttrAgentModel, model),
		attribute.Float64(AttrLLMTemperature, temperature),
	}
	if runID != "" {
		attrs = append(attrs, attribute.String(AttrRunID, runID))
	}
	return attrs
}

// TaskAttributes returns attributes for task tracking. The task text itself
// is not recorded, only its length.
func TaskAttributes(taskID, status string, length int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrTaskID, taskID),
		attribute.Int(AttrTaskLength, length),
	}
	if status != "" {
		attrs = append(attrs, attribute.String(AttrTaskStatus, status))
	}
	return attrs
}

// LLMAttributes returns attributes for LLM call spans.
func LLMAttributes(model, provider string, msgCount int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String(AttrLLMModel, model),
		attribute.Int(AttrLLMMessages, msgCount),
	}
	if provider != "" {
		attrs = append(attrs, attribute.String(AttrLLMProvider, provider))
	}
	return attrs
}

// LLMUsageAttributes returns token usage attributes.
func LLMUsageAttributes(inputTokens, outputTokens int, durationMs float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrLLMTokensInput, inputTokens),
		attribute.Int(AttrLLMTokensOutput, outputTokens),
		attribute.Int(AttrLLMTokensTotal, inputTokens+outputTokens),
		attribute.Float64(AttrLLMDurationMs, durationMs),
	}
}

// OutcomeAttributes tags the end of an execution. code is empty on success.
func OutcomeAttributes(outcome, code string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(AttrOutcome, outcome)}
	if code != "" {
		attrs = append(attrs, attribute.String(AttrErrorCode, code))
	}
	return attrs
}

// SessionAttributes tags web requests with the browser session.
func SessionAttributes(sessionID string) []attribute.KeyValue {
	if sessionID == "" {
		return nil
	}
	return []attribute.KeyValue{attribute.String(AttrSessionID, sessionID)}
}
