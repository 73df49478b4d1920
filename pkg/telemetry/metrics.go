// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/multiagent-studio/studio/pkg/errors"
)

// MeterName is the instrumentation scope for studio metrics.
const MeterName = "studio"

// ExecutionMetrics counts executions, their latency and token usage.
// A nil *ExecutionMetrics is valid and records nothing.
type ExecutionMetrics struct {
	executions metric.Int64Counter
	duration   metric.Float64Histogram
	tokens     metric.Int64Counter
}

// NewExecutionMetrics creates the instruments on meter. A nil meter uses the
// global provider.
func NewExecutionMetrics(meter metric.Meter) (*ExecutionMetrics, error) {
	if meter == nil {
		meter = otel.Meter(MeterName)
	}

	executions, err := meter.Int64Counter(
		"studio.executions.total",
		metric.WithDescription("Agent executions by outcome and model"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"studio.execution.duration",
		metric.WithDescription("Wall-clock time of one agent execution"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	tokens, err := meter.Int64Counter(
		"studio.llm.tokens",
		metric.WithDescription("Tokens consumed by model calls"),
	)
	if err != nil {
		return nil, err
	}

	return &ExecutionMetrics{
		executions: executions,
		duration:   duration,
		tokens:     tokens,
	}, nil
}

// RecordExecution records one finished execution. err is nil on success.
func (m *ExecutionMetrics) RecordExecution(ctx context.Context, model string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	attrs := []attribute.KeyValue{attribute.String(AttrAgentModel, model)}
	if err != nil {
		outcome = "failure"
		attrs = append(attrs, attribute.String(AttrErrorCode, string(errors.CodeOf(err))))
	}
	attrs = append(attrs, attribute.String(AttrOutcome, outcome))

	m.executions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
}

// RecordTokens adds token usage for one model call.
func (m *ExecutionMetrics) RecordTokens(ctx context.Context, model string, input, output int) {
	if m == nil {
		return
	}
	m.tokens.Add(ctx, int64(input), metric.WithAttributes(
		attribute.String(AttrLLMModel, model),
		attribute.String("direction", "input"),
	))
	m.tokens.Add(ctx, int64(output), metric.WithAttributes(
		attribute.String(AttrLLMModel, model),
		attribute.String("direction", "output"),
	))
}
