// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package telemetry

import (
	"context"
	"fmt"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/multiagent-studio/studio/pkg/errors"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestExecutionMetricsRecords(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewExecutionMetrics(provider.Meter(MeterName))
	if err != nil {
		t.Fatalf("NewExecutionMetrics: %v", err)
	}

	ctx := context.Background()
	m.RecordExecution(ctx, "gemini/gemini-2.5-flash", nil, 1500*time.Millisecond)
	m.RecordExecution(ctx, "gemini/gemini-2.5-flash", errors.New(errors.CodeUnauthorized, "bad key", nil), time.Second)
	m.RecordExecution(ctx, "gemini/gemini-2.5-flash", fmt.Errorf("boom"), time.Second)
	m.RecordTokens(ctx, "gemini-2.5-flash", 10, 5)

	got := collect(t, reader)

	execs, ok := got["studio.executions.total"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("executions metric missing or wrong type: %+v", got["studio.executions.total"])
	}
	var total int64
	for _, dp := range execs.DataPoints {
		total += dp.Value
	}
	if total != 3 {
		t.Errorf("expected 3 executions, got %d", total)
	}
	if len(execs.DataPoints) != 3 {
		t.Errorf("expected 3 attribute sets (success, unauthorized, llm), got %d", len(execs.DataPoints))
	}

	if _, ok := got["studio.execution.duration"].Data.(metricdata.Histogram[float64]); !ok {
		t.Errorf("duration histogram missing")
	}

	tokens, ok := got["studio.llm.tokens"].Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("tokens metric missing")
	}
	var tokenTotal int64
	for _, dp := range tokens.DataPoints {
		tokenTotal += dp.Value
	}
	if tokenTotal != 15 {
		t.Errorf("expected 15 tokens, got %d", tokenTotal)
	}
}

func TestNilExecutionMetrics(t *testing.T) {
	var m *ExecutionMetrics
	m.RecordExecution(context.Background(), "m", nil, time.Second)
	m.RecordTokens(context.Background(), "m", 1, 1)
}

func TestExecutionMetricsGlobalMeter(t *testing.T) {
	m, err := NewExecutionMetrics(nil)
	if err != nil || m == nil {
		t.Fatalf("expected metrics on global meter, got %v", err)
	}
	m.RecordExecution(context.Background(), "m", nil, time.Millisecond)
}
