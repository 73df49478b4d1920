// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package gateway is the single integration point between the front-ends and
// the agent runtime. Every fault, including panics, becomes a Failure outcome.
package gateway

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/errors"
	"github.com/multiagent-studio/studio/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Runner executes one request and returns the reply text.
type Runner interface {
	RunOnce(ctx context.Context, req core.ExecutionRequest) (string, error)
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, req core.ExecutionRequest) (string, error)

// RunOnce implements Runner.
func (f RunnerFunc) RunOnce(ctx context.Context, req core.ExecutionRequest) (string, error) {
	return f(ctx, req)
}

// FailurePrefix starts every failure message.
const FailurePrefix = "Error: "

// Gateway normalizes Runner results into outcomes.
type Gateway struct {
	runner  Runner
	logger  *slog.Logger
	metrics *telemetry.ExecutionMetrics
	tracer  trace.Tracer
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithMetrics records every execution on m.
func WithMetrics(m *telemetry.ExecutionMetrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// New builds a gateway around runner.
func New(runner Runner, opts ...Option) *Gateway {
	g := &Gateway{
		runner: runner,
		logger: slog.Default(),
		tracer: otel.Tracer("studio/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Execute runs req once. It never returns an error and never panics: faults
// are reported as core.Failure("Error: <description>").
func (g *Gateway) Execute(ctx context.Context, req core.ExecutionRequest) (out core.Outcome) {
	ctx, runID := core.EnsureRunID(ctx)
	ctx, span := g.tracer.Start(ctx, "Gateway.Execute")
	defer span.End()
	span.SetAttributes(telemetry.ExecutionAttributes(req.RoleName, req.Model, runID, req.Temperature)...)

	log := g.logger.With(
		slog.String("run_id", runID),
		slog.String("role", req.RoleName),
		slog.String("model", req.Model),
	)
	log.DebugContext(ctx, "gateway.execute.start", slog.Float64("temperature", req.Temperature), slog.Int("task_chars", len(req.Task)))

	start := time.Now()
	var err error
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.CodeInternal, fmt.Sprintf("panic: %v", r), nil)
			log.ErrorContext(ctx, "gateway.execute.panic",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			out = core.Failure(FailurePrefix + fmt.Sprint(r))
		}
		g.finish(ctx, span, log, req.Model, err, time.Since(start))
	}()

	if g.runner == nil {
		err = errors.New(errors.CodeConfig, "no runner configured", nil)
		return core.Failure(FailurePrefix + "no runner configured")
	}

	text, runErr := g.runner.RunOnce(ctx, req)
	if runErr != nil {
		err = runErr
		return core.Failure(FailurePrefix + describe(runErr))
	}
	return core.Success(text)
}

// describe renders err for the user. Coded errors drop their code prefix.
func describe(err error) string {
	var se *errors.StudioError
	if stderrors.As(err, &se) {
		if se.Err != nil {
			return se.Message + ": " + se.Err.Error()
		}
		return se.Message
	}
	return err.Error()
}

func (g *Gateway) finish(ctx context.Context, span trace.Span, log *slog.Logger, model string, err error, elapsed time.Duration) {
	g.metrics.RecordExecution(ctx, model, err, elapsed)
	if err == nil {
		span.SetAttributes(telemetry.OutcomeAttributes(string(core.OutcomeSuccess), "")...)
		log.InfoContext(ctx, "gateway.execute.success", slog.Duration("elapsed", elapsed))
		return
	}
	code := errors.CodeOf(err)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.SetAttributes(telemetry.OutcomeAttributes(string(core.OutcomeFailure), string(code))...)
	log.WarnContext(ctx, "gateway.execute.failure",
		slog.String("code", string(code)),
		slog.String("error", err.Error()),
		slog.Duration("elapsed", elapsed),
	)
}
