// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package session drives the interactive loop and keeps per-visitor result
// slots for the web front-end.
package session

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/errors"
	"github.com/multiagent-studio/studio/pkg/input"
	"github.com/multiagent-studio/studio/pkg/present"
)

// ErrMissingCredential is returned when the loop refuses to start. The user
// has already been told how to fix it.
var ErrMissingCredential = errors.New(errors.CodeConfig, "credential not configured", nil)

const continuePrompt = "\nDo you want to run another task? (yes/no): "

// Executor runs one request to an outcome.
type Executor interface {
	Execute(ctx context.Context, req core.ExecutionRequest) core.Outcome
}

// Loop is the interactive CLI session.
type Loop struct {
	collector   *input.Collector
	term        *present.Terminal
	exec        Executor
	credential  core.Credential
	model       string
	temperature float64
	logger      *slog.Logger
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithModel sets the model id used for every request.
func WithModel(model string) LoopOption {
	return func(l *Loop) { l.model = model }
}

// WithTemperature sets the sampling temperature used for every request.
func WithTemperature(t float64) LoopOption {
	return func(l *Loop) { l.temperature = t }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoop wires a session loop.
func NewLoop(collector *input.Collector, term *present.Terminal, exec Executor, credential core.Credential, opts ...LoopOption) *Loop {
	l := &Loop{
		collector:   collector,
		term:        term,
		exec:        exec,
		credential:  credential,
		model:       core.DefaultModel,
		temperature: core.DefaultTemperature,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes rounds until the user declines, input ends or the user
// interrupts. Only a missing credential or an unexpected input fault is
// returned as an error.
func (l *Loop) Run(ctx context.Context) error {
	if l.credential.Missing() {
		l.term.MissingCredential(l.credential.EnvVar)
		return ErrMissingCredential
	}
	l.term.Banner()

	for round := 1; ; round++ {
		sel, err := l.collector.Collect(ctx)
		switch {
		case stderrors.Is(err, input.ErrEmptyInput):
			l.term.Warn("No task entered. Please try again.")
			continue
		case stderrors.Is(err, input.ErrInterrupted), stderrors.Is(err, context.Canceled):
			l.term.Interrupted()
			return nil
		case stderrors.Is(err, io.EOF):
			l.term.Farewell()
			return nil
		case err != nil:
			return err
		}

		req, err := core.BuildRequest(sel.Role, sel.Task,
			core.WithModel(l.model),
			core.WithTemperature(l.temperature),
			core.WithCredential(l.credential.Value),
		)
		if err != nil {
			l.term.Warn("No task entered. Please try again.")
			continue
		}
		l.logger.Debug("session round", "round", round, "role", req.RoleName, "model", req.Model)

		l.term.Working(req.RoleName)
		l.term.Outcome(l.exec.Execute(ctx, req))

		again, err := l.collector.Confirm(ctx, continuePrompt)
		if stderrors.Is(err, input.ErrInterrupted) || stderrors.Is(err, context.Canceled) {
			l.term.Interrupted()
			return nil
		}
		if err != nil {
			return err
		}
		if !again {
			l.term.Farewell()
			return nil
		}
		l.term.Separator()
	}
}
