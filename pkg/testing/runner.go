// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"sync"

	"github.com/multiagent-studio/studio/pkg/core"
)

// StubRunner is a canned execution runner. It satisfies the gateway's Runner
// interface and records the requests it receives.
type StubRunner struct {
	mu       sync.Mutex
	Text     string
	Err      error
	Panic    any
	requests []core.ExecutionRequest
}

// Succeeding returns a runner that always answers text.
func Succeeding(text string) *StubRunner { return &StubRunner{Text: text} }

// Failing returns a runner that always fails with err.
func Failing(err error) *StubRunner { return &StubRunner{Err: err} }

// Panicking returns a runner that panics with v.
func Panicking(v any) *StubRunner { return &StubRunner{Panic: v} }

// RunOnce records req and returns the canned result.
func (s *StubRunner) RunOnce(_ context.Context, req core.ExecutionRequest) (string, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.Panic != nil {
		panic(s.Panic)
	}
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Requests returns every request received.
func (s *StubRunner) Requests() []core.ExecutionRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.ExecutionRequest(nil), s.requests...)
}

// Calls returns how many times RunOnce was called.
func (s *StubRunner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
