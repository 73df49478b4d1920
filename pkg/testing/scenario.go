// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package testing provides utilities for testing executions end to end.
//
// This package includes:
//   - Scenario definitions for declarative execution tests
//   - A scripted LLM provider and a canned runner
//   - Assertion helpers for captured model requests
//   - An event collector for crew events
//
// Example usage:
//
//	scenario := stest.NewScenario("python expert").
//	    WithRequest(req).
//	    ExpectSuccess().
//	    ExpectText(stest.Contains("def add"))
//
//	result := scenario.Run(t, gw)
//	result.Assert(t, scenario)
package testing

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/multiagent-studio/studio/pkg/core"
)

// Executor runs one request to an outcome. The gateway satisfies it.
type Executor interface {
	Execute(ctx context.Context, req core.ExecutionRequest) core.Outcome
}

// Scenario defines a test scenario for one execution.
type Scenario struct {
	name         string
	request      core.ExecutionRequest
	context      context.Context
	timeout      time.Duration
	events       *EventCollector
	expectations []Expectation
}

// Expectation defines a condition to verify after running a scenario.
type Expectation interface {
	// Check verifies the expectation against the result.
	Check(result *ScenarioResult) error
	// Description returns a human-readable description of the expectation.
	Description() string
}

// ScenarioResult contains the outcome of running a scenario.
type ScenarioResult struct {
	Outcome  core.Outcome
	Events   []core.Event
	Duration time.Duration
}

// NewScenario creates a new test scenario with the given name.
func NewScenario(name string) *Scenario {
	return &Scenario{
		name:    name,
		context: context.Background(),
		timeout: 30 * time.Second,
	}
}

// WithRequest sets the request to execute.
func (s *Scenario) WithRequest(req core.ExecutionRequest) *Scenario {
	s.request = req
	return s
}

// WithContext sets the base context.
func (s *Scenario) WithContext(ctx context.Context) *Scenario {
	s.context = ctx
	return s
}

// WithTimeout bounds the run.
func (s *Scenario) WithTimeout(d time.Duration) *Scenario {
	s.timeout = d
	return s
}

// WithEvents attaches a collector whose events end up in the result.
func (s *Scenario) WithEvents(c *EventCollector) *Scenario {
	s.events = c
	return s
}

// Expect adds an expectation.
func (s *Scenario) Expect(exp Expectation) *Scenario {
	s.expectations = append(s.expectations, exp)
	return s
}

// ExpectSuccess requires a Success outcome.
func (s *Scenario) ExpectSuccess() *Scenario {
	return s.Expect(&kindExpectation{want: core.OutcomeSuccess})
}

// ExpectFailure requires a Failure outcome.
func (s *Scenario) ExpectFailure() *Scenario {
	return s.Expect(&kindExpectation{want: core.OutcomeFailure})
}

// ExpectText matches the outcome text.
func (s *Scenario) ExpectText(matcher StringMatcher) *Scenario {
	return s.Expect(&textExpectation{matcher: matcher})
}

// ExpectEvent requires an event of the given type.
func (s *Scenario) ExpectEvent(eventType core.EventType) *Scenario {
	return s.Expect(&eventExpectation{eventType: eventType})
}

// ExpectMaxDuration bounds the run time.
func (s *Scenario) ExpectMaxDuration(d time.Duration) *Scenario {
	return s.Expect(&maxDurationExpectation{max: d})
}

// Run executes the scenario against exec.
func (s *Scenario) Run(t *testing.T, exec Executor) *ScenarioResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(s.context, s.timeout)
	defer cancel()

	start := time.Now()
	outcome := exec.Execute(ctx, s.request)
	result := &ScenarioResult{
		Outcome:  outcome,
		Duration: time.Since(start),
	}
	if s.events != nil {
		result.Events = s.events.Events()
	}
	return result
}

// Assert checks all expectations and reports failures to the test.
func (r *ScenarioResult) Assert(t *testing.T, scenario *Scenario) {
	t.Helper()

	for _, exp := range scenario.expectations {
		if err := exp.Check(r); err != nil {
			t.Errorf("scenario %q: expectation %q failed: %v", scenario.name, exp.Description(), err)
		}
	}
}

// StringMatcher defines how to match strings in expectations.
type StringMatcher interface {
	Match(s string) bool
	Description() string
}

// Contains returns a matcher that checks if the string contains the substring.
func Contains(substr string) StringMatcher {
	return &containsMatcher{substr: substr}
}

// Equals returns a matcher that checks exact string equality.
func Equals(expected string) StringMatcher {
	return &equalsMatcher{expected: expected}
}

// Regex returns a matcher that checks against a regular expression.
func Regex(pattern string) StringMatcher {
	return &regexMatcher{pattern: pattern}
}

// HasPrefix returns a matcher that checks if the string has the given prefix.
func HasPrefix(prefix string) StringMatcher {
	return &prefixMatcher{prefix: prefix}
}

type containsMatcher struct {
	substr string
}

func (m *containsMatcher) Match(s string) bool { return strings.Contains(s, m.substr) }

func (m *containsMatcher) Description() string { return fmt.Sprintf("contains %q", m.substr) }

type equalsMatcher struct {
	expected string
}

func (m *equalsMatcher) Match(s string) bool { return s == m.expected }

func (m *equalsMatcher) Description() string { return fmt.Sprintf("equals %q", m.expected) }

type regexMatcher struct {
	pattern string
}

func (m *regexMatcher) Match(s string) bool {
	re, err := regexp.Compile(m.pattern)
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

func (m *regexMatcher) Description() string { return fmt.Sprintf("matches /%s/", m.pattern) }

type prefixMatcher struct {
	prefix string
}

func (m *prefixMatcher) Match(s string) bool { return strings.HasPrefix(s, m.prefix) }

func (m *prefixMatcher) Description() string { return fmt.Sprintf("has prefix %q", m.prefix) }

type kindExpectation struct {
	want core.OutcomeKind
}

func (e *kindExpectation) Check(r *ScenarioResult) error {
	if r.Outcome.Kind != e.want {
		return fmt.Errorf("got %s outcome: %s", r.Outcome.Kind, r.Outcome.Text)
	}
	return nil
}

func (e *kindExpectation) Description() string { return fmt.Sprintf("outcome is %s", e.want) }

type textExpectation struct {
	matcher StringMatcher
}

func (e *textExpectation) Check(r *ScenarioResult) error {
	if !e.matcher.Match(r.Outcome.Text) {
		return fmt.Errorf("text %q does not satisfy %s", r.Outcome.Text, e.matcher.Description())
	}
	return nil
}

func (e *textExpectation) Description() string { return "text " + e.matcher.Description() }

type eventExpectation struct {
	eventType core.EventType
}

func (e *eventExpectation) Check(r *ScenarioResult) error {
	for _, ev := range r.Events {
		if ev.Type == e.eventType {
			return nil
		}
	}
	return fmt.Errorf("event %s not emitted", e.eventType)
}

func (e *eventExpectation) Description() string { return fmt.Sprintf("emits %s", e.eventType) }

type maxDurationExpectation struct {
	max time.Duration
}

func (e *maxDurationExpectation) Check(r *ScenarioResult) error {
	if r.Duration > e.max {
		return fmt.Errorf("took %v", r.Duration)
	}
	return nil
}

func (e *maxDurationExpectation) Description() string {
	return fmt.Sprintf("duration <= %v", e.max)
}

// EventCollector collects crew events. It implements core.EventEmitter.
type EventCollector struct {
	mu     sync.RWMutex
	events []core.Event
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{}
}

// Emit implements core.EventEmitter.
func (c *EventCollector) Emit(_ context.Context, event core.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

// Events returns all collected events.
func (c *EventCollector) Events() []core.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]core.Event, len(c.events))
	copy(result, c.events)
	return result
}

// EventTypes returns the types of all collected events.
func (c *EventCollector) EventTypes() []core.EventType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	types := make([]core.EventType, len(c.events))
	for i, ev := range c.events {
		types[i] = ev.Type
	}
	return types
}

// HasEvent checks if an event of the given type was collected.
func (c *EventCollector) HasEvent(eventType core.EventType) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ev := range c.events {
		if ev.Type == eventType {
			return true
		}
	}
	return false
}

// Reset clears all collected events.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
}
