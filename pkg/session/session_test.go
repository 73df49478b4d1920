// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/input"
	"github.com/multiagent-studio/studio/pkg/present"
)

type recordingExecutor struct {
	mu       sync.Mutex
	outcome  core.Outcome
	requests []core.ExecutionRequest
}

func (e *recordingExecutor) Execute(_ context.Context, req core.ExecutionRequest) core.Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.requests = append(e.requests, req)
	return e.outcome
}

var validCredential = core.Credential{Provider: "gemini", EnvVar: "GOOGLE_API_KEY", Value: "test-key", Required: true}

func newLoop(lines []string, exec Executor, cred core.Credential) (*Loop, *bytes.Buffer) {
	var out bytes.Buffer
	src := input.NewSliceSource(lines...)
	collector := input.NewCollector(src, core.NewCatalog(), &out)
	return NewLoop(collector, present.NewTerminal(&out, present.WithColor(false)), exec, cred), &out
}

func TestLoopSingleRoundThenNo(t *testing.T) {
	exec := &recordingExecutor{outcome: core.Success("def add(a, b): return a + b")}
	loop, out := newLoop([]string{"2", "Write a function that adds two numbers", "", "no"}, exec, validCredential)

	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.requests) != 1 {
		t.Fatalf("expected one execution, got %d", len(exec.requests))
	}
	req := exec.requests[0]
	if req.RoleName != "Python Expert" || req.Credential != "test-key" || req.Model != core.DefaultModel {
		t.Errorf("unexpected request %+v", req.Redacted())
	}
	text := out.String()
	for _, want := range []string{"MultiAgent Studio - CLI", "AGENT IS WORKING...", "AGENT RESPONSE", "return a + b", "Thank you for using the AI Agent! Goodbye!"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestLoopContinueAnswers(t *testing.T) {
	tests := []struct {
		name   string
		answer []string
		runs   int
	}{
		{"yes runs again", []string{"yes", "1", "second", "", "n"}, 2},
		{"y runs again", []string{"Y", "1", "second", "", "no"}, 2},
		{"anything else stops", []string{"maybe"}, 1},
		{"eof stops", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &recordingExecutor{outcome: core.Success("OK")}
			lines := append([]string{"1", "first", ""}, tt.answer...)
			loop, out := newLoop(lines, exec, validCredential)
			if err := loop.Run(context.Background()); err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if len(exec.requests) != tt.runs {
				t.Errorf("executions = %d, want %d", len(exec.requests), tt.runs)
			}
			if !strings.Contains(out.String(), "Goodbye!") {
				t.Errorf("expected farewell")
			}
		})
	}
}

func TestLoopEmptyTaskRestarts(t *testing.T) {
	exec := &recordingExecutor{outcome: core.Success("OK")}
	loop, out := newLoop([]string{"1", "   ", "", "1", "real task", "", "no"}, exec, validCredential)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "No task entered. Please try again.") {
		t.Errorf("expected empty-task warning")
	}
	if len(exec.requests) != 1 || exec.requests[0].Task != "real task" {
		t.Errorf("unexpected executions %+v", exec.requests)
	}
}

func TestLoopShowsFailure(t *testing.T) {
	exec := &recordingExecutor{outcome: core.Failure("Error: invalid API key")}
	loop, out := newLoop([]string{"1", "task", "", "no"}, exec, validCredential)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "❌ ERROR:") || !strings.Contains(out.String(), "Error: invalid API key") {
		t.Errorf("expected failure display:\n%s", out.String())
	}
}

func TestLoopMissingCredential(t *testing.T) {
	exec := &recordingExecutor{}
	cred := core.Credential{Provider: "gemini", EnvVar: "GOOGLE_API_KEY", Required: true}
	src := input.NewSliceSource("1", "task", "")
	var out bytes.Buffer
	loop := NewLoop(input.NewCollector(src, nil, &out), present.NewTerminal(&out, present.WithColor(false)), exec, cred)

	err := loop.Run(context.Background())
	if !stderrors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
	if len(exec.requests) != 0 {
		t.Errorf("no execution may be attempted")
	}
	if len(src.Prompts()) != 0 {
		t.Errorf("no prompt may be shown, got %q", src.Prompts())
	}
	if !strings.Contains(out.String(), "GOOGLE_API_KEY not found!") {
		t.Errorf("expected configuration message, got %q", out.String())
	}
}

func TestLoopCredentialNotRequired(t *testing.T) {
	exec := &recordingExecutor{outcome: core.Success("OK")}
	loop, _ := newLoop([]string{"1", "task", "", "no"}, exec, core.Credential{Provider: "ollama"})
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(exec.requests) != 1 {
		t.Errorf("expected one execution")
	}
}

type interruptingSource struct{ *input.SliceSource }

func (s interruptingSource) ReadLine(ctx context.Context, prompt string) (string, error) {
	line, err := s.SliceSource.ReadLine(ctx, prompt)
	if stderrors.Is(err, io.EOF) {
		return "", input.ErrInterrupted
	}
	return line, err
}

func TestLoopInterrupted(t *testing.T) {
	var out bytes.Buffer
	src := interruptingSource{input.NewSliceSource("1")}
	exec := &recordingExecutor{}
	loop := NewLoop(input.NewCollector(src, nil, &out), present.NewTerminal(&out, present.WithColor(false)), exec, validCredential,
		WithModel("openai/gpt-4o-mini"), WithTemperature(0.3))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(out.String(), "Interrupted by user. Goodbye!") {
		t.Errorf("expected interrupt farewell:\n%s", out.String())
	}
	if len(exec.requests) != 0 {
		t.Errorf("no execution expected")
	}
}

func TestLoopPassesModelAndTemperature(t *testing.T) {
	exec := &recordingExecutor{outcome: core.Success("OK")}
	var out bytes.Buffer
	collector := input.NewCollector(input.NewSliceSource("3", "write", "", "no"), nil, &out)
	loop := NewLoop(collector, present.NewTerminal(&out, present.WithColor(false)), exec, validCredential,
		WithModel("openai/gpt-4o-mini"), WithTemperature(0.3))
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if exec.requests[0].Model != "openai/gpt-4o-mini" || exec.requests[0].Temperature != 0.3 {
		t.Errorf("unexpected request %+v", exec.requests[0].Redacted())
	}
}

func TestStore(t *testing.T) {
	s, err := NewStore(2)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	a := s.Open()
	if slot, ok := s.Get(a); !ok || !slot.Outcome.IsZero() {
		t.Fatalf("fresh session must have an empty slot, got %+v %v", slot, ok)
	}
	s.Put(a, Slot{Outcome: core.Success("first")})
	s.Put(a, Slot{Outcome: core.Success("second")})
	slot, _ := s.Get(a)
	if slot.Outcome.Text != "second" || slot.UpdatedAt.IsZero() {
		t.Errorf("slot must be overwritten, got %+v", slot)
	}

	b := s.Open()
	c := s.Open()
	if a == b || b == c {
		t.Fatalf("session ids must be unique")
	}
	if _, ok := s.Get(a); ok {
		t.Errorf("oldest session should be evicted")
	}
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestStoreConcurrentPuts(t *testing.T) {
	s, _ := NewStore(0)
	id := s.Open()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Put(id, Slot{Outcome: core.Success("x")})
		}()
	}
	wg.Wait()
	if slot, ok := s.Get(id); !ok || slot.Outcome.Text != "x" {
		t.Errorf("unexpected slot %+v", slot)
	}
}

func TestLoopInterruptedWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	var out syncBuffer
	src := input.NewReaderSource(pr, &out)
	exec := &recordingExecutor{}
	loop := NewLoop(input.NewCollector(src, nil, &out), present.NewTerminal(&out, present.WithColor(false)), exec, validCredential)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- loop.Run(ctx) }()

	// Wait for the role prompt, then interrupt with nothing typed.
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "Enter your choice") {
		if time.Now().After(deadline) {
			t.Fatal("role prompt never shown")
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run still waiting for input after interrupt")
	}
	if !strings.Contains(out.String(), "Interrupted by user. Goodbye!") {
		t.Errorf("expected interrupt farewell:\n%s", out.String())
	}
	if len(exec.requests) != 0 {
		t.Errorf("no execution expected")
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
