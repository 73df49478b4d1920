// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package testing

import (
	"context"
	"errors"
	"testing"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/llm"
)

func TestScenarioProviderScript(t *testing.T) {
	p := NewScenarioProvider().
		AddScriptedResponse(ScriptedResponse{
			Content:   "only for python",
			Condition: func(req llm.ChatRequest) bool { return req.Model == "python" },
		}).
		AddResponse("first").
		AddErrorResponse(errors.New("boom"))

	resp, err := p.Chat(context.Background(), llm.ChatRequest{Model: "other"})
	RequireNoError(t, err, "first call")
	RequireEqual(t, "first", resp.Content, "conditional response must be skipped")

	if _, err := p.Chat(context.Background(), llm.ChatRequest{}); err == nil || err.Error() != "boom" {
		t.Fatalf("expected scripted error, got %v", err)
	}
	if _, err := p.Chat(context.Background(), llm.ChatRequest{}); err == nil {
		t.Fatal("expected exhaustion error")
	}
	RequireEqual(t, 3, p.CallCount(), "call count")

	p.Reset()
	if p.CallCount() != 0 || p.LastRequest() != nil {
		t.Fatal("reset must clear requests")
	}
}

func TestScenarioProviderDefaultsAndChatFunc(t *testing.T) {
	sentinel := errors.New("offline")
	p := NewScenarioProvider().WithDefaultError(sentinel)
	if _, err := p.Chat(context.Background(), llm.ChatRequest{}); !errors.Is(err, sentinel) {
		t.Fatalf("expected default error, got %v", err)
	}

	p = NewScenarioProvider().WithChatFunc(func(req llm.ChatRequest) (*llm.ChatResponse, error) {
		return &llm.ChatResponse{Content: "echo " + req.Model}, nil
	})
	resp, _ := p.Chat(context.Background(), llm.ChatRequest{Model: "m"})
	RequireEqual(t, "echo m", resp.Content, "chat func")
}

func TestRequestAssertions(t *testing.T) {
	req := &llm.ChatRequest{
		Model:       "gemini-2.5-flash",
		Temperature: 0.7,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: "You are Python Expert."},
			{Role: llm.RoleUser, Content: "Current Task: add numbers"},
		},
	}
	AssertRequest(t, req).
		HasModel("gemini-2.5-flash").
		HasTemperature(0.7).
		HasMessageCount(2).
		HasSystemMessage("Python Expert").
		HasUserMessage("add numbers")
}

type outcomeFunc func(ctx context.Context, req core.ExecutionRequest) core.Outcome

func (f outcomeFunc) Execute(ctx context.Context, req core.ExecutionRequest) core.Outcome {
	return f(ctx, req)
}

func TestScenarioRun(t *testing.T) {
	events := NewEventCollector()
	exec := outcomeFunc(func(ctx context.Context, req core.ExecutionRequest) core.Outcome {
		events.Emit(ctx, core.NewEvent(ctx, core.EventCrewCompleted, "", "", nil))
		return core.Success("Hello " + req.RoleName)
	})

	scenario := NewScenario("greeting").
		WithRequest(core.ExecutionRequest{RoleName: "Writer", Task: "hi"}).
		WithEvents(events).
		ExpectSuccess().
		ExpectText(Equals("Hello Writer")).
		ExpectText(HasPrefix("Hello")).
		ExpectText(Regex(`^Hello \w+$`)).
		ExpectEvent(core.EventCrewCompleted)

	scenario.Run(t, exec).Assert(t, scenario)
}

func TestStubRunner(t *testing.T) {
	ok := Succeeding("OK")
	text, err := ok.RunOnce(context.Background(), core.ExecutionRequest{Task: "t"})
	if err != nil || text != "OK" {
		t.Fatalf("unexpected %q %v", text, err)
	}
	if ok.Calls() != 1 || ok.Requests()[0].Task != "t" {
		t.Fatal("request not recorded")
	}

	if _, err := Failing(errors.New("nope")).RunOnce(context.Background(), core.ExecutionRequest{}); err == nil {
		t.Fatal("expected error")
	}

	defer func() {
		if r := recover(); r != "kaboom" {
			t.Fatalf("expected panic kaboom, got %v", r)
		}
	}()
	_, _ = Panicking("kaboom").RunOnce(context.Background(), core.ExecutionRequest{})
}
