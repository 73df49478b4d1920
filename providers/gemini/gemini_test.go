// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/multiagent-studio/studio/pkg/llm"
	"google.golang.org/genai"
)

func TestWithModel(t *testing.T) {
	p := &Provider{model: DefaultModel}
	WithModel("gemini-2.5-pro")(p)
	if p.model != "gemini-2.5-pro" {
		t.Errorf("expected model gemini-2.5-pro, got %s", p.model)
	}
	WithModel("")(p)
	if p.model != "gemini-2.5-pro" {
		t.Errorf("empty model must not override, got %s", p.model)
	}
}

func TestConvertMessages(t *testing.T) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: "You are helpful"},
		{Role: llm.RoleUser, Content: "Hello"},
		{Role: llm.RoleAssistant, Content: "Hi there"},
	}

	contents, systemInstruction := convertMessages(messages)

	if systemInstruction != "You are helpful" {
		t.Errorf("expected system instruction 'You are helpful', got %s", systemInstruction)
	}
	if len(contents) != 2 {
		t.Fatalf("expected 2 contents, got %d", len(contents))
	}
	if contents[0].Role != "user" || contents[1].Role != "model" {
		t.Errorf("unexpected roles %s, %s", contents[0].Role, contents[1].Role)
	}
}

func TestConvertResponse(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Hello "},
				{Text: "world"},
			}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     3,
			CandidatesTokenCount: 2,
			TotalTokenCount:      5,
		},
	}
	got := convertResponse(resp)
	if got.Content != "Hello world" {
		t.Errorf("content = %q", got.Content)
	}
	if got.Usage.TotalTokens != 5 {
		t.Errorf("usage = %+v", got.Usage)
	}
	if convertResponse(nil).Content != "" {
		t.Errorf("nil response must map to empty content")
	}
}

func TestChatAgainstFakeEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": "OK"}},
				},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	p, err := New(context.Background(), "test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	resp, err := p.Chat(context.Background(), llm.ChatRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Say OK"}},
		Temperature: 0.7,
	})
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if resp.Content != "OK" {
		t.Errorf("expected OK, got %q", resp.Content)
	}
}

func TestClose(t *testing.T) {
	p := &Provider{}
	if err := p.Close(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestChatSendsZeroTemperature(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": "OK"}}},
				"finishReason": "STOP",
			}},
		})
	}))
	defer srv.Close()

	p, err := New(context.Background(), "test-key", WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := p.Chat(context.Background(), llm.ChatRequest{
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: "Say OK"}},
		Temperature: 0,
	}); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	cfg, _ := body["generationConfig"].(map[string]any)
	got, ok := cfg["temperature"]
	if !ok || got != 0.0 {
		t.Errorf("temperature 0 must be sent, generationConfig = %v", cfg)
	}
}
