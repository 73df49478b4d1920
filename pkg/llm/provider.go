package llm

import (
	"context"
	"strings"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single unit of communication.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest encapsulates the input for the LLM.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

// ChatResponse encapsulates the output from the LLM.
type ChatResponse struct {
	Content string `json:"content"`
	Usage   Usage  `json:"usage"`
}

// Usage tracks token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Provider defines the interface for interacting with LLM backends.
type Provider interface {
	// Chat sends a chat request to the LLM and returns the response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// DefaultBackend is assumed for model identifiers without a "backend/" prefix.
const DefaultBackend = "gemini"

// SplitModel splits a "backend/model" identifier. Identifiers without a
// prefix belong to DefaultBackend.
//
//	SplitModel("gemini/gemini-2.5-flash") // "gemini", "gemini-2.5-flash"
//	SplitModel("gpt-4o-mini")             // "gemini", "gpt-4o-mini"
func SplitModel(id string) (backend, model string) {
	id = strings.TrimSpace(id)
	if i := strings.Index(id, "/"); i > 0 {
		return strings.ToLower(id[:i]), id[i+1:]
	}
	return DefaultBackend, id
}

// SystemAndUser partitions messages into one system prompt and the rest.
// Providers whose APIs take the system prompt out-of-band use it.
func SystemAndUser(msgs []Message) (system string, rest []Message) {
	var sys []string
	for _, m := range msgs {
		if m.Role == RoleSystem {
			sys = append(sys, m.Content)
			continue
		}
		rest = append(rest, m)
	}
	return strings.Join(sys, "\n\n"), rest
}
