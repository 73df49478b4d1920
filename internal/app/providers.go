// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/multiagent-studio/studio/pkg/errors"
	"github.com/multiagent-studio/studio/pkg/gateway"
	"github.com/multiagent-studio/studio/pkg/llm"
	"github.com/multiagent-studio/studio/providers/anthropic"
	"github.com/multiagent-studio/studio/providers/gemini"
	"github.com/multiagent-studio/studio/providers/openai"
)

// DashScopeBaseURL is the OpenAI-compatible endpoint used for qwen models.
const DashScopeBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"

// Backends the factory can route to.
const (
	BackendGemini    = "gemini"
	BackendOpenAI    = "openai"
	BackendAnthropic = "anthropic"
	BackendQwen      = "qwen"
	BackendOllama    = "ollama"
	BackendMock      = "mock"
)

// ProviderConfig tunes provider construction.
type ProviderConfig struct {
	// BaseURL overrides the endpoint of Backend only.
	Backend    string
	BaseURL    string
	HTTPClient *http.Client
}

func (c ProviderConfig) baseURL(backend, fallback string) string {
	if c.BaseURL != "" && strings.EqualFold(c.Backend, backend) {
		return c.BaseURL
	}
	return fallback
}

// NewProviderFactory routes "backend/model" ids to provider implementations.
// Client-side retries are disabled: a failed call is reported as is.
func NewProviderFactory(cfg ProviderConfig) gateway.ProviderFactory {
	return func(ctx context.Context, modelID, credential string) (llm.Provider, string, error) {
		backend, model := llm.SplitModel(modelID)
		if strings.TrimSpace(model) == "" {
			return nil, "", errors.New(errors.CodeInvalidInput, fmt.Sprintf("model id %q names no model", modelID), nil)
		}
		if needsCredential(backend) && strings.TrimSpace(credential) == "" {
			return nil, "", errors.New(errors.CodeUnauthorized, "missing API key for "+backend, nil)
		}

		switch backend {
		case BackendGemini:
			opts := []gemini.Option{gemini.WithModel(model), gemini.WithBaseURL(cfg.baseURL(backend, ""))}
			if cfg.HTTPClient != nil {
				opts = append(opts, gemini.WithHTTPClient(cfg.HTTPClient))
			}
			p, err := gemini.New(ctx, credential, opts...)
			if err != nil {
				return nil, "", errors.New(errors.CodeConfig, "create gemini client", err)
			}
			return p, model, nil
		case BackendOpenAI, BackendQwen:
			fallback := ""
			if backend == BackendQwen {
				fallback = DashScopeBaseURL
			}
			opts := []openai.Option{
				openai.WithAPIKey(credential),
				openai.WithModel(model),
				openai.WithBaseURL(cfg.baseURL(backend, fallback)),
				openai.WithMaxRetries(0),
			}
			if cfg.HTTPClient != nil {
				opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
			}
			return openai.New(opts...), model, nil
		case BackendAnthropic:
			opts := []anthropic.Option{
				anthropic.WithAPIKey(credential),
				anthropic.WithModel(model),
				anthropic.WithBaseURL(cfg.baseURL(backend, "")),
				anthropic.WithMaxRetries(0),
			}
			if cfg.HTTPClient != nil {
				opts = append(opts, anthropic.WithHTTPClient(cfg.HTTPClient))
			}
			return anthropic.New(opts...), model, nil
		case BackendOllama:
			var opts []llm.OllamaOption
			if cfg.HTTPClient != nil {
				opts = append(opts, llm.WithOllamaHTTPClient(cfg.HTTPClient))
			}
			return llm.NewOllama(cfg.baseURL(backend, llm.DefaultOllamaURL), opts...), model, nil
		case BackendMock:
			return newEchoProvider(), model, nil
		default:
			return nil, "", errors.New(errors.CodeConfig, fmt.Sprintf("unknown model backend %q", backend), nil)
		}
	}
}

func needsCredential(backend string) bool {
	switch backend {
	case BackendGemini, BackendOpenAI, BackendAnthropic, BackendQwen:
		return true
	}
	return false
}

// newEchoProvider answers every request by restating the task. It lets the
// whole pipeline run offline.
func newEchoProvider() *llm.MockProvider {
	return &llm.MockProvider{ChatFunc: func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		system, rest := llm.SystemAndUser(req.Messages)
		persona, _, _ := strings.Cut(system, "\n")
		var task string
		if len(rest) > 0 {
			task = rest[len(rest)-1].Content
		}
		return &llm.ChatResponse{Content: fmt.Sprintf("[mock %s] %s\n\n%s", req.Model, persona, task)}, nil
	}}
}
