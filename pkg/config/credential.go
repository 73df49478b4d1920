package config

import (
	"strings"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/llm"
)

// credentialVars lists, per backend, the variables searched in order. The
// first entry is the one named in user-facing messages.
var credentialVars = map[string][]string{
	"gemini":    {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
	"openai":    {"OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_API_KEY"},
	"qwen":      {"DASHSCOPE_API_KEY"},
}

// ResolveCredential finds the key for the backend of model. An explicit key
// (llm.api_key, usually from STUDIO_LLM_API_KEY) wins. Backends without an
// entry need no key.
func ResolveCredential(model, explicit string, lookup func(string) string) core.Credential {
	backend, _ := llm.SplitModel(model)
	vars, required := credentialVars[backend]
	cred := core.Credential{Provider: backend, Required: required}
	if required {
		cred.EnvVar = vars[0]
	}
	if v := strings.TrimSpace(explicit); v != "" {
		cred.Value = v
		return cred
	}
	if lookup == nil {
		return cred
	}
	for _, name := range vars {
		if v := strings.TrimSpace(lookup(name)); v != "" {
			cred.Value = v
			return cred
		}
	}
	return cred
}
