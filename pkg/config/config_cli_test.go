package config

import (
	"path/filepath"
	"testing"

	"github.com/multiagent-studio/studio/pkg/errors"
)

func TestLoadWithSetOverrides(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "settings.yaml", `
llm:
  model: "gemini/gemini-2.5-flash"
telemetry:
  exporter: stdout
`)
	t.Setenv("STUDIO_LLM_MODEL", "openai/gpt-4o")

	cfg, err := LoadWithOptions(Options{Path: path, DotEnv: "-", Overrides: []string{
		"llm.model=anthropic/claude-sonnet-4-20250514",
		"llm.temperature=0.3",
		"cli.markdown=true",
		"llm.models=[a/one, b/two]",
		"web.max_sessions=12",
	}})
	if err != nil {
		t.Fatalf("LoadWithOptions failed: %v", err)
	}
	if cfg.LLM.Model != "anthropic/claude-sonnet-4-20250514" {
		t.Fatalf("expected cli override model, got %s", cfg.LLM.Model)
	}
	if cfg.LLM.Temperature != 0.3 || !cfg.CLI.Markdown || cfg.Web.MaxSessions != 12 {
		t.Fatalf("typed overrides not applied: %+v", cfg)
	}
	if len(cfg.LLM.Models) != 2 || cfg.LLM.Models[0] != "a/one" {
		t.Fatalf("expected list override, got %v", cfg.LLM.Models)
	}
	if cfg.Telemetry.Exporter != "stdout" {
		t.Fatalf("expected file value to survive, got %s", cfg.Telemetry.Exporter)
	}
}

func TestLoadTelemetryHeadersFromSet(t *testing.T) {
	cfg, err := LoadWithOptions(Options{DotEnv: "-", Overrides: []string{
		"telemetry.exporter=otlp",
		"telemetry.otlp_endpoint=collector:4317",
		"telemetry.otlp_headers.x-api-key=secret-token",
		"telemetry.otlp_headers.x-org-id=org-123",
	}})
	if err != nil {
		t.Fatalf("LoadWithOptions failed: %v", err)
	}
	if cfg.Telemetry.Exporter != "otlp" || cfg.Telemetry.OTLPEndpoint != "collector:4317" {
		t.Errorf("unexpected telemetry %+v", cfg.Telemetry)
	}
	headers := cfg.Telemetry.OTLPHeaders
	if headers["x-api-key"] != "secret-token" || headers["x-org-id"] != "org-123" {
		t.Errorf("unexpected headers %v", headers)
	}
}

func TestMalformedSetIsConfigError(t *testing.T) {
	for _, raw := range []string{"invalid", "=value", "  =x"} {
		_, err := LoadWithOptions(Options{DotEnv: "-", Overrides: []string{raw}})
		if errors.CodeOf(err) != errors.CodeConfig {
			t.Errorf("--set %q: expected config error, got %v", raw, err)
		}
	}
}

func TestParseSetTypes(t *testing.T) {
	tests := []struct {
		raw  string
		key  string
		want interface{}
	}{
		{"llm.max_tokens=256", "llm.max_tokens", 256},
		{"cli.markdown=true", "cli.markdown", true},
		{"llm.model=openai/gpt-4o", "llm.model", "openai/gpt-4o"},
		{"llm.api_key=", "llm.api_key", ""},
	}
	for _, tc := range tests {
		key, value, err := parseSet(tc.raw)
		if err != nil {
			t.Fatalf("parseSet(%q) failed: %v", tc.raw, err)
		}
		if key != tc.key || value != tc.want {
			t.Errorf("parseSet(%q) = %q, %#v; want %q, %#v", tc.raw, key, value, tc.key, tc.want)
		}
	}
	if _, v, _ := parseSet("llm.models=a/one,b/two"); len(v.([]string)) != 2 {
		t.Errorf("comma separated models must split, got %#v", v)
	}
}

func TestLoadMissingConfigWithOverrides(t *testing.T) {
	opts := Options{Path: filepath.Join(t.TempDir(), "nope.yaml"), DotEnv: "-", Overrides: []string{"log.level=debug"}}
	if _, err := LoadWithOptions(opts); err == nil {
		t.Fatal("expected error")
	}
}
