// Package config loads layered settings: defaults, YAML file, profile
// overlay, .env file, STUDIO_ environment and --set overrides, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/errors"
)

// EnvPrefix marks environment variables that map onto config keys.
const EnvPrefix = "STUDIO_"

// DefaultDotEnv is read from the working directory when present.
const DefaultDotEnv = ".env"

type Config struct {
	Log       LogConfig       `koanf:"log"`
	LLM       LLMConfig       `koanf:"llm"`
	Roles     RolesConfig     `koanf:"roles"`
	Web       WebConfig       `koanf:"web"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	CLI       CLIConfig       `koanf:"cli"`

	// Credential is resolved once at load time from the provider's
	// conventional variable. It is never read from YAML.
	Credential core.Credential `koanf:"-"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json, text
}

type LLMConfig struct {
	Model       string   `koanf:"model"`  // backend/model
	Models      []string `koanf:"models"` // offered by the web selector
	Temperature float64  `koanf:"temperature"`
	BaseURL     string   `koanf:"base_url"`
	APIKey      string   `koanf:"api_key"`
	MaxTokens   int      `koanf:"max_tokens"`
}

type RolesConfig struct {
	File    string `koanf:"file"`
	Default string `koanf:"default"`
}

type WebConfig struct {
	Addr        string `koanf:"addr"`
	MaxSessions int    `koanf:"max_sessions"`
}

type TelemetryConfig struct {
	Exporter     string            `koanf:"exporter"` // none, stdout, otlp
	OTLPEndpoint string            `koanf:"otlp_endpoint"`
	OTLPInsecure bool              `koanf:"otlp_insecure"`
	OTLPHeaders  map[string]string `koanf:"otlp_headers"`
	ServiceName  string            `koanf:"service_name"`
}

type CLIConfig struct {
	Markdown bool   `koanf:"markdown"`
	Color    string `koanf:"color"` // auto, always, never
}

// Options selects the sources Load reads.
type Options struct {
	Path    string
	Profile string
	// DotEnv is the .env file. Empty means DefaultDotEnv; "-" disables it.
	DotEnv    string
	Overrides []string
}

func setDefaults(k *koanf.Koanf) {
	k.Set("log.level", "info")
	k.Set("log.format", "text")
	k.Set("llm.model", core.DefaultModel)
	k.Set("llm.models", []string{"gemini/gemini-2.5-flash", "gemini/gemini-2.5-pro"})
	k.Set("llm.temperature", core.DefaultTemperature)
	k.Set("llm.max_tokens", 0)
	k.Set("roles.default", core.DefaultRoleID)
	k.Set("web.addr", ":8501")
	k.Set("web.max_sessions", 1024)
	k.Set("telemetry.exporter", "none")
	k.Set("telemetry.otlp_endpoint", "localhost:4317")
	k.Set("telemetry.otlp_insecure", true)
	k.Set("telemetry.service_name", "studio")
	k.Set("cli.markdown", false)
	k.Set("cli.color", "auto")
}

// LoadWithOptions builds a fresh koanf instance per call.
func LoadWithOptions(opts Options) (*Config, error) {
	k := koanf.New(".")
	setDefaults(k)

	if opts.Path != "" {
		if err := k.Load(file.Provider(opts.Path), yaml.Parser()); err != nil {
			return nil, configError("read config file", err).WithContext("path", opts.Path)
		}
		if overlay := profileConfigPath(opts.Path, opts.Profile); overlay != "" {
			if err := k.Load(file.Provider(overlay), yaml.Parser()); err != nil {
				return nil, configError("read profile config", err).WithContext("path", overlay)
			}
		}
	}

	dotValues, err := loadDotEnv(opts.DotEnv)
	if err != nil {
		return nil, err
	}
	for key, value := range dotValues {
		if name, ok := envKey(key); ok {
			k.Set(name, envValue(name, value))
		}
	}

	// STUDIO_LLM_MODEL -> llm.model, STUDIO_LLM_MAX_TOKENS -> llm.max_tokens
	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, interface{}) {
		name, ok := envKey(key)
		if !ok {
			return "", nil
		}
		return name, envValue(name, value)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, configError("read environment", err)
	}

	for _, raw := range opts.Overrides {
		key, value, err := parseSet(raw)
		if err != nil {
			return nil, err
		}
		k.Set(key, value)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, configError("decode config", err)
	}
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Credential = ResolveCredential(cfg.LLM.Model, cfg.LLM.APIKey, func(name string) string {
		if v, ok := os.LookupEnv(name); ok && strings.TrimSpace(v) != "" {
			return v
		}
		return dotValues[name]
	})
	return &cfg, nil
}

func (c *Config) normalize() {
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.Telemetry.Exporter = strings.ToLower(strings.TrimSpace(c.Telemetry.Exporter))
	c.CLI.Color = strings.ToLower(strings.TrimSpace(c.CLI.Color))

	models := c.LLM.Models[:0]
	seen := map[string]bool{}
	for _, m := range c.LLM.Models {
		m = strings.TrimSpace(m)
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		models = append(models, m)
	}
	c.LLM.Models = models
}

// Validate reports the first invalid setting as a config error.
func (c *Config) Validate() error {
	switch {
	case c.LLM.Model == "":
		return configError("llm.model is required", nil)
	case c.LLM.Temperature < core.MinTemperature || c.LLM.Temperature > core.MaxTemperature:
		return configError(fmt.Sprintf("llm.temperature must be within [0, 1], got %v", c.LLM.Temperature), nil)
	case c.LLM.MaxTokens < 0:
		return configError("llm.max_tokens must not be negative", nil)
	case c.Web.MaxSessions < 0:
		return configError("web.max_sessions must not be negative", nil)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return configError(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format), nil)
	}
	switch c.Telemetry.Exporter {
	case "none", "stdout", "otlp":
	default:
		return configError(fmt.Sprintf("unknown telemetry.exporter %q", c.Telemetry.Exporter), nil)
	}
	switch c.CLI.Color {
	case "auto", "always", "never":
	default:
		return configError(fmt.Sprintf("cli.color must be auto, always or never, got %q", c.CLI.Color), nil)
	}
	return nil
}

// WebModels returns the selector entries, with the configured model first
// when it is not already listed.
func (c *Config) WebModels() []string {
	for _, m := range c.LLM.Models {
		if m == c.LLM.Model {
			return c.LLM.Models
		}
	}
	return append([]string{c.LLM.Model}, c.LLM.Models...)
}

func configError(msg string, err error) *errors.StudioError {
	return errors.New(errors.CodeConfig, msg, err).WithRecoverable(false)
}

// envKey maps STUDIO_SECTION_SOME_KEY to section.some_key.
func envKey(name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, EnvPrefix)
	if !ok || rest == "" {
		return "", false
	}
	section, key, ok := strings.Cut(strings.ToLower(rest), "_")
	if !ok || key == "" {
		return "", false
	}
	return section + "." + key, true
}

func envValue(key, value string) interface{} {
	if key == "llm.models" {
		var out []string
		for _, m := range strings.Split(value, ",") {
			if m = strings.TrimSpace(m); m != "" {
				out = append(out, m)
			}
		}
		return out
	}
	return value
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "-" {
		return nil, nil
	}
	explicit := path != ""
	if !explicit {
		path = DefaultDotEnv
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, configError("read dotenv file", err).WithContext("path", path)
		}
		return nil, nil
	}
	dk := koanf.New("|")
	if err := dk.Load(file.Provider(path), dotenv.Parser()); err != nil {
		return nil, configError("parse dotenv file", err).WithContext("path", path)
	}
	values := make(map[string]string, len(dk.Keys()))
	for _, key := range dk.Keys() {
		values[key] = dk.String(key)
	}
	return values, nil
}

// profileConfigPath returns config.<profile>.yaml beside base if it exists.
func profileConfigPath(base, profile string) string {
	if base == "" || profile == "" {
		return ""
	}
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(filepath.Base(base), ext)
	candidate := filepath.Join(filepath.Dir(base), name+"."+profile+ext)
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}
