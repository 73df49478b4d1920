// Copyright 2026 © The Studio Authors
// SPDX-License-Identifier: Apache-2.0

// Package app is the composition root shared by the CLI and web commands.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/multiagent-studio/studio/pkg/config"
	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/gateway"
	"github.com/multiagent-studio/studio/pkg/input"
	"github.com/multiagent-studio/studio/pkg/llm"
	"github.com/multiagent-studio/studio/pkg/present"
	"github.com/multiagent-studio/studio/pkg/session"
	"github.com/multiagent-studio/studio/pkg/telemetry"
	"github.com/multiagent-studio/studio/pkg/web"
)

// Version is stamped at build time.
var Version = "dev"

// Settings is the immutable view of configuration handed to components.
type Settings struct {
	catalog     *core.Catalog
	credential  core.Credential
	model       string
	models      []string
	temperature float64
	maxTokens   int
	baseURL     string
	webAddr     string
	maxSessions int
	markdown    bool
	color       string
}

// NewSettings derives Settings from a loaded config, reading the extra roles
// file when one is configured.
func NewSettings(cfg *config.Config) (Settings, error) {
	var extra []core.RoleDefinition
	if cfg.Roles.File != "" {
		roles, err := core.LoadRoles(cfg.Roles.File)
		if err != nil {
			return Settings{}, err
		}
		extra = roles
	}
	return Settings{
		catalog:     core.NewCatalog(core.WithExtraRoles(extra...), core.WithDefaultRole(cfg.Roles.Default)),
		credential:  cfg.Credential,
		model:       cfg.LLM.Model,
		models:      append([]string(nil), cfg.WebModels()...),
		temperature: cfg.LLM.Temperature,
		maxTokens:   cfg.LLM.MaxTokens,
		baseURL:     cfg.LLM.BaseURL,
		webAddr:     cfg.Web.Addr,
		maxSessions: cfg.Web.MaxSessions,
		markdown:    cfg.CLI.Markdown,
		color:       cfg.CLI.Color,
	}, nil
}

func (s Settings) Catalog() *core.Catalog { return s.catalog }
func (s Settings) Credential() core.Credential { return s.credential }
func (s Settings) Model() string { return s.model }
func (s Settings) Models() []string { return append([]string(nil), s.models...) }
func (s Settings) Temperature() float64 { return s.temperature }
func (s Settings) WebAddr() string { return s.webAddr }

// App wires the gateway, telemetry and front-ends together.
type App struct {
	settings Settings
	logger   *slog.Logger
	gateway  *gateway.Gateway
	shutdown telemetry.ShutdownFunc
}

// Option configures an App.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	factory   gateway.ProviderFactory
	telemetry *telemetry.Config
	emitter   core.EventEmitter
}

// WithLogger replaces the logger built from config.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithProviderFactory replaces provider routing, typically in tests.
func WithProviderFactory(f gateway.ProviderFactory) Option {
	return func(o *options) { o.factory = f }
}

// WithTelemetry overrides the exporter settings from config.
func WithTelemetry(cfg telemetry.Config) Option {
	return func(o *options) { o.telemetry = &cfg }
}

// WithEventEmitter receives crew lifecycle events.
func WithEventEmitter(e core.EventEmitter) Option {
	return func(o *options) { o.emitter = e }
}

// New builds the application from cfg. Close must be called to flush
// telemetry.
func New(cfg *config.Config, opts ...Option) (*App, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	settings, err := NewSettings(cfg)
	if err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = telemetry.ConfigureSlog(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	}

	tcfg := telemetry.Config{
		Exporter:     cfg.Telemetry.Exporter,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure: cfg.Telemetry.OTLPInsecure,
		OTLPHeaders:  cfg.Telemetry.OTLPHeaders,
	}
	if o.telemetry != nil {
		tcfg = *o.telemetry
	}
	shutdown, err := telemetry.InitWithConfig(cfg.Telemetry.ServiceName, Version, tcfg)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	metrics, err := telemetry.NewExecutionMetrics(nil)
	if err != nil {
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	factory := o.factory
	if factory == nil {
		backend, _ := llm.SplitModel(settings.model)
		factory = NewProviderFactory(ProviderConfig{Backend: backend, BaseURL: settings.baseURL})
	}
	emitter := o.emitter
	if emitter == nil {
		emitter = logEmitter(logger)
	}

	runner := gateway.NewCrewRunner(factory,
		gateway.WithMaxTokens(settings.maxTokens),
		gateway.WithEventEmitter(emitter),
		gateway.WithRunnerLogger(logger),
		gateway.WithTokenMetrics(metrics),
	)
	return &App{
		settings: settings,
		logger:   logger,
		gateway:  gateway.New(runner, gateway.WithLogger(logger), gateway.WithMetrics(metrics)),
		shutdown: shutdown,
	}, nil
}

// Settings returns the immutable settings.
func (a *App) Settings() Settings { return a.settings }

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger { return a.logger }

// Gateway returns the execution gateway.
func (a *App) Gateway() *gateway.Gateway { return a.gateway }

// Close flushes telemetry.
func (a *App) Close(ctx context.Context) error {
	if a.shutdown == nil {
		return nil
	}
	return a.shutdown(ctx)
}

// NewTerminal builds the presenter for out according to cli settings. Extra
// options apply before the color setting, so cli.color always wins.
func (a *App) NewTerminal(out io.Writer, extra ...present.TerminalOption) *present.Terminal {
	opts := append(append([]present.TerminalOption(nil), extra...), present.WithMarkdown(a.settings.markdown))
	switch a.settings.color {
	case "always":
		opts = append(opts, present.WithColor(true))
	case "never":
		opts = append(opts, present.WithColor(false))
	}
	return present.NewTerminal(out, opts...)
}

// NewLoop builds the interactive session reading from src.
func (a *App) NewLoop(src input.LineSource, out io.Writer, extra ...present.TerminalOption) *session.Loop {
	collector := input.NewCollector(src, a.settings.catalog, out)
	return session.NewLoop(collector, a.NewTerminal(out, extra...), a.gateway, a.settings.credential,
		session.WithModel(a.settings.model),
		session.WithTemperature(a.settings.temperature),
		session.WithLogger(a.logger),
	)
}

// NewWebServer builds the web front-end.
func (a *App) NewWebServer() (*web.Server, error) {
	store, err := session.NewStore(a.settings.maxSessions)
	if err != nil {
		return nil, err
	}
	return web.NewServer(web.Config{
		Executor:    a.gateway,
		Store:       store,
		Catalog:     a.settings.catalog,
		Credential:  a.settings.credential,
		Models:      a.settings.Models(),
		Temperature: a.settings.temperature,
		Logger:      a.logger,
	})
}

func logEmitter(logger *slog.Logger) core.EventEmitter {
	return core.EventEmitterFunc(func(ctx context.Context, e core.Event) {
		logger.DebugContext(ctx, "crew event", "type", string(e.Type), "agent", e.Agent, "task_id", e.TaskID)
	})
}
