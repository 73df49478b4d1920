package gateway

import (
	"context"
	"log/slog"

	"github.com/multiagent-studio/studio/pkg/agent"
	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/llm"
	"github.com/multiagent-studio/studio/pkg/telemetry"
)

// ProviderFactory builds an LLM provider for a "backend/model" identifier.
// It returns the provider and the bare model name to request.
type ProviderFactory func(ctx context.Context, modelID, credential string) (llm.Provider, string, error)

// CrewRunner runs each request as a one-agent, one-task crew.
type CrewRunner struct {
	factory   ProviderFactory
	maxTokens int
	emitter   core.EventEmitter
	logger    *slog.Logger
	metrics   *telemetry.ExecutionMetrics
}

// CrewRunnerOption configures a CrewRunner.
type CrewRunnerOption func(*CrewRunner)

// WithMaxTokens bounds each reply.
func WithMaxTokens(n int) CrewRunnerOption {
	return func(r *CrewRunner) { r.maxTokens = n }
}

// WithEventEmitter forwards crew events.
func WithEventEmitter(e core.EventEmitter) CrewRunnerOption {
	return func(r *CrewRunner) { r.emitter = e }
}

// WithRunnerLogger sets the logger handed to agents and crews.
func WithRunnerLogger(l *slog.Logger) CrewRunnerOption {
	return func(r *CrewRunner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTokenMetrics records token usage.
func WithTokenMetrics(m *telemetry.ExecutionMetrics) CrewRunnerOption {
	return func(r *CrewRunner) { r.metrics = m }
}

// NewCrewRunner creates a runner that builds providers with factory.
func NewCrewRunner(factory ProviderFactory, opts ...CrewRunnerOption) *CrewRunner {
	r := &CrewRunner{
		factory: factory,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunOnce implements Runner.
func (r *CrewRunner) RunOnce(ctx context.Context, req core.ExecutionRequest) (string, error) {
	provider, model, err := r.factory(ctx, req.Model, req.Credential)
	if err != nil {
		return "", err
	}

	a, err := agent.New(req.RoleName, provider,
		agent.WithGoal(req.Goal),
		agent.WithBackstory(req.Backstory),
		agent.WithModel(model),
		agent.WithTemperature(core.ClampTemperature(req.Temperature)),
		agent.WithMaxTokens(r.maxTokens),
		agent.WithVerbose(false),
		agent.WithLogger(r.logger),
		agent.WithMetrics(r.metrics),
	)
	if err != nil {
		return "", err
	}

	crew := agent.NewCrew(
		[]agent.Assignment{agent.NewAssignment(a, req.Task, core.ExpectedOutput)},
		agent.WithCrewVerbose(false),
		agent.WithEventEmitter(r.emitter),
		agent.WithCrewLogger(r.logger),
	)
	out, err := crew.Kickoff(ctx)
	if err != nil {
		return "", err
	}
	return out.Raw, nil
}
