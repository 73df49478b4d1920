package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/llm"
	"github.com/multiagent-studio/studio/pkg/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrMissingProvider is returned when an agent is built without an LLM.
var ErrMissingProvider = errors.New("agent llm provider is required")

// Agent is a role persona backed by one LLM provider.
type Agent struct {
	role        string
	goal        string
	backstory   string
	provider    llm.Provider
	model       string
	temperature float64
	maxTokens   int
	verbose     bool
	logger      *slog.Logger
	metrics     *telemetry.ExecutionMetrics
	tracer      trace.Tracer
}

// Option configures an Agent instance.
type Option func(*Agent) error

// New creates an agent for role answering through provider.
func New(role string, provider llm.Provider, opts ...Option) (*Agent, error) {
	a := &Agent{
		role:        strings.TrimSpace(role),
		goal:        core.DefaultGoal,
		backstory:   core.DefaultBackstory,
		provider:    provider,
		temperature: core.DefaultTemperature,
		logger:      slog.Default(),
		tracer:      otel.Tracer("studio/agent"),
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	if a.role == "" {
		return nil, NewInvalidInputError("agent role is required")
	}
	if a.provider == nil {
		return nil, ErrMissingProvider
	}
	return a, nil
}

// WithGoal sets the agent goal. Blank values keep the default.
func WithGoal(goal string) Option {
	return func(a *Agent) error {
		if strings.TrimSpace(goal) != "" {
			a.goal = goal
		}
		return nil
	}
}

// WithBackstory sets the agent backstory. Blank values keep the default.
func WithBackstory(backstory string) Option {
	return func(a *Agent) error {
		if strings.TrimSpace(backstory) != "" {
			a.backstory = backstory
		}
		return nil
	}
}

// WithModel sets the model name passed to the provider.
func WithModel(model string) Option {
	return func(a *Agent) error {
		a.model = model
		return nil
	}
}

// WithTemperature sets the sampling temperature; it must lie in [0, 1].
func WithTemperature(t float64) Option {
	return func(a *Agent) error {
		if t < core.MinTemperature || t > core.MaxTemperature {
			return NewInvalidInputError(fmt.Sprintf("temperature %.2f out of range", t))
		}
		a.temperature = t
		return nil
	}
}

// WithMaxTokens bounds the length of each reply. Zero leaves it to the provider.
func WithMaxTokens(n int) Option {
	return func(a *Agent) error {
		if n < 0 {
			return NewInvalidInputError("max tokens must not be negative")
		}
		a.maxTokens = n
		return nil
	}
}

// WithVerbose logs prompts and replies at info level.
func WithVerbose(v bool) Option {
	return func(a *Agent) error {
		a.verbose = v
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) error {
		if l != nil {
			a.logger = l
		}
		return nil
	}
}

// WithMetrics records token usage on m.
func WithMetrics(m *telemetry.ExecutionMetrics) Option {
	return func(a *Agent) error {
		a.metrics = m
		return nil
	}
}

// Role returns the agent role.
func (a *Agent) Role() string { return a.role }

// Goal returns the agent goal.
func (a *Agent) Goal() string { return a.goal }

// Backstory returns the agent backstory.
func (a *Agent) Backstory() string { return a.backstory }

// Model returns the model name.
func (a *Agent) Model() string { return a.model }

// Temperature returns the sampling temperature.
func (a *Agent) Temperature() float64 { return a.temperature }

// Verbose reports whether verbose logging is on.
func (a *Agent) Verbose() bool { return a.verbose }

// Execute performs task and returns the reply text. priorOutputs are results
// of earlier tasks in the same crew, passed as context.
func (a *Agent) Execute(ctx context.Context, task *core.Task, priorOutputs []string) (string, error) {
	ctx, span := a.tracer.Start(ctx, "Agent.Execute")
	defer span.End()

	runID, _ := core.RunID(ctx)
	span.SetAttributes(telemetry.ExecutionAttributes(a.role, a.model, runID, a.temperature)...)
	span.SetAttributes(telemetry.TaskAttributes(task.ID, string(task.Status), len(task.Description))...)

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt(a.role, a.goal, a.backstory)},
		{Role: llm.RoleUser, Content: taskPrompt(task.Description, task.ExpectedOutput, priorOutputs)},
	}
	if a.verbose {
		a.logger.InfoContext(ctx, "agent.prompt",
			slog.String("role", a.role),
			slog.String("run_id", runID),
			slog.String("task", task.Description),
		)
	}

	span.SetAttributes(telemetry.LLMAttributes(a.model, "", len(messages))...)
	start := time.Now()
	resp, err := a.provider.Chat(ctx, llm.ChatRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	elapsed := time.Since(start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", WrapLLMError(err, a.model)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		err := NewEmptyResponseError(a.model)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	span.SetAttributes(telemetry.LLMUsageAttributes(resp.Usage.PromptTokens, resp.Usage.CompletionTokens, float64(elapsed.Milliseconds()))...)
	a.metrics.RecordTokens(ctx, a.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	a.logger.DebugContext(ctx, "agent.reply",
		slog.String("role", a.role),
		slog.String("run_id", runID),
		slog.Int("chars", len(resp.Content)),
		slog.Duration("elapsed", elapsed),
	)
	if a.verbose {
		a.logger.InfoContext(ctx, "agent.final_answer",
			slog.String("role", a.role),
			slog.String("answer", resp.Content),
		)
	}
	return resp.Content, nil
}
