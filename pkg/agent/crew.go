package agent

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/multiagent-studio/studio/pkg/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrNoTasks is returned by Kickoff on a crew without tasks.
var ErrNoTasks = errors.New("crew has no tasks")

// Assignment binds a task to the agent that performs it.
type Assignment struct {
	Task  *core.Task
	Agent *Agent
}

// NewAssignment creates a task for a and binds them.
func NewAssignment(a *Agent, description, expectedOutput string) Assignment {
	return Assignment{
		Task:  core.NewTask(description, expectedOutput, a.Role()),
		Agent: a,
	}
}

// TaskOutput is the result of one task.
type TaskOutput struct {
	TaskID string
	Agent  string
	Raw    string
}

// CrewOutput is the result of a kickoff. Raw holds the final task's text.
type CrewOutput struct {
	Raw      string
	Tasks    []TaskOutput
	Duration time.Duration
}

// Crew runs assignments sequentially; each task sees the outputs of the
// tasks before it.
type Crew struct {
	assignments []Assignment
	verbose     bool
	emitter     core.EventEmitter
	logger      *slog.Logger
	tracer      trace.Tracer
}

// CrewOption configures a Crew.
type CrewOption func(*Crew)

// WithCrewVerbose logs task boundaries at info level.
func WithCrewVerbose(v bool) CrewOption {
	return func(c *Crew) { c.verbose = v }
}

// WithEventEmitter receives crew and task events.
func WithEventEmitter(e core.EventEmitter) CrewOption {
	return func(c *Crew) {
		if e != nil {
			c.emitter = e
		}
	}
}

// WithCrewLogger sets the logger.
func WithCrewLogger(l *slog.Logger) CrewOption {
	return func(c *Crew) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCrew builds a crew from assignments.
func NewCrew(assignments []Assignment, opts ...CrewOption) *Crew {
	c := &Crew{
		assignments: append([]Assignment(nil), assignments...),
		emitter:     core.NoopEventEmitter{},
		logger:      slog.Default(),
		tracer:      otel.Tracer("studio/crew"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Kickoff runs every task once, in order, and blocks until the last one
// finishes or one fails.
func (c *Crew) Kickoff(ctx context.Context) (*CrewOutput, error) {
	if len(c.assignments) == 0 {
		return nil, ErrNoTasks
	}
	ctx, runID := core.EnsureRunID(ctx)
	ctx, span := c.tracer.Start(ctx, "Crew.Kickoff")
	defer span.End()

	start := time.Now()
	c.emitter.Emit(ctx, core.NewEvent(ctx, core.EventCrewStarted, "", "", map[string]any{
		"tasks": len(c.assignments),
	}))

	out := &CrewOutput{Tasks: make([]TaskOutput, 0, len(c.assignments))}
	var prior []string
	for _, as := range c.assignments {
		if as.Agent == nil || as.Task == nil {
			err := NewInvalidInputError("assignment needs both a task and an agent")
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		task := as.Task
		role := as.Agent.Role()

		task.Start()
		c.emitter.Emit(ctx, core.NewEvent(ctx, core.EventAgentTaskStarted, role, task.ID, nil))
		if c.verbose {
			c.logger.InfoContext(ctx, "crew.task.started",
				slog.String("run_id", runID),
				slog.String("task_id", task.ID),
				slog.String("agent", role),
			)
		}

		text, err := as.Agent.Execute(ctx, task, prior)
		if err != nil {
			task.Fail(err.Error())
			c.emitter.Emit(ctx, core.NewEvent(ctx, core.EventAgentError, role, task.ID, map[string]any{
				"error": err.Error(),
			}))
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}

		task.Complete(text)
		c.emitter.Emit(ctx, core.NewEvent(ctx, core.EventAgentTaskCompleted, role, task.ID, map[string]any{
			"duration_ms": task.Duration().Milliseconds(),
		}))
		out.Tasks = append(out.Tasks, TaskOutput{TaskID: task.ID, Agent: role, Raw: text})
		prior = append(prior, strings.TrimSpace(text))
	}

	out.Raw = out.Tasks[len(out.Tasks)-1].Raw
	out.Duration = time.Since(start)
	c.emitter.Emit(ctx, core.NewEvent(ctx, core.EventCrewCompleted, "", "", map[string]any{
		"duration_ms": out.Duration.Milliseconds(),
	}))
	return out, nil
}
