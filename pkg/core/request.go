package core

import (
	"errors"
	"math"
	"strings"
)

const (
	// DefaultModel is the hosted model used when the caller does not choose one.
	DefaultModel = "gemini/gemini-2.5-flash"
	// DefaultTemperature is the sampling temperature used when none is given.
	DefaultTemperature = 0.7
	// ExpectedOutput is what every task asks the agent to deliver.
	ExpectedOutput = "Complete, well-structured response"

	MinTemperature = 0.0
	MaxTemperature = 1.0
)

// ErrEmptyTask is returned when a request would carry no task text.
var ErrEmptyTask = errors.New("task description is empty")

// ExecutionRequest is everything the gateway needs for one run. It is built
// fresh per invocation and never stored.
type ExecutionRequest struct {
	RoleName    string
	Goal        string
	Backstory   string
	Task        string
	Model       string
	Temperature float64
	Credential  string
}

// RequestOption overrides a request default.
type RequestOption func(*ExecutionRequest)

// WithModel overrides the model identifier. Blank values keep the default.
func WithModel(model string) RequestOption {
	return func(r *ExecutionRequest) {
		if m := strings.TrimSpace(model); m != "" {
			r.Model = m
		}
	}
}

// WithTemperature overrides the temperature; the value is clamped.
func WithTemperature(t float64) RequestOption {
	return func(r *ExecutionRequest) {
		r.Temperature = ClampTemperature(t)
	}
}

// WithCredential sets the secret used by the model client.
func WithCredential(credential string) RequestOption {
	return func(r *ExecutionRequest) {
		r.Credential = credential
	}
}

// BuildRequest assembles a request from a role and task text.
func BuildRequest(role RoleDefinition, task string, opts ...RequestOption) (ExecutionRequest, error) {
	return NewExecutionRequest(role.Name, role.Goal, role.Backstory, task, opts...)
}

// NewExecutionRequest assembles a request from its raw parts. Blank goal and
// backstory take the generic defaults.
func NewExecutionRequest(roleName, goal, backstory, task string, opts ...RequestOption) (ExecutionRequest, error) {
	if strings.TrimSpace(task) == "" {
		return ExecutionRequest{}, ErrEmptyTask
	}
	if strings.TrimSpace(goal) == "" {
		goal = DefaultGoal
	}
	if strings.TrimSpace(backstory) == "" {
		backstory = DefaultBackstory
	}
	req := ExecutionRequest{
		RoleName:    strings.TrimSpace(roleName),
		Goal:        goal,
		Backstory:   backstory,
		Task:        task,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(&req)
	}
	req.Temperature = ClampTemperature(req.Temperature)
	return req, nil
}

// ClampTemperature forces t into [MinTemperature, MaxTemperature]. NaN maps to
// DefaultTemperature.
func ClampTemperature(t float64) float64 {
	switch {
	case math.IsNaN(t):
		return DefaultTemperature
	case t < MinTemperature:
		return MinTemperature
	case t > MaxTemperature:
		return MaxTemperature
	default:
		return t
	}
}

// Redacted returns a copy safe to log.
func (r ExecutionRequest) Redacted() ExecutionRequest {
	if r.Credential != "" {
		r.Credential = "***"
	}
	return r
}
