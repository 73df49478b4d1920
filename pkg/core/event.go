package core

import (
	"context"
	"time"
)

// EventType identifies a semantic event emitted while a crew runs.
type EventType string

const (
	EventCrewStarted        EventType = "crew.started"
	EventCrewCompleted      EventType = "crew.completed"
	EventAgentTaskStarted   EventType = "agent.task.started"
	EventAgentTaskCompleted EventType = "agent.task.completed"
	EventAgentError         EventType = "agent.error"
)

// Event captures a semantic logging event.
type Event struct {
	Type      EventType
	Agent     string
	TaskID    string
	RunID     string
	Timestamp time.Time
	Payload   map[string]any
}

// EventEmitter receives semantic events.
type EventEmitter interface {
	Emit(ctx context.Context, event Event)
}

// NoopEventEmitter discards events.
type NoopEventEmitter struct{}

// Emit implements EventEmitter.
func (NoopEventEmitter) Emit(_ context.Context, _ Event) {}

// EventEmitterFunc adapts a function to EventEmitter.
type EventEmitterFunc func(ctx context.Context, event Event)

// Emit implements EventEmitter.
func (f EventEmitterFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }

// NewEvent builds an event stamped with the current time and the run id
// carried by ctx.
func NewEvent(ctx context.Context, eventType EventType, agent, taskID string, payload map[string]any) Event {
	runID, _ := RunID(ctx)
	return Event{
		Type:      eventType,
		Agent:     agent,
		TaskID:    taskID,
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}
