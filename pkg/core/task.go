package core

import (
	"time"

	"github.com/google/uuid"
)

// TaskStatus describes the lifecycle state of a task.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is a unit of work handed to an agent.
type Task struct {
	ID             string
	Description    string
	ExpectedOutput string
	AssignedTo     string
	Status         TaskStatus
	Result         string
	Error          string
	CreatedAt      time.Time
	StartedAt      time.Time
	FinishedAt     time.Time
}

// NewTask creates a pending task with a generated ID.
func NewTask(description, expectedOutput, assignedTo string) *Task {
	return &Task{
		ID:             uuid.NewString(),
		Description:    description,
		ExpectedOutput: expectedOutput,
		AssignedTo:     assignedTo,
		Status:         TaskStatusPending,
		CreatedAt:      time.Now().UTC(),
	}
}

// Start marks the task as running.
func (t *Task) Start() {
	t.Status = TaskStatusRunning
	t.StartedAt = time.Now().UTC()
}

// Complete records the result and marks the task as completed.
func (t *Task) Complete(result string) {
	t.Status = TaskStatusCompleted
	t.Result = result
	t.Error = ""
	t.FinishedAt = time.Now().UTC()
}

// Fail records the error message and marks the task as failed.
func (t *Task) Fail(msg string) {
	t.Status = TaskStatusFailed
	t.Error = msg
	t.FinishedAt = time.Now().UTC()
}

// Duration returns how long the task ran, or zero if it has not finished.
func (t *Task) Duration() time.Duration {
	if t.StartedAt.IsZero() || t.FinishedAt.IsZero() {
		return 0
	}
	return t.FinishedAt.Sub(t.StartedAt)
}
