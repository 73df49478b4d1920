package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/multiagent-studio/studio/pkg/core"
	"github.com/multiagent-studio/studio/pkg/llm"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []core.Event
}

func (r *recordingEmitter) Emit(_ context.Context, e core.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []core.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]core.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func TestCrewKickoffSingleTask(t *testing.T) {
	a, _ := New("Research Analyst", &llm.MockProvider{Response: "OK"})
	as := NewAssignment(a, "Say OK", core.ExpectedOutput)
	em := &recordingEmitter{}

	out, err := NewCrew([]Assignment{as}, WithEventEmitter(em)).Kickoff(context.Background())
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}
	if out.Raw != "OK" {
		t.Errorf("expected OK, got %q", out.Raw)
	}
	if as.Task.Status != core.TaskStatusCompleted || as.Task.Result != "OK" {
		t.Errorf("task not completed: %+v", as.Task)
	}

	want := []core.EventType{core.EventCrewStarted, core.EventAgentTaskStarted, core.EventAgentTaskCompleted, core.EventCrewCompleted}
	got := em.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	for _, e := range em.events {
		if e.RunID == "" {
			t.Errorf("event %s missing run id", e.Type)
		}
	}
}

func TestCrewKickoffSequentialContext(t *testing.T) {
	provider := llm.NewScriptedMockProvider("outline", "final draft")
	researcher, _ := New("Research Analyst", provider)
	writer, _ := New("Content Writer", provider)

	out, err := NewCrew([]Assignment{
		NewAssignment(researcher, "Outline the topic", core.ExpectedOutput),
		NewAssignment(writer, "Write the article", core.ExpectedOutput),
	}).Kickoff(context.Background())
	if err != nil {
		t.Fatalf("Kickoff failed: %v", err)
	}
	if out.Raw != "final draft" || len(out.Tasks) != 2 {
		t.Fatalf("unexpected output %+v", out)
	}
	second := provider.Requests[1].Messages[1].Content
	if !strings.Contains(second, "outline") {
		t.Errorf("second task must see the first result: %q", second)
	}
}

func TestCrewKickoffFailure(t *testing.T) {
	a, _ := New("Writer", &llm.FailingMockProvider{Err: errors.New("401 Unauthorized: invalid api key")})
	as := NewAssignment(a, "x", "")
	em := &recordingEmitter{}

	_, err := NewCrew([]Assignment{as}, WithEventEmitter(em)).Kickoff(context.Background())
	if err == nil || !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected provider error, got %v", err)
	}
	if as.Task.Status != core.TaskStatusFailed {
		t.Errorf("expected failed task, got %s", as.Task.Status)
	}
	types := em.types()
	if types[len(types)-1] != core.EventAgentError {
		t.Errorf("expected agent error event last, got %v", types)
	}
}

func TestCrewKickoffNoTasks(t *testing.T) {
	if _, err := NewCrew(nil).Kickoff(context.Background()); !errors.Is(err, ErrNoTasks) {
		t.Fatalf("expected ErrNoTasks, got %v", err)
	}
}
