package core

import "testing"

func TestOutcomeKinds(t *testing.T) {
	var zero Outcome
	if !zero.IsZero() || zero.OK() {
		t.Fatal("zero outcome must be empty and not ok")
	}
	if s := Success("OK"); !s.OK() || s.Text != "OK" || s.IsZero() {
		t.Fatalf("unexpected success %+v", s)
	}
	if f := Failure("Error: boom"); f.OK() || f.Kind != OutcomeFailure {
		t.Fatalf("unexpected failure %+v", f)
	}
}

func TestEnsureRunID(t *testing.T) {
	ctx, id := EnsureRunID(t.Context())
	if id == "" {
		t.Fatal("expected run id")
	}
	ctx2, id2 := EnsureRunID(ctx)
	if id2 != id || ctx2 != ctx {
		t.Fatalf("expected existing run id to be reused")
	}
	ev := NewEvent(ctx, EventCrewStarted, "Research Analyst", "t1", nil)
	if ev.RunID != id || ev.Timestamp.IsZero() {
		t.Fatalf("unexpected event %+v", ev)
	}
}
