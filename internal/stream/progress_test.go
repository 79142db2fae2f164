package stream

import (
	"testing"

	"workorder_dashboard/internal/models"
)

func intPtr(n int) *int           { return &n }
func floatPtr(f float64) *float64 { return &f }

func stepStarted(step string, n, total int) models.LogEvent {
	return models.LogEvent{
		Level:      models.LevelInfo,
		Event:      models.EventStepStarted,
		Step:       step,
		StepNumber: intPtr(n),
		TotalSteps: intPtr(total),
	}
}

func TestReduce_StepStarted(t *testing.T) {
	t.Parallel()

	// step_started{step:"planning", step_number:2, total_steps:5} => 20%
	got := Reduce(models.LiveProgress{}, stepStarted("planning", 2, 5))

	if got.CurrentStep != "planning" {
		t.Fatalf("current step = %q; want planning", got.CurrentStep)
	}
	if got.StepNumber != 2 || got.TotalSteps != 5 {
		t.Fatalf("step identity = %d/%d; want 2/5", got.StepNumber, got.TotalSteps)
	}
	if got.ProgressPct != 20 {
		t.Fatalf("pct = %d; want 20 (steps completed before the current one)", got.ProgressPct)
	}
	if got.Status != models.StatusRunning {
		t.Fatalf("status = %q; want running", got.Status)
	}
}

func TestReduce_StepCompletedUsesStoredIdentity(t *testing.T) {
	t.Parallel()

	p := Reduce(models.LiveProgress{}, stepStarted("planning", 2, 5))
	p = Reduce(p, models.LogEvent{
		Level:          models.LevelInfo,
		Event:          models.EventStepCompleted,
		ElapsedSeconds: floatPtr(30),
	})

	if p.ProgressPct != 40 {
		t.Fatalf("pct = %d; want 40", p.ProgressPct)
	}
	if p.ElapsedSeconds != 30 {
		t.Fatalf("elapsed = %v; want 30", p.ElapsedSeconds)
	}
}

func TestReduce_EnteringLastStepIsNotDone(t *testing.T) {
	t.Parallel()

	p := Reduce(models.LiveProgress{}, stepStarted("commit", 5, 5))
	if p.ProgressPct != 80 {
		t.Fatalf("pct = %d; want 80 (entering the last step must not read 100%%)", p.ProgressPct)
	}
}

func TestReduce_WorkflowCompleted(t *testing.T) {
	t.Parallel()

	p := Reduce(models.LiveProgress{}, stepStarted("execute", 1, 3))
	p = Reduce(p, models.LogEvent{Level: models.LevelInfo, Event: models.EventWorkflowCompleted})

	if p.Status != models.StatusCompleted {
		t.Fatalf("status = %q; want completed", p.Status)
	}
	if p.ProgressPct != 100 {
		t.Fatalf("pct = %d; want 100", p.ProgressPct)
	}
}

func TestReduce_FailurePaths(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		ev   models.LogEvent
	}{
		{name: "workflow_failed event", ev: models.LogEvent{Level: models.LevelInfo, Event: models.EventWorkflowFailed}},
		{name: "error level on any event", ev: models.LogEvent{Level: models.LevelError, Event: "exec_output"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			p := Reduce(models.LiveProgress{}, tc.ev)
			if p.Status != models.StatusFailed {
				t.Fatalf("status = %q; want failed", p.Status)
			}
		})
	}
}

func TestReduce_TerminalStatusIsSticky(t *testing.T) {
	t.Parallel()

	later := []models.LogEvent{
		stepStarted("retry", 1, 4),
		{Level: models.LevelInfo, Event: models.EventStepCompleted},
		{Level: models.LevelError, Event: "exec_output"},
		{Level: models.LevelInfo, Event: models.EventWorkflowFailed},
	}

	// completed stays completed, at 100%
	p := Reduce(models.LiveProgress{}, models.LogEvent{Level: models.LevelInfo, Event: models.EventWorkflowCompleted})
	for _, ev := range later {
		p = Reduce(p, ev)
	}
	if p.Status != models.StatusCompleted || p.ProgressPct != 100 {
		t.Fatalf("completed must be terminal, got status=%q pct=%d", p.Status, p.ProgressPct)
	}

	// failed stays failed, even through workflow_completed
	p = Reduce(models.LiveProgress{}, models.LogEvent{Level: models.LevelInfo, Event: models.EventWorkflowFailed})
	p = Reduce(p, models.LogEvent{Level: models.LevelInfo, Event: models.EventWorkflowCompleted})
	if p.Status != models.StatusFailed {
		t.Fatalf("failed must be terminal, got %q", p.Status)
	}
}

func TestReduce_UnknownEventsLeaveProgressAlone(t *testing.T) {
	t.Parallel()

	base := Reduce(models.LiveProgress{}, stepStarted("execute", 2, 4))
	got := Reduce(base, models.LogEvent{Level: models.LevelInfo, Event: "exec_output", Output: "hello"})
	if got != base {
		t.Fatalf("unknown event mutated progress: %+v -> %+v", base, got)
	}

	// ...unless it carries elapsed_seconds, which always wins
	got = Reduce(base, models.LogEvent{Level: models.LevelInfo, Event: "heartbeat", ElapsedSeconds: floatPtr(12.5)})
	if got.ElapsedSeconds != 12.5 {
		t.Fatalf("elapsed = %v; want 12.5", got.ElapsedSeconds)
	}
}

func TestReduce_PctAlwaysWithinBounds(t *testing.T) {
	t.Parallel()

	// Hostile inputs: step numbers out of range, zero/negative totals.
	events := []models.LogEvent{
		stepStarted("a", -3, 5),
		stepStarted("b", 12, 5),
		{Level: models.LevelInfo, Event: models.EventStepCompleted},
		stepStarted("c", 2, 0),
		stepStarted("d", 0, -1),
		{Level: models.LevelInfo, Event: models.EventStepCompleted},
		{Level: models.LevelInfo, Event: models.EventWorkflowCompleted},
	}

	p := models.LiveProgress{}
	for i, ev := range events {
		p = Reduce(p, ev)
		if p.ProgressPct < 0 || p.ProgressPct > 100 {
			t.Fatalf("event %d drove pct out of bounds: %d", i, p.ProgressPct)
		}
	}
}

func Test_backoffDelay(t *testing.T) {
	t.Parallel()

	// 1s, 2s, 4s, 8s, 16s, 30s, 30s, ... capped at 30s
	want := []int{1, 2, 4, 8, 16, 30, 30, 30}
	for attempt, sec := range want {
		got := backoffDelay(DefaultBackoffBase, DefaultBackoffMax, attempt)
		if got.Seconds() != float64(sec) {
			t.Fatalf("attempt %d: delay = %v; want %ds", attempt, got, sec)
		}
	}

	// absurd attempt counts must not overflow past the cap
	if got := backoffDelay(DefaultBackoffBase, DefaultBackoffMax, 64); got != DefaultBackoffMax {
		t.Fatalf("attempt 64: delay = %v; want %v", got, DefaultBackoffMax)
	}
}
