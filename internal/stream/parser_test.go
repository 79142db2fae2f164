package stream

import (
	"errors"
	"testing"
	"time"
)

func TestParseLogEvent_FullEvent(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"work_order_id": "wo-17",
		"level": "info",
		"event": "step_started",
		"timestamp": "2026-08-25T10:30:00Z",
		"step": "planning",
		"step_number": 2,
		"total_steps": 5,
		"elapsed_seconds": 12.5
	}`)

	ev, err := ParseLogEvent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.WorkOrderID != "wo-17" || ev.Level != "info" || ev.Event != "step_started" {
		t.Fatalf("unexpected identity fields: %+v", ev)
	}
	if ev.Step != "planning" || ev.StepNumber == nil || *ev.StepNumber != 2 || ev.TotalSteps == nil || *ev.TotalSteps != 5 {
		t.Fatalf("unexpected step fields: %+v", ev)
	}
	if ev.ElapsedSeconds == nil || *ev.ElapsedSeconds != 12.5 {
		t.Fatalf("unexpected elapsed: %+v", ev.ElapsedSeconds)
	}
	want := time.Date(2026, time.August, 25, 10, 30, 0, 0, time.UTC)
	if !ev.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v; want %v", ev.Timestamp, want)
	}
	if len(ev.Extra) != 0 {
		t.Fatalf("no unknown fields were sent, Extra = %v", ev.Extra)
	}
}

func TestParseLogEvent_UnknownFieldsPreserved(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"event":"step_started","level":"info","trace_id":"abc-123","worker":{"host":"ci-3"}}`)

	ev, err := ParseLogEvent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(ev.Extra["trace_id"]) != `"abc-123"` {
		t.Fatalf("trace_id not preserved: %v", ev.Extra)
	}
	if string(ev.Extra["worker"]) != `{"host":"ci-3"}` {
		t.Fatalf("nested unknown field not preserved: %v", ev.Extra)
	}
}

func TestParseLogEvent_Malformed(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
	}{
		{name: "invalid json", raw: `{"event": "step_st`},
		{name: "not an object", raw: `["a","b"]`},
		{name: "bare string", raw: `"hello"`},
		{name: "null", raw: `null`},
		{name: "empty payload", raw: ``},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseLogEvent([]byte(tc.raw))
			if !errors.Is(err, ErrMalformedPayload) {
				t.Fatalf("expected ErrMalformedPayload, got %v", err)
			}
		})
	}
}

func TestParseLogEvent_BadFieldsAreTolerated(t *testing.T) {
	t.Parallel()

	// A broken timestamp or a wrong-typed optional field must not reject
	// the event; the offending value stays in Extra instead.
	raw := []byte(`{"event":"exec_output","level":"info","timestamp":"not-a-time","step_number":"two"}`)

	ev, err := ParseLogEvent(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.Event != "exec_output" {
		t.Fatalf("event = %q; want exec_output", ev.Event)
	}
	if !ev.Timestamp.IsZero() {
		t.Fatalf("unparseable timestamp should stay zero, got %v", ev.Timestamp)
	}
	if ev.StepNumber != nil {
		t.Fatalf("wrong-typed step_number should stay unset, got %v", *ev.StepNumber)
	}
	if _, ok := ev.Extra["timestamp"]; !ok {
		t.Fatalf("raw timestamp should be preserved in Extra")
	}
	if _, ok := ev.Extra["step_number"]; !ok {
		t.Fatalf("raw step_number should be preserved in Extra")
	}
}

func TestParseLogEvent_LegacyTimestampLayouts(t *testing.T) {
	t.Parallel()

	ev, err := ParseLogEvent([]byte(`{"event":"log_line","timestamp":"2026-08-25T10:30:00"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, time.August, 25, 10, 30, 0, 0, time.UTC)
	if !ev.Timestamp.Equal(want) {
		t.Fatalf("timestamp = %v; want %v", ev.Timestamp, want)
	}
}
