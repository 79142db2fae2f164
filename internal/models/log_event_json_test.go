package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestLogEvent_RoundTripKeepsExtra(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"event_id":"e1","event":"step_started","level":"info","step":"planning","trace_id":"abc","worker":{"host":"ci-3"}}`)

	var ev LogEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	out, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var again map[string]json.RawMessage
	if err := json.Unmarshal(out, &again); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if string(again["trace_id"]) != `"abc"` {
		t.Fatalf("trace_id lost in the round trip: %s", out)
	}
	if string(again["worker"]) != `{"host":"ci-3"}` {
		t.Fatalf("nested pass-through field lost: %s", out)
	}
	if string(again["event_id"]) != `"e1"` || string(again["step"]) != `"planning"` {
		t.Fatalf("known fields mangled: %s", out)
	}
}

func TestLogEvent_MarshalKnownFieldsWinOverExtra(t *testing.T) {
	t.Parallel()

	ev := LogEvent{
		EventID: "real",
		Event:   "log_line",
		Level:   LevelInfo,
		Extra:   map[string]json.RawMessage{"event_id": json.RawMessage(`"impostor"`)},
	}

	out, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if string(m["event_id"]) != `"real"` {
		t.Fatalf("known field must win on collision, got %s", m["event_id"])
	}
}

func TestLogEvent_NumericCoercion(t *testing.T) {
	t.Parallel()

	// executors emit 3 and 3.0 interchangeably for counters
	var ev LogEvent
	if err := json.Unmarshal([]byte(`{"event":"step_started","step_number":3.0,"total_steps":5}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.StepNumber == nil || *ev.StepNumber != 3 {
		t.Fatalf("step_number = %v; want 3", ev.StepNumber)
	}
	if ev.TotalSteps == nil || *ev.TotalSteps != 5 {
		t.Fatalf("total_steps = %v; want 5", ev.TotalSteps)
	}
}

func TestLogEvent_TimestampNormalizedToUTC(t *testing.T) {
	t.Parallel()

	var ev LogEvent
	if err := json.Unmarshal([]byte(`{"event":"log_line","timestamp":"2026-08-25T12:30:00+02:00"}`), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := time.Date(2026, time.August, 25, 10, 30, 0, 0, time.UTC)
	if !ev.Timestamp.Equal(want) || ev.Timestamp.Location() != time.UTC {
		t.Fatalf("timestamp = %v; want %v in UTC", ev.Timestamp, want)
	}
}
