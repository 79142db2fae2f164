package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Accepted timestamp layouts, most specific first. The executor emits
// RFC3339, but older builds omitted the zone suffix.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// UnmarshalJSON decodes a LogEvent leniently: each known field is decoded on
// its own, so a bad timestamp or a wrong-typed optional field spoils only
// that field. Unknown top-level fields land in Extra untouched.
func (e *LogEvent) UnmarshalJSON(raw []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("log event: expected a JSON object, got null")
	}

	*e = LogEvent{}
	takeString(fields, "event_id", &e.EventID)
	takeString(fields, "work_order_id", &e.WorkOrderID)
	takeString(fields, "level", &e.Level)
	takeString(fields, "event", &e.Event)
	takeTime(fields, "timestamp", &e.Timestamp)
	takeString(fields, "step", &e.Step)
	takeIntPtr(fields, "step_number", &e.StepNumber)
	takeIntPtr(fields, "total_steps", &e.TotalSteps)
	takeFloatPtr(fields, "progress_pct", &e.ProgressPct)
	takeFloatPtr(fields, "elapsed_seconds", &e.ElapsedSeconds)
	takeString(fields, "error", &e.Error)
	takeString(fields, "output", &e.Output)
	takeFloatPtr(fields, "duration_seconds", &e.DurationSeconds)

	if len(fields) > 0 {
		e.Extra = fields
	}
	return nil
}

// MarshalJSON re-emits the event including the pass-through Extra fields.
// Known fields win on key collision.
func (e LogEvent) MarshalJSON() ([]byte, error) {
	type plain LogEvent // drops the custom marshaller
	known, err := json.Marshal(plain(e))
	if err != nil {
		return nil, err
	}
	if len(e.Extra) == 0 {
		return known, nil
	}

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(known, &merged); err != nil {
		return nil, err
	}
	for k, v := range e.Extra {
		if _, taken := merged[k]; !taken {
			merged[k] = v
		}
	}
	return json.Marshal(merged)
}

// takeString pops fields[key] into dst when it decodes as a string.
func takeString(fields map[string]json.RawMessage, key string, dst *string) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return // wrong type; leave it in Extra
	}
	*dst = s
	delete(fields, key)
}

func takeTime(fields map[string]json.RawMessage, key string, dst *time.Time) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*dst = t.UTC()
			delete(fields, key)
			return
		}
	}
	// unparseable timestamp stays in Extra
}

func takeIntPtr(fields map[string]json.RawMessage, key string, dst **int) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var f float64 // executors are loose about 3 vs 3.0
	if err := json.Unmarshal(raw, &f); err != nil {
		return
	}
	n := int(f)
	*dst = &n
	delete(fields, key)
}

func takeFloatPtr(fields map[string]json.RawMessage, key string, dst **float64) {
	raw, ok := fields[key]
	if !ok {
		return
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return
	}
	*dst = &f
	delete(fields, key)
}
