package models

import (
	"encoding/json"
	"time"
)

// Log levels emitted by the work-order executor.
const (
	LevelDebug   = "debug"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Well-known event names. Anything else is buffered but does not drive progress.
const (
	EventStepStarted       = "step_started"
	EventStepCompleted     = "step_completed"
	EventWorkflowCompleted = "workflow_completed"
	EventWorkflowFailed    = "workflow_failed"
)

// LogEvent is a single structured log entry pushed by the executor.
// It is immutable once received. Fields the server may omit are pointers so
// that "absent" and "zero" stay distinguishable; any top-level field this
// struct does not know about is preserved verbatim in Extra.
type LogEvent struct {
	EventID         string    `json:"event_id,omitempty"` // assigned locally if the server sent none
	WorkOrderID     string    `json:"work_order_id"`
	Level           string    `json:"level"` // debug | info | warning | error
	Event           string    `json:"event"` // free-text event name
	Timestamp       time.Time `json:"timestamp"`
	Step            string    `json:"step,omitempty"`
	StepNumber      *int      `json:"step_number,omitempty"`
	TotalSteps      *int      `json:"total_steps,omitempty"`
	ProgressPct     *float64  `json:"progress_pct,omitempty"`
	ElapsedSeconds  *float64  `json:"elapsed_seconds,omitempty"`
	Error           string    `json:"error,omitempty"`
	Output          string    `json:"output,omitempty"`
	DurationSeconds *float64  `json:"duration_seconds,omitempty"`

	// Extra holds unknown pass-through fields keyed by their wire name.
	Extra map[string]json.RawMessage `json:"-"`
}

// LogPage is one page of historical log events from the pull API.
type LogPage struct {
	Events []LogEvent `json:"events"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// StepRecord is one persisted step-history row, the ultimate progress fallback.
type StepRecord struct {
	Step            string    `json:"step"`
	Success         bool      `json:"success"`
	Output          string    `json:"output,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	DurationSeconds float64   `json:"duration_seconds"`
	Timestamp       time.Time `json:"timestamp"`
}
