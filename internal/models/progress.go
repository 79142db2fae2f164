package models

// WorkflowStatus is the terminal-capable status of a work order's workflow.
type WorkflowStatus string

const (
	StatusRunning   WorkflowStatus = "running"
	StatusCompleted WorkflowStatus = "completed"
	StatusFailed    WorkflowStatus = "failed"
)

// Terminal reports whether no later event may change the status.
func (s WorkflowStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// LiveProgress is the derived, incrementally updated summary of a work
// order's execution. The zero value is the "nothing known yet" state.
type LiveProgress struct {
	CurrentStep    string         `json:"current_step,omitempty"`
	StepNumber     int            `json:"step_number,omitempty"`
	TotalSteps     int            `json:"total_steps,omitempty"`
	ProgressPct    int            `json:"progress_pct"` // always within [0,100]
	ElapsedSeconds float64        `json:"elapsed_seconds,omitempty"`
	Status         WorkflowStatus `json:"status,omitempty"`
}

// ConnectionState describes the transport connection for one work-order id.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)
