package stream

import (
	"math"

	"workorder_dashboard/internal/models"
)

// Reduce derives the next LiveProgress from the prior one and a single
// event. It is a pure function: same inputs, same output, no side effects.
//
// Percentages reflect steps completed before the current one, so entering
// the last step of a workflow never reads 100%. A terminal status
// (completed/failed) is sticky and survives any later event.
func Reduce(prior models.LiveProgress, ev models.LogEvent) models.LiveProgress {
	next := prior

	switch ev.Event {
	case models.EventStepStarted:
		next.CurrentStep = ev.Step
		if ev.StepNumber != nil {
			next.StepNumber = *ev.StepNumber
		}
		if ev.TotalSteps != nil {
			next.TotalSteps = *ev.TotalSteps
		}
		if next.TotalSteps > 0 {
			next.ProgressPct = stepPct(next.StepNumber-1, next.TotalSteps)
		}
		if next.Status == "" {
			next.Status = models.StatusRunning
		}

	case models.EventStepCompleted:
		// The protocol carries no step identity on this event; it is taken
		// to complete the most recently started step.
		if next.TotalSteps > 0 {
			next.ProgressPct = stepPct(next.StepNumber, next.TotalSteps)
		}

	case models.EventWorkflowCompleted:
		next.Status = models.StatusCompleted
		next.ProgressPct = 100

	case models.EventWorkflowFailed:
		next.Status = models.StatusFailed
	}

	if ev.Level == models.LevelError {
		next.Status = models.StatusFailed
	}

	if ev.ElapsedSeconds != nil {
		// Server-reported monotonic value; never extrapolated here.
		next.ElapsedSeconds = *ev.ElapsedSeconds
	}

	next.ProgressPct = ClampPct(next.ProgressPct)

	// Terminal guard: completed/failed can never revert, and a completed
	// workflow keeps its final percentage.
	if prior.Status.Terminal() {
		next.Status = prior.Status
		if prior.Status == models.StatusCompleted {
			next.ProgressPct = prior.ProgressPct
		}
	}

	return next
}

// stepPct converts completed-steps-of-total into a whole percentage.
func stepPct(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return ClampPct(int(math.Round(float64(completed) / float64(total) * 100)))
}

// ClampPct bounds a percentage to [0,100].
func ClampPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
