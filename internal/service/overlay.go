package service

import (
	"context"
	"errors"
	"math"

	"workorder_dashboard/internal/models"
	"workorder_dashboard/internal/stream"
	"workorder_dashboard/internal/upstream"
)

// ProgressSource produces a LiveProgress for a work order, or reports that
// it has nothing for it. Sources are consulted in order; live data always
// sits in front of replayed history so both paths honor the same bounds.
type ProgressSource interface {
	Progress(ctx context.Context, workOrderID string) (models.LiveProgress, bool, error)
}

// LiveSource reads the progress derived from the push stream.
type LiveSource struct {
	Streams Streams
}

func (s LiveSource) Progress(_ context.Context, workOrderID string) (models.LiveProgress, bool, error) {
	p, ok := s.Streams.Progress(workOrderID)
	return p, ok, nil
}

// HistorySource replays persisted step records into a progress summary.
type HistorySource struct {
	History History
}

func (s HistorySource) Progress(ctx context.Context, workOrderID string) (models.LiveProgress, bool, error) {
	records, err := s.History.StepHistory(ctx, workOrderID)
	if err != nil {
		if errors.Is(err, upstream.ErrWorkOrderNotFound) {
			return models.LiveProgress{}, false, nil
		}
		return models.LiveProgress{}, false, err
	}
	if len(records) == 0 {
		return models.LiveProgress{}, false, nil
	}
	return replayStepHistory(records), true, nil
}

// OverlayService merges the live stream view with the pull-mode history,
// always preferring live data when it exists.
type OverlayService struct {
	streams Streams
	history History
	sources []ProgressSource
}

func NewOverlayService(streams Streams, history History) *OverlayService {
	return &OverlayService{
		streams: streams,
		history: history,
		sources: []ProgressSource{
			LiveSource{Streams: streams},
			HistorySource{History: history},
		},
	}
}

// EffectiveLogs returns the live buffer when non-empty, then a historical
// page from the pull API, then a sequence synthesized from step history.
func (o *OverlayService) EffectiveLogs(ctx context.Context, workOrderID string, q upstream.LogQuery) ([]models.LogEvent, error) {
	if live := o.streams.Logs(workOrderID); len(live) > 0 {
		return live, nil
	}

	page, err := o.history.LogPage(ctx, workOrderID, q)
	switch {
	case err == nil && len(page.Events) > 0:
		return page.Events, nil
	case err != nil && !errors.Is(err, upstream.ErrWorkOrderNotFound):
		return nil, err
	}

	records, err := o.history.StepHistory(ctx, workOrderID)
	if err != nil {
		if errors.Is(err, upstream.ErrWorkOrderNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return synthesizeStepLogs(workOrderID, records), nil
}

// EffectiveProgress walks the source chain and returns the first hit. An id
// with no data anywhere yields the zero LiveProgress.
func (o *OverlayService) EffectiveProgress(ctx context.Context, workOrderID string) (models.LiveProgress, error) {
	for _, src := range o.sources {
		p, ok, err := src.Progress(ctx, workOrderID)
		if err != nil {
			return models.LiveProgress{}, err
		}
		if ok {
			return p, nil
		}
	}
	return models.LiveProgress{}, nil
}

// replayStepHistory computes progress as the ratio of successful steps to
// recorded steps, with server-recorded durations summed for elapsed time.
func replayStepHistory(records []models.StepRecord) models.LiveProgress {
	var (
		succeeded int
		failed    bool
		elapsed   float64
	)
	for _, rec := range records {
		if rec.Success {
			succeeded++
		} else {
			failed = true
		}
		elapsed += rec.DurationSeconds
	}

	total := len(records)
	last := records[total-1]

	p := models.LiveProgress{
		CurrentStep:    last.Step,
		StepNumber:     total,
		TotalSteps:     total,
		ProgressPct:    stream.ClampPct(int(math.Round(float64(succeeded) / float64(total) * 100))),
		ElapsedSeconds: elapsed,
	}
	if failed {
		p.Status = models.StatusFailed
	} else {
		// Step history only exists once the executor has persisted a full
		// run, so an all-success record set reads as completed.
		p.Status = models.StatusCompleted
	}
	return p
}

// synthesizeStepLogs turns step records into displayable log events when no
// live buffer and no historical page exist.
func synthesizeStepLogs(workOrderID string, records []models.StepRecord) []models.LogEvent {
	events := make([]models.LogEvent, 0, len(records))
	for _, rec := range records {
		rec := rec
		ev := models.LogEvent{
			WorkOrderID:     workOrderID,
			Level:           models.LevelInfo,
			Event:           models.EventStepCompleted,
			Timestamp:       rec.Timestamp,
			Step:            rec.Step,
			Output:          rec.Output,
			DurationSeconds: &rec.DurationSeconds,
		}
		if !rec.Success {
			ev.Level = models.LevelError
			ev.Event = "step_failed"
			ev.Error = rec.ErrorMessage
		}
		events = append(events, ev)
	}
	return events
}
