package service

import (
	"context"

	"workorder_dashboard/internal/models"
	"workorder_dashboard/internal/upstream"
)

// Streams is the per-work-order stream lifecycle and its read surface.
// Implemented by stream.Manager.
type Streams interface {
	Connect(workOrderID string)
	Disconnect(workOrderID string)
	DisconnectAll()
	Reconnect(workOrderID string)
	Clear(workOrderID string)
	State(workOrderID string) models.ConnectionState
	Logs(workOrderID string) []models.LogEvent
	Progress(workOrderID string) (models.LiveProgress, bool)
}

// History is the pull-mode upstream surface: paged historical logs and the
// step-history fallback. Implemented by upstream.Client.
type History interface {
	LogPage(ctx context.Context, workOrderID string, q upstream.LogQuery) (models.LogPage, error)
	StepHistory(ctx context.Context, workOrderID string) ([]models.StepRecord, error)
}

// Overlay exposes the effective (live-over-historical) view of a work
// order's logs and progress.
type Overlay interface {
	EffectiveLogs(ctx context.Context, workOrderID string, q upstream.LogQuery) ([]models.LogEvent, error)
	EffectiveProgress(ctx context.Context, workOrderID string) (models.LiveProgress, error)
}

// Service aggregates all sub-services behind one handle for the HTTP layer.
type Service struct {
	Streams
	Overlay
}

func NewService(streams Streams, history History) *Service {
	return &Service{
		Streams: streams,
		Overlay: NewOverlayService(streams, history),
	}
}
