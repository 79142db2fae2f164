package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"workorder_dashboard/internal/models"
)

type SnapshotSQLite struct {
	db *sql.DB
}

func NewSnapshotSQLite(db *sql.DB) *SnapshotSQLite { return &SnapshotSQLite{db: db} }

// Save upserts the snapshot row for the work order. Logs and progress are
// stored as JSON documents; the LogEvent marshaller keeps pass-through
// fields intact across the round trip.
func (r *SnapshotSQLite) Save(ctx context.Context, workOrderID string, logs []models.LogEvent, progress models.LiveProgress) error {
	logsJSON, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("marshal snapshot logs: %w", err)
	}
	progressJSON, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("marshal snapshot progress: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO stream_snapshots (work_order_id, logs, progress, saved_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(work_order_id) DO UPDATE SET
			logs = excluded.logs,
			progress = excluded.progress,
			saved_at = excluded.saved_at
	`,
		workOrderID,
		string(logsJSON),
		string(progressJSON),
		time.Now().UTC().Format("2006-01-02 15:04:05"),
	)
	return err
}

// Load returns the persisted snapshot for the work order; the bool reports
// whether a row existed.
func (r *SnapshotSQLite) Load(ctx context.Context, workOrderID string) ([]models.LogEvent, models.LiveProgress, bool, error) {
	var (
		logsJSON     string
		progressJSON sql.NullString
	)
	row := r.db.QueryRowContext(ctx, `
		SELECT logs, progress FROM stream_snapshots WHERE work_order_id = ?
	`, workOrderID)
	if err := row.Scan(&logsJSON, &progressJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.LiveProgress{}, false, nil
		}
		return nil, models.LiveProgress{}, false, err
	}

	var logs []models.LogEvent
	if err := json.Unmarshal([]byte(logsJSON), &logs); err != nil {
		return nil, models.LiveProgress{}, false, fmt.Errorf("unmarshal snapshot logs: %w", err)
	}

	var progress models.LiveProgress
	if progressJSON.Valid && progressJSON.String != "" {
		if err := json.Unmarshal([]byte(progressJSON.String), &progress); err != nil {
			return nil, models.LiveProgress{}, false, fmt.Errorf("unmarshal snapshot progress: %w", err)
		}
	}
	return logs, progress, true, nil
}

// Delete removes the snapshot row, if any.
func (r *SnapshotSQLite) Delete(ctx context.Context, workOrderID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stream_snapshots WHERE work_order_id = ?`, workOrderID)
	return err
}
