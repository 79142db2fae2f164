package repository

import (
	"context"
	"database/sql"

	"workorder_dashboard/internal/models"
	"workorder_dashboard/internal/repository/db"
)

// SnapshotRepo persists per-work-order buffered logs and live progress so
// the dashboard survives a restart.
type SnapshotRepo interface {
	Save(ctx context.Context, workOrderID string, logs []models.LogEvent, progress models.LiveProgress) error
	Load(ctx context.Context, workOrderID string) ([]models.LogEvent, models.LiveProgress, bool, error)
	Delete(ctx context.Context, workOrderID string) error
}

type Repository struct {
	Snapshots SnapshotRepo
}

func NewRepository(database *sql.DB) *Repository {
	return &Repository{
		Snapshots: NewSnapshotSQLite(database),
	}
}

// InitDB opens the SQLite file and ensures the schema exists.
func InitDB(path string) (*sql.DB, error) {
	return db.InitDB(path)
}
