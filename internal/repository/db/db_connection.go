package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// InitDB opens/creates the SQLite DB file and ensures tables exist.
func InitDB(path string) (*sql.DB, error) {
	database, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	database.SetMaxOpenConns(1) // SQLite is not great with many writers
	database.SetMaxIdleConns(1)

	// Pragmas to improve reliability
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	} {
		if _, err := database.Exec(pragma); err != nil {
			_ = database.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if err := ensureSchema(database); err != nil {
		_ = database.Close()
		return nil, err
	}

	// Fail fast if the DB cannot be reached
	if err := database.Ping(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return database, nil
}

const sqliteDriverName = "sqlite"

const schemaStreamSnapshots = `
CREATE TABLE IF NOT EXISTS stream_snapshots (
    work_order_id TEXT PRIMARY KEY,
    logs TEXT NOT NULL,
    progress TEXT,
    saved_at TIMESTAMP NOT NULL
);
`

func ensureSchema(database *sql.DB) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		// In case of panic, rollback to avoid leaving an open transaction
		_ = tx.Rollback()
	}()

	if _, err := tx.Exec(schemaStreamSnapshots); err != nil {
		return fmt.Errorf("apply snapshot schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}
