package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// ErrSchemaTooNew is returned when the file was written by a newer build
var ErrSchemaTooNew = errors.New("database schema is newer than this version of tasknote")

// migrations are applied in order; the index+1 of the last applied entry is
// stored in PRAGMA user_version.
var migrations = []string{
	// v1: single object store keyed by id. image_blob is the legacy
	// single-image field, kept readable for old files.
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		caption TEXT NOT NULL DEFAULT '',
		memo TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		start_date TEXT NOT NULL DEFAULT '',
		end_date TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		image_blob BLOB,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		completed_at TEXT,
		completed INTEGER NOT NULL DEFAULT 0
	)`,

	// v2: multi-image support
	`CREATE TABLE IF NOT EXISTS task_images (
		task_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		mime_type TEXT NOT NULL,
		data BLOB NOT NULL,
		PRIMARY KEY (task_id, position),
		FOREIGN KEY (task_id) REFERENCES tasks(id) ON DELETE CASCADE
	)`,
}

// SchemaVersion is the user_version this build writes
func SchemaVersion() int {
	return len(migrations)
}

// runMigrations applies every migration newer than the file's user_version
func runMigrations(ctx context.Context, db *sql.DB) error {
	current, err := userVersion(ctx, db)
	if err != nil {
		return err
	}

	if current > len(migrations) {
		return fmt.Errorf("%w (file v%d, supported v%d)", ErrSchemaTooNew, current, len(migrations))
	}

	for i := current; i < len(migrations); i++ {
		version := i + 1
		err := withTx(ctx, db, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
				return fmt.Errorf("migration v%d: %w", version, err)
			}
			// PRAGMA doesn't take bound parameters
			if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
				return fmt.Errorf("set user_version %d: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}
		slog.Info("applied migration", "version", version)
	}

	return nil
}

func userVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read user_version: %w", err)
	}
	return version, nil
}

// UserVersion returns the schema version recorded in the database file
func UserVersion(ctx context.Context, db *sql.DB) (int, error) {
	return userVersion(ctx, db)
}

// FileVersion reads the schema version of the file at path without opening
// it for use, so no migration runs. A missing file reports 0.
func FileVersion(ctx context.Context, path string) (int, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("failed to open database: %w", err)
	}
	defer closeQuietly(db)

	return userVersion(ctx, db)
}
