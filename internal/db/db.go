package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hpungsan/binder/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// Init initializes the SQLite database at dbPath, creating the parent
// directory if needed. The path parameter allows tests to point at
// t.TempDir() instead of ~/.binder.
func Init(dbPath string) (*sql.DB, error) {
	// Create parent directory with restricted permissions
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(dir, 0700)

	// Open database with pragmas in connection string (applies to all connections)
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	database, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(database); err != nil {
		database.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(database); err != nil {
		database.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return database, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
// Call after Init if you need to tune pool behavior for contention.
func ConfigurePool(database *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		database.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		database.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(database *sql.DB) error {
	version, err := GetUserVersion(database)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS notebooks (
		  id          INTEGER PRIMARY KEY,
		  name        TEXT NOT NULL,
		  description TEXT,
		  status      TEXT NOT NULL DEFAULT 'active'
		              CHECK (status IN ('active', 'archived')),
		  created_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_notebooks_name
		ON notebooks(name);

		CREATE TABLE IF NOT EXISTS entries (
		  id          INTEGER PRIMARY KEY,
		  notebook_id INTEGER REFERENCES notebooks(id),
		  title       TEXT NOT NULL,
		  content     TEXT NOT NULL DEFAULT '',
		  created_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_entries_notebook_title
		ON entries(notebook_id, title);

		CREATE INDEX IF NOT EXISTS idx_entries_created
		ON entries(created_at, id);

		CREATE TABLE IF NOT EXISTS notes (
		  id         INTEGER PRIMARY KEY,
		  entry_id   INTEGER NOT NULL REFERENCES entries(id),
		  content    TEXT NOT NULL,
		  created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notes_entry
		ON notes(entry_id);

		CREATE TABLE IF NOT EXISTS tags (
		  id          INTEGER PRIMARY KEY,
		  name        TEXT NOT NULL,
		  name_norm   TEXT NOT NULL,
		  description TEXT,
		  created_at  INTEGER NOT NULL
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_name_norm
		ON tags(name_norm);

		CREATE TABLE IF NOT EXISTS attachments (
		  id                TEXT PRIMARY KEY,
		  entry_id          INTEGER REFERENCES entries(id),
		  note_id           INTEGER REFERENCES notes(id),
		  original_filename TEXT NOT NULL,
		  storage_path      TEXT NOT NULL,
		  created_at        INTEGER NOT NULL,
		  CHECK ((entry_id IS NULL) <> (note_id IS NULL))
		);

		CREATE INDEX IF NOT EXISTS idx_attachments_entry
		ON attachments(entry_id)
		WHERE entry_id IS NOT NULL;

		CREATE INDEX IF NOT EXISTS idx_attachments_note
		ON attachments(note_id)
		WHERE note_id IS NOT NULL;

		CREATE TABLE IF NOT EXISTS entity_tags (
		  entity_kind TEXT NOT NULL
		              CHECK (entity_kind IN ('notebook', 'entry', 'note')),
		  entity_id   INTEGER NOT NULL,
		  tag_id      INTEGER NOT NULL REFERENCES tags(id),
		  PRIMARY KEY (entity_kind, entity_id, tag_id)
		);

		CREATE INDEX IF NOT EXISTS idx_entity_tags_tag
		ON entity_tags(tag_id);
		`
		if _, err := database.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(database, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(database *sql.DB) error {
	var journalMode string
	if err := database.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(database *sql.DB) (int, error) {
	var version int
	if err := database.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(database *sql.DB, version int) error {
	_, err := database.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

// VacuumInto writes a compacted snapshot of the live database to destPath.
// The snapshot is a plain SQLite file with no WAL sidecars, which makes it
// the right artifact for backups. SQLite refuses to overwrite: destPath
// must not exist yet.
func VacuumInto(ctx context.Context, database *sql.DB, destPath string) error {
	if _, err := database.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("failed to snapshot database: %w", err)
	}
	return nil
}
