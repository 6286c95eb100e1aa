// Package journal persists handled Telegram update_ids in SQLite so webhook
// redeliveries are processed once.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const (
	schemaVersion      = 1
	defaultBusyTimeout = 5000
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS updates (
		update_id  INTEGER PRIMARY KEY,
		kind       TEXT    NOT NULL DEFAULT '',
		handled_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_updates_handled_at ON updates(handled_at)`,
}

// Journal is a SQLite-backed record of handled updates.
// It implements telegram.Journal.
type Journal struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the journal database at path.
//
// The database uses WAL mode, a 5 s busy timeout and a single connection
// because SQLite serialises writes. The schema is migrated automatically.
func Open(ctx context.Context, path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("journal: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal: set busy_timeout: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Journal{db: db, now: time.Now}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("journal: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("journal: read schema version: %w", err)
	}
	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("journal: migrate: %w\nstatement: %s", err, stmt)
		}
	}
	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("journal: record schema version: %w", err)
	}
	return nil
}

// Seen reports whether updateID has already been recorded.
func (j *Journal) Seen(ctx context.Context, updateID int64) (bool, error) {
	var one int
	err := j.db.QueryRowContext(ctx, "SELECT 1 FROM updates WHERE update_id = ?", updateID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("journal: lookup update %d: %w", updateID, err)
	}
	return true, nil
}

// Record marks updateID as handled. Recording the same id twice is a no-op.
func (j *Journal) Record(ctx context.Context, updateID int64, kind string) error {
	_, err := j.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO updates (update_id, kind, handled_at) VALUES (?, ?, ?)",
		updateID, kind, j.now().Unix())
	if err != nil {
		return fmt.Errorf("journal: record update %d: %w", updateID, err)
	}
	return nil
}

// Prune removes entries handled before now minus retention and returns
// how many rows were deleted. Telegram stops redelivering after 24 hours,
// so older entries are dead weight.
func (j *Journal) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := j.now().Add(-retention).Unix()
	res, err := j.db.ExecContext(ctx, "DELETE FROM updates WHERE handled_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("journal: prune: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Ping checks that the database is reachable.
func (j *Journal) Ping(ctx context.Context) error {
	if err := j.db.PingContext(ctx); err != nil {
		return fmt.Errorf("journal: ping: %w", err)
	}
	return nil
}
