// Package store persists game snapshots in SQLite. It implements the
// orchestrator's Sink contract; the snapshot payload is opaque here.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no snapshot exists for a game id.
var ErrNotFound = errors.New("store: snapshot not found")

const schema = `
CREATE TABLE IF NOT EXISTS games (
	id        TEXT PRIMARY KEY,
	snapshot  BLOB NOT NULL,
	finished  INTEGER NOT NULL DEFAULT 0,
	saved_at  TEXT NOT NULL DEFAULT (datetime('now'))
);`

// DB is a snapshot store backed by a single SQLite file.
type DB struct {
	db *sql.DB
}

// Open opens (and if needed creates) the store at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	// A single writer keeps the driver away from SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init store schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Save upserts the latest snapshot for a game.
func (d *DB) Save(gameID string, snapshot []byte, finished bool) error {
	_, err := d.db.Exec(`
		INSERT INTO games (id, snapshot, finished, saved_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT(id) DO UPDATE SET
			snapshot = excluded.snapshot,
			finished = excluded.finished,
			saved_at = excluded.saved_at`,
		gameID, snapshot, boolInt(finished))
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", gameID, err)
	}
	return nil
}

// Load returns the latest snapshot for a game.
func (d *DB) Load(gameID string) ([]byte, bool, error) {
	var snapshot []byte
	var finished int
	err := d.db.QueryRow(`SELECT snapshot, finished FROM games WHERE id = ?`, gameID).
		Scan(&snapshot, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("load snapshot %s: %w", gameID, err)
	}
	return snapshot, finished != 0, nil
}

// Unfinished lists the ids of games that were saved mid-play, for crash
// recovery.
func (d *DB) Unfinished() ([]string, error) {
	rows, err := d.db.Query(`SELECT id FROM games WHERE finished = 0 ORDER BY saved_at`)
	if err != nil {
		return nil, fmt.Errorf("list unfinished: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("list unfinished: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Close releases the underlying database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
