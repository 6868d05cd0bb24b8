package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNoSnapshot is returned when no snapshot was ever stored for a source.
var ErrNoSnapshot = errors.New("no snapshot stored")

// snapshotsKept is the number of snapshots retained per source.
const snapshotsKept = 5

// Snapshot is a raw export as fetched from a source.
type Snapshot struct {
	ID        int64
	Source    string
	Body      []byte
	FetchedAt time.Time
}

// SaveSnapshot stores body as the newest snapshot of source and prunes old
// ones.
func SaveSnapshot(db *sql.DB, source string, body []byte) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO snapshots (source, body) VALUES (?, ?)`, source, body); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if _, err := tx.Exec(`
		DELETE FROM snapshots
		WHERE source = ? AND id NOT IN (
			SELECT id FROM snapshots WHERE source = ? ORDER BY id DESC LIMIT ?
		)
	`, source, source, snapshotsKept); err != nil {
		return fmt.Errorf("failed to prune snapshots: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// LatestSnapshot returns the most recent snapshot of source.
func LatestSnapshot(db *sql.DB, source string) (Snapshot, error) {
	var s Snapshot
	var fetchedAt string
	err := db.QueryRow(`
		SELECT id, source, body, fetched_at
		FROM snapshots
		WHERE source = ?
		ORDER BY id DESC
		LIMIT 1
	`, source).Scan(&s.ID, &s.Source, &s.Body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("%w for %s", ErrNoSnapshot, source)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to get snapshot: %w", err)
	}
	if t, err := time.Parse(time.RFC3339Nano, fetchedAt); err == nil {
		s.FetchedAt = t
	}
	return s, nil
}

// CountSnapshots returns how many snapshots are stored for source.
func CountSnapshots(db *sql.DB, source string) (int, error) {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE source = ?`, source).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return n, nil
}
