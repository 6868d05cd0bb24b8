package db

import (
	"database/sql"
	"fmt"

	"finboard/internal/table"
)

// SortStore persists table sort states in SQLite. An empty state is stored
// as a known key with no rows, so it restores as "unsorted" rather than
// "never saved".
type SortStore struct {
	db *sql.DB
}

var _ table.PersistenceStore = (*SortStore)(nil)

func NewSortStore(db *sql.DB) *SortStore {
	return &SortStore{db: db}
}

func (s *SortStore) LoadSortState(key string) (table.SortState, bool, error) {
	var known int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sort_state_keys WHERE state_key = ?`, key).Scan(&known)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up sort state: %w", err)
	}
	if known == 0 {
		return nil, false, nil
	}

	rows, err := s.db.Query(`
		SELECT column_key, direction
		FROM sort_state
		WHERE state_key = ?
		ORDER BY position
	`, key)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load sort state: %w", err)
	}
	defer rows.Close()

	state := table.SortState{}
	for rows.Next() {
		var spec table.SortSpec
		var dir string
		if err := rows.Scan(&spec.Key, &dir); err != nil {
			return nil, false, fmt.Errorf("failed to scan sort state row: %w", err)
		}
		spec.Direction = table.ParseDirection(dir)
		state = append(state, spec)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("error iterating sort state rows: %w", err)
	}
	return state, true, nil
}

func (s *SortStore) SaveSortState(key string, state table.SortState) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM sort_state WHERE state_key = ?`, key); err != nil {
		return fmt.Errorf("failed to clear sort state: %w", err)
	}
	for i, spec := range state.Sanitize() {
		if _, err := tx.Exec(`
			INSERT INTO sort_state (state_key, position, column_key, direction)
			VALUES (?, ?, ?, ?)
		`, key, i, spec.Key, string(spec.Direction)); err != nil {
			return fmt.Errorf("failed to save sort state: %w", err)
		}
	}
	if _, err := tx.Exec(`
		INSERT INTO sort_state_keys (state_key) VALUES (?)
		ON CONFLICT(state_key) DO UPDATE SET updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, key); err != nil {
		return fmt.Errorf("failed to save sort state key: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit sort state: %w", err)
	}
	return nil
}
