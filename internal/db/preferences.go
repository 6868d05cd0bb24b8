package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	PrefLanguage = "language"
)

// GetPreference returns the stored value of key and whether it exists.
func GetPreference(db *sql.DB, key string) (string, bool, error) {
	var value string
	err := db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get preference %q: %w", key, err)
	}
	return value, true, nil
}

// SetPreference inserts or replaces the value of key.
func SetPreference(db *sql.DB, key, value string) error {
	_, err := db.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set preference %q: %w", key, err)
	}
	return nil
}

// GetJSONPreference decodes the stored JSON value of key into v. It reports
// false when the key is absent.
func GetJSONPreference(db *sql.DB, key string, v any) (bool, error) {
	raw, ok, err := GetPreference(db, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode preference %q: %w", key, err)
	}
	return true, nil
}

// SetJSONPreference stores v as JSON under key.
func SetJSONPreference(db *sql.DB, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode preference %q: %w", key, err)
	}
	return SetPreference(db, key, string(data))
}
