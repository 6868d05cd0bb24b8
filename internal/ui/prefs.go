package ui

import (
	"database/sql"
	"fmt"

	"finboard/internal/db"
)

// TablePrefs stores per-table UI preferences. Sort order is persisted by
// the table engine itself.
type TablePrefs struct {
	HiddenColumns []string `json:"hidden_columns"`
	ActiveColumn  string   `json:"active_column"`
}

func prefsKey(tableID string) string {
	return "table." + tableID
}

func loadTablePrefs(conn *sql.DB, tableID string) (TablePrefs, error) {
	var prefs TablePrefs
	if conn == nil {
		return prefs, nil
	}
	if _, err := db.GetJSONPreference(conn, prefsKey(tableID), &prefs); err != nil {
		return TablePrefs{}, fmt.Errorf("failed to load prefs for %s: %w", tableID, err)
	}
	return prefs, nil
}

func saveTablePrefs(conn *sql.DB, tableID string, prefs TablePrefs) error {
	if conn == nil {
		return nil
	}
	if err := db.SetJSONPreference(conn, prefsKey(tableID), prefs); err != nil {
		return fmt.Errorf("failed to save prefs for %s: %w", tableID, err)
	}
	return nil
}
