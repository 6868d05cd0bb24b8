package model

import (
	"time"

	"finboard/internal/table"
)

// Dataset is the transaction set currently loaded, already enriched with
// kind and month fields.
type Dataset struct {
	Columns []string
	Rows    []table.Row
	// Sources lists the export locations in load order.
	Sources []string
	// SnapshotAt is set when the data comes from the snapshot cache instead
	// of a live fetch.
	SnapshotAt time.Time
}

// FromSnapshot reports whether the data was served from the cache.
func (d Dataset) FromSnapshot() bool {
	return !d.SnapshotAt.IsZero()
}
