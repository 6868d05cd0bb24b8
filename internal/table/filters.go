package table

import (
	"maps"
	"strings"
	"sync"
)

// FilterEntry is a per-column substring filter. Field names the row field
// that is matched; when empty the filter key itself is used.
type FilterEntry struct {
	Value string `json:"value"`
	Field string `json:"field,omitempty"`
}

func (f FilterEntry) active() bool {
	return strings.TrimSpace(f.Value) != ""
}

// FilterStore holds pending (being edited) and confirmed (applied) column
// filters, keyed by a column's filter key.
type FilterStore interface {
	// Value returns the pending value when preferPending is set and a
	// pending entry exists, else the confirmed value.
	Value(key string, preferPending bool) string
	SetPending(key string, entry FilterEntry)
	// Confirm moves the pending entry to confirmed. An empty pending value
	// removes the confirmed filter.
	Confirm(key string)
	// Cancel discards the pending entry.
	Cancel(key string)
	// Remove clears both pending and confirmed entries.
	Remove(key string)
	// Confirmed returns a copy of the active confirmed filters.
	Confirmed() map[string]FilterEntry
	HasPending(key string) bool
}

// ColumnFilters is the in-memory FilterStore shared by all tables of the
// dashboard.
type ColumnFilters struct {
	mu        sync.Mutex
	pending   map[string]FilterEntry
	confirmed map[string]FilterEntry
}

var _ FilterStore = (*ColumnFilters)(nil)

// NewColumnFilters creates an empty filter store.
func NewColumnFilters() *ColumnFilters {
	return &ColumnFilters{
		pending:   make(map[string]FilterEntry),
		confirmed: make(map[string]FilterEntry),
	}
}

func (f *ColumnFilters) Value(key string, preferPending bool) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if preferPending {
		if p, ok := f.pending[key]; ok {
			return p.Value
		}
	}
	return f.confirmed[key].Value
}

// SetPending records a proposed change. An empty value with nothing
// confirmed is not a change, so the pending entry is pruned.
func (f *ColumnFilters) SetPending(key string, entry FilterEntry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.confirmed[key]; !ok && !entry.active() {
		delete(f.pending, key)
		return
	}
	f.pending[key] = entry
}

func (f *ColumnFilters) Confirm(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pending[key]
	if !ok {
		return
	}
	delete(f.pending, key)
	if !p.active() {
		delete(f.confirmed, key)
		return
	}
	p.Value = strings.TrimSpace(p.Value)
	f.confirmed[key] = p
}

func (f *ColumnFilters) Cancel(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, key)
}

func (f *ColumnFilters) Remove(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.pending, key)
	delete(f.confirmed, key)
}

func (f *ColumnFilters) Confirmed() map[string]FilterEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := maps.Clone(f.confirmed)
	maps.DeleteFunc(out, func(_ string, e FilterEntry) bool { return !e.active() })
	return out
}

func (f *ColumnFilters) HasPending(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.pending[key]
	return ok
}

// Matches reports whether row satisfies every filter (logical AND). Each
// filter is a case-insensitive substring match on its field; empty values
// impose no constraint.
func Matches(row Row, filters map[string]FilterEntry) bool {
	for key, entry := range filters {
		needle := strings.ToLower(strings.TrimSpace(entry.Value))
		if needle == "" {
			continue
		}
		field := entry.Field
		if field == "" {
			field = key
		}
		if !strings.Contains(strings.ToLower(CellString(row[field])), needle) {
			return false
		}
	}
	return true
}

// FilterRows returns the rows of data that match filters, preserving order.
func FilterRows(data []Row, filters map[string]FilterEntry) []Row {
	out := make([]Row, 0, len(data))
	for _, row := range data {
		if Matches(row, filters) {
			out = append(out, row)
		}
	}
	return out
}
