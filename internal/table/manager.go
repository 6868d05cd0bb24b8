package table

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/text/language"
)

// SortManager owns a SortState and is its only mutator. It implements the
// three-state toggle (unsorted → desc → asc → unsorted) and applies the
// cascading multi-key comparison to datasets.
type SortManager struct {
	mu       sync.Mutex
	state    SortState
	cmp      *comparator
	onChange func(SortState)
	logger   *slog.Logger
}

// NewSortManager creates an empty manager that compares text using the
// collation rules of locale.
func NewSortManager(locale language.Tag, logger *slog.Logger) *SortManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SortManager{
		state:  SortState{},
		cmp:    newComparator(locale),
		logger: logger,
	}
}

// OnChange registers the listener notified after every Toggle. It replaces
// any previous listener.
func (m *SortManager) OnChange(fn func(SortState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Toggle advances key through its three states and returns the new state.
// A column that is not sorted is appended as desc, desc flips to asc in
// place, and asc removes the column.
func (m *SortManager) Toggle(key string) SortState {
	m.mu.Lock()
	idx := m.state.Index(key)
	switch {
	case idx < 0:
		m.state = append(m.state, SortSpec{Key: key, Direction: Desc})
	case m.state[idx].Direction == Desc:
		m.state[idx].Direction = Asc
	default:
		m.state = slices.Delete(m.state, idx, idx+1)
	}
	next := m.state.Clone()
	listener := m.onChange
	m.mu.Unlock()

	if listener != nil {
		listener(next.Clone())
	}
	return next
}

// SetStateDirectly replaces the state with a sanitized copy of state
// without notifying the listener. It is used to restore persisted state.
func (m *SortManager) SetStateDirectly(state SortState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Sanitize()
}

// SetLocale switches the collation used for text comparisons.
func (m *SortManager) SetLocale(locale language.Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cmp = newComparator(locale)
}

// State returns a copy of the current state.
func (m *SortManager) State() SortState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// SortInfo reports the direction and 1-based priority of key.
func (m *SortManager) SortInfo(key string) (SortInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.state.Index(key)
	if idx < 0 {
		return SortInfo{}, false
	}
	return SortInfo{Direction: m.state[idx].Direction, Priority: idx + 1}, true
}

type decoratedRow struct {
	row  Row
	vals []sortValue
}

// Apply returns data ordered by the current state. The input slice is
// never modified. With an empty state data is returned as is.
//
// Values are extracted once per row and column. An extractor that returns
// an error or panics makes every comparison on that cell a tie, so the
// order falls through to the next key.
func (m *SortManager) Apply(data []Row, extract ValueExtractor) []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.state) == 0 {
		return data
	}

	keys := m.state.Clone()
	failures := make(map[string]int)
	firstErr := make(map[string]error)

	decorated := make([]decoratedRow, len(data))
	for i, row := range data {
		vals := make([]sortValue, len(keys))
		for j, spec := range keys {
			v, err := safeExtract(extract, row, spec.Key)
			if err != nil {
				failures[spec.Key]++
				if _, ok := firstErr[spec.Key]; !ok {
					firstErr[spec.Key] = err
				}
				vals[j] = sortValue{failed: true}
				continue
			}
			vals[j] = toSortValue(v)
		}
		decorated[i] = decoratedRow{row: row, vals: vals}
	}

	for key, n := range failures {
		m.logger.Warn("sort value extraction failed", "column", key, "rows", n, "err", firstErr[key])
	}

	slices.SortStableFunc(decorated, func(a, b decoratedRow) int {
		for i, spec := range keys {
			av, bv := a.vals[i], b.vals[i]
			if av.failed || bv.failed {
				continue
			}
			c := m.cmp.compare(av, bv)
			if c == 0 {
				continue
			}
			if spec.Direction == Desc {
				return -c
			}
			return c
		}
		return 0
	})

	out := make([]Row, len(decorated))
	for i, d := range decorated {
		out[i] = d.row
	}
	return out
}

func safeExtract(extract ValueExtractor, row Row, key string) (v any, err error) {
	defer func() {
		if r := recover(); r != nil {
			v = nil
			err = fmt.Errorf("value accessor for %q panicked: %v", key, r)
		}
	}()
	return extract(row, key)
}
