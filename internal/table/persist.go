package table

import "sync"

// PersistenceStore saves and restores SortState across renders, keyed by a
// table's sort state key.
type PersistenceStore interface {
	LoadSortState(key string) (SortState, bool, error)
	SaveSortState(key string, state SortState) error
}

// MemoryStore keeps sort state for the lifetime of the process.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]SortState
}

var _ PersistenceStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]SortState)}
}

func (s *MemoryStore) LoadSortState(key string) (SortState, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[key]
	if !ok {
		return nil, false, nil
	}
	return state.Clone(), true, nil
}

func (s *MemoryStore) SaveSortState(key string, state SortState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[key] = state.Clone()
	return nil
}
