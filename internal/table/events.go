package table

import "sync"

// EventKind identifies what happened to a table.
type EventKind int

const (
	// EventRendered follows every full render, including the empty state.
	EventRendered EventKind = iota
	// EventWindowGrown follows an incremental append of rows.
	EventWindowGrown
	// EventSortChanged follows a sort toggle.
	EventSortChanged
	// EventFilterChanged follows a filter apply, cancel, or clear.
	EventFilterChanged
)

func (k EventKind) String() string {
	switch k {
	case EventRendered:
		return "rendered"
	case EventWindowGrown:
		return "window-grown"
	case EventSortChanged:
		return "sort-changed"
	case EventFilterChanged:
		return "filter-changed"
	default:
		return "unknown"
	}
}

// Event is delivered to subscribers of an Engine.
type Event struct {
	Kind    EventKind
	TableID string
	// Column is the column key of a sort or filter action.
	Column string
	State  ViewState
	Sort   SortState
}

type emitter struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func (e *emitter) subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.subs == nil {
		e.subs = make(map[int]func(Event))
	}
	id := e.next
	e.next++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

func (e *emitter) emit(ev Event) {
	e.mu.Lock()
	subs := make([]func(Event), 0, len(e.subs))
	// deliver in subscription order
	for i := 0; i < e.next; i++ {
		if fn, ok := e.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}
