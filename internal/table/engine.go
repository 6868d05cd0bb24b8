package table

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/text/language"
)

const (
	DefaultInitialRowCount = 50
	DefaultRowIncrement    = 25
	// DefaultScrollThreshold is the remaining scroll distance below which
	// the window grows.
	DefaultScrollThreshold = 24
)

// Column declares one column of a table.
type Column struct {
	Key        string
	Label      string
	Sortable   bool
	Searchable bool
	Type       ValueType
	// SortAccessor overrides the type-driven sort value of a cell.
	SortAccessor func(Row) (any, error)
	// FilterKey is the key under which the column's filter is stored in the
	// FilterStore. Defaults to Key.
	FilterKey string
	// Format renders the display value of a cell. Defaults to CellString.
	Format func(Row) string
	Width  int
}

func (c Column) filterKey() string {
	if c.FilterKey != "" {
		return c.FilterKey
	}
	return c.Key
}

// Cell returns the display value of c for row.
func (c Column) Cell(row Row) string {
	if c.Format != nil {
		return c.Format(row)
	}
	return CellString(row[c.Key])
}

// ViewState is the pagination window of a rendered table.
type ViewState struct {
	VisibleRowCount       int
	InitialRowCount       int
	RowIncrement          int
	TotalFilteredRowCount int
}

// HasMore reports whether rows beyond the visible window exist.
func (v ViewState) HasMore() bool {
	return v.VisibleRowCount < v.TotalFilteredRowCount
}

// RenderedRow pairs a row with its per-column display values.
type RenderedRow struct {
	Row   Row
	Cells []string
}

// Viewport is the output surface an Engine renders into.
type Viewport interface {
	// Replace discards every rendered row and shows rows instead.
	Replace(rows []RenderedRow)
	// Append adds rows after the ones already shown.
	Append(rows []RenderedRow)
	// Empty shows the empty-dataset placeholder.
	Empty(message string)
	SetFooter(footer string)
}

// RowRenderer produces the display values of row, one per column.
type RowRenderer func(row Row, columns []Column) []string

// FooterRenderer summarizes the full filtered row set.
type FooterRenderer func(rows []Row, state ViewState) string

// Options configures an Engine. Zero values select defaults.
type Options struct {
	ID string
	// SortStateKey enables sort persistence under this key.
	SortStateKey    string
	InitialRowCount int
	RowIncrement    int
	ScrollThreshold int
	Filters         FilterStore
	Persistence     PersistenceStore
	Viewport        Viewport
	RowRenderer     RowRenderer
	FooterRenderer  FooterRenderer
	Logger          *slog.Logger
	Collation       language.Tag
	EmptyMessage    string
}

// Engine turns a dataset and column definitions into a filtered, sorted,
// windowed row sequence and grows the window on demand.
type Engine struct {
	mu      sync.Mutex
	opts    Options
	sorter  *SortManager
	filters FilterStore
	store   PersistenceStore
	logger  *slog.Logger
	events  emitter

	data    []Row
	columns []Column
	rows    []Row
	state   ViewState
}

// NewEngine creates an engine. A nil FilterStore gets a private
// ColumnFilters and a nil PersistenceStore a MemoryStore.
func NewEngine(opts Options) *Engine {
	if opts.InitialRowCount <= 0 {
		opts.InitialRowCount = DefaultInitialRowCount
	}
	if opts.RowIncrement <= 0 {
		opts.RowIncrement = DefaultRowIncrement
	}
	if opts.ScrollThreshold <= 0 {
		opts.ScrollThreshold = DefaultScrollThreshold
	}
	if opts.EmptyMessage == "" {
		opts.EmptyMessage = "No data"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("table", opts.ID)

	e := &Engine{
		opts:    opts,
		sorter:  NewSortManager(opts.Collation, logger),
		filters: opts.Filters,
		store:   opts.Persistence,
		logger:  logger,
		state: ViewState{
			InitialRowCount: opts.InitialRowCount,
			RowIncrement:    opts.RowIncrement,
		},
	}
	if e.filters == nil {
		e.filters = NewColumnFilters()
	}
	if e.store == nil {
		e.store = NewMemoryStore()
	}
	e.sorter.OnChange(e.persist)
	return e
}

func (e *Engine) persist(state SortState) {
	if e.opts.SortStateKey == "" {
		return
	}
	if err := e.store.SaveSortState(e.opts.SortStateKey, state); err != nil {
		e.logger.Error("failed to save sort state", "key", e.opts.SortStateKey, "err", err)
	}
}

// ID returns the table identifier.
func (e *Engine) ID() string {
	return e.opts.ID
}

// Subscribe registers fn for every subsequent event and returns a function
// that removes it. Events are delivered after the engine's lock is released,
// so fn may call back into the engine.
func (e *Engine) Subscribe(fn func(Event)) func() {
	return e.events.subscribe(fn)
}

// Render replaces the dataset and column definitions and renders the first
// window.
func (e *Engine) Render(data []Row, columns []Column) {
	e.mu.Lock()
	if !e.mounted("render") {
		e.mu.Unlock()
		return
	}
	e.data = data
	e.columns = append([]Column(nil), columns...)
	ev := e.renderLocked()
	e.mu.Unlock()

	e.events.emit(ev)
}

// Refresh re-renders the current dataset from the first window.
func (e *Engine) Refresh() {
	e.mu.Lock()
	if !e.mounted("refresh") {
		e.mu.Unlock()
		return
	}
	ev := e.renderLocked()
	e.mu.Unlock()

	e.events.emit(ev)
}

func (e *Engine) mounted(op string) bool {
	if e.opts.Viewport == nil {
		e.logger.Warn("no viewport mounted, ignoring", "op", op)
		return false
	}
	return true
}

// renderLocked runs filter, sort and window over e.data. e.mu must be held.
func (e *Engine) renderLocked() Event {
	vp := e.opts.Viewport
	if len(e.data) == 0 {
		e.rows = nil
		e.state.TotalFilteredRowCount = 0
		e.state.VisibleRowCount = 0
		vp.Empty(e.opts.EmptyMessage)
		vp.SetFooter("")
		return e.event(EventRendered, "")
	}

	e.restoreSortState()

	filtered := FilterRows(e.data, e.activeFilters())
	e.rows = e.sorter.Apply(filtered, e.extractor())

	e.state.TotalFilteredRowCount = len(e.rows)
	e.state.VisibleRowCount = min(e.opts.InitialRowCount, len(e.rows))

	vp.Replace(e.renderRows(e.rows[:e.state.VisibleRowCount]))
	vp.SetFooter(e.footer())
	return e.event(EventRendered, "")
}

func (e *Engine) restoreSortState() {
	if e.opts.SortStateKey == "" {
		return
	}
	state, ok, err := e.store.LoadSortState(e.opts.SortStateKey)
	if err != nil {
		e.logger.Error("failed to load sort state", "key", e.opts.SortStateKey, "err", err)
		return
	}
	if ok {
		e.sorter.SetStateDirectly(state)
	}
}

// activeFilters returns the confirmed filters that belong to this table's
// columns, with Field defaulting to the column key.
func (e *Engine) activeFilters() map[string]FilterEntry {
	confirmed := e.filters.Confirmed()
	if len(confirmed) == 0 {
		return nil
	}
	out := make(map[string]FilterEntry)
	for _, col := range e.columns {
		entry, ok := confirmed[col.filterKey()]
		if !ok {
			continue
		}
		if entry.Field == "" {
			entry.Field = col.Key
		}
		out[col.filterKey()] = entry
	}
	return out
}

func (e *Engine) extractor() ValueExtractor {
	byKey := make(map[string]Column, len(e.columns))
	for _, col := range e.columns {
		byKey[col.Key] = col
	}
	return func(row Row, key string) (any, error) {
		col, ok := byKey[key]
		if !ok {
			return nil, fmt.Errorf("unknown sort column %q", key)
		}
		if col.SortAccessor != nil {
			return col.SortAccessor(row)
		}
		return typedValue(col.Type, row[col.Key]), nil
	}
}

func (e *Engine) renderRows(rows []Row) []RenderedRow {
	out := make([]RenderedRow, len(rows))
	for i, row := range rows {
		var cells []string
		if e.opts.RowRenderer != nil {
			cells = e.opts.RowRenderer(row, e.columns)
		} else {
			cells = make([]string, len(e.columns))
			for j, col := range e.columns {
				cells[j] = col.Cell(row)
			}
		}
		out[i] = RenderedRow{Row: row, Cells: cells}
	}
	return out
}

func (e *Engine) footer() string {
	if e.opts.FooterRenderer == nil {
		return ""
	}
	return e.opts.FooterRenderer(e.rows, e.state)
}

func (e *Engine) event(kind EventKind, column string) Event {
	return Event{
		Kind:    kind,
		TableID: e.opts.ID,
		Column:  column,
		State:   e.state,
		Sort:    e.sorter.State(),
	}
}

// HandleScroll grows the visible window when remaining, the distance left
// to scroll in the viewport, is below the scroll threshold. It appends at
// most RowIncrement rows from the already sorted sequence and reports
// whether the window grew.
func (e *Engine) HandleScroll(remaining int) bool {
	e.mu.Lock()
	if !e.mounted("scroll") {
		e.mu.Unlock()
		return false
	}
	if remaining >= e.opts.ScrollThreshold || !e.state.HasMore() {
		e.mu.Unlock()
		return false
	}
	start := e.state.VisibleRowCount
	end := min(start+e.opts.RowIncrement, e.state.TotalFilteredRowCount)
	e.opts.Viewport.Append(e.renderRows(e.rows[start:end]))
	e.state.VisibleRowCount = end
	e.opts.Viewport.SetFooter(e.footer())
	ev := e.event(EventWindowGrown, "")
	e.mu.Unlock()

	e.events.emit(ev)
	return true
}

// Sort toggles the sort of column key and re-renders from the first window.
func (e *Engine) Sort(key string) {
	e.mu.Lock()
	if !e.mounted("sort") {
		e.mu.Unlock()
		return
	}
	col, ok := e.column(key)
	if !ok || !col.Sortable {
		e.logger.Warn("ignoring sort on unknown or unsortable column", "column", key)
		e.mu.Unlock()
		return
	}
	e.sorter.Toggle(key)
	rendered := e.renderLocked()
	changed := e.event(EventSortChanged, key)
	e.mu.Unlock()

	e.events.emit(rendered)
	e.events.emit(changed)
}

// SetPendingFilter records value as the pending filter of column key. The
// rendered rows do not change until ApplyFilter.
func (e *Engine) SetPendingFilter(key, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.searchable(key)
	if !ok {
		return
	}
	e.filters.SetPending(col.filterKey(), FilterEntry{Value: value, Field: col.Key})
}

// FilterValue returns the filter value of column key, preferring the
// pending value when asked to.
func (e *Engine) FilterValue(key string, preferPending bool) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.column(key)
	if !ok {
		return ""
	}
	return e.filters.Value(col.filterKey(), preferPending)
}

// ApplyFilter confirms the pending filter of column key and re-renders.
func (e *Engine) ApplyFilter(key string) {
	e.mutateFilter("apply filter", key, func(fk string) { e.filters.Confirm(fk) })
}

// CancelFilter discards the pending filter of column key and re-renders.
func (e *Engine) CancelFilter(key string) {
	e.mutateFilter("cancel filter", key, func(fk string) { e.filters.Cancel(fk) })
}

// ClearFilter removes both the pending and confirmed filter of column key
// and re-renders.
func (e *Engine) ClearFilter(key string) {
	e.mutateFilter("clear filter", key, func(fk string) { e.filters.Remove(fk) })
}

// ClearAllFilters removes every filter of this table's columns.
func (e *Engine) ClearAllFilters() {
	e.mu.Lock()
	if !e.mounted("clear filters") {
		e.mu.Unlock()
		return
	}
	for _, col := range e.columns {
		if col.Searchable {
			e.filters.Remove(col.filterKey())
		}
	}
	rendered := e.renderLocked()
	changed := e.event(EventFilterChanged, "")
	e.mu.Unlock()

	e.events.emit(rendered)
	e.events.emit(changed)
}

func (e *Engine) mutateFilter(op, key string, mutate func(filterKey string)) {
	e.mu.Lock()
	if !e.mounted(op) {
		e.mu.Unlock()
		return
	}
	col, ok := e.searchable(key)
	if !ok {
		e.mu.Unlock()
		return
	}
	mutate(col.filterKey())
	rendered := e.renderLocked()
	changed := e.event(EventFilterChanged, key)
	e.mu.Unlock()

	e.events.emit(rendered)
	e.events.emit(changed)
}

func (e *Engine) column(key string) (Column, bool) {
	for _, col := range e.columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column{}, false
}

func (e *Engine) searchable(key string) (Column, bool) {
	col, ok := e.column(key)
	if !ok || !col.Searchable {
		e.logger.Warn("ignoring filter on unknown or unsearchable column", "column", key)
		return Column{}, false
	}
	return col, true
}

// Rows returns the full filtered and sorted sequence of the last render.
func (e *Engine) Rows() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Row(nil), e.rows...)
}

// Visible returns the rows in the current window.
func (e *Engine) Visible() []Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Row(nil), e.rows[:e.state.VisibleRowCount]...)
}

func (e *Engine) ViewState() ViewState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) SortInfo(key string) (SortInfo, bool) {
	return e.sorter.SortInfo(key)
}

func (e *Engine) SortState() SortState {
	return e.sorter.State()
}

// SetCollation changes the locale used to order text and re-renders.
func (e *Engine) SetCollation(tag language.Tag) {
	e.sorter.SetLocale(tag)
	e.Refresh()
}

// Columns returns a copy of the column definitions of the last render.
func (e *Engine) Columns() []Column {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Column(nil), e.columns...)
}

// Filters returns the confirmed filters that apply to this table, keyed by
// column key.
func (e *Engine) Filters() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	confirmed := e.filters.Confirmed()
	out := make(map[string]string)
	for _, col := range e.columns {
		if entry, ok := confirmed[col.filterKey()]; ok {
			out[col.Key] = entry.Value
		}
	}
	return out
}

// Values returns the distinct display values of column key over the whole
// dataset, sorted. They feed filter suggestions.
func (e *Engine) Values(key string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	col, ok := e.column(key)
	if !ok {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range e.data {
		v := CellString(row[col.Key])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
