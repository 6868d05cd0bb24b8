package table_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/table"
)

type recordingViewport struct {
	rows     []table.RenderedRow
	replaces int
	appends  int
	empty    string
	footer   string
}

func (v *recordingViewport) Replace(rows []table.RenderedRow) {
	v.rows = append([]table.RenderedRow(nil), rows...)
	v.empty = ""
	v.replaces++
}

func (v *recordingViewport) Append(rows []table.RenderedRow) {
	v.rows = append(v.rows, rows...)
	v.appends++
}

func (v *recordingViewport) Empty(message string) {
	v.rows = nil
	v.empty = message
}

func (v *recordingViewport) SetFooter(footer string) {
	v.footer = footer
}

func numberedRows(n int) []table.Row {
	rows := make([]table.Row, n)
	for i := range rows {
		cat := "even"
		if i%2 == 1 {
			cat = "odd"
		}
		rows[i] = table.Row{"id": i, "category": cat}
	}
	return rows
}

var numberedColumns = []table.Column{
	{Key: "id", Label: "ID", Sortable: true, Type: table.TypeNumber},
	{Key: "category", Label: "Category", Sortable: true, Searchable: true},
}

func newEngine(t *testing.T, vp table.Viewport, opts table.Options) *table.Engine {
	t.Helper()
	opts.Viewport = vp
	opts.Logger = quietLogger()
	if opts.ID == "" {
		opts.ID = "test"
	}
	return table.NewEngine(opts)
}

func TestWindowGrowthStopsAtTotal(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{InitialRowCount: 20, RowIncrement: 10})
	e.Render(numberedRows(25), numberedColumns)

	require.Equal(t, 20, e.ViewState().VisibleRowCount)
	require.Len(t, vp.rows, 20)

	assert.True(t, e.HandleScroll(0))
	assert.Equal(t, 25, e.ViewState().VisibleRowCount)
	assert.Len(t, vp.rows, 25)
	assert.Equal(t, 1, vp.appends)
	assert.Equal(t, 1, vp.replaces)

	assert.False(t, e.HandleScroll(0))
	assert.Equal(t, 25, e.ViewState().VisibleRowCount)
}

func TestScrollAboveThresholdDoesNotGrow(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{InitialRowCount: 5, RowIncrement: 5})
	e.Render(numberedRows(30), numberedColumns)

	assert.False(t, e.HandleScroll(table.DefaultScrollThreshold))
	assert.True(t, e.HandleScroll(table.DefaultScrollThreshold-1))
	assert.Equal(t, 10, e.ViewState().VisibleRowCount)
}

func TestGrowthKeepsSortedOrder(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{InitialRowCount: 3, RowIncrement: 3})
	e.Render(numberedRows(7), numberedColumns)
	e.Sort("id")

	for e.HandleScroll(0) {
	}

	ids := make([]int, len(vp.rows))
	for i, r := range vp.rows {
		ids[i] = r.Row["id"].(int)
	}
	assert.Equal(t, []int{6, 5, 4, 3, 2, 1, 0}, ids)
}

func TestMutationsResetWindow(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{InitialRowCount: 4, RowIncrement: 4})
	e.Render(numberedRows(40), numberedColumns)

	grow := func() {
		e.HandleScroll(0)
		e.HandleScroll(0)
		require.Equal(t, 12, e.ViewState().VisibleRowCount)
	}

	grow()
	e.Sort("id")
	assert.Equal(t, 4, e.ViewState().VisibleRowCount)

	grow()
	e.SetPendingFilter("category", "odd")
	assert.Equal(t, 12, e.ViewState().VisibleRowCount, "pending filter does not re-render")
	e.ApplyFilter("category")
	assert.Equal(t, 4, e.ViewState().VisibleRowCount)
	assert.Equal(t, 20, e.ViewState().TotalFilteredRowCount)

	grow()
	e.ClearFilter("category")
	assert.Equal(t, 4, e.ViewState().VisibleRowCount)
	assert.Equal(t, 40, e.ViewState().TotalFilteredRowCount)

	grow()
	e.SetPendingFilter("category", "even")
	e.CancelFilter("category")
	assert.Equal(t, 4, e.ViewState().VisibleRowCount)
	assert.Equal(t, 40, e.ViewState().TotalFilteredRowCount)
}

func TestCurrencyColumnSortsNumerically(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{})
	e.Render([]table.Row{
		{"m": "2024-01", "amt": "100,00€"},
		{"m": "2024-02", "amt": "50,00€"},
	}, []table.Column{
		{Key: "m", Sortable: true},
		{Key: "amt", Sortable: true, Type: table.TypeCurrency},
	})

	e.Sort("amt")

	rows := e.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "2024-01", rows[0]["m"])
	assert.Equal(t, "2024-02", rows[1]["m"])

	e.Sort("amt")
	assert.Equal(t, "2024-02", e.Rows()[0]["m"])
}

func TestDateColumnUnparseableSortsAsEpoch(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{})
	e.Render([]table.Row{
		{"id": 1, "date": "2024-03-01"},
		{"id": 2, "date": "not a date"},
		{"id": 3, "date": "15.01.2024"},
	}, []table.Column{
		{Key: "id"},
		{Key: "date", Sortable: true, Type: table.TypeDate},
	})

	e.Sort("date")
	e.Sort("date")

	var ids []int
	for _, r := range e.Rows() {
		ids = append(ids, r["id"].(int))
	}
	assert.Equal(t, []int{2, 3, 1}, ids)
}

func TestSortAccessorErrorTreatedAsTie(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{})
	cols := []table.Column{
		{Key: "id", Sortable: true, Type: table.TypeNumber},
		{Key: "bad", Sortable: true, SortAccessor: func(table.Row) (any, error) {
			return nil, errors.New("broken")
		}},
	}
	data := []table.Row{{"id": 2}, {"id": 1}, {"id": 3}}
	e.Render(data, cols)

	e.Sort("bad")
	assert.Equal(t, data, e.Rows())

	e.Sort("id")
	e.Sort("id")
	assert.Equal(t, []table.Row{{"id": 1}, {"id": 2}, {"id": 3}}, e.Rows())
}

func TestEmptyDatasetRendersPlaceholder(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{EmptyMessage: "nothing here"})
	e.Render(nil, numberedColumns)

	assert.Equal(t, "nothing here", vp.empty)
	assert.Equal(t, 0, vp.replaces)
	assert.False(t, e.HandleScroll(0))
	assert.Empty(t, e.Visible())
}

func TestMissingViewportIsNoop(t *testing.T) {
	e := table.NewEngine(table.Options{ID: "headless", Logger: quietLogger()})

	assert.NotPanics(t, func() {
		e.Render(numberedRows(3), numberedColumns)
		e.Sort("id")
		e.ApplyFilter("category")
		e.HandleScroll(0)
	})
	assert.Empty(t, e.Rows())
	assert.Empty(t, e.SortState())
}

func TestUnknownColumnsAreIgnored(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{})
	e.Render(numberedRows(3), []table.Column{
		{Key: "id", Type: table.TypeNumber},
		{Key: "category", Sortable: true},
	})
	replaces := vp.replaces

	e.Sort("missing")
	e.Sort("id")
	e.SetPendingFilter("id", "1")
	e.ApplyFilter("id")

	assert.Empty(t, e.SortState())
	assert.Equal(t, replaces, vp.replaces)
	assert.Equal(t, "", e.FilterValue("id", true))
}

func TestSortStatePersistsAcrossEngines(t *testing.T) {
	store := table.NewMemoryStore()
	opts := table.Options{SortStateKey: "transactions", Persistence: store}

	first := newEngine(t, &recordingViewport{}, opts)
	first.Render(numberedRows(5), numberedColumns)
	first.Sort("category")
	first.Sort("id")
	first.Sort("id")

	saved, ok, err := store.LoadSortState("transactions")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, table.SortState{
		{Key: "category", Direction: table.Desc},
		{Key: "id", Direction: table.Asc},
	}, saved)

	second := newEngine(t, &recordingViewport{}, opts)
	second.Render(numberedRows(5), numberedColumns)
	assert.Equal(t, saved, second.SortState())

	info, ok := second.SortInfo("id")
	require.True(t, ok)
	assert.Equal(t, table.SortInfo{Direction: table.Asc, Priority: 2}, info)
	assert.Equal(t, "odd", second.Rows()[0]["category"])
	assert.Equal(t, 1, second.Rows()[0]["id"])
}

type failingStore struct{}

func (failingStore) LoadSortState(string) (table.SortState, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (failingStore) SaveSortState(string, table.SortState) error {
	return errors.New("disk on fire")
}

func TestPersistenceErrorsDoNotEscape(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{SortStateKey: "k", Persistence: failingStore{}})

	assert.NotPanics(t, func() {
		e.Render(numberedRows(3), numberedColumns)
		e.Sort("id")
	})
	assert.Equal(t, table.SortState{{Key: "id", Direction: table.Desc}}, e.SortState())
}

func TestSharedFilterStoreIsScopedByFilterKey(t *testing.T) {
	filters := table.NewColumnFilters()
	cols := func(prefix string) []table.Column {
		return []table.Column{
			{Key: "category", Searchable: true, FilterKey: prefix + ".category"},
		}
	}
	data := []table.Row{{"category": "Rent"}, {"category": "Food"}}

	a := newEngine(t, &recordingViewport{}, table.Options{ID: "a", Filters: filters})
	b := newEngine(t, &recordingViewport{}, table.Options{ID: "b", Filters: filters})
	a.Render(data, cols("a"))
	b.Render(data, cols("b"))

	a.SetPendingFilter("category", "rent")
	a.ApplyFilter("category")
	b.Refresh()

	assert.Len(t, a.Rows(), 1)
	assert.Len(t, b.Rows(), 2)
	assert.Equal(t, map[string]string{"category": "rent"}, a.Filters())
	assert.Empty(t, b.Filters())
}

func TestRenderersAndEvents(t *testing.T) {
	vp := &recordingViewport{}
	e := newEngine(t, vp, table.Options{
		ID:              "tx",
		InitialRowCount: 2,
		RowRenderer: func(row table.Row, cols []table.Column) []string {
			return []string{fmt.Sprintf("#%v", row["id"])}
		},
		FooterRenderer: func(rows []table.Row, state table.ViewState) string {
			return fmt.Sprintf("%d of %d", state.VisibleRowCount, len(rows))
		},
	})

	var kinds []table.EventKind
	unsubscribe := e.Subscribe(func(ev table.Event) {
		assert.Equal(t, "tx", ev.TableID)
		kinds = append(kinds, ev.Kind)
		// events are delivered outside the lock
		_ = e.ViewState()
	})

	e.Render(numberedRows(3), numberedColumns)
	assert.Equal(t, []string{"#0"}, vp.rows[0].Cells)
	assert.Equal(t, "2 of 3", vp.footer)

	e.HandleScroll(0)
	assert.Equal(t, "3 of 3", vp.footer)

	e.Sort("id")
	e.SetPendingFilter("category", "odd")
	e.ApplyFilter("category")

	unsubscribe()
	e.Refresh()

	assert.Equal(t, []table.EventKind{
		table.EventRendered,
		table.EventWindowGrown,
		table.EventRendered,
		table.EventSortChanged,
		table.EventRendered,
		table.EventFilterChanged,
	}, kinds)
}

func TestValues(t *testing.T) {
	e := newEngine(t, &recordingViewport{}, table.Options{})
	e.Render(numberedRows(4), numberedColumns)
	assert.Equal(t, []string{"even", "odd"}, e.Values("category"))
	assert.Nil(t, e.Values("missing"))
}
