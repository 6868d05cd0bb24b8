package ui

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/table"
)

var testColumns = []table.Column{
	{Key: "id", Label: "Id", Sortable: true, Type: table.TypeNumber, Width: 4},
	{Key: "category", Label: "Category", Sortable: true, Searchable: true, Width: 10},
	{Key: "note", Label: "Note", Searchable: true, Width: 10},
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testRows(n int) []table.Row {
	rows := make([]table.Row, n)
	for i := range rows {
		category := "Rent"
		if i%2 == 1 {
			category = "Food"
		}
		rows[i] = table.Row{"id": i, "category": category, "note": ""}
	}
	return rows
}

func newTestView(t *testing.T, opts table.Options) *TableView {
	t.Helper()
	if opts.ID == "" {
		opts.ID = "test"
	}
	opts.Logger = quietLogger()
	v := NewTableView(opts, testColumns, "nothing matches")
	v.viewportHeight = 10
	return v
}

func TestTableViewGrowsAtTheBottom(t *testing.T) {
	v := newTestView(t, table.Options{InitialRowCount: 20, RowIncrement: 10, ScrollThreshold: 5})
	v.SetData(testRows(35))
	require.Equal(t, 20, v.Rendered())

	v.MoveDown()
	assert.Equal(t, 20, v.Rendered())

	v.JumpToBottom()
	assert.Equal(t, 30, v.Rendered())
	v.JumpToBottom()
	assert.Equal(t, 35, v.Rendered())
	v.JumpToBottom()
	assert.Equal(t, 35, v.Rendered())
	assert.Equal(t, 34, v.Cursor())
}

func TestTableViewSortCyclesAndResetsCursor(t *testing.T) {
	v := newTestView(t, table.Options{})
	v.SetData(testRows(5))
	v.MoveDown()
	v.MoveDown()

	info, sorted := v.CycleSortActiveColumn()
	require.True(t, sorted)
	assert.Equal(t, table.Desc, info.Direction)
	assert.Equal(t, 1, info.Priority)
	assert.Equal(t, 0, v.Cursor())
	row, ok := v.SelectedRow()
	require.True(t, ok)
	assert.Equal(t, 4, row["id"])

	info, sorted = v.CycleSortActiveColumn()
	require.True(t, sorted)
	assert.Equal(t, table.Asc, info.Direction)

	_, sorted = v.CycleSortActiveColumn()
	assert.False(t, sorted)
}

func TestTableViewFilterBySelectedValue(t *testing.T) {
	v := newTestView(t, table.Options{})
	v.SetData(testRows(6))

	require.True(t, v.JumpToColumn(2))
	v.MoveDown()
	require.True(t, v.FilterBySelectedValue())
	assert.Equal(t, 3, v.Rendered())
	for _, r := range v.Engine().Rows() {
		assert.Equal(t, "Food", r["category"])
	}
	assert.Contains(t, v.TableMeta(), `category~"Food"`)

	assert.True(t, v.ClearFilter())
	assert.False(t, v.ClearFilter())
	assert.Equal(t, 6, v.Rendered())
}

func TestTableViewFilterNeedsSearchableValue(t *testing.T) {
	v := newTestView(t, table.Options{})
	v.SetData(testRows(2))

	assert.False(t, v.FilterBySelectedValue(), "id is not searchable")
	require.True(t, v.JumpToColumn(3))
	assert.False(t, v.FilterBySelectedValue(), "empty cell")
}

func TestTableViewHideColumnsAndPrefs(t *testing.T) {
	v := newTestView(t, table.Options{})
	v.SetData(testRows(2))

	require.True(t, v.JumpToColumn(2))
	require.True(t, v.HideActiveColumn())
	assert.Equal(t, "id", v.ActiveColumn().Key)
	require.True(t, v.HideActiveColumn())
	assert.False(t, v.HideActiveColumn(), "last visible column stays")
	assert.False(t, v.JumpToColumn(2))

	prefs := v.Prefs()
	assert.ElementsMatch(t, []string{"id", "category"}, prefs.HiddenColumns)
	assert.Equal(t, "note", prefs.ActiveColumn)

	other := newTestView(t, table.Options{})
	other.ApplyPrefs(TablePrefs{HiddenColumns: []string{"id"}, ActiveColumn: "id"})
	assert.Equal(t, "category", other.ActiveColumn().Key)

	v.ShowAllColumns()
	assert.Empty(t, v.Prefs().HiddenColumns)
}

func TestTableViewColumnNavigationSkipsHidden(t *testing.T) {
	v := newTestView(t, table.Options{})
	v.ApplyPrefs(TablePrefs{HiddenColumns: []string{"category"}})

	v.NextColumn()
	assert.Equal(t, "note", v.ActiveColumn().Key)
	v.NextColumn()
	assert.Equal(t, "id", v.ActiveColumn().Key)
	v.PrevColumn()
	assert.Equal(t, "note", v.ActiveColumn().Key)
}

func TestTableViewRendersBadgesAndPlaceholders(t *testing.T) {
	v := newTestView(t, table.Options{EmptyMessage: "no data yet"})
	assert.Contains(t, v.View(80, 12), "no data yet")

	v.SetData(testRows(3))
	v.CycleSortActiveColumn()
	out := v.View(80, 12)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "↓1")

	require.True(t, v.JumpToColumn(2))
	v.Engine().SetPendingFilter("category", "nope")
	v.Engine().ApplyFilter("category")
	assert.Contains(t, v.View(80, 12), "nothing matches")
}
