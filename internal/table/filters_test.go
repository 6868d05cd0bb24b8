package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finboard/internal/table"
)

func TestMatchesAndSemantics(t *testing.T) {
	filters := map[string]table.FilterEntry{
		"category": {Value: "foo"},
		"type":     {Value: "bar"},
	}

	assert.True(t, table.Matches(table.Row{"category": "xFOOx", "type": "Barista"}, filters))
	assert.False(t, table.Matches(table.Row{"category": "foo", "type": "baz"}, filters))
	assert.False(t, table.Matches(table.Row{"category": "fo", "type": "bar"}, filters))
	assert.False(t, table.Matches(table.Row{"type": "bar"}, filters))
}

func TestMatchesUsesField(t *testing.T) {
	filters := map[string]table.FilterEntry{
		"transactions.category": {Value: "rent", Field: "category"},
	}
	assert.True(t, table.Matches(table.Row{"category": "Rent"}, filters))
	assert.False(t, table.Matches(table.Row{"category": "Food"}, filters))
}

func TestMatchesNumbers(t *testing.T) {
	filters := map[string]table.FilterEntry{"amount": {Value: "12.5"}}
	assert.True(t, table.Matches(table.Row{"amount": 112.5}, filters))
}

func TestEmptyFilterIsNoop(t *testing.T) {
	data := []table.Row{{"category": "a"}, {"category": "b"}, {"category": nil}}

	got := table.FilterRows(data, map[string]table.FilterEntry{"category": {Value: "  "}})
	assert.Equal(t, data, got)
	assert.Equal(t, data, table.FilterRows(data, nil))
}

func TestColumnFiltersPendingAndConfirmed(t *testing.T) {
	f := table.NewColumnFilters()

	f.SetPending("category", table.FilterEntry{Value: "rent"})
	assert.True(t, f.HasPending("category"))
	assert.Equal(t, "rent", f.Value("category", true))
	assert.Equal(t, "", f.Value("category", false))
	assert.Empty(t, f.Confirmed())

	f.Confirm("category")
	assert.False(t, f.HasPending("category"))
	assert.Equal(t, map[string]table.FilterEntry{"category": {Value: "rent"}}, f.Confirmed())

	f.SetPending("category", table.FilterEntry{Value: "food"})
	assert.Equal(t, "food", f.Value("category", true))
	f.Cancel("category")
	assert.Equal(t, "rent", f.Value("category", true))

	f.Remove("category")
	assert.Empty(t, f.Confirmed())
	assert.Equal(t, "", f.Value("category", true))
}

func TestColumnFiltersPruneEmptyPending(t *testing.T) {
	f := table.NewColumnFilters()

	f.SetPending("type", table.FilterEntry{Value: ""})
	assert.False(t, f.HasPending("type"))

	f.SetPending("type", table.FilterEntry{Value: "income"})
	f.Confirm("type")
	f.SetPending("type", table.FilterEntry{Value: ""})
	assert.True(t, f.HasPending("type"))

	f.Confirm("type")
	assert.Empty(t, f.Confirmed())
}

func TestConfirmTrimsValue(t *testing.T) {
	f := table.NewColumnFilters()
	f.SetPending("k", table.FilterEntry{Value: "  rent "})
	f.Confirm("k")
	assert.Equal(t, "rent", f.Value("k", false))
}
