package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"finboard/internal/table"
)

func TestSuggest(t *testing.T) {
	values := []string{"Groceries", "Rent", "Restaurants", "Rent", "", "Travel"}

	t.Run("empty query lists distinct values", func(t *testing.T) {
		assert.Equal(t, []string{"Groceries", "Rent", "Restaurants"}, table.Suggest("", values, 3))
	})

	t.Run("substring matches first", func(t *testing.T) {
		got := table.Suggest("re", values, 10)
		assert.Equal(t, []string{"Rent", "Restaurants"}, got[:2])
		assert.Contains(t, got, "Groceries")
	})

	t.Run("case insensitive fuzzy", func(t *testing.T) {
		assert.Equal(t, []string{"Restaurants"}, table.Suggest("RSTR", values, 10))
	})

	t.Run("limit", func(t *testing.T) {
		assert.Len(t, table.Suggest("e", values, 2), 2)
		assert.Nil(t, table.Suggest("e", values, 0))
	})
}
