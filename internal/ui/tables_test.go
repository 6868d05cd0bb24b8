package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finboard/internal/i18n"
	"finboard/internal/table"
)

func TestFooterRendererSumsFilteredRows(t *testing.T) {
	de := i18n.MustLoad("de")
	footer := footerRenderer(de, "EUR", "amount")

	rows := []table.Row{{"amount": "-10,50"}, {"amount": "100"}}
	got := footer(rows, table.ViewState{VisibleRowCount: 2, TotalFilteredRowCount: 2})
	assert.Equal(t, "2 von 2 Zeilen  ·  Summe 89,50 €", got)

	got = footer(rows, table.ViewState{VisibleRowCount: 1, TotalFilteredRowCount: 2})
	assert.Contains(t, got, "scrollen für mehr")

	noSum := footerRenderer(de, "EUR", "")
	assert.Equal(t, "0 von 0 Zeilen", noSum(nil, table.ViewState{}))
}

func TestTransactionColumnsAddExtraFields(t *testing.T) {
	en := i18n.MustLoad("en")
	cols := transactionColumns(en, "EUR", []string{"date", "amount", "account", "source"})

	require.Len(t, cols, 7)
	last := cols[len(cols)-1]
	assert.Equal(t, "source", last.Key)
	assert.Equal(t, "Source", last.Label)
	assert.Equal(t, "transactions.source", last.FilterKey)
	assert.Equal(t, "account", cols[5].Key)
	for _, c := range cols {
		assert.True(t, c.Sortable, c.Key)
		assert.NotEmpty(t, c.FilterKey, c.Key)
	}
}

func TestColumnFormats(t *testing.T) {
	de := i18n.MustLoad("de")
	cols := transactionColumns(de, "EUR", nil)
	row := table.Row{"date": "05.01.2024", "amount": "-1234,5", "kind": "expense"}

	byKey := make(map[string]table.Column)
	for _, c := range cols {
		byKey[c.Key] = c
	}
	assert.Equal(t, "2024-01-05", byKey["date"].Cell(row))
	assert.Equal(t, "-1.234,50 €", byKey["amount"].Cell(row))
	assert.Equal(t, "Ausgabe", byKey["kind"].Cell(row))

	monthly := monthlyColumns(de, "EUR")
	assert.Equal(t, "Jan 2024", monthly[0].Cell(table.Row{"month": "2024-01"}))
	assert.Equal(t, "monthly.month", monthly[0].FilterKey)
}

func TestRenderCellsFlattensWhitespace(t *testing.T) {
	cols := []table.Column{{Key: "note"}}
	cells := renderCells(table.Row{"note": "line one\n  line two"}, cols)
	assert.Equal(t, []string{"line one line two"}, cells)
}

func TestDetailFieldsShowsExtraFields(t *testing.T) {
	en := i18n.MustLoad("en")
	cols := transactionColumns(en, "EUR", nil)
	row := table.Row{"date": "2024-03-09", "amount": "-5", "category": "Food", "payee": "Bakery"}
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	out := detailFields(en, cols, row, now)
	joined := ""
	for _, l := range out {
		joined += l + "\n"
	}
	assert.Contains(t, joined, "2024-03-09 (Yesterday)")
	assert.Contains(t, joined, "Payee:")
	assert.Contains(t, joined, "Bakery")
}
