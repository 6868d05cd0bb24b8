package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finboard/internal/i18n"
	"finboard/internal/report"
	"finboard/internal/table"
	"finboard/internal/util"
)

// Table ids. They double as sort state keys and preference keys.
const (
	TableTransactions = "transactions"
	TableMonthly      = "monthly"
	TableCategories   = "categories"
)

var tableIDs = []string{TableTransactions, TableMonthly, TableCategories}

// knownTransactionFields are shown by the fixed transaction columns.
var knownTransactionFields = map[string]bool{
	report.FieldDate:        true,
	report.FieldMonth:       true,
	report.FieldAmount:      true,
	report.FieldCategory:    true,
	report.FieldDescription: true,
	report.FieldType:        true,
	report.FieldKind:        true,
}

func filterKey(tableID, key string) string {
	return tableID + "." + key
}

// decimalValue reads a cell holding a decimal, a number or amount text.
func decimalValue(v any) decimal.Decimal {
	switch x := v.(type) {
	case decimal.Decimal:
		return x
	case float64:
		return decimal.NewFromFloat(x)
	case int:
		return decimal.NewFromInt(int64(x))
	}
	d, err := util.ParseAmount(table.CellString(v))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func currencyFormat(key, currency, lang string) func(table.Row) string {
	return func(row table.Row) string {
		return util.FormatCurrency(decimalValue(row[key]), currency, lang)
	}
}

func percentFormat(key, lang string) func(table.Row) string {
	return func(row table.Row) string {
		return util.FormatPercent(decimalValue(row[key]), lang)
	}
}

func kindFormat(cat *i18n.Catalog) func(table.Row) string {
	return func(row table.Row) string {
		kind := table.CellString(row[report.FieldKind])
		if kind == "" {
			return ""
		}
		return cat.T("kind." + kind)
	}
}

// transactionColumns returns the fixed transaction columns followed by one
// text column per extra export field, e.g. account or source.
func transactionColumns(cat *i18n.Catalog, currency string, extra []string) []table.Column {
	lang := cat.Lang()
	cols := []table.Column{
		{
			Key: report.FieldDate, Label: cat.T("col.date"), Sortable: true, Searchable: true,
			Type: table.TypeDate, Width: 10,
			Format: func(row table.Row) string {
				return util.FormatDate(table.CellString(row[report.FieldDate]))
			},
		},
		{Key: report.FieldDescription, Label: cat.T("col.description"), Sortable: true, Searchable: true, Width: 28},
		{Key: report.FieldCategory, Label: cat.T("col.category"), Sortable: true, Searchable: true, Width: 16},
		{Key: report.FieldKind, Label: cat.T("col.kind"), Sortable: true, Searchable: true, Width: 8, Format: kindFormat(cat)},
		{
			Key: report.FieldAmount, Label: cat.T("col.amount"), Sortable: true, Searchable: true,
			Type: table.TypeCurrency, Width: 14,
			SortAccessor: func(row table.Row) (any, error) {
				return report.Amount(row).InexactFloat64(), nil
			},
			Format: func(row table.Row) string {
				return util.FormatCurrency(report.Amount(row), currency, lang)
			},
		},
	}
	for _, key := range extra {
		if knownTransactionFields[key] {
			continue
		}
		cols = append(cols, table.Column{
			Key: key, Label: cat.T("col." + key), Sortable: true, Searchable: true, Width: 12,
		})
	}
	return withFilterKeys(TableTransactions, cols)
}

func monthlyColumns(cat *i18n.Catalog, currency string) []table.Column {
	lang := cat.Lang()
	cols := []table.Column{
		{
			Key: "month", Label: cat.T("col.month"), Sortable: true, Searchable: true, Width: 10,
			Format: func(row table.Row) string {
				return util.FormatMonth(table.CellString(row["month"]))
			},
		},
		{Key: "income", Label: cat.T("col.income"), Sortable: true, Type: table.TypeCurrency, Width: 14, Format: currencyFormat("income", currency, lang)},
		{Key: "expenses", Label: cat.T("col.expenses"), Sortable: true, Type: table.TypeCurrency, Width: 14, Format: currencyFormat("expenses", currency, lang)},
		{Key: "net", Label: cat.T("col.net"), Sortable: true, Type: table.TypeCurrency, Width: 14, Format: currencyFormat("net", currency, lang)},
		{Key: "savings_rate", Label: cat.T("col.savings_rate"), Sortable: true, Type: table.TypePercent, Width: 8, Format: percentFormat("savings_rate", lang)},
		{Key: "count", Label: cat.T("col.count"), Sortable: true, Type: table.TypeNumber, Width: 6},
	}
	return withFilterKeys(TableMonthly, cols)
}

func categoryColumns(cat *i18n.Catalog, currency string) []table.Column {
	lang := cat.Lang()
	cols := []table.Column{
		{Key: "category", Label: cat.T("col.category"), Sortable: true, Searchable: true, Width: 20},
		{Key: "kind", Label: cat.T("col.kind"), Sortable: true, Searchable: true, Width: 8, Format: kindFormat(cat)},
		{Key: "total", Label: cat.T("col.total"), Sortable: true, Type: table.TypeCurrency, Width: 14, Format: currencyFormat("total", currency, lang)},
		{Key: "share", Label: cat.T("col.share"), Sortable: true, Type: table.TypePercent, Width: 8, Format: percentFormat("share", lang)},
		{Key: "count", Label: cat.T("col.count"), Sortable: true, Type: table.TypeNumber, Width: 6},
	}
	return withFilterKeys(TableCategories, cols)
}

func withFilterKeys(tableID string, cols []table.Column) []table.Column {
	for i := range cols {
		cols[i].FilterKey = filterKey(tableID, cols[i].Key)
	}
	return cols
}

// renderCells flattens cell text onto one line.
func renderCells(row table.Row, columns []table.Column) []string {
	cells := make([]string, len(columns))
	for i, col := range columns {
		cells[i] = strings.Join(strings.Fields(col.Cell(row)), " ")
	}
	return cells
}

// footerRenderer shows the window position and, when sumKey is set, the
// sum of that column over every filtered row.
func footerRenderer(cat *i18n.Catalog, currency, sumKey string) table.FooterRenderer {
	return func(rows []table.Row, state table.ViewState) string {
		parts := []string{cat.T("footer.rows", state.VisibleRowCount, state.TotalFilteredRowCount)}
		if state.HasMore() {
			parts = append(parts, cat.T("footer.more"))
		}
		if sumKey != "" {
			sum := decimal.Zero
			for _, row := range rows {
				sum = sum.Add(decimalValue(row[sumKey]))
			}
			parts = append(parts, cat.T("footer.sum", util.FormatCurrency(sum, currency, cat.Lang())))
		}
		return strings.Join(parts, "  ·  ")
	}
}

func sumKeyFor(tableID string) string {
	switch tableID {
	case TableTransactions:
		return report.FieldAmount
	case TableMonthly:
		return "net"
	}
	return ""
}

// detailFields renders every field of a transaction row, the fixed columns
// first.
func detailFields(cat *i18n.Catalog, columns []table.Column, row table.Row, now time.Time) []string {
	var lines []string
	shown := make(map[string]bool)
	for _, col := range columns {
		shown[col.Key] = true
		value := col.Cell(row)
		if col.Key == report.FieldDate {
			if human := util.FormatDateHuman(table.CellString(row[col.Key]), now); human != "" && human != value {
				value = fmt.Sprintf("%s (%s)", value, human)
			}
		}
		lines = append(lines, renderField(col.Label, value))
	}
	for _, key := range sortedKeys(row) {
		if shown[key] {
			continue
		}
		if value := table.CellString(row[key]); value != "" {
			lines = append(lines, renderField(cat.T("col."+key), value))
		}
	}
	return lines
}
