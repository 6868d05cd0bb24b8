// Package report aggregates normalized transactions into the monthly
// summary, category breakdown and KPI totals.
package report

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"finboard/internal/table"
	"finboard/internal/util"
)

// Kind is the direction of a transaction.
type Kind string

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// Field names of enriched transaction rows.
const (
	FieldDate        = "date"
	FieldMonth       = "month"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDescription = "description"
	FieldType        = "type"
	FieldKind        = "kind"
)

var hundred = decimal.NewFromInt(100)

// Amount returns the parsed amount of a transaction row, or zero.
func Amount(row table.Row) decimal.Decimal {
	switch v := row[FieldAmount].(type) {
	case decimal.Decimal:
		return v
	case float64:
		return decimal.NewFromFloat(v)
	}
	d, err := util.ParseAmount(table.CellString(row[FieldAmount]))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Classify decides whether row is income or expense. An explicit type
// column wins; otherwise negative amounts are expenses.
func Classify(row table.Row) Kind {
	t := strings.ToLower(strings.TrimSpace(table.CellString(row[FieldType])))
	switch {
	case strings.HasPrefix(t, "income"), strings.HasPrefix(t, "einnahme"), t == "in", t == "credit":
		return Income
	case strings.HasPrefix(t, "expense"), strings.HasPrefix(t, "ausgabe"), t == "out", t == "debit":
		return Expense
	}
	if Amount(row).IsNegative() {
		return Expense
	}
	return Income
}

// Enrich returns copies of rows with kind and month filled in. An existing
// month cell is kept.
func Enrich(rows []table.Row) []table.Row {
	out := make([]table.Row, len(rows))
	for i, row := range rows {
		r := make(table.Row, len(row)+2)
		for k, v := range row {
			r[k] = v
		}
		r[FieldKind] = string(Classify(row))
		if strings.TrimSpace(table.CellString(r[FieldMonth])) == "" {
			r[FieldMonth] = util.MonthKey(table.CellString(row[FieldDate]))
		}
		out[i] = r
	}
	return out
}

// Totals are the KPI figures over a set of transactions.
type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Count    int
}

// Balance is income minus expenses.
func (t Totals) Balance() decimal.Decimal {
	return t.Income.Sub(t.Expenses)
}

// SavingsRate is the share of income not spent, in percent. It is zero
// without income.
func (t Totals) SavingsRate() decimal.Decimal {
	if !t.Income.IsPositive() {
		return decimal.Zero
	}
	return t.Balance().Div(t.Income).Mul(hundred)
}

func (t *Totals) add(row table.Row) {
	amount := Amount(row).Abs()
	if Classify(row) == Income {
		t.Income = t.Income.Add(amount)
	} else {
		t.Expenses = t.Expenses.Add(amount)
	}
	t.Count++
}

// Summarize computes the totals of rows.
func Summarize(rows []table.Row) Totals {
	var t Totals
	for _, row := range rows {
		t.add(row)
	}
	return t
}

// Monthly returns one row per month with income, expenses, net, savings
// rate and transaction count, ordered by month. Transactions without a
// month are grouped under "".
func Monthly(rows []table.Row) []table.Row {
	byMonth := make(map[string]*Totals)
	for _, row := range rows {
		month := table.CellString(row[FieldMonth])
		if month == "" {
			month = util.MonthKey(table.CellString(row[FieldDate]))
		}
		t, ok := byMonth[month]
		if !ok {
			t = &Totals{}
			byMonth[month] = t
		}
		t.add(row)
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	out := make([]table.Row, 0, len(months))
	for _, m := range months {
		t := byMonth[m]
		out = append(out, table.Row{
			"month":        m,
			"income":       t.Income,
			"expenses":     t.Expenses,
			"net":          t.Balance(),
			"savings_rate": t.SavingsRate(),
			"count":        t.Count,
		})
	}
	return out
}

// Categories returns one row per (category, kind) with its total, its
// share of all transactions of that kind in percent, and a count. Rows are
// ordered by kind, then descending total.
func Categories(rows []table.Row) []table.Row {
	type bucket struct {
		category string
		kind     Kind
		total    decimal.Decimal
		count    int
	}
	buckets := make(map[string]*bucket)
	kindTotals := make(map[Kind]decimal.Decimal)
	for _, row := range rows {
		kind := Classify(row)
		category := strings.TrimSpace(table.CellString(row[FieldCategory]))
		key := string(kind) + "\x00" + category
		b, ok := buckets[key]
		if !ok {
			b = &bucket{category: category, kind: kind}
			buckets[key] = b
		}
		amount := Amount(row).Abs()
		b.total = b.total.Add(amount)
		b.count++
		kindTotals[kind] = kindTotals[kind].Add(amount)
	}

	list := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].kind != list[j].kind {
			return list[i].kind < list[j].kind
		}
		if c := list[i].total.Cmp(list[j].total); c != 0 {
			return c > 0
		}
		return list[i].category < list[j].category
	})

	out := make([]table.Row, 0, len(list))
	for _, b := range list {
		share := decimal.Zero
		if kt := kindTotals[b.kind]; kt.IsPositive() {
			share = b.total.Div(kt).Mul(hundred)
		}
		out = append(out, table.Row{
			"category": b.category,
			"kind":     string(b.kind),
			"total":    b.total,
			"share":    share,
			"count":    b.count,
		})
	}
	return out
}
