package ui

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"finboard/internal/i18n"
	"finboard/internal/report"
	"finboard/internal/table"
	"finboard/internal/util"
)

// DetailModel represents the transaction detail screen.
type DetailModel struct {
	row      table.Row
	columns  []table.Column
	cat      *i18n.Catalog
	currency string
	now      func() time.Time
}

// NewDetailModel creates a new detail model for row.
func NewDetailModel(row table.Row, columns []table.Column, cat *i18n.Catalog, currency string) *DetailModel {
	return &DetailModel{
		row:      row,
		columns:  columns,
		cat:      cat,
		currency: currency,
		now:      time.Now,
	}
}

// View renders the transaction detail.
func (m *DetailModel) View(width, height int) string {
	var sections []string

	shortcuts := HelpDescStyle.Render(m.cat.T("detail.back"))

	sections = append(sections, LabelStyle.Render(m.cat.T("detail.title")))
	sections = append(sections, strings.Join(detailFields(m.cat, m.columns, m.row, m.now()), "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	amount := report.Amount(m.row)
	style := PositiveStyle
	if report.Classify(m.row) == report.Expense {
		style = NegativeStyle
	}
	sections = append(sections, style.Bold(true).Render(
		util.FormatCurrency(amount, m.currency, m.cat.Lang())))

	content := PanelStyle.
		Width(max(0, width-4)).
		Render(strings.Join(sections, "\n\n"))

	header := lipgloss.NewStyle().
		Width(max(0, width-4)).
		Align(lipgloss.Right).
		Render(shortcuts)

	return lipgloss.JoinVertical(lipgloss.Left, header, content)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}

func sortedKeys(row table.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
