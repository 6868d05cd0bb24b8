package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"finboard/internal/i18n"
	"finboard/internal/report"
	"finboard/internal/table"
	"finboard/internal/util"
)

// kpiBar shows the totals of the filtered transactions. It follows the
// transactions engine through its render events.
type kpiBar struct {
	cat      *i18n.Catalog
	currency string
	totals   report.Totals
}

func newKPIBar(cat *i18n.Catalog, currency string) *kpiBar {
	return &kpiBar{cat: cat, currency: currency}
}

// watch recomputes the totals whenever engine renders. The returned func
// stops watching.
func (k *kpiBar) watch(engine *table.Engine) func() {
	return engine.Subscribe(func(ev table.Event) {
		switch ev.Kind {
		case table.EventRendered, table.EventFilterChanged:
			k.totals = report.Summarize(engine.Rows())
		}
	})
}

func (k *kpiBar) View(width int) string {
	lang := k.cat.Lang()
	balance := k.totals.Balance()
	balanceStyle := PositiveStyle
	if balance.IsNegative() {
		balanceStyle = NegativeStyle
	}

	tiles := []string{
		k.tile(k.cat.T("kpi.income"), PositiveStyle.Render(util.FormatCurrency(k.totals.Income, k.currency, lang))),
		k.tile(k.cat.T("kpi.expenses"), NegativeStyle.Render(util.FormatCurrency(k.totals.Expenses, k.currency, lang))),
		k.tile(k.cat.T("kpi.balance"), balanceStyle.Render(util.FormatCurrency(balance, k.currency, lang))),
		k.tile(k.cat.T("kpi.savings_rate"), KPIValueStyle.Render(util.FormatPercent(k.totals.SavingsRate(), lang))),
		k.tile(k.cat.T("kpi.count"), KPIValueStyle.Render(fmt.Sprintf("%d", k.totals.Count))),
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, tiles...)
	if lipgloss.Width(row) > width && width > 0 {
		row = lipgloss.JoinHorizontal(lipgloss.Top, tiles[:3]...)
	}
	return row
}

func (k *kpiBar) tile(label, value string) string {
	return KPITileStyle.Render(HelpDescStyle.Render(label) + "\n" + value)
}
