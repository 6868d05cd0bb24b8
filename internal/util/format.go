package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatDate formats a date cell for display. Cells that are not a known
// date layout are returned unchanged.
func FormatDate(date string) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "—"
	}
	t, ok := ParseDate(date)
	if !ok {
		return date
	}
	return t.Format("2006-01-02")
}

// FormatDateHuman formats a date with humanized relative display.
// "Today", "Yesterday", "3d ago", "Jan 15", "Jan 15 '24"
func FormatDateHuman(date string, now time.Time) string {
	date = strings.TrimSpace(date)
	if date == "" {
		return "—"
	}
	t, ok := ParseDate(date)
	if !ok {
		return date
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dateDay := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	days := int(today.Sub(dateDay).Hours() / 24)

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days > 1 && days < 7:
		return fmt.Sprintf("%dd ago", days)
	case t.Year() == now.Year():
		return t.Format("Jan 02")
	default:
		return t.Format("Jan 02 '06")
	}
}

// FormatMonth turns a "2006-01" month key into "Jan 2024". Unknown keys are
// returned unchanged.
func FormatMonth(key string) string {
	t, err := time.Parse("2006-01", strings.TrimSpace(key))
	if err != nil {
		return key
	}
	return t.Format("Jan 2006")
}

// FormatCurrency renders amount in the given ISO currency. German output
// uses "1.234,56 €" separators, everything else the currency's defaults.
func FormatCurrency(amount decimal.Decimal, code, lang string) string {
	cur := money.GetCurrency(strings.ToUpper(code))
	if cur == nil {
		return amount.StringFixed(2) + " " + code
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	if lang == "de" {
		return money.NewFormatter(cur.Fraction, ",", ".", cur.Grapheme, "1 $").Format(minor)
	}
	return cur.Formatter().Format(minor)
}

// FormatPercent renders a percentage with one decimal, e.g. "12.5%".
func FormatPercent(p decimal.Decimal, lang string) string {
	s := p.StringFixed(1)
	if lang == "de" {
		s = strings.Replace(s, ".", ",", 1)
		return s + " %"
	}
	return s + "%"
}

// TruncateString truncates a string to maxLen and adds "..." if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
