package util

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var ErrNotANumber = errors.New("not a number")

// ParseAmount parses a currency or number cell written in either English
// ("$1,234.56") or German ("1.234,56 €") notation. Parentheses, a leading
// or trailing minus, and the unicode minus sign mark negative amounts.
//
// When both '.' and ',' occur, the last one is the decimal separator. A
// single separator character occurring once is decimal, occurring several
// times it groups thousands.
func ParseAmount(s string) (decimal.Decimal, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return decimal.Zero, ErrNotANumber
	}

	negative := false
	if strings.HasPrefix(raw, "(") && strings.HasSuffix(raw, ")") {
		negative = true
	}

	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9', r == '.', r == ',':
			b.WriteRune(r)
		case r == '-', r == '−':
			negative = true
		}
	}
	digits := b.String()
	if strings.Trim(digits, ".,") == "" {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}

	lastDot := strings.LastIndex(digits, ".")
	lastComma := strings.LastIndex(digits, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			digits = strings.ReplaceAll(digits, ".", "")
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(digits, ",") == 1 {
			digits = strings.Replace(digits, ",", ".", 1)
		} else {
			digits = strings.ReplaceAll(digits, ",", "")
		}
	case lastDot >= 0:
		if strings.Count(digits, ".") > 1 {
			digits = strings.ReplaceAll(digits, ".", "")
		}
	}

	d, err := decimal.NewFromString(digits)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotANumber, s)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// ParseNumber is ParseAmount as a float.
func ParseNumber(s string) (float64, bool) {
	d, err := ParseAmount(s)
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}

// ParsePercent parses "12,5 %" or "12.5%" into 12.5.
func ParsePercent(s string) (float64, bool) {
	return ParseNumber(strings.ReplaceAll(s, "%", ""))
}

var dateLayouts = []string{
	"2006-01-02",
	"02.01.2006",
	"2.1.2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01",
}

// ParseDate parses a date cell in any of the supported layouts, in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// MonthKey returns the "2006-01" bucket of a date cell, or "" when the
// cell is not a date.
func MonthKey(s string) string {
	t, ok := ParseDate(s)
	if !ok {
		return ""
	}
	return t.Format("2006-01")
}
