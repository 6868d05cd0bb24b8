package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"finboard/internal/util"
)

// Row is one record of a dataset, keyed by normalized field name. Values are
// strings or numbers.
type Row map[string]any

// ValueType selects how a column's cells are parsed for sorting.
type ValueType int

const (
	TypeString ValueType = iota
	TypeNumber
	TypeCurrency
	TypePercent
	TypeDate
	TypeCustom
)

func (t ValueType) String() string {
	switch t {
	case TypeNumber:
		return "number"
	case TypeCurrency:
		return "currency"
	case TypePercent:
		return "percent"
	case TypeDate:
		return "date"
	case TypeCustom:
		return "custom"
	default:
		return "string"
	}
}

// ValueExtractor returns the comparable value of row for a column key. The
// result must be a number, a string, or nil.
type ValueExtractor func(row Row, key string) (any, error)

// CellString renders a raw cell value as text, the way it is matched by
// filters and shown when a column has no formatter.
func CellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// numeric reports whether v is a number and returns it as float64.
func numeric(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case int32:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint64:
		return float64(x), true
	case uint32:
		return float64(x), true
	case time.Time:
		return float64(x.UnixMilli()), true
	case interface{ InexactFloat64() float64 }:
		return x.InexactFloat64(), true
	}
	return 0, false
}

type valueKind int

const (
	kindNull valueKind = iota
	kindNumber
	kindString
)

// sortValue is an extracted cell, normalized once per row before sorting.
type sortValue struct {
	kind valueKind
	num  float64
	str  string
	// failed marks a cell whose extraction errored; any comparison against
	// it is a tie.
	failed bool
}

func toSortValue(v any) sortValue {
	if v == nil {
		return sortValue{kind: kindNull}
	}
	if n, ok := numeric(v); ok {
		if math.IsNaN(n) {
			return sortValue{kind: kindNull}
		}
		return sortValue{kind: kindNumber, num: n}
	}
	return sortValue{kind: kindString, str: CellString(v)}
}

func (v sortValue) text() string {
	switch v.kind {
	case kindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case kindString:
		return v.str
	default:
		return ""
	}
}

// comparator orders sortValues. Nulls come first, numbers compare
// numerically, and anything else is compared as text with a locale-aware,
// numeric-aware collation.
type comparator struct {
	col *collate.Collator
}

func newComparator(tag language.Tag) *comparator {
	return &comparator{col: collate.New(tag, collate.Numeric, collate.IgnoreCase)}
}

func (c *comparator) compare(a, b sortValue) int {
	switch {
	case a.kind == kindNull && b.kind == kindNull:
		return 0
	case a.kind == kindNull:
		return -1
	case b.kind == kindNull:
		return 1
	case a.kind == kindNumber && b.kind == kindNumber:
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	return c.col.CompareString(a.text(), b.text())
}

// typedValue parses raw according to t. Numeric types that fail to parse
// and unparseable dates yield 0.
func typedValue(t ValueType, raw any) any {
	switch t {
	case TypeNumber, TypeCurrency, TypePercent:
		if n, ok := numeric(raw); ok {
			return n
		}
		s := CellString(raw)
		var (
			n  float64
			ok bool
		)
		if t == TypePercent {
			n, ok = util.ParsePercent(s)
		} else {
			n, ok = util.ParseNumber(s)
		}
		if !ok {
			return 0.0
		}
		return n
	case TypeDate:
		if ts, ok := raw.(time.Time); ok {
			return ts.UnixMilli()
		}
		d, ok := util.ParseDate(CellString(raw))
		if !ok {
			return int64(0)
		}
		return d.UnixMilli()
	default:
		if raw == nil {
			return nil
		}
		return strings.ToLower(CellString(raw))
	}
}
