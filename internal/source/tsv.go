package source

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/iancoleman/strcase"

	"finboard/internal/table"
)

// ErrEmptyExport is returned for an export without a header line.
var ErrEmptyExport = errors.New("export is empty")

// headerAliases maps normalized German export headers to their English
// column keys.
var headerAliases = map[string]string{
	"datum":        "date",
	"betrag":       "amount",
	"kategorie":    "category",
	"beschreibung": "description",
	"typ":          "type",
	"art":          "type",
	"monat":        "month",
	"konto":        "account",
	"notiz":        "notes",
	"bemerkung":    "notes",
	"empfaenger":   "payee",
	"empfänger":    "payee",
}

// Dataset is a normalized export: column keys in header order and one row
// per record.
type Dataset struct {
	Columns []string
	Rows    []table.Row
}

// NormalizeHeader turns a header cell into a column key.
func NormalizeHeader(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	if alias, ok := headerAliases[strings.ToLower(h)]; ok {
		return alias
	}
	return strcase.ToSnake(h)
}

// Parse reads a tab-separated export whose first line is the header. Cell
// values are trimmed strings; short records are padded with "".
func Parse(r io.Reader) (Dataset, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return Dataset{}, ErrEmptyExport
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeHeader(h)
		if key == "" {
			key = fmt.Sprintf("column_%d", i+1)
		}
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s_%d", key, n)
		}
		columns[i] = key
	}

	var rows []table.Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Dataset{}, fmt.Errorf("failed to read record: %w", err)
		}
		if blank(record) {
			continue
		}
		row := make(table.Row, len(columns))
		for i, key := range columns {
			if i < len(record) {
				row[key] = strings.TrimSpace(record[i])
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}

	return Dataset{Columns: columns, Rows: rows}, nil
}

// ParseBytes parses an export held in memory.
func ParseBytes(data []byte) (Dataset, error) {
	return Parse(bytes.NewReader(data))
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// Merge concatenates datasets in order. Columns are the union of all
// headers in first-seen order; rows missing a column get "".
func Merge(sets ...Dataset) Dataset {
	var out Dataset
	known := make(map[string]bool)
	for _, s := range sets {
		for _, c := range s.Columns {
			if !known[c] {
				known[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
	}
	for _, s := range sets {
		for _, row := range s.Rows {
			merged := make(table.Row, len(out.Columns))
			for _, c := range out.Columns {
				merged[c] = ""
			}
			for k, v := range row {
				merged[k] = v
			}
			out.Rows = append(out.Rows, merged)
		}
	}
	return out
}

// Tag adds field=value to every row, e.g. the source an export came from.
func (d Dataset) Tag(field, value string) Dataset {
	for _, row := range d.Rows {
		row[field] = value
	}
	if len(d.Rows) > 0 {
		d.Columns = append(d.Columns, field)
	}
	return d
}
