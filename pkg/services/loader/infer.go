package loader

import (
	"math"
	"strconv"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

const utf8BOM = "\ufeff"

// missing markers that load as null cells, the same set pandas reads as NA
var naValues = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

// isNA reports whether cell is a missing marker. Any spelling that parses to
// NaN counts as missing too.
func isNA(cell string) bool {
	cell = strings.TrimSpace(cell)
	if _, ok := naValues[cell]; ok {
		return true
	}
	f, err := strconv.ParseFloat(cell, 64)
	return err == nil && math.IsNaN(f)
}

// BuildTable assembles a table from a header and raw string records. A column
// whose non-missing cells all parse as numbers becomes a number column; every
// other column is kept as strings.
func BuildTable(header []string, records [][]string) (*domain.Table, error) {
	columns := make([]domain.Column, len(header))
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, utf8BOM)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, domain.FileErr("empty column name in header", map[string]any{"position": i})
		}
		if _, dup := seen[name]; dup {
			return nil, domain.FileErr("duplicate column name in header", map[string]any{"column": name})
		}
		seen[name] = struct{}{}
		columns[i] = domain.Column{Name: name, Kind: domain.KindString}
	}

	for r, rec := range records {
		if len(rec) != len(header) {
			return nil, domain.FileErr("row width does not match header", map[string]any{
				"row":      r + 1,
				"expected": len(header),
				"got":      len(rec),
			})
		}
	}

	numeric := make([]bool, len(columns))
	for c := range columns {
		numeric[c] = isNumericColumn(records, c)
		if numeric[c] {
			columns[c].Kind = domain.KindNumber
		}
	}

	table := domain.NewTable(columns...)
	table.Rows = make([]domain.Row, 0, len(records))
	for _, rec := range records {
		row := make(domain.Row, len(columns))
		for c, cell := range rec {
			switch {
			case isNA(cell):
				row[c] = domain.Null()
			case numeric[c]:
				f, _ := strconv.ParseFloat(strings.TrimSpace(cell), 64)
				row[c] = domain.Number(f)
			default:
				row[c] = domain.String(cell)
			}
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func isNumericColumn(records [][]string, c int) bool {
	values := 0
	for _, rec := range records {
		cell := rec[c]
		if isNA(cell) {
			continue
		}
		if _, err := strconv.ParseFloat(strings.TrimSpace(cell), 64); err != nil {
			return false
		}
		values++
	}
	return values > 0
}
