package cleaning

import (
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalize trims and lower-cases the named string columns.
func Normalize(t *domain.Table, columns ...string) (*domain.Table, error) {
	lower := cases.Lower(language.Und)

	out := t
	for _, name := range columns {
		idx, err := out.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		if out.Columns[idx].Kind != domain.KindString {
			return nil, domain.DataErr("column is not a string column", map[string]any{
				"column": name,
				"kind":   out.Columns[idx].Kind.String(),
			})
		}

		values := make([]domain.Value, out.Len())
		for r, row := range out.Rows {
			if row[idx].IsNull() {
				continue
			}
			values[r] = domain.String(lower.String(strings.TrimSpace(row[idx].Str())))
		}

		out, err = out.WithColumn(out.Columns[idx], values)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
