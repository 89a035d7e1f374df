package aggregate

import (
	"sort"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// TopNPerGroup keeps at most n rows per group: rows are ordered by group
// ascending and metric descending, ties keep their original order. Rows with a
// null group are dropped and null metrics sort last.
func TopNPerGroup(t *domain.Table, groupBy, metric string, n int) (*domain.Table, error) {
	if n < 0 {
		return nil, domain.DataErr("top n must not be negative", map[string]any{"n": n})
	}
	if t.Len() == 0 {
		return t.Empty(), nil
	}

	groupIdx, err := t.ColumnIndex(groupBy)
	if err != nil {
		return nil, err
	}
	metricIdx, err := t.NumericColumn(metric)
	if err != nil {
		return nil, err
	}

	rows := make([]domain.Row, 0, t.Len())
	for _, row := range t.Rows {
		if !row[groupIdx].IsNull() {
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if c := domain.Compare(rows[i][groupIdx], rows[j][groupIdx]); c != 0 {
			return c < 0
		}
		a, aok := rows[i][metricIdx].Float()
		b, bok := rows[j][metricIdx].Float()
		if aok != bok {
			return aok
		}
		return a > b
	})

	out := t.Empty()
	taken := make(map[string]int)
	for _, row := range rows {
		k := row[groupIdx].Key()
		if taken[k] >= n {
			continue
		}
		taken[k]++
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}
