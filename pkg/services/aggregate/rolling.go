package aggregate

import (
	"sort"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// RollingMean adds column as holding, for every row, the mean of the value
// column over that row and up to window-1 preceding rows of the same entity,
// in orderBy order. Windows with fewer than minPeriods non-null values give
// null. Row order of the table is preserved.
func RollingMean(t *domain.Table, entity, orderBy, value string, window, minPeriods int, as string) (*domain.Table, error) {
	if window < 1 {
		return nil, domain.DataErr("rolling window must be positive", map[string]any{"window": window})
	}
	if minPeriods < 1 {
		minPeriods = 1
	}
	if minPeriods > window {
		return nil, domain.DataErr("min periods cannot exceed the window", map[string]any{
			"window":      window,
			"min_periods": minPeriods,
		})
	}

	if t.Len() == 0 {
		return t.WithColumn(domain.Column{Name: as, Kind: domain.KindNumber}, nil)
	}

	entityIdx, err := t.ColumnIndex(entity)
	if err != nil {
		return nil, err
	}
	orderIdx, err := t.ColumnIndex(orderBy)
	if err != nil {
		return nil, err
	}
	valueIdx, err := t.NumericColumn(value)
	if err != nil {
		return nil, err
	}

	members := make(map[string][]int)
	var order []string
	for r, row := range t.Rows {
		if row[entityIdx].IsNull() {
			continue
		}
		k := row[entityIdx].Key()
		if _, ok := members[k]; !ok {
			order = append(order, k)
		}
		members[k] = append(members[k], r)
	}

	out := make([]domain.Value, t.Len())
	for _, k := range order {
		rows := members[k]
		sort.SliceStable(rows, func(i, j int) bool {
			return domain.Compare(t.Rows[rows[i]][orderIdx], t.Rows[rows[j]][orderIdx]) < 0
		})

		for pos, r := range rows {
			start := pos - window + 1
			if start < 0 {
				start = 0
			}
			sum, n := 0.0, 0
			for _, w := range rows[start : pos+1] {
				if f, ok := t.Rows[w][valueIdx].Float(); ok {
					sum += f
					n++
				}
			}
			if n >= minPeriods {
				out[r] = domain.Number(sum / float64(n))
			}
		}
	}

	return t.WithColumn(domain.Column{Name: as, Kind: domain.KindNumber}, out)
}
