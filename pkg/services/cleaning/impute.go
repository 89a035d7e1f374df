package cleaning

import (
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/montanaflynn/stats"
)

// FillByGroup replaces nulls in a numeric column with the mean or median of
// the non-null values sharing the row's group key. A null that has no group
// values to fill from is a DataError.
func FillByGroup(t *domain.Table, column, groupKey string, method domain.FillMethod) (*domain.Table, error) {
	idx, err := t.NumericColumn(column)
	if err != nil {
		return nil, err
	}
	keyIdx, err := t.ColumnIndex(groupKey)
	if err != nil {
		return nil, err
	}

	groups := make(map[string]stats.Float64Data)
	for _, row := range t.Rows {
		if row[keyIdx].IsNull() {
			continue
		}
		if f, ok := row[idx].Float(); ok {
			k := row[keyIdx].Key()
			groups[k] = append(groups[k], f)
		}
	}

	fills := make(map[string]float64)
	values := make([]domain.Value, t.Len())
	for r, row := range t.Rows {
		if !row[idx].IsNull() {
			values[r] = row[idx]
			continue
		}
		if row[keyIdx].IsNull() {
			return nil, domain.DataErr("cannot fill value without a group key", map[string]any{
				"column": column,
				"group":  groupKey,
				"row":    r + 1,
			})
		}

		k := row[keyIdx].Key()
		fill, ok := fills[k]
		if !ok {
			fill, err = groupStat(groups[k], method)
			if err != nil {
				return nil, domain.DataErr("group has no values to fill from", map[string]any{
					"column": column,
					"group":  groupKey,
					"key":    row[keyIdx].String(),
					"error":  err,
				})
			}
			fills[k] = fill
		}
		values[r] = domain.Number(fill)
	}

	return t.WithColumn(t.Columns[idx], values)
}

func groupStat(data stats.Float64Data, method domain.FillMethod) (float64, error) {
	switch method {
	case domain.FillMedian:
		return stats.Median(data)
	case domain.FillMean, "":
		return stats.Mean(data)
	default:
		return 0, domain.ConfigErr("unknown fill method", map[string]any{"method": string(method)})
	}
}
