package aggregate

import (
	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// DetectOutliers returns, in table order, the rows whose value in column lies
// outside the IQR fences of that column. Nulls are never outliers. An empty
// result is not an error.
func DetectOutliers(t *domain.Table, column string) (*domain.Table, error) {
	if t.Len() == 0 {
		return t.Empty(), nil
	}
	idx, err := t.NumericColumn(column)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(column)
	if err != nil {
		return nil, err
	}

	fences, ok := NewFences(values)
	if !ok {
		return t.Empty(), nil
	}

	return t.Where(func(row domain.Row) bool {
		f, ok := row[idx].Float()
		return ok && fences.IsOutlier(f)
	}), nil
}
