package aggregate

import (
	"sort"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// QuantileEdges returns the q+1 equal-frequency bucket edges of values.
func QuantileEdges(values []float64, q int) []float64 {
	if len(values) == 0 || q < 1 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	edges := make([]float64, q+1)
	for i := 0; i <= q; i++ {
		edges[i] = quantileSorted(sorted, float64(i)/float64(q))
	}
	return edges
}

// bucket returns the lowest bucket whose upper edge is >= v, so a value on an
// exact boundary goes to the lower bucket.
func bucket(edges []float64, v float64) int {
	for i := 1; i < len(edges); i++ {
		if v <= edges[i] {
			return i - 1
		}
	}
	return len(edges) - 2
}

// QuantileSegment labels every row with the equal-frequency bucket of its
// value; there are len(labels) buckets ordered from lowest to highest. Null
// values get a null label.
func QuantileSegment(t *domain.Table, column string, labels []string, as string) (*domain.Table, error) {
	if len(labels) == 0 {
		return nil, domain.DataErr("segmentation needs at least one label", nil)
	}
	col := domain.Column{Name: as, Kind: domain.KindString}
	if t.Len() == 0 {
		return t.WithColumn(col, nil)
	}

	idx, err := t.NumericColumn(column)
	if err != nil {
		return nil, err
	}
	values, err := t.Floats(column)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, domain.DataErr("cannot segment a column without values", map[string]any{"column": column})
	}

	edges := QuantileEdges(values, len(labels))
	out := make([]domain.Value, t.Len())
	for r, row := range t.Rows {
		if f, ok := row[idx].Float(); ok {
			out[r] = domain.String(labels[bucket(edges, f)])
		}
	}
	return t.WithColumn(col, out)
}
