package aggregate

import (
	"sort"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/montanaflynn/stats"
)

type AggFunc string

const (
	AggSum    AggFunc = "sum"
	AggMean   AggFunc = "mean"
	AggMedian AggFunc = "median"
	AggCount  AggFunc = "count"
	AggMin    AggFunc = "min"
	AggMax    AggFunc = "max"
)

// Aggregation reduces one numeric column of every group. As names the output
// column and defaults to Column.
type Aggregation struct {
	Column string
	Func   AggFunc
	As     string
}

func (a Aggregation) name() string {
	if a.As != "" {
		return a.As
	}
	return a.Column
}

type group struct {
	key    []domain.Value
	values []stats.Float64Data
}

// GroupAggregate groups rows by the key columns and applies every
// aggregation to each group. Rows with a null key are skipped. The result is
// sorted ascending by the key tuple.
func GroupAggregate(t *domain.Table, keys []string, aggs []Aggregation) (*domain.Table, error) {
	cols := make([]domain.Column, 0, len(keys)+len(aggs))
	keyIdx := make([]int, len(keys))
	for i, k := range keys {
		if t.Len() == 0 && !t.HasColumn(k) {
			cols = append(cols, domain.Column{Name: k, Kind: domain.KindString})
			continue
		}
		idx, err := t.ColumnIndex(k)
		if err != nil {
			return nil, err
		}
		keyIdx[i] = idx
		cols = append(cols, t.Columns[idx])
	}

	aggIdx := make([]int, len(aggs))
	for i, a := range aggs {
		if err := validateAgg(a.Func); err != nil {
			return nil, err
		}
		cols = append(cols, domain.Column{Name: a.name(), Kind: domain.KindNumber})
		if t.Len() == 0 {
			continue
		}
		idx, err := t.NumericColumn(a.Column)
		if err != nil {
			return nil, err
		}
		aggIdx[i] = idx
	}

	out := domain.NewTable(cols...)
	if t.Len() == 0 {
		return out, nil
	}

	index := make(map[string]*group)
	var groups []*group
	for _, row := range t.Rows {
		key := make([]domain.Value, len(keyIdx))
		nullKey := false
		for i, idx := range keyIdx {
			key[i] = row[idx]
			nullKey = nullKey || row[idx].IsNull()
		}
		if nullKey {
			continue
		}

		id := domain.Row(key).Key()
		g, ok := index[id]
		if !ok {
			g = &group{key: key, values: make([]stats.Float64Data, len(aggs))}
			index[id] = g
			groups = append(groups, g)
		}
		for i, idx := range aggIdx {
			if f, ok := row[idx].Float(); ok {
				g.values[i] = append(g.values[i], f)
			}
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return compareKeys(groups[i].key, groups[j].key) < 0
	})

	for _, g := range groups {
		row := make(domain.Row, 0, len(cols))
		row = append(row, g.key...)
		for i, a := range aggs {
			row = append(row, reduce(a.Func, g.values[i]))
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// GroupSum sums value per key, sorted descending by the sum. Ties keep the
// ascending key order of the grouped table.
func GroupSum(t *domain.Table, key, value string) (*domain.Table, error) {
	out, err := GroupAggregate(t, []string{key}, []Aggregation{{Column: value, Func: AggSum}})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out.Rows, func(i, j int) bool {
		return out.Rows[i][1].Num() > out.Rows[j][1].Num()
	})
	return out, nil
}

func validateAgg(f AggFunc) error {
	switch f {
	case AggSum, AggMean, AggMedian, AggCount, AggMin, AggMax:
		return nil
	default:
		return domain.ConfigErr("unknown aggregation", map[string]any{"func": string(f)})
	}
}

func reduce(f AggFunc, data stats.Float64Data) domain.Value {
	switch f {
	case AggSum:
		if len(data) == 0 {
			return domain.Number(0)
		}
		s, _ := stats.Sum(data)
		return domain.Number(s)
	case AggCount:
		return domain.Number(float64(len(data)))
	}

	if len(data) == 0 {
		return domain.Null()
	}

	var (
		v   float64
		err error
	)
	switch f {
	case AggMean:
		v, err = stats.Mean(data)
	case AggMedian:
		v, err = stats.Median(data)
	case AggMin:
		v, err = stats.Min(data)
	case AggMax:
		v, err = stats.Max(data)
	}
	if err != nil {
		return domain.Null()
	}
	return domain.Number(v)
}
