package aggregate

import (
	"math"
	"testing"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbers(t *testing.T, name string, values ...float64) *domain.Table {
	t.Helper()
	table := domain.NewTable(
		domain.Column{Name: "id", Kind: domain.KindNumber},
		domain.Column{Name: name, Kind: domain.KindNumber},
	)
	for i, v := range values {
		require.NoError(t, table.Append(domain.Row{domain.Number(float64(i)), domain.Number(v)}))
	}
	return table
}

func day(d int) domain.Value {
	return domain.Time(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC))
}

func TestQuantile(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		q      float64
		want   float64
	}{
		{name: "median of odd", values: []float64{3, 1, 2}, q: 0.5, want: 2},
		{name: "interpolated", values: []float64{1, 2, 3, 4}, q: 0.25, want: 1.75},
		{name: "upper quartile", values: []float64{1, 2, 3, 4, 100}, q: 0.75, want: 4},
		{name: "min", values: []float64{5, 9}, q: 0, want: 5},
		{name: "max", values: []float64{5, 9}, q: 1, want: 9},
		{name: "single", values: []float64{7}, q: 0.3, want: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Quantile(tt.values, tt.q), 1e-9)
		})
	}

	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestDetectOutliers(t *testing.T) {
	t.Run("only the extreme quantity is flagged", func(t *testing.T) {
		out, err := DetectOutliers(numbers(t, "quantity", 1, 2, 3, 4, 100), "quantity")
		require.NoError(t, err)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, 100.0, out.Rows[0][1].Num())
	})

	t.Run("no row strictly inside the fences", func(t *testing.T) {
		values := []float64{-40, 3, 5, 5, 6, 7, 8, 9, 12, 55, 61}
		out, err := DetectOutliers(numbers(t, "v", values...), "v")
		require.NoError(t, err)

		fences, ok := NewFences(values)
		require.True(t, ok)
		for _, row := range out.Rows {
			f := row[1].Num()
			assert.True(t, f < fences.Lower || f > fences.Upper)
		}
		assert.Equal(t, 3, out.Len())
		assert.False(t, fences.IsOutlier(fences.Upper))
		assert.True(t, fences.IsOutlier(math.Nextafter(fences.Upper, math.Inf(1))))
	})

	t.Run("nulls are never outliers", func(t *testing.T) {
		table := numbers(t, "v", 1, 2, 3)
		require.NoError(t, table.Append(domain.Row{domain.Number(3), domain.Null()}))

		out, err := DetectOutliers(table, "v")
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("empty table gives empty result", func(t *testing.T) {
		out, err := DetectOutliers(domain.NewTable(), "quantity")
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("error - string column", func(t *testing.T) {
		table := domain.NewTable(domain.Column{Name: "s", Kind: domain.KindString})
		require.NoError(t, table.Append(domain.Row{domain.String("x")}))
		_, err := DetectOutliers(table, "s")
		assert.True(t, domain.ErrIs(err, domain.CodeDataError))
	})
}

func categoryTable(t *testing.T) *domain.Table {
	t.Helper()
	table := domain.NewTable(
		domain.Column{Name: "category", Kind: domain.KindString},
		domain.Column{Name: "total", Kind: domain.KindNumber},
	)
	rows := []domain.Row{
		{domain.String("toys"), domain.Number(10)},
		{domain.String("books"), domain.Number(5)},
		{domain.String("garden"), domain.Number(30)},
		{domain.String("toys"), domain.Number(5)},
		{domain.String("books"), domain.Number(10)},
		{domain.Null(), domain.Number(99)},
		{domain.String("audio"), domain.Null()},
	}
	for _, r := range rows {
		require.NoError(t, table.Append(r))
	}
	return table
}

func TestGroupSum(t *testing.T) {
	in := categoryTable(t)
	out, err := GroupSum(in, "category", "total")
	require.NoError(t, err)

	assert.Equal(t, []string{"category", "total"}, out.ColumnNames())
	got := make([]string, 0, out.Len())
	for _, row := range out.Rows {
		got = append(got, row[0].Str())
	}
	// books and toys tie at 15 and keep ascending key order
	assert.Equal(t, []string{"garden", "books", "toys", "audio"}, got)
	assert.Equal(t, 0.0, out.Rows[3][1].Num())

	t.Run("conservation", func(t *testing.T) {
		want := map[string]float64{}
		for _, row := range in.Rows {
			if row[0].IsNull() {
				continue
			}
			if f, ok := row[1].Float(); ok {
				want[row[0].Str()] += f
			}
		}
		for _, row := range out.Rows {
			assert.Equal(t, want[row[0].Str()], row[1].Num())
		}
	})

	t.Run("empty table", func(t *testing.T) {
		out, err := GroupSum(domain.NewTable(), "category", "total")
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
		assert.Equal(t, []string{"category", "total"}, out.ColumnNames())
	})
}

func TestGroupAggregate(t *testing.T) {
	table := domain.NewTable(
		domain.Column{Name: "date", Kind: domain.KindTime},
		domain.Column{Name: "category", Kind: domain.KindString},
		domain.Column{Name: "revenue", Kind: domain.KindNumber},
		domain.Column{Name: "quantity", Kind: domain.KindNumber},
	)
	rows := []domain.Row{
		{day(2), domain.String("b"), domain.Number(10), domain.Number(1)},
		{day(1), domain.String("b"), domain.Number(20), domain.Number(2)},
		{day(1), domain.String("a"), domain.Number(5), domain.Number(3)},
		{day(1), domain.String("b"), domain.Number(30), domain.Number(4)},
	}
	for _, r := range rows {
		require.NoError(t, table.Append(r))
	}

	out, err := GroupAggregate(table, []string{"date", "category"}, []Aggregation{
		{Column: "revenue", Func: AggSum},
		{Column: "quantity", Func: AggMean},
		{Column: "quantity", Func: AggCount, As: "orders"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"date", "category", "revenue", "quantity", "orders"}, out.ColumnNames())
	require.Equal(t, 3, out.Len())
	assert.Equal(t, "2024-01-01", out.Rows[0][0].String())
	assert.Equal(t, "a", out.Rows[0][1].Str())
	assert.Equal(t, "b", out.Rows[1][1].Str())
	assert.Equal(t, 50.0, out.Rows[1][2].Num())
	assert.Equal(t, 3.0, out.Rows[1][3].Num())
	assert.Equal(t, 2.0, out.Rows[1][4].Num())
	assert.Equal(t, "2024-01-02", out.Rows[2][0].String())

	t.Run("sub-second keys form separate groups", func(t *testing.T) {
		base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
		ts := domain.NewTable(
			domain.Column{Name: "date", Kind: domain.KindTime},
			domain.Column{Name: "revenue", Kind: domain.KindNumber},
		)
		require.NoError(t, ts.Append(domain.Row{domain.Time(base.Add(250 * time.Millisecond)), domain.Number(10)}))
		require.NoError(t, ts.Append(domain.Row{domain.Time(base.Add(750 * time.Millisecond)), domain.Number(10)}))

		out, err := GroupAggregate(ts, []string{"date"}, []Aggregation{{Column: "revenue", Func: AggSum}})
		require.NoError(t, err)
		assert.Equal(t, 2, out.Len())
	})

	t.Run("error - unknown aggregation", func(t *testing.T) {
		_, err := GroupAggregate(table, []string{"category"}, []Aggregation{{Column: "revenue", Func: "mode"}})
		assert.True(t, domain.ErrIs(err, domain.CodeConfigError))
	})
}

func TestRollingMean(t *testing.T) {
	table := domain.NewTable(
		domain.Column{Name: "product", Kind: domain.KindString},
		domain.Column{Name: "date", Kind: domain.KindTime},
		domain.Column{Name: "revenue", Kind: domain.KindNumber},
	)
	rows := []domain.Row{
		{domain.String("a"), day(3), domain.Number(30)},
		{domain.String("a"), day(1), domain.Number(10)},
		{domain.String("b"), day(1), domain.Number(7)},
		{domain.String("a"), day(2), domain.Number(20)},
		{domain.String("a"), day(4), domain.Number(40)},
	}
	for _, r := range rows {
		require.NoError(t, table.Append(r))
	}

	out, err := RollingMean(table, "product", "date", "revenue", 3, 1, "ma")
	require.NoError(t, err)

	got := make([]float64, out.Len())
	for i, row := range out.Rows {
		got[i] = row[3].Num()
	}
	// row order preserved: a@3, a@1, b@1, a@2, a@4
	assert.Equal(t, []float64{20, 10, 7, 15, 30}, got)

	t.Run("first point equals its own value", func(t *testing.T) {
		out, err := RollingMean(table, "product", "date", "revenue", 7, 1, "ma")
		require.NoError(t, err)
		assert.Equal(t, 10.0, out.Rows[1][3].Num())
		assert.Equal(t, 7.0, out.Rows[2][3].Num())
	})

	t.Run("min periods", func(t *testing.T) {
		out, err := RollingMean(table, "product", "date", "revenue", 7, 2, "ma")
		require.NoError(t, err)
		assert.True(t, out.Rows[1][3].IsNull())
		assert.True(t, out.Rows[2][3].IsNull())
		assert.Equal(t, 15.0, out.Rows[3][3].Num())
	})

	t.Run("error - window", func(t *testing.T) {
		_, err := RollingMean(table, "product", "date", "revenue", 0, 1, "ma")
		assert.True(t, domain.ErrIs(err, domain.CodeDataError))
	})

	t.Run("empty table", func(t *testing.T) {
		out, err := RollingMean(domain.NewTable(), "product", "date", "revenue", 7, 1, "ma")
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})
}

func TestTopNPerGroup(t *testing.T) {
	table := domain.NewTable(
		domain.Column{Name: "region", Kind: domain.KindString},
		domain.Column{Name: "product", Kind: domain.KindString},
		domain.Column{Name: "revenue", Kind: domain.KindNumber},
	)
	rows := []domain.Row{
		{domain.String("south"), domain.String("p1"), domain.Number(5)},
		{domain.String("north"), domain.String("p1"), domain.Number(10)},
		{domain.String("north"), domain.String("p2"), domain.Number(40)},
		{domain.String("north"), domain.String("p3"), domain.Number(20)},
		{domain.String("north"), domain.String("p4"), domain.Number(20)},
		{domain.String("north"), domain.String("p5"), domain.Number(30)},
		{domain.String("south"), domain.String("p2"), domain.Null()},
	}
	for _, r := range rows {
		require.NoError(t, table.Append(r))
	}

	out, err := TopNPerGroup(table, "region", "revenue", 3)
	require.NoError(t, err)

	got := make([]string, out.Len())
	for i, row := range out.Rows {
		got[i] = row[0].Str() + "/" + row[1].Str()
	}
	assert.Equal(t, []string{"north/p2", "north/p5", "north/p3", "south/p1", "south/p2"}, got)

	t.Run("kept rows dominate excluded rows", func(t *testing.T) {
		kept := map[string]bool{}
		minKept := map[string]float64{}
		for _, row := range out.Rows {
			kept[row[1].Str()+row[0].Str()] = true
			if f, ok := row[2].Float(); ok {
				if cur, seen := minKept[row[0].Str()]; !seen || f < cur {
					minKept[row[0].Str()] = f
				}
			}
		}
		for _, row := range table.Rows {
			if kept[row[1].Str()+row[0].Str()] {
				continue
			}
			if f, ok := row[2].Float(); ok {
				assert.LessOrEqual(t, f, minKept[row[0].Str()])
			}
		}
	})

	t.Run("zero n", func(t *testing.T) {
		out, err := TopNPerGroup(table, "region", "revenue", 0)
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("empty table", func(t *testing.T) {
		out, err := TopNPerGroup(domain.NewTable(), "region", "revenue", 3)
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})
}

func TestQuantileSegment(t *testing.T) {
	labels := []string{"Bronze", "Silver", "Gold", "Platinum"}

	t.Run("equal frequency buckets", func(t *testing.T) {
		values := []float64{80, 10, 30, 50, 70, 20, 60, 40, 90, 100, 110}
		out, err := QuantileSegment(numbers(t, "ltv", values...), "ltv", labels, "segment")
		require.NoError(t, err)

		counts := map[string]int{}
		for _, row := range out.Rows {
			counts[row[2].Str()]++
		}
		n := len(values)
		for _, l := range labels {
			assert.InDelta(t, float64(n)/4, float64(counts[l]), 1.0, l)
		}
		assert.Equal(t, "Bronze", out.Rows[1][2].Str())
		assert.Equal(t, "Platinum", out.Rows[10][2].Str())
	})

	t.Run("boundary goes to the lower bucket", func(t *testing.T) {
		// edges: 1, 2, 3, 4, 5
		out, err := QuantileSegment(numbers(t, "v", 1, 2, 3, 4, 5), "v", labels, "segment")
		require.NoError(t, err)

		got := make([]string, out.Len())
		for i, row := range out.Rows {
			got[i] = row[2].Str()
		}
		assert.Equal(t, []string{"Bronze", "Bronze", "Silver", "Gold", "Platinum"}, got)
	})

	t.Run("empty table", func(t *testing.T) {
		out, err := QuantileSegment(domain.NewTable(), "v", labels, "segment")
		require.NoError(t, err)
		assert.Equal(t, 0, out.Len())
	})

	t.Run("error - no values", func(t *testing.T) {
		table := numbers(t, "v")
		require.NoError(t, table.Append(domain.Row{domain.Number(0), domain.Null()}))
		_, err := QuantileSegment(table, "v", labels, "segment")
		assert.True(t, domain.ErrIs(err, domain.CodeDataError))
	})
}

func TestDescribe(t *testing.T) {
	table := numbers(t, "quantity", 1, 2, 3, 4)
	out := Describe(table)

	assert.Equal(t, []string{"statistic", "id", "quantity"}, out.ColumnNames())
	require.Equal(t, len(describeStats), out.Len())

	stat := func(name string) domain.Value {
		for _, row := range out.Rows {
			if row[0].Str() == name {
				return row[2]
			}
		}
		t.Fatalf("statistic %s missing", name)
		return domain.Null()
	}
	assert.Equal(t, 4.0, stat("count").Num())
	assert.Equal(t, 2.5, stat("mean").Num())
	assert.InDelta(t, 1.2909944, stat("std").Num(), 1e-6)
	assert.Equal(t, 1.0, stat("min").Num())
	assert.Equal(t, 1.75, stat("25%").Num())
	assert.Equal(t, 2.5, stat("50%").Num())
	assert.Equal(t, 3.25, stat("75%").Num())
	assert.Equal(t, 4.0, stat("max").Num())
}

func TestInfoAndMissingCounts(t *testing.T) {
	table := categoryTable(t)

	info := Info(table)
	require.Equal(t, 2, info.Len())
	assert.Equal(t, "category", info.Rows[0][0].Str())
	assert.Equal(t, "string", info.Rows[0][1].Str())
	assert.Equal(t, 6.0, info.Rows[0][2].Num())

	missing := MissingCounts(table)
	assert.Equal(t, 1.0, missing.Rows[0][1].Num())
	assert.Equal(t, 1.0, missing.Rows[1][1].Num())
}
