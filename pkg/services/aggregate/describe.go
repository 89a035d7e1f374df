package aggregate

import (
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/montanaflynn/stats"
)

var describeStats = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe summarizes every numeric column: count, mean, sample standard
// deviation, min, quartiles and max. Each statistic is a row.
func Describe(t *domain.Table) *domain.Table {
	cols := []domain.Column{{Name: "statistic", Kind: domain.KindString}}
	var numeric []int
	for i, c := range t.Columns {
		if c.Kind == domain.KindNumber {
			numeric = append(numeric, i)
			cols = append(cols, domain.Column{Name: c.Name, Kind: domain.KindNumber})
		}
	}

	summaries := make([]map[string]domain.Value, len(numeric))
	for i, idx := range numeric {
		values, _ := t.Floats(t.Columns[idx].Name)
		summaries[i] = summarize(values)
	}

	out := domain.NewTable(cols...)
	for _, name := range describeStats {
		row := domain.Row{domain.String(name)}
		for _, s := range summaries {
			row = append(row, s[name])
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func summarize(values []float64) map[string]domain.Value {
	s := map[string]domain.Value{
		"count": domain.Number(float64(len(values))),
	}
	if len(values) == 0 {
		return s
	}
	data := stats.Float64Data(values)

	if mean, err := data.Mean(); err == nil {
		s["mean"] = domain.Number(mean)
	}
	if len(values) > 1 {
		if std, err := data.StandardDeviationSample(); err == nil {
			s["std"] = domain.Number(std)
		}
	}
	if minimum, err := data.Min(); err == nil {
		s["min"] = domain.Number(minimum)
	}
	if maximum, err := data.Max(); err == nil {
		s["max"] = domain.Number(maximum)
	}
	s["25%"] = domain.Number(Quantile(values, 0.25))
	s["50%"] = domain.Number(Quantile(values, 0.5))
	s["75%"] = domain.Number(Quantile(values, 0.75))
	return s
}

// Info lists every column with its kind and non-null count.
func Info(t *domain.Table) *domain.Table {
	out := domain.NewTable(
		domain.Column{Name: "column", Kind: domain.KindString},
		domain.Column{Name: "kind", Kind: domain.KindString},
		domain.Column{Name: "non_null", Kind: domain.KindNumber},
	)
	missing := nullCounts(t)
	for i, c := range t.Columns {
		out.Rows = append(out.Rows, domain.Row{
			domain.String(c.Name),
			domain.String(c.Kind.String()),
			domain.Number(float64(t.Len() - missing[i])),
		})
	}
	return out
}

// MissingCounts lists the null count of every column.
func MissingCounts(t *domain.Table) *domain.Table {
	out := domain.NewTable(
		domain.Column{Name: "column", Kind: domain.KindString},
		domain.Column{Name: "missing", Kind: domain.KindNumber},
	)
	missing := nullCounts(t)
	for i, c := range t.Columns {
		out.Rows = append(out.Rows, domain.Row{
			domain.String(c.Name),
			domain.Number(float64(missing[i])),
		})
	}
	return out
}

func nullCounts(t *domain.Table) []int {
	counts := make([]int, len(t.Columns))
	for _, row := range t.Rows {
		for i, v := range row {
			if v.IsNull() {
				counts[i]++
			}
		}
	}
	return counts
}
