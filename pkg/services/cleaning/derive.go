package cleaning

import (
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
)

// Multiply derives as = a * b row by row. A null factor gives a null product.
func Multiply(t *domain.Table, a, b, as string) (*domain.Table, error) {
	ai, err := t.NumericColumn(a)
	if err != nil {
		return nil, err
	}
	bi, err := t.NumericColumn(b)
	if err != nil {
		return nil, err
	}

	values := make([]domain.Value, t.Len())
	for r, row := range t.Rows {
		x, okx := row[ai].Float()
		y, oky := row[bi].Float()
		if okx && oky {
			values[r] = domain.Number(x * y)
		}
	}
	return t.WithColumn(domain.Column{Name: as, Kind: domain.KindNumber}, values)
}

// Cut labels each value with the bin (edges[i], edges[i+1]] it falls in.
// Values outside every bin and nulls get a null label.
func Cut(t *domain.Table, column string, bins domain.Bins, as string) (*domain.Table, error) {
	if err := validateBins(bins); err != nil {
		return nil, err
	}
	idx, err := t.NumericColumn(column)
	if err != nil {
		return nil, err
	}

	values := make([]domain.Value, t.Len())
	for r, row := range t.Rows {
		f, ok := row[idx].Float()
		if !ok {
			continue
		}
		for i := 0; i < len(bins.Labels); i++ {
			if f > bins.Edges[i] && f <= bins.Edges[i+1] {
				values[r] = domain.String(bins.Labels[i])
				break
			}
		}
	}
	return t.WithColumn(domain.Column{Name: as, Kind: domain.KindString}, values)
}

func validateBins(bins domain.Bins) error {
	if len(bins.Edges) < 2 || len(bins.Labels) != len(bins.Edges)-1 {
		return domain.DataErr("bins need one label per interval", map[string]any{
			"edges":  len(bins.Edges),
			"labels": len(bins.Labels),
		})
	}
	for i := 1; i < len(bins.Edges); i++ {
		if !(bins.Edges[i] > bins.Edges[i-1]) {
			return domain.DataErr("bin edges must increase", map[string]any{"edges": bins.Edges})
		}
	}
	return nil
}

// TruncateToDay derives the calendar day of a time column.
func TruncateToDay(t *domain.Table, column, as string) (*domain.Table, error) {
	idx, err := t.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	if t.Columns[idx].Kind != domain.KindTime {
		return nil, domain.DataErr("column is not a time column", map[string]any{"column": column})
	}

	values := make([]domain.Value, t.Len())
	for r, row := range t.Rows {
		if row[idx].Kind() != domain.KindTime {
			continue
		}
		ts := row[idx].TimeVal()
		values[r] = domain.Time(time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location()))
	}
	return t.WithColumn(domain.Column{Name: as, Kind: domain.KindTime}, values)
}
