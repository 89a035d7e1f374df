package cleaning

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/rs/zerolog"
)

// Cleaner coerces column types. Unparseable values are handled according to
// its ParsePolicy: abort fails with a ParseError, drop removes the row.
type Cleaner struct {
	policy domain.ParsePolicy
}

func NewCleaner(policy domain.ParsePolicy) *Cleaner {
	if policy == "" {
		policy = domain.ParsePolicyAbort
	}
	return &Cleaner{policy: policy}
}

// ParseDates converts the named columns to calendar times (UTC).
func (c *Cleaner) ParseDates(ctx context.Context, t *domain.Table, columns ...string) (*domain.Table, error) {
	return c.coerce(ctx, t, domain.KindTime, columns, func(v domain.Value) (domain.Value, error) {
		if v.Kind() == domain.KindTime {
			return v, nil
		}
		ts, err := dateparse.ParseIn(strings.TrimSpace(v.String()), time.UTC)
		if err != nil {
			return domain.Null(), err
		}
		return domain.Time(ts), nil
	})
}

// ParseNumbers converts the named columns to numbers.
func (c *Cleaner) ParseNumbers(ctx context.Context, t *domain.Table, columns ...string) (*domain.Table, error) {
	return c.coerce(ctx, t, domain.KindNumber, columns, func(v domain.Value) (domain.Value, error) {
		if v.Kind() == domain.KindNumber {
			return v, nil
		}
		s := strings.TrimSpace(v.String())
		if s == "" {
			return domain.Null(), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Null(), err
		}
		if math.IsNaN(f) {
			return domain.Null(), nil
		}
		return domain.Number(f), nil
	})
}

func (c *Cleaner) coerce(
	ctx context.Context,
	t *domain.Table,
	kind domain.Kind,
	columns []string,
	convert func(domain.Value) (domain.Value, error),
) (*domain.Table, error) {
	logger := zerolog.Ctx(ctx)

	out := t.Clone()
	dropped := make(map[int]struct{})

	for _, name := range columns {
		idx, err := out.ColumnIndex(name)
		if err != nil {
			return nil, err
		}

		for r, row := range out.Rows {
			if row[idx].IsNull() {
				continue
			}
			v, err := convert(row[idx])
			if err != nil {
				if c.policy == domain.ParsePolicyAbort {
					return nil, domain.ParseErr("cannot parse value as "+kind.String(), map[string]any{
						"column": name,
						"row":    r + 1,
						"value":  row[idx].String(),
						"error":  err,
					})
				}
				logger.Warn().
					Str("column", name).
					Int("row", r+1).
					Str("value", row[idx].String()).
					Msg("dropping row with unparseable value")
				dropped[r] = struct{}{}
				continue
			}
			row[idx] = v
		}
		out.Columns[idx].Kind = kind
	}

	if len(dropped) == 0 {
		return out, nil
	}

	kept := out.Empty()
	for r, row := range out.Rows {
		if _, skip := dropped[r]; !skip {
			kept.Rows = append(kept.Rows, row)
		}
	}
	return kept, nil
}
