package analysis

import (
	"context"
	"time"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/cleaning"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/services/loader"
	"github.com/rs/zerolog"
)

// pipeline holds the pieces shared by every analysis
type pipeline struct {
	cfg     *config.Config
	loader  *loader.Loader
	cleaner *cleaning.Cleaner
}

func newPipeline(cfg *config.Config) (*pipeline, error) {
	if cfg == nil {
		return nil, domain.ConfigErr("analysis needs a config", nil)
	}
	policy, err := cfg.ParsePolicy()
	if err != nil {
		return nil, err
	}
	return &pipeline{
		cfg: cfg,
		loader: loader.NewLoader(nil, loader.Options{
			Delimiter: cfg.DelimiterRune(),
			Sheet:     cfg.Sheet,
		}),
		cleaner: cleaning.NewCleaner(policy),
	}, nil
}

// load reads path and applies the configured row filter. It also returns the
// number of rows read before filtering.
func (p *pipeline) load(ctx context.Context, path string) (*domain.Table, int, error) {
	table, err := p.loader.Load(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	loaded := table.Len()

	if p.cfg.Where != "" {
		table, err = cleaning.Filter(table, p.cfg.Where)
		if err != nil {
			return nil, 0, err
		}
		zerolog.Ctx(ctx).Info().
			Str("where", p.cfg.Where).
			Int("kept", table.Len()).
			Int("loaded", loaded).
			Msg("rows filtered")
	}
	return table, loaded, nil
}

// ensureColumns adds the missing columns to a table without rows, so a file
// holding no data still flows through every step.
func ensureColumns(t *domain.Table, cols ...domain.Column) (*domain.Table, error) {
	if t.Len() > 0 {
		return t, nil
	}
	out := t
	for _, col := range cols {
		if out.HasColumn(col.Name) {
			continue
		}
		var err error
		out, err = out.WithColumn(col, nil)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// timePeriod returns the span of a time column, nil when it holds no times.
func timePeriod(t *domain.Table, column string) *domain.TimePeriod {
	values, err := t.Values(column)
	if err != nil {
		return nil
	}
	var start, end time.Time
	found := false
	for _, v := range values {
		if v.Kind() != domain.KindTime {
			continue
		}
		ts := v.TimeVal()
		if !found || ts.Before(start) {
			start = ts
		}
		if !found || ts.After(end) {
			end = ts
		}
		found = true
	}
	if !found {
		return nil
	}
	return domain.NewTimePeriod(start, end)
}
