package analysis

import (
	"context"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/services/aggregate"
	"github.com/de-tools/sales-atlas/pkg/services/cleaning"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/rs/zerolog"
)

const (
	SalesTrendName = "sales-trend"

	CategorySalesTable = "sales_by_category"
	DailySalesTable    = "daily_sales"

	trendHeadRows = 5
)

type salesTrend struct {
	*pipeline
	cols config.TrendConfig
}

// NewSalesTrend profiles a transaction file, flags quantity and price
// outliers and sums sales per category and per day.
func NewSalesTrend(cfg *config.Config) (Analysis, error) {
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return &salesTrend{pipeline: p, cols: cfg.Trend}, nil
}

func (a *salesTrend) Name() string {
	return SalesTrendName
}

func (a *salesTrend) Description() string {
	return "Dataset profile, IQR outliers of quantity and price, sales by category and daily sales trend"
}

func (a *salesTrend) Run(ctx context.Context, path string) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	c := a.cols

	table, loaded, err := a.load(ctx, path)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Title:  "Sales Trend Analysis",
		Source: path,
		Rows:   table.Len(),
	}

	info := report.AddSection("Dataset Info")
	info.Summary["Rows"] = table.Len()
	info.Summary["Columns"] = len(table.Columns)
	info.Table = aggregate.Info(table)

	report.AddSection("First Rows").Table = table.Head(trendHeadRows)

	table, err = ensureColumns(table,
		domain.Column{Name: c.DateColumn, Kind: domain.KindTime},
		domain.Column{Name: c.ProductColumn, Kind: domain.KindString},
		domain.Column{Name: c.CategoryColumn, Kind: domain.KindString},
		domain.Column{Name: c.QuantityColumn, Kind: domain.KindNumber},
		domain.Column{Name: c.PriceColumn, Kind: domain.KindNumber},
	)
	if err != nil {
		return nil, err
	}

	table, err = a.cleaner.ParseDates(ctx, table, c.DateColumn)
	if err != nil {
		return nil, err
	}
	table, err = a.cleaner.ParseNumbers(ctx, table, c.QuantityColumn, c.PriceColumn)
	if err != nil {
		return nil, err
	}
	report.Period = timePeriod(table, c.DateColumn)

	report.AddSection("Missing Values").Table = aggregate.MissingCounts(table)
	report.AddSection("Basic Statistics").Table = aggregate.Describe(table)

	for _, col := range []string{c.QuantityColumn, c.PriceColumn} {
		if err := a.outliers(report, table, col); err != nil {
			return nil, err
		}
	}

	table, err = a.withTotal(ctx, table)
	if err != nil {
		return nil, err
	}

	byCategory, err := aggregate.GroupSum(table, c.CategoryColumn, c.TotalColumn)
	if err != nil {
		return nil, err
	}
	section := report.AddSection("Sales by Category")
	section.Summary["Categories"] = byCategory.Len()
	section.Table = byCategory

	daily, err := aggregate.GroupAggregate(table, []string{c.DateColumn}, []aggregate.Aggregation{
		{Column: c.TotalColumn, Func: aggregate.AggSum},
	})
	if err != nil {
		return nil, err
	}
	section = report.AddSection("Daily Sales")
	section.Summary["Days"] = daily.Len()
	section.Table = daily.Head(trendHeadRows)

	logger.Info().
		Int("categories", byCategory.Len()).
		Int("days", daily.Len()).
		Msg("sales trend computed")

	return &Result{
		Report: report,
		Tables: []domain.NamedTable{
			{Name: CategorySalesTable, FileName: CategorySalesTable + ".csv", Table: byCategory},
			{Name: DailySalesTable, FileName: DailySalesTable + ".csv", Table: daily},
		},
		Charts: []domain.Chart{
			{
				Kind:     domain.ChartBar,
				FileName: c.CategoryChart,
				Title:    "Total Sales by Category",
				XLabel:   c.CategoryColumn,
				YLabel:   "Total Sales",
				Data:     byCategory,
				XColumn:  c.CategoryColumn,
				YColumn:  c.TotalColumn,
			},
			{
				Kind:     domain.ChartLine,
				FileName: c.DailyChart,
				Title:    "Daily Sales Trend",
				XLabel:   c.DateColumn,
				YLabel:   "Total Sales",
				Data:     daily,
				XColumn:  c.DateColumn,
				YColumn:  c.TotalColumn,
			},
		},
		RowsLoaded: loaded,
	}, nil
}

func (a *salesTrend) outliers(report *domain.Report, table *domain.Table, column string) error {
	rows, err := aggregate.DetectOutliers(table, column)
	if err != nil {
		return err
	}
	preview, err := rows.Select(a.cols.DateColumn, a.cols.ProductColumn, column)
	if err != nil {
		return err
	}

	section := report.AddSection(column + " Outliers")
	section.Summary["Outliers"] = rows.Len()
	if values, err := table.Floats(column); err == nil {
		if fences, ok := aggregate.NewFences(values); ok {
			section.Details = []domain.ReportDetail{
				{Name: "Q1", Value: fences.Q1},
				{Name: "Q3", Value: fences.Q3},
				{Name: "IQR", Value: fences.IQR},
				{Name: "Lower bound", Value: fences.Lower},
				{Name: "Upper bound", Value: fences.Upper},
			}
		}
	}
	section.Table = preview
	return nil
}

// withTotal makes sure the total column holds numbers, deriving it as
// quantity times price when the file has no such column.
func (a *salesTrend) withTotal(ctx context.Context, table *domain.Table) (*domain.Table, error) {
	if table.HasColumn(a.cols.TotalColumn) {
		return a.cleaner.ParseNumbers(ctx, table, a.cols.TotalColumn)
	}
	zerolog.Ctx(ctx).Debug().
		Str("column", a.cols.TotalColumn).
		Msg("deriving total from quantity and price")
	return cleaning.Multiply(table, a.cols.QuantityColumn, a.cols.PriceColumn, a.cols.TotalColumn)
}
