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
	SalesSegmentsName = "sales-segments"

	DailyCategoryStatsTable  = "daily_category_stats"
	ProductRevenueMATable    = "product_revenue_ma"
	TopProductsByRegionTable = "top_products_by_region"
	CustomerLTVTable         = "customer_ltv"

	RevenueColumn     = "total_revenue"
	PerformanceColumn = "sales_performance"
	MovingAvgColumn   = "7day_ma"
	LTVSegmentColumn  = "ltv_segment"
)

type salesSegments struct {
	*pipeline
	cols config.SegmentsConfig
}

// NewSalesSegments cleans a transaction file and derives daily category
// stats, product moving averages, top products per region and customer
// lifetime value segments.
func NewSalesSegments(cfg *config.Config) (Analysis, error) {
	p, err := newPipeline(cfg)
	if err != nil {
		return nil, err
	}
	return &salesSegments{pipeline: p, cols: cfg.Segments}, nil
}

func (a *salesSegments) Name() string {
	return SalesSegmentsName
}

func (a *salesSegments) Description() string {
	return "Cleaned daily category stats, rolling product revenue, top products per region and customer LTV segments"
}

func (a *salesSegments) Run(ctx context.Context, path string) (*Result, error) {
	table, loaded, err := a.load(ctx, path)
	if err != nil {
		return nil, err
	}

	report := &domain.Report{
		Title:  "Sales Segmentation Analysis",
		Source: path,
	}

	cleaned, err := a.clean(ctx, table, report)
	if err != nil {
		return nil, err
	}
	report.Rows = cleaned.Len()
	report.Period = timePeriod(cleaned, a.cols.DateColumn)

	tables, err := a.analyze(cleaned)
	if err != nil {
		return nil, err
	}

	previews := []struct {
		title string
		rows  int
	}{
		{"Daily Category Stats", 5},
		{"Product Revenue 7-Day Moving Average", 10},
		{"Top Products by Region", -1},
		{"Customer Lifetime Value Segments", 10},
	}
	for i, nt := range tables {
		section := report.AddSection(previews[i].title)
		section.Summary["Rows"] = nt.Table.Len()
		section.Table = nt.Table.Head(previews[i].rows)
	}

	zerolog.Ctx(ctx).Info().
		Int("rows", cleaned.Len()).
		Int("customers", tables[3].Table.Len()).
		Msg("sales segments computed")

	return &Result{
		Report:     report,
		Tables:     tables,
		RowsLoaded: loaded,
	}, nil
}

// clean applies, in order: date parsing, duplicate removal, group
// imputation, revenue, product normalization and performance buckets.
func (a *salesSegments) clean(ctx context.Context, table *domain.Table, report *domain.Report) (*domain.Table, error) {
	c := a.cols

	table, err := ensureColumns(table,
		domain.Column{Name: c.DateColumn, Kind: domain.KindTime},
		domain.Column{Name: c.ProductColumn, Kind: domain.KindString},
		domain.Column{Name: c.CategoryColumn, Kind: domain.KindString},
		domain.Column{Name: c.RegionColumn, Kind: domain.KindString},
		domain.Column{Name: c.CustomerColumn, Kind: domain.KindString},
		domain.Column{Name: c.SalesColumn, Kind: domain.KindNumber},
		domain.Column{Name: c.QuantityColumn, Kind: domain.KindNumber},
	)
	if err != nil {
		return nil, err
	}
	before := table.Len()

	if table, err = a.cleaner.ParseDates(ctx, table, c.DateColumn); err != nil {
		return nil, err
	}
	if table, err = a.cleaner.ParseNumbers(ctx, table, c.SalesColumn, c.QuantityColumn); err != nil {
		return nil, err
	}
	parsed := table.Len()

	table = cleaning.DropDuplicates(table)
	deduped := table.Len()

	missingSales := countNulls(table, c.SalesColumn)
	missingQuantity := countNulls(table, c.QuantityColumn)

	if table, err = cleaning.FillByGroup(table, c.SalesColumn, c.ProductColumn, domain.FillMethod(c.SalesFill)); err != nil {
		return nil, err
	}
	if table, err = cleaning.FillByGroup(table, c.QuantityColumn, c.ProductColumn, domain.FillMethod(c.QuantityFill)); err != nil {
		return nil, err
	}
	if table, err = cleaning.Multiply(table, c.SalesColumn, c.QuantityColumn, RevenueColumn); err != nil {
		return nil, err
	}
	if table, err = cleaning.Normalize(table, c.ProductColumn); err != nil {
		return nil, err
	}
	if table, err = cleaning.Cut(table, RevenueColumn, c.PerformanceBins(), PerformanceColumn); err != nil {
		return nil, err
	}

	section := report.AddSection("Cleaning")
	section.Summary["Rows read"] = before
	section.Summary["Rows dropped as unparseable"] = before - parsed
	section.Summary["Duplicates removed"] = parsed - deduped
	section.Summary["Rows after cleaning"] = table.Len()
	section.Details = []domain.ReportDetail{
		{Name: c.SalesColumn, Value: missingSales, Unit: "filled", Description: c.SalesFill + " by " + c.ProductColumn},
		{Name: c.QuantityColumn, Value: missingQuantity, Unit: "filled", Description: c.QuantityFill + " by " + c.ProductColumn},
	}
	section.Table, err = aggregate.GroupAggregate(table, []string{PerformanceColumn}, []aggregate.Aggregation{
		{Column: RevenueColumn, Func: aggregate.AggCount, As: "rows"},
	})
	if err != nil {
		return nil, err
	}

	return table, nil
}

// analyze builds the four derived tables, in export order.
func (a *salesSegments) analyze(table *domain.Table) ([]domain.NamedTable, error) {
	c := a.cols

	daily, err := cleaning.TruncateToDay(table, c.DateColumn, c.DateColumn)
	if err != nil {
		return nil, err
	}

	categoryStats, err := aggregate.GroupAggregate(daily, []string{c.DateColumn, c.CategoryColumn}, []aggregate.Aggregation{
		{Column: RevenueColumn, Func: aggregate.AggSum},
		{Column: c.QuantityColumn, Func: aggregate.AggMean},
	})
	if err != nil {
		return nil, err
	}

	productDaily, err := aggregate.GroupAggregate(daily, []string{c.ProductColumn, c.DateColumn}, []aggregate.Aggregation{
		{Column: RevenueColumn, Func: aggregate.AggSum},
	})
	if err != nil {
		return nil, err
	}
	movingAvg, err := aggregate.RollingMean(productDaily, c.ProductColumn, c.DateColumn, RevenueColumn,
		c.RollingWindow, c.RollingMinPeriods, MovingAvgColumn)
	if err != nil {
		return nil, err
	}

	regionProducts, err := aggregate.GroupAggregate(table, []string{c.RegionColumn, c.ProductColumn}, []aggregate.Aggregation{
		{Column: RevenueColumn, Func: aggregate.AggSum},
	})
	if err != nil {
		return nil, err
	}
	topProducts, err := aggregate.TopNPerGroup(regionProducts, c.RegionColumn, RevenueColumn, c.TopN)
	if err != nil {
		return nil, err
	}

	customers, err := aggregate.GroupAggregate(table, []string{c.CustomerColumn}, []aggregate.Aggregation{
		{Column: RevenueColumn, Func: aggregate.AggSum},
	})
	if err != nil {
		return nil, err
	}
	ltv, err := aggregate.QuantileSegment(customers, RevenueColumn, c.SegmentLabels, LTVSegmentColumn)
	if err != nil {
		return nil, err
	}

	return []domain.NamedTable{
		{Name: DailyCategoryStatsTable, FileName: DailyCategoryStatsTable + ".csv", Table: categoryStats},
		{Name: ProductRevenueMATable, FileName: ProductRevenueMATable + ".csv", Table: movingAvg},
		{Name: TopProductsByRegionTable, FileName: TopProductsByRegionTable + ".csv", Table: topProducts},
		{Name: CustomerLTVTable, FileName: CustomerLTVTable + ".csv", Table: ltv},
	}, nil
}

func countNulls(t *domain.Table, column string) int {
	values, err := t.Values(column)
	if err != nil {
		return 0
	}
	n := 0
	for _, v := range values {
		if v.IsNull() {
			n++
		}
	}
	return n
}
