package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the settings of one run
type Config struct {
	Analysis     string         `mapstructure:"analysis" validate:"required"`
	Input        string         `mapstructure:"input" validate:"required"`
	OutputDir    string         `mapstructure:"output_dir" validate:"required"`
	Format       string         `mapstructure:"format" validate:"oneof=table plain"`
	PreviewRows  int            `mapstructure:"preview_rows" validate:"gte=0"`
	OnParseError string         `mapstructure:"on_parse_error" validate:"oneof=abort drop"`
	Where        string         `mapstructure:"where"`
	Delimiter    string         `mapstructure:"delimiter" validate:"omitempty,len=1"`
	Sheet        string         `mapstructure:"sheet"`
	Workbook     string         `mapstructure:"workbook"`
	DuckDB       string         `mapstructure:"duckdb"`
	LogLevel     string         `mapstructure:"log_level" validate:"oneof=trace debug info warn error"`
	Trend        TrendConfig    `mapstructure:"trend"`
	Segments     SegmentsConfig `mapstructure:"segments"`
}

// TrendConfig names the columns of the sales trend analysis
type TrendConfig struct {
	DateColumn     string `mapstructure:"date_column" validate:"required"`
	ProductColumn  string `mapstructure:"product_column" validate:"required"`
	CategoryColumn string `mapstructure:"category_column" validate:"required"`
	QuantityColumn string `mapstructure:"quantity_column" validate:"required"`
	PriceColumn    string `mapstructure:"price_column" validate:"required"`
	TotalColumn    string `mapstructure:"total_column" validate:"required"`
	CategoryChart  string `mapstructure:"category_chart" validate:"required"`
	DailyChart     string `mapstructure:"daily_chart" validate:"required"`
}

// SegmentsConfig names the columns and parameters of the segmentation analysis
type SegmentsConfig struct {
	DateColumn        string    `mapstructure:"date_column" validate:"required"`
	ProductColumn     string    `mapstructure:"product_column" validate:"required"`
	CategoryColumn    string    `mapstructure:"category_column" validate:"required"`
	RegionColumn      string    `mapstructure:"region_column" validate:"required"`
	CustomerColumn    string    `mapstructure:"customer_column" validate:"required"`
	SalesColumn       string    `mapstructure:"sales_column" validate:"required"`
	QuantityColumn    string    `mapstructure:"quantity_column" validate:"required"`
	SalesFill         string    `mapstructure:"sales_fill" validate:"oneof=mean median"`
	QuantityFill      string    `mapstructure:"quantity_fill" validate:"oneof=mean median"`
	RollingWindow     int       `mapstructure:"rolling_window" validate:"gt=0"`
	RollingMinPeriods int       `mapstructure:"rolling_min_periods" validate:"gt=0,ltefield=RollingWindow"`
	TopN              int       `mapstructure:"top_n" validate:"gte=0"`
	PerformanceEdges  []float64 `mapstructure:"performance_edges" validate:"min=2"`
	PerformanceLabels []string  `mapstructure:"performance_labels" validate:"min=1"`
	SegmentLabels     []string  `mapstructure:"segment_labels" validate:"min=1"`
}

// PerformanceBins returns the revenue buckets of the segmentation analysis.
func (s SegmentsConfig) PerformanceBins() domain.Bins {
	return domain.Bins{Edges: s.PerformanceEdges, Labels: s.PerformanceLabels}
}

// ParsePolicy returns the configured policy for unparseable values.
func (c *Config) ParsePolicy() (domain.ParsePolicy, error) {
	return domain.ParseParsePolicy(c.OnParseError)
}

// DelimiterRune returns the configured field delimiter, zero when unset.
func (c *Config) DelimiterRune() rune {
	if c.Delimiter == "" {
		return 0
	}
	return []rune(c.Delimiter)[0]
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("output_dir", ".")
	v.SetDefault("format", "table")
	v.SetDefault("preview_rows", 0)
	v.SetDefault("on_parse_error", string(domain.ParsePolicyAbort))
	v.SetDefault("log_level", "info")

	v.SetDefault("trend.date_column", "Date")
	v.SetDefault("trend.product_column", "Product")
	v.SetDefault("trend.category_column", "Category")
	v.SetDefault("trend.quantity_column", "Quantity")
	v.SetDefault("trend.price_column", "Price")
	v.SetDefault("trend.total_column", "Total")
	v.SetDefault("trend.category_chart", "sales_by_category.png")
	v.SetDefault("trend.daily_chart", "daily_sales_trend.png")

	v.SetDefault("segments.date_column", "date")
	v.SetDefault("segments.product_column", "product")
	v.SetDefault("segments.category_column", "category")
	v.SetDefault("segments.region_column", "region")
	v.SetDefault("segments.customer_column", "customer_id")
	v.SetDefault("segments.sales_column", "sales")
	v.SetDefault("segments.quantity_column", "quantity")
	v.SetDefault("segments.sales_fill", string(domain.FillMean))
	v.SetDefault("segments.quantity_fill", string(domain.FillMedian))
	v.SetDefault("segments.rolling_window", 7)
	v.SetDefault("segments.rolling_min_periods", 1)
	v.SetDefault("segments.top_n", 3)
	v.SetDefault("segments.performance_edges", []float64{0, 100, 200, 500, math.Inf(1)})
	v.SetDefault("segments.performance_labels", []string{"Poor", "Average", "Good", "Excellent"})
	v.SetDefault("segments.segment_labels", []string{"Bronze", "Silver", "Gold", "Platinum"})
}

// Defaults returns the configuration every run starts from, before any file
// or flag is applied. It is not validated.
func Defaults() *Config {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads the optional config file at path, overlays the flags that were
// set on the command line and validates the result.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, domain.ConfigErr("failed to read config file", map[string]any{"path": path, "error": err})
		}
	}

	if flags != nil {
		var bindErr error
		flags.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" || !f.Changed {
				return
			}
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		})
		if bindErr != nil {
			return nil, domain.ConfigErr("failed to bind flags", map[string]any{"error": bindErr})
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, domain.ConfigErr("failed to parse config", map[string]any{"error": err})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the consistency of the bins.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return domain.ConfigErr("invalid config", map[string]any{"error": err})
	}
	bins := c.Segments.PerformanceBins()
	if len(bins.Labels) != len(bins.Edges)-1 {
		return domain.ConfigErr("performance bins need one label per interval", map[string]any{
			"bins": bins.String(),
		})
	}
	return nil
}

func (c *Config) String() string {
	return fmt.Sprintf("analysis=%s input=%s output_dir=%s", c.Analysis, c.Input, c.OutputDir)
}
