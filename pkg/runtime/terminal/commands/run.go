package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/de-tools/sales-atlas/pkg/models/domain"
	"github.com/de-tools/sales-atlas/pkg/models/store"
	"github.com/de-tools/sales-atlas/pkg/services/analysis"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb"
	"github.com/de-tools/sales-atlas/pkg/store/duckdb/results"
	"github.com/de-tools/sales-atlas/pkg/store/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// ReportHandler prints an analysis report
type ReportHandler interface {
	Handle(report *domain.Report) error
}

// ReporterFactory builds the report handler of one output format
type ReporterFactory func(w io.Writer, previewRows int) ReportHandler

type RunCmd struct {
	configPath string
	registry   analysis.Registry
	reporters  map[string]ReporterFactory
}

func NewRunCmd(registry analysis.Registry, reporters map[string]ReporterFactory) *cobra.Command {
	rc := &RunCmd{registry: registry, reporters: reporters}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an analysis over a sales dataset",
		Args:  cobra.NoArgs,
		RunE:  rc.run,
	}

	// Define flags. Their names match the config file keys with '-' for '_'.
	cmd.Flags().StringVarP(&rc.configPath, "config", "c", "", "Path to a YAML, TOML or JSON config file")
	cmd.Flags().StringP("analysis", "a", "", "Analysis to run (see list)")
	cmd.Flags().StringP("input", "i", "", "Input dataset (.csv, .tsv, .txt or .xlsx)")
	cmd.Flags().StringP("output-dir", "o", ".", "Directory for CSV files and charts")
	cmd.Flags().String("format", "table", "Report format: table or plain")
	cmd.Flags().Int("preview-rows", 0, "Maximum rows per printed table, 0 for the analysis default")
	cmd.Flags().String("on-parse-error", string(domain.ParsePolicyAbort), "What to do with unparseable values: abort or drop")
	cmd.Flags().String("where", "", `Keep only rows matching an expression, e.g. 'region == "north"'`)
	cmd.Flags().String("delimiter", "", "Field delimiter of delimited input (default ',')")
	cmd.Flags().String("sheet", "", "Sheet of an .xlsx input (default first sheet)")
	cmd.Flags().String("workbook", "", "Also write every derived table to this .xlsx file")
	cmd.Flags().String("duckdb", "", "Also persist derived tables to this DuckDB file")
	cmd.Flags().String("log-level", "info", "Log level: trace, debug, info, warn or error")

	return cmd
}

func (rc *RunCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(rc.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())
	logger.Debug().Stringer("config", cfg).Msg("config loaded")

	newReporter, ok := rc.reporters[cfg.Format]
	if !ok {
		return domain.ConfigErr("unknown report format", map[string]any{"format": cfg.Format})
	}

	a, err := rc.registry.Create(cfg.Analysis, cfg)
	if err != nil {
		return fmt.Errorf("failed to create analysis %q: %w", cfg.Analysis, err)
	}

	logger.Info().
		Str("analysis", a.Name()).
		Str("input", cfg.Input).
		Msg("running analysis")

	result, err := a.Run(ctx, cfg.Input)
	if err != nil {
		return fmt.Errorf("analysis %s failed: %w", a.Name(), err)
	}

	out := cmd.OutOrStdout()
	if err := newReporter(out, cfg.PreviewRows).Handle(result.Report); err != nil {
		return fmt.Errorf("failed to print report: %w", err)
	}

	written, err := rc.export(ctx, cfg, result)
	if err != nil {
		return err
	}

	if cfg.DuckDB != "" {
		if err := rc.persist(ctx, cfg, a.Name(), result); err != nil {
			return err
		}
		written = append(written, cfg.DuckDB)
	}

	fmt.Fprintln(out, "\nAnalysis complete. Files written:")
	for _, path := range written {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}

// export writes the CSV files, charts and optional workbook of a result.
func (rc *RunCmd) export(ctx context.Context, cfg *config.Config, result *analysis.Result) ([]string, error) {
	var written []string

	csvWriter := export.NewCSVWriter(cfg.OutputDir)
	for _, nt := range result.Tables {
		if nt.FileName == "" {
			continue
		}
		path, err := csvWriter.WriteTable(ctx, nt.FileName, nt.Table)
		if err != nil {
			return nil, fmt.Errorf("failed to export %s: %w", nt.Name, err)
		}
		written = append(written, path)
	}

	renderer := export.NewChartRenderer(cfg.OutputDir)
	for _, chart := range result.Charts {
		path, err := renderer.Render(ctx, chart)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", chart.FileName, err)
		}
		written = append(written, path)
	}

	if cfg.Workbook != "" {
		path := cfg.Workbook
		if !filepath.IsAbs(path) && filepath.Dir(path) == "." {
			path = filepath.Join(cfg.OutputDir, path)
		}
		if err := export.NewWorkbookWriter().Write(ctx, path, result.Tables); err != nil {
			return nil, fmt.Errorf("failed to write workbook: %w", err)
		}
		written = append(written, path)
	}

	return written, nil
}

func (rc *RunCmd) persist(ctx context.Context, cfg *config.Config, name string, result *analysis.Result) error {
	db, err := duckdb.NewDB(duckdb.Settings{DbPath: cfg.DuckDB})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close DuckDB")
		}
	}()

	resultsStore, err := results.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create results store: %w", err)
	}

	_, err = resultsStore.Save(ctx, store.AnalysisRun{
		Analysis:   name,
		Input:      cfg.Input,
		RowsLoaded: result.RowsLoaded,
	}, result.Tables)
	if err != nil {
		return fmt.Errorf("failed to persist results: %w", err)
	}
	return nil
}
