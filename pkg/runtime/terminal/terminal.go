package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/sales-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/sales-atlas/pkg/services/analysis"
	"github.com/spf13/cobra"
)

const (
	FormatTable = "table"
	FormatPlain = "plain"
)

// CLI represents the command-line interface
type CLI struct {
	registry  analysis.Registry
	reporters map[string]commands.ReporterFactory
	rootCmd   *cobra.Command
}

// Options contain configuration for the CLI
type Options struct {
	Registry  analysis.Registry
	Output    io.Writer
	ErrOutput io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Registry == nil {
		opts.Registry = analysis.DefaultRegistry()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.ErrOutput == nil {
		opts.ErrOutput = os.Stderr
	}

	cli := &CLI{
		registry: opts.Registry,
		reporters: map[string]commands.ReporterFactory{
			FormatTable: func(w io.Writer, previewRows int) commands.ReportHandler {
				return export.NewReporter(w, previewRows)
			},
			FormatPlain: func(w io.Writer, previewRows int) commands.ReportHandler {
				return NewReporter(w, previewRows)
			},
		},
	}

	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	cli.rootCmd.SetErr(opts.ErrOutput)
	return cli
}

func (cli *CLI) Execute(ctx context.Context) error {
	return cli.rootCmd.ExecuteContext(ctx)
}

// SetArgs overrides the command line arguments, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "sales-atlas",
		Short:         "Sales dataset analysis tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(commands.NewRunCmd(cli.registry, cli.reporters))
	cmd.AddCommand(commands.NewListCmd(cli.registry))

	return cmd
}
