package commands

import (
	"fmt"

	"github.com/de-tools/sales-atlas/pkg/services/analysis"
	"github.com/de-tools/sales-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

type ListCmd struct {
	registry analysis.Registry
}

func NewListCmd(registry analysis.Registry) *cobra.Command {
	lc := &ListCmd{registry: registry}
	return &cobra.Command{
		Use:   "list",
		Short: "List the available analyses",
		Args:  cobra.NoArgs,
		RunE:  lc.run,
	}
}

func (lc *ListCmd) run(cmd *cobra.Command, args []string) error {
	names := lc.registry.List()
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No analyses registered")
		return nil
	}

	defaults := config.Defaults()
	fmt.Fprintln(cmd.OutOrStdout(), "Available analyses:")
	for _, name := range names {
		a, err := lc.registry.Create(name, defaults)
		if err != nil {
			return fmt.Errorf("failed to create analysis %s: %w", name, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-16s %s\n", a.Name(), a.Description())
	}
	return nil
}
