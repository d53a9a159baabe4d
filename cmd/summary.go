package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/churnlens-cli/internal/analysis"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show customer totals and the high-risk share",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentSnapshot()
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), "Summary", snap.Dataset.Summary)
	},
}

var columnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "List dataset columns with their inferred kind",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentSnapshot()
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), "Columns", analysis.DescribeColumns(snap.Dataset))
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(columnsCmd)
}
