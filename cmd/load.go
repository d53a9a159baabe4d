package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/churnlens-cli/internal/parser"
	"github.com/KaramelBytes/churnlens-cli/internal/session"
)

var loadSheet string

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a scored dataset (.json, .csv, .tsv, .xlsx) as the current session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := sessionStore()
		if err != nil {
			return err
		}
		res, err := parser.LoadFile(args[0], parser.Options{Sheet: loadSheet})
		if err != nil {
			return err
		}
		snap := session.NewSnapshot(res.Source, res.Dataset, res.Warnings)
		if err := st.Save(snap); err != nil {
			return err
		}
		slog.Debug("snapshot saved", slog.String("id", snap.ID), slog.String("path", st.Path()))
		for _, w := range res.Warnings {
			fmt.Printf("⚠ Warning: %s\n", w)
		}
		s := res.Dataset.Summary
		fmt.Printf("✓ Loaded %s: %d customers, %d columns (%d high risk)\n",
			res.Source, s.TotalCustomers, len(res.Dataset.Columns), s.HighRiskCount)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the current dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := sessionStore()
		if err != nil {
			return err
		}
		if err := st.Reset(); err != nil {
			return err
		}
		fmt.Println("✓ Session cleared")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(resetCmd)
	loadCmd.Flags().StringVar(&loadSheet, "sheet", "", "XLSX: sheet name to load (default: first sheet)")
}
