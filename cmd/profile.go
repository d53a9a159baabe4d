package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/churnlens-cli/internal/analysis"
	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
	"github.com/KaramelBytes/churnlens-cli/internal/parser"
)

var (
	profOutputPath string
	profSampleRows int
	profTopValues  int
	profOutliers   bool
	profOutlierThr float64
	profSheetName  string
)

var profileCmd = &cobra.Command{
	Use:   "profile [file]",
	Short: "Profile every column of a dataset (current session when no file is given)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := analysis.DefaultProfileOptions()
		if profSampleRows > 0 {
			opt.SampleRows = profSampleRows
		}
		if profTopValues > 0 {
			opt.TopValues = profTopValues
		}
		if cmd.Flags().Changed("outliers") {
			opt.Outliers = profOutliers
		}
		if profOutlierThr > 0 {
			opt.OutlierThreshold = profOutlierThr
		}

		var ds *dataset.Dataset
		if len(args) == 1 {
			res, err := parser.LoadFile(args[0], parser.Options{Sheet: profSheetName})
			if err != nil {
				return err
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(os.Stderr, "⚠ Warning: %s\n", w)
			}
			ds, opt.Name = res.Dataset, res.Source
		} else {
			snap, err := currentSnapshot()
			if err != nil {
				return err
			}
			ds, opt.Name = snap.Dataset, snap.Source
		}
		rep := analysis.Profile(ds, opt)

		// --output writes Markdown regardless of --format
		if profOutputPath != "" {
			if err := os.WriteFile(profOutputPath, []byte(rep.Markdown()), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Printf("✓ Wrote profile to %s\n", profOutputPath)
			return nil
		}
		return emit(cmd.OutOrStdout(), "Profile", rep)
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVarP(&profOutputPath, "output", "o", "", "optional path to write the profile (Markdown)")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows to include")
	profileCmd.Flags().IntVar(&profTopValues, "top-values", 8, "most frequent values listed per categorical column")
	profileCmd.Flags().BoolVar(&profOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	profileCmd.Flags().Float64Var(&profOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	profileCmd.Flags().StringVar(&profSheetName, "sheet", "", "XLSX: sheet name to profile")
}
