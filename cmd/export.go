package cmd

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/churnlens-cli/internal/exporter"
	"github.com/KaramelBytes/churnlens-cli/internal/utils"
)

var (
	exportOutput string
	exportSheet  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the scored customer table as CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentSnapshot()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		switch ext := strings.ToLower(filepath.Ext(exportOutput)); ext {
		case ".csv":
			err = exporter.WriteCSV(&buf, snap.Dataset)
		case ".xlsx":
			err = exporter.WriteXLSX(&buf, snap.Dataset, exportSheet)
		default:
			return fmt.Errorf("unsupported export format %q (use .csv or .xlsx)", ext)
		}
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(exportOutput, buf.Bytes()); err != nil {
			return fmt.Errorf("write export: %w", err)
		}
		fmt.Printf("✓ Exported %d customers to %s\n", snap.Dataset.Len(), exportOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", exporter.DefaultFileName, "output file (.csv or .xlsx)")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", exporter.DefaultSheet, "XLSX: worksheet name")
}
