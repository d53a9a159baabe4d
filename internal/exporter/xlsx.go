package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// DefaultSheet is the worksheet name used when none is given.
const DefaultSheet = "Predictions"

// WriteXLSX writes ds as a single-sheet workbook. Numeric cells keep their
// numeric type; nil cells are left empty.
func WriteXLSX(w io.Writer, ds *dataset.Dataset, sheet string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := Header(ds)
	row := make([]any, len(header))
	for i, h := range header {
		row[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &row); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if ds != nil {
		for i, r := range ds.Rows {
			row = row[:0]
			for _, c := range ds.Columns {
				row = append(row, r.Fields[c.Key])
			}
			row = append(row, r.ChurnProbability, r.Risk.String())
			cell, err := excelize.CoordinatesToCellName(1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return fmt.Errorf("write row %d: %w", i+1, err)
			}
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}
