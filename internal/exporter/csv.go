// Package exporter writes a scored dataset back out as CSV or XLSX.
package exporter

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// DefaultFileName is the suggested name for a CSV download.
const DefaultFileName = "churn_predictions.csv"

// Header returns the exported column order: every column key followed by
// the churn probability and prediction.
func Header(ds *dataset.Dataset) []string {
	var out []string
	if ds != nil {
		for _, c := range ds.Columns {
			out = append(out, c.Key)
		}
	}
	return append(out, dataset.FieldChurnProbability, dataset.FieldChurnPrediction)
}

// Records returns the exported cells of every row, in Header order. nil
// values become empty strings.
func Records(ds *dataset.Dataset) [][]string {
	if ds == nil {
		return nil
	}
	out := make([][]string, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		rec := make([]string, 0, len(ds.Columns)+2)
		for _, c := range ds.Columns {
			rec = append(rec, dataset.String(r.Fields[c.Key]))
		}
		rec = append(rec, dataset.String(r.ChurnProbability), r.Risk.String())
		out = append(out, rec)
	}
	return out
}

// quote wraps a field in double quotes when it contains a comma, a quote
// or a line break, doubling inner quotes.
func quote(s string) string {
	if !strings.ContainsAny(s, ",\"\r\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// WriteCSV writes ds as CSV: a header line then one line per row, joined
// with "\n" and without a trailing newline.
func WriteCSV(w io.Writer, ds *dataset.Dataset) error {
	bw := bufio.NewWriter(w)
	writeLine := func(fields []string) {
		for i, f := range fields {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(quote(f))
		}
	}
	writeLine(Header(ds))
	for _, rec := range Records(ds) {
		bw.WriteByte('\n')
		writeLine(rec)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}
