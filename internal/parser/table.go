package parser

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

var titler = cases.Title(language.Und)

// ColumnLabel derives a display label from a raw column key:
// "CURR_ANN_AMT" becomes "Curr Ann Amt".
func ColumnLabel(key string) string {
	return titler.String(strings.ReplaceAll(key, "_", " "))
}

// FromRecords builds a Dataset from a header row and string records, as
// read from CSV or a worksheet. Numeric cells become float64, blank cells
// nil. Blank records are skipped.
func FromRecords(header []string, records [][]string) (*dataset.Dataset, []string, error) {
	keys := make([]string, len(header))
	seen := make(map[string]struct{}, len(header))
	var cols []dataset.Column
	for i, h := range header {
		k := strings.TrimSpace(h)
		if k == "" {
			return nil, nil, fmt.Errorf("header column %d is empty", i+1)
		}
		if _, dup := seen[k]; dup {
			return nil, nil, fmt.Errorf("duplicate column key %q", k)
		}
		seen[k] = struct{}{}
		keys[i] = k
		if !dataset.IsReserved(k) {
			cols = append(cols, dataset.Column{Key: k, Label: ColumnLabel(k)})
		}
	}
	if _, ok := seen[dataset.FieldChurnProbability]; !ok {
		return nil, nil, fmt.Errorf("%w: no %s column", dataset.ErrInvalidRow, dataset.FieldChurnProbability)
	}

	var warnings []string
	rows := make([]dataset.Row, 0, len(records))
	long := 0
	for i, rec := range records {
		if blank(rec) {
			continue
		}
		if len(rec) > len(keys) {
			long++
		}
		fields := make(map[string]any, len(keys))
		for j, k := range keys {
			if j < len(rec) {
				fields[k] = cell(rec[j])
			} else {
				fields[k] = nil
			}
		}
		r, err := dataset.BuildRow(fields, i+1)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, r)
	}
	if long > 0 {
		warnings = append(warnings, fmt.Sprintf("%d rows had more cells than the header; extra cells were ignored", long))
	}
	return dataset.New(cols, rows), warnings, nil
}

// cell converts a raw cell. Text becomes float64 only when the number
// prints back identically, so "00123" or "1.50" keep their spelling.
func cell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, ok := dataset.Float(s); ok && dataset.String(f) == s {
		return f
	}
	return s
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
