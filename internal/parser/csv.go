package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

type csvLoader struct {
	ext   string
	comma rune
}

func (l csvLoader) CanLoad(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), l.ext)
}

func (l csvLoader) Load(r io.Reader, _ Options) (*dataset.Dataset, []string, error) {
	// Spreadsheet exports often start with a UTF-8 BOM.
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.Comma = l.comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, fmt.Errorf("read header: empty file")
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	var records [][]string
	for {
		rec, err := cr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read row %d: %w", len(records)+1, err)
		}
		records = append(records, rec)
	}
	return FromRecords(header, records)
}
