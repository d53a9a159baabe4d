// Package report renders aggregate views as Markdown, JSON or YAML.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
	"github.com/KaramelBytes/churnlens-cli/internal/paging"
)

// Format is an output encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat accepts markdown|md, json and yaml|yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %q (use markdown, json or yaml)", ErrUnknownFormat, s)
}

// Markdowner is implemented by views that render themselves.
type Markdowner interface {
	Markdown() string
}

// Render writes v to w. title heads the Markdown output and is ignored by
// the structured formats.
func Render(w io.Writer, f Format, title string, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatMarkdown, "":
		_, err := io.WriteString(w, Markdown(title, v))
		return err
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

// CustomerTable is one page of customers plus the navigation window.
type CustomerTable struct {
	Columns []dataset.Column            `json:"columns" yaml:"columns"`
	Window  []int                       `json:"window" yaml:"window"`
	Gaps    []int                       `json:"gaps,omitempty" yaml:"gaps,omitempty"`
	Page    paging.Page[map[string]any] `json:"page" yaml:"page"`
}

// NewCustomerTable pages over ds. The page number is not clamped.
func NewCustomerTable(ds *dataset.Dataset, p paging.Paginator, number int) CustomerTable {
	payload := ds.Payload()
	pg := paging.Slice(p, payload.Customers, number)
	window := paging.Window(number, pg.TotalPages)
	return CustomerTable{
		Columns: payload.Columns,
		Window:  window,
		Gaps:    paging.Gaps(window),
		Page:    pg,
	}
}
