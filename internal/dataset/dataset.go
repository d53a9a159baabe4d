// Package dataset holds the in-memory model of a scored customer table:
// columns, rows carrying a churn prediction, and the derived summary.
//
// A *Dataset is treated as an immutable snapshot. Nothing in this module
// mutates one after it has been built; re-uploads replace it wholesale.
package dataset

import (
	"errors"
	"fmt"
	"strings"
)

// Reserved field names carried by every scored row. They are never listed
// as Columns.
const (
	FieldChurnProbability = "Churn_Probability"
	FieldChurnPrediction  = "Churn_Prediction"
	FieldPredictedClass   = "Predicted_Class"
)

var (
	// ErrUnknownRiskLabel is returned when a prediction string is neither
	// high nor low risk.
	ErrUnknownRiskLabel = errors.New("unknown risk label")
	// ErrInvalidRow marks a row whose prediction fields are missing or unusable.
	ErrInvalidRow = errors.New("invalid row")
)

// IsReserved reports whether key names one of the prediction fields.
func IsReserved(key string) bool {
	switch key {
	case FieldChurnProbability, FieldChurnPrediction, FieldPredictedClass:
		return true
	}
	return false
}

// RiskLabel is the binary churn classification of a row.
type RiskLabel int

const (
	LowRisk RiskLabel = iota
	HighRisk
)

// String returns the wire form used by the prediction service.
func (r RiskLabel) String() string {
	if r == HighRisk {
		return "High Risk"
	}
	return "Low Risk"
}

// MarshalText implements encoding.TextMarshaler.
func (r RiskLabel) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLabel) UnmarshalText(b []byte) error {
	v, err := ParseRiskLabel(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// ParseRiskLabel accepts "High Risk"/"Low Risk" and the usual spelling
// variants ("high_risk", "HIGH", "HighRisk").
func ParseRiskLabel(s string) (RiskLabel, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "", "-", "", " ", "").Replace(norm)
	switch norm {
	case "highrisk", "high":
		return HighRisk, nil
	case "lowrisk", "low":
		return LowRisk, nil
	}
	return LowRisk, fmt.Errorf("%w: %q", ErrUnknownRiskLabel, s)
}

// Column describes one input column of the dataset.
type Column struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// Row is one customer record plus its churn prediction.
type Row struct {
	// Fields maps column key to a scalar: nil, string, float64 or bool.
	Fields           map[string]any
	ChurnProbability float64
	Risk             RiskLabel
}

// Value returns the raw value for key and whether it is defined, i.e.
// present, non-nil and not a blank string.
func (r Row) Value(key string) (any, bool) {
	v, ok := r.Fields[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return v, false
	}
	return v, true
}

// Dataset is the scored customer table handed to the aggregation layer.
type Dataset struct {
	Columns []Column
	Rows    []Row
	Summary Summary
}

// New builds a Dataset from columns and rows and derives its summary.
// Rows missing a value for a column get an explicit nil so that every row
// covers every column key.
func New(columns []Column, rows []Row) *Dataset {
	for i := range rows {
		if rows[i].Fields == nil {
			rows[i].Fields = make(map[string]any, len(columns))
		}
		for _, c := range columns {
			if _, ok := rows[i].Fields[c.Key]; !ok {
				rows[i].Fields[c.Key] = nil
			}
		}
	}
	return &Dataset{Columns: columns, Rows: rows, Summary: Summarize(rows)}
}

// Empty reports whether ds is nil or has no rows.
func (ds *Dataset) Empty() bool { return ds == nil || len(ds.Rows) == 0 }

// Len returns the number of rows; zero for a nil dataset.
func (ds *Dataset) Len() int {
	if ds == nil {
		return 0
	}
	return len(ds.Rows)
}

// Column looks up a column by exact key.
func (ds *Dataset) Column(key string) (Column, bool) {
	if ds == nil {
		return Column{}, false
	}
	for _, c := range ds.Columns {
		if c.Key == key {
			return c, true
		}
	}
	return Column{}, false
}
