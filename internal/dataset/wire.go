package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Payload is the upload contract produced by the prediction service:
// column descriptors, one object per customer and the service's summary.
type Payload struct {
	Columns   []Column         `json:"columns"`
	Customers []map[string]any `json:"customers"`
	Summary   *Summary         `json:"summary,omitempty"`
}

// DecodePayload reads a Payload. Numbers arrive as json.Number and are
// folded to float64 when rows are built.
func DecodePayload(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return p, nil
}

// BuildRow splits a decoded customer object into a Row. rowNum is 1-based
// and only used in error messages.
func BuildRow(fields map[string]any, rowNum int) (Row, error) {
	r := Row{Fields: make(map[string]any, len(fields))}
	prob, ok := Float(normalizeValue(fields[FieldChurnProbability]))
	if !ok {
		return Row{}, fmt.Errorf("%w %d: %s is missing or not a number", ErrInvalidRow, rowNum, FieldChurnProbability)
	}
	if prob < 0 || prob > 100 {
		return Row{}, fmt.Errorf("%w %d: %s %.4g outside [0,100]", ErrInvalidRow, rowNum, FieldChurnProbability, prob)
	}
	r.ChurnProbability = prob

	switch pred := normalizeValue(fields[FieldChurnPrediction]).(type) {
	case string:
		label, err := ParseRiskLabel(pred)
		if err != nil {
			return Row{}, fmt.Errorf("%w %d: %w", ErrInvalidRow, rowNum, err)
		}
		r.Risk = label
	default:
		class, ok := Float(normalizeValue(fields[FieldPredictedClass]))
		if !ok {
			return Row{}, fmt.Errorf("%w %d: %s is missing", ErrInvalidRow, rowNum, FieldChurnPrediction)
		}
		if class >= 1 {
			r.Risk = HighRisk
		}
	}

	for k, v := range fields {
		if IsReserved(k) {
			continue
		}
		r.Fields[k] = normalizeValue(v)
	}
	return r, nil
}

// FromPayload validates a decoded payload and builds a Dataset. When the
// payload has no column list, columns are taken from the first customer in
// key order. A supplied summary that disagrees with the rows is reported
// in warnings; the derived summary always wins.
func FromPayload(p Payload) (*Dataset, []string, error) {
	cols := p.Columns
	if len(cols) == 0 && len(p.Customers) > 0 {
		keys := make([]string, 0, len(p.Customers[0]))
		for k := range p.Customers[0] {
			if !IsReserved(k) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			cols = append(cols, Column{Key: k, Label: k})
		}
	}
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, dup := seen[c.Key]; dup {
			return nil, nil, fmt.Errorf("duplicate column key %q", c.Key)
		}
		seen[c.Key] = struct{}{}
	}

	rows := make([]Row, 0, len(p.Customers))
	for i, c := range p.Customers {
		r, err := BuildRow(c, i+1)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, r)
	}
	ds := New(cols, rows)
	var warnings []string
	if p.Summary != nil {
		warnings = p.Summary.Check(ds.Summary)
	}
	return ds, warnings, nil
}

// Payload converts ds back into the upload contract.
func (ds *Dataset) Payload() Payload {
	p := Payload{Columns: []Column{}, Customers: []map[string]any{}}
	if ds == nil {
		return p
	}
	p.Columns = append(p.Columns, ds.Columns...)
	for _, r := range ds.Rows {
		m := make(map[string]any, len(r.Fields)+3)
		for k, v := range r.Fields {
			m[k] = v
		}
		m[FieldChurnProbability] = r.ChurnProbability
		m[FieldChurnPrediction] = r.Risk.String()
		class := 0
		if r.Risk == HighRisk {
			class = 1
		}
		m[FieldPredictedClass] = class
		p.Customers = append(p.Customers, m)
	}
	s := ds.Summary
	p.Summary = &s
	return p
}

// MarshalJSON encodes the dataset in the upload contract shape.
func (ds *Dataset) MarshalJSON() ([]byte, error) {
	return json.Marshal(ds.Payload())
}

// UnmarshalJSON decodes the upload contract shape.
func (ds *Dataset) UnmarshalJSON(b []byte) error {
	p, err := DecodePayload(bytes.NewReader(b))
	if err != nil {
		return err
	}
	built, _, err := FromPayload(p)
	if err != nil {
		return err
	}
	*ds = *built
	return nil
}
