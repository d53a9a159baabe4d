package analysis

import "github.com/KaramelBytes/churnlens-cli/internal/dataset"

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
)

// ClassifyColumn infers the kind of column key from a single sample: the
// first row with a defined value, or the first row when none is defined.
// A column with no usable sample is categorical.
func ClassifyColumn(ds *dataset.Dataset, key string) Kind {
	if ds.Empty() {
		return KindCategorical
	}
	sample, found := any(nil), false
	for _, r := range ds.Rows {
		if v, ok := r.Value(key); ok {
			sample, found = v, true
			break
		}
	}
	if !found {
		sample = ds.Rows[0].Fields[key]
	}
	if _, ok := dataset.Float(sample); ok {
		return KindNumeric
	}
	return KindCategorical
}

// NumericColumns returns the numeric columns of ds in declared order.
func NumericColumns(ds *dataset.Dataset) []dataset.Column {
	return columnsOfKind(ds, KindNumeric)
}

// CategoricalColumns returns the categorical columns of ds in declared order.
func CategoricalColumns(ds *dataset.Dataset) []dataset.Column {
	return columnsOfKind(ds, KindCategorical)
}

func columnsOfKind(ds *dataset.Dataset, kind Kind) []dataset.Column {
	if ds == nil {
		return nil
	}
	var out []dataset.Column
	for _, c := range ds.Columns {
		if ClassifyColumn(ds, c.Key) == kind {
			out = append(out, c)
		}
	}
	return out
}

// ColumnInfo is a column together with its inferred kind.
type ColumnInfo struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Kind  Kind   `json:"kind" yaml:"kind"`
}

// DescribeColumns classifies every column of ds in declared order.
func DescribeColumns(ds *dataset.Dataset) []ColumnInfo {
	out := []ColumnInfo{}
	if ds == nil {
		return out
	}
	for _, c := range ds.Columns {
		out = append(out, ColumnInfo{Key: c.Key, Label: c.Label, Kind: ClassifyColumn(ds, c.Key)})
	}
	return out
}
