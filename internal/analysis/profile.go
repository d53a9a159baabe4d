package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// ProfileOptions controls column profiling.
type ProfileOptions struct {
	// Name is printed as the dataset source, e.g. the uploaded file name.
	Name string
	// SampleRows determines how many example rows to include in the report.
	SampleRows int
	// TopValues limits the categorical values listed per column.
	TopValues int
	// Outlier detection via robust Z-score (MAD). If Outliers is true, counts |z|>threshold.
	Outliers         bool
	OutlierThreshold float64
}

// DefaultProfileOptions returns reasonable defaults for profiling.
func DefaultProfileOptions() ProfileOptions {
	return ProfileOptions{SampleRows: 5, TopValues: 8, Outliers: true, OutlierThreshold: 3.5}
}

// ProfileReport is a markdown-friendly profile of a scored dataset.
type ProfileReport struct {
	Name     string          `json:"name,omitempty" yaml:"name,omitempty"`
	Rows     int             `json:"rows" yaml:"rows"`
	Summary  dataset.Summary `json:"summary" yaml:"summary"`
	Cols     []ColumnSummary `json:"columns" yaml:"columns"`
	Samples  [][]string      `json:"samples,omitempty" yaml:"samples,omitempty"`
	Warnings []string        `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Key     string `json:"key" yaml:"key"`
	Label   string `json:"label" yaml:"label"`
	Kind    Kind   `json:"kind" yaml:"kind"`
	NonNull int    `json:"non_null" yaml:"non_null"`
	Missing int    `json:"missing" yaml:"missing"`
	Unique  int    `json:"unique" yaml:"unique"`
	// Numeric stats
	Min  float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max  float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Mean float64 `json:"mean,omitempty" yaml:"mean,omitempty"`
	Std  float64 `json:"std,omitempty" yaml:"std,omitempty"`
	// Outliers (robust Z via MAD)
	OutliersCount    int     `json:"outliers,omitempty" yaml:"outliers,omitempty"`
	OutliersMaxAbsZ  float64 `json:"outliers_max_abs_z,omitempty" yaml:"outliers_max_abs_z,omitempty"`
	OutlierThreshold float64 `json:"outlier_threshold,omitempty" yaml:"outlier_threshold,omitempty"`
	// ChurnCorrelation is Pearson r against churn probability; nil when
	// undefined (fewer than two values or zero variance).
	ChurnCorrelation *float64 `json:"churn_correlation,omitempty" yaml:"churn_correlation,omitempty"`
	// Categorical top values
	TopValues []CategoryBucket `json:"top_values,omitempty" yaml:"top_values,omitempty"`
}

// pairAcc accumulates sums for an exact Pearson correlation.
type pairAcc struct {
	n     float64
	sumX  float64
	sumY  float64
	sumXX float64
	sumYY float64
	sumXY float64
}

func (pa *pairAcc) add(x, y float64) {
	pa.n++
	pa.sumX += x
	pa.sumY += y
	pa.sumXX += x * x
	pa.sumYY += y * y
	pa.sumXY += x * y
}

func (pa *pairAcc) r() (float64, bool) {
	if pa.n < 2 {
		return 0, false
	}
	denom := math.Sqrt((pa.n*pa.sumXX - pa.sumX*pa.sumX) * (pa.n*pa.sumYY - pa.sumY*pa.sumY))
	if denom == 0 || math.IsNaN(denom) {
		return 0, false
	}
	r := (pa.n*pa.sumXY - pa.sumX*pa.sumY) / denom
	r = max(-1, min(1, r))
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// Profile summarizes every column of ds.
func Profile(ds *dataset.Dataset, opt ProfileOptions) *ProfileReport {
	rep := &ProfileReport{Name: opt.Name}
	if ds == nil {
		return rep
	}
	rep.Rows = ds.Len()
	rep.Summary = ds.Summary
	sampleRows := opt.SampleRows
	if sampleRows <= 0 {
		sampleRows = 5
	}
	topK := opt.TopValues
	if topK <= 0 {
		topK = 8
	}

	for _, c := range ds.Columns {
		s := ColumnSummary{Key: c.Key, Label: c.Label, Kind: ClassifyColumn(ds, c.Key)}
		var (
			n        int
			mean, m2 float64
			lo, hi   = math.Inf(1), math.Inf(-1)
			vals     []float64
			corr     pairAcc
			distinct = map[string]struct{}{}
		)
		for _, r := range ds.Rows {
			v, ok := r.Value(c.Key)
			if !ok {
				s.Missing++
				continue
			}
			s.NonNull++
			distinct[dataset.String(v)] = struct{}{}
			if s.Kind != KindNumeric {
				continue
			}
			x, ok := dataset.Float(v)
			if !ok {
				continue
			}
			// Welford update
			n++
			lo = min(lo, x)
			hi = max(hi, x)
			delta := x - mean
			mean += delta / float64(n)
			m2 += delta * (x - mean)
			vals = append(vals, x)
			corr.add(x, r.ChurnProbability)
		}
		s.Unique = len(distinct)

		switch s.Kind {
		case KindNumeric:
			if n > 0 {
				s.Min, s.Max, s.Mean = lo, hi, mean
			}
			if n > 1 {
				s.Std = math.Sqrt(m2 / float64(n-1))
			}
			if r, ok := corr.r(); ok {
				s.ChurnCorrelation = &r
			}
			if opt.Outliers && len(vals) >= 8 {
				s.OutliersCount, s.OutliersMaxAbsZ, s.OutlierThreshold = outliers(vals, opt.OutlierThreshold)
			}
			if n < s.NonNull {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %d non-numeric values ignored", safeName(c.Label), s.NonNull-n))
			}
		case KindCategorical:
			s.TopValues = Frequency(ds, c.Key, topK)
		}
		rep.Cols = append(rep.Cols, s)
	}

	for i, r := range ds.Rows {
		if i >= sampleRows {
			break
		}
		row := make([]string, 0, len(ds.Columns)+2)
		for _, c := range ds.Columns {
			row = append(row, dataset.String(r.Fields[c.Key]))
		}
		row = append(row, fmt.Sprintf("%.2f", r.ChurnProbability), r.Risk.String())
		rep.Samples = append(rep.Samples, row)
	}
	return rep
}

// outliers counts robust z-scores above thr (default 3.5).
func outliers(vals []float64, thr float64) (count int, maxAbsZ, threshold float64) {
	if thr <= 0 {
		thr = 3.5
	}
	median, mad := medianMAD(vals)
	if mad > 0 {
		for _, v := range vals {
			az := math.Abs(0.6745 * (v - median) / mad)
			if az > thr {
				count++
			}
			maxAbsZ = max(maxAbsZ, az)
		}
	}
	return count, maxAbsZ, thr
}

// Markdown renders a compact report suitable for terminals or standalone docs.
func (r *ProfileReport) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", r.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(r.Cols)))
	b.WriteString(fmt.Sprintf("High risk: %d, low risk: %d", r.Summary.HighRiskCount, r.Summary.LowRiskCount))
	if pct, ok := r.Summary.HighRiskPercentage(); ok {
		b.WriteString(fmt.Sprintf(" (%.2f%% high)", pct))
	}
	b.WriteString(fmt.Sprintf("\nAverage churn probability: %.2f%%\n\n", r.Summary.AverageChurnProbability))

	b.WriteString("[SCHEMA]\n")
	for _, c := range r.Cols {
		total := c.NonNull + c.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(c.Missing) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Label), c.Kind, c.NonNull, missPct))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Name), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}

	type pr struct {
		Name string
		R    float64
	}
	var pairs []pr
	for _, c := range r.Cols {
		if c.ChurnCorrelation != nil {
			pairs = append(pairs, pr{Name: safeName(c.Label), R: *c.ChurnCorrelation})
		}
	}
	if len(pairs) > 0 {
		sort.SliceStable(pairs, func(i, j int) bool { return math.Abs(pairs[i].R) > math.Abs(pairs[j].R) })
		b.WriteString("\n[CHURN CORRELATIONS]\n")
		for _, p := range pairs {
			b.WriteString(fmt.Sprintf("- %s ~ churn probability: r=%.3f\n", p.Name, p.R))
		}
	}

	if len(r.Samples) > 0 {
		b.WriteString("\n[HEAD AND SAMPLE ROWS]\n")
		header := make([]string, 0, len(r.Cols)+2)
		for _, c := range r.Cols {
			header = append(header, safeName(c.Label))
		}
		header = append(header, "Churn Probability", "Churn Prediction")
		b.WriteString("| " + strings.Join(header, " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
		for _, row := range r.Samples {
			cells := make([]string, len(header))
			for i := range cells {
				if i < len(row) {
					val := row[i]
					if len(val) > 80 {
						val = val[:77] + "..."
					}
					cells[i] = safeVal(val)
				}
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// medianMAD computes median and MAD (median absolute deviation) of values.
func medianMAD(vals []float64) (median, mad float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	cp := make([]float64, len(vals))
	copy(cp, vals)
	sort.Float64s(cp)
	median = quantile(cp, 0.5)
	dev := make([]float64, len(cp))
	for i, v := range cp {
		dev[i] = math.Abs(v - median)
	}
	sort.Float64s(dev)
	mad = quantile(dev, 0.5)
	return
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}
