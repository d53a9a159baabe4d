package analysis

import (
	"math"
	"strconv"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// Default bin counts for histograms and range averages.
const (
	DefaultHistogramBins = 10
	DefaultRangeBins     = 8

	// MaxBins is the largest bin count accepted from callers.
	MaxBins = 100
)

// Bin is one histogram bucket.
type Bin struct {
	Range string `json:"range" yaml:"range"`
	Count int    `json:"count" yaml:"count"`
}

// Pair couples a bucketed value with the metric averaged per bucket.
type Pair struct {
	Value  float64
	Metric float64
}

// RangeAverage is the mean metric of the pairs that fell into one range.
type RangeAverage struct {
	Range   string  `json:"range" yaml:"range"`
	Average float64 `json:"average" yaml:"average"`
	Count   int     `json:"count" yaml:"count"`
}

// Range is an explicit [Min,Max) interval used by FixedRanges.
type Range struct {
	Label string
	Min   float64
	Max   float64
}

// RangeCount is the population of one explicit range.
type RangeCount struct {
	Range      string  `json:"range" yaml:"range"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// binning holds equal-width boundaries over [min,max].
type binning struct {
	min  float64
	size float64
	n    int
}

// newBinning computes boundaries for values. ok is false for an empty
// series; degenerate reports a zero or non-finite bin width.
func newBinning(values []float64, n int) (b binning, degenerate, ok bool) {
	if len(values) == 0 {
		return binning{}, false, false
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	size := (hi - lo) / float64(n)
	b = binning{min: lo, size: size, n: n}
	return b, size == 0 || math.IsNaN(size) || math.IsInf(size, 0), true
}

func (b binning) index(v float64) int {
	i := int(math.Floor((v - b.min) / b.size))
	return max(0, min(i, b.n-1))
}

func (b binning) label(i int) string {
	lo := b.min + float64(i)*b.size
	hi := b.min + float64(i+1)*b.size
	return formatBound(lo) + "-" + formatBound(hi)
}

// formatBound rounds v to an integer for display, half away from zero.
func formatBound(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}

func finiteValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Bucketize counts values into binCount equal-width bins spanning the
// observed range. The last bin is closed so the maximum is counted. When
// all values are equal a single bin holds the whole series. binCount <= 0
// means DefaultHistogramBins.
func Bucketize(values []float64, binCount int) []Bin {
	if binCount <= 0 {
		binCount = DefaultHistogramBins
	}
	values = finiteValues(values)
	b, degenerate, ok := newBinning(values, binCount)
	if !ok {
		return []Bin{}
	}
	if degenerate {
		return []Bin{{Range: formatBound(b.min), Count: len(values)}}
	}
	bins := make([]Bin, binCount)
	for i := range bins {
		bins[i].Range = b.label(i)
	}
	for _, v := range values {
		bins[b.index(v)].Count++
	}
	return bins
}

// AverageByRange bins pairs by Value using the Bucketize boundaries and
// reports the mean Metric per non-empty bin, rounded to 2 decimals. When
// all values are equal the result is one entry holding the overall mean.
// binCount <= 0 means DefaultRangeBins.
func AverageByRange(pairs []Pair, binCount int) []RangeAverage {
	if binCount <= 0 {
		binCount = DefaultRangeBins
	}
	kept := make([]Pair, 0, len(pairs))
	values := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		kept = append(kept, p)
		values = append(values, p.Value)
	}
	b, degenerate, ok := newBinning(values, binCount)
	if !ok {
		return []RangeAverage{}
	}
	if degenerate {
		var sum float64
		for _, p := range kept {
			sum += p.Metric
		}
		return []RangeAverage{{
			Range:   formatBound(b.min),
			Average: dataset.Round(sum/float64(len(kept)), 2),
			Count:   len(kept),
		}}
	}

	sums := make([]float64, binCount)
	counts := make([]int, binCount)
	for _, p := range kept {
		i := b.index(p.Value)
		sums[i] += p.Metric
		counts[i]++
	}
	out := make([]RangeAverage, 0, binCount)
	for i := range sums {
		if counts[i] == 0 {
			continue
		}
		out = append(out, RangeAverage{
			Range:   b.label(i),
			Average: dataset.Round(sums[i]/float64(counts[i]), 2),
			Count:   counts[i],
		})
	}
	return out
}

// FixedRanges counts values into explicit [Min,Max) ranges; the last range
// is closed at Max. Percentages are of len(values), rounded to 1 decimal.
// Values outside every range are counted in the total only.
func FixedRanges(values []float64, ranges []Range) []RangeCount {
	out := make([]RangeCount, len(ranges))
	for i, r := range ranges {
		out[i].Range = r.Label
	}
	for _, v := range values {
		for i, r := range ranges {
			last := i == len(ranges)-1
			if v >= r.Min && (v < r.Max || (last && v == r.Max)) {
				out[i].Count++
				break
			}
		}
	}
	if len(values) > 0 {
		for i := range out {
			out[i].Percentage = dataset.Round(float64(out[i].Count)*100/float64(len(values)), 1)
		}
	}
	return out
}
