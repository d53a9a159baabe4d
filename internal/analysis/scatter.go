package analysis

import "github.com/KaramelBytes/churnlens-cli/internal/dataset"

// Point is one customer projected onto two numeric columns.
type Point struct {
	X    float64           `json:"x" yaml:"x"`
	Y    float64           `json:"y" yaml:"y"`
	Risk dataset.RiskLabel `json:"risk" yaml:"risk"`
}

// ScatterSeries holds points split by risk label for dual-series plots.
type ScatterSeries struct {
	High []Point `json:"high_risk" yaml:"high_risk"`
	Low  []Point `json:"low_risk" yaml:"low_risk"`
}

// Len returns the total number of points.
func (s ScatterSeries) Len() int { return len(s.High) + len(s.Low) }

// Project maps rows to (x, y) points in row order. Rows where either value
// is not a finite number are skipped.
func Project(ds *dataset.Dataset, xKey, yKey string) []Point {
	if ds.Empty() {
		return []Point{}
	}
	out := make([]Point, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		x, ok := dataset.Float(r.Fields[xKey])
		if !ok {
			continue
		}
		y, ok := dataset.Float(r.Fields[yKey])
		if !ok {
			continue
		}
		out = append(out, Point{X: x, Y: y, Risk: r.Risk})
	}
	return out
}

// SplitByRisk partitions points by label, preserving order within each side.
func SplitByRisk(points []Point) ScatterSeries {
	s := ScatterSeries{High: []Point{}, Low: []Point{}}
	for _, p := range points {
		if p.Risk == dataset.HighRisk {
			s.High = append(s.High, p)
		} else {
			s.Low = append(s.Low, p)
		}
	}
	return s
}
