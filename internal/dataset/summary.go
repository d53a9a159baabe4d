package dataset

import (
	"fmt"
	"math"
)

// Summary holds the headline counts shown above the customer table.
type Summary struct {
	TotalCustomers          int     `json:"total_customers" yaml:"total_customers"`
	HighRiskCount           int     `json:"high_risk_customers" yaml:"high_risk_customers"`
	LowRiskCount            int     `json:"low_risk_customers" yaml:"low_risk_customers"`
	AverageChurnProbability float64 `json:"average_churn_probability" yaml:"average_churn_probability"`
}

// HighRiskPercentage is the high-risk share rounded to 2 decimals; ok is
// false for an empty dataset.
func (s Summary) HighRiskPercentage() (float64, bool) {
	if s.TotalCustomers == 0 {
		return 0, false
	}
	return Round(float64(s.HighRiskCount)*100/float64(s.TotalCustomers), 2), true
}

// Summarize derives the summary from rows.
func Summarize(rows []Row) Summary {
	s := Summary{TotalCustomers: len(rows)}
	var sum float64
	for _, r := range rows {
		if r.Risk == HighRisk {
			s.HighRiskCount++
		} else {
			s.LowRiskCount++
		}
		sum += r.ChurnProbability
	}
	if len(rows) > 0 {
		s.AverageChurnProbability = Round(sum/float64(len(rows)), 2)
	}
	return s
}

// Check compares s against a derived summary and describes each mismatch.
// The average is compared with a 0.01 tolerance to absorb rounding.
func (s Summary) Check(derived Summary) []string {
	var out []string
	if s.TotalCustomers != derived.TotalCustomers {
		out = append(out, fmt.Sprintf("total_customers %d does not match %d rows", s.TotalCustomers, derived.TotalCustomers))
	}
	if s.HighRiskCount != derived.HighRiskCount {
		out = append(out, fmt.Sprintf("high_risk_customers %d does not match derived %d", s.HighRiskCount, derived.HighRiskCount))
	}
	if s.LowRiskCount != derived.LowRiskCount {
		out = append(out, fmt.Sprintf("low_risk_customers %d does not match derived %d", s.LowRiskCount, derived.LowRiskCount))
	}
	if math.Abs(s.AverageChurnProbability-derived.AverageChurnProbability) > 0.01+1e-9 {
		out = append(out, fmt.Sprintf("average_churn_probability %.2f does not match derived %.2f", s.AverageChurnProbability, derived.AverageChurnProbability))
	}
	return out
}

// Round rounds v to the given number of decimals, half away from zero.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
