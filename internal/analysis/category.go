package analysis

import (
	"sort"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

// Default truncation for categorical views.
const (
	DefaultTopK         = 10
	DefaultCrossTabTopK = 8

	// MaxTopK is the largest truncation accepted from callers.
	MaxTopK = 1000
)

// CategoryBucket is the population of one categorical value, split by risk.
type CategoryBucket struct {
	Name     string `json:"name" yaml:"name"`
	Count    int    `json:"count" yaml:"count"`
	HighRisk int    `json:"high_risk" yaml:"high_risk"`
	LowRisk  int    `json:"low_risk" yaml:"low_risk"`
}

// RiskShare is one slice of the high/low risk split. Percentage is nil when
// the dataset is empty.
type RiskShare struct {
	Label      dataset.RiskLabel `json:"label" yaml:"label"`
	Count      int               `json:"count" yaml:"count"`
	Percentage *float64          `json:"percentage" yaml:"percentage"`
}

// tally groups defined values of key by display string in first-seen order.
func tally(ds *dataset.Dataset, key string) []CategoryBucket {
	if ds.Empty() {
		return nil
	}
	index := map[string]int{}
	var out []CategoryBucket
	for _, r := range ds.Rows {
		v, ok := r.Value(key)
		if !ok {
			continue
		}
		name := dataset.String(v)
		i, seen := index[name]
		if !seen {
			i = len(out)
			index[name] = i
			out = append(out, CategoryBucket{Name: name})
		}
		out[i].Count++
		if r.Risk == dataset.HighRisk {
			out[i].HighRisk++
		} else {
			out[i].LowRisk++
		}
	}
	return out
}

func topBuckets(buckets []CategoryBucket, topK int, weight func(CategoryBucket) int) []CategoryBucket {
	sort.SliceStable(buckets, func(i, j int) bool { return weight(buckets[i]) > weight(buckets[j]) })
	if len(buckets) > topK {
		buckets = buckets[:topK]
	}
	if buckets == nil {
		return []CategoryBucket{}
	}
	return buckets
}

// Frequency counts the defined values of key, most frequent first. Ties
// keep first-seen order. topK <= 0 means DefaultTopK.
func Frequency(ds *dataset.Dataset, key string, topK int) []CategoryBucket {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return topBuckets(tally(ds, key), topK, func(b CategoryBucket) int { return b.Count })
}

// CrossTab counts the defined values of key with their high/low risk split,
// ordered by total descending. topK <= 0 means DefaultCrossTabTopK.
func CrossTab(ds *dataset.Dataset, key string, topK int) []CategoryBucket {
	if topK <= 0 {
		topK = DefaultCrossTabTopK
	}
	return topBuckets(tally(ds, key), topK, func(b CategoryBucket) int { return b.HighRisk + b.LowRisk })
}

// RiskDistribution returns the high and low risk shares, in that order.
// Percentages are rounded to 2 decimals.
func RiskDistribution(ds *dataset.Dataset) []RiskShare {
	var s dataset.Summary
	if ds != nil {
		s = ds.Summary
	}
	out := []RiskShare{
		{Label: dataset.HighRisk, Count: s.HighRiskCount},
		{Label: dataset.LowRisk, Count: s.LowRiskCount},
	}
	total := s.HighRiskCount + s.LowRiskCount
	if total == 0 {
		return out
	}
	for i := range out {
		pct := dataset.Round(float64(out[i].Count)*100/float64(total), 2)
		out[i].Percentage = &pct
	}
	return out
}
