package analysis

import "github.com/KaramelBytes/churnlens-cli/internal/dataset"

// PyramidRanges are the churn probability levels, lowest first.
var PyramidRanges = []Range{
	{Label: "0-20%", Min: 0, Max: 20},
	{Label: "20-40%", Min: 20, Max: 40},
	{Label: "40-60%", Min: 40, Max: 60},
	{Label: "60-80%", Min: 60, Max: 80},
	{Label: "80-100%", Min: 80, Max: 100},
}

// AgeBands are the inclusive age groups used by ChurnByAgeGroup.
var AgeBands = []Range{
	{Label: "18-30", Min: 18, Max: 30},
	{Label: "31-40", Min: 31, Max: 40},
	{Label: "41-50", Min: 41, Max: 50},
	{Label: "51-60", Min: 51, Max: 60},
	{Label: "60+", Min: 61, Max: 150},
}

// AgeGroup is the risk split of one age band.
type AgeGroup struct {
	Group    string `json:"group" yaml:"group"`
	HighRisk int    `json:"high_risk" yaml:"high_risk"`
	LowRisk  int    `json:"low_risk" yaml:"low_risk"`
	Total    int    `json:"total" yaml:"total"`
}

// ChurnRiskDistribution returns the high/low split, or an empty slice for
// an empty dataset.
func ChurnRiskDistribution(ds *dataset.Dataset) []RiskShare {
	if ds.Empty() {
		return []RiskShare{}
	}
	return RiskDistribution(ds)
}

// ChurnProbabilityPyramid counts rows per PyramidRanges level, highest
// level first.
func ChurnProbabilityPyramid(ds *dataset.Dataset) []RangeCount {
	if ds.Empty() {
		return []RangeCount{}
	}
	probs := make([]float64, len(ds.Rows))
	for i, r := range ds.Rows {
		probs[i] = r.ChurnProbability
	}
	levels := FixedRanges(probs, PyramidRanges)
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}
	return levels
}

// columnValues collects the finite numeric values of key.
func columnValues(ds *dataset.Dataset, key string) []float64 {
	out := make([]float64, 0, ds.Len())
	if ds == nil {
		return out
	}
	for _, r := range ds.Rows {
		if f, ok := dataset.Float(r.Fields[key]); ok {
			out = append(out, f)
		}
	}
	return out
}

// Histogram bucketizes the numeric values of key.
func Histogram(ds *dataset.Dataset, key string, bins int) []Bin {
	return Bucketize(columnValues(ds, key), bins)
}

// CategoryFrequency is Frequency over column key.
func CategoryFrequency(ds *dataset.Dataset, key string, topK int) []CategoryBucket {
	return Frequency(ds, key, topK)
}

// ChurnByCategory is CrossTab over column key.
func ChurnByCategory(ds *dataset.Dataset, key string, topK int) []CategoryBucket {
	return CrossTab(ds, key, topK)
}

// ChurnByAgeGroup splits rows by AgeBands using the numeric column that
// resolves as age. Bands with no rows are dropped; values between bands
// (e.g. 30.5) or outside all bands are ignored.
func ChurnByAgeGroup(ds *dataset.Dataset) []AgeGroup {
	if ds.Empty() {
		return []AgeGroup{}
	}
	col, ok := ResolveColumn(NumericColumns(ds), RoleAge...)
	if !ok {
		return []AgeGroup{}
	}
	groups := make([]AgeGroup, len(AgeBands))
	for i, b := range AgeBands {
		groups[i].Group = b.Label
	}
	for _, r := range ds.Rows {
		age, ok := dataset.Float(r.Fields[col.Key])
		if !ok {
			continue
		}
		for i, b := range AgeBands {
			if age >= b.Min && age <= b.Max {
				if r.Risk == dataset.HighRisk {
					groups[i].HighRisk++
				} else {
					groups[i].LowRisk++
				}
				groups[i].Total++
				break
			}
		}
	}
	out := groups[:0]
	for _, g := range groups {
		if g.Total > 0 {
			out = append(out, g)
		}
	}
	return out
}

// AverageChurnByRange averages churn probability over equal-width ranges of
// column key.
func AverageChurnByRange(ds *dataset.Dataset, key string, bins int) []RangeAverage {
	if ds.Empty() {
		return []RangeAverage{}
	}
	pairs := make([]Pair, 0, len(ds.Rows))
	for _, r := range ds.Rows {
		if v, ok := dataset.Float(r.Fields[key]); ok {
			pairs = append(pairs, Pair{Value: v, Metric: r.ChurnProbability})
		}
	}
	return AverageByRange(pairs, bins)
}

// Scatter projects two numeric columns and splits the points by risk.
func Scatter(ds *dataset.Dataset, xKey, yKey string) ScatterSeries {
	return SplitByRisk(Project(ds, xKey, yKey))
}

// ProfileField is one labelled value of a single customer.
type ProfileField struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Value any    `json:"value" yaml:"value"`
}

// CustomerView is the detail view of one row.
type CustomerView struct {
	Index            int               `json:"index" yaml:"index"`
	Title            string            `json:"title" yaml:"title"`
	ChurnProbability float64           `json:"churn_probability" yaml:"churn_probability"`
	Risk             dataset.RiskLabel `json:"risk" yaml:"risk"`
	// VsAverage is ChurnProbability minus the dataset average, 2 decimals.
	VsAverage   float64        `json:"vs_average" yaml:"vs_average"`
	Numeric     []ProfileField `json:"numeric" yaml:"numeric"`
	Categorical []ProfileField `json:"categorical" yaml:"categorical"`
}

// CustomerProfile builds the detail view of row index (0-based). Each
// defined value is listed as numeric when it coerces to a number, else as
// categorical. ok is false when index is out of range.
func CustomerProfile(ds *dataset.Dataset, index int) (CustomerView, bool) {
	if index < 0 || index >= ds.Len() {
		return CustomerView{}, false
	}
	r := ds.Rows[index]
	v := CustomerView{
		Index:            index,
		Title:            "Customer Profile",
		ChurnProbability: r.ChurnProbability,
		Risk:             r.Risk,
		VsAverage:        dataset.Round(r.ChurnProbability-ds.Summary.AverageChurnProbability, 2),
		Numeric:          []ProfileField{},
		Categorical:      []ProfileField{},
	}
	if len(ds.Columns) > 0 {
		if raw, ok := r.Value(ds.Columns[0].Key); ok {
			v.Title = dataset.String(raw)
		}
	}
	for _, c := range ds.Columns {
		raw, ok := r.Value(c.Key)
		if !ok {
			continue
		}
		if f, isNum := dataset.Float(raw); isNum {
			v.Numeric = append(v.Numeric, ProfileField{Key: c.Key, Label: c.Label, Value: f})
			continue
		}
		v.Categorical = append(v.Categorical, ProfileField{Key: c.Key, Label: c.Label, Value: dataset.String(raw)})
	}
	return v, true
}
