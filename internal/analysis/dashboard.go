package analysis

import "github.com/KaramelBytes/churnlens-cli/internal/dataset"

// DashboardOptions sizes the composed views. Zero values use the package
// defaults.
type DashboardOptions struct {
	HistogramBins int
	RangeBins     int
	TopK          int
	CrossTabTopK  int
}

// ColumnBins is a histogram of one resolved column.
type ColumnBins struct {
	Column dataset.Column `json:"column" yaml:"column"`
	Bins   []Bin          `json:"bins" yaml:"bins"`
}

// ColumnCategories is a categorical view of one resolved column.
type ColumnCategories struct {
	Column  dataset.Column   `json:"column" yaml:"column"`
	Buckets []CategoryBucket `json:"buckets" yaml:"buckets"`
}

// ColumnTrend is an average churn trend over one resolved column.
type ColumnTrend struct {
	Column dataset.Column `json:"column" yaml:"column"`
	Ranges []RangeAverage `json:"ranges" yaml:"ranges"`
}

// ColumnScatter is a scatter of two resolved columns.
type ColumnScatter struct {
	X      dataset.Column `json:"x" yaml:"x"`
	Y      dataset.Column `json:"y" yaml:"y"`
	Series ScatterSeries  `json:"series" yaml:"series"`
}

// Insights are the headline facts of the trend views.
type Insights struct {
	HighestRiskAgeGroup string `json:"highest_risk_age_group,omitempty" yaml:"highest_risk_age_group,omitempty"`
	HighestRiskCity     string `json:"highest_risk_city,omitempty" yaml:"highest_risk_city,omitempty"`
	TotalCustomers      int    `json:"total_customers" yaml:"total_customers"`
}

// DashboardView bundles every view of the dashboard. Views whose column
// could not be resolved, or that came out empty, are nil.
type DashboardView struct {
	Summary          dataset.Summary `json:"summary" yaml:"summary"`
	RiskDistribution []RiskShare     `json:"risk_distribution" yaml:"risk_distribution"`
	Pyramid          []RangeCount    `json:"pyramid" yaml:"pyramid"`

	AgeHistogram          *ColumnBins       `json:"age_histogram,omitempty" yaml:"age_histogram,omitempty"`
	AnnualAmountHistogram *ColumnBins       `json:"annual_amount_histogram,omitempty" yaml:"annual_amount_histogram,omitempty"`
	OrgDateHistogram      *ColumnBins       `json:"org_date_histogram,omitempty" yaml:"org_date_histogram,omitempty"`
	CityFrequency         *ColumnCategories `json:"city_frequency,omitempty" yaml:"city_frequency,omitempty"`
	AgeIncomeScatter      *ColumnScatter    `json:"age_income_scatter,omitempty" yaml:"age_income_scatter,omitempty"`

	AgeGroups   []AgeGroup        `json:"age_groups,omitempty" yaml:"age_groups,omitempty"`
	CityChurn   *ColumnCategories `json:"city_churn,omitempty" yaml:"city_churn,omitempty"`
	IncomeTrend *ColumnTrend      `json:"income_trend,omitempty" yaml:"income_trend,omitempty"`
	AgeTrend    *ColumnTrend      `json:"age_trend,omitempty" yaml:"age_trend,omitempty"`

	Insights Insights `json:"insights" yaml:"insights"`
}

// Dashboard resolves the well-known column roles and composes the
// demographics and trend views over ds.
func Dashboard(ds *dataset.Dataset, opts DashboardOptions) DashboardView {
	v := DashboardView{
		RiskDistribution: ChurnRiskDistribution(ds),
		Pyramid:          ChurnProbabilityPyramid(ds),
	}
	if ds.Empty() {
		return v
	}
	v.Summary = ds.Summary
	v.Insights.TotalCustomers = ds.Len()

	numeric := NumericColumns(ds)
	categorical := CategoricalColumns(ds)
	age, hasAge := ResolveColumn(numeric, RoleAge...)
	amount, hasAmount := ResolveColumn(numeric, RoleAnnualAmount...)
	income, hasIncome := ResolveColumn(numeric, RoleIncome...)
	orgDate, hasOrgDate := ResolveColumn(numeric, RoleOrgDate...)
	city, hasCity := ResolveColumn(categorical, RoleCity...)

	histogram := func(c dataset.Column, ok bool) *ColumnBins {
		if !ok {
			return nil
		}
		bins := Histogram(ds, c.Key, opts.HistogramBins)
		if len(bins) == 0 {
			return nil
		}
		return &ColumnBins{Column: c, Bins: bins}
	}
	trend := func(c dataset.Column, ok bool) *ColumnTrend {
		if !ok {
			return nil
		}
		ranges := AverageChurnByRange(ds, c.Key, opts.RangeBins)
		if len(ranges) == 0 {
			return nil
		}
		return &ColumnTrend{Column: c, Ranges: ranges}
	}

	v.AgeHistogram = histogram(age, hasAge)
	v.AnnualAmountHistogram = histogram(amount, hasAmount)
	v.OrgDateHistogram = histogram(orgDate, hasOrgDate)
	v.IncomeTrend = trend(income, hasIncome)
	v.AgeTrend = trend(age, hasAge)

	if hasCity {
		if b := CategoryFrequency(ds, city.Key, opts.TopK); len(b) > 0 {
			v.CityFrequency = &ColumnCategories{Column: city, Buckets: b}
		}
		if b := ChurnByCategory(ds, city.Key, opts.CrossTabTopK); len(b) > 0 {
			v.CityChurn = &ColumnCategories{Column: city, Buckets: b}
			v.Insights.HighestRiskCity = b[0].Name
		}
	}
	if hasAge && hasIncome {
		if s := Scatter(ds, age.Key, income.Key); s.Len() > 0 {
			v.AgeIncomeScatter = &ColumnScatter{X: age, Y: income, Series: s}
		}
	}
	if groups := ChurnByAgeGroup(ds); len(groups) > 0 {
		v.AgeGroups = groups
		top := groups[0]
		for _, g := range groups[1:] {
			if g.HighRisk > top.HighRisk {
				top = g
			}
		}
		v.Insights.HighestRiskAgeGroup = top.Group
	}
	return v
}
