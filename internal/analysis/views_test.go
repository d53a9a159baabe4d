package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

func customers(t *testing.T) *dataset.Dataset {
	t.Helper()
	cols := []dataset.Column{
		{Key: "name", Label: "Name"},
		{Key: "age", Label: "Age"},
		{Key: "city", Label: "City"},
		{Key: "income", Label: "Income"},
		{Key: "CURR_ANN_AMT", Label: "Current Annual Amount"},
	}
	row := func(name string, age any, city string, income any, amt float64, prob float64, risk dataset.RiskLabel) dataset.Row {
		return dataset.Row{
			Fields:           map[string]any{"name": name, "age": age, "city": city, "income": income, "CURR_ANN_AMT": amt},
			ChurnProbability: prob,
			Risk:             risk,
		}
	}
	return dataset.New(cols, []dataset.Row{
		row("Ann", 25.0, "Paris", 30000.0, 100, 80, dataset.HighRisk),
		row("Bob", 35.0, "Lyon", 45000.0, 200, 10, dataset.LowRisk),
		row("Cid", 45.0, "Paris", 60000.0, 300, 55, dataset.HighRisk),
		row("Dee", nil, "Nice", "", 400, 20, dataset.LowRisk),
		row("Eve", "62", "Paris", 90000.0, 500, 100, dataset.HighRisk),
		row("Fay", 30.5, "Lyon", 52000.0, 600, 0, dataset.LowRisk),
	})
}

func keys(cols []dataset.Column) string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Key
	}
	return strings.Join(out, ",")
}

func TestClassifyColumns(t *testing.T) {
	ds := customers(t)
	if got := keys(NumericColumns(ds)); got != "age,income,CURR_ANN_AMT" {
		t.Fatalf("numeric = %s", got)
	}
	if got := keys(CategoricalColumns(ds)); got != "name,city" {
		t.Fatalf("categorical = %s", got)
	}
	if k := ClassifyColumn(ds, "missing"); k != KindCategorical {
		t.Fatalf("unknown column kind = %s", k)
	}
	if k := ClassifyColumn(nil, "age"); k != KindCategorical {
		t.Fatalf("nil dataset kind = %s", k)
	}
}

func TestDescribeColumns(t *testing.T) {
	info := DescribeColumns(customers(t))
	if len(info) != 5 {
		t.Fatalf("len = %d", len(info))
	}
	if info[1].Key != "age" || info[1].Kind != KindNumeric {
		t.Fatalf("age = %+v", info[1])
	}
	if info[2].Kind != KindCategorical {
		t.Fatalf("city = %+v", info[2])
	}
	if got := DescribeColumns(nil); got == nil || len(got) != 0 {
		t.Fatalf("nil dataset = %#v", got)
	}
}

func TestClassifySkipsLeadingBlanks(t *testing.T) {
	ds := dataset.New([]dataset.Column{{Key: "n", Label: "N"}}, []dataset.Row{
		{Fields: map[string]any{"n": ""}},
		{Fields: map[string]any{"n": nil}},
		{Fields: map[string]any{"n": "7"}},
	})
	if k := ClassifyColumn(ds, "n"); k != KindNumeric {
		t.Fatalf("kind = %s, want numeric from first defined sample", k)
	}
}

func TestResolveColumn(t *testing.T) {
	cols := []dataset.Column{{Key: "CURR_ANN_AMT", Label: "Current Annual Amount"}}
	if _, ok := ResolveColumn(cols, RoleAge...); ok {
		t.Fatalf("age should not resolve")
	}
	c, ok := ResolveColumn(cols, "curr_ann_amt")
	if !ok || c.Key != "CURR_ANN_AMT" {
		t.Fatalf("resolve = %#v %v", c, ok)
	}
	c, ok = ResolveColumn(cols, RoleAnnualAmount...)
	if !ok || c.Key != "CURR_ANN_AMT" {
		t.Fatalf("role table resolve = %#v %v", c, ok)
	}
	// Substring matching is loose; the first column containing the candidate wins.
	loose := []dataset.Column{{Key: "usage", Label: "Usage"}, {Key: "age", Label: "Age"}}
	if c, _ := ResolveColumn(loose, "age"); c.Key != "usage" {
		t.Fatalf("loose match = %q, want usage", c.Key)
	}
	// Label matches too.
	if c, ok := ResolveColumn([]dataset.Column{{Key: "c1", Label: "Home City"}}, RoleCity...); !ok || c.Key != "c1" {
		t.Fatalf("label match = %#v", c)
	}
}

func TestChurnRiskDistribution(t *testing.T) {
	shares := ChurnRiskDistribution(customers(t))
	if len(shares) != 2 || shares[0].Label != dataset.HighRisk || shares[1].Label != dataset.LowRisk {
		t.Fatalf("shares = %#v", shares)
	}
	sum := 0.0
	for _, s := range shares {
		if s.Percentage == nil {
			t.Fatalf("nil percentage for %v", s.Label)
		}
		sum += *s.Percentage
	}
	if sum < 99.99 || sum > 100.01 {
		t.Fatalf("percentages sum to %v", sum)
	}
	if got := ChurnRiskDistribution(nil); len(got) != 0 {
		t.Fatalf("nil dataset = %#v", got)
	}
	for _, s := range RiskDistribution(dataset.New(nil, nil)) {
		if s.Percentage != nil || s.Count != 0 {
			t.Fatalf("empty distribution = %#v", s)
		}
	}
}

func TestChurnProbabilityPyramid(t *testing.T) {
	levels := ChurnProbabilityPyramid(customers(t))
	want := []struct {
		label string
		count int
		pct   float64
	}{
		{"80-100%", 2, 33.3},
		{"60-80%", 0, 0},
		{"40-60%", 1, 16.7},
		{"20-40%", 1, 16.7},
		{"0-20%", 2, 33.3},
	}
	if len(levels) != len(want) {
		t.Fatalf("levels = %#v", levels)
	}
	for i, w := range want {
		if levels[i].Range != w.label || levels[i].Count != w.count || levels[i].Percentage != w.pct {
			t.Fatalf("level %d = %#v, want %+v", i, levels[i], w)
		}
	}
}

func TestCategoryViews(t *testing.T) {
	ds := customers(t)
	freq := CategoryFrequency(ds, "city", 0)
	if len(freq) != 3 || freq[0].Name != "Paris" || freq[0].Count != 3 || freq[1].Name != "Lyon" || freq[2].Name != "Nice" {
		t.Fatalf("frequency = %#v", freq)
	}
	cross := ChurnByCategory(ds, "city", 2)
	if len(cross) != 2 {
		t.Fatalf("cross-tab truncation = %#v", cross)
	}
	for _, b := range cross {
		if b.HighRisk+b.LowRisk != b.Count {
			t.Fatalf("split does not add up: %#v", b)
		}
	}
	if cross[0].HighRisk != 3 || cross[1].LowRisk != 2 {
		t.Fatalf("cross-tab = %#v", cross)
	}
	if got := CategoryFrequency(ds, "nope", 5); len(got) != 0 {
		t.Fatalf("unknown column = %#v", got)
	}
}

func TestFrequencyTiesKeepFirstSeen(t *testing.T) {
	ds := dataset.New([]dataset.Column{{Key: "c", Label: "C"}}, []dataset.Row{
		{Fields: map[string]any{"c": "b"}},
		{Fields: map[string]any{"c": "a"}},
		{Fields: map[string]any{"c": " "}},
		{Fields: map[string]any{"c": "a"}},
		{Fields: map[string]any{"c": "b"}},
		{Fields: map[string]any{"c": 3.0}},
	})
	got := Frequency(ds, "c", 10)
	if len(got) != 3 || got[0].Name != "b" || got[1].Name != "a" || got[2].Name != "3" {
		t.Fatalf("frequency = %#v", got)
	}
}

func TestCrossTabCoversEveryDefinedValue(t *testing.T) {
	row := func(v any, risk dataset.RiskLabel) dataset.Row {
		return dataset.Row{Fields: map[string]any{"plan": v}, Risk: risk}
	}
	ds := dataset.New([]dataset.Column{{Key: "plan", Label: "Plan"}}, []dataset.Row{
		row("basic", dataset.LowRisk),
		row("gold", dataset.HighRisk),
		row(nil, dataset.HighRisk),
		row("gold", dataset.LowRisk),
		row("", dataset.LowRisk),
		row("basic", dataset.LowRisk),
		row("trial", dataset.HighRisk),
		row("gold", dataset.HighRisk),
	})
	defined := 0
	for _, r := range ds.Rows {
		if _, ok := r.Value("plan"); ok {
			defined++
		}
	}

	got := CrossTab(ds, "plan", 10)
	if len(got) != 3 {
		t.Fatalf("cross-tab = %#v", got)
	}
	total := 0
	for _, b := range got {
		if b.HighRisk+b.LowRisk != b.Count {
			t.Fatalf("split does not add up: %#v", b)
		}
		total += b.Count
	}
	if total != defined || total != 6 {
		t.Fatalf("bucket total = %d, defined values = %d", total, defined)
	}
	if got[0].Name != "gold" || got[0].HighRisk != 2 || got[0].LowRisk != 1 {
		t.Fatalf("first bucket = %#v", got[0])
	}
}

func TestCrossTabTiesKeepFirstSeen(t *testing.T) {
	row := func(v string, risk dataset.RiskLabel) dataset.Row {
		return dataset.Row{Fields: map[string]any{"c": v}, Risk: risk}
	}
	ds := dataset.New([]dataset.Column{{Key: "c", Label: "C"}}, []dataset.Row{
		row("y", dataset.LowRisk),
		row("x", dataset.HighRisk),
		row("z", dataset.HighRisk),
		row("x", dataset.LowRisk),
		row("y", dataset.LowRisk),
	})
	got := CrossTab(ds, "c", 10)
	if len(got) != 3 || got[0].Name != "y" || got[1].Name != "x" || got[2].Name != "z" {
		t.Fatalf("cross-tab order = %#v", got)
	}
	if top := CrossTab(ds, "c", 1); len(top) != 1 || top[0].Name != "y" {
		t.Fatalf("truncated tie = %#v", top)
	}
}

func TestChurnByAgeGroup(t *testing.T) {
	groups := ChurnByAgeGroup(customers(t))
	want := []AgeGroup{
		{Group: "18-30", HighRisk: 1, Total: 1},
		{Group: "31-40", LowRisk: 1, Total: 1},
		{Group: "41-50", HighRisk: 1, Total: 1},
		{Group: "60+", HighRisk: 1, Total: 1},
	}
	if len(groups) != len(want) {
		t.Fatalf("groups = %#v", groups)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("group %d = %#v, want %#v", i, groups[i], want[i])
		}
	}
	noAge := dataset.New([]dataset.Column{{Key: "city", Label: "City"}}, []dataset.Row{{Fields: map[string]any{"city": "Paris"}}})
	if got := ChurnByAgeGroup(noAge); len(got) != 0 {
		t.Fatalf("unresolved age = %#v", got)
	}
}

func TestAverageChurnByRangeAndHistogram(t *testing.T) {
	ds := customers(t)
	trend := AverageChurnByRange(ds, "age", 0)
	n := 0
	for _, r := range trend {
		n += r.Count
	}
	if n != 5 {
		t.Fatalf("trend covers %d rows, want 5 with a numeric age", n)
	}
	hist := Histogram(ds, "income", 4)
	total := 0
	for _, b := range hist {
		total += b.Count
	}
	if len(hist) != 4 || total != 5 {
		t.Fatalf("histogram = %#v", hist)
	}
	if got := Histogram(ds, "city", 4); len(got) != 0 {
		t.Fatalf("categorical histogram = %#v", got)
	}
}

func TestScatterDropsNonNumericRows(t *testing.T) {
	ds := customers(t)
	points := Project(ds, "age", "income")
	if len(points) != 5 {
		t.Fatalf("points = %d, want 5", len(points))
	}
	if points[0].X != 25 || points[0].Y != 30000 {
		t.Fatalf("first point = %#v", points[0])
	}
	s := Scatter(ds, "age", "income")
	if len(s.High) != 3 || len(s.Low) != 2 {
		t.Fatalf("split = %d high, %d low", len(s.High), len(s.Low))
	}
	if got := Scatter(nil, "age", "income"); got.Len() != 0 {
		t.Fatalf("nil dataset scatter = %#v", got)
	}
}

func TestProjectSkipsUnparsableAndNaN(t *testing.T) {
	ds := dataset.New([]dataset.Column{{Key: "a"}, {Key: "b"}}, []dataset.Row{
		{Fields: map[string]any{"a": 1.0, "b": 2.0}},
		{Fields: map[string]any{"a": "x", "b": 3.0}},
		{Fields: map[string]any{"a": 4.0, "b": math.NaN()}},
	})
	points := Project(ds, "a", "b")
	if len(points) != 1 || points[0].X != 1 || points[0].Y != 2 {
		t.Fatalf("points = %#v", points)
	}
}

func TestCustomerProfile(t *testing.T) {
	ds := customers(t)
	v, ok := CustomerProfile(ds, 0)
	if !ok {
		t.Fatalf("profile 0 not found")
	}
	if v.Title != "Ann" || v.Risk != dataset.HighRisk {
		t.Fatalf("profile = %#v", v)
	}
	if v.VsAverage != 35.83 {
		t.Fatalf("vs average = %v, want 35.83", v.VsAverage)
	}
	if len(v.Numeric) != 3 || len(v.Categorical) != 2 {
		t.Fatalf("numeric=%d categorical=%d", len(v.Numeric), len(v.Categorical))
	}
	if _, ok := CustomerProfile(ds, 6); ok {
		t.Fatalf("out of range index should not resolve")
	}
	if _, ok := CustomerProfile(nil, 0); ok {
		t.Fatalf("nil dataset should not resolve")
	}
}

func TestDashboard(t *testing.T) {
	v := Dashboard(customers(t), DashboardOptions{})
	if v.AgeHistogram == nil || v.AgeHistogram.Column.Key != "age" {
		t.Fatalf("age histogram = %#v", v.AgeHistogram)
	}
	if v.AnnualAmountHistogram == nil || v.AnnualAmountHistogram.Column.Key != "CURR_ANN_AMT" {
		t.Fatalf("annual amount histogram = %#v", v.AnnualAmountHistogram)
	}
	if v.OrgDateHistogram != nil {
		t.Fatalf("org date should be omitted")
	}
	if v.CityFrequency == nil || v.CityChurn == nil || v.AgeIncomeScatter == nil || v.IncomeTrend == nil || v.AgeTrend == nil {
		t.Fatalf("dashboard views missing: %#v", v)
	}
	if v.Insights.HighestRiskCity != "Paris" || v.Insights.HighestRiskAgeGroup != "18-30" || v.Insights.TotalCustomers != 6 {
		t.Fatalf("insights = %#v", v.Insights)
	}

	empty := Dashboard(nil, DashboardOptions{})
	if len(empty.RiskDistribution) != 0 || len(empty.Pyramid) != 0 || empty.AgeHistogram != nil {
		t.Fatalf("empty dashboard = %#v", empty)
	}
}
