package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/churnlens-cli/internal/analysis"
	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
	"github.com/KaramelBytes/churnlens-cli/internal/paging"
)

// Markdown renders v as bracketed sections with pipe tables.
func Markdown(title string, v any) string {
	if m, ok := v.(Markdowner); ok {
		return m.Markdown()
	}
	var b strings.Builder
	if title != "" {
		b.WriteString("[" + strings.ToUpper(title) + "]\n")
	}
	switch t := v.(type) {
	case dataset.Summary:
		writeSummary(&b, t)
	case []dataset.Column:
		rows := make([][]string, len(t))
		for i, c := range t {
			rows[i] = []string{c.Key, c.Label}
		}
		table(&b, []string{"Key", "Label"}, rows)
	case []analysis.ColumnInfo:
		rows := make([][]string, len(t))
		for i, c := range t {
			rows[i] = []string{c.Key, c.Label, string(c.Kind)}
		}
		table(&b, []string{"Key", "Label", "Kind"}, rows)
	case []analysis.RiskShare:
		rows := make([][]string, len(t))
		for i, s := range t {
			rows[i] = []string{s.Label.String(), fmt.Sprint(s.Count), pct(s.Percentage)}
		}
		table(&b, []string{"Risk", "Customers", "Share"}, rows)
	case []analysis.RangeCount:
		rows := make([][]string, len(t))
		for i, r := range t {
			rows[i] = []string{r.Range, fmt.Sprint(r.Count), fmt.Sprintf("%.1f%%", r.Percentage)}
		}
		table(&b, []string{"Churn Probability", "Customers", "Share"}, rows)
	case []analysis.Bin:
		rows := make([][]string, len(t))
		for i, bin := range t {
			rows[i] = []string{bin.Range, fmt.Sprint(bin.Count)}
		}
		table(&b, []string{"Range", "Count"}, rows)
	case []analysis.CategoryBucket:
		writeBuckets(&b, t)
	case []analysis.AgeGroup:
		rows := make([][]string, len(t))
		for i, g := range t {
			rows[i] = []string{g.Group, fmt.Sprint(g.HighRisk), fmt.Sprint(g.LowRisk), fmt.Sprint(g.Total)}
		}
		table(&b, []string{"Age Group", "High Risk", "Low Risk", "Total"}, rows)
	case []analysis.RangeAverage:
		writeTrend(&b, t)
	case analysis.ScatterSeries:
		writeScatter(&b, t)
	case analysis.DashboardView:
		writeDashboard(&b, t)
	case analysis.CustomerView:
		writeCustomer(&b, t)
	case CustomerTable:
		writeCustomerTable(&b, t)
	default:
		b.WriteString(fmt.Sprintf("%v\n", v))
	}
	return b.String()
}

func pct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", *p)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

// table writes a pipe table, or "(no data)" when rows is empty.
func table(b *strings.Builder, header []string, rows [][]string) {
	if len(rows) == 0 {
		b.WriteString("(no data)\n")
		return
	}
	b.WriteString("| " + strings.Join(header, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(header)) + "\n")
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = safeVal(c)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
}

func writeSummary(b *strings.Builder, s dataset.Summary) {
	b.WriteString(fmt.Sprintf("Total customers: %d\n", s.TotalCustomers))
	b.WriteString(fmt.Sprintf("High risk: %d\n", s.HighRiskCount))
	b.WriteString(fmt.Sprintf("Low risk: %d\n", s.LowRiskCount))
	b.WriteString(fmt.Sprintf("Average churn probability: %.2f%%\n", s.AverageChurnProbability))
	if p, ok := s.HighRiskPercentage(); ok {
		b.WriteString(fmt.Sprintf("High risk share: %.2f%%\n", p))
	}
}

func writeBuckets(b *strings.Builder, buckets []analysis.CategoryBucket) {
	rows := make([][]string, len(buckets))
	for i, c := range buckets {
		rows[i] = []string{c.Name, fmt.Sprint(c.Count), fmt.Sprint(c.HighRisk), fmt.Sprint(c.LowRisk)}
	}
	table(b, []string{"Value", "Count", "High Risk", "Low Risk"}, rows)
}

func writeTrend(b *strings.Builder, ranges []analysis.RangeAverage) {
	rows := make([][]string, len(ranges))
	for i, r := range ranges {
		rows[i] = []string{r.Range, fmt.Sprintf("%.2f%%", r.Average), fmt.Sprint(r.Count)}
	}
	table(b, []string{"Range", "Avg Churn", "Customers"}, rows)
}

func writeScatter(b *strings.Builder, s analysis.ScatterSeries) {
	b.WriteString(fmt.Sprintf("Points: %d (high risk %d, low risk %d)\n", s.Len(), len(s.High), len(s.Low)))
	rows := make([][]string, 0, s.Len())
	for _, side := range [][]analysis.Point{s.High, s.Low} {
		for _, p := range side {
			rows = append(rows, []string{dataset.String(p.X), dataset.String(p.Y), p.Risk.String()})
		}
	}
	table(b, []string{"X", "Y", "Risk"}, rows)
}

func section(b *strings.Builder, title string) {
	b.WriteString("\n[" + strings.ToUpper(title) + "]\n")
}

func writeDashboard(b *strings.Builder, v analysis.DashboardView) {
	writeSummary(b, v.Summary)
	section(b, "Churn Risk Distribution")
	b.WriteString(Markdown("", v.RiskDistribution))
	section(b, "Churn Rate Distribution Pyramid")
	b.WriteString(Markdown("", v.Pyramid))
	for _, h := range []*analysis.ColumnBins{v.AgeHistogram, v.AnnualAmountHistogram, v.OrgDateHistogram} {
		if h == nil {
			continue
		}
		section(b, h.Column.Label+" Distribution")
		b.WriteString(Markdown("", h.Bins))
	}
	if v.CityFrequency != nil {
		section(b, v.CityFrequency.Column.Label+" Distribution")
		writeBuckets(b, v.CityFrequency.Buckets)
	}
	if v.AgeIncomeScatter != nil {
		section(b, v.AgeIncomeScatter.X.Label+" vs "+v.AgeIncomeScatter.Y.Label)
		s := v.AgeIncomeScatter.Series
		b.WriteString(fmt.Sprintf("Points: %d (high risk %d, low risk %d)\n", s.Len(), len(s.High), len(s.Low)))
	}
	if len(v.AgeGroups) > 0 {
		section(b, "Churn Risk by Age Group")
		b.WriteString(Markdown("", v.AgeGroups))
	}
	if v.CityChurn != nil {
		section(b, "Churn Risk by "+v.CityChurn.Column.Label)
		writeBuckets(b, v.CityChurn.Buckets)
	}
	for _, tr := range []*analysis.ColumnTrend{v.IncomeTrend, v.AgeTrend} {
		if tr == nil {
			continue
		}
		section(b, "Average Churn Probability by "+tr.Column.Label+" Range")
		writeTrend(b, tr.Ranges)
	}
	section(b, "Key Trend Insights")
	if v.Insights.HighestRiskAgeGroup != "" {
		b.WriteString("- Highest risk age group: " + v.Insights.HighestRiskAgeGroup + "\n")
	}
	if v.Insights.HighestRiskCity != "" {
		b.WriteString("- Highest risk city: " + safeVal(v.Insights.HighestRiskCity) + "\n")
	}
	b.WriteString(fmt.Sprintf("- Total customers analyzed: %d\n", v.Insights.TotalCustomers))
}

func writeCustomer(b *strings.Builder, v analysis.CustomerView) {
	b.WriteString(fmt.Sprintf("Customer: %s (row %d)\n", safeVal(v.Title), v.Index))
	b.WriteString(fmt.Sprintf("Churn probability: %.2f%%\n", v.ChurnProbability))
	b.WriteString("Risk level: " + v.Risk.String() + "\n")
	sign := ""
	if v.VsAverage > 0 {
		sign = "+"
	}
	b.WriteString(fmt.Sprintf("Vs average: %s%.2f%%\n", sign, v.VsAverage))
	if len(v.Categorical) > 0 {
		section(b, "Customer Information")
		table(b, []string{"Field", "Value"}, fieldRows(v.Categorical))
	}
	if len(v.Numeric) > 0 {
		section(b, "Numeric Metrics")
		table(b, []string{"Field", "Value"}, fieldRows(v.Numeric))
	}
}

func fieldRows(fields []analysis.ProfileField) [][]string {
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f.Label, dataset.String(f.Value)}
	}
	return rows
}

func writeCustomerTable(b *strings.Builder, t CustomerTable) {
	pg := t.Page
	if pg.From > 0 {
		b.WriteString(fmt.Sprintf("Showing %d to %d of %d customers (page %d of %d)\n", pg.From, pg.To, pg.TotalRows, pg.Number, pg.TotalPages))
	} else {
		b.WriteString(fmt.Sprintf("Page %d of %d is empty (%d customers)\n", pg.Number, pg.TotalPages, pg.TotalRows))
	}
	header := make([]string, 0, len(t.Columns)+2)
	for _, c := range t.Columns {
		header = append(header, c.Label)
	}
	header = append(header, "Churn Probability", "Churn Prediction")
	rows := make([][]string, len(pg.Rows))
	for i, r := range pg.Rows {
		row := make([]string, 0, len(header))
		for _, c := range t.Columns {
			row = append(row, dataset.String(r[c.Key]))
		}
		row = append(row, dataset.String(r[dataset.FieldChurnProbability])+"%", dataset.String(r[dataset.FieldChurnPrediction]))
		rows[i] = row
	}
	table(b, header, rows)
	if len(t.Window) > 0 {
		b.WriteString("Pages: " + WindowLabel(t.Window, pg.Number) + "\n")
	}
}

// WindowLabel renders a page window like "1 … 4 [5] 6 … 10".
func WindowLabel(window []int, current int) string {
	gaps := map[int]bool{}
	for _, g := range paging.Gaps(window) {
		gaps[g] = true
	}
	var parts []string
	for i, n := range window {
		s := fmt.Sprint(n)
		if n == current {
			s = "[" + s + "]"
		}
		parts = append(parts, s)
		if gaps[i] {
			parts = append(parts, "…")
		}
	}
	return strings.Join(parts, " ")
}
