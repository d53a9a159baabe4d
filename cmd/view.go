package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/churnlens-cli/internal/analysis"
	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
)

var (
	viewBins int
	viewTop  int
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Render one aggregate view of the current dataset",
}

// viewRunner adapts a view builder to a cobra RunE over the current snapshot.
func viewRunner(title string, build func(ds *dataset.Dataset, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		snap, err := currentSnapshot()
		if err != nil {
			return err
		}
		v, err := build(snap.Dataset, args)
		if err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), title, v)
	}
}

// columnKey maps a key or a label to a column key. Unknown names pass
// through unchanged and produce an empty view.
func columnKey(ds *dataset.Dataset, name string) string {
	if _, ok := ds.Column(name); ok {
		return name
	}
	for _, c := range ds.Columns {
		if strings.EqualFold(c.Label, name) || strings.EqualFold(c.Key, name) {
			return c.Key
		}
	}
	return name
}

func viewOptions() analysis.DashboardOptions {
	if cfg == nil {
		return analysis.DashboardOptions{}
	}
	return analysis.DashboardOptions{
		HistogramBins: cfg.HistogramBins,
		RangeBins:     cfg.RangeBins,
		TopK:          cfg.TopK,
		CrossTabTopK:  cfg.CrossTabTopK,
	}
}

// pick returns the flag value when set, else the configured default.
// Values above limit are rejected.
func pick(name string, flag, def, limit int) (int, error) {
	if flag <= 0 {
		return def, nil
	}
	if flag > limit {
		return 0, fmt.Errorf("--%s must be at most %d, got %d", name, limit, flag)
	}
	return flag, nil
}

var viewRiskCmd = &cobra.Command{
	Use:   "risk",
	Short: "High vs low risk split",
	Args:  cobra.NoArgs,
	RunE: viewRunner("Churn Risk Distribution", func(ds *dataset.Dataset, _ []string) (any, error) {
		return analysis.ChurnRiskDistribution(ds), nil
	}),
}

var viewPyramidCmd = &cobra.Command{
	Use:   "pyramid",
	Short: "Customers per churn probability range",
	Args:  cobra.NoArgs,
	RunE: viewRunner("Churn Probability Pyramid", func(ds *dataset.Dataset, _ []string) (any, error) {
		return analysis.ChurnProbabilityPyramid(ds), nil
	}),
}

var viewHistogramCmd = &cobra.Command{
	Use:   "histogram <column>",
	Short: "Equal-width histogram of a numeric column",
	Args:  cobra.ExactArgs(1),
	RunE: viewRunner("Histogram", func(ds *dataset.Dataset, args []string) (any, error) {
		n, err := pick("bins", viewBins, viewOptions().HistogramBins, analysis.MaxBins)
		if err != nil {
			return nil, err
		}
		return analysis.Histogram(ds, columnKey(ds, args[0]), n), nil
	}),
}

var viewCategoriesCmd = &cobra.Command{
	Use:   "categories <column>",
	Short: "Most frequent values of a categorical column",
	Args:  cobra.ExactArgs(1),
	RunE: viewRunner("Category Frequency", func(ds *dataset.Dataset, args []string) (any, error) {
		n, err := pick("top", viewTop, viewOptions().TopK, analysis.MaxTopK)
		if err != nil {
			return nil, err
		}
		return analysis.CategoryFrequency(ds, columnKey(ds, args[0]), n), nil
	}),
}

var viewChurnByCategoryCmd = &cobra.Command{
	Use:   "churn-by-category <column>",
	Short: "High and low risk counts per category",
	Args:  cobra.ExactArgs(1),
	RunE: viewRunner("Churn By Category", func(ds *dataset.Dataset, args []string) (any, error) {
		n, err := pick("top", viewTop, viewOptions().CrossTabTopK, analysis.MaxTopK)
		if err != nil {
			return nil, err
		}
		return analysis.ChurnByCategory(ds, columnKey(ds, args[0]), n), nil
	}),
}

var viewAgeGroupsCmd = &cobra.Command{
	Use:   "age-groups",
	Short: "Risk split per age band",
	Args:  cobra.NoArgs,
	RunE: viewRunner("Churn By Age Group", func(ds *dataset.Dataset, _ []string) (any, error) {
		return analysis.ChurnByAgeGroup(ds), nil
	}),
}

var viewAvgChurnCmd = &cobra.Command{
	Use:   "avg-churn <column>",
	Short: "Average churn probability per range of a numeric column",
	Args:  cobra.ExactArgs(1),
	RunE: viewRunner("Average Churn By Range", func(ds *dataset.Dataset, args []string) (any, error) {
		n, err := pick("bins", viewBins, viewOptions().RangeBins, analysis.MaxBins)
		if err != nil {
			return nil, err
		}
		return analysis.AverageChurnByRange(ds, columnKey(ds, args[0]), n), nil
	}),
}

var viewScatterCmd = &cobra.Command{
	Use:   "scatter <x> <y>",
	Short: "Points of two numeric columns split by risk",
	Args:  cobra.ExactArgs(2),
	RunE: viewRunner("Scatter", func(ds *dataset.Dataset, args []string) (any, error) {
		return analysis.Scatter(ds, columnKey(ds, args[0]), columnKey(ds, args[1])), nil
	}),
}

var viewDashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "All demographic and trend views for the well-known columns",
	Args:  cobra.NoArgs,
	RunE: viewRunner("Dashboard", func(ds *dataset.Dataset, _ []string) (any, error) {
		return analysis.Dashboard(ds, viewOptions()), nil
	}),
}

var viewCustomerCmd = &cobra.Command{
	Use:   "customer <index>",
	Short: "Profile of one customer (0-based row index)",
	Args:  cobra.ExactArgs(1),
	RunE: viewRunner("Customer", func(ds *dataset.Dataset, args []string) (any, error) {
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("invalid index: %v", args[0])
		}
		v, ok := analysis.CustomerProfile(ds, i)
		if !ok {
			return nil, fmt.Errorf("customer %d out of range (dataset has %d rows)", i, ds.Len())
		}
		return v, nil
	}),
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.AddCommand(viewRiskCmd, viewPyramidCmd, viewHistogramCmd, viewCategoriesCmd,
		viewChurnByCategoryCmd, viewAgeGroupsCmd, viewAvgChurnCmd, viewScatterCmd,
		viewDashboardCmd, viewCustomerCmd)
	viewCmd.PersistentFlags().IntVar(&viewBins, "bins", 0, "bin count for histogram and avg-churn (default from config)")
	viewCmd.PersistentFlags().IntVar(&viewTop, "top", 0, "categories to keep (default from config)")
}
