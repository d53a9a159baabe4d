package cmd

import (
	"github.com/spf13/cobra"

	"github.com/KaramelBytes/churnlens-cli/internal/paging"
	"github.com/KaramelBytes/churnlens-cli/internal/report"
	"github.com/KaramelBytes/churnlens-cli/internal/session"
)

var (
	pageNumber int
	pageSize   int
	pageNext   bool
	pagePrev   bool
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Show one page of the customer table",
	Long: `Show one page of the customer table. The position is remembered per
dataset, so --next and --prev move from the last page shown. Changing
--size starts over at page 1.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := currentSnapshot()
		if err != nil {
			return err
		}
		st, err := sessionStore()
		if err != nil {
			return err
		}
		cur, err := st.LoadCursor(snap.ID)
		if err != nil {
			return err
		}

		size := cur.Size
		if size == 0 && cfg != nil {
			size = cfg.PageSize
		}
		number := cur.Page
		if cmd.Flags().Changed("size") && pageSize != size {
			size, number = pageSize, 1
		}
		p, err := paging.New(size)
		if err != nil {
			return err
		}
		// --next and --prev stay within the table; an explicit -n is not clamped
		total := p.TotalPages(snap.Dataset.Len())
		switch {
		case cmd.Flags().Changed("number"):
			number = pageNumber
		case pageNext:
			number = min(number+1, max(total, 1))
		case pagePrev:
			number = max(number-1, 1)
		}

		table := report.NewCustomerTable(snap.Dataset, p, number)
		if err := st.SaveCursor(session.Cursor{SnapshotID: snap.ID, Page: number, Size: size}); err != nil {
			return err
		}
		return emit(cmd.OutOrStdout(), "Customers", table)
	},
}

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.Flags().IntVarP(&pageNumber, "number", "n", 1, "page number (1-based)")
	pageCmd.Flags().IntVar(&pageSize, "size", 10, "rows per page: 10, 25, 50 or 100")
	pageCmd.Flags().BoolVar(&pageNext, "next", false, "show the page after the last one shown")
	pageCmd.Flags().BoolVar(&pagePrev, "prev", false, "show the page before the last one shown")
	pageCmd.MarkFlagsMutuallyExclusive("number", "next", "prev")
}
