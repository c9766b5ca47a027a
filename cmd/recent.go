package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"

	"github.com/spf13/cobra"
)

var flagRecentLimit int

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "Show the most recent transactions",
	RunE:  runRecent,
}

func init() {
	recentCmd.Flags().IntVarP(&flagRecentLimit, "limit", "n", 0, "Number of transactions (default: general.recent_limit)")
	rootCmd.AddCommand(recentCmd)
}

func runRecent(_ *cobra.Command, _ []string) error {
	limit := flagRecentLimit
	if limit <= 0 {
		limit = appCfg.General.RecentLimit
	}

	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	recent := l.RecentTransactions(limit)
	if len(recent) == 0 {
		fmt.Println("\n  No transactions yet.")
		return nil
	}

	money := moneyFormat()
	rows := make([][]string, 0, len(recent))
	for _, t := range recent {
		rows = append(rows, []string{
			cli.FormatDate(t.Date.In(l.Location())),
			cli.ShortID(t.ID),
			t.Name,
			t.CategoryOr("-"),
			signedStyled(t, money),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Last %d transactions", len(recent)),
		Headers:  []string{"Date", "ID", "Name", "Category", "Amount"},
		Rows:     rows,
		LeftCols: []int{1, 2, 3},
	}))
	fmt.Println()
	return nil
}
