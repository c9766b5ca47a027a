package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show spending for the last 7 days",
	RunE:  runWeek,
}

func init() {
	rootCmd.AddCommand(weekCmd)
}

func runWeek(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	st := l.Status()
	money := moneyFormat()

	values := make([]float64, len(st.Last7Days))
	peak := 0.0
	for i, d := range st.Last7Days {
		values[i] = d.Amount.InexactFloat64()
		peak = max(peak, values[i])
	}
	limit := st.DailyBudgetTarget.InexactFloat64()
	peak = max(peak, limit)

	fmt.Println()
	fmt.Println(cli.RenderTitle("LAST 7 DAYS  " + cli.RenderSparkline(values)))
	fmt.Println()

	rows := make([][]string, 0, len(st.Last7Days)+2)
	total := decimal.Zero
	for i, d := range st.Last7Days {
		total = total.Add(d.Amount)
		bar := cli.RenderHorizontalBar(values[i], peak, 30)
		if limit > 0 && values[i] > limit {
			bar = cli.ExpenseStyle.Render(bar)
		}
		rows = append(rows, []string{
			d.Label,
			d.Date.Format("02 Jan"),
			cli.FormatMoney(d.Amount, money),
			bar,
		})
	}
	rows = append(rows, []string{"---"})
	rows = append(rows, []string{"Total", "", cli.FormatMoney(total, money), ""})

	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Day", "Date", "Spent", ""},
		Rows:     rows,
		LeftCols: []int{1, 3},
	}))

	if limit > 0 {
		fmt.Printf("\n  Daily target %s. Red bars are over target.\n", cli.FormatMoney(st.DailyBudgetTarget, money))
	}
	fmt.Println()
	return nil
}
