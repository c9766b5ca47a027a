package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/spf13/cobra"
)

var flagStatusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show balance and budget metrics for today and this month",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&flagStatusJSON, "json", false, "Print the metrics as JSON")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	st := l.Status()
	if flagStatusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("SAVEMONEY  " + st.At.Format("January 2006")))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{Rows: statusRows(st, moneyFormat())}))
	fmt.Println()

	if st.MonthlyTarget.IsPositive() {
		fmt.Printf("  Budget used  %s\n", cli.RenderProgressBar(st.BudgetProgress.InexactFloat64(), 30))
		fmt.Println()
	} else {
		fmt.Println(cli.Muted("  No monthly target set. Use `savemoney budget set --target AMOUNT`."))
		fmt.Println()
	}
	return nil
}

// statusRows lays out BudgetStatus as label/value table rows.
func statusRows(st model.BudgetStatus, money cli.MoneyFormat) [][]string {
	balance := cli.FormatMoney(st.TotalBalance, money)
	if st.TotalBalance.IsNegative() {
		balance = cli.ExpenseStyle.Render(balance)
	}

	rows := [][]string{
		{"Balance", balance},
		{"---"},
		{"Spent today", fmt.Sprintf("%s  (%s)", cli.FormatMoney(st.TodaysTotalSpending, money),
			plural(st.TodaysExpenseCount, "expense"))},
		{"Spent this month", fmt.Sprintf("%s  (%s)", cli.FormatMoney(st.TotalSpentThisMonth, money),
			plural(st.MonthExpenseCount, "expense"))},
	}
	if !st.MonthlyTarget.IsPositive() {
		return rows
	}

	rows = append(rows,
		[]string{"---"},
		[]string{"Monthly target", cli.FormatMoney(st.MonthlyTarget, money)},
		[]string{"Remaining", cli.FormatMoney(st.RemainingBudget, money)},
		[]string{"Daily target", fmt.Sprintf("%s  (%d days)", cli.FormatMoney(st.DailyBudgetTarget, money), st.TotalDaysInMonth)},
	)
	switch st.DailyStatus {
	case model.DailyExceeded:
		rows = append(rows, []string{"Today", cli.WarnStyle.Render(
			"over by " + cli.FormatMoney(st.DailyBudgetDifference.Abs(), money))})
	case model.DailyOnTrack:
		rows = append(rows, []string{"Today", cli.OKStyle.Render(
			cli.FormatMoney(st.DailyBudgetDifference, money) + " left")})
	}
	return rows
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return cli.FormatCount(n) + " " + noun + "s"
}
