package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagAddType     string
	flagAddCategory string
	flagAddDate     string
)

var addCmd = &cobra.Command{
	Use:   "add NAME AMOUNT",
	Short: "Record an income or expense",
	Example: `  savemoney add "Lunch" 25000 --category food
  savemoney add "Salary" 8.000.000 --type income --date 2025-03-01`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&flagAddType, "type", "t", string(model.Expense), "Transaction type: income or expense")
	addCmd.Flags().StringVarP(&flagAddCategory, "category", "c", "", "Optional category")
	addCmd.Flags().StringVar(&flagAddDate, "date", "", "Date as YYYY-MM-DD or YYYY-MM-DD HH:MM (default: now)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	money := moneyFormat()

	amount, err := cli.ParseAmount(args[1], money)
	if err != nil {
		return err
	}
	typ, err := model.ParseTransactionType(flagAddType)
	if err != nil {
		return err
	}

	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	date, err := cli.ParseDate(flagAddDate, l.Location())
	if err != nil {
		return err
	}

	tx, err := l.AddTransaction(ctx, ledger.NewTransaction{
		Name:     args[0],
		Amount:   amount,
		Type:     typ,
		Date:     date,
		Category: model.StringPtr(flagAddCategory),
	})
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Added %s %s  %s  (id %s)\n",
		tx.Type.Label(), tx.Name,
		signedStyled(tx, money), cli.ShortID(tx.ID))
	fmt.Printf("  Balance: %s\n", cli.FormatMoney(l.TotalBalance(), money))
	fmt.Println()
	return nil
}

// signedStyled renders a transaction amount with its sign and color.
func signedStyled(tx model.Transaction, money cli.MoneyFormat) string {
	s := cli.FormatSignedMoney(tx.Amount, tx.Type.IsExpense(), money)
	if tx.Type.IsExpense() {
		return cli.ExpenseStyle.Render(s)
	}
	return cli.IncomeStyle.Render(s)
}
