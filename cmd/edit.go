package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/spf13/cobra"
)

var (
	flagEditName     string
	flagEditAmount   string
	flagEditType     string
	flagEditCategory string
	flagEditDate     string
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change an existing transaction",
	Long: "Change an existing transaction. Only the flags given are changed; " +
		"the balance is corrected for the old and new amounts. Pass --category \"\" to clear the category.",
	Example: `  savemoney edit 3f2a --amount 30000
  savemoney edit 3f2a --type income --name "Refund"`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&flagEditName, "name", "", "New name")
	editCmd.Flags().StringVar(&flagEditAmount, "amount", "", "New amount")
	editCmd.Flags().StringVarP(&flagEditType, "type", "t", "", "New type: income or expense")
	editCmd.Flags().StringVarP(&flagEditCategory, "category", "c", "", "New category")
	editCmd.Flags().StringVar(&flagEditDate, "date", "", "New date as YYYY-MM-DD or YYYY-MM-DD HH:MM")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	changed := false
	for _, name := range []string{"name", "amount", "type", "category", "date"} {
		changed = changed || flags.Changed(name)
	}
	if !changed {
		return errors.New("nothing to change: pass at least one of --name, --amount, --type, --category, --date")
	}

	ctx := context.Background()
	money := moneyFormat()

	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	id, err := resolveID(l.Transactions(), args[0])
	if err != nil {
		return err
	}
	old, _ := l.Find(id)

	in := ledger.TransactionInput{
		Name:     old.Name,
		Amount:   old.Amount,
		Type:     old.Type,
		Category: old.Category,
	}
	if flags.Changed("name") {
		in.Name = flagEditName
	}
	if flags.Changed("amount") {
		if in.Amount, err = cli.ParseAmount(flagEditAmount, money); err != nil {
			return err
		}
	}
	if flags.Changed("type") {
		if in.Type, err = model.ParseTransactionType(flagEditType); err != nil {
			return err
		}
	}
	if flags.Changed("category") {
		in.Category = model.StringPtr(flagEditCategory)
	}
	if flags.Changed("date") {
		if in.Date, err = cli.ParseDate(flagEditDate, l.Location()); err != nil {
			return err
		}
	}

	tx, err := l.UpdateTransaction(ctx, id, in)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Updated %s  %s -> %s\n", cli.ShortID(tx.ID), signedStyled(old, money), signedStyled(tx, money))
	fmt.Printf("  Balance: %s\n", cli.FormatMoney(l.TotalBalance(), money))
	fmt.Println()
	return nil
}
