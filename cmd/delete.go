package cmd

import (
	"context"
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var flagDeleteYes bool

var deleteCmd = &cobra.Command{
	Use:     "delete ID...",
	Aliases: []string{"rm"},
	Short:   "Delete one or more transactions",
	Long: "Delete transactions by id or unique id prefix. The balance is " +
		"reverted for each one. Either all of them are deleted or none.",
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&flagDeleteYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(_ *cobra.Command, args []string) error {
	ctx := context.Background()
	money := moneyFormat()

	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	txs := l.Transactions()
	seen := make(map[string]bool)
	var targets []model.Transaction
	for _, ref := range args {
		id, err := resolveID(txs, ref)
		if err != nil {
			return err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		t, _ := l.Find(id)
		targets = append(targets, t)
	}

	fmt.Println()
	for _, t := range targets {
		fmt.Printf("  %s  %-24s %s\n", cli.ShortID(t.ID), t.Name, signedStyled(t, money))
	}
	fmt.Println()

	if !flagDeleteYes {
		confirm := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %d transaction(s)?", len(targets))).
			Affirmative("Delete").
			Negative("Keep").
			Value(&confirm).
			Run()
		if err != nil {
			return err
		}
		if !confirm {
			fmt.Println("  Cancelled.")
			return nil
		}
	}

	ids := make([]string, len(targets))
	for i, t := range targets {
		ids[i] = t.ID
	}
	if err := l.DeleteTransactions(ctx, ids...); err != nil {
		return err
	}

	fmt.Printf("  Deleted %d transaction(s). Balance: %s\n", len(ids), cli.FormatMoney(l.TotalBalance(), money))
	fmt.Println()
	return nil
}
