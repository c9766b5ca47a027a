package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/ledger"

	"github.com/spf13/cobra"
)

var (
	flagBudgetBalance string
	flagBudgetTarget  string
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show the balance and monthly target",
	RunE:  runBudget,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set the balance and/or monthly target",
	Long: "Set the total balance and/or the monthly spending target. The balance " +
		"is set directly and is not recorded as a transaction. A target of 0 turns budget tracking off.",
	Example: `  savemoney budget set --target 3.000.000
  savemoney budget set --balance 8.000.000 --target 2.500.000`,
	RunE: runBudgetSet,
}

func init() {
	budgetSetCmd.Flags().StringVar(&flagBudgetBalance, "balance", "", "Total balance")
	budgetSetCmd.Flags().StringVar(&flagBudgetTarget, "target", "", "Monthly spending target")
	budgetCmd.AddCommand(budgetSetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	money := moneyFormat()
	s := l.Settings()
	target := cli.FormatMoney(s.MonthlyTarget, money)
	if !s.MonthlyTarget.IsPositive() {
		target = "off"
	}

	fmt.Println()
	fmt.Printf("  Balance:         %s\n", cli.FormatMoney(s.TotalBalance, money))
	fmt.Printf("  Monthly target:  %s\n", target)
	fmt.Printf("  Last change:     %s\n", cli.FormatDate(s.UpdatedAt.In(l.Location())))
	fmt.Println()
	return nil
}

func runBudgetSet(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	if !flags.Changed("balance") && !flags.Changed("target") {
		return errors.New("nothing to change: pass --balance and/or --target")
	}

	money := moneyFormat()
	var u ledger.SettingsUpdate
	if flags.Changed("balance") {
		balance, err := cli.ParseAmount(flagBudgetBalance, money)
		if err != nil {
			return fmt.Errorf("balance: %w", err)
		}
		u.TotalBalance = &balance
	}
	if flags.Changed("target") {
		target, err := cli.ParseAmount(flagBudgetTarget, money)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		u.MonthlyTarget = &target
	}

	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	s, err := l.UpdateBudgetSettings(ctx, u)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Balance:         %s\n", cli.FormatMoney(s.TotalBalance, money))
	fmt.Printf("  Monthly target:  %s\n", cli.FormatMoney(s.MonthlyTarget, money))
	fmt.Println()
	return nil
}
