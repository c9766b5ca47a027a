package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/config"
	"github.com/theirongolddev/savemoney/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	l, closeStore, err := openLedger(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	cfg := appCfg
	money := moneyFormat()
	values := tui.NewSetupValues(cfg, l, money)

	if err := tui.NewSetupForm(&values, money).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup cancelled. Nothing was changed.")
			return nil
		}
		return err
	}

	if err := values.Apply(ctx, &cfg, l, money); err != nil {
		return err
	}
	appCfg = cfg

	money = cli.MoneyFormatFor(cfg.Display)
	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Printf("  Balance %s, monthly target %s\n",
		cli.FormatMoney(l.TotalBalance(), money), cli.FormatMoney(l.MonthlyTarget(), money))
	fmt.Println()
	fmt.Println("  Try `savemoney add \"Coffee\" 18000` or `savemoney tui`.")
	return nil
}
