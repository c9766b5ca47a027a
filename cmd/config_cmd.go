package cmd

import (
	"fmt"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Backend:        %s\n", cfg.General.Backend)
	if cfg.General.Backend == "sqlite" {
		fmt.Printf("    Database:       %s\n", cfg.DBPath())
	}
	fmt.Printf("    Recent limit:   %d\n", cfg.General.RecentLimit)
	fmt.Println()

	fmt.Println("  [Budget]")
	fmt.Printf("    Default monthly target: %s\n", cli.FormatMoney(cfg.Budget.DefaultMonthlyTarget, moneyFormat()))
	fmt.Println()

	fmt.Println("  [Display]")
	fmt.Printf("    Currency symbol: %q\n", cfg.Display.CurrencySymbol)
	fmt.Printf("    Separators:      thousands %q, decimal %q\n", cfg.Display.ThousandsSep, cfg.Display.DecimalSep)
	fmt.Printf("    Today label:     %s\n", cfg.Display.TodayLabel)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:       %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Poll interval: %s\n", cfg.Daemon.Interval())
	fmt.Printf("    Events buffer: %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `savemoney setup` to reconfigure.")
	return nil
}
