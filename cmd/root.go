// Package cmd implements the savemoney CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/config"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/logging"
	"github.com/theirongolddev/savemoney/internal/model"
	"github.com/theirongolddev/savemoney/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagDB      string
	flagBackend string
	flagQuiet   bool
	flagVerbose bool
)

// Populated by loadRuntime before any command runs.
var (
	appCfg config.Config
	logger *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:               "savemoney",
	Short:             "Personal budget tracker",
	Long:              "Track income and expenses against a monthly spending target.",
	PersistentPreRunE: loadRuntime,
	SilenceUsage:      true,
	RunE:              runStatus,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite database path (default: data dir)")
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "Storage backend: sqlite or memory")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
}

// loadRuntime reads .env and the config file, applies flag overrides and
// builds the shared logger.
func loadRuntime(_ *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagDB != "" {
		cfg.General.DBPath = flagDB
	}
	if flagBackend != "" {
		cfg.General.Backend = strings.ToLower(flagBackend)
	}
	if flagVerbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	appCfg = cfg
	logger = logging.New(cfg.Log.Level, cfg.Log.Format)
	return nil
}

// openLedger opens the configured store and loads the ledger from it. The
// returned closer releases the store.
func openLedger(ctx context.Context) (*ledger.Ledger, func(), error) {
	var st store.Store
	switch appCfg.General.Backend {
	case "memory":
		logging.Component(logger, "cmd").Warn("memory backend: changes are not persisted")
		st = store.NewMemory()
	default:
		s, err := store.Open(appCfg.DBPath())
		if err != nil {
			return nil, nil, err
		}
		st = s
	}
	closer := func() {
		if err := st.Close(); err != nil {
			logging.Component(logger, "cmd").WithError(err).Warn("closing store")
		}
	}

	l, err := ledger.Open(ctx, st,
		ledger.WithLogger(logging.Component(logger, "ledger")),
		ledger.WithDefaultTarget(appCfg.Budget.DefaultMonthlyTarget),
		ledger.WithTodayLabel(appCfg.Display.TodayLabel),
	)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return l, closer, nil
}

func moneyFormat() cli.MoneyFormat {
	return cli.MoneyFormatFor(appCfg.Display)
}

// resolveID finds the transaction whose id equals ref or starts with it.
// Short ids as printed by list are accepted when unambiguous.
func resolveID(txs []model.Transaction, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("empty transaction id")
	}
	var matches []string
	for _, t := range txs {
		if t.ID == ref {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ledger.ErrNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("ambiguous id %q matches %d transactions", ref, len(matches))
	}
}

// progress prints a status line to stderr unless --quiet is set.
func progress(format string, args ...any) {
	if flagQuiet {
		return
	}
	fmt.Fprintf(os.Stderr, "  "+format+"\n", args...)
}
