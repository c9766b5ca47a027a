package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/tui"
	"github.com/theirongolddev/savemoney/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor so background styling always produces ANSI codes.
	lipgloss.SetColorProfile(termenv.TrueColor)

	// Log lines would corrupt the alt screen.
	logger.SetLevel(logrus.ErrorLevel)

	// The ledger loads in a tea.Cmd goroutine.
	var (
		mu      sync.Mutex
		closers []func()
	)
	load := func(ctx context.Context) (*ledger.Ledger, error) {
		l, closer, err := openLedger(ctx)
		if err != nil {
			return nil, err
		}
		mu.Lock()
		closers = append(closers, closer)
		mu.Unlock()
		return l, nil
	}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, c := range closers {
			c()
		}
	}()

	app := tui.NewApp(appCfg, load)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
