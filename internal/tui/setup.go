package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/config"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// SetupValues holds the answers of the first-run wizard.
type SetupValues struct {
	Balance  string
	Target   string
	Theme    string
	Currency string
}

// NewSetupValues prefills the wizard from the current config and ledger.
func NewSetupValues(cfg config.Config, l *ledger.Ledger, money cli.MoneyFormat) SetupValues {
	target := cfg.Budget.DefaultMonthlyTarget
	balance := "0"
	if l != nil {
		target = l.MonthlyTarget()
		balance = cli.FormatAmountInput(l.TotalBalance(), money)
	}
	return SetupValues{
		Balance:  balance,
		Target:   cli.FormatAmountInput(target, money),
		Theme:    cfg.Appearance.Theme,
		Currency: cfg.Display.CurrencySymbol,
	}
}

// NewSetupForm builds the first-run wizard bound to v. It is embedded in
// the dashboard and also run standalone by `savemoney setup`.
func NewSetupForm(v *SetupValues, money cli.MoneyFormat) *huh.Form {
	themeOptions := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOptions = append(themeOptions, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to savemoney").
				Description("Track income and expenses against a monthly budget.\nYou can change all of this later in Settings."),
			huh.NewInput().
				Title("Current balance").
				Description("What you have right now. Transactions adjust it from here.").
				Value(&v.Balance).
				Validate(amountValidator(money, true)),
			huh.NewInput().
				Title("Monthly spending target").
				Description("0 turns budget tracking off.").
				Value(&v.Target).
				Validate(func(s string) error {
					d, err := cli.ParseAmount(s, money)
					if err != nil {
						return err
					}
					if d.IsNegative() {
						return ledger.ErrInvalidTarget
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOptions...).
				Value(&v.Theme),
			huh.NewInput().
				Title("Currency symbol").
				Value(&v.Currency),
		),
	).WithTheme(formTheme())
}

// Apply writes the answers to the ledger and the config file.
func (v SetupValues) Apply(ctx context.Context, cfg *config.Config, l *ledger.Ledger, money cli.MoneyFormat) error {
	balance, err := cli.ParseAmount(v.Balance, money)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	target, err := cli.ParseAmount(v.Target, money)
	if err != nil {
		return fmt.Errorf("monthly target: %w", err)
	}
	if _, err := l.UpdateBudgetSettings(ctx, ledger.SettingsUpdate{
		TotalBalance:  &balance,
		MonthlyTarget: &target,
	}); err != nil {
		return err
	}

	if theme.Known(v.Theme) {
		cfg.Appearance.Theme = v.Theme
		theme.SetActive(v.Theme)
	}
	cfg.Display.CurrencySymbol = strings.TrimSpace(v.Currency)
	cfg.Budget.DefaultMonthlyTarget = target

	if err := config.Save(*cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

func (a *App) openSetupForm() tea.Cmd {
	v := &formValues{setup: NewSetupValues(a.cfg, a.ledger, a.money)}
	form := NewSetupForm(&v.setup, a.money).
		WithKeyMap(formKeyMap()).
		WithWidth(a.formWidth())
	return a.openForm(formSetup, v, form)
}
