package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/config"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/tui/components"
	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldBalance = iota
	settingsFieldTarget
	settingsFieldTheme
	settingsFieldCurrency
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab state.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 32
	ti.Width = 30
	return ti
}

// updateSettingsKey handles navigation on the settings tab.
func (a App) updateSettingsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		if a.settings.cursor < settingsFieldCount-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		if a.settings.cursor == settingsFieldTheme {
			a.cycleTheme()
			return a, nil, true
		}
		model, cmd := a.settingsStartEdit()
		return model, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil

	ti := newSettingsInput()
	switch a.settings.cursor {
	case settingsFieldBalance:
		ti.Placeholder = "8.000.000"
		ti.SetValue(cli.FormatAmountInput(a.ledger.TotalBalance(), a.money))
	case settingsFieldTarget:
		ti.Placeholder = "0 turns tracking off"
		ti.SetValue(cli.FormatAmountInput(a.ledger.MonthlyTarget(), a.money))
	case settingsFieldCurrency:
		ti.Placeholder = "Rp"
		ti.SetValue(a.cfg.Display.CurrencySymbol)
	}
	a.settings.input = ti
	return a, a.settings.input.Focus()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settingsSave(context.Background())
		a.settings.editing = false
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

func (a *App) cycleTheme() {
	names := theme.Names()
	next := names[0]
	for i, n := range names {
		if n == a.cfg.Appearance.Theme {
			next = names[(i+1)%len(names)]
			break
		}
	}
	a.cfg.Appearance.Theme = next
	theme.SetActive(next)
	a.settings.saveErr = config.Save(a.cfg)
	a.settings.saved = a.settings.saveErr == nil
}

// settingsSave writes the edited field. Budget fields go to the ledger,
// display fields to the config file.
func (a *App) settingsSave(ctx context.Context) {
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldBalance, settingsFieldTarget:
		amount, err := cli.ParseAmount(val, a.money)
		if err != nil {
			a.settings.saveErr = err
			return
		}
		var u ledger.SettingsUpdate
		if a.settings.cursor == settingsFieldBalance {
			u.TotalBalance = &amount
		} else {
			u.MonthlyTarget = &amount
		}
		_, a.settings.saveErr = a.ledger.UpdateBudgetSettings(ctx, u)
	case settingsFieldCurrency:
		a.cfg.Display.CurrencySymbol = val
		a.money = cli.MoneyFormatFor(a.cfg.Display)
		a.settings.saveErr = config.Save(a.cfg)
	}
	a.settings.saved = a.settings.saveErr == nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceHover).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceHover).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceHover)

	target := "(off)"
	if a.ledger.MonthlyTarget().IsPositive() {
		target = cli.FormatMoney(a.ledger.MonthlyTarget(), a.money)
	}
	symbol := a.cfg.Display.CurrencySymbol
	if symbol == "" {
		symbol = "(none)"
	}

	fields := []struct{ label, value string }{
		{"Total balance", cli.FormatMoney(a.ledger.TotalBalance(), a.money)},
		{"Monthly target", target},
		{"Theme", a.cfg.Appearance.Theme},
		{"Currency symbol", symbol},
	}

	innerW := components.CardInnerWidth(cw)
	var formBody strings.Builder
	for i, f := range fields {
		if a.settings.editing && i == a.settings.cursor {
			formBody.WriteString(markerStyle.Render("▸ "))
			formBody.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			formBody.WriteString(a.settings.input.View())
			formBody.WriteString("\n")
			continue
		}

		if i == a.settings.cursor {
			marker := markerStyle.Render("▸ ")
			label := selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":"))
			value := selectedStyle.Render(f.value)
			formBody.WriteString(marker + label + value)
			if padLen := innerW - lipgloss.Width(marker+label+value); padLen > 0 {
				formBody.WriteString(lipgloss.NewStyle().Background(t.SurfaceHover).Render(strings.Repeat(" ", padLen)))
			}
		} else {
			formBody.WriteString(lipgloss.NewStyle().Background(t.Surface).Render("  "))
			formBody.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			formBody.WriteString(valueStyle.Render(f.value))
		}
		formBody.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		formBody.WriteString("\n")
		formBody.WriteString(warnStyle.Render("Save failed: " + ledger.ErrorText(a.settings.saveErr)))
	} else if a.settings.saved {
		formBody.WriteString("\n")
		formBody.WriteString(okStyle.Render("Saved!"))
	}
	formBody.WriteString("\n")
	formBody.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit / next theme  [Esc] cancel"))

	s := a.ledger.Settings()
	var infoBody strings.Builder
	infoBody.WriteString(labelStyle.Render("Storage:         ") + valueStyle.Render(a.cfg.General.Backend) + "\n")
	if a.cfg.General.Backend == "sqlite" {
		infoBody.WriteString(labelStyle.Render("Database:        ") + valueStyle.Render(a.cfg.DBPath()) + "\n")
	}
	infoBody.WriteString(labelStyle.Render("Config file:     ") + valueStyle.Render(config.ConfigPath()) + "\n")
	infoBody.WriteString(labelStyle.Render("Budget created:  ") + valueStyle.Render(cli.FormatDate(s.CreatedAt.In(a.ledger.Location()))) + "\n")
	infoBody.WriteString(labelStyle.Render("Last change:     ") + valueStyle.Render(cli.FormatDate(s.UpdatedAt.In(a.ledger.Location()))) + "\n")
	infoBody.WriteString(labelStyle.Render("Load time:       ") + valueStyle.Render(fmt.Sprintf("%.1fs", a.loadTime.Seconds())))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", formBody.String(), cw, true))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("About", infoBody.String(), cw, false))
	return b.String()
}
