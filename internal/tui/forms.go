package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/model"
	"github.com/theirongolddev/savemoney/internal/tui/components"
	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

type formKind int

const (
	formNone formKind = iota
	formAdd
	formEdit
	formDelete
	formSetup
)

// formValues backs every huh form the dashboard shows.
type formValues struct {
	// transaction forms
	name     string
	amount   string
	typ      string
	category string
	date     string
	editID   string
	// prefilled date text; an unchanged date keeps the stored timestamp
	origDate string

	// delete confirmation
	deleteIDs []string
	confirm   bool

	setup SetupValues
}

// formTheme picks the huh theme closest to the active dashboard theme.
func formTheme() *huh.Theme {
	switch theme.Active.Name {
	case theme.CatppuccinMocha.Name:
		return huh.ThemeCatppuccin()
	case theme.Terminal.Name:
		return huh.ThemeBase16()
	default:
		return huh.ThemeCharm()
	}
}

// formKeyMap lets Esc cancel a form as well as ctrl+c.
func formKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("esc", "ctrl+c"), key.WithHelp("esc", "cancel"))
	return km
}

func (a App) formWidth() int {
	return max(40, min(72, a.contentWidth()-8))
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func amountValidator(f cli.MoneyFormat, allowNegative bool) func(string) error {
	return func(s string) error {
		d, err := cli.ParseAmount(s, f)
		if err != nil {
			return err
		}
		if !allowNegative && !d.IsPositive() {
			return errors.New("amount must be greater than zero")
		}
		return nil
	}
}

func (a App) newTransactionForm(v *formValues) *huh.Form {
	loc := a.ledger.Location()
	typeOptions := make([]huh.Option[string], 0, len(model.TransactionTypes))
	for _, typ := range model.TransactionTypes {
		typeOptions = append(typeOptions, huh.NewOption(typ.Label(), string(typ)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("Lunch").
				Value(&v.name).
				Validate(validateName),
			huh.NewInput().
				Title("Amount").
				Placeholder("25.000").
				Value(&v.amount).
				Validate(amountValidator(a.money, false)),
			huh.NewSelect[string]().
				Title("Type").
				Options(typeOptions...).
				Value(&v.typ),
			huh.NewInput().
				Title("Category").
				Description("Optional").
				Value(&v.category),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD HH:MM, blank for now").
				Value(&v.date).
				Validate(func(s string) error {
					_, err := cli.ParseDate(s, loc)
					return err
				}),
		),
	).
		WithTheme(formTheme()).
		WithKeyMap(formKeyMap()).
		WithWidth(a.formWidth()).
		WithShowHelp(true)
}

func (a *App) openForm(kind formKind, v *formValues, form *huh.Form) tea.Cmd {
	a.form = form
	a.formKind = kind
	a.formVals = v
	return a.form.Init()
}

func (a *App) openAddForm() tea.Cmd {
	v := &formValues{typ: string(model.Expense)}
	return a.openForm(formAdd, v, a.newTransactionForm(v))
}

func (a *App) openEditForm(t model.Transaction) tea.Cmd {
	date := t.Date.In(a.ledger.Location()).Format(cli.InputDateLayout)
	v := &formValues{
		editID:   t.ID,
		name:     t.Name,
		amount:   cli.FormatAmountInput(t.Amount, a.money),
		typ:      string(t.Type),
		category: t.CategoryOr(""),
		date:     date,
		origDate: date,
	}
	return a.openForm(formEdit, v, a.newTransactionForm(v))
}

func (a *App) openDeleteForm(ids []string) tea.Cmd {
	if len(ids) == 0 {
		return nil
	}
	title := "Delete 1 transaction?"
	if t, ok := a.ledger.Find(ids[0]); ok && len(ids) == 1 {
		title = fmt.Sprintf("Delete %q (%s)?", t.Name, cli.FormatMoney(t.Amount, a.money))
	} else if len(ids) > 1 {
		title = fmt.Sprintf("Delete %d transactions?", len(ids))
	}

	v := &formValues{deleteIDs: ids}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description("The balance is adjusted as if they never happened.").
				Affirmative("Delete").
				Negative("Keep").
				Value(&v.confirm),
		),
	).
		WithTheme(formTheme()).
		WithKeyMap(formKeyMap()).
		WithWidth(a.formWidth())
	return a.openForm(formDelete, v, form)
}

func (a App) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.form = f
	}

	switch a.form.State {
	case huh.StateCompleted:
		a.submitForm(context.Background())
		a.closeForm()
		return a, nil
	case huh.StateAborted:
		if a.formKind == formSetup {
			a.needSetup = false
		}
		a.flash = "Cancelled"
		a.closeForm()
		return a, nil
	}
	return a, cmd
}

func (a *App) closeForm() {
	a.form = nil
	a.formKind = formNone
	a.formVals = nil
}

// submitForm applies a completed form to the ledger. Failures surface
// through the ledger's error message in the status bar.
func (a *App) submitForm(ctx context.Context) {
	v := a.formVals
	switch a.formKind {
	case formAdd:
		in, err := v.transactionInput(a.money, a.ledger.Location())
		if err != nil {
			a.flash = err.Error()
			return
		}
		t, err := a.ledger.AddTransaction(ctx, ledger.NewTransaction{
			Name: in.Name, Amount: in.Amount, Type: in.Type, Date: in.Date, Category: in.Category,
		})
		if err == nil {
			a.flash = "Added " + t.Name
			a.txState.cursor = 0
		}

	case formEdit:
		in, err := v.transactionInput(a.money, a.ledger.Location())
		if err != nil {
			a.flash = err.Error()
			return
		}
		if t, err := a.ledger.UpdateTransaction(ctx, v.editID, in); err == nil {
			a.flash = "Updated " + t.Name
		}

	case formDelete:
		if !v.confirm {
			a.flash = "Kept"
			return
		}
		if err := a.ledger.DeleteTransactions(ctx, v.deleteIDs...); err == nil {
			a.flash = fmt.Sprintf("Deleted %d", len(v.deleteIDs))
			a.txState.clearMarks()
			a.clampTxCursor()
		}

	case formSetup:
		a.needSetup = false
		if err := v.setup.Apply(ctx, &a.cfg, a.ledger, a.money); err != nil {
			a.flash = err.Error()
			return
		}
		a.money = cli.MoneyFormatFor(a.cfg.Display)
		a.flash = "Setup saved"
	}
}

// transactionInput converts raw form strings into a ledger update.
func (v *formValues) transactionInput(f cli.MoneyFormat, loc *time.Location) (ledger.TransactionInput, error) {
	amount, err := cli.ParseAmount(v.amount, f)
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	var date time.Time
	if v.origDate == "" || strings.TrimSpace(v.date) != v.origDate {
		if date, err = cli.ParseDate(v.date, loc); err != nil {
			return ledger.TransactionInput{}, err
		}
	}
	typ, err := model.ParseTransactionType(v.typ)
	if err != nil {
		return ledger.TransactionInput{}, err
	}
	return ledger.TransactionInput{
		Name:     v.name,
		Amount:   amount,
		Type:     typ,
		Date:     date,
		Category: model.StringPtr(strings.TrimSpace(v.category)),
	}, nil
}

func (a App) renderForm(cw int) string {
	title := map[formKind]string{
		formAdd:    "New transaction",
		formEdit:   "Edit transaction",
		formDelete: "Confirm",
		formSetup:  "Welcome to savemoney",
	}[a.formKind]

	w := min(cw, a.formWidth()+4)
	card := components.ContentCard(title, a.form.View(), w, true)
	return "\n" + lipgloss.PlaceHorizontal(cw, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(theme.Active.Background))
}
