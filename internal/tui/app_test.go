package tui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/savemoney/internal/config"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/logging"
	"github.com/theirongolddev/savemoney/internal/model"
	"github.com/theirongolddev/savemoney/internal/store"
	"github.com/theirongolddev/savemoney/internal/tui/components"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(context.Background(), store.NewMemory(),
		ledger.WithClock(func() time.Time { return testNow }),
		ledger.WithLocation(time.UTC),
		ledger.WithLogger(logging.Component(logging.Discard(), "tui-test")),
	)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	return l
}

// newTestApp returns a loaded, sized App with setup already done.
func newTestApp(t *testing.T) App {
	t.Helper()
	t.Setenv("SAVEMONEY_CONFIG", filepath.Join(t.TempDir(), "config.toml"))

	l := newTestLedger(t)
	a := NewApp(config.DefaultConfig(), func(context.Context) (*ledger.Ledger, error) { return l, nil })
	a.needSetup = false

	m, _ := a.Update(ledgerLoadedMsg{ledger: l})
	m, _ = m.(App).Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	return m.(App)
}

func addTx(t *testing.T, l *ledger.Ledger, name string, amount int64, typ model.TransactionType, hoursAgo int) model.Transaction {
	t.Helper()
	tx, err := l.AddTransaction(context.Background(), ledger.NewTransaction{
		Name:   name,
		Amount: decimal.NewFromInt(amount),
		Type:   typ,
		Date:   testNow.Add(-time.Duration(hoursAgo) * time.Hour),
	})
	if err != nil {
		t.Fatalf("AddTransaction(%s): %v", name, err)
	}
	return tx
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := len(tab.Name) + 2 // one column of padding each side
			if i != active && tab.KeyPos < 0 {
				w += 3 // inactive Settings adds "[x]"
			}
			x := pos + w/2
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Fatalf("tabAtX past the last tab = %d, want -1", got)
		}
	}
}

func TestSubmitAddForm(t *testing.T) {
	a := newTestApp(t)

	a.formKind = formAdd
	a.formVals = &formValues{name: "Lunch", amount: "Rp 25.000", typ: "expense", category: "Food"}
	a.submitForm(context.Background())

	if got := a.ledger.TotalBalance(); !got.Equal(decimal.NewFromInt(-25000)) {
		t.Fatalf("balance = %s, want -25000", got)
	}
	txs := a.ledger.Transactions()
	if len(txs) != 1 || txs[0].CategoryOr("") != "Food" || !txs[0].Date.Equal(testNow) {
		t.Fatalf("transactions = %+v, want one Food expense dated now", txs)
	}
	if a.flash != "Added Lunch" {
		t.Fatalf("flash = %q, want %q", a.flash, "Added Lunch")
	}
}

func TestSubmitAddFormInvalidAmount(t *testing.T) {
	a := newTestApp(t)

	a.formKind = formAdd
	a.formVals = &formValues{name: "Lunch", amount: "abc", typ: "expense"}
	a.submitForm(context.Background())

	if n := len(a.ledger.Transactions()); n != 0 {
		t.Fatalf("transactions = %d, want 0", n)
	}
	if a.flash == "" {
		t.Fatal("expected a flash message for the rejected amount")
	}
}

func TestSubmitEditFormFlipsType(t *testing.T) {
	a := newTestApp(t)
	tx := addTx(t, a.ledger, "Refund", 100, model.Expense, 1)

	a.formKind = formEdit
	a.formVals = &formValues{editID: tx.ID, name: "Refund", amount: "100", typ: "income"}
	a.submitForm(context.Background())

	// -100 becomes +100
	if got := a.ledger.TotalBalance(); !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance = %s, want 100", got)
	}
	updated, _ := a.ledger.Find(tx.ID)
	if !updated.Date.Equal(tx.Date) {
		t.Fatalf("blank date should keep %v, got %v", tx.Date, updated.Date)
	}
}

func TestRenameOnlyEditKeepsExactAmountAndDate(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	tx, err := a.ledger.AddTransaction(ctx, ledger.NewTransaction{
		Name:   "Parking",
		Amount: decimal.RequireFromString("10.125"),
		Type:   model.Expense,
		Date:   testNow.Add(-90*time.Minute - 17*time.Second),
	})
	if err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	balanceBefore := a.ledger.TotalBalance()

	a.openEditForm(tx)
	a.formVals.name = "Parking garage"
	a.submitForm(ctx)

	updated, _ := a.ledger.Find(tx.ID)
	if updated.Name != "Parking garage" {
		t.Fatalf("name = %q, want renamed", updated.Name)
	}
	if !updated.Amount.Equal(tx.Amount) {
		t.Errorf("amount = %s, want %s", updated.Amount, tx.Amount)
	}
	if !updated.Date.Equal(tx.Date) {
		t.Errorf("date = %v, want %v", updated.Date, tx.Date)
	}
	if got := a.ledger.TotalBalance(); !got.Equal(balanceBefore) {
		t.Errorf("balance = %s, want %s", got, balanceBefore)
	}
}

func TestSettingsUnchangedBalanceKeepsExactValue(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	exact := decimal.RequireFromString("1234567.891")
	if _, err := a.ledger.UpdateBudgetSettings(ctx, ledger.SettingsUpdate{TotalBalance: &exact}); err != nil {
		t.Fatalf("UpdateBudgetSettings: %v", err)
	}

	a.activeTab = components.TabSettings
	a.settings.cursor = settingsFieldBalance
	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settingsSave(ctx)

	if a.settings.saveErr != nil {
		t.Fatalf("save error: %v", a.settings.saveErr)
	}
	if got := a.ledger.TotalBalance(); !got.Equal(exact) {
		t.Errorf("balance = %s, want %s", got, exact)
	}
}

func TestDeleteMarkedTransactions(t *testing.T) {
	a := newTestApp(t)
	addTx(t, a.ledger, "Coffee", 20000, model.Expense, 3)
	addTx(t, a.ledger, "Salary", 5000000, model.Income, 2)
	addTx(t, a.ledger, "Book", 80000, model.Expense, 1)
	a.activeTab = components.TabTransactions

	// Mark the two newest rows: Book, then Salary.
	m, _, _ := a.updateTransactionsKey(" ")
	m, _, _ = m.(App).updateTransactionsKey(" ")
	a = m.(App)

	ids := a.deletionTargets()
	if len(ids) != 2 {
		t.Fatalf("deletionTargets = %v, want 2 ids", ids)
	}

	a.formKind = formDelete
	a.formVals = &formValues{deleteIDs: ids, confirm: true}
	a.submitForm(context.Background())

	txs := a.ledger.Transactions()
	if len(txs) != 1 || txs[0].Name != "Coffee" {
		t.Fatalf("remaining = %+v, want only Coffee", txs)
	}
	if got := a.ledger.TotalBalance(); !got.Equal(decimal.NewFromInt(-20000)) {
		t.Fatalf("balance = %s, want -20000", got)
	}
	if len(a.txState.marked) != 0 {
		t.Fatalf("marks should be cleared, got %v", a.txState.marked)
	}
}

func TestDeleteNotConfirmedKeeps(t *testing.T) {
	a := newTestApp(t)
	tx := addTx(t, a.ledger, "Coffee", 20000, model.Expense, 1)

	a.formKind = formDelete
	a.formVals = &formValues{deleteIDs: []string{tx.ID}, confirm: false}
	a.submitForm(context.Background())

	if n := len(a.ledger.Transactions()); n != 1 {
		t.Fatalf("transactions = %d, want 1", n)
	}
}

func TestFilterTransactions(t *testing.T) {
	food := "Food"
	txs := []model.Transaction{
		{ID: "1", Name: "Lunch", Category: &food},
		{ID: "2", Name: "Bus ticket"},
		{ID: "3", Name: "Groceries", Category: &food},
	}

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"food", 2},
		{"BUS", 1},
		{"  lunch ", 1},
		{"rent", 0},
	}
	for _, tt := range tests {
		if got := len(filterTransactions(txs, tt.query)); got != tt.want {
			t.Fatalf("filterTransactions(%q) = %d results, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSearchKeepsCursorInRange(t *testing.T) {
	a := newTestApp(t)
	addTx(t, a.ledger, "Coffee", 20000, model.Expense, 2)
	addTx(t, a.ledger, "Book", 80000, model.Expense, 1)
	a.activeTab = components.TabTransactions
	a.txState.cursor = 1

	m, _, _ := a.updateTransactionsKey("/")
	a = m.(App)
	if !a.txState.searching {
		t.Fatal("/ should open the search box")
	}
	a.txState.searchInput.SetValue("book")
	m, _ = a.updateTxSearch(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)

	if a.txState.query != "book" || a.txState.cursor != 0 {
		t.Fatalf("query=%q cursor=%d, want book/0", a.txState.query, a.txState.cursor)
	}
	sel, ok := a.selectedTransaction()
	if !ok || sel.Name != "Book" {
		t.Fatalf("selected = %+v, want Book", sel)
	}
}

func TestSettingsSaveTarget(t *testing.T) {
	a := newTestApp(t)
	a.activeTab = components.TabSettings
	a.settings.cursor = settingsFieldTarget

	m, _ := a.settingsStartEdit()
	a = m.(App)
	a.settings.input.SetValue("2.000.000")
	a.settingsSave(context.Background())

	if got := a.ledger.MonthlyTarget(); !got.Equal(decimal.NewFromInt(2_000_000)) {
		t.Fatalf("monthly target = %s, want 2000000", got)
	}
	if !a.settings.saved || a.settings.saveErr != nil {
		t.Fatalf("saved=%v err=%v, want saved", a.settings.saved, a.settings.saveErr)
	}

	a.settings.input.SetValue("nothing")
	a.settingsSave(context.Background())
	if a.settings.saveErr == nil {
		t.Fatal("expected an error for a non-numeric target")
	}
}

func TestCycleThemeSavesConfig(t *testing.T) {
	a := newTestApp(t)
	before := a.cfg.Appearance.Theme

	a.cycleTheme()

	if a.cfg.Appearance.Theme == before {
		t.Fatal("theme did not change")
	}
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if cfg.Appearance.Theme != a.cfg.Appearance.Theme {
		t.Fatalf("saved theme = %q, want %q", cfg.Appearance.Theme, a.cfg.Appearance.Theme)
	}
}

func TestSetupOpensOnFirstRun(t *testing.T) {
	t.Setenv("SAVEMONEY_CONFIG", filepath.Join(t.TempDir(), "config.toml"))
	l := newTestLedger(t)

	a := NewApp(config.DefaultConfig(), nil)
	if !a.needSetup {
		t.Fatal("needSetup should be true without a config file")
	}
	m, _ := a.Update(ledgerLoadedMsg{ledger: l})
	a = m.(App)
	if a.form == nil || a.formKind != formSetup {
		t.Fatalf("form kind = %v, want setup", a.formKind)
	}
}

func TestSetupValuesApply(t *testing.T) {
	a := newTestApp(t)
	v := SetupValues{Balance: "8.000.000", Target: "3.000.000", Theme: "tokyo-night", Currency: "IDR"}

	cfg := a.cfg
	if err := v.Apply(context.Background(), &cfg, a.ledger, a.money); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !a.ledger.TotalBalance().Equal(decimal.NewFromInt(8_000_000)) {
		t.Fatalf("balance = %s, want 8000000", a.ledger.TotalBalance())
	}
	if !a.ledger.MonthlyTarget().Equal(decimal.NewFromInt(3_000_000)) {
		t.Fatalf("target = %s, want 3000000", a.ledger.MonthlyTarget())
	}

	saved, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	if saved.Appearance.Theme != "tokyo-night" || saved.Display.CurrencySymbol != "IDR" {
		t.Fatalf("saved config = %+v", saved)
	}

	bad := SetupValues{Balance: "0", Target: "-5"}
	if err := bad.Apply(context.Background(), &cfg, a.ledger, a.money); err == nil {
		t.Fatal("expected an error for a negative target")
	}
}

func TestViewFillsTerminal(t *testing.T) {
	a := newTestApp(t)
	addTx(t, a.ledger, "Lunch", 25000, model.Expense, 1)
	addTx(t, a.ledger, "Salary", 5000000, model.Income, 30)

	for tab := range components.Tabs {
		a.activeTab = tab
		view := a.View()
		if got := lipgloss.Height(view); got != 40 {
			t.Fatalf("tab %d view height = %d, want 40", tab, got)
		}
		if !strings.Contains(view, "Settings") {
			t.Fatalf("tab %d view is missing the tab bar", tab)
		}
	}
}

func TestViewTooNarrow(t *testing.T) {
	a := newTestApp(t)
	m, _ := a.Update(tea.WindowSizeMsg{Width: 60, Height: 20})
	if view := m.(App).View(); !strings.Contains(view, "too narrow") {
		t.Fatalf("narrow view = %q", view)
	}
}
