package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/model"
	"github.com/theirongolddev/savemoney/internal/tui/components"
	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// txState holds the transactions tab's cursor, marks and search.
type txState struct {
	cursor      int
	marked      map[string]bool
	searching   bool
	searchInput textinput.Model
	query       string
}

func newTxState() txState {
	return txState{marked: make(map[string]bool)}
}

func (s *txState) clearMarks() {
	s.marked = make(map[string]bool)
}

func newSearchInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "name or category"
	ti.CharLimit = 64
	ti.Width = 30
	ti.Prompt = "/ "
	return ti
}

// filterTransactions keeps transactions whose name or category contains
// query, case-insensitively.
func filterTransactions(txs []model.Transaction, query string) []model.Transaction {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return txs
	}
	var out []model.Transaction
	for _, t := range txs {
		if strings.Contains(strings.ToLower(t.Name), query) ||
			strings.Contains(strings.ToLower(t.CategoryOr("")), query) {
			out = append(out, t)
		}
	}
	return out
}

// visibleTransactions is the filtered list in display order.
func (a App) visibleTransactions() []model.Transaction {
	return filterTransactions(a.ledger.Transactions(), a.txState.query)
}

func (a App) selectedTransaction() (model.Transaction, bool) {
	visible := a.visibleTransactions()
	if a.txState.cursor < 0 || a.txState.cursor >= len(visible) {
		return model.Transaction{}, false
	}
	return visible[a.txState.cursor], true
}

// deletionTargets returns the marked ids, or the selected id if none are marked.
func (a App) deletionTargets() []string {
	var ids []string
	for _, t := range a.visibleTransactions() {
		if a.txState.marked[t.ID] {
			ids = append(ids, t.ID)
		}
	}
	if len(ids) > 0 {
		return ids
	}
	if t, ok := a.selectedTransaction(); ok {
		return []string{t.ID}
	}
	return nil
}

func (a *App) moveTxCursor(delta int) {
	a.txState.cursor += delta
	a.clampTxCursor()
}

func (a *App) clampTxCursor() {
	n := len(a.visibleTransactions())
	if a.txState.cursor >= n {
		a.txState.cursor = n - 1
	}
	if a.txState.cursor < 0 {
		a.txState.cursor = 0
	}
}

// updateTransactionsKey handles keys owned by the transactions tab. The
// bool result reports whether the key was consumed.
func (a App) updateTransactionsKey(key string) (tea.Model, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.moveTxCursor(1)
	case "k", "up":
		a.moveTxCursor(-1)
	case "g", "home":
		a.txState.cursor = 0
	case "G", "end":
		a.txState.cursor = len(a.visibleTransactions()) - 1
		a.clampTxCursor()
	case " ":
		if t, ok := a.selectedTransaction(); ok {
			if a.txState.marked[t.ID] {
				delete(a.txState.marked, t.ID)
			} else {
				a.txState.marked[t.ID] = true
			}
			a.moveTxCursor(1)
		}
	case "e", "enter":
		t, ok := a.selectedTransaction()
		if !ok {
			return a, nil, true
		}
		cmd := a.openEditForm(t)
		return a, cmd, true
	case "delete", "backspace":
		cmd := a.openDeleteForm(a.deletionTargets())
		return a, cmd, true
	case "/":
		a.txState.searching = true
		a.txState.searchInput = newSearchInput()
		a.txState.searchInput.SetValue(a.txState.query)
		cmd := a.txState.searchInput.Focus()
		return a, cmd, true
	case "esc":
		switch {
		case a.txState.query != "":
			a.txState.query = ""
			a.txState.cursor = 0
		case len(a.txState.marked) > 0:
			a.txState.clearMarks()
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

// updateTxSearch handles key events while the search box has focus.
func (a App) updateTxSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.txState.query = strings.TrimSpace(a.txState.searchInput.Value())
		a.txState.searching = false
		a.txState.cursor = 0
		return a, nil
	case "esc":
		a.txState.searching = false
		return a, nil
	}

	var cmd tea.Cmd
	a.txState.searchInput, cmd = a.txState.searchInput.Update(msg)
	return a, cmd
}

func (a App) renderTransactionsTab(cw, h int) string {
	visible := a.visibleTransactions()

	if a.isCompactLayout() {
		return a.renderTxList(visible, cw, h)
	}
	widths := components.LayoutRow(cw, 3)
	listW := widths[0] + widths[1]
	return components.CardRow([]string{
		a.renderTxList(visible, listW, h),
		a.renderTxDetail(widths[2]),
	})
}

func (a App) renderTxList(visible []model.Transaction, w, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	header := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	title := fmt.Sprintf("Transactions (%d)", len(visible))
	if a.txState.query != "" {
		title = fmt.Sprintf("Transactions matching %q (%d)", a.txState.query, len(visible))
	}
	if n := len(a.txState.marked); n > 0 {
		title += fmt.Sprintf(" · %d marked", n)
	}

	var lines []string
	if a.txState.searching {
		lines = append(lines, a.txState.searchInput.View(), "")
	}
	if len(visible) == 0 {
		lines = append(lines, muted.Render("Nothing here. Press a to add a transaction."))
		return components.ContentCard(title, strings.Join(lines, "\n"), w, true)
	}

	now := a.ledger.Now()
	cursorLine := 0
	idx := 0
	for _, group := range ledger.GroupByDate(visible, now.Location()) {
		lines = append(lines, header.Render(cli.SectionHeader(group.Date, now, a.cfg.Display.TodayLabel)))
		for _, tx := range group.Transactions {
			if idx == a.txState.cursor {
				cursorLine = len(lines)
			}
			lines = append(lines, a.renderTxRow(tx, idx == a.txState.cursor, innerW))
			idx++
		}
	}

	// Keep the cursor row in view. Card border and title take three lines.
	listH := max(3, h-3)
	start := 0
	if len(lines) > listH {
		start = min(max(0, cursorLine-listH/2), len(lines)-listH)
	}
	end := min(len(lines), start+listH)

	return components.ContentCard(title, strings.Join(lines[start:end], "\n"), w, true)
}

func (a App) renderTxRow(tx model.Transaction, selected bool, innerW int) string {
	t := theme.Active
	bg := t.Surface
	if selected {
		bg = t.SurfaceHover
	}
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(bg)
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(bg)
	mark := lipgloss.NewStyle().Foreground(t.Warning).Background(bg).Bold(true)
	amountColor := t.Income
	if tx.Type.IsExpense() {
		amountColor = t.Expense
	}
	amountStyle := lipgloss.NewStyle().Foreground(amountColor).Background(bg).Bold(true)

	cursor := " "
	if selected {
		cursor = "›"
	}
	marker := " "
	if a.txState.marked[tx.ID] {
		marker = "●"
	}

	amount := cli.FormatSignedMoney(tx.Amount, tx.Type.IsExpense(), a.money)
	clock := tx.Date.In(a.ledger.Location()).Format("15:04")
	category := tx.CategoryOr("")

	fixed := 2 + 1 + len(clock) + 1 + lipgloss.Width(amount) + 1
	nameW := max(4, innerW-fixed)
	label := tx.Name
	if category != "" {
		label += " · " + category
	}
	label = truncStr(label, nameW)
	nameText, catText := label, ""
	if i := strings.Index(label, " · "); i >= 0 {
		nameText, catText = label[:i], label[i:]
	}
	gap := max(0, nameW-lipgloss.Width(label))

	return mark.Render(cursor+marker) +
		muted.Render(" "+clock+" ") +
		text.Render(nameText) + muted.Render(catText) +
		text.Render(strings.Repeat(" ", gap)+" ") +
		amountStyle.Render(amount)
}

func (a App) renderTxDetail(w int) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	value := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	tx, ok := a.selectedTransaction()
	if !ok {
		return components.ContentCard("Details", label.Render("No transaction selected"), w, false)
	}

	innerW := components.CardInnerWidth(w)
	rows := []struct{ k, v string }{
		{"Name", tx.Name},
		{"Type", tx.Type.Label()},
		{"Category", tx.CategoryOr("-")},
		{"Date", cli.FormatDate(tx.Date.In(a.ledger.Location()))},
		{"ID", cli.ShortID(tx.ID)},
	}

	var b strings.Builder
	b.WriteString(label.Render(fmt.Sprintf("%-10s", "Amount")))
	b.WriteString(a.renderSignedAmount(tx))
	for _, r := range rows {
		b.WriteString("\n")
		b.WriteString(label.Render(fmt.Sprintf("%-10s", r.k)))
		b.WriteString(value.Render(truncStr(r.v, innerW-10)))
	}
	b.WriteString("\n\n")
	b.WriteString(label.Render("e edit · del delete · space mark"))
	return components.ContentCard("Details", b.String(), w, false)
}
