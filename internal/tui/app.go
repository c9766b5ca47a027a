// Package tui provides the interactive Bubble Tea dashboard for savemoney.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/config"
	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/tui/components"
	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// LoadFunc opens the ledger the dashboard works on.
type LoadFunc func(ctx context.Context) (*ledger.Ledger, error)

// ledgerLoadedMsg is sent when the ledger has been opened.
type ledgerLoadedMsg struct {
	ledger   *ledger.Ledger
	err      error
	loadTime time.Duration
}

type tickMsg struct{}

// App is the root Bubble Tea model.
type App struct {
	// Data
	ledger   *ledger.Ledger
	load     LoadFunc
	loaded   bool
	loadErr  error
	loadTime time.Duration

	cfg   config.Config
	money cli.MoneyFormat

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool

	// Status bar message for the last action
	flash string

	// Per-tab state
	txState  txState
	settings settingsState

	// Active huh form, if any. Values live behind a pointer because huh
	// binds to field addresses and App is copied on every update.
	form      *huh.Form
	formKind  formKind
	formVals  *formValues
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 160

	minContentHeight = 5
	tickInterval     = 30 * time.Second
)

// NewApp creates a new TUI app model.
func NewApp(cfg config.Config, load LoadFunc) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:       cfg,
		money:     cli.MoneyFormatFor(cfg.Display),
		load:      load,
		needSetup: !config.Exists(),
		txState:   newTxState(),
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadLedgerCmd(a.load),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			a.form = a.form.WithWidth(a.formWidth())
		}
		return a, nil

	case ledgerLoadedMsg:
		a.loaded = true
		a.loadTime = msg.loadTime
		if msg.err != nil {
			a.loadErr = msg.err
			return a, nil
		}
		a.ledger = msg.ledger
		if a.needSetup {
			return a, a.openSetupForm()
		}
		return a, nil

	case spinner.TickMsg:
		if a.loaded {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		// Re-render so day and month boundaries roll over while idle.
		return a, tickCmd()

	case tea.MouseMsg:
		if a.ledger == nil || a.showHelp || a.form != nil {
			return a, nil
		}
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	// Forward unhandled messages (cursor blinks) to whatever has focus.
	if a.form != nil {
		return a.updateForm(msg)
	}
	if a.settings.editing {
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}
	if a.txState.searching {
		var cmd tea.Cmd
		a.txState.searchInput, cmd = a.txState.searchInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Global: quit
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if !a.loaded {
		return a, nil
	}
	if a.ledger == nil {
		if key == "q" || key == "esc" {
			return a, tea.Quit
		}
		return a, nil
	}

	if a.form != nil {
		return a.updateForm(msg)
	}

	if a.activeTab == components.TabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}
	if a.activeTab == components.TabTransactions && a.txState.searching {
		return a.updateTxSearch(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	// Tab-specific bindings take precedence over global ones.
	switch a.activeTab {
	case components.TabTransactions:
		if model, cmd, ok := a.updateTransactionsKey(key); ok {
			return model, cmd
		}
	case components.TabSettings:
		if model, cmd, ok := a.updateSettingsKey(key); ok {
			return model, cmd
		}
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "a":
		return a, a.openAddForm()
	case "r":
		if err := a.ledger.ReloadAll(context.Background()); err != nil {
			a.flash = ""
		} else {
			a.flash = "Reloaded"
		}
		return a, nil
	case "right", "tab", "l":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "left", "shift+tab", "h":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if a.activeTab == components.TabTransactions && !a.txState.searching {
			a.moveTxCursor(-1)
		}
	case tea.MouseButtonWheelDown:
		if a.activeTab == components.TabTransactions && !a.txState.searching {
			a.moveTxCursor(1)
		}
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// statusMessage prefers the ledger's last error over the flash message.
func (a App) statusMessage() (string, bool) {
	if a.ledger != nil {
		if msg := a.ledger.ErrorMessage(); msg != "" {
			return msg, true
		}
	}
	return a.flash, false
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded || a.ledger == nil {
		return a.viewLoading()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  savemoney needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ savemoney"))
	b.WriteString(subtitleStyle.Render(" · Personal budget"))
	b.WriteString("\n\n")

	if a.loadErr != nil {
		b.WriteString(errStyle.Render(ledger.ErrorText(a.loadErr)))
		b.WriteString("\n\n")
		b.WriteString(subtitleStyle.Render("Press q to quit"))
	} else {
		b.WriteString(a.spinner.View())
		b.WriteString(subtitleStyle.Render(" Opening ledger..."))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings []struct{ key, desc string }
	}{
		{"Navigation", []struct{ key, desc string }{
			{"d t x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move through lists"},
			{"g G", "First / Last transaction"},
		}},
		{"Transactions", []struct{ key, desc string }{
			{"a", "Add transaction"},
			{"e Enter", "Edit selected"},
			{"Space", "Mark for deletion"},
			{"Del", "Delete marked or selected"},
			{"/", "Search by name or category"},
		}},
		{"General", []struct{ key, desc string }{
			{"r", "Reload from storage"},
			{"Esc", "Back / Cancel"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) renderInfoRow(w int) string {
	t := theme.Active
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	now := a.ledger.Now()
	balance := a.ledger.TotalBalance()
	balStyle := accent
	if balance.IsNegative() {
		balStyle = balStyle.Foreground(t.Expense)
	}

	info := dim.Render(" "+now.Format("Mon, 2 Jan 2006")+" │ balance ") +
		balStyle.Render(cli.FormatMoney(balance, a.money)) +
		dim.Render(fmt.Sprintf(" │ %d transactions ", len(a.ledger.Transactions())))

	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(info)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.renderInfoRow(w)

	msg, isErr := a.statusMessage()
	status := a.ledger.Status()
	statusBar := components.RenderStatusBar(w, components.StatusBar{
		Hints:    a.statusHints(),
		Message:  msg,
		IsError:  isErr,
		Progress: status.BudgetProgress.InexactFloat64(),
		Target:   status.MonthlyTarget.IsPositive(),
	})

	contentH := max(minContentHeight, h-lipgloss.Height(header)-lipgloss.Height(statusBar))

	var content string
	switch {
	case a.form != nil:
		content = a.renderForm(cw)
	case a.activeTab == components.TabDashboard:
		content = a.renderDashboardTab(cw)
	case a.activeTab == components.TabTransactions:
		content = a.renderTransactionsTab(cw, contentH)
	case a.activeTab == components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusHints() string {
	switch {
	case a.form != nil:
		return "[esc]cancel"
	case a.activeTab == components.TabTransactions:
		return "[a]dd [e]dit [del]ete [/]search [?]help"
	case a.activeTab == components.TabSettings:
		return "[enter]edit [?]help [q]uit"
	default:
		return "[a]dd [r]eload [?]help [q]uit"
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

// loadLedgerCmd opens the ledger in the background so migrations do not
// block the first frame.
func loadLedgerCmd(load LoadFunc) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		l, err := load(context.Background())
		return ledgerLoadedMsg{ledger: l, err: err, loadTime: time.Since(start)}
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW
		if i < len(components.Tabs)-1 {
			pos++ // separator
		}
	}
	return -1
}
