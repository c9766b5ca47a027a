package components

import (
	"strings"

	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusBar describes the bottom line of the dashboard.
type StatusBar struct {
	Hints    string
	Message  string // last error or confirmation, shown in the middle
	IsError  bool
	Progress float64 // monthly budget used, drawn on the right when Target is set
	Target   bool
}

// RenderStatusBar renders the bottom status bar at the given width.
func RenderStatusBar(width int, s StatusBar) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	if s.IsError {
		msgStyle = msgStyle.Foreground(t.Expense).Bold(true)
	}

	left := base.Render(" " + s.Hints)
	if s.Message != "" {
		left += base.Render("  ") + msgStyle.Render(s.Message)
	}

	right := ""
	if s.Target {
		right = CompactBudgetBar("month", s.Progress, 24) + base.Render(" ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return left + base.Render(strings.Repeat(" ", padding)) + right
}
