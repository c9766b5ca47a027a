package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/savemoney/internal/cli"
	"github.com/theirongolddev/savemoney/internal/model"
	"github.com/theirongolddev/savemoney/internal/tui/components"
	"github.com/theirongolddev/savemoney/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderDashboardTab(cw int) string {
	status := a.ledger.Status()
	var b strings.Builder

	// Row 1: metric cards
	balanceTone := components.ToneIncome
	if status.TotalBalance.IsNegative() {
		balanceTone = components.ToneExpense
	}
	todayTone := components.ToneNeutral
	todayNote := "no daily target"
	switch status.DailyStatus {
	case model.DailyExceeded:
		todayTone = components.ToneExpense
		todayNote = "over by " + cli.FormatMoney(status.DailyBudgetDifference.Abs(), a.money)
	case model.DailyOnTrack:
		todayNote = cli.FormatMoney(status.DailyBudgetDifference, a.money) + " left today"
	}
	remainingTone := components.ToneNeutral
	if status.MonthlyTarget.IsPositive() && status.RemainingBudget.IsZero() {
		remainingTone = components.ToneWarning
	}

	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Balance", Value: cli.FormatMoney(status.TotalBalance, a.money), Tone: balanceTone},
		{Label: "Spent today", Value: cli.FormatMoney(status.TodaysTotalSpending, a.money), Note: todayNote, Tone: todayTone},
		{Label: "Spent this month", Value: cli.FormatMoney(status.TotalSpentThisMonth, a.money),
			Note: fmt.Sprintf("%d expenses", status.MonthExpenseCount)},
		{Label: "Remaining", Value: cli.FormatMoney(status.RemainingBudget, a.money),
			Note: "of " + cli.FormatMoney(status.MonthlyTarget, a.money), Tone: remainingTone},
	}, cw))
	b.WriteString("\n")

	// Row 2: monthly budget
	b.WriteString(components.ContentCard("Monthly budget", a.renderBudgetBody(status, components.CardInnerWidth(cw)), cw, false))
	b.WriteString("\n")

	// Row 3: last 7 days + recent transactions
	if a.isCompactLayout() {
		b.WriteString(a.renderWeekCard(status, cw, 6))
		b.WriteString("\n")
		b.WriteString(a.renderRecentCard(cw))
	} else {
		halves := components.LayoutRow(cw, 2)
		b.WriteString(components.CardRow([]string{
			a.renderWeekCard(status, halves[0], 8),
			a.renderRecentCard(halves[1]),
		}))
	}

	return b.String()
}

func (a App) renderBudgetBody(status model.BudgetStatus, innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	if !status.MonthlyTarget.IsPositive() {
		return muted.Render("No monthly target set. Press x to open Settings.")
	}

	labelW := 8
	barW := max(10, innerW-labelW-6)
	var b strings.Builder
	b.WriteString(components.BudgetBar(status.At.Format("January"), status.BudgetProgress.InexactFloat64(), labelW, barW))
	b.WriteString("\n")

	daily := fmt.Sprintf("Daily target %s over %d days",
		cli.FormatMoney(status.DailyBudgetTarget, a.money), status.TotalDaysInMonth)
	b.WriteString(muted.Render(daily))
	if status.IsDailyBudgetExceeded {
		b.WriteString(muted.Render(" · "))
		b.WriteString(warn.Render("today is over target"))
	}
	return b.String()
}

func (a App) renderWeekCard(status model.BudgetStatus, w, chartH int) string {
	values := make([]float64, len(status.Last7Days))
	labels := make([]string, len(status.Last7Days))
	for i, d := range status.Last7Days {
		values[i] = d.Amount.InexactFloat64()
		labels[i] = d.Label
	}
	title := "Last 7 days"
	if total := sumSpending(status.Last7Days); total.IsPositive() {
		title = fmt.Sprintf("Last 7 days (%s)", cli.FormatShortMoney(total))
	}
	chart := components.SpendingChart(values, labels, status.DailyBudgetTarget.InexactFloat64(),
		components.CardInnerWidth(w), chartH)
	return components.ContentCard(title, chart, w, false)
}

func (a App) renderRecentCard(w int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	text := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	recent := a.ledger.RecentTransactions(a.cfg.General.RecentLimit)
	if len(recent) == 0 {
		return components.ContentCard("Recent", muted.Render("No transactions yet. Press a to add one."), w, false)
	}

	innerW := components.CardInnerWidth(w)
	now := a.ledger.Now()
	var b strings.Builder
	for i, tx := range recent {
		amount := a.renderSignedAmount(tx)
		local := tx.Date.In(now.Location())
		when := local.Format("02 Jan")
		if now.Sub(local) < 48*time.Hour {
			when = cli.SectionHeader(local, now, a.cfg.Display.TodayLabel) + local.Format(" 15:04")
		}
		nameW := max(4, innerW-lipgloss.Width(amount)-1)
		b.WriteString(text.Render(fmt.Sprintf("%-*s", nameW, truncStr(tx.Name, nameW))))
		b.WriteString(muted.Render(" "))
		b.WriteString(amount)
		b.WriteString("\n")
		b.WriteString(muted.Render(truncStr(when+"  "+tx.CategoryOr(""), innerW)))
		if i < len(recent)-1 {
			b.WriteString("\n")
		}
	}
	return components.ContentCard("Recent", b.String(), w, false)
}

// renderSignedAmount draws an amount with its sign in the income or expense color.
func (a App) renderSignedAmount(tx model.Transaction) string {
	t := theme.Active
	color := t.Income
	if tx.Type.IsExpense() {
		color = t.Expense
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Bold(true).
		Render(cli.FormatSignedMoney(tx.Amount, tx.Type.IsExpense(), a.money))
}

func sumSpending(days []model.DailySpending) decimal.Decimal {
	total := decimal.Zero
	for _, d := range days {
		total = total.Add(d.Amount)
	}
	return total
}
