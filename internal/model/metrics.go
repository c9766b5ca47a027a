package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailySpending is one bar of the 7-day spending chart.
type DailySpending struct {
	Label  string          `json:"label"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// DayGroup holds the transactions that fall on one calendar day.
type DayGroup struct {
	Date         time.Time     `json:"date"`
	Transactions []Transaction `json:"transactions"`
}

// DailyStatus classifies today's spending against the daily target.
type DailyStatus string

const (
	DailyUnset    DailyStatus = "unset"
	DailyExceeded DailyStatus = "exceeded"
	DailyOnTrack  DailyStatus = "on_track"
)

// BudgetStatus is a point-in-time snapshot of every derived budget metric.
type BudgetStatus struct {
	At                    time.Time       `json:"at"`
	TotalBalance          decimal.Decimal `json:"total_balance"`
	MonthlyTarget         decimal.Decimal `json:"monthly_target"`
	TodaysTotalSpending   decimal.Decimal `json:"todays_total_spending"`
	TodaysExpenseCount    int             `json:"todays_expense_count"`
	TotalSpentThisMonth   decimal.Decimal `json:"total_spent_this_month"`
	MonthExpenseCount     int             `json:"month_expense_count"`
	RemainingBudget       decimal.Decimal `json:"remaining_budget"`
	BudgetProgress        decimal.Decimal `json:"budget_progress"`
	TotalDaysInMonth      int             `json:"total_days_in_month"`
	DailyBudgetTarget     decimal.Decimal `json:"daily_budget_target"`
	IsDailyBudgetExceeded bool            `json:"is_daily_budget_exceeded"`
	DailyBudgetDifference decimal.Decimal `json:"daily_budget_difference"`
	DailyStatus           DailyStatus     `json:"daily_status"`
	Last7Days             []DailySpending `json:"last_7_days"`
}
