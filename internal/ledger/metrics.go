package ledger

import (
	"sort"
	"time"

	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/shopspring/decimal"
)

// All metric functions bucket by calendar day in now's location. Callers
// pass now already converted with In(loc).

const dayLayout = "2006-01-02"

// DefaultTodayLabel names the current day in Last7DaysSpending.
const DefaultTodayLabel = "Today"

func dayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayLayout)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// TodaysExpenses returns the expenses dated on now's calendar day.
func TodaysExpenses(txs []model.Transaction, now time.Time) []model.Transaction {
	today := dayKey(now, now.Location())
	var out []model.Transaction
	for _, t := range txs {
		if t.Type.IsExpense() && dayKey(t.Date, now.Location()) == today {
			out = append(out, t)
		}
	}
	return out
}

// TodaysTotalSpending sums today's expenses.
func TodaysTotalSpending(txs []model.Transaction, now time.Time) decimal.Decimal {
	return sumAmounts(TodaysExpenses(txs, now))
}

// ThisMonthsExpenses returns the expenses dated on or after the first of
// now's month. Future-dated expenses count toward the month.
func ThisMonthsExpenses(txs []model.Transaction, now time.Time) []model.Transaction {
	start := startOfMonth(now)
	var out []model.Transaction
	for _, t := range txs {
		if t.Type.IsExpense() && !t.Date.Before(start) {
			out = append(out, t)
		}
	}
	return out
}

// TotalSpentThisMonth sums this month's expenses.
func TotalSpentThisMonth(txs []model.Transaction, now time.Time) decimal.Decimal {
	return sumAmounts(ThisMonthsExpenses(txs, now))
}

// RemainingBudget is target minus spent, floored at zero.
func RemainingBudget(target, spent decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, target.Sub(spent))
}

// BudgetProgress is spent/target clamped to 1, or 0 when no target is set.
func BudgetProgress(target, spent decimal.Decimal) decimal.Decimal {
	if !target.IsPositive() {
		return decimal.Zero
	}
	return decimal.Min(decimal.NewFromInt(1), spent.Div(target))
}

// TotalDaysInMonth returns the number of days in now's month.
func TotalDaysInMonth(now time.Time) int {
	return time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
}

// DailyBudgetTarget spreads the monthly target evenly over the month.
func DailyBudgetTarget(target decimal.Decimal, now time.Time) decimal.Decimal {
	days := TotalDaysInMonth(now)
	if days == 0 {
		return decimal.Zero
	}
	return target.Div(decimal.NewFromInt(int64(days)))
}

// IsDailyBudgetExceeded never flags against a zero daily target.
func IsDailyBudgetExceeded(today, daily decimal.Decimal) bool {
	return daily.IsPositive() && today.GreaterThan(daily)
}

// DailyBudgetDifference is positive while under the daily target.
func DailyBudgetDifference(daily, today decimal.Decimal) decimal.Decimal {
	return daily.Sub(today)
}

// ClassifyDaily reduces today's position against the daily target to a status.
func ClassifyDaily(today, daily decimal.Decimal) model.DailyStatus {
	switch {
	case !daily.IsPositive():
		return model.DailyUnset
	case IsDailyBudgetExceeded(today, daily):
		return model.DailyExceeded
	default:
		return model.DailyOnTrack
	}
}

// Last7DaysSpending returns exactly seven entries, oldest first, ending on
// now's day. Incomes are excluded. The newest entry carries todayLabel and
// the rest carry abbreviated weekday names.
func Last7DaysSpending(txs []model.Transaction, now time.Time, todayLabel string) []model.DailySpending {
	if todayLabel == "" {
		todayLabel = DefaultTodayLabel
	}
	loc := now.Location()

	byDay := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if !t.Type.IsExpense() {
			continue
		}
		k := dayKey(t.Date, loc)
		byDay[k] = byDay[k].Add(t.Amount)
	}

	today := startOfDay(now)
	out := make([]model.DailySpending, 0, 7)
	for offset := 6; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		label := day.Format("Mon")
		if offset == 0 {
			label = todayLabel
		}
		out = append(out, model.DailySpending{
			Label:  label,
			Date:   day,
			Amount: byDay[day.Format(dayLayout)],
		})
	}
	return out
}

// RecentTransactions returns the first limit entries of a date-descending
// slice. A non-positive limit returns nothing.
func RecentTransactions(txs []model.Transaction, limit int) []model.Transaction {
	if limit <= 0 {
		return nil
	}
	if limit > len(txs) {
		limit = len(txs)
	}
	out := make([]model.Transaction, limit)
	copy(out, txs[:limit])
	return out
}

// GroupByDate buckets date-descending transactions by calendar day in loc.
// Groups come out newest day first; order inside a group is preserved.
func GroupByDate(txs []model.Transaction, loc *time.Location) []model.DayGroup {
	var groups []model.DayGroup
	index := make(map[string]int)
	for _, t := range txs {
		k := dayKey(t.Date, loc)
		i, ok := index[k]
		if !ok {
			d, _ := time.ParseInLocation(dayLayout, k, loc)
			groups = append(groups, model.DayGroup{Date: d})
			i = len(groups) - 1
			index[k] = i
		}
		groups[i].Transactions = append(groups[i].Transactions, t)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Date.After(groups[j].Date)
	})
	return groups
}

// Status computes every budget metric for one instant.
func Status(txs []model.Transaction, s model.BudgetSettings, now time.Time, todayLabel string) model.BudgetStatus {
	todays := TodaysExpenses(txs, now)
	month := ThisMonthsExpenses(txs, now)
	today := sumAmounts(todays)
	spent := sumAmounts(month)
	daily := DailyBudgetTarget(s.MonthlyTarget, now)

	return model.BudgetStatus{
		At:                    now,
		TotalBalance:          s.TotalBalance,
		MonthlyTarget:         s.MonthlyTarget,
		TodaysTotalSpending:   today,
		TodaysExpenseCount:    len(todays),
		TotalSpentThisMonth:   spent,
		MonthExpenseCount:     len(month),
		RemainingBudget:       RemainingBudget(s.MonthlyTarget, spent),
		BudgetProgress:        BudgetProgress(s.MonthlyTarget, spent),
		TotalDaysInMonth:      TotalDaysInMonth(now),
		DailyBudgetTarget:     daily,
		IsDailyBudgetExceeded: IsDailyBudgetExceeded(today, daily),
		DailyBudgetDifference: DailyBudgetDifference(daily, today),
		DailyStatus:           ClassifyDaily(today, daily),
		Last7Days:             Last7DaysSpending(txs, now, todayLabel),
	}
}

func sumAmounts(txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Amount)
	}
	return total
}
