package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMonthlyTarget is used when the settings record is created lazily.
var DefaultMonthlyTarget = decimal.NewFromInt(1_000_000)

// BudgetSettings is the singleton record holding the running balance and the
// monthly spending target. A zero MonthlyTarget means no budget is set.
type BudgetSettings struct {
	ID            string          `json:"id"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	MonthlyTarget decimal.Decimal `json:"monthly_target"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
