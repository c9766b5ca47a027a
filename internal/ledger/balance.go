package ledger

import (
	"time"

	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/shopspring/decimal"
)

// The Apply functions take settings by value and return the adjusted copy,
// so the caller decides when (and whether) the new balance takes effect.

func signed(typ model.TransactionType, amount decimal.Decimal) decimal.Decimal {
	if typ.IsExpense() {
		return amount.Neg()
	}
	return amount
}

// ApplyAdd adds the effect of a new transaction to the balance.
func ApplyAdd(s model.BudgetSettings, typ model.TransactionType, amount decimal.Decimal, now time.Time) model.BudgetSettings {
	s.TotalBalance = s.TotalBalance.Add(signed(typ, amount))
	s.UpdatedAt = now
	return s
}

// ApplyRemove undoes the effect of a transaction being deleted.
func ApplyRemove(s model.BudgetSettings, typ model.TransactionType, amount decimal.Decimal, now time.Time) model.BudgetSettings {
	s.TotalBalance = s.TotalBalance.Sub(signed(typ, amount))
	s.UpdatedAt = now
	return s
}

// ApplyEdit reverses the old effect completely and then applies the new one.
// The two steps must stay separate: a type change flips the sign of the
// contribution, which a single delta would get wrong.
func ApplyEdit(s model.BudgetSettings, oldType model.TransactionType, oldAmount decimal.Decimal, newType model.TransactionType, newAmount decimal.Decimal, now time.Time) model.BudgetSettings {
	s = ApplyRemove(s, oldType, oldAmount, now)
	return ApplyAdd(s, newType, newAmount, now)
}
