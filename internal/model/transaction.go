// Package model defines domain types for savemoney ledgers and budget metrics.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType says which way a transaction moves the balance.
type TransactionType string

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// TransactionTypes lists every valid type, income first.
var TransactionTypes = []TransactionType{Income, Expense}

// IsExpense reports whether the type subtracts from the balance.
func (t TransactionType) IsExpense() bool {
	return t == Expense
}

// Valid reports whether t is one of the known types.
func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

// Label returns the display name for the type.
func (t TransactionType) Label() string {
	switch t {
	case Income:
		return "Income"
	case Expense:
		return "Expense"
	default:
		return string(t)
	}
}

// ParseTransactionType accepts the stored form plus a few common aliases.
func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "in", "i", "+":
		return Income, nil
	case "expense", "out", "e", "-":
		return Expense, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q (want income or expense)", s)
	}
}

// Transaction is a single income or expense record. Amount is always a
// positive magnitude; direction comes from Type.
type Transaction struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Date     time.Time       `json:"date"`
	Type     TransactionType `json:"type"`
	Category *string         `json:"category,omitempty"`
}

// Signed returns the amount with the sign it contributes to the balance.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type.IsExpense() {
		return t.Amount.Neg()
	}
	return t.Amount
}

// CategoryOr returns the category, or fallback when none is set.
func (t Transaction) CategoryOr(fallback string) string {
	if t.Category == nil || *t.Category == "" {
		return fallback
	}
	return *t.Category
}

// StringPtr returns nil for an empty (after trimming) string.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
