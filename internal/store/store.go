// Package store persists ledger transactions and the budget settings record.
package store

import (
	"context"
	"errors"

	"github.com/theirongolddev/savemoney/internal/model"
)

// ErrNotFound is returned when an update or delete targets a missing row.
var ErrNotFound = errors.New("record not found")

// Store is the persistence contract the ledger is written against.
// Reads observe committed state only.
type Store interface {
	// Transactions returns every transaction, newest first.
	Transactions(ctx context.Context) ([]model.Transaction, error)
	// Settings returns the singleton settings record, or nil if none exists.
	Settings(ctx context.Context) (*model.BudgetSettings, error)
	Begin(ctx context.Context) (Tx, error)
	Close() error
}

// Tx stages writes until Commit. Rollback after Commit is a no-op.
type Tx interface {
	InsertTransaction(ctx context.Context, t model.Transaction) error
	UpdateTransaction(ctx context.Context, t model.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	PutSettings(ctx context.Context, s model.BudgetSettings) error
	Commit() error
	Rollback() error
}
