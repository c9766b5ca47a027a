package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/shopspring/decimal"
)

func openSQLite(t *testing.T) Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func openMemory(t *testing.T) Store {
	t.Helper()
	return NewMemory()
}

var adapters = []struct {
	name string
	open func(*testing.T) Store
}{
	{"sqlite", openSQLite},
	{"memory", openMemory},
}

func tx(id, name, amount string, date time.Time, typ model.TransactionType, category *string) model.Transaction {
	return model.Transaction{
		ID:       id,
		Name:     name,
		Amount:   decimal.RequireFromString(amount),
		Date:     date,
		Type:     typ,
		Category: category,
	}
}

func commit(t *testing.T, s Store, fn func(Tx) error) {
	t.Helper()
	ctx := context.Background()
	w, err := s.Begin(ctx)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	defer func() { _ = w.Rollback() }()
	if err := fn(w); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
}

func TestTransactionsOrderedNewestFirst(t *testing.T) {
	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, a := range adapters {
		t.Run(a.name, func(t *testing.T) {
			s := a.open(t)
			ctx := context.Background()
			commit(t, s, func(w Tx) error {
				for _, tr := range []model.Transaction{
					tx("b", "Lunch", "25000", base, model.Expense, nil),
					tx("c", "Salary", "5000000", base.Add(-48*time.Hour), model.Income, nil),
					tx("a", "Coffee", "18000.5", base, model.Expense, model.StringPtr("food")),
					tx("d", "Taxi", "40000", base.Add(500*time.Millisecond), model.Expense, nil),
				} {
					if err := w.InsertTransaction(ctx, tr); err != nil {
						return err
					}
				}
				return nil
			})

			got, err := s.Transactions(ctx)
			if err != nil {
				t.Fatalf("Transactions: %v", err)
			}
			wantIDs := []string{"d", "a", "b", "c"}
			if len(got) != len(wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(wantIDs))
			}
			for i, id := range wantIDs {
				if got[i].ID != id {
					t.Fatalf("got[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
			if !got[1].Amount.Equal(decimal.RequireFromString("18000.5")) {
				t.Fatalf("amount = %s, want 18000.5", got[1].Amount)
			}
			if got[1].Category == nil || *got[1].Category != "food" {
				t.Fatalf("category = %v, want food", got[1].Category)
			}
			if got[2].Category != nil {
				t.Fatalf("category = %q, want nil", *got[2].Category)
			}
			if !got[0].Date.Equal(base.Add(500 * time.Millisecond)) {
				t.Fatalf("date = %v, want %v", got[0].Date, base.Add(500*time.Millisecond))
			}
		})
	}
}

func TestUpdateAndDeleteMissing(t *testing.T) {
	for _, a := range adapters {
		t.Run(a.name, func(t *testing.T) {
			s := a.open(t)
			ctx := context.Background()
			w, err := s.Begin(ctx)
			if err != nil {
				t.Fatalf("Begin: %v", err)
			}
			defer func() { _ = w.Rollback() }()

			err = w.UpdateTransaction(ctx, tx("nope", "x", "1", time.Now(), model.Income, nil))
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("UpdateTransaction err = %v, want ErrNotFound", err)
			}
			if err := w.DeleteTransaction(ctx, "nope"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("DeleteTransaction err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestRollbackDiscardsWrites(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for _, a := range adapters {
		t.Run(a.name, func(t *testing.T) {
			s := a.open(t)
			ctx := context.Background()
			w, err := s.Begin(ctx)
			if err != nil {
				t.Fatalf("Begin: %v", err)
			}
			if err := w.InsertTransaction(ctx, tx("a", "Lunch", "1", now, model.Expense, nil)); err != nil {
				t.Fatalf("InsertTransaction: %v", err)
			}
			if err := w.PutSettings(ctx, model.BudgetSettings{ID: "s", CreatedAt: now, UpdatedAt: now}); err != nil {
				t.Fatalf("PutSettings: %v", err)
			}
			if err := w.Rollback(); err != nil {
				t.Fatalf("Rollback: %v", err)
			}

			got, err := s.Transactions(ctx)
			if err != nil {
				t.Fatalf("Transactions: %v", err)
			}
			if len(got) != 0 {
				t.Fatalf("len = %d after rollback, want 0", len(got))
			}
			settings, err := s.Settings(ctx)
			if err != nil {
				t.Fatalf("Settings: %v", err)
			}
			if settings != nil {
				t.Fatalf("settings = %+v after rollback, want nil", settings)
			}
		})
	}
}

func TestSettingsSingletonUpsert(t *testing.T) {
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(72 * time.Hour)
	for _, a := range adapters {
		t.Run(a.name, func(t *testing.T) {
			s := a.open(t)
			ctx := context.Background()

			if got, err := s.Settings(ctx); err != nil || got != nil {
				t.Fatalf("Settings on empty store = %+v, %v; want nil, nil", got, err)
			}

			commit(t, s, func(w Tx) error {
				return w.PutSettings(ctx, model.BudgetSettings{
					ID:            "first",
					TotalBalance:  decimal.NewFromInt(0),
					MonthlyTarget: decimal.NewFromInt(1_000_000),
					CreatedAt:     created,
					UpdatedAt:     created,
				})
			})
			commit(t, s, func(w Tx) error {
				return w.PutSettings(ctx, model.BudgetSettings{
					ID:            "first",
					TotalBalance:  decimal.NewFromInt(-2500),
					MonthlyTarget: decimal.NewFromInt(3_000_000),
					CreatedAt:     updated,
					UpdatedAt:     updated,
				})
			})

			got, err := s.Settings(ctx)
			if err != nil {
				t.Fatalf("Settings: %v", err)
			}
			if !got.TotalBalance.Equal(decimal.NewFromInt(-2500)) {
				t.Fatalf("TotalBalance = %s, want -2500", got.TotalBalance)
			}
			if !got.MonthlyTarget.Equal(decimal.NewFromInt(3_000_000)) {
				t.Fatalf("MonthlyTarget = %s, want 3000000", got.MonthlyTarget)
			}
			if !got.CreatedAt.Equal(created) {
				t.Fatalf("CreatedAt = %v, want %v (kept from first write)", got.CreatedAt, created)
			}
			if !got.UpdatedAt.Equal(updated) {
				t.Fatalf("UpdatedAt = %v, want %v", got.UpdatedAt, updated)
			}
		})
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("Open #%d: %v", i+1, err)
		}
		_ = s.Close()
	}
}
