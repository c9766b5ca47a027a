package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/savemoney/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Fixed-width so that lexical order in SQL matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLite is a Store backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// Open opens or creates the ledger database at dbPath and migrates it.
func Open(dbPath string) (*SQLite, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	if err := Migrate(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close closes the database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Transactions returns all transactions ordered by date descending, then id.
func (s *SQLite) Transactions(ctx context.Context) ([]model.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, amount, date, type, category FROM transactions ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Transaction
	for rows.Next() {
		var (
			t        model.Transaction
			date     string
			typ      string
			category sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.Amount, &date, &typ, &category); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		t.Date, err = time.Parse(timeLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing date of %s: %w", t.ID, err)
		}
		t.Type = model.TransactionType(typ)
		if category.Valid {
			c := category.String
			t.Category = &c
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Settings returns the singleton settings row, or nil if it has not been written.
func (s *SQLite) Settings(ctx context.Context) (*model.BudgetSettings, error) {
	var (
		bs               model.BudgetSettings
		created, updated string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, total_balance, monthly_target, created_at, updated_at FROM budget_settings WHERE slot = 1`,
	).Scan(&bs.ID, &bs.TotalBalance, &bs.MonthlyTarget, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	if bs.CreatedAt, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if bs.UpdatedAt, err = time.Parse(timeLayout, updated); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &bs, nil
}

// Begin starts a write transaction.
func (s *SQLite) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning tx: %w", err)
	}
	return &sqliteTx{tx: tx}, nil
}

type sqliteTx struct {
	tx *sql.Tx
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func (t *sqliteTx) InsertTransaction(ctx context.Context, tr model.Transaction) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO transactions (id, name, amount, date, type, category) VALUES (?, ?, ?, ?, ?, ?)`,
		tr.ID, tr.Name, tr.Amount.String(), formatTime(tr.Date), string(tr.Type), nullableString(tr.Category),
	)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", tr.ID, err)
	}
	return nil
}

func (t *sqliteTx) UpdateTransaction(ctx context.Context, tr model.Transaction) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE transactions SET name = ?, amount = ?, date = ?, type = ?, category = ? WHERE id = ?`,
		tr.Name, tr.Amount.String(), formatTime(tr.Date), string(tr.Type), nullableString(tr.Category), tr.ID,
	)
	if err != nil {
		return fmt.Errorf("updating transaction %s: %w", tr.ID, err)
	}
	return requireRow(res, tr.ID)
}

func (t *sqliteTx) DeleteTransaction(ctx context.Context, id string) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting transaction %s: %w", id, err)
	}
	return requireRow(res, id)
}

func (t *sqliteTx) PutSettings(ctx context.Context, s model.BudgetSettings) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO budget_settings (slot, id, total_balance, monthly_target, created_at, updated_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			id = excluded.id,
			total_balance = excluded.total_balance,
			monthly_target = excluded.monthly_target,
			updated_at = excluded.updated_at`,
		s.ID, s.TotalBalance.String(), s.MonthlyTarget.String(), formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}
	return nil
}

func (t *sqliteTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

func (t *sqliteTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	return nil
}

