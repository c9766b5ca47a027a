// Package ledger keeps the transaction ledger and the running balance
// consistent and derives budget metrics from them.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/savemoney/internal/model"
	"github.com/theirongolddev/savemoney/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Ledger is the service object callers mutate and query. It is not safe for
// concurrent mutation; callers serialize writes.
type Ledger struct {
	store         store.Store
	log           *logrus.Entry
	now           func() time.Time
	loc           *time.Location
	defaultTarget decimal.Decimal
	todayLabel    string

	txs      []model.Transaction
	settings model.BudgetSettings
	lastErr  string
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithLocation sets the zone calendar days are computed in.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

// WithLogger sets the log entry mutations are reported to.
func WithLogger(log *logrus.Entry) Option {
	return func(l *Ledger) { l.log = log }
}

// WithDefaultTarget sets the monthly target used when settings are first created.
func WithDefaultTarget(target decimal.Decimal) Option {
	return func(l *Ledger) { l.defaultTarget = target }
}

// WithTodayLabel sets the label used for the current day in 7-day views.
func WithTodayLabel(label string) Option {
	return func(l *Ledger) { l.todayLabel = label }
}

// Open loads the ledger from st, creating the settings record if missing.
func Open(ctx context.Context, st store.Store, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:         st,
		log:           logrus.NewEntry(logrus.StandardLogger()),
		now:           time.Now,
		loc:           time.Local,
		defaultTarget: model.DefaultMonthlyTarget,
		todayLabel:    DefaultTodayLabel,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.Reload(ctx); err != nil {
		return nil, err
	}

	existing, err := st.Settings(ctx)
	if err != nil {
		return nil, l.fail(&StorageError{Op: "load settings", Err: err})
	}
	if existing != nil {
		l.settings = *existing
		return l, nil
	}

	now := l.now()
	created := model.BudgetSettings{
		ID:            uuid.NewString(),
		TotalBalance:  decimal.Zero,
		MonthlyTarget: l.defaultTarget,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := l.commit(ctx, "create settings", func(tx store.Tx) error {
		return tx.PutSettings(ctx, created)
	}); err != nil {
		return nil, err
	}
	l.settings = created
	l.log.WithField("monthly_target", created.MonthlyTarget.String()).Info("created budget settings")
	return l, nil
}

// Reload replaces the transaction cache with the store's current contents.
func (l *Ledger) Reload(ctx context.Context) error {
	txs, err := l.store.Transactions(ctx)
	if err != nil {
		return l.fail(&StorageError{Op: "load transactions", Err: err})
	}
	l.txs = txs
	return nil
}

// ReloadAll refreshes both the transaction cache and the settings record.
func (l *Ledger) ReloadAll(ctx context.Context) error {
	if err := l.Reload(ctx); err != nil {
		return err
	}
	s, err := l.store.Settings(ctx)
	if err != nil {
		return l.fail(&StorageError{Op: "load settings", Err: err})
	}
	if s != nil {
		l.settings = *s
	}
	return nil
}

// NewTransaction describes a transaction to add. A zero Date means now.
type NewTransaction struct {
	Name     string
	Amount   decimal.Decimal
	Type     model.TransactionType
	Date     time.Time
	Category *string
}

// TransactionInput replaces every field of an existing transaction. A zero
// Date keeps the existing date. A nil or empty Category clears it.
type TransactionInput struct {
	Name     string
	Amount   decimal.Decimal
	Type     model.TransactionType
	Date     time.Time
	Category *string
}

// SettingsUpdate changes only the fields that are non-nil.
type SettingsUpdate struct {
	TotalBalance  *decimal.Decimal
	MonthlyTarget *decimal.Decimal
}

func validate(name string, amount decimal.Decimal, typ model.TransactionType) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !typ.Valid() {
		return ErrInvalidType
	}
	return nil
}

// AddTransaction records a new transaction and applies it to the balance.
func (l *Ledger) AddTransaction(ctx context.Context, in NewTransaction) (model.Transaction, error) {
	if err := validate(in.Name, in.Amount, in.Type); err != nil {
		return model.Transaction{}, l.fail(err)
	}

	now := l.now()
	t := model.Transaction{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(in.Name),
		Amount:   in.Amount,
		Date:     in.Date,
		Type:     in.Type,
		Category: normalizeCategory(in.Category),
	}
	if t.Date.IsZero() {
		t.Date = now
	}

	next := ApplyAdd(l.settings, t.Type, t.Amount, now)
	err := l.commit(ctx, "add transaction", func(tx store.Tx) error {
		if err := tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return tx.PutSettings(ctx, next)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	l.settings = next
	l.log.WithFields(logrus.Fields{
		"id":     t.ID,
		"type":   t.Type,
		"amount": t.Amount.String(),
	}).Debug("added transaction")
	return t, l.afterCommit(ctx)
}

// UpdateTransaction overwrites the transaction with id and rebalances by
// reversing its old effect before applying the new one.
func (l *Ledger) UpdateTransaction(ctx context.Context, id string, in TransactionInput) (model.Transaction, error) {
	existing, ok := l.Find(id)
	if !ok {
		return model.Transaction{}, l.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
	}
	if err := validate(in.Name, in.Amount, in.Type); err != nil {
		return model.Transaction{}, l.fail(err)
	}

	now := l.now()
	updated := model.Transaction{
		ID:       existing.ID,
		Name:     strings.TrimSpace(in.Name),
		Amount:   in.Amount,
		Date:     in.Date,
		Type:     in.Type,
		Category: normalizeCategory(in.Category),
	}
	if updated.Date.IsZero() {
		updated.Date = existing.Date
	}

	next := ApplyEdit(l.settings, existing.Type, existing.Amount, updated.Type, updated.Amount, now)
	err := l.commit(ctx, "update transaction", func(tx store.Tx) error {
		if err := tx.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		return tx.PutSettings(ctx, next)
	})
	if err != nil {
		return model.Transaction{}, err
	}

	l.settings = next
	l.log.WithField("id", id).Debug("updated transaction")
	return updated, l.afterCommit(ctx)
}

// DeleteTransaction removes the transaction with id and reverses its effect.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	return l.DeleteTransactions(ctx, id)
}

// DeleteTransactions removes several transactions in one commit. Unknown
// ids fail the whole batch before anything is written.
func (l *Ledger) DeleteTransactions(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	now := l.now()
	next := l.settings
	seen := make(map[string]bool, len(ids))
	var victims []model.Transaction
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		t, ok := l.Find(id)
		if !ok {
			return l.fail(fmt.Errorf("%w: %s", ErrNotFound, id))
		}
		next = ApplyRemove(next, t.Type, t.Amount, now)
		victims = append(victims, t)
	}

	err := l.commit(ctx, "delete transactions", func(tx store.Tx) error {
		for _, t := range victims {
			if err := tx.DeleteTransaction(ctx, t.ID); err != nil {
				return err
			}
		}
		return tx.PutSettings(ctx, next)
	})
	if err != nil {
		return err
	}

	l.settings = next
	l.log.WithField("count", len(victims)).Debug("deleted transactions")
	return l.afterCommit(ctx)
}

// UpdateBudgetSettings applies a partial settings update. Setting the
// balance is a hard reset that becomes the new baseline.
func (l *Ledger) UpdateBudgetSettings(ctx context.Context, u SettingsUpdate) (model.BudgetSettings, error) {
	if u.MonthlyTarget != nil && u.MonthlyTarget.IsNegative() {
		return l.settings, l.fail(ErrInvalidTarget)
	}

	next := l.settings
	if u.TotalBalance != nil {
		next.TotalBalance = *u.TotalBalance
	}
	if u.MonthlyTarget != nil {
		next.MonthlyTarget = *u.MonthlyTarget
	}
	next.UpdatedAt = l.now()

	if err := l.commit(ctx, "update settings", func(tx store.Tx) error {
		return tx.PutSettings(ctx, next)
	}); err != nil {
		return l.settings, err
	}

	l.settings = next
	l.log.WithFields(logrus.Fields{
		"total_balance":  next.TotalBalance.String(),
		"monthly_target": next.MonthlyTarget.String(),
	}).Debug("updated budget settings")
	return next, l.afterCommit(ctx)
}

// commit runs fn inside a store transaction. Any failure is returned as a
// *StorageError and nothing is written.
func (l *Ledger) commit(ctx context.Context, op string, fn func(store.Tx) error) error {
	tx, err := l.store.Begin(ctx)
	if err != nil {
		return l.fail(&StorageError{Op: op, Err: err})
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return l.fail(&StorageError{Op: op, Err: err})
	}
	if err := tx.Commit(); err != nil {
		return l.fail(&StorageError{Op: op, Err: err})
	}
	return nil
}

func (l *Ledger) afterCommit(ctx context.Context) error {
	if err := l.Reload(ctx); err != nil {
		return err
	}
	l.lastErr = ""
	return nil
}

func (l *Ledger) fail(err error) error {
	l.lastErr = ErrorText(err)
	if IsStorageError(err) {
		l.log.WithError(err).Error("ledger storage failure")
	}
	return err
}

// ErrorText renders err as a short user-facing message.
func ErrorText(err error) string {
	if err == nil {
		return ""
	}
	var se *StorageError
	if errors.As(err, &se) {
		return fmt.Sprintf("Could not %s: %v", se.Op, se.Err)
	}
	return err.Error()
}

// ErrorMessage is the user-facing text of the last failed operation, or ""
// if the most recent mutation succeeded.
func (l *Ledger) ErrorMessage() string {
	return l.lastErr
}

func normalizeCategory(c *string) *string {
	if c == nil {
		return nil
	}
	return model.StringPtr(*c)
}

// Transactions returns a copy of the cached transactions, newest first.
func (l *Ledger) Transactions() []model.Transaction {
	out := make([]model.Transaction, len(l.txs))
	copy(out, l.txs)
	return out
}

// Find looks a transaction up by id in the cache.
func (l *Ledger) Find(id string) (model.Transaction, bool) {
	for _, t := range l.txs {
		if t.ID == id {
			return t, true
		}
	}
	return model.Transaction{}, false
}

// RecentTransactions returns up to limit of the newest transactions.
func (l *Ledger) RecentTransactions(limit int) []model.Transaction {
	return RecentTransactions(l.txs, limit)
}

// TransactionsGroupedByDate groups the cache by local calendar day.
func (l *Ledger) TransactionsGroupedByDate() []model.DayGroup {
	return GroupByDate(l.txs, l.loc)
}

// Settings returns the current budget settings.
func (l *Ledger) Settings() model.BudgetSettings {
	return l.settings
}

// TotalBalance returns the running balance.
func (l *Ledger) TotalBalance() decimal.Decimal {
	return l.settings.TotalBalance
}

// MonthlyTarget returns the monthly spending target; zero means unset.
func (l *Ledger) MonthlyTarget() decimal.Decimal {
	return l.settings.MonthlyTarget
}

// Now returns the ledger clock's current time in the ledger location.
func (l *Ledger) Now() time.Time {
	return l.now().In(l.loc)
}

// Location returns the zone calendar days are computed in.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// Status computes every budget metric as of now.
func (l *Ledger) Status() model.BudgetStatus {
	return l.StatusAt(l.now())
}

// StatusAt computes every budget metric as of at.
func (l *Ledger) StatusAt(at time.Time) model.BudgetStatus {
	return Status(l.txs, l.settings, at.In(l.loc), l.todayLabel)
}

// Last7DaysSpending returns the 7-day expense series ending today.
func (l *Ledger) Last7DaysSpending() []model.DailySpending {
	return Last7DaysSpending(l.txs, l.Now(), l.todayLabel)
}
