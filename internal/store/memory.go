package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/theirongolddev/savemoney/internal/model"
)

var errTxDone = errors.New("transaction already committed or rolled back")

// Memory is an in-process Store. Writes staged in a Tx become visible
// atomically on Commit.
type Memory struct {
	mu       sync.RWMutex
	txs      map[string]model.Transaction
	settings *model.BudgetSettings
}

var _ Store = (*Memory)(nil)

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{txs: make(map[string]model.Transaction)}
}

func (m *Memory) Transactions(_ context.Context) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.Transaction, 0, len(m.txs))
	for _, t := range m.txs {
		out = append(out, cloneTransaction(t))
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *Memory) Settings(_ context.Context) (*model.BudgetSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.settings == nil {
		return nil, nil
	}
	s := *m.settings
	return &s, nil
}

func (m *Memory) Begin(_ context.Context) (Tx, error) {
	return &memoryTx{store: m, puts: make(map[string]model.Transaction), deletes: make(map[string]bool)}, nil
}

func (m *Memory) Close() error { return nil }

type memoryTx struct {
	store    *Memory
	puts     map[string]model.Transaction
	deletes  map[string]bool
	settings *model.BudgetSettings
	done     bool
}

// exists reports whether id is visible from inside the transaction.
func (t *memoryTx) exists(id string) bool {
	if t.deletes[id] {
		return false
	}
	if _, ok := t.puts[id]; ok {
		return true
	}
	t.store.mu.RLock()
	_, ok := t.store.txs[id]
	t.store.mu.RUnlock()
	return ok
}

func (t *memoryTx) InsertTransaction(_ context.Context, tr model.Transaction) error {
	if t.done {
		return errTxDone
	}
	if t.exists(tr.ID) {
		return fmt.Errorf("inserting transaction %s: duplicate id", tr.ID)
	}
	delete(t.deletes, tr.ID)
	t.puts[tr.ID] = cloneTransaction(tr)
	return nil
}

func (t *memoryTx) UpdateTransaction(_ context.Context, tr model.Transaction) error {
	if t.done {
		return errTxDone
	}
	if !t.exists(tr.ID) {
		return fmt.Errorf("transaction %s: %w", tr.ID, ErrNotFound)
	}
	t.puts[tr.ID] = cloneTransaction(tr)
	return nil
}

func (t *memoryTx) DeleteTransaction(_ context.Context, id string) error {
	if t.done {
		return errTxDone
	}
	if !t.exists(id) {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	delete(t.puts, id)
	t.deletes[id] = true
	return nil
}

func (t *memoryTx) PutSettings(_ context.Context, s model.BudgetSettings) error {
	if t.done {
		return errTxDone
	}
	t.settings = &s
	return nil
}

func (t *memoryTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true

	m := t.store
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range t.deletes {
		delete(m.txs, id)
	}
	for id, tr := range t.puts {
		m.txs[id] = tr
	}
	if t.settings != nil {
		s := *t.settings
		if m.settings != nil {
			s.CreatedAt = m.settings.CreatedAt
		}
		m.settings = &s
	}
	return nil
}

func (t *memoryTx) Rollback() error {
	t.done = true
	return nil
}

func cloneTransaction(t model.Transaction) model.Transaction {
	if t.Category != nil {
		c := *t.Category
		t.Category = &c
	}
	return t
}

func sortNewestFirst(ts []model.Transaction) {
	sort.Slice(ts, func(i, j int) bool {
		if !ts[i].Date.Equal(ts[j].Date) {
			return ts[i].Date.After(ts[j].Date)
		}
		return ts[i].ID < ts[j].ID
	})
}
