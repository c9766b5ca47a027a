package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/logging"
	"github.com/theirongolddev/savemoney/internal/model"
	"github.com/theirongolddev/savemoney/internal/store"

	"github.com/shopspring/decimal"
)

func newTestService(t *testing.T, buffer int) *Service {
	t.Helper()
	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	l, err := ledger.Open(context.Background(), store.NewMemory(),
		ledger.WithClock(func() time.Time { return now }),
		ledger.WithLocation(time.UTC),
		ledger.WithLogger(logging.Component(logging.Discard(), "ledger")),
	)
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	return New(Config{Interval: 10 * time.Second, EventsBuffer: buffer}, l, logging.Component(logging.Discard(), "daemon"))
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{
		Transactions:        3,
		TotalBalance:        decimal.NewFromInt(1_000_000),
		TodaysTotalSpending: decimal.NewFromInt(10_000),
		TotalSpentThisMonth: decimal.NewFromInt(150_000),
	}
	curr := Snapshot{
		Transactions:        4,
		TotalBalance:        decimal.NewFromInt(975_000),
		TodaysTotalSpending: decimal.NewFromInt(35_000),
		TotalSpentThisMonth: decimal.NewFromInt(175_000),
	}

	delta := diffSnapshots(prev, curr)
	if delta.Transactions != 1 {
		t.Fatalf("Transactions delta = %d, want 1", delta.Transactions)
	}
	if !delta.TotalBalance.Equal(decimal.NewFromInt(-25_000)) {
		t.Fatalf("TotalBalance delta = %s, want -25000", delta.TotalBalance)
	}
	if !delta.TodaysTotalSpending.Equal(decimal.NewFromInt(25_000)) {
		t.Fatalf("TodaysTotalSpending delta = %s, want 25000", delta.TodaysTotalSpending)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("self delta not zero")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s := newTestService(t, 2)

	s.publishEvent(Event{ID: 1})
	s.publishEvent(Event{ID: 2})
	s.publishEvent(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsSnapshotThenDelta(t *testing.T) {
	s := newTestService(t, 10)
	ctx := context.Background()

	s.pollOnce(ctx)
	s.pollOnce(ctx) // unchanged: no event

	s.ledgerMu.Lock()
	if _, err := s.ledger.AddTransaction(ctx, ledger.NewTransaction{Name: "Dinner", Amount: decimal.NewFromInt(50_000), Type: model.Expense}); err != nil {
		t.Fatalf("AddTransaction: %v", err)
	}
	s.ledgerMu.Unlock()
	s.pollOnce(ctx)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) != 3 {
		t.Fatalf("events = %d, want 3 (snapshot, delta, exceeded)", len(s.events))
	}
	if s.events[0].Type != EventSnapshot || s.events[1].Type != EventBudgetDelta {
		t.Fatalf("event types = %q, %q", s.events[0].Type, s.events[1].Type)
	}
	// 50000 is above the 1000000/31 daily target.
	if s.events[2].Type != EventDailyExceeded {
		t.Fatalf("third event = %q, want %q", s.events[2].Type, EventDailyExceeded)
	}
	if s.pollCount != 3 {
		t.Fatalf("pollCount = %d, want 3", s.pollCount)
	}
}

func TestConcurrentPollsNeverInstallStaleSnapshot(t *testing.T) {
	s := newTestService(t, 1000)
	ctx := context.Background()
	s.pollOnce(ctx)

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.ledgerMu.Lock()
			_, err := s.ledger.AddTransaction(ctx, ledger.NewTransaction{Name: "Snack", Amount: decimal.NewFromInt(1_000), Type: model.Expense})
			s.ledgerMu.Unlock()
			if err != nil {
				t.Errorf("AddTransaction: %v", err)
			}
			s.pollOnce(ctx)
		}()
		go func() {
			defer wg.Done()
			s.pollOnce(ctx)
		}()
	}
	wg.Wait()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snapshot.Transactions != writers {
		t.Fatalf("final snapshot has %d transactions, want %d", s.snapshot.Transactions, writers)
	}
	last := 0
	for _, ev := range s.events {
		if ev.Type != EventBudgetDelta {
			continue
		}
		if ev.Delta.Transactions <= 0 {
			t.Fatalf("event %d has delta %d transactions; only additions happened", ev.ID, ev.Delta.Transactions)
		}
		if ev.Snapshot.Transactions <= last {
			t.Fatalf("event %d snapshot went from %d to %d transactions", ev.ID, last, ev.Snapshot.Transactions)
		}
		last = ev.Snapshot.Transactions
	}
}

func TestHTTPTransactions(t *testing.T) {
	s := newTestService(t, 10)
	s.pollOnce(context.Background())
	h := s.Handler()

	body := `{"name":"Coffee","amount":"18000","type":"expense","category":"food"}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/transactions", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created model.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/transactions", strings.NewReader(`{"name":"","amount":"1","type":"income"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid POST status = %d, want 400", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/transactions?limit=5", nil))
	var listed []model.Transaction
	if err := json.NewDecoder(rec.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/status", nil))
	var st Status
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !st.Summary.TotalBalance.Equal(decimal.NewFromInt(-18_000)) {
		t.Fatalf("status balance = %s, want -18000", st.Summary.TotalBalance)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/transactions/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/v1/transactions/"+created.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("second DELETE status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestService(t, 1)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", rec.Code, rec.Body.String())
	}
}
