// Package daemon runs the long-lived ledger monitor and its local HTTP API.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/theirongolddev/savemoney/internal/ledger"
	"github.com/theirongolddev/savemoney/internal/model"

	"github.com/gorilla/mux"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Event types.
const (
	EventSnapshot      = "snapshot"
	EventBudgetDelta   = "budget_delta"
	EventDailyExceeded = "daily_exceeded"
	EventDayRollover   = "day_rollover"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	DBPath       string
}

// Snapshot is a compact budget state for status and event payloads.
type Snapshot struct {
	At                  time.Time         `json:"at"`
	Transactions        int               `json:"transactions"`
	TotalBalance        decimal.Decimal   `json:"total_balance"`
	MonthlyTarget       decimal.Decimal   `json:"monthly_target"`
	TodaysTotalSpending decimal.Decimal   `json:"todays_total_spending"`
	TotalSpentThisMonth decimal.Decimal   `json:"total_spent_this_month"`
	RemainingBudget     decimal.Decimal   `json:"remaining_budget"`
	DailyBudgetTarget   decimal.Decimal   `json:"daily_budget_target"`
	DailyStatus         model.DailyStatus `json:"daily_status"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Transactions        int             `json:"transactions"`
	TotalBalance        decimal.Decimal `json:"total_balance"`
	MonthlyTarget       decimal.Decimal `json:"monthly_target"`
	TodaysTotalSpending decimal.Decimal `json:"todays_total_spending"`
	TotalSpentThisMonth decimal.Decimal `json:"total_spent_this_month"`
}

func (d Delta) isZero() bool {
	return d.Transactions == 0 &&
		d.TotalBalance.IsZero() &&
		d.MonthlyTarget.IsZero() &&
		d.TodaysTotalSpending.IsZero() &&
		d.TotalSpentThisMonth.IsZero()
}

// Event is emitted whenever the budget snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time          `json:"started_at"`
	LastPollAt      time.Time          `json:"last_poll_at"`
	PollIntervalSec int                `json:"poll_interval_sec"`
	PollCount       int64              `json:"poll_count"`
	DBPath          string             `json:"db_path,omitempty"`
	Summary         Snapshot           `json:"summary"`
	Budget          model.BudgetStatus `json:"budget"`
	LastError       string             `json:"last_error,omitempty"`
	EventCount      int                `json:"event_count"`
	SubscriberCount int                `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg Config
	log *logrus.Entry

	// ledgerMu serializes every ledger call; the ledger itself is single-writer.
	ledgerMu sync.Mutex
	ledger   *ledger.Ledger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	budget      model.BudgetStatus
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service over l.
func New(cfg Config, l *ledger.Ledger, log *logrus.Entry) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 10 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Service{
		cfg:       cfg,
		log:       log,
		ledger:    l,
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves the HTTP API, polls the ledger and schedules the midnight
// rollover until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	scheduler := cron.New(cron.WithLocation(s.ledger.Location()))
	if _, err := scheduler.AddFunc("0 0 * * *", func() { s.rollover(ctx) }); err != nil {
		return fmt.Errorf("scheduling day rollover: %w", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.WithField("addr", s.cfg.Addr).Info("daemon listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("daemon http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(s.cfg.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				s.pollOnce(gctx)
			}
		}
	})

	return g.Wait()
}

// Handler returns the daemon's HTTP routes.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/transactions", s.handleListTransactions).Methods(http.MethodGet)
	r.HandleFunc("/v1/transactions", s.handleAddTransaction).Methods(http.MethodPost)
	r.HandleFunc("/v1/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/stream", s.handleStream).Methods(http.MethodGet)
	return r
}

// pollOnce reloads the ledger and installs the new snapshot. ledgerMu is held
// until the snapshot's events are published, so concurrent polls install
// snapshots in the order they read the ledger.
func (s *Service) pollOnce(ctx context.Context) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	err := s.ledger.ReloadAll(ctx)
	var budget model.BudgetStatus
	var count int
	if err == nil {
		budget = s.ledger.Status()
		count = len(s.ledger.Transactions())
	}

	now := time.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.WithError(err).Warn("poll failed")
		return
	}

	snap := snapshotFromStatus(budget, count)

	var events []Event
	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.budget = budget
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		events = append(events, s.newEventLocked(EventSnapshot, now, snap, Delta{}))
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		events = append(events, s.newEventLocked(EventBudgetDelta, now, snap, delta))
		if prev.DailyStatus != model.DailyExceeded && snap.DailyStatus == model.DailyExceeded {
			events = append(events, s.newEventLocked(EventDailyExceeded, now, snap, delta))
		}
	}
	s.mu.Unlock()

	for _, ev := range events {
		s.publishEvent(ev)
	}
}

// rollover refreshes the snapshot at local midnight so day-scoped metrics
// reset, and announces the new day.
func (s *Service) rollover(ctx context.Context) {
	s.pollOnce(ctx)

	s.mu.Lock()
	ev := s.newEventLocked(EventDayRollover, time.Now(), s.snapshot, Delta{})
	s.mu.Unlock()

	s.log.Info("day rollover")
	s.publishEvent(ev)
}

func (s *Service) newEventLocked(typ string, at time.Time, snap Snapshot, delta Delta) Event {
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      typ,
		Timestamp: at,
		Snapshot:  snap,
		Delta:     delta,
	}
}

func snapshotFromStatus(st model.BudgetStatus, transactions int) Snapshot {
	return Snapshot{
		At:                  st.At,
		Transactions:        transactions,
		TotalBalance:        st.TotalBalance,
		MonthlyTarget:       st.MonthlyTarget,
		TodaysTotalSpending: st.TodaysTotalSpending,
		TotalSpentThisMonth: st.TotalSpentThisMonth,
		RemainingBudget:     st.RemainingBudget,
		DailyBudgetTarget:   st.DailyBudgetTarget,
		DailyStatus:         st.DailyStatus,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Transactions:        curr.Transactions - prev.Transactions,
		TotalBalance:        curr.TotalBalance.Sub(prev.TotalBalance),
		MonthlyTarget:       curr.MonthlyTarget.Sub(prev.MonthlyTarget),
		TodaysTotalSpending: curr.TodaysTotalSpending.Sub(prev.TodaysTotalSpending),
		TotalSpentThisMonth: curr.TotalSpentThisMonth.Sub(prev.TotalSpentThisMonth),
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		DBPath:          s.cfg.DBPath,
		Summary:         s.snapshot,
		Budget:          s.budget,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": ledger.ErrorText(err)})
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

func (s *Service) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	s.ledgerMu.Lock()
	var txs []model.Transaction
	if limit > 0 {
		txs = s.ledger.RecentTransactions(limit)
	} else {
		txs = s.ledger.Transactions()
	}
	s.ledgerMu.Unlock()

	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

type addRequest struct {
	Name     string                `json:"name"`
	Amount   decimal.Decimal       `json:"amount"`
	Type     model.TransactionType `json:"type"`
	Date     *time.Time            `json:"date,omitempty"`
	Category *string               `json:"category,omitempty"`
}

func (s *Service) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding request: %w", err))
		return
	}

	in := ledger.NewTransaction{
		Name:     req.Name,
		Amount:   req.Amount,
		Type:     req.Type,
		Category: req.Category,
	}
	if req.Date != nil {
		in.Date = *req.Date
	}

	s.ledgerMu.Lock()
	t, err := s.ledger.AddTransaction(r.Context(), in)
	s.ledgerMu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.pollOnce(r.Context())
	writeJSON(w, http.StatusCreated, t)
}

func (s *Service) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.ledgerMu.Lock()
	err := s.ledger.DeleteTransaction(r.Context(), id)
	s.ledgerMu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	s.pollOnce(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case ledger.IsStorageError(err):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
