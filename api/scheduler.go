/*
scheduler.go - Periodic weekly-limit check

PURPOSE:
  Periodically evaluates the Monday-start week containing today against
  the weekly cap and logs a warning when it is exceeded. The latest result
  is kept for GET /api/compliance so a dashboard can poll it cheaply.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Checks once immediately on start
  - Only logs at warn level when the over-limit state changes

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewComplianceScheduler(evaluator, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - worktime/compliance.go: EvaluateWeek
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/warp/worklog-engine/worktime"
)

// ComplianceScheduler periodically checks the current week.
type ComplianceScheduler struct {
	Evaluator     *worktime.Evaluator
	Logger        *slog.Logger
	CheckInterval time.Duration
	Enabled       bool
	Now           func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex

	latestMu  sync.RWMutex
	latest    *worktime.WeekStatus
	checkedAt time.Time
}

// NewComplianceScheduler creates a new scheduler.
func NewComplianceScheduler(evaluator *worktime.Evaluator, logger *slog.Logger) *ComplianceScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ComplianceScheduler{
		Evaluator:     evaluator,
		Logger:        logger,
		CheckInterval: time.Hour,
		Enabled:       true,
		Now:           time.Now,
	}
}

// Start begins the scheduler.
func (cs *ComplianceScheduler) Start() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if !cs.Enabled {
		cs.Logger.Info("compliance scheduler disabled")
		return
	}
	if cs.ticker != nil {
		return
	}

	cs.ticker = time.NewTicker(cs.CheckInterval)
	cs.stop = make(chan struct{})
	cs.wg.Add(1)

	go cs.run(cs.ticker, cs.stop)

	cs.Logger.Info("compliance scheduler started", slog.Duration("interval", cs.CheckInterval))
}

// Stop stops the scheduler and waits for an in-flight check.
func (cs *ComplianceScheduler) Stop() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.ticker == nil {
		return
	}
	cs.ticker.Stop()
	close(cs.stop)
	cs.wg.Wait()
	cs.ticker = nil
	cs.Logger.Info("compliance scheduler stopped")
}

func (cs *ComplianceScheduler) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer cs.wg.Done()

	cs.RunNow(context.Background())

	for {
		select {
		case <-ticker.C:
			cs.RunNow(context.Background())
		case <-stop:
			return
		}
	}
}

// RunNow evaluates the current week and records the result.
func (cs *ComplianceScheduler) RunNow(ctx context.Context) (worktime.WeekStatus, error) {
	now := cs.Now()
	status, err := cs.Evaluator.EvaluateWeek(ctx, worktime.DateOf(now))
	if err != nil {
		cs.Logger.Error("weekly check failed", slog.String("error", err.Error()))
		return worktime.WeekStatus{}, err
	}

	cs.latestMu.Lock()
	wasOver := cs.latest != nil && cs.latest.OverLimit && cs.latest.Period.Start.Equal(status.Period.Start)
	cs.latest = &status
	cs.checkedAt = now
	cs.latestMu.Unlock()

	if status.OverLimit && !wasOver {
		cs.Logger.Warn("weekly limit exceeded",
			slog.String("week", status.Period.String()),
			slog.Int("total_minutes", status.TotalMinutes),
			slog.Int("cap_minutes", status.CapMinutes),
		)
	}
	return status, nil
}

// Latest returns the most recent result, if any.
func (cs *ComplianceScheduler) Latest() (worktime.WeekStatus, time.Time, bool) {
	cs.latestMu.RLock()
	defer cs.latestMu.RUnlock()

	if cs.latest == nil {
		return worktime.WeekStatus{}, time.Time{}, false
	}
	return *cs.latest, cs.checkedAt, true
}

// GetCompliance returns the scheduler's latest check, running one if none
// has happened yet.
// GET /api/compliance
func (h *Handler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	if h.Compliance == nil {
		writeError(w, http.StatusNotFound, "Compliance scheduler not configured", nil)
		return
	}

	status, checkedAt, ok := h.Compliance.Latest()
	if !ok {
		var err error
		status, err = h.Compliance.RunNow(r.Context())
		if err != nil {
			h.writeStoreError(w, "Failed to evaluate week", err)
			return
		}
		_, checkedAt, _ = h.Compliance.Latest()
	}

	writeJSON(w, http.StatusOK, ComplianceDTO{
		CheckedAt:     checkedAt.UTC().Format(time.RFC3339),
		WeekStatusDTO: toWeekStatusDTO(status),
	})
}
