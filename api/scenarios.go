/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	shifts and vacations for demos and manual testing. Every scenario is
	laid out relative to the Monday-start week containing "today", so the
	calendar and cap views always have something to show.

AVAILABLE SCENARIOS:

	empty:          Clean store, default settings only
	standard-week:  Five 5.5h day shifts, under the 28h cap
	over-limit:     Five 6.5h day shifts, over the 28h cap
	vacation-week:  Same hours as over-limit, but a vacation range raises the cap to 40h
	night-shifts:   Overnight shifts for two companies

HOW SCENARIOS WORK:
 1. Reset the store (clear all data, re-seed settings)
 2. Insert shifts via ImportShifts
 3. Optionally flag vacation days and add vacation ranges

USAGE VIA API:

	GET  /api/scenarios
	POST /api/scenarios/load   {"scenario_id": "over-limit", "today": "2024-06-12"}
	POST /api/scenarios/reset

NOTE:

	Scenarios reset the store. Only mount these routes in development.

SEE ALSO:
  - server.go: Routes are mounted only when RouterOptions.Scenarios is set
  - handlers.go: Backend.Reset
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/warp/worklog-engine/worktime"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "empty",
		Name:        "Empty",
		Description: "No shifts, no vacations, default hourly rate",
	},
	{
		ID:          "standard-week",
		Name:        "Standard Week",
		Description: "Monday to Friday, 09:00-15:00 with a 30 minute break (27.5h)",
	},
	{
		ID:          "over-limit",
		Name:        "Over Limit",
		Description: "Monday to Friday, 08:00-15:00 with a 30 minute break (32.5h > 28h cap)",
	},
	{
		ID:          "vacation-week",
		Name:        "Vacation Week",
		Description: "Over-limit hours inside a vacation range (40h cap)",
	},
	{
		ID:          "night-shifts",
		Name:        "Night Shifts",
		Description: "Overnight 22:00-06:00 shifts for two companies",
	},
}

type scenarioLoader func(ctx context.Context, h *Handler, monday worktime.Date) error

var scenarioLoaders = map[string]scenarioLoader{
	"empty":         func(context.Context, *Handler, worktime.Date) error { return nil },
	"standard-week": loadStandardWeekScenario,
	"over-limit":    loadOverLimitScenario,
	"vacation-week": loadVacationWeekScenario,
	"night-shifts":  loadNightShiftsScenario,
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	current := h.currentScenario
	h.scenarioMu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id"`
		Today      string `json:"today"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown scenario", nil)
		return
	}

	today := worktime.DateOf(h.Now())
	if req.Today != "" {
		d, err := worktime.ParseDate(req.Today)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid today (use YYYY-MM-DD)", err)
			return
		}
		today = d
	}

	ctx := r.Context()

	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(ctx); err != nil {
		h.writeStoreError(w, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""

	if err := load(ctx, h, worktime.WeekOf(today).Start); err != nil {
		h.writeStoreError(w, fmt.Sprintf("Failed to load scenario %s", req.ScenarioID), err)
		return
	}
	h.currentScenario = req.ScenarioID

	h.Logger.Info("scenario loaded", "scenario", req.ScenarioID, "week", worktime.WeekOf(today).String())
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.ScenarioID})
}

// ResetStore clears all data.
func (h *Handler) ResetStore(w http.ResponseWriter, r *http.Request) {
	h.scenarioMu.Lock()
	defer h.scenarioMu.Unlock()

	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeStoreError(w, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// weekdayShifts builds one identical shift for each day Monday..Friday.
func weekdayShifts(monday worktime.Date, start, end string, breakMin int, company string) []worktime.Shift {
	shifts := make([]worktime.Shift, 0, 5)
	for i := 0; i < 5; i++ {
		shifts = append(shifts, worktime.Shift{
			Date:         monday.AddDays(i),
			Start:        start,
			End:          end,
			BreakMinutes: breakMin,
			HourlyRate:   1000,
			Company:      company,
		})
	}
	return shifts
}

func loadStandardWeekScenario(ctx context.Context, h *Handler, monday worktime.Date) error {
	_, err := h.Store.ImportShifts(ctx, weekdayShifts(monday, "09:00", "15:00", 30, "Acme"))
	return err
}

func loadOverLimitScenario(ctx context.Context, h *Handler, monday worktime.Date) error {
	_, err := h.Store.ImportShifts(ctx, weekdayShifts(monday, "08:00", "15:00", 30, "Acme"))
	return err
}

func loadVacationWeekScenario(ctx context.Context, h *Handler, monday worktime.Date) error {
	if err := loadOverLimitScenario(ctx, h, monday); err != nil {
		return err
	}
	if err := h.Store.ToggleVacation(ctx, monday.AddDays(5), true); err != nil {
		return err
	}
	_, err := h.Store.AddVacationRange(ctx, worktime.VacationRange{
		Start: monday,
		End:   monday.AddDays(13),
		Note:  "Summer break",
	})
	return err
}

func loadNightShiftsScenario(ctx context.Context, h *Handler, monday worktime.Date) error {
	shifts := []worktime.Shift{
		{Date: monday, Start: "22:00", End: "06:00", BreakMinutes: 30, HourlyRate: 1200, Company: "Nightline", Note: "warehouse"},
		{Date: monday.AddDays(2), Start: "22:00", End: "06:00", BreakMinutes: 30, HourlyRate: 1200, Company: "Nightline"},
		{Date: monday.AddDays(3), Start: "10:00", End: "14:00", HourlyRate: 1000, Company: "Acme"},
		{Date: monday.AddDays(4), Start: "23:30", End: "03:30", BreakMinutes: 15, HourlyRate: 1200, Company: "Nightline"},
	}
	_, err := h.Store.ImportShifts(ctx, shifts)
	return err
}
