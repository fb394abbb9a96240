/*
handlers.go - HTTP API handlers for the work log

PURPOSE:
  Exposes the work-time engine via a JSON API. Handles HTTP request and
  response, boundary validation, and delegates to worktime.

ENDPOINTS:
  Views:
    GET    /api/days/{date}              Day summary (shifts, totals, vacation flag)
    GET    /api/days/{date}/projection   Remaining minutes for a calendar cell
    GET    /api/range?start=&end=        Range summary (or ?start=&days=)
    GET    /api/weeks/{date}             Monday-start week vs. weekly cap
    GET    /api/months/{year}/{month}    Month statistics
    GET    /api/last7days                Range summary of the last 7 days
    GET    /api/cap                      Cap in force today

  Shifts:
    GET    /api/shifts                   All shifts, newest first
    POST   /api/shifts                   Save (insert, or update when id is set)
    DELETE /api/shifts/{id}              Delete
    POST   /api/shifts/import            Atomic batch insert
    GET    /api/shifts/search            Filter by company, dates, hours
    GET    /api/companies                Distinct company labels

  Vacations:
    PUT    /api/vacations/days/{date}    Toggle the per-day flag
    GET    /api/vacations/ranges         List ranges
    POST   /api/vacations/ranges         Add range
    DELETE /api/vacations/ranges/{id}    Delete range

  Settings:
    GET    /api/settings/{key}
    PUT    /api/settings/{key}

"TODAY":
  Endpoints that depend on the current day use Handler.Now; a ?today=
  query parameter overrides it so clients and tests can pin the clock.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Malformed path/query values
  - 404: Referenced shift or vacation range no longer exists
  - 422: Body validation errors, with a field -> message map
  - 500: Store failures (no partial result is returned)

SEE ALSO:
  - dto.go: Response structures
  - validate.go: Request structures and rules
  - export.go: CSV/XLSX export
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/warp/worklog-engine/worktime"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Backend is everything the handlers persist through.
type Backend interface {
	worktime.ImportStore
	worktime.VacationRegistry
	worktime.SettingsStore

	// Reset clears all data and restores default settings.
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     Backend
	Evaluator *worktime.Evaluator
	Reporter  *worktime.Reporter
	Logger    *slog.Logger

	// Compliance is optional; GET /api/compliance answers 404 without it.
	Compliance *ComplianceScheduler

	// Now is the clock used for "today"; defaults to time.Now.
	Now func() time.Time

	scenarioMu      sync.Mutex
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store Backend, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Store:     store,
		Evaluator: worktime.NewEvaluator(store, store),
		Reporter:  worktime.NewReporter(store, store, logger),
		Logger:    logger,
		Now:       time.Now,
	}
}

// today returns ?today= when given, otherwise the handler clock's day.
func (h *Handler) today(r *http.Request) (worktime.Date, error) {
	if s := r.URL.Query().Get("today"); s != "" {
		return worktime.ParseDate(s)
	}
	return worktime.DateOf(h.Now()), nil
}

// =============================================================================
// VIEW HANDLERS
// =============================================================================

// GetDay returns the shifts, totals and vacation flag of one day.
// GET /api/days/{date}
func (h *Handler) GetDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	summary, err := h.Reporter.DailySummary(r.Context(), date)
	if err != nil {
		h.writeStoreError(w, "Failed to load day", err)
		return
	}
	writeJSON(w, http.StatusOK, toDaySummaryDTO(summary))
}

// GetDayProjection returns what the calendar shows for a day.
// GET /api/days/{date}/projection
func (h *Handler) GetDayProjection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid today (use YYYY-MM-DD)", err)
		return
	}

	capMinutes, err := h.Evaluator.CurrentCap(ctx, today)
	if err != nil {
		h.writeStoreError(w, "Failed to resolve weekly cap", err)
		return
	}
	projection, err := h.Evaluator.ProjectDay(ctx, today, date, capMinutes)
	if err != nil {
		h.writeStoreError(w, "Failed to project day", err)
		return
	}
	writeJSON(w, http.StatusOK, toProjectionDTO(projection))
}

// GetRange returns the shifts and totals of a date range.
// GET /api/range?start=YYYY-MM-DD&end=YYYY-MM-DD
// GET /api/range?start=YYYY-MM-DD&days=N
func (h *Handler) GetRange(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" {
		writeError(w, http.StatusBadRequest, "Missing start", nil)
		return
	}
	start, err := worktime.ParseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start (use YYYY-MM-DD)", err)
		return
	}

	var period worktime.Period
	switch {
	case q.Get("end") != "":
		end, err := worktime.ParseDate(q.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end (use YYYY-MM-DD)", err)
			return
		}
		period = worktime.Period{Start: start, End: end}
	case q.Get("days") != "":
		days, err := strconv.Atoi(q.Get("days"))
		if err != nil || days < 1 {
			writeError(w, http.StatusBadRequest, "Invalid days (positive integer)", err)
			return
		}
		period = worktime.RangeFromDays(start, days)
	default:
		writeError(w, http.StatusBadRequest, "Missing end or days", nil)
		return
	}

	summary, err := h.Reporter.RangeSummary(r.Context(), period)
	if err != nil {
		h.writeStoreError(w, "Failed to load range", err)
		return
	}
	writeJSON(w, http.StatusOK, toRangeSummaryDTO(summary))
}

// GetWeek evaluates the Monday-start week containing the date.
// GET /api/weeks/{date}
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	status, err := h.Evaluator.EvaluateWeek(r.Context(), date)
	if err != nil {
		h.writeStoreError(w, "Failed to evaluate week", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekStatusDTO(status))
}

// GetMonth returns month statistics.
// GET /api/months/{year}/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}

	summary, err := h.Reporter.MonthSummary(r.Context(), year, month)
	if err != nil {
		h.writeStoreError(w, "Failed to load month", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthSummaryDTO(summary))
}

// GetLast7Days returns the range summary of the seven days ending today.
// GET /api/last7days
func (h *Handler) GetLast7Days(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid today (use YYYY-MM-DD)", err)
		return
	}

	summary, err := h.Reporter.Last7Days(r.Context(), today)
	if err != nil {
		h.writeStoreError(w, "Failed to load last 7 days", err)
		return
	}
	writeJSON(w, http.StatusOK, toRangeSummaryDTO(summary))
}

// GetCap returns the weekly cap in force today.
// GET /api/cap
func (h *Handler) GetCap(w http.ResponseWriter, r *http.Request) {
	today, err := h.today(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid today (use YYYY-MM-DD)", err)
		return
	}

	capMinutes, err := h.Evaluator.CurrentCap(r.Context(), today)
	if err != nil {
		h.writeStoreError(w, "Failed to resolve weekly cap", err)
		return
	}
	writeJSON(w, http.StatusOK, CapDTO{
		Today:      today.String(),
		CapMinutes: capMinutes,
		CapHours:   capMinutes / 60,
	})
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListShifts returns all shifts, newest first.
// GET /api/shifts
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.Store.AllShifts(r.Context())
	if err != nil {
		h.writeStoreError(w, "Failed to list shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"shifts": toShiftDTOs(shifts)})
}

// SaveShift inserts a shift, or updates it in place when an id is given.
// POST /api/shifts
func (h *Handler) SaveShift(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req SaveShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.fillDefaultRate(r, &req); err != nil {
		h.writeStoreError(w, "Failed to read default hourly rate", err)
		return
	}

	shift, err := req.Validate("")
	if err != nil {
		writeValidationError(w, err)
		return
	}

	id, err := h.Store.SaveShift(ctx, shift)
	if err != nil {
		h.writeStoreError(w, "Failed to save shift", err)
		return
	}
	shift.ID = id

	status := http.StatusCreated
	if req.ID.Set && !req.ID.Empty() {
		status = http.StatusOK
	}
	writeJSON(w, status, toShiftDTO(shift))
}

// DeleteShift removes a shift.
// DELETE /api/shifts/{id}
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteShift(r.Context(), id); err != nil {
		h.writeStoreError(w, "Failed to delete shift", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

// ImportShifts validates every row and inserts all of them atomically.
// POST /api/shifts/import
func (h *Handler) ImportShifts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.Shifts) == 0 {
		writeError(w, http.StatusBadRequest, "No shifts to import", nil)
		return
	}

	var errs ValidationErrors
	shifts := make([]worktime.Shift, 0, len(req.Shifts))
	for i := range req.Shifts {
		row := req.Shifts[i]
		row.ID = FormValue{}
		if err := h.fillDefaultRate(r, &row); err != nil {
			h.writeStoreError(w, "Failed to read default hourly rate", err)
			return
		}
		shift, err := row.Validate(fmt.Sprintf("shifts[%d].", i))
		if err != nil {
			var rowErrs ValidationErrors
			if errors.As(err, &rowErrs) {
				errs = append(errs, rowErrs...)
			}
			continue
		}
		shifts = append(shifts, shift)
	}
	if len(errs) > 0 {
		writeValidationError(w, errs)
		return
	}

	n, err := h.Store.ImportShifts(ctx, shifts)
	if err != nil {
		h.writeStoreError(w, "Failed to import shifts", err)
		return
	}
	h.Logger.Info("shifts imported", slog.Int("count", n))
	writeJSON(w, http.StatusCreated, map[string]any{"status": "imported", "count": n})
}

// SearchShifts filters all shifts and totals the matches.
// GET /api/shifts/search?company=&start=&end=&min_hours=&max_hours=
func (h *Handler) SearchShifts(w http.ResponseWriter, r *http.Request) {
	filter, err := searchFilterFromQuery(r)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	result, err := h.Reporter.Search(r.Context(), filter)
	if err != nil {
		h.writeStoreError(w, "Failed to search shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, toSearchResultDTO(result))
}

// ListCompanies returns the distinct company labels.
// GET /api/companies
func (h *Handler) ListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.Store.Companies(r.Context())
	if err != nil {
		h.writeStoreError(w, "Failed to list companies", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": companies})
}

// fillDefaultRate applies the hourly_rate setting to a request without a rate.
func (h *Handler) fillDefaultRate(r *http.Request, req *SaveShiftRequest) error {
	if !req.Hourly.Empty() {
		return nil
	}
	val, ok, err := h.Store.GetSetting(r.Context(), worktime.SettingHourlyRate)
	if err != nil {
		return err
	}
	if ok && val != "" {
		req.Hourly = Value(val)
	}
	return nil
}

// =============================================================================
// VACATION HANDLERS
// =============================================================================

// ToggleVacationDay sets or clears the vacation flag of a day.
// PUT /api/vacations/days/{date}
func (h *Handler) ToggleVacationDay(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r)
	if !ok {
		return
	}

	var req ToggleVacationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.Store.ToggleVacation(r.Context(), date, req.On); err != nil {
		h.writeStoreError(w, "Failed to toggle vacation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": date.String(), "vacation": req.On})
}

// ListVacationRanges returns all vacation ranges.
// GET /api/vacations/ranges
func (h *Handler) ListVacationRanges(w http.ResponseWriter, r *http.Request) {
	ranges, err := h.Store.ListVacationRanges(r.Context())
	if err != nil {
		h.writeStoreError(w, "Failed to list vacation ranges", err)
		return
	}

	dtos := make([]VacationRangeDTO, 0, len(ranges))
	for _, v := range ranges {
		dtos = append(dtos, toVacationRangeDTO(v))
	}
	writeJSON(w, http.StatusOK, map[string]any{"vacations": dtos})
}

// CreateVacationRange adds a vacation range.
// POST /api/vacations/ranges
func (h *Handler) CreateVacationRange(w http.ResponseWriter, r *http.Request) {
	var req VacationRangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	v, err := req.Validate()
	if err != nil {
		writeValidationError(w, err)
		return
	}

	id, err := h.Store.AddVacationRange(r.Context(), v)
	if err != nil {
		h.writeStoreError(w, "Failed to add vacation range", err)
		return
	}
	v.ID = id
	writeJSON(w, http.StatusCreated, toVacationRangeDTO(v))
}

// DeleteVacationRange removes a vacation range.
// DELETE /api/vacations/ranges/{id}
func (h *Handler) DeleteVacationRange(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}

	if err := h.Store.DeleteVacationRange(r.Context(), id); err != nil {
		h.writeStoreError(w, "Failed to delete vacation range", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "deleted", "id": id})
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSetting returns a setting.
// GET /api/settings/{key}
func (h *Handler) GetSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	val, ok, err := h.Store.GetSetting(r.Context(), key)
	if err != nil {
		h.writeStoreError(w, "Failed to read setting", err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "Setting not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, SettingDTO{Key: key, Value: val})
}

// PutSetting creates or replaces a setting.
// PUT /api/settings/{key}
func (h *Handler) PutSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if key == worktime.SettingHourlyRate {
		if _, ok := numberInRange(req.Value, 0, worktime.MaxHourlyRate); !ok {
			writeValidationError(w, ValidationErrors{{
				Field:   "value",
				Message: fmt.Sprintf("must be a number between 0 and %d", worktime.MaxHourlyRate),
			}})
			return
		}
	}

	if err := h.Store.SetSetting(r.Context(), key, req.Value); err != nil {
		h.writeStoreError(w, "Failed to save setting", err)
		return
	}
	writeJSON(w, http.StatusOK, SettingDTO{Key: key, Value: req.Value})
}

// =============================================================================
// READINESS
// =============================================================================

// Pinger is implemented by stores that hold a connection worth checking.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports whether the store answers. Stores without Ping are
// always ready.
// GET /ready
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.Store.(Pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			h.Logger.Error("store not ready", slog.String("error", err.Error()))
			writeError(w, http.StatusServiceUnavailable, "Store unavailable", nil)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var errs ValidationErrors
	if errors.As(err, &errs) {
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "Validation failed",
			Fields: errs.ToMap(),
		})
		return
	}
	writeError(w, http.StatusBadRequest, "Invalid request", err)
}

// writeStoreError maps engine and store errors to a status. Anything that
// is not a known client error is logged and reported as a 500.
func (h *Handler) writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case worktime.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case worktime.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		h.Logger.Error(message, slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, message, nil)
	}
}

func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request) (worktime.Date, bool) {
	d, err := worktime.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return worktime.Date{}, false
	}
	return d, true
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func monthParams(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	year, errY := strconv.Atoi(chi.URLParam(r, "year"))
	month, errM := strconv.Atoi(chi.URLParam(r, "month"))
	if errY != nil || errM != nil || year < 1 || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid year or month", nil)
		return 0, 0, false
	}
	return year, time.Month(month), true
}
