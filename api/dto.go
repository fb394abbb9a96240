/*
dto.go - Data Transfer Objects for API responses

PURPOSE:
  Defines the JSON structures returned to clients and converts engine
  results into them. The engine never rounds; this is the one place where
  hours and income are rounded to two decimals for display.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients (validate.go)

SEE ALSO:
  - handlers.go: Uses these types
  - validate.go: Request types
*/
package api

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/warp/worklog-engine/worktime"
)

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ShiftDTO represents a shift with its derived minutes and income.
type ShiftDTO struct {
	ID            int64   `json:"id"`
	Date          string  `json:"date"`
	Start         string  `json:"start"`
	End           string  `json:"end"`
	BreakMin      int     `json:"break_min"`
	Hourly        float64 `json:"hourly"`
	Note          string  `json:"note"`
	Company       string  `json:"company"`
	WorkedMinutes int     `json:"worked_minutes"`
	Income        float64 `json:"income"`
}

// TotalsDTO carries DerivedTotals for display.
type TotalsDTO struct {
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	TotalIncome  float64 `json:"total_income"`
	Ignored      int     `json:"ignored,omitempty"`
}

type DaySummaryDTO struct {
	Date     string     `json:"date"`
	Shifts   []ShiftDTO `json:"shifts"`
	Vacation bool       `json:"vacation"`
	TotalsDTO
}

type RangeSummaryDTO struct {
	Start  string     `json:"start"`
	End    string     `json:"end"`
	Shifts []ShiftDTO `json:"shifts"`
	Count  int        `json:"count"`
	TotalsDTO
}

type CompanyTotalsDTO struct {
	Company string  `json:"company"`
	Minutes int     `json:"minutes"`
	Hours   float64 `json:"hours"`
	Income  float64 `json:"income"`
}

type WeekDaysDTO struct {
	Week int `json:"week"`
	Days int `json:"days"`
}

type MonthSummaryDTO struct {
	Year           int                `json:"year"`
	Month          int                `json:"month"`
	DaysInMonth    int                `json:"days_in_month"`
	AvgHoursPerDay float64            `json:"avg_hours_per_day"`
	Companies      []CompanyTotalsDTO `json:"companies"`
	WeekDays       []WeekDaysDTO      `json:"week_days"`
	RangeSummaryDTO
}

type WeekStatusDTO struct {
	Start        string  `json:"start"`
	End          string  `json:"end"`
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	CapMinutes   int     `json:"cap_minutes"`
	CapHours     int     `json:"cap_hours"`
	VacationDays int     `json:"vacation_days"`
	OverLimit    bool    `json:"over_limit"`
}

// ProjectionDTO is one calendar cell. RemainingMinutes is null when the
// projection was not computed.
type ProjectionDTO struct {
	Date             string `json:"date"`
	HasRecords       bool   `json:"has_records"`
	Vacation         bool   `json:"vacation"`
	Computed         bool   `json:"computed"`
	RemainingMinutes *int   `json:"remaining_minutes"`
	CapMinutes       int    `json:"cap_minutes"`
}

type SearchResultDTO struct {
	Shifts    []ShiftDTO `json:"shifts"`
	Count     int        `json:"count"`
	Companies []string   `json:"companies"`
	TotalsDTO
}

type CapDTO struct {
	Today      string `json:"today"`
	CapMinutes int    `json:"cap_minutes"`
	CapHours   int    `json:"cap_hours"`
}

type VacationRangeDTO struct {
	ID    int64  `json:"id"`
	Start string `json:"start"`
	End   string `json:"end"`
	Note  string `json:"note"`
}

type SettingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

func toShiftDTO(s worktime.Shift) ShiftDTO {
	return ShiftDTO{
		ID:            s.ID,
		Date:          s.Date.String(),
		Start:         s.Start,
		End:           s.End,
		BreakMin:      s.BreakMinutes,
		Hourly:        s.HourlyRate,
		Note:          s.Note,
		Company:       s.Company,
		WorkedMinutes: worktime.ShiftMinutes(s),
		Income:        round2(worktime.ShiftIncome(s)),
	}
}

func toShiftDTOs(shifts []worktime.Shift) []ShiftDTO {
	dtos := make([]ShiftDTO, 0, len(shifts))
	for _, s := range shifts {
		dtos = append(dtos, toShiftDTO(s))
	}
	return dtos
}

func toTotalsDTO(t worktime.Totals) TotalsDTO {
	return TotalsDTO{
		TotalMinutes: t.Minutes,
		TotalHours:   round2(t.Hours()),
		TotalIncome:  round2(t.Income),
		Ignored:      t.Ignored,
	}
}

func toDaySummaryDTO(s worktime.DaySummary) DaySummaryDTO {
	return DaySummaryDTO{
		Date:      s.Date.String(),
		Shifts:    toShiftDTOs(s.Shifts),
		Vacation:  s.Vacation,
		TotalsDTO: toTotalsDTO(s.Totals),
	}
}

func toRangeSummaryDTO(s worktime.RangeSummary) RangeSummaryDTO {
	return RangeSummaryDTO{
		Start:     s.Period.Start.String(),
		End:       s.Period.End.String(),
		Shifts:    toShiftDTOs(s.Shifts),
		Count:     s.Count,
		TotalsDTO: toTotalsDTO(s.Totals),
	}
}

func toMonthSummaryDTO(s worktime.MonthSummary) MonthSummaryDTO {
	companies := make([]CompanyTotalsDTO, 0, len(s.ByCompany))
	for name, t := range s.ByCompany {
		companies = append(companies, CompanyTotalsDTO{
			Company: name,
			Minutes: t.Minutes,
			Hours:   round2(t.Hours),
			Income:  round2(t.Income),
		})
	}
	sort.Slice(companies, func(i, j int) bool { return companies[i].Company < companies[j].Company })

	weeks := make([]WeekDaysDTO, 0, len(s.WeekDays))
	for week, n := range s.WeekDays {
		weeks = append(weeks, WeekDaysDTO{Week: week, Days: n})
	}
	sort.Slice(weeks, func(i, j int) bool { return weeks[i].Week < weeks[j].Week })

	return MonthSummaryDTO{
		Year:            s.Year,
		Month:           int(s.Month),
		DaysInMonth:     s.DaysInMonth,
		AvgHoursPerDay:  round2(s.AvgHoursPerDay),
		Companies:       companies,
		WeekDays:        weeks,
		RangeSummaryDTO: toRangeSummaryDTO(s.RangeSummary),
	}
}

func toWeekStatusDTO(w worktime.WeekStatus) WeekStatusDTO {
	return WeekStatusDTO{
		Start:        w.Period.Start.String(),
		End:          w.Period.End.String(),
		TotalMinutes: w.TotalMinutes,
		TotalHours:   round2(float64(w.TotalMinutes) / 60),
		CapMinutes:   w.CapMinutes,
		CapHours:     w.CapMinutes / 60,
		VacationDays: w.VacationDays,
		OverLimit:    w.OverLimit,
	}
}

func toProjectionDTO(p worktime.DayProjection) ProjectionDTO {
	dto := ProjectionDTO{
		Date:       p.Date.String(),
		HasRecords: p.HasRecords,
		Vacation:   p.Vacation,
		Computed:   p.Computed,
		CapMinutes: p.CapMinutes,
	}
	if p.Computed {
		remaining := p.RemainingMinutes
		dto.RemainingMinutes = &remaining
	}
	return dto
}

func toSearchResultDTO(r worktime.SearchResult) SearchResultDTO {
	return SearchResultDTO{
		Shifts:    toShiftDTOs(r.Shifts),
		Count:     len(r.Shifts),
		Companies: r.Companies,
		TotalsDTO: toTotalsDTO(r.Totals),
	}
}

func toVacationRangeDTO(v worktime.VacationRange) VacationRangeDTO {
	return VacationRangeDTO{
		ID:    v.ID,
		Start: v.Start.String(),
		End:   v.End.String(),
		Note:  v.Note,
	}
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ComplianceDTO is the latest scheduled weekly check.
type ComplianceDTO struct {
	CheckedAt string `json:"checked_at"`
	WeekStatusDTO
}
