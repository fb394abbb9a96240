package worktime

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// NoCompanyLabel groups shifts saved without a company.
const NoCompanyLabel = "(no company)"

// =============================================================================
// REPORTER
// =============================================================================

// Reporter composes store reads and the accounting functions into the
// summaries the API and exports serve. It holds no state of its own.
type Reporter struct {
	Shifts    ShiftStore
	Vacations VacationRegistry
	Logger    *slog.Logger
}

func NewReporter(shifts ShiftStore, vacations VacationRegistry, logger *slog.Logger) *Reporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reporter{Shifts: shifts, Vacations: vacations, Logger: logger}
}

type DaySummary struct {
	Date     Date
	Shifts   []Shift
	Totals   Totals
	Vacation bool
}

type RangeSummary struct {
	Period Period
	Shifts []Shift
	Totals Totals
	Count  int
}

type MonthSummary struct {
	RangeSummary
	Year           int
	Month          time.Month
	DaysInMonth    int
	TotalHours     float64
	AvgHoursPerDay float64
	ByCompany      map[string]CompanyTotals
	WeekDays       map[int]int
}

type CompanyTotals struct {
	Minutes int
	Hours   float64
	Income  float64
}

// DailySummary returns one day's shifts, their totals and the vacation flag.
func (r *Reporter) DailySummary(ctx context.Context, d Date) (DaySummary, error) {
	shifts, err := r.Shifts.ShiftsOn(ctx, d)
	if err != nil {
		return DaySummary{}, fmt.Errorf("load shifts %s: %w", d, err)
	}
	vacation, err := r.Vacations.IsVacation(ctx, d)
	if err != nil {
		return DaySummary{}, fmt.Errorf("vacation flag %s: %w", d, err)
	}
	return DaySummary{
		Date:     d,
		Shifts:   shifts,
		Totals:   r.totals(shifts),
		Vacation: vacation,
	}, nil
}

// RangeSummary returns the shifts in p and their totals.
func (r *Reporter) RangeSummary(ctx context.Context, p Period) (RangeSummary, error) {
	if err := p.Validate(); err != nil {
		return RangeSummary{}, err
	}
	shifts, err := r.Shifts.ShiftsBetween(ctx, p.Start, p.End)
	if err != nil {
		return RangeSummary{}, fmt.Errorf("load shifts %s: %w", p, err)
	}
	return RangeSummary{
		Period: p,
		Shifts: shifts,
		Totals: r.totals(shifts),
		Count:  len(shifts),
	}, nil
}

// MonthSummary is RangeSummary over a calendar month plus the statistics
// view. AvgHoursPerDay divides by the calendar days of the month, not by
// days worked: it reports utilization of the whole month.
func (r *Reporter) MonthSummary(ctx context.Context, year int, month time.Month) (MonthSummary, error) {
	if month < time.January || month > time.December {
		return MonthSummary{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	rs, err := r.RangeSummary(ctx, MonthOf(year, month))
	if err != nil {
		return MonthSummary{}, err
	}

	days := DaysInMonth(year, month)
	hours := rs.Totals.Hours()
	return MonthSummary{
		RangeSummary:   rs,
		Year:           year,
		Month:          month,
		DaysInMonth:    days,
		TotalHours:     hours,
		AvgHoursPerDay: hours / float64(days),
		ByCompany:      GroupByCompany(rs.Shifts),
		WeekDays:       WeekdayDistribution(rs.Shifts),
	}, nil
}

// Last7Days is the range summary of the seven days ending today.
func (r *Reporter) Last7Days(ctx context.Context, today Date) (RangeSummary, error) {
	return r.RangeSummary(ctx, TrailingWindow(today, ProjectionWindowDays))
}

func (r *Reporter) totals(shifts []Shift) Totals {
	t := ComputeTotals(shifts)
	if t.Ignored > 0 {
		for _, s := range shifts {
			if _, err := WorkedMinutes(s); err != nil {
				r.Logger.Warn("shift ignored in totals",
					slog.Int64("shift_id", s.ID),
					slog.String("date", s.Date.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}
	return t
}

// =============================================================================
// GROUPINGS
// =============================================================================

// GroupByCompany sums hours and income per company label. Labels match
// exactly (case-sensitive); empty labels go under NoCompanyLabel.
func GroupByCompany(shifts []Shift) map[string]CompanyTotals {
	groups := make(map[string][]Shift)
	for _, s := range shifts {
		label := s.Company
		if label == "" {
			label = NoCompanyLabel
		}
		groups[label] = append(groups[label], s)
	}

	result := make(map[string]CompanyTotals, len(groups))
	for label, group := range groups {
		t := ComputeTotals(group)
		result[label] = CompanyTotals{
			Minutes: t.Minutes,
			Hours:   t.Hours(),
			Income:  t.Income,
		}
	}
	return result
}

// WeekdayDistribution counts distinct worked days per WeekNumber.
// Shifts from different years that share a week number are merged, as the
// statistics view only ever covers one month or a short range.
func WeekdayDistribution(shifts []Shift) map[int]int {
	seen := make(map[string]bool)
	result := make(map[int]int)
	for _, s := range shifts {
		day := s.Date.String()
		if seen[day] {
			continue
		}
		seen[day] = true
		result[WeekNumber(s.Date)]++
	}
	return result
}
