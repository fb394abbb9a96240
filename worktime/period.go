package worktime

import "time"

// =============================================================================
// PERIOD - Inclusive date range used for every aggregation
// =============================================================================

// Period is the inclusive range [Start, End].
//
// Examples:
//   - Week of 2024-12-31: 2024-12-30 - 2025-01-05
//   - Trailing window for 2024-06-10: 2024-06-04 - 2024-06-10
//   - January 2024: 2024-01-01 - 2024-01-31
type Period struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains returns true if the date is within the period [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns all days in the period.
func (p Period) Days() []Date {
	var days []Date
	for current := p.Start; current.BeforeOrEqual(p.End); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Len is the number of calendar days in the period.
func (p Period) Len() int {
	if p.End.Before(p.Start) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

// Validate rejects periods whose end is before their start.
func (p Period) Validate() error {
	if p.End.Before(p.Start) {
		return ErrInvalidPeriod
	}
	return nil
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// PERIOD CALCULATORS
// =============================================================================

// WeekOf returns the Monday-start week containing d: Monday through the
// following Sunday, inclusive.
func WeekOf(d Date) Period {
	// time.Weekday counts from Sunday = 0; shift so Monday = 0.
	sinceMonday := (int(d.Weekday()) + 6) % 7
	start := d.AddDays(-sinceMonday)
	return Period{Start: start, End: start.AddDays(6)}
}

// TrailingWindow returns the `days` calendar days ending at d, inclusive.
// It slides with d and is unrelated to the Monday-start week.
func TrailingWindow(d Date, days int) Period {
	return Period{Start: d.AddDays(-(days - 1)), End: d}
}

// MonthOf returns the first through last day of the given month.
func MonthOf(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// RangeFromDays returns the period of `days` days starting at start.
// days < 1 yields a single-day period.
func RangeFromDays(start Date, days int) Period {
	if days < 1 {
		days = 1
	}
	return Period{Start: start, End: start.AddDays(days - 1)}
}
