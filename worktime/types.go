/*
Package worktime is the time-accounting and compliance engine.

PURPOSE:
  Turns raw shift records into worked minutes and income, decides which
  weekly work-hour cap applies, and projects how much time is left before
  that cap is reached. Storage, HTTP and export are thin layers around it.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift: One recorded work session (date, start/end, break, rate)
  - VacationRange: A user-facing vacation span with a note
  - Totals: Derived minutes/income for any set of shifts (never stored)

DESIGN PRINCIPLES:
  1. Pure computation: accounting.go has no I/O and no globals
  2. Explicit inputs: the current cap is a value passed in, not a flag
  3. Degrade, don't fail: an unparsable time is zero minutes, not an error
  4. Validation lives at the request boundary (api/validate.go), not here

USAGE:
  minutes := worktime.ShiftMinutes(worktime.Shift{
      Date:         worktime.MustParseDate("2024-06-10"),
      Start:        "22:00",
      End:          "06:00",
      BreakMinutes: 30,
  }) // 450

SEE ALSO:
  - accounting.go: Minutes and totals
  - compliance.go: Weekly caps and projections
  - report.go: Day/range/month summaries
  - store.go: Persistence contracts
*/
package worktime

// =============================================================================
// SHIFT - One recorded work session
// =============================================================================

// Shift is a stored work record. Start and End are kept as the raw HH:MM
// strings they were saved with; an End earlier than Start means the shift
// runs past midnight.
type Shift struct {
	ID           int64
	Date         Date
	Start        string
	End          string
	BreakMinutes int
	HourlyRate   float64
	Company      string
	Note         string
}

// Limits enforced at the request boundary.
const (
	MaxBreakMinutes = 480
	MaxHourlyRate   = 10000
)

// =============================================================================
// VACATIONS
// =============================================================================

// VacationRange is a vacation span shown on the vacation calendar. It is
// stored separately from the per-day vacation flags that drive the weekly cap.
type VacationRange struct {
	ID    int64
	Start Date
	End   Date
	Note  string
}

// Covers reports whether d falls inside the range.
func (v VacationRange) Covers(d Date) bool {
	return Period{Start: v.Start, End: v.End}.Contains(d)
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingHourlyRate holds the default hourly rate used when a save request
// omits one.
const SettingHourlyRate = "hourly_rate"

// DefaultHourlyRate is seeded into the settings on first start.
const DefaultHourlyRate = "1000"

// =============================================================================
// TOTALS - Derived, never persisted
// =============================================================================

// Totals is the sum over a set of shifts.
type Totals struct {
	Minutes int
	Income  float64
	// Ignored counts records whose start or end did not parse and were
	// therefore counted as zero minutes.
	Ignored int
}

// Hours returns Minutes as fractional hours.
func (t Totals) Hours() float64 {
	return float64(t.Minutes) / 60
}
