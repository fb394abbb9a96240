package worktime

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// DATE - Calendar day without a clock component
// =============================================================================

// DateLayout is the wire and storage format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day. Internally it is always midnight UTC so that
// day arithmetic never drifts across DST changes.
type Date struct {
	t time.Time
}

// NewDate builds a Date. Out-of-range values are normalized the way
// time.Date normalizes them (e.g. January 32 becomes February 1).
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a wall-clock time to its calendar day in t's location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string. Impossible dates such as
// 2024-02-30 are rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{t: t}, nil
}

// MustParseDate is ParseDate for literals in tests and fixtures.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.t.Year() }
func (d Date) Month() time.Month     { return d.t.Month() }
func (d Date) Day() int              { return d.t.Day() }
func (d Date) YearDay() int          { return d.t.YearDay() }
func (d Date) Weekday() time.Weekday { return d.t.Weekday() }
func (d Date) IsZero() bool          { return d.t.IsZero() }
func (d Date) Time() time.Time       { return d.t }

func (d Date) String() string { return d.t.Format(DateLayout) }

// MarshalText lets Date travel as "YYYY-MM-DD" in JSON.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// =============================================================================
// CLOCK - Time of day, minutes after midnight
// =============================================================================

// MinutesPerDay is the single day-wrap applied to shifts that end before
// they start.
const MinutesPerDay = 24 * 60

// ParseClock parses "HH:MM" (24-hour) into minutes after midnight.
// A one-digit hour is accepted; hours above 23 or minutes above 59 are not.
func ParseClock(s string) (int, error) {
	if len(s) < 4 || len(s) > 5 || s[len(s)-3] != ':' || !allDigits(s[:len(s)-3]) || !allDigits(s[len(s)-2:]) {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	h, _ := strconv.Atoi(s[:len(s)-3])
	m, _ := strconv.Atoi(s[len(s)-2:])
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return h*60 + m, nil
}

// allDigits rejects the signs strconv.Atoi would otherwise accept.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to Date) int { return int(to.t.Sub(from.t).Hours() / 24) }

func StartOfMonth(year int, month time.Month) Date { return NewDate(year, month, 1) }

func EndOfMonth(year int, month time.Month) Date { return NewDate(year, month+1, 0) }

func DaysInMonth(year int, month time.Month) int { return EndOfMonth(year, month).Day() }

// WeekNumber is the week-of-year used by the statistics view and the
// exports. It is NOT the ISO-8601 week: weeks are counted from January 1st
// of the date's own year, shifted by the weekday January 1st falls on
// (Sunday = 0), so week 1 may hold fewer than seven days.
func WeekNumber(d Date) int {
	jan1 := NewDate(d.Year(), time.January, 1)
	offset := d.YearDay() - 1 + int(jan1.Weekday()) + 1
	return (offset + 6) / 7
}
