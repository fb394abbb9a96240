/*
compliance.go - Weekly work-hour caps and remaining-time projection

PURPOSE:
  Decides which weekly ceiling applies and how close the user is to it.
  A week with ANY vacation-flagged day allows 40 hours, otherwise 28. The
  rule is a step function: one vacation day and seven vacation days give
  the same cap.

TWO WINDOWS, ON PURPOSE:
  EvaluateWeek:     Monday-start calendar week (WeekOf)
  ProjectRemaining: trailing 7 days ending at the target day (TrailingWindow)

  The projection answers "how much can I still work on this day" for the
  calendar view. It uses a single current cap computed once by the caller
  (CurrentCap), NOT a cap recomputed for each target day. A target day in a
  vacation week therefore still uses today's cap. This mirrors how the
  calendar has always behaved and is kept deliberately; see DESIGN.md.

EXAMPLE:
  ev := worktime.NewEvaluator(store, store)
  status, _ := ev.EvaluateWeek(ctx, worktime.MustParseDate("2024-06-12"))
  if status.OverLimit {
      fmt.Printf("%d minutes over\n", status.TotalMinutes-status.CapMinutes)
  }

  capMinutes, _ := ev.CurrentCap(ctx, today)
  remaining, _ := ev.ProjectRemaining(ctx, today.AddDays(3), capMinutes)

SEE ALSO:
  - period.go: WeekOf and TrailingWindow
  - accounting.go: Minutes per shift
*/
package worktime

import (
	"context"
	"fmt"
)

// =============================================================================
// CAPS
// =============================================================================

const (
	// StandardWeeklyCap applies to weeks without vacation: 28 hours.
	StandardWeeklyCap = 28 * 60
	// VacationWeeklyCap applies to weeks with at least one vacation day: 40 hours.
	VacationWeeklyCap = 40 * 60

	// ProjectionWindowDays is the length of the trailing window.
	ProjectionWindowDays = 7
	// ProjectionHorizonDays bounds how far ahead of today projections are shown.
	ProjectionHorizonDays = 14
)

// CapForVacationDays maps a vacation-day count to the weekly cap in minutes.
func CapForVacationDays(n int) int {
	if n > 0 {
		return VacationWeeklyCap
	}
	return StandardWeeklyCap
}

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator answers compliance questions from the stores.
type Evaluator struct {
	Shifts    ShiftStore
	Vacations VacationRegistry
}

func NewEvaluator(shifts ShiftStore, vacations VacationRegistry) *Evaluator {
	return &Evaluator{Shifts: shifts, Vacations: vacations}
}

// WeekStatus is the result of EvaluateWeek.
type WeekStatus struct {
	Period       Period
	TotalMinutes int
	CapMinutes   int
	VacationDays int
	OverLimit    bool
}

// WeeklyCap returns the cap for the given week range.
func (e *Evaluator) WeeklyCap(ctx context.Context, week Period) (int, error) {
	n, err := e.Vacations.CountVacationDays(ctx, week.Start, week.End)
	if err != nil {
		return 0, fmt.Errorf("count vacation days %s: %w", week, err)
	}
	return CapForVacationDays(n), nil
}

// EvaluateWeek totals the Monday-start week containing d and compares it
// with that week's cap.
func (e *Evaluator) EvaluateWeek(ctx context.Context, d Date) (WeekStatus, error) {
	week := WeekOf(d)

	shifts, err := e.Shifts.ShiftsBetween(ctx, week.Start, week.End)
	if err != nil {
		return WeekStatus{}, fmt.Errorf("load shifts %s: %w", week, err)
	}

	n, err := e.Vacations.CountVacationDays(ctx, week.Start, week.End)
	if err != nil {
		return WeekStatus{}, fmt.Errorf("count vacation days %s: %w", week, err)
	}

	total := TotalMinutes(shifts)
	capMinutes := CapForVacationDays(n)
	return WeekStatus{
		Period:       week,
		TotalMinutes: total,
		CapMinutes:   capMinutes,
		VacationDays: n,
		OverLimit:    total > capMinutes,
	}, nil
}

// CurrentCap is the cap in force on `today`. Today counts as vacation when
// it lies inside a vacation range or when its week holds a flagged day.
// Compute it once per request and pass it to ProjectRemaining.
func (e *Evaluator) CurrentCap(ctx context.Context, today Date) (int, error) {
	ranges, err := e.Vacations.ListVacationRanges(ctx)
	if err != nil {
		return 0, fmt.Errorf("list vacation ranges: %w", err)
	}
	for _, v := range ranges {
		if v.Covers(today) {
			return VacationWeeklyCap, nil
		}
	}
	return e.WeeklyCap(ctx, WeekOf(today))
}

// ProjectRemaining returns currentCap minus the minutes worked in the 7 days
// ending at target. The value is not clamped: zero or less means no more
// work fits on that day.
func (e *Evaluator) ProjectRemaining(ctx context.Context, target Date, currentCap int) (int, error) {
	window := TrailingWindow(target, ProjectionWindowDays)
	shifts, err := e.Shifts.ShiftsBetween(ctx, window.Start, window.End)
	if err != nil {
		return 0, fmt.Errorf("load shifts %s: %w", window, err)
	}
	return currentCap - TotalMinutes(shifts), nil
}

// =============================================================================
// DAY PROJECTION - The calendar cell
// =============================================================================

// DayProjection describes what the calendar shows for a day.
type DayProjection struct {
	Date       Date
	HasRecords bool
	Vacation   bool
	// Computed is true only for days without records that are 0..14 days
	// after today. RemainingMinutes is meaningful only then.
	Computed         bool
	RemainingMinutes int
	CapMinutes       int
}

// InHorizon reports whether target is 0..ProjectionHorizonDays days after today.
func InHorizon(today, target Date) bool {
	diff := DaysBetween(today, target)
	return diff >= 0 && diff <= ProjectionHorizonDays
}

// ProjectDay applies the calendar rules around ProjectRemaining: days that
// already have shifts, or that fall outside the horizon, only report their
// vacation flag.
func (e *Evaluator) ProjectDay(ctx context.Context, today, target Date, currentCap int) (DayProjection, error) {
	shifts, err := e.Shifts.ShiftsOn(ctx, target)
	if err != nil {
		return DayProjection{}, fmt.Errorf("load shifts %s: %w", target, err)
	}
	vacation, err := e.Vacations.IsVacation(ctx, target)
	if err != nil {
		return DayProjection{}, fmt.Errorf("vacation flag %s: %w", target, err)
	}

	p := DayProjection{
		Date:       target,
		HasRecords: len(shifts) > 0,
		Vacation:   vacation,
		CapMinutes: currentCap,
	}
	if p.HasRecords || !InHorizon(today, target) {
		return p, nil
	}

	remaining, err := e.ProjectRemaining(ctx, target, currentCap)
	if err != nil {
		return DayProjection{}, err
	}
	p.Computed = true
	p.RemainingMinutes = remaining
	return p, nil
}
