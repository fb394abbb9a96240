package worktime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/worktime"
	"github.com/warp/worklog-engine/worktime/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestEvaluator(t *testing.T) (*worktime.Evaluator, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return worktime.NewEvaluator(mem, mem), mem
}

func seed(t *testing.T, mem *store.Memory, shifts ...worktime.Shift) {
	t.Helper()
	_, err := mem.ImportShifts(context.Background(), shifts)
	require.NoError(t, err)
}

// fourShifts1700 returns 4 x 425 minutes Monday..Thursday of the week of 2024-06-10.
func fourShifts1700() []worktime.Shift {
	return []worktime.Shift{
		shift("2024-06-10", "08:00", "15:05", 0, 1000),
		shift("2024-06-11", "08:00", "15:05", 0, 1000),
		shift("2024-06-12", "08:00", "15:05", 0, 1000),
		shift("2024-06-13", "08:00", "15:05", 0, 1000),
	}
}

// =============================================================================
// CAPS
// =============================================================================

func TestCapForVacationDays_StepFunction(t *testing.T) {
	assert.Equal(t, 1680, worktime.CapForVacationDays(0))
	assert.Equal(t, 2400, worktime.CapForVacationDays(1))
	assert.Equal(t, 2400, worktime.CapForVacationDays(7))
}

func TestWeeklyCap_FromFlaggedDays(t *testing.T) {
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	week := worktime.WeekOf(worktime.MustParseDate("2024-06-12"))

	cap0, err := ev.WeeklyCap(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, worktime.StandardWeeklyCap, cap0)

	// A flag on Sunday still belongs to the week
	require.NoError(t, mem.ToggleVacation(ctx, week.End, true))
	cap1, err := ev.WeeklyCap(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, worktime.VacationWeeklyCap, cap1)

	for _, d := range week.Days() {
		require.NoError(t, mem.ToggleVacation(ctx, d, true))
	}
	cap7, err := ev.WeeklyCap(ctx, week)
	require.NoError(t, err)
	assert.Equal(t, worktime.VacationWeeklyCap, cap7)
}

// =============================================================================
// EVALUATE WEEK
// =============================================================================

func TestEvaluateWeek_OverStandardCap(t *testing.T) {
	// GIVEN: 1700 minutes in the week, no vacation
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	seed(t, mem, fourShifts1700()...)

	// WHEN: Evaluating from any day of that week
	status, err := ev.EvaluateWeek(ctx, worktime.MustParseDate("2024-06-16"))
	require.NoError(t, err)

	// THEN: Over the 28h cap
	assert.Equal(t, 1700, status.TotalMinutes)
	assert.Equal(t, 1680, status.CapMinutes)
	assert.Equal(t, 0, status.VacationDays)
	assert.True(t, status.OverLimit)
	assert.Equal(t, "2024-06-10", status.Period.Start.String())
}

func TestEvaluateWeek_VacationRaisesCap(t *testing.T) {
	// GIVEN: The same 1700 minutes, with one vacation day in the week
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	seed(t, mem, fourShifts1700()...)
	require.NoError(t, mem.ToggleVacation(ctx, worktime.MustParseDate("2024-06-14"), true))

	status, err := ev.EvaluateWeek(ctx, worktime.MustParseDate("2024-06-10"))
	require.NoError(t, err)

	// THEN: 40h cap applies and the week is compliant
	assert.Equal(t, 2400, status.CapMinutes)
	assert.Equal(t, 1, status.VacationDays)
	assert.False(t, status.OverLimit)
}

func TestEvaluateWeek_ExactlyAtCapIsNotOver(t *testing.T) {
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	seed(t, mem,
		shift("2024-06-10", "08:00", "15:00", 0, 1000),
		shift("2024-06-11", "08:00", "15:00", 0, 1000),
		shift("2024-06-12", "08:00", "15:00", 0, 1000),
		shift("2024-06-13", "08:00", "15:00", 0, 1000),
	)

	status, err := ev.EvaluateWeek(ctx, worktime.MustParseDate("2024-06-10"))
	require.NoError(t, err)
	assert.Equal(t, 1680, status.TotalMinutes)
	assert.False(t, status.OverLimit)
}

// =============================================================================
// CURRENT CAP
// =============================================================================

func TestCurrentCap(t *testing.T) {
	ctx := context.Background()
	today := worktime.MustParseDate("2024-06-12")

	t.Run("no vacation", func(t *testing.T) {
		ev, _ := newTestEvaluator(t)
		c, err := ev.CurrentCap(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 1680, c)
	})

	t.Run("range covering today", func(t *testing.T) {
		ev, mem := newTestEvaluator(t)
		_, err := mem.AddVacationRange(ctx, worktime.VacationRange{
			Start: today.AddDays(-2), End: today.AddDays(10),
		})
		require.NoError(t, err)

		c, err := ev.CurrentCap(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 2400, c)
	})

	t.Run("range not covering today", func(t *testing.T) {
		ev, mem := newTestEvaluator(t)
		_, err := mem.AddVacationRange(ctx, worktime.VacationRange{
			Start: today.AddDays(1), End: today.AddDays(10),
		})
		require.NoError(t, err)

		c, err := ev.CurrentCap(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 1680, c)
	})

	t.Run("flagged day in this week", func(t *testing.T) {
		ev, mem := newTestEvaluator(t)
		require.NoError(t, mem.ToggleVacation(ctx, today.AddDays(-2), true))

		c, err := ev.CurrentCap(ctx, today)
		require.NoError(t, err)
		assert.Equal(t, 2400, c)
	})
}

// =============================================================================
// PROJECTION
// =============================================================================

func TestProjectRemaining_UsesTrailingWindowNotWeek(t *testing.T) {
	// GIVEN: Shifts on the Sunday before and on the Monday itself
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	seed(t, mem,
		shift("2024-06-09", "08:00", "12:00", 0, 1000), // Sunday, previous week
		shift("2024-06-03", "08:00", "12:00", 0, 1000), // 7 days before target, outside window
	)

	// WHEN: Projecting Monday 2024-06-10
	remaining, err := ev.ProjectRemaining(ctx, worktime.MustParseDate("2024-06-10"), 1680)
	require.NoError(t, err)

	// THEN: Only the Sunday counts
	assert.Equal(t, 1680-240, remaining)
}

func TestProjectRemaining_NotClamped(t *testing.T) {
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	for i := 0; i < 5; i++ {
		seed(t, mem, shift(worktime.MustParseDate("2024-06-10").AddDays(i).String(), "08:00", "15:00", 30, 1000))
	}

	remaining, err := ev.ProjectRemaining(ctx, worktime.MustParseDate("2024-06-16"), 1680)
	require.NoError(t, err)
	assert.Equal(t, 1680-1950, remaining)
}

func TestProjectDay_HorizonAndRecords(t *testing.T) {
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	today := worktime.MustParseDate("2024-06-12")
	seed(t, mem, shift("2024-06-13", "09:00", "13:00", 0, 1000))
	require.NoError(t, mem.ToggleVacation(ctx, today.AddDays(3), true))

	tests := []struct {
		name     string
		target   worktime.Date
		computed bool
		records  bool
		vacation bool
	}{
		{"today", today, true, false, false},
		{"yesterday", today.AddDays(-1), false, false, false},
		{"day with records", today.AddDays(1), false, true, false},
		{"flagged day in horizon", today.AddDays(3), true, false, true},
		{"last day of horizon", today.AddDays(14), true, false, false},
		{"beyond horizon", today.AddDays(15), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ev.ProjectDay(ctx, today, tt.target, 1680)
			require.NoError(t, err)
			assert.Equal(t, tt.computed, p.Computed)
			assert.Equal(t, tt.records, p.HasRecords)
			assert.Equal(t, tt.vacation, p.Vacation)
			assert.Equal(t, 1680, p.CapMinutes)
		})
	}
}

func TestProjectDay_CapIsNotRecomputedPerDay(t *testing.T) {
	// GIVEN: A vacation range next week only
	ctx := context.Background()
	ev, mem := newTestEvaluator(t)
	today := worktime.MustParseDate("2024-06-12")
	_, err := mem.AddVacationRange(ctx, worktime.VacationRange{
		Start: worktime.MustParseDate("2024-06-17"), End: worktime.MustParseDate("2024-06-23"),
	})
	require.NoError(t, err)

	capMinutes, err := ev.CurrentCap(ctx, today)
	require.NoError(t, err)

	// WHEN: Projecting a day inside next week's vacation
	p, err := ev.ProjectDay(ctx, today, worktime.MustParseDate("2024-06-18"), capMinutes)
	require.NoError(t, err)

	// THEN: Today's standard cap is used
	assert.True(t, p.Computed)
	assert.Equal(t, 1680, p.RemainingMinutes)
}
