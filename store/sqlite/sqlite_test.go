package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/worklog-engine/store/sqlite"
	"github.com/warp/worklog-engine/worktime"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testShift(date, start, end string) worktime.Shift {
	return worktime.Shift{
		Date:         worktime.MustParseDate(date),
		Start:        start,
		End:          end,
		BreakMinutes: 30,
		HourlyRate:   1000,
	}
}

// =============================================================================
// SHIFTS
// =============================================================================

func TestSaveShift_RoundTrip(t *testing.T) {
	// GIVEN: A shift with every field set
	ctx := context.Background()
	store := newTestStore(t)
	in := worktime.Shift{
		Date:         worktime.MustParseDate("2024-06-10"),
		Start:        "22:00",
		End:          "06:00",
		BreakMinutes: 30,
		HourlyRate:   1234.5,
		Company:      "Acme",
		Note:         "night",
	}

	// WHEN: Saving and reading it back
	id, err := store.SaveShift(ctx, in)
	require.NoError(t, err)
	require.NotZero(t, id)

	got, err := store.ShiftsOn(ctx, in.Date)
	require.NoError(t, err)

	// THEN: Every field survives unchanged
	require.Len(t, got, 1)
	in.ID = id
	assert.Equal(t, in.ID, got[0].ID)
	assert.True(t, in.Date.Equal(got[0].Date))
	assert.Equal(t, in.Start, got[0].Start)
	assert.Equal(t, in.End, got[0].End)
	assert.Equal(t, in.BreakMinutes, got[0].BreakMinutes)
	assert.Equal(t, in.HourlyRate, got[0].HourlyRate)
	assert.Equal(t, in.Company, got[0].Company)
	assert.Equal(t, in.Note, got[0].Note)
	assert.Equal(t, 450, worktime.ShiftMinutes(got[0]))
}

func TestSaveShift_UpdateInPlace(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.SaveShift(ctx, testShift("2024-06-10", "09:00", "17:00"))
	require.NoError(t, err)

	updated := testShift("2024-06-11", "10:00", "12:00")
	updated.ID = id
	gotID, err := store.SaveShift(ctx, updated)
	require.NoError(t, err)
	assert.Equal(t, id, gotID)

	all, err := store.AllShifts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "2024-06-11", all[0].Date.String())
	assert.Equal(t, "10:00", all[0].Start)
}

func TestSaveShift_UpdateMissingIsNotFound(t *testing.T) {
	store := newTestStore(t)
	s := testShift("2024-06-10", "09:00", "17:00")
	s.ID = 42

	_, err := store.SaveShift(context.Background(), s)

	assert.ErrorIs(t, err, worktime.ErrShiftNotFound)
	assert.True(t, worktime.IsNotFound(err))
}

func TestDeleteShift(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id, err := store.SaveShift(ctx, testShift("2024-06-10", "09:00", "17:00"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteShift(ctx, id))

	err = store.DeleteShift(ctx, id)
	assert.ErrorIs(t, err, worktime.ErrShiftNotFound)
}

func TestShiftOrdering(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.ImportShifts(ctx, []worktime.Shift{
		testShift("2024-06-11", "13:00", "14:00"),
		testShift("2024-06-10", "13:00", "14:00"),
		testShift("2024-06-11", "08:00", "09:00"),
		testShift("2024-06-20", "08:00", "09:00"),
	})
	require.NoError(t, err)

	between, err := store.ShiftsBetween(ctx, worktime.MustParseDate("2024-06-10"), worktime.MustParseDate("2024-06-11"))
	require.NoError(t, err)
	require.Len(t, between, 3)
	assert.Equal(t, "2024-06-10 13:00", between[0].Date.String()+" "+between[0].Start)
	assert.Equal(t, "2024-06-11 08:00", between[1].Date.String()+" "+between[1].Start)
	assert.Equal(t, "2024-06-11 13:00", between[2].Date.String()+" "+between[2].Start)

	all, err := store.AllShifts(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2024-06-20", all[0].Date.String())
	assert.Equal(t, "13:00", all[1].Start)
	assert.Equal(t, "2024-06-10", all[3].Date.String())
}

func TestImportShifts_AllOrNothing(t *testing.T) {
	// GIVEN: A batch whose third row violates a column constraint
	ctx := context.Background()
	store := newTestStore(t)
	bad := testShift("2024-06-12", "09:00", "10:00")
	bad.BreakMinutes = -1

	// WHEN: Importing the batch
	n, err := store.ImportShifts(ctx, []worktime.Shift{
		testShift("2024-06-10", "09:00", "10:00"),
		testShift("2024-06-11", "09:00", "10:00"),
		bad,
	})

	// THEN: Nothing was written
	require.Error(t, err)
	assert.Equal(t, 0, n)
	all, err := store.AllShifts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCompanies(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	shifts := []worktime.Shift{
		testShift("2024-06-10", "09:00", "10:00"),
		testShift("2024-06-11", "09:00", "10:00"),
		testShift("2024-06-12", "09:00", "10:00"),
		testShift("2024-06-13", "09:00", "10:00"),
	}
	shifts[0].Company = "Zeta"
	shifts[1].Company = "Acme"
	shifts[2].Company = "Acme"
	_, err := store.ImportShifts(ctx, shifts)
	require.NoError(t, err)

	companies, err := store.Companies(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Zeta"}, companies)
}

// =============================================================================
// VACATIONS
// =============================================================================

func TestToggleVacation_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	d := worktime.MustParseDate("2024-06-12")

	require.NoError(t, store.ToggleVacation(ctx, d, true))
	require.NoError(t, store.ToggleVacation(ctx, d, true))
	on, err := store.IsVacation(ctx, d)
	require.NoError(t, err)
	assert.True(t, on)

	n, err := store.CountVacationDays(ctx, d.AddDays(-2), d.AddDays(4))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, store.ToggleVacation(ctx, d, false))
	require.NoError(t, store.ToggleVacation(ctx, d, false))
	on, err = store.IsVacation(ctx, d)
	require.NoError(t, err)
	assert.False(t, on)
}

func TestVacationRanges(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id1, err := store.AddVacationRange(ctx, worktime.VacationRange{
		Start: worktime.MustParseDate("2024-07-01"),
		End:   worktime.MustParseDate("2024-07-14"),
		Note:  "summer",
	})
	require.NoError(t, err)
	id2, err := store.AddVacationRange(ctx, worktime.VacationRange{
		Start: worktime.MustParseDate("2024-12-23"),
		End:   worktime.MustParseDate("2025-01-02"),
	})
	require.NoError(t, err)

	ranges, err := store.ListVacationRanges(ctx)
	require.NoError(t, err)
	require.Len(t, ranges, 2)
	assert.Equal(t, id2, ranges[0].ID)
	assert.Equal(t, "summer", ranges[1].Note)

	require.NoError(t, store.DeleteVacationRange(ctx, id1))
	err = store.DeleteVacationRange(ctx, id1)
	assert.ErrorIs(t, err, worktime.ErrVacationRangeNotFound)

	// Ranges do not flag days
	on, err := store.IsVacation(ctx, worktime.MustParseDate("2024-12-24"))
	require.NoError(t, err)
	assert.False(t, on)
}

// =============================================================================
// SETTINGS / MIGRATION
// =============================================================================

func TestSettings_SeededAndUpserted(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	val, ok, err := store.GetSetting(ctx, worktime.SettingHourlyRate)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1000", val)

	require.NoError(t, store.SetSetting(ctx, worktime.SettingHourlyRate, "1500"))
	val, _, err = store.GetSetting(ctx, worktime.SettingHourlyRate)
	require.NoError(t, err)
	assert.Equal(t, "1500", val)

	_, ok, err = store.GetSetting(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, store.SetSetting(ctx, " ", "x"))
}

func TestReopen_KeepsDataAndSettings(t *testing.T) {
	// GIVEN: A file database with a shift and a changed setting
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "worklog.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	_, err = store.SaveShift(ctx, testShift("2024-06-10", "09:00", "17:00"))
	require.NoError(t, err)
	require.NoError(t, store.SetSetting(ctx, worktime.SettingHourlyRate, "1500"))
	require.NoError(t, store.Close())

	// WHEN: Reopening (migrations run again)
	store, err = sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	// THEN: Data survives and the seed does not overwrite the setting
	all, err := store.AllShifts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
	val, _, err := store.GetSetting(ctx, worktime.SettingHourlyRate)
	require.NoError(t, err)
	assert.Equal(t, "1500", val)
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.SaveShift(ctx, testShift("2024-06-10", "09:00", "17:00"))
	require.NoError(t, err)
	require.NoError(t, store.ToggleVacation(ctx, worktime.MustParseDate("2024-06-10"), true))
	require.NoError(t, store.SetSetting(ctx, worktime.SettingHourlyRate, "1"))

	require.NoError(t, store.Reset(ctx))

	all, err := store.AllShifts(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
	val, _, err := store.GetSetting(ctx, worktime.SettingHourlyRate)
	require.NoError(t, err)
	assert.Equal(t, worktime.DefaultHourlyRate, val)
}

func TestPing(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)

	require.NoError(t, store.Ping(context.Background()))

	require.NoError(t, store.Close())
	assert.Error(t, store.Ping(context.Background()))
}
