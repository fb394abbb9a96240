/*
store.go - Persistence interfaces for shifts, vacations and settings

PURPOSE:
  Defines the boundary between the engine and the database. The engine only
  reads through these interfaces; every aggregate is computed on demand
  from what they return.

KEY INTERFACES:
  ShiftStore:       Shift records (save, delete, day/range/all lookups)
  VacationRegistry: Per-day vacation flags plus ranged vacations
  SettingsStore:    Key/value settings (default hourly rate)

ORDERING CONTRACT:
  ShiftsOn:      ordered by start
  ShiftsBetween: ordered by (date, start)
  AllShifts:     ordered by date desc, start desc

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: SQLite
  - worktime/store/memory.go: In-memory for testing

SEE ALSO:
  - compliance.go, report.go: Consumers
*/
package worktime

import "context"

// =============================================================================
// SHIFT STORE
// =============================================================================

type ShiftStore interface {
	// SaveShift inserts the shift when ID is zero and returns the new id.
	// With a non-zero ID it updates that record in place and returns
	// ErrShiftNotFound if it no longer exists.
	SaveShift(ctx context.Context, s Shift) (int64, error)

	// DeleteShift removes a shift. Returns ErrShiftNotFound if absent.
	DeleteShift(ctx context.Context, id int64) error

	// ShiftsOn returns the shifts recorded on a single day.
	ShiftsOn(ctx context.Context, d Date) ([]Shift, error)

	// ShiftsBetween returns the shifts with from <= date <= to.
	ShiftsBetween(ctx context.Context, from, to Date) ([]Shift, error)

	// AllShifts returns every shift, newest first.
	AllShifts(ctx context.Context) ([]Shift, error)

	// Companies returns the distinct non-empty company labels, sorted.
	Companies(ctx context.Context) ([]string, error)
}

// ImportStore extends ShiftStore with an atomic batch insert.
// Either every shift is inserted or none is.
type ImportStore interface {
	ShiftStore
	ImportShifts(ctx context.Context, shifts []Shift) (int, error)
}

// =============================================================================
// VACATION REGISTRY
// =============================================================================

// VacationRegistry holds two independent vacation views: per-day flags
// (membership and counting, used for the weekly cap) and ranged vacations
// (listing, used by the vacation calendar and the current cap).
type VacationRegistry interface {
	IsVacation(ctx context.Context, d Date) (bool, error)

	// CountVacationDays counts flagged dates in [from, to]. Each date counts once.
	CountVacationDays(ctx context.Context, from, to Date) (int, error)

	// ToggleVacation sets or clears the flag. Both directions are idempotent.
	ToggleVacation(ctx context.Context, d Date, on bool) error

	AddVacationRange(ctx context.Context, v VacationRange) (int64, error)
	DeleteVacationRange(ctx context.Context, id int64) error

	// ListVacationRanges returns ranges ordered by start date, newest first.
	ListVacationRanges(ctx context.Context) ([]VacationRange, error)
}

// =============================================================================
// SETTINGS
// =============================================================================

type SettingsStore interface {
	// GetSetting returns the value and whether the key exists.
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, val string) error
}
