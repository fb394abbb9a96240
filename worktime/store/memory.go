// Package store provides in-memory implementations of the worktime stores.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/worklog-engine/worktime"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements worktime.ImportStore, worktime.VacationRegistry and
// worktime.SettingsStore.
type Memory struct {
	mu       sync.RWMutex
	nextID   int64
	shifts   map[int64]worktime.Shift
	flags    map[string]bool
	nextVac  int64
	ranges   map[int64]worktime.VacationRange
	settings map[string]string
}

func NewMemory() *Memory {
	return &Memory{
		shifts:   make(map[int64]worktime.Shift),
		flags:    make(map[string]bool),
		ranges:   make(map[int64]worktime.VacationRange),
		settings: map[string]string{worktime.SettingHourlyRate: worktime.DefaultHourlyRate},
	}
}

// =============================================================================
// SHIFTS
// =============================================================================

func (m *Memory) SaveShift(_ context.Context, s worktime.Shift) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s.ID != 0 {
		if _, ok := m.shifts[s.ID]; !ok {
			return 0, worktime.NewShiftNotFound(s.ID)
		}
		m.shifts[s.ID] = s
		return s.ID, nil
	}
	return m.insertLocked(s), nil
}

func (m *Memory) insertLocked(s worktime.Shift) int64 {
	m.nextID++
	s.ID = m.nextID
	m.shifts[s.ID] = s
	return s.ID
}

// ImportShifts inserts all shifts. The memory store cannot fail mid-batch.
func (m *Memory) ImportShifts(_ context.Context, shifts []worktime.Shift) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range shifts {
		s.ID = 0
		m.insertLocked(s)
	}
	return len(shifts), nil
}

func (m *Memory) DeleteShift(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.shifts[id]; !ok {
		return worktime.NewShiftNotFound(id)
	}
	delete(m.shifts, id)
	return nil
}

func (m *Memory) ShiftsOn(ctx context.Context, d worktime.Date) ([]worktime.Shift, error) {
	return m.ShiftsBetween(ctx, d, d)
}

func (m *Memory) ShiftsBetween(_ context.Context, from, to worktime.Date) ([]worktime.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p := worktime.Period{Start: from, End: to}
	var result []worktime.Shift
	for _, s := range m.shifts {
		if p.Contains(s.Date) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return shiftLess(result[i], result[j]) })
	return result, nil
}

func (m *Memory) AllShifts(_ context.Context) ([]worktime.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]worktime.Shift, 0, len(m.shifts))
	for _, s := range m.shifts {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return shiftLess(result[j], result[i]) })
	return result, nil
}

func (m *Memory) Companies(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set := make(map[string]bool)
	for _, s := range m.shifts {
		if s.Company != "" {
			set[s.Company] = true
		}
	}
	result := make([]string, 0, len(set))
	for c := range set {
		result = append(result, c)
	}
	sort.Strings(result)
	return result, nil
}

// shiftLess orders by (date, start, id), matching the SQL ORDER BY.
func shiftLess(a, b worktime.Shift) bool {
	if !a.Date.Equal(b.Date) {
		return a.Date.Before(b.Date)
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.ID < b.ID
}

// =============================================================================
// VACATIONS
// =============================================================================

func (m *Memory) IsVacation(_ context.Context, d worktime.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[d.String()], nil
}

func (m *Memory) CountVacationDays(_ context.Context, from, to worktime.Date) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, d := range (worktime.Period{Start: from, End: to}).Days() {
		if m.flags[d.String()] {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ToggleVacation(_ context.Context, d worktime.Date, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if on {
		m.flags[d.String()] = true
	} else {
		delete(m.flags, d.String())
	}
	return nil
}

func (m *Memory) AddVacationRange(_ context.Context, v worktime.VacationRange) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextVac++
	v.ID = m.nextVac
	m.ranges[v.ID] = v
	return v.ID, nil
}

func (m *Memory) DeleteVacationRange(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ranges[id]; !ok {
		return worktime.NewVacationRangeNotFound(id)
	}
	delete(m.ranges, id)
	return nil
}

func (m *Memory) ListVacationRanges(_ context.Context) ([]worktime.VacationRange, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]worktime.VacationRange, 0, len(m.ranges))
	for _, v := range m.ranges {
		result = append(result, v)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Start.Equal(result[j].Start) {
			return result[i].Start.After(result[j].Start)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (m *Memory) GetSetting(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.settings[key]
	return v, ok, nil
}

func (m *Memory) SetSetting(_ context.Context, key, val string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[key] = val
	return nil
}

// Reset drops all data and restores the default settings.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID, m.nextVac = 0, 0
	m.shifts = make(map[int64]worktime.Shift)
	m.flags = make(map[string]bool)
	m.ranges = make(map[int64]worktime.VacationRange)
	m.settings = map[string]string{worktime.SettingHourlyRate: worktime.DefaultHourlyRate}
	return nil
}
