/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements every persistence interface the engine reads through
  (ShiftStore, ImportStore, VacationRegistry, SettingsStore) on a single
  SQLite database file.

INTERFACES IMPLEMENTED:
  worktime.ImportStore:      Shift records and atomic import
  worktime.VacationRegistry: Per-day vacation flags and vacation ranges
  worktime.SettingsStore:    Key/value settings

KEY TABLES:
  shifts:          One row per recorded work session
  vacation_days:   Per-day vacation flags (drive the weekly cap)
  vacation_ranges: Vacation spans with notes (vacation calendar)
  settings:        Key/value pairs, seeded with hourly_rate=1000

DATES:
  Dates are stored as YYYY-MM-DD text, so BETWEEN and ORDER BY on the
  column are chronological. Start/end are stored exactly as saved.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. The application is single-tenant;
  this only keeps overlapping HTTP requests from interleaving writes.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Readers don't block the writer
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/worklog.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - worktime/store.go: Interface definitions
  - worktime/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/worklog-engine/worktime"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL"
	if dbPath == ":memory:" {
		dsn = dbPath
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: every :memory: connection would be its own database.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS shifts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		date TEXT NOT NULL,
		start TEXT NOT NULL,
		end TEXT NOT NULL,
		break_min INTEGER NOT NULL DEFAULT 0 CHECK (break_min >= 0),
		hourly REAL NOT NULL DEFAULT 0.0 CHECK (hourly >= 0),
		note TEXT NOT NULL DEFAULT '',
		company TEXT NOT NULL DEFAULT ''
	);

	-- Day and range lookups (hot path)
	CREATE INDEX IF NOT EXISTS idx_shifts_date
		ON shifts(date);
	CREATE INDEX IF NOT EXISTS idx_shifts_company
		ON shifts(company);
	CREATE INDEX IF NOT EXISTS idx_shifts_date_company
		ON shifts(date, company);

	CREATE TABLE IF NOT EXISTS vacation_days (
		date TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS vacation_ranges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		val TEXT
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Databases created before company grouping existed lack the column.
	hasCompany, err := s.hasColumn("shifts", "company")
	if err != nil {
		return err
	}
	if !hasCompany {
		if _, err := s.db.Exec("ALTER TABLE shifts ADD COLUMN company TEXT NOT NULL DEFAULT ''"); err != nil {
			return err
		}
	}

	_, err = s.db.Exec("INSERT OR IGNORE INTO settings (key, val) VALUES (?, ?)",
		worktime.SettingHourlyRate, worktime.DefaultHourlyRate)
	return err
}

func (s *Store) hasColumn(table, column string) (bool, error) {
	rows, err := s.db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// =============================================================================
// SHIFT STORE (worktime.ShiftStore interface)
// =============================================================================

const shiftColumns = "id, date, start, end, break_min, hourly, note, company"

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// SaveShift inserts a new shift (ID == 0) or updates an existing one.
func (s *Store) SaveShift(ctx context.Context, sh worktime.Shift) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sh.ID == 0 {
		return insertShift(ctx, s.db, sh)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE shifts
		SET date = ?, start = ?, end = ?, break_min = ?, hourly = ?, note = ?, company = ?
		WHERE id = ?`,
		sh.Date.String(), sh.Start, sh.End, sh.BreakMinutes, sh.HourlyRate, sh.Note, sh.Company,
		sh.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("update shift %d: %w", sh.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, worktime.NewShiftNotFound(sh.ID)
	}
	return sh.ID, nil
}

func insertShift(ctx context.Context, db execer, sh worktime.Shift) (int64, error) {
	res, err := db.ExecContext(ctx, `
		INSERT INTO shifts (date, start, end, break_min, hourly, note, company)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sh.Date.String(), sh.Start, sh.End, sh.BreakMinutes, sh.HourlyRate, sh.Note, sh.Company,
	)
	if err != nil {
		return 0, fmt.Errorf("insert shift: %w", err)
	}
	return res.LastInsertId()
}

// ImportShifts inserts all shifts in one transaction.
func (s *Store) ImportShifts(ctx context.Context, shifts []worktime.Shift) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for i, sh := range shifts {
			if _, err := insertShift(ctx, tx, sh); err != nil {
				return fmt.Errorf("row %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(shifts), nil
}

// DeleteShift removes a shift by id.
func (s *Store) DeleteShift(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM shifts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete shift %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return worktime.NewShiftNotFound(id)
	}
	return nil
}

// ShiftsOn returns the shifts of one day, ordered by start.
func (s *Store) ShiftsOn(ctx context.Context, d worktime.Date) ([]worktime.Shift, error) {
	return s.queryShifts(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE date = ? ORDER BY start, id",
		d.String(),
	)
}

// ShiftsBetween returns shifts in [from, to], ordered by date and start.
func (s *Store) ShiftsBetween(ctx context.Context, from, to worktime.Date) ([]worktime.Shift, error) {
	return s.queryShifts(ctx,
		"SELECT "+shiftColumns+" FROM shifts WHERE date BETWEEN ? AND ? ORDER BY date, start, id",
		from.String(), to.String(),
	)
}

// AllShifts returns every shift, newest first.
func (s *Store) AllShifts(ctx context.Context) ([]worktime.Shift, error) {
	return s.queryShifts(ctx,
		"SELECT "+shiftColumns+" FROM shifts ORDER BY date DESC, start DESC, id DESC",
	)
}

// Companies returns the distinct non-empty company labels.
func (s *Store) Companies(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT company FROM shifts WHERE company != '' ORDER BY company",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	companies := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

func (s *Store) queryShifts(ctx context.Context, query string, args ...any) ([]worktime.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shifts []worktime.Shift
	for rows.Next() {
		sh, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, sh)
	}
	return shifts, rows.Err()
}

func scanShift(rows *sql.Rows) (worktime.Shift, error) {
	var sh worktime.Shift
	var date string
	var note, company sql.NullString

	if err := rows.Scan(&sh.ID, &date, &sh.Start, &sh.End, &sh.BreakMinutes, &sh.HourlyRate, &note, &company); err != nil {
		return worktime.Shift{}, err
	}

	d, err := worktime.ParseDate(date)
	if err != nil {
		return worktime.Shift{}, fmt.Errorf("shift %d: stored date %q: %v", sh.ID, date, err)
	}
	sh.Date = d
	sh.Note = note.String
	sh.Company = company.String
	return sh, nil
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// withTx executes fn within a transaction.
// If fn returns error, the transaction is rolled back.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// =============================================================================
// VACATION REGISTRY (worktime.VacationRegistry interface)
// =============================================================================

// IsVacation checks the per-day flag.
func (s *Store) IsVacation(ctx context.Context, d worktime.Date) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM vacation_days WHERE date = ?", d.String()).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CountVacationDays counts flagged days in [from, to].
func (s *Store) CountVacationDays(ctx context.Context, from, to worktime.Date) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM vacation_days WHERE date BETWEEN ? AND ?",
		from.String(), to.String(),
	).Scan(&n)
	return n, err
}

// ToggleVacation sets (on) or clears (off) the flag for a day.
func (s *Store) ToggleVacation(ctx context.Context, d worktime.Date, on bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := "DELETE FROM vacation_days WHERE date = ?"
	if on {
		query = "INSERT OR IGNORE INTO vacation_days (date) VALUES (?)"
	}
	_, err := s.db.ExecContext(ctx, query, d.String())
	return err
}

// AddVacationRange stores a vacation span and returns its id.
func (s *Store) AddVacationRange(ctx context.Context, v worktime.VacationRange) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"INSERT INTO vacation_ranges (start_date, end_date, note) VALUES (?, ?, ?)",
		v.Start.String(), v.End.String(), v.Note,
	)
	if err != nil {
		return 0, fmt.Errorf("insert vacation range: %w", err)
	}
	return res.LastInsertId()
}

// DeleteVacationRange removes a vacation span by id.
func (s *Store) DeleteVacationRange(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM vacation_ranges WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return worktime.NewVacationRangeNotFound(id)
	}
	return nil
}

// ListVacationRanges returns all spans, latest start first.
func (s *Store) ListVacationRanges(ctx context.Context) ([]worktime.VacationRange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, start_date, end_date, note FROM vacation_ranges ORDER BY start_date DESC, id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ranges := []worktime.VacationRange{}
	for rows.Next() {
		var v worktime.VacationRange
		var start, end string
		var note sql.NullString
		if err := rows.Scan(&v.ID, &start, &end, &note); err != nil {
			return nil, err
		}
		if v.Start, err = worktime.ParseDate(start); err != nil {
			return nil, fmt.Errorf("vacation range %d: %w", v.ID, err)
		}
		if v.End, err = worktime.ParseDate(end); err != nil {
			return nil, fmt.Errorf("vacation range %d: %w", v.ID, err)
		}
		v.Note = note.String
		ranges = append(ranges, v)
	}
	return ranges, rows.Err()
}

// =============================================================================
// SETTINGS (worktime.SettingsStore interface)
// =============================================================================

// GetSetting returns a setting value and whether it exists.
func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var val sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT val FROM settings WHERE key = ?", key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val.String, true, nil
}

// SetSetting creates or replaces a setting.
func (s *Store) SetSetting(ctx context.Context, key, val string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("setting key is empty")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, val) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET val = excluded.val`,
		key, val,
	)
	return err
}

// Reset deletes all data and re-seeds the defaults (dev only).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"shifts", "vacation_days", "vacation_ranges", "settings"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, "INSERT INTO settings (key, val) VALUES (?, ?)",
			worktime.SettingHourlyRate, worktime.DefaultHourlyRate)
		return err
	})
}
