package worktime

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SEARCH
// =============================================================================

// SearchFilter narrows the full shift list. Zero values leave a bound open.
type SearchFilter struct {
	// Company matches as a case-insensitive substring of the label.
	Company string
	// Start and End bound the shift date, inclusive.
	Start Date
	End   Date
	// MinHours and MaxHours bound the worked hours, inclusive.
	MinHours *float64
	MaxHours *float64
}

type SearchResult struct {
	Shifts    []Shift
	Totals    Totals
	Companies []string
}

// Matches reports whether one shift passes every bound of f. A shift with
// an unparsable time counts as zero hours.
func (f SearchFilter) Matches(s Shift) bool {
	if f.Company != "" && !strings.Contains(strings.ToLower(s.Company), strings.ToLower(f.Company)) {
		return false
	}
	if !f.Start.IsZero() && s.Date.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && s.Date.After(f.End) {
		return false
	}

	hours := float64(ShiftMinutes(s)) / 60
	if f.MinHours != nil && hours < *f.MinHours {
		return false
	}
	if f.MaxHours != nil && hours > *f.MaxHours {
		return false
	}
	return true
}

// SearchShifts filters shifts, keeping their order, and totals the matches.
// Companies lists the distinct labels of the matches, sorted, with empty
// labels under NoCompanyLabel.
func SearchShifts(shifts []Shift, f SearchFilter) SearchResult {
	matched := make([]Shift, 0)
	labels := make(map[string]bool)
	for _, s := range shifts {
		if !f.Matches(s) {
			continue
		}
		matched = append(matched, s)
		label := s.Company
		if label == "" {
			label = NoCompanyLabel
		}
		labels[label] = true
	}

	companies := make([]string, 0, len(labels))
	for label := range labels {
		companies = append(companies, label)
	}
	sort.Strings(companies)

	return SearchResult{
		Shifts:    matched,
		Totals:    ComputeTotals(matched),
		Companies: companies,
	}
}

// Search runs f over every stored shift, newest first.
func (r *Reporter) Search(ctx context.Context, f SearchFilter) (SearchResult, error) {
	shifts, err := r.Shifts.AllShifts(ctx)
	if err != nil {
		return SearchResult{}, fmt.Errorf("load shifts: %w", err)
	}
	return SearchShifts(shifts, f), nil
}
