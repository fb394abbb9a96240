package worktime

import "sort"

// =============================================================================
// SHIFT MINUTES
// =============================================================================

// WorkedMinutes computes the paid minutes of a shift:
//
//	elapsed = end - start            (+1440 if negative, one wrap at most)
//	worked  = max(0, elapsed - break)
//
// A start or end that is not HH:MM yields 0 and ErrMalformedTime.
func WorkedMinutes(s Shift) (int, error) {
	start, err := ParseClock(s.Start)
	if err != nil {
		return 0, err
	}
	end, err := ParseClock(s.End)
	if err != nil {
		return 0, err
	}

	elapsed := end - start
	if elapsed < 0 {
		elapsed += MinutesPerDay
	}
	return max(0, elapsed-s.BreakMinutes), nil
}

// ShiftMinutes is WorkedMinutes with the degradation error dropped.
func ShiftMinutes(s Shift) int {
	m, _ := WorkedMinutes(s)
	return m
}

// ShiftIncome is the income of a single shift, unrounded.
func ShiftIncome(s Shift) float64 {
	return float64(ShiftMinutes(s)) / 60 * s.HourlyRate
}

// =============================================================================
// TOTALS
// =============================================================================

// ComputeTotals sums minutes and income over shifts. Nothing is rounded;
// rounding to cents is a presentation concern.
//
// The result does not depend on the order of shifts: minutes are integers,
// and per-shift incomes are added in ascending order so the float sum is
// the same for any permutation of the input.
func ComputeTotals(shifts []Shift) Totals {
	var totals Totals
	incomes := make([]float64, 0, len(shifts))

	for _, s := range shifts {
		m, err := WorkedMinutes(s)
		if err != nil {
			totals.Ignored++
			continue
		}
		totals.Minutes += m
		incomes = append(incomes, float64(m)/60*s.HourlyRate)
	}

	sort.Float64s(incomes)
	for _, v := range incomes {
		totals.Income += v
	}
	return totals
}

// TotalMinutes sums worked minutes only.
func TotalMinutes(shifts []Shift) int {
	total := 0
	for _, s := range shifts {
		total += ShiftMinutes(s)
	}
	return total
}
