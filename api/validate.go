/*
validate.go - Request boundary validation

PURPOSE:
  Turns loosely-typed request bodies (numbers that arrive as strings,
  optional fields) into a strongly-typed worktime.Shift. Everything that
  can be wrong with a request is rejected here, so the engine never sees
  a missing date or a non-numeric rate.

RULES:
  date       required, YYYY-MM-DD, must be a real day
  start/end  required, HH:MM (two digits each)
  break_min  optional (default 0), numeric, 0..480, fraction truncated
  hourly     optional (default: hourly_rate setting), numeric, 0..10000
  id         optional, positive integer; present = update in place

  A start/end that passes the pattern but is not a real time of day
  (e.g. "25:99") is accepted and later counted as zero minutes.

SEE ALSO:
  - handlers.go: SaveShift, ImportShifts
  - worktime/accounting.go: Degradation for unparsable times
*/
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/worklog-engine/worktime"
)

// =============================================================================
// VALIDATION ERRORS
// =============================================================================

type ValidationError struct {
	Field   string
	Message string
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	var msgs []string
	for _, err := range v {
		msgs = append(msgs, err.Field+": "+err.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v ValidationErrors) ToMap() map[string]string {
	result := make(map[string]string)
	for _, err := range v {
		result[err.Field] = err.Message
	}
	return result
}

func (v *ValidationErrors) add(field, format string, args ...any) {
	*v = append(*v, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// =============================================================================
// FORM VALUE - string-or-number JSON field
// =============================================================================

// FormValue accepts a JSON string, number or null and remembers whether
// the field was present at all.
type FormValue struct {
	Value string
	Set   bool
}

func Value(s string) FormValue { return FormValue{Value: s, Set: true} }

func (f *FormValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = FormValue{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FormValue{Value: s, Set: true}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*f = FormValue{Value: n.String(), Set: true}
	return nil
}

// Empty reports a field that is absent or blank.
func (f FormValue) Empty() bool {
	return !f.Set || strings.TrimSpace(f.Value) == ""
}

// =============================================================================
// SAVE SHIFT REQUEST
// =============================================================================

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	clockPattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
	idPattern    = regexp.MustCompile(`^\d+$`)
)

// SaveShiftRequest is the body of POST /api/shifts.
type SaveShiftRequest struct {
	ID       FormValue `json:"id"`
	Date     FormValue `json:"date"`
	Start    FormValue `json:"start"`
	End      FormValue `json:"end"`
	BreakMin FormValue `json:"break_min"`
	Hourly   FormValue `json:"hourly"`
	Note     FormValue `json:"note"`
	Company  FormValue `json:"company"`
}

// Validate checks every field and returns the shift, or ValidationErrors
// naming each offending field. Field names are prefixed with prefix
// (e.g. "shifts[2].") when validating batch rows.
func (r SaveShiftRequest) Validate(prefix string) (worktime.Shift, error) {
	var errs ValidationErrors
	var shift worktime.Shift

	if !r.ID.Empty() {
		if !idPattern.MatchString(r.ID.Value) {
			errs.add(prefix+"id", "must be a positive integer")
		} else if id, err := strconv.ParseInt(r.ID.Value, 10, 64); err != nil {
			errs.add(prefix+"id", "out of range")
		} else if id == 0 {
			errs.add(prefix+"id", "must be a positive integer")
		} else {
			shift.ID = id
		}
	}

	switch {
	case r.Date.Empty():
		errs.add(prefix+"date", "is required")
	case !datePattern.MatchString(r.Date.Value):
		errs.add(prefix+"date", "must be YYYY-MM-DD")
	default:
		d, err := worktime.ParseDate(r.Date.Value)
		if err != nil {
			errs.add(prefix+"date", "is not a calendar date")
		}
		shift.Date = d
	}

	for _, f := range []struct {
		name  string
		value FormValue
		dst   *string
	}{
		{"start", r.Start, &shift.Start},
		{"end", r.End, &shift.End},
	} {
		switch {
		case f.value.Empty():
			errs.add(prefix+f.name, "is required")
		case !clockPattern.MatchString(f.value.Value):
			errs.add(prefix+f.name, "must be HH:MM")
		default:
			*f.dst = f.value.Value
		}
	}

	if !r.BreakMin.Empty() {
		v, ok := numberInRange(r.BreakMin.Value, 0, worktime.MaxBreakMinutes)
		if !ok {
			errs.add(prefix+"break_min", "must be a number between 0 and %d", worktime.MaxBreakMinutes)
		} else {
			shift.BreakMinutes = int(v.IntPart())
		}
	}

	if r.Hourly.Empty() {
		errs.add(prefix+"hourly", "is required")
	} else if v, ok := numberInRange(r.Hourly.Value, 0, worktime.MaxHourlyRate); !ok {
		errs.add(prefix+"hourly", "must be a number between 0 and %d", worktime.MaxHourlyRate)
	} else {
		shift.HourlyRate = v.InexactFloat64()
	}

	shift.Note = strings.TrimSpace(r.Note.Value)
	shift.Company = strings.TrimSpace(r.Company.Value)

	if len(errs) > 0 {
		return worktime.Shift{}, errs
	}
	return shift, nil
}

func numberInRange(s string, lo, hi int64) (decimal.Decimal, bool) {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, false
	}
	if v.LessThan(decimal.NewFromInt(lo)) || v.GreaterThan(decimal.NewFromInt(hi)) {
		return decimal.Zero, false
	}
	return v, true
}

// =============================================================================
// OTHER REQUESTS
// =============================================================================

// ImportRequest is the body of POST /api/shifts/import.
type ImportRequest struct {
	Shifts []SaveShiftRequest `json:"shifts"`
}

// ToggleVacationRequest is the body of PUT /api/vacations/days/{date}.
type ToggleVacationRequest struct {
	On bool `json:"on"`
}

// VacationRangeRequest is the body of POST /api/vacations/ranges.
type VacationRangeRequest struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Note  string `json:"note"`
}

func (r VacationRangeRequest) Validate() (worktime.VacationRange, error) {
	var errs ValidationErrors
	start, err := worktime.ParseDate(r.Start)
	if err != nil {
		errs.add("start", "must be YYYY-MM-DD")
	}
	end, err := worktime.ParseDate(r.End)
	if err != nil {
		errs.add("end", "must be YYYY-MM-DD")
	}
	if len(errs) == 0 && end.Before(start) {
		errs.add("end", "must not be before start")
	}
	if len(errs) > 0 {
		return worktime.VacationRange{}, errs
	}
	return worktime.VacationRange{Start: start, End: end, Note: strings.TrimSpace(r.Note)}, nil
}

// searchFilterFromQuery reads the optional search bounds. Blank
// parameters leave a bound open.
func searchFilterFromQuery(r *http.Request) (worktime.SearchFilter, error) {
	q := r.URL.Query()
	var errs ValidationErrors
	f := worktime.SearchFilter{Company: strings.TrimSpace(q.Get("company"))}

	for _, b := range []struct {
		name string
		dst  *worktime.Date
	}{
		{"start", &f.Start},
		{"end", &f.End},
	} {
		if v := strings.TrimSpace(q.Get(b.name)); v != "" {
			d, err := worktime.ParseDate(v)
			if err != nil {
				errs.add(b.name, "must be YYYY-MM-DD")
				continue
			}
			*b.dst = d
		}
	}

	for _, b := range []struct {
		name string
		dst  **float64
	}{
		{"min_hours", &f.MinHours},
		{"max_hours", &f.MaxHours},
	} {
		if v := strings.TrimSpace(q.Get(b.name)); v != "" {
			n, err := decimal.NewFromString(v)
			if err != nil || n.IsNegative() {
				errs.add(b.name, "must be a non-negative number")
				continue
			}
			hours := n.InexactFloat64()
			*b.dst = &hours
		}
	}

	if len(errs) > 0 {
		return worktime.SearchFilter{}, errs
	}
	return f, nil
}

// SettingRequest is the body of PUT /api/settings/{key}.
type SettingRequest struct {
	Value string `json:"value"`
}
