/*
export.go - Monthly shift export

PURPOSE:
  Streams every shift of a month as CSV or XLSX, one row per shift, in
  (date, start) order. Worked minutes and income are derived with the
  same accounting as the summaries.

COLUMNS:
  date, start, end, break_min, worked_minutes, hourly, income, note, company

ENDPOINT:
  GET /api/export/{year}/{month}/{format}   format: csv | xlsx
*/
package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/warp/worklog-engine/worktime"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Shifts"

var exportHeader = []string{
	"date", "start", "end", "break_min", "worked_minutes", "hourly", "income", "note", "company",
}

// ExportMonth writes the month's shifts in the requested format.
// GET /api/export/{year}/{month}/{format}
func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	year, month, ok := monthParams(w, r)
	if !ok {
		return
	}
	format := chi.URLParam(r, "format")
	if format != "csv" && format != "xlsx" {
		writeError(w, http.StatusBadRequest, "Unsupported format (use csv or xlsx)", nil)
		return
	}

	shifts, err := h.Store.ShiftsBetween(r.Context(), worktime.StartOfMonth(year, month), worktime.EndOfMonth(year, month))
	if err != nil {
		h.writeStoreError(w, "Failed to load shifts", err)
		return
	}

	name := fmt.Sprintf("worklog-%04d-%02d.%s", year, int(month), format)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = writeCSV(w, shifts)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = writeXLSX(w, shifts)
	}
	if err != nil {
		// Headers are already out; all we can do is log.
		h.Logger.Error("export failed", "format", format, "error", err)
	}
}

func exportRow(s worktime.Shift) []string {
	return []string{
		s.Date.String(),
		s.Start,
		s.End,
		strconv.Itoa(s.BreakMinutes),
		strconv.Itoa(worktime.ShiftMinutes(s)),
		strconv.FormatFloat(s.HourlyRate, 'f', -1, 64),
		strconv.FormatFloat(round2(worktime.ShiftIncome(s)), 'f', 2, 64),
		s.Note,
		s.Company,
	}
}

func writeCSV(out io.Writer, shifts []worktime.Shift) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, s := range shifts {
		if err := cw.Write(exportRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeXLSX(out io.Writer, shifts []worktime.Shift) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	header := make([]any, len(exportHeader))
	for i, col := range exportHeader {
		header[i] = col
	}
	if err := f.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return err
	}

	for i, s := range shifts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			s.Date.String(),
			s.Start,
			s.End,
			s.BreakMinutes,
			worktime.ShiftMinutes(s),
			s.HourlyRate,
			round2(worktime.ShiftIncome(s)),
			s.Note,
			s.Company,
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	_, err := f.WriteTo(out)
	return err
}
