package export

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"rotaboard/internal/model"
	"rotaboard/internal/store"
	"rotaboard/internal/week"
)

// WeekSheet writes one week's schedule as an XLSX workbook: a row per
// shift, columns for day, time, label and the assigned staff.
func WeekSheet(w io.Writer, st *store.Store, weekID string) error {
	sheet := "Week " + weekID
	// Excel caps sheet names at 31 chars.
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheet)

	header := []string{"Day", "Shift", "Start", "End", "Employees", "Special duties"}
	for i, col := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, col); err != nil {
			return err
		}
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(sheet, "A1", "F1", style)
	}

	// Label each day with its calendar date. A week id that is not a
	// Monday date stamp still exports, with bare weekday labels.
	dayDates := make(map[model.Weekday]string)
	if dates, err := week.Days(weekID); err == nil {
		for _, d := range dates {
			dayDates[week.DayOf(d)] = d.Format("Jan 2")
		}
	}

	employees := make(map[string]model.Employee)
	for _, e := range st.Employees() {
		employees[e.ID] = e
	}

	byShift := make(map[string][]model.Assignment)
	for _, a := range st.AssignmentsForWeek(weekID) {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
	}

	shifts := st.Shifts()
	sort.SliceStable(shifts, func(i, j int) bool {
		if shifts[i].Day != shifts[j].Day {
			return dayIndex(shifts[i].Day) < dayIndex(shifts[j].Day)
		}
		return shifts[i].StartTime < shifts[j].StartTime
	})

	row := 2
	for _, sh := range shifts {
		var names, duties string
		for _, a := range byShift[sh.ID] {
			name := a.EmployeeID
			if e, ok := employees[a.EmployeeID]; ok {
				name = fmt.Sprintf("%s (%s)", e.Name, e.Role)
			}
			if names != "" {
				names += ", "
			}
			names += name
			if a.SpecialDuty != "" {
				if duties != "" {
					duties += ", "
				}
				duties += fmt.Sprintf("%s: %s", name, a.SpecialDuty)
			}
		}

		dayLabel := string(sh.Day)
		if date, ok := dayDates[sh.Day]; ok {
			dayLabel = fmt.Sprintf("%s, %s", sh.Day, date)
		}
		values := []any{dayLabel, sh.Label, sh.StartTime, sh.EndTime, names, duties}
		for i, v := range values {
			cell, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		row++
	}

	return f.Write(w)
}

func dayIndex(d model.Weekday) int {
	for i, day := range model.Weekdays {
		if day == d {
			return i
		}
	}
	return len(model.Weekdays)
}
