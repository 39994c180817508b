package store

import "rotaboard/internal/model"

// DayCoverage summarizes staffing for one weekday of a week.
type DayCoverage struct {
	Day           model.Weekday `json:"day"`
	TotalShifts   int           `json:"totalShifts"`
	CoveredShifts int           `json:"coveredShifts"`
	Percent       float64       `json:"percent"`
}

// FreeEmployees returns, per weekday, the employees who are available
// that day and hold no assignment on any of that day's shifts in the
// given week.
func (s *Store) FreeEmployees(weekID string) map[model.Weekday][]model.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shiftDay := make(map[string]model.Weekday, len(s.shifts))
	for _, sh := range s.shifts {
		shiftDay[sh.ID] = sh.Day
	}

	busy := make(map[model.Weekday]map[string]bool)
	for _, a := range s.assignments {
		if a.WeekID != weekID {
			continue
		}
		day, ok := shiftDay[a.ShiftID]
		if !ok {
			continue
		}
		if busy[day] == nil {
			busy[day] = make(map[string]bool)
		}
		busy[day][a.EmployeeID] = true
	}

	out := make(map[model.Weekday][]model.Employee, len(model.Weekdays))
	for _, day := range model.Weekdays {
		var free []model.Employee
		for _, e := range s.employees {
			if e.AvailableOn(day) && !busy[day][e.ID] {
				free = append(free, e)
			}
		}
		out[day] = free
	}
	return out
}

// Coverage returns per-day staffing coverage for a week: the share of
// that day's shifts holding at least one assignment.
func (s *Store) Coverage(weekID string) []DayCoverage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	covered := make(map[string]bool)
	for _, a := range s.assignments {
		if a.WeekID == weekID {
			covered[a.ShiftID] = true
		}
	}

	out := make([]DayCoverage, 0, len(model.Weekdays))
	for _, day := range model.Weekdays {
		dc := DayCoverage{Day: day}
		for _, sh := range s.shifts {
			if sh.Day != day {
				continue
			}
			dc.TotalShifts++
			if covered[sh.ID] {
				dc.CoveredShifts++
			}
		}
		if dc.TotalShifts > 0 {
			dc.Percent = 100 * float64(dc.CoveredShifts) / float64(dc.TotalShifts)
		}
		out = append(out, dc)
	}
	return out
}
