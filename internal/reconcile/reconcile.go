// Package reconcile merges an AI-proposed full-replacement assignment
// list for one week into the existing schedule. The proposal is
// authoritative and total for that week: assignments it omits are
// dropped, assignments for every other week pass through untouched.
package reconcile

import (
	"strings"

	"github.com/google/uuid"

	"rotaboard/internal/model"
)

// Input carries everything the merge needs. The merge is pure: it
// performs no I/O and does not mutate its inputs.
type Input struct {
	// Assignments is the full current collection, all weeks.
	Assignments []model.Assignment
	// Employees is the full current employee collection.
	Employees []model.Employee
	// WeekID identifies the week the proposal replaces.
	WeekID string
	// Proposed is the complete replacement assignment list for WeekID.
	// An empty list clears the week; that is a legitimate outcome, not
	// an error.
	Proposed []model.ProposedAssignment
	// NewHires are employees the AI wants to add, matched by name
	// against Employees.
	NewHires []model.ProposedEmployee
}

// Result is the reconciled state to commit.
type Result struct {
	// Assignments fully replaces the old assignment collection.
	Assignments []model.Assignment
	// NewEmployees are the hires that matched no existing employee and
	// should be appended to the employee collection.
	NewEmployees []model.Employee
}

// Merge reconciles a proposal against the current schedule.
//
// New hires whose name case-insensitively matches an existing employee
// are silently dropped. For each proposed assignment, an existing
// assignment in the same week with the same (shiftID, employeeID) pair
// keeps its id, and keeps its special duty unless the proposal supplies
// a non-empty one. Proposed shift and employee ids are not validated
// against the store; dangling references pass through.
func Merge(in Input) Result {
	newEmployees := mergeHires(in.Employees, in.NewHires)

	// Partition: every other week passes through unmodified.
	otherWeeks := make([]model.Assignment, 0, len(in.Assignments))
	oldWeek := make(map[pairKey]model.Assignment)
	for _, a := range in.Assignments {
		if a.WeekID == in.WeekID {
			oldWeek[pairKey{a.ShiftID, a.EmployeeID}] = a
		} else {
			otherWeeks = append(otherWeeks, a)
		}
	}

	reconciled := make([]model.Assignment, 0, len(in.Proposed))
	for _, p := range in.Proposed {
		next := model.Assignment{
			ShiftID:     p.ShiftID,
			EmployeeID:  p.EmployeeID,
			WeekID:      in.WeekID,
			SpecialDuty: p.SpecialDuty,
		}
		if old, ok := oldWeek[pairKey{p.ShiftID, p.EmployeeID}]; ok {
			next.ID = old.ID
			if p.SpecialDuty == "" {
				next.SpecialDuty = old.SpecialDuty
			}
		} else {
			next.ID = uuid.NewString()
		}
		reconciled = append(reconciled, next)
	}

	return Result{
		Assignments:  append(otherWeeks, reconciled...),
		NewEmployees: newEmployees,
	}
}

type pairKey struct {
	shiftID    string
	employeeID string
}

// mergeHires materializes proposed employees whose names match nobody.
// Matching hires are assumed already present and correctly specified.
func mergeHires(existing []model.Employee, hires []model.ProposedEmployee) []model.Employee {
	known := make(map[string]bool, len(existing))
	for _, e := range existing {
		known[foldName(e.Name)] = true
	}

	var added []model.Employee
	for _, h := range hires {
		key := foldName(h.Name)
		if known[key] {
			continue
		}
		known[key] = true
		added = append(added, model.Employee{
			ID:   uuid.NewString(),
			Name: h.Name,
			Role: model.ParseRole(h.Role),
		})
	}
	return added
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
