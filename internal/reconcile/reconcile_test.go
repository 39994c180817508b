package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rotaboard/internal/model"
)

const (
	thisWeek  = "2025-03-10"
	otherWeek = "2025-03-17"
)

func findWeek(assignments []model.Assignment, weekID string) []model.Assignment {
	var out []model.Assignment
	for _, a := range assignments {
		if a.WeekID == weekID {
			out = append(out, a)
		}
	}
	return out
}

func TestMergePreservesOtherWeeks(t *testing.T) {
	other := model.Assignment{ID: "a2", ShiftID: "s1", EmployeeID: "e2", WeekID: otherWeek, SpecialDuty: "Bar prep"}
	in := Input{
		Assignments: []model.Assignment{
			{ID: "a1", ShiftID: "s1", EmployeeID: "e1", WeekID: thisWeek},
			other,
		},
		WeekID:   thisWeek,
		Proposed: []model.ProposedAssignment{{ShiftID: "s2", EmployeeID: "e1"}},
	}

	res := Merge(in)

	got := findWeek(res.Assignments, otherWeek)
	require.Len(t, got, 1)
	assert.Equal(t, other, got[0], "assignments of other weeks must pass through untouched")
}

func TestMergeKeepsIDAndDutyOfUnchangedPairs(t *testing.T) {
	// The scenario from the drawing board: a1 is resupplied without its
	// duty and must keep both id and duty; s2/e2 is brand new.
	in := Input{
		Assignments: []model.Assignment{
			{ID: "a1", ShiftID: "s1", EmployeeID: "e1", WeekID: thisWeek, SpecialDuty: "Grill"},
		},
		WeekID: thisWeek,
		Proposed: []model.ProposedAssignment{
			{ShiftID: "s1", EmployeeID: "e1"},
			{ShiftID: "s2", EmployeeID: "e2", SpecialDuty: "Bar"},
		},
	}

	res := Merge(in)
	got := findWeek(res.Assignments, thisWeek)
	require.Len(t, got, 2)

	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "Grill", got[0].SpecialDuty, "omitted specialDuty retains the old value")

	assert.NotEmpty(t, got[1].ID)
	assert.NotEqual(t, "a1", got[1].ID)
	assert.Equal(t, "Bar", got[1].SpecialDuty)
}

func TestMergeExplicitDutyOverrides(t *testing.T) {
	in := Input{
		Assignments: []model.Assignment{
			{ID: "a1", ShiftID: "s1", EmployeeID: "e1", WeekID: thisWeek, SpecialDuty: "Grill"},
		},
		WeekID: thisWeek,
		Proposed: []model.ProposedAssignment{
			{ShiftID: "s1", EmployeeID: "e1", SpecialDuty: "Closing checklist"},
		},
	}

	res := Merge(in)
	got := findWeek(res.Assignments, thisWeek)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
	assert.Equal(t, "Closing checklist", got[0].SpecialDuty)
}

func TestMergeDropsOmittedAssignments(t *testing.T) {
	// The proposal is total for the week: what it omits is deleted.
	in := Input{
		Assignments: []model.Assignment{
			{ID: "a1", ShiftID: "s1", EmployeeID: "e1", WeekID: thisWeek},
			{ID: "a2", ShiftID: "s2", EmployeeID: "e2", WeekID: thisWeek},
		},
		WeekID:   thisWeek,
		Proposed: []model.ProposedAssignment{{ShiftID: "s1", EmployeeID: "e1"}},
	}

	res := Merge(in)
	got := findWeek(res.Assignments, thisWeek)
	require.Len(t, got, 1)
	assert.Equal(t, "a1", got[0].ID)
}

func TestMergeEmptyProposalClearsWeek(t *testing.T) {
	in := Input{
		Assignments: []model.Assignment{
			{ID: "a1", ShiftID: "s1", EmployeeID: "e1", WeekID: thisWeek},
			{ID: "a2", ShiftID: "s1", EmployeeID: "e1", WeekID: otherWeek},
		},
		WeekID:   thisWeek,
		Proposed: nil,
	}

	res := Merge(in)
	assert.Empty(t, findWeek(res.Assignments, thisWeek), "empty proposal clears the viewed week")
	assert.Len(t, findWeek(res.Assignments, otherWeek), 1)
}

func TestMergeNewHires(t *testing.T) {
	in := Input{
		Employees: []model.Employee{
			{ID: "e1", Name: "Alice Moreau", Role: model.RoleHeadWaiter},
		},
		WeekID: thisWeek,
		NewHires: []model.ProposedEmployee{
			{Name: "alice moreau", Role: "Chef"},   // case-insensitive match, dropped
			{Name: "Frank Diaz", Role: "Bartender"},
			{Name: "Gina Lutz", Role: "astronaut"}, // unmapped role defaults to Server
		},
	}

	res := Merge(in)
	require.Len(t, res.NewEmployees, 2)

	assert.Equal(t, "Frank Diaz", res.NewEmployees[0].Name)
	assert.Equal(t, model.RoleBartender, res.NewEmployees[0].Role)
	assert.NotEmpty(t, res.NewEmployees[0].ID)

	assert.Equal(t, "Gina Lutz", res.NewEmployees[1].Name)
	assert.Equal(t, model.RoleServer, res.NewEmployees[1].Role)
}

func TestMergeDuplicateHiresWithinProposal(t *testing.T) {
	in := Input{
		WeekID: thisWeek,
		NewHires: []model.ProposedEmployee{
			{Name: "Frank Diaz", Role: "Server"},
			{Name: "FRANK DIAZ", Role: "Chef"},
		},
	}

	res := Merge(in)
	require.Len(t, res.NewEmployees, 1)
	assert.Equal(t, "Frank Diaz", res.NewEmployees[0].Name)
}

func TestMergeDanglingReferencesPassThrough(t *testing.T) {
	// Shift and employee ids are not validated against the store;
	// unknown references survive into the result.
	in := Input{
		WeekID:   thisWeek,
		Proposed: []model.ProposedAssignment{{ShiftID: "ghost-shift", EmployeeID: "ghost-employee"}},
	}

	res := Merge(in)
	require.Len(t, res.Assignments, 1)
	assert.Equal(t, "ghost-shift", res.Assignments[0].ShiftID)
	assert.Equal(t, "ghost-employee", res.Assignments[0].EmployeeID)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	assignments := []model.Assignment{
		{ID: "a1", ShiftID: "s1", EmployeeID: "e1", WeekID: thisWeek, SpecialDuty: "Grill"},
	}
	employees := []model.Employee{{ID: "e1", Name: "Alice Moreau", Role: model.RoleServer}}

	Merge(Input{
		Assignments: assignments,
		Employees:   employees,
		WeekID:      thisWeek,
		Proposed:    []model.ProposedAssignment{{ShiftID: "s9", EmployeeID: "e9"}},
		NewHires:    []model.ProposedEmployee{{Name: "Frank Diaz", Role: "Chef"}},
	})

	assert.Equal(t, "a1", assignments[0].ID)
	assert.Equal(t, "Grill", assignments[0].SpecialDuty)
	assert.Len(t, employees, 1)
}
