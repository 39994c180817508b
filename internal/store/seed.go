package store

import (
	"github.com/google/uuid"

	"rotaboard/internal/model"
)

// seedAIRules is the default guidance sent to the AI alongside the
// schedule snapshot until the user writes their own.
const seedAIRules = "Spread weekend shifts fairly. Every dinner service needs at least one bartender. Do not schedule anyone for more than five shifts per week."

// Seed data populates a fresh install so the schedule is usable before
// any manual setup.

func seedEmployees() []model.Employee {
	return []model.Employee{
		{ID: uuid.NewString(), Name: "Alice Moreau", Role: model.RoleHeadWaiter},
		{ID: uuid.NewString(), Name: "Ben Ortega", Role: model.RoleChef},
		{ID: uuid.NewString(), Name: "Chloe Tan", Role: model.RoleServer},
		{ID: uuid.NewString(), Name: "Derek Walsh", Role: model.RoleBartender, Availability: []model.Weekday{
			model.Wednesday, model.Thursday, model.Friday, model.Saturday, model.Sunday,
		}},
		{ID: uuid.NewString(), Name: "Elena Petrova", Role: model.RoleHost},
	}
}

func seedDuties() []model.Duty {
	return []model.Duty{
		{ID: uuid.NewString(), Label: "Grill station"},
		{ID: uuid.NewString(), Label: "Bar prep"},
		{ID: uuid.NewString(), Label: "Closing checklist"},
	}
}

func seedShifts() []model.Shift {
	var shifts []model.Shift
	for _, day := range model.Weekdays {
		shifts = append(shifts,
			model.Shift{ID: uuid.NewString(), Day: day, StartTime: "11:00", EndTime: "17:00", Label: "Lunch"},
			model.Shift{ID: uuid.NewString(), Day: day, StartTime: "17:00", EndTime: "23:00", Label: "Dinner"},
		)
	}
	return shifts
}
