// Package model defines the schedule domain types shared across the service.
package model

import "strings"

// Role is an employee's job role in the restaurant.
type Role string

const (
	RoleServer     Role = "Server"
	RoleChef       Role = "Chef"
	RoleBartender  Role = "Bartender"
	RoleHost       Role = "Host"
	RoleManager    Role = "Manager"
	RoleDishwasher Role = "Dishwasher"
	RoleHeadWaiter Role = "HeadWaiter"
)

// Roles lists all known roles in display order.
var Roles = []Role{
	RoleServer, RoleChef, RoleBartender, RoleHost,
	RoleManager, RoleDishwasher, RoleHeadWaiter,
}

// ParseRole maps a free-form role string to a known Role.
// Unknown values fall back to Server; AI responses are not trusted to
// spell roles exactly.
func ParseRole(s string) Role {
	normalized := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, r := range Roles {
		if strings.ToLower(string(r)) == normalized {
			return r
		}
	}
	return RoleServer
}

// Weekday is a day of the week, Monday through Sunday.
type Weekday string

const (
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
	Sunday    Weekday = "Sunday"
)

// Weekdays lists the days Monday-first, matching how schedule weeks run.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Employee is a member of staff who can be assigned to shifts.
type Employee struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
	// Availability lists the days the employee can work.
	// Empty or nil means available every day.
	Availability []Weekday `json:"availability,omitempty"`
}

// AvailableOn reports whether the employee can work on the given day.
func (e *Employee) AvailableOn(day Weekday) bool {
	if len(e.Availability) == 0 {
		return true
	}
	for _, d := range e.Availability {
		if d == day {
			return true
		}
	}
	return false
}

// Duty is a free-form tag describing a special responsibility within a
// shift (e.g. "grill station"). Assignments reference duties by label,
// not by id.
type Duty struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Shift is a recurring weekly time slot, not tied to a calendar week.
type Shift struct {
	ID        string  `json:"id"`
	Day       Weekday `json:"day"`
	StartTime string  `json:"startTime"` // "HH:MM"
	EndTime   string  `json:"endTime"`   // "HH:MM"
	Label     string  `json:"label"`
	Notes     string  `json:"notes,omitempty"`
}

// Assignment records that one employee works one shift during one week.
// WeekID is the Monday date stamp of that week. SpecialDuty is the only
// field mutated in place after creation.
type Assignment struct {
	ID          string `json:"id"`
	ShiftID     string `json:"shiftId"`
	EmployeeID  string `json:"employeeId"`
	WeekID      string `json:"weekId"`
	SpecialDuty string `json:"specialDuty,omitempty"`
}

// ProposedAssignment is one entry of the AI's full-replacement
// assignment list for the viewed week. It carries no id and no week;
// both are resolved during reconciliation.
type ProposedAssignment struct {
	ShiftID     string `json:"shiftId"`
	EmployeeID  string `json:"employeeId"`
	SpecialDuty string `json:"specialDuty,omitempty"`
}

// ProposedEmployee is a new hire suggested by the AI, matched against
// existing employees by name during reconciliation.
type ProposedEmployee struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// ProposalStatus tracks the lifecycle of a pending AI proposal.
type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalApplied   ProposalStatus = "applied"
	ProposalDiscarded ProposalStatus = "discarded"
)

// Proposal is a staged, not-yet-committed schedule rewrite attached to
// a chat message. It is immutable once created; only Status changes,
// and only through explicit apply or discard.
type Proposal struct {
	MessageID   string               `json:"messageId"`
	WeekID      string               `json:"weekId"`
	Assignments []ProposedAssignment `json:"assignments"`
	NewHires    []ProposedEmployee   `json:"newHires,omitempty"`
	Status      ProposalStatus       `json:"status"`
}
