package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"rotaboard/internal/model"
)

// systemInstructions is the immutable contract sent with every request.
// The model must answer with a single JSON object and must return the
// complete assignment set for the viewed week, never a diff.
const systemInstructions = `You are a scheduling assistant for a restaurant.
You will receive the current staff roster, the recurring weekly shifts, the
allowed special duty labels, and the assignments of one specific week, all as JSON.
Rewrite the schedule for that week according to the manager's request and rules.

Respond with a single JSON object and nothing else:
{
  "message": "short explanation of what you changed",
  "newAssignments": [{"shiftId": "...", "employeeId": "...", "specialDuty": "optional"}],
  "employeesToAdd": [{"name": "...", "role": "..."}]
}

Rules you must always follow:
- "newAssignments" is the COMPLETE assignment set for the week, not a diff.
  Any existing assignment you omit will be deleted.
- Only reference shiftId and employeeId values that appear in the snapshot,
  except employees you introduce via "employeesToAdd".
- Respect each employee's availability days.
- "specialDuty" values should come from the allowed duty labels.
- Omit "employeesToAdd" when no new staff is needed.`

// Snapshot is the schedule state serialized into the prompt.
type Snapshot struct {
	WeekID      string             `json:"weekId"`
	Employees   []model.Employee   `json:"employees"`
	Shifts      []model.Shift      `json:"shifts"`
	DutyLabels  []string           `json:"allowedDuties"`
	Assignments []model.Assignment `json:"currentAssignments"`
	Rules       string             `json:"-"`
}

// BuildPrompt renders the user-facing part of the request: the
// manager's message, their standing free-text rules, and the snapshot.
func BuildPrompt(snap Snapshot, userText string) (string, error) {
	state, err := json.Marshal(struct {
		WeekID      string             `json:"weekId"`
		Employees   []model.Employee   `json:"employees"`
		Shifts      []model.Shift      `json:"shifts"`
		DutyLabels  []string           `json:"allowedDuties"`
		Assignments []model.Assignment `json:"currentAssignments"`
	}{snap.WeekID, snap.Employees, snap.Shifts, snap.DutyLabels, snap.Assignments})
	if err != nil {
		return "", fmt.Errorf("marshal schedule snapshot: %w", err)
	}

	var b strings.Builder
	b.WriteString("Manager request:\n")
	b.WriteString(userText)
	b.WriteString("\n\n")
	if strings.TrimSpace(snap.Rules) != "" {
		b.WriteString("Standing scheduling rules:\n")
		b.WriteString(snap.Rules)
		b.WriteString("\n\n")
	}
	b.WriteString("Current schedule state:\n")
	b.Write(state)
	return b.String(), nil
}
