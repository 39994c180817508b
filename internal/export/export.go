// Package export implements full-state JSON export/import and XLSX
// week sheets.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"rotaboard/internal/model"
	"rotaboard/internal/store"
)

// FormatVersion identifies the export document layout.
const FormatVersion = 1

// Document is the downloadable full-state snapshot. On import, only
// the top-level keys present in the uploaded document are replaced;
// absent keys leave the corresponding collection untouched.
type Document struct {
	Employees   *[]model.Employee   `json:"employees,omitempty"`
	Shifts      *[]model.Shift      `json:"shifts,omitempty"`
	Duties      *[]model.Duty       `json:"duties,omitempty"`
	Assignments *[]model.Assignment `json:"assignments,omitempty"`
	AIRules     *string             `json:"aiRules,omitempty"`
	Version     int                 `json:"version"`
	Timestamp   time.Time           `json:"timestamp"`
}

// Snapshot builds a complete export document from the store.
func Snapshot(st *store.Store) Document {
	employees := st.Employees()
	shifts := st.Shifts()
	duties := st.Duties()
	assignments := st.Assignments()
	rules := st.AIRules()
	return Document{
		Employees:   &employees,
		Shifts:      &shifts,
		Duties:      &duties,
		Assignments: &assignments,
		AIRules:     &rules,
		Version:     FormatVersion,
		Timestamp:   time.Now(),
	}
}

// Import parses an uploaded document and replaces exactly the
// collections it carries. A malformed document leaves the store
// unmodified and returns an error for the caller to surface.
func Import(ctx context.Context, st *store.Store, data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("malformed import document: %w", err)
	}

	if doc.Employees != nil {
		st.ReplaceEmployees(ctx, *doc.Employees)
	}
	if doc.Shifts != nil {
		st.ReplaceShifts(ctx, *doc.Shifts)
	}
	if doc.Duties != nil {
		st.ReplaceDuties(ctx, *doc.Duties)
	}
	if doc.Assignments != nil {
		st.ReplaceAssignments(ctx, *doc.Assignments)
	}
	if doc.AIRules != nil {
		st.SetAIRules(ctx, *doc.AIRules)
	}
	return nil
}
