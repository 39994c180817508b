// Package store owns the in-memory schedule collections and their
// persistence round-trips. All mutation goes through explicit methods
// on Store; every mutation rewrites the affected collection's blob.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"rotaboard/internal/metrics"
	"rotaboard/internal/model"
	"rotaboard/internal/reconcile"
)

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrDutyNotFound       = errors.New("duty not found")
	ErrShiftNotFound      = errors.New("shift not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// Store is the single owned aggregate holding all schedule state. The
// UI layer receives it by handle; nothing reads the collections through
// globals.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	logger  *zerolog.Logger

	employees   []model.Employee
	duties      []model.Duty
	shifts      []model.Shift
	assignments []model.Assignment
	aiRules     string
}

// New creates an empty store over the given backend. Call Load before use.
func New(backend Backend, logger *zerolog.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// Load reads the five state blobs. A missing or unparsable blob falls
// back to the built-in seed data for that collection; startup never
// fails on bad state.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	loadBlob(ctx, s, KeyEmployees, &s.employees, seedEmployees())
	loadBlob(ctx, s, KeyDuties, &s.duties, seedDuties())
	loadBlob(ctx, s, KeyShifts, &s.shifts, seedShifts())
	loadBlob(ctx, s, KeyAssignments, &s.assignments, []model.Assignment{})

	var rules string
	loadBlob(ctx, s, KeyAIRules, &rules, seedAIRules)
	s.aiRules = rules

	return nil
}

func loadBlob[T any](ctx context.Context, s *Store, key string, dst *T, fallback T) {
	data, err := s.backend.Read(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("blob read failed, using defaults")
		}
		*dst = fallback
		return
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("blob unparsable, using defaults")
		*dst = fallback
	}
}

// persist rewrites one blob. A write failure is local-only: the
// in-memory mutation stands, the failure is logged and counted.
func (s *Store) persist(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("blob marshal failed")
		metrics.IncStoreWriteFailure(key)
		return
	}
	if err := s.backend.Write(ctx, key, data); err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("blob write failed")
		metrics.IncStoreWriteFailure(key)
	}
}

// Employees returns a copy of the employee collection.
func (s *Store) Employees() []model.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Employee(nil), s.employees...)
}

// EmployeeByID looks up one employee.
func (s *Store) EmployeeByID(id string) (model.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.employees {
		if e.ID == id {
			return e, nil
		}
	}
	return model.Employee{}, ErrEmployeeNotFound
}

// AddEmployee creates an employee with a fresh id.
func (s *Store) AddEmployee(ctx context.Context, name string, role model.Role, availability []model.Weekday) (model.Employee, error) {
	if strings.TrimSpace(name) == "" {
		return model.Employee{}, fmt.Errorf("employee name is required")
	}
	e := model.Employee{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Role:         role,
		Availability: availability,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = append(s.employees, e)
	s.persist(ctx, KeyEmployees, s.employees)
	return e, nil
}

// AddEmployees appends pre-built employee records. Used when an applied
// AI proposal materializes new hires with already-generated ids.
func (s *Store) AddEmployees(ctx context.Context, employees []model.Employee) {
	if len(employees) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = append(s.employees, employees...)
	s.persist(ctx, KeyEmployees, s.employees)
}

// UpdateEmployee replaces an existing employee record, matched by id.
func (s *Store) UpdateEmployee(ctx context.Context, e model.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.employees {
		if s.employees[i].ID == e.ID {
			s.employees[i] = e
			s.persist(ctx, KeyEmployees, s.employees)
			return nil
		}
	}
	return ErrEmployeeNotFound
}

// RemoveEmployee deletes an employee and cascades to their assignments.
func (s *Store) RemoveEmployee(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.employees {
		if s.employees[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrEmployeeNotFound
	}
	s.employees = append(s.employees[:idx], s.employees[idx+1:]...)
	s.persist(ctx, KeyEmployees, s.employees)

	s.dropAssignments(ctx, func(a model.Assignment) bool { return a.EmployeeID == id })
	return nil
}

// Duties returns a copy of the duty collection.
func (s *Store) Duties() []model.Duty {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Duty(nil), s.duties...)
}

// AddDuty creates a duty tag.
func (s *Store) AddDuty(ctx context.Context, label string) (model.Duty, error) {
	if strings.TrimSpace(label) == "" {
		return model.Duty{}, fmt.Errorf("duty label is required")
	}
	d := model.Duty{ID: uuid.NewString(), Label: strings.TrimSpace(label)}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.duties = append(s.duties, d)
	s.persist(ctx, KeyDuties, s.duties)
	return d, nil
}

// RemoveDuty deletes a duty tag. Assignments reference duties by label,
// not id, so no cascade applies.
func (s *Store) RemoveDuty(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.duties {
		if s.duties[i].ID == id {
			s.duties = append(s.duties[:i], s.duties[i+1:]...)
			s.persist(ctx, KeyDuties, s.duties)
			return nil
		}
	}
	return ErrDutyNotFound
}

// Shifts returns a copy of the shift collection.
func (s *Store) Shifts() []model.Shift {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Shift(nil), s.shifts...)
}

// ShiftByID looks up one shift.
func (s *Store) ShiftByID(id string) (model.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sh := range s.shifts {
		if sh.ID == id {
			return sh, nil
		}
	}
	return model.Shift{}, ErrShiftNotFound
}

// AddShift creates a recurring weekly shift.
func (s *Store) AddShift(ctx context.Context, sh model.Shift) (model.Shift, error) {
	if sh.Label == "" || sh.StartTime == "" || sh.EndTime == "" {
		return model.Shift{}, fmt.Errorf("shift label, start and end times are required")
	}
	sh.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts = append(s.shifts, sh)
	s.persist(ctx, KeyShifts, s.shifts)
	return sh, nil
}

// UpdateShift replaces an existing shift, matched by id.
func (s *Store) UpdateShift(ctx context.Context, sh model.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.shifts {
		if s.shifts[i].ID == sh.ID {
			s.shifts[i] = sh
			s.persist(ctx, KeyShifts, s.shifts)
			return nil
		}
	}
	return ErrShiftNotFound
}

// RemoveShift deletes a shift and cascades to assignments referencing it.
func (s *Store) RemoveShift(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.shifts {
		if s.shifts[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrShiftNotFound
	}
	s.shifts = append(s.shifts[:idx], s.shifts[idx+1:]...)
	s.persist(ctx, KeyShifts, s.shifts)

	s.dropAssignments(ctx, func(a model.Assignment) bool { return a.ShiftID == id })
	return nil
}

// Assignments returns a copy of the full assignment collection.
func (s *Store) Assignments() []model.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Assignment(nil), s.assignments...)
}

// AssignmentsForWeek returns the assignments partitioned to one week.
func (s *Store) AssignmentsForWeek(weekID string) []model.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Assignment
	for _, a := range s.assignments {
		if a.WeekID == weekID {
			out = append(out, a)
		}
	}
	return out
}

// Assign records that an employee works a shift in a week. At most one
// assignment exists per (shift, employee, week) triple; repeating the
// same request returns the existing record unchanged.
func (s *Store) Assign(ctx context.Context, shiftID, employeeID, weekID, specialDuty string) (model.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.shiftExists(shiftID) {
		return model.Assignment{}, ErrShiftNotFound
	}
	if !s.employeeExists(employeeID) {
		return model.Assignment{}, ErrEmployeeNotFound
	}

	for _, a := range s.assignments {
		if a.ShiftID == shiftID && a.EmployeeID == employeeID && a.WeekID == weekID {
			return a, nil
		}
	}

	a := model.Assignment{
		ID:          uuid.NewString(),
		ShiftID:     shiftID,
		EmployeeID:  employeeID,
		WeekID:      weekID,
		SpecialDuty: specialDuty,
	}
	s.assignments = append(s.assignments, a)
	s.persist(ctx, KeyAssignments, s.assignments)
	return a, nil
}

// Unassign deletes one assignment.
func (s *Store) Unassign(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			s.assignments = append(s.assignments[:i], s.assignments[i+1:]...)
			s.persist(ctx, KeyAssignments, s.assignments)
			return nil
		}
	}
	return ErrAssignmentNotFound
}

// SetSpecialDuty changes an assignment's special duty, the only field
// mutable in place.
func (s *Store) SetSpecialDuty(ctx context.Context, id, duty string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.assignments {
		if s.assignments[i].ID == id {
			s.assignments[i].SpecialDuty = duty
			s.persist(ctx, KeyAssignments, s.assignments)
			return nil
		}
	}
	return ErrAssignmentNotFound
}

// CommitProposal merges an accepted proposal into the schedule and
// commits the result, all under the write lock. Running the merge here
// rather than over a caller-held snapshot means an assignment created
// by another goroutine between snapshot and commit is never lost: the
// merge always sees the current collections. The commit is atomic and
// never observable half-done.
func (s *Store) CommitProposal(ctx context.Context, weekID string, proposed []model.ProposedAssignment, hires []model.ProposedEmployee) reconcile.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := reconcile.Merge(reconcile.Input{
		Assignments: s.assignments,
		Employees:   s.employees,
		WeekID:      weekID,
		Proposed:    proposed,
		NewHires:    hires,
	})
	if len(res.NewEmployees) > 0 {
		s.employees = append(s.employees, res.NewEmployees...)
		s.persist(ctx, KeyEmployees, s.employees)
	}
	s.assignments = res.Assignments
	s.persist(ctx, KeyAssignments, s.assignments)
	return res
}

// AIRules returns the user's free-text scheduling rules.
func (s *Store) AIRules() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aiRules
}

// SetAIRules replaces the free-text scheduling rules.
func (s *Store) SetAIRules(ctx context.Context, rules string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiRules = rules
	s.persist(ctx, KeyAIRules, s.aiRules)
}

// ReplaceEmployees swaps the employee collection. Used by import.
func (s *Store) ReplaceEmployees(ctx context.Context, employees []model.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = employees
	s.persist(ctx, KeyEmployees, s.employees)
}

// ReplaceDuties swaps the duty collection. Used by import.
func (s *Store) ReplaceDuties(ctx context.Context, duties []model.Duty) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duties = duties
	s.persist(ctx, KeyDuties, s.duties)
}

// ReplaceShifts swaps the shift collection. Used by import.
func (s *Store) ReplaceShifts(ctx context.Context, shifts []model.Shift) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shifts = shifts
	s.persist(ctx, KeyShifts, s.shifts)
}

// ReplaceAssignments swaps the assignment collection. Used by import.
func (s *Store) ReplaceAssignments(ctx context.Context, assignments []model.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments = assignments
	s.persist(ctx, KeyAssignments, s.assignments)
}

// dropAssignments removes matching assignments; callers hold the lock.
func (s *Store) dropAssignments(ctx context.Context, match func(model.Assignment) bool) {
	kept := s.assignments[:0]
	dropped := false
	for _, a := range s.assignments {
		if match(a) {
			dropped = true
			continue
		}
		kept = append(kept, a)
	}
	s.assignments = kept
	if dropped {
		s.persist(ctx, KeyAssignments, s.assignments)
	}
}

func (s *Store) shiftExists(id string) bool {
	for _, sh := range s.shifts {
		if sh.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) employeeExists(id string) bool {
	for _, e := range s.employees {
		if e.ID == id {
			return true
		}
	}
	return false
}
