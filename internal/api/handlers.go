package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"rotaboard/internal/chat"
	"rotaboard/internal/export"
	"rotaboard/internal/model"
	"rotaboard/internal/store"
	"rotaboard/internal/week"
)

func (h *Handler) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			h.logger.Error().Err(err).Msg("encode response failed")
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrEmployeeNotFound),
		errors.Is(err, store.ErrDutyNotFound),
		errors.Is(err, store.ErrShiftNotFound),
		errors.Is(err, store.ErrAssignmentNotFound),
		errors.Is(err, chat.ErrNoProposal):
		status = http.StatusNotFound
	case errors.Is(err, chat.ErrBusy), errors.Is(err, chat.ErrNotPending):
		status = http.StatusConflict
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	h.respond(w, status, map[string]string{"error": err.Error()})
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// --- employees ---

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.store.Employees())
}

type employeeRequest struct {
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	Availability []model.Weekday `json:"availability,omitempty"`
}

func (h *Handler) createEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	e, err := h.store.AddEmployee(r.Context(), req.Name, model.ParseRole(req.Role), req.Availability)
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.respond(w, http.StatusCreated, e)
}

func (h *Handler) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	e := model.Employee{
		ID:           chi.URLParam(r, "id"),
		Name:         req.Name,
		Role:         model.ParseRole(req.Role),
		Availability: req.Availability,
	}
	if err := h.store.UpdateEmployee(r.Context(), e); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, e)
}

func (h *Handler) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// --- duties ---

func (h *Handler) listDuties(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.store.Duties())
}

func (h *Handler) createDuty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Label string `json:"label"`
	}
	if err := decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	d, err := h.store.AddDuty(r.Context(), req.Label)
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.respond(w, http.StatusCreated, d)
}

func (h *Handler) deleteDuty(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveDuty(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// --- shifts ---

func (h *Handler) listShifts(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, h.store.Shifts())
}

func (h *Handler) createShift(w http.ResponseWriter, r *http.Request) {
	var sh model.Shift
	if err := decode(r, &sh); err != nil {
		h.respondError(w, err)
		return
	}
	created, err := h.store.AddShift(r.Context(), sh)
	if err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.respond(w, http.StatusCreated, created)
}

func (h *Handler) updateShift(w http.ResponseWriter, r *http.Request) {
	var sh model.Shift
	if err := decode(r, &sh); err != nil {
		h.respondError(w, err)
		return
	}
	sh.ID = chi.URLParam(r, "id")
	if err := h.store.UpdateShift(r.Context(), sh); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, sh)
}

func (h *Handler) deleteShift(w http.ResponseWriter, r *http.Request) {
	if err := h.store.RemoveShift(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// --- assignments ---

func (h *Handler) createAssignment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ShiftID     string `json:"shiftId"`
		EmployeeID  string `json:"employeeId"`
		WeekID      string `json:"weekId"`
		SpecialDuty string `json:"specialDuty,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if req.ShiftID == "" || req.EmployeeID == "" || req.WeekID == "" {
		h.respondError(w, fmt.Errorf("%w: shiftId, employeeId and weekId are required", errBadRequest))
		return
	}
	a, err := h.store.Assign(r.Context(), req.ShiftID, req.EmployeeID, req.WeekID, req.SpecialDuty)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, a)
}

func (h *Handler) setSpecialDuty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SpecialDuty string `json:"specialDuty"`
	}
	if err := decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if err := h.store.SetSpecialDuty(r.Context(), chi.URLParam(r, "id"), req.SpecialDuty); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, nil)
}

func (h *Handler) deleteAssignment(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Unassign(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusNoContent, nil)
}

// --- week view ---

// weekView resolves ?date= (defaulting to today) plus an optional
// ?delta= week offset to a week partition with its derived views.
func (h *Handler) weekView(w http.ResponseWriter, r *http.Request) {
	at, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if deltaStr := r.URL.Query().Get("delta"); deltaStr != "" {
		delta, err := strconv.Atoi(deltaStr)
		if err != nil {
			h.respondError(w, fmt.Errorf("%w: bad delta %q", errBadRequest, deltaStr))
			return
		}
		at = week.Shift(at, delta)
	}

	weekID := week.ID(at)
	h.respond(w, http.StatusOK, map[string]any{
		"weekId":        weekID,
		"assignments":   h.store.AssignmentsForWeek(weekID),
		"freeEmployees": h.store.FreeEmployees(weekID),
		"coverage":      h.store.Coverage(weekID),
	})
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", errBadRequest, s)
	}
	return t, nil
}

// --- rules ---

func (h *Handler) getRules(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]string{"aiRules": h.store.AIRules()})
}

func (h *Handler) putRules(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AIRules string `json:"aiRules"`
	}
	if err := decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	h.store.SetAIRules(r.Context(), req.AIRules)
	h.respond(w, http.StatusOK, nil)
}

// --- chat ---

func (h *Handler) chatHistory(w http.ResponseWriter, r *http.Request) {
	h.respond(w, http.StatusOK, map[string]any{
		"messages": h.session.History(),
		"loading":  h.session.Loading(),
	})
}

func (h *Handler) chatSend(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
		Date string `json:"date,omitempty"`
	}
	if err := decode(r, &req); err != nil {
		h.respondError(w, err)
		return
	}
	if req.Text == "" {
		h.respondError(w, fmt.Errorf("%w: text is required", errBadRequest))
		return
	}
	at, err := parseDate(req.Date)
	if err != nil {
		h.respondError(w, err)
		return
	}

	// Detach from the request context so closing this HTTP request does
	// not cancel the gateway call; cancellation goes through /cancel.
	msg, err := h.session.Send(context.WithoutCancel(r.Context()), req.Text, at)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			h.respond(w, http.StatusOK, map[string]bool{"canceled": true})
			return
		}
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, msg)
}

func (h *Handler) chatCancel(w http.ResponseWriter, r *http.Request) {
	h.session.Cancel()
	h.respond(w, http.StatusOK, nil)
}

func (h *Handler) chatApply(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Apply(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, nil)
}

func (h *Handler) chatDiscard(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Discard(chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	h.respond(w, http.StatusOK, nil)
}

// --- export / import ---

func (h *Handler) exportJSON(w http.ResponseWriter, r *http.Request) {
	doc := export.Snapshot(h.store)
	w.Header().Set("Content-Disposition", `attachment; filename="rotaboard-export.json"`)
	h.respond(w, http.StatusOK, doc)
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	at, err := parseDate(r.URL.Query().Get("date"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	weekID := week.ID(at)
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rotaboard-%s.xlsx"`, weekID))
	if err := export.WeekSheet(w, h.store, weekID); err != nil {
		h.logger.Error().Err(err).Msg("xlsx export failed")
	}
}

func (h *Handler) importJSON(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	if err := export.Import(r.Context(), h.store, data); err != nil {
		h.respondError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	h.respond(w, http.StatusOK, nil)
}

func readBody(r *http.Request) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return b, nil
}
