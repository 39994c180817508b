// Package api exposes the schedule over a JSON HTTP surface. The
// browser UI itself is out of scope; this is the seam it mounts on.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"rotaboard/internal/chat"
	"rotaboard/internal/store"
)

// Handler bundles the API's collaborators.
type Handler struct {
	store   *store.Store
	session *chat.Session
	logger  *zerolog.Logger
}

// New creates the API handler.
func New(st *store.Store, session *chat.Session, logger *zerolog.Logger) *Handler {
	return &Handler{store: st, session: session, logger: logger}
}

// Router builds the chi router for the API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.logRequests)

	r.Route("/api", func(r chi.Router) {
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.listEmployees)
			r.Post("/", h.createEmployee)
			r.Put("/{id}", h.updateEmployee)
			r.Delete("/{id}", h.deleteEmployee)
		})

		r.Route("/duties", func(r chi.Router) {
			r.Get("/", h.listDuties)
			r.Post("/", h.createDuty)
			r.Delete("/{id}", h.deleteDuty)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.listShifts)
			r.Post("/", h.createShift)
			r.Put("/{id}", h.updateShift)
			r.Delete("/{id}", h.deleteShift)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", h.createAssignment)
			r.Put("/{id}/duty", h.setSpecialDuty)
			r.Delete("/{id}", h.deleteAssignment)
		})

		r.Get("/week", h.weekView)

		r.Get("/rules", h.getRules)
		r.Put("/rules", h.putRules)

		r.Route("/chat", func(r chi.Router) {
			r.Get("/", h.chatHistory)
			r.Post("/", h.chatSend)
			r.Post("/cancel", h.chatCancel)
			r.Post("/{id}/apply", h.chatApply)
			r.Post("/{id}/discard", h.chatDiscard)
		})

		r.Get("/export", h.exportJSON)
		r.Get("/export/xlsx", h.exportXLSX)
		r.Post("/import", h.importJSON)
	})

	return r
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.logger.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}
