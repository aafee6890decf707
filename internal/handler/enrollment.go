package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ombliss-yoga/internal/service"
)

// EnrollmentHandler serves a student's selected classes. Every route sits
// behind auth.RequireAuth; the caller's verified email scopes every query.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	logger      *slog.Logger
}

func NewEnrollmentHandler(enrollments *service.EnrollmentService, logger *slog.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, logger: logger}
}

type selectClassRequest struct {
	ClassID string `json:"classId"`
}

// HTTP: POST /selectedclasses
func (h *EnrollmentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req selectClassRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.enrollments.Select(r.Context(), email, req.ClassID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HTTP: GET /selectedclasses?email=<caller>
func (h *EnrollmentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	enrollments, err := h.enrollments.List(r.Context(), email, r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

// HTTP: DELETE /selectedclasses/{id}
func (h *EnrollmentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	email, err := callerEmail(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, err := h.enrollments.Remove(r.Context(), email, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
