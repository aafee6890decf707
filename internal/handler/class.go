package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/service"
)

// ClassHandler serves published classes.
type ClassHandler struct {
	classes *service.ClassService
	logger  *slog.Logger
}

func NewClassHandler(classes *service.ClassService, logger *slog.Logger) *ClassHandler {
	return &ClassHandler{classes: classes, logger: logger}
}

// HTTP: POST /classes
func (h *ClassHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var class model.Class
	if err := decodeJSON(w, r, &class); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.classes.Publish(r.Context(), &class)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleList returns published classes. An optional ?limit=N returns the
// first N, which the landing page uses for its popular-classes strip.
//
// HTTP: GET /classes
func (h *ClassHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, apperror.ValidationFailed("limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	classes, err := h.classes.List(r.Context(), limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, classes)
}

// HTTP: GET /classes/{id}
func (h *ClassHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	class, err := h.classes.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, class)
}
