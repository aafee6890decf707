package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/service"
)

// ListingHandler serves instructor class submissions and their admin review.
type ListingHandler struct {
	listings *service.ListingService
	logger   *slog.Logger
}

func NewListingHandler(listings *service.ListingService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{listings: listings, logger: logger}
}

// HTTP: POST /instructors
func (h *ListingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var listing model.ClassListing
	if err := decodeJSON(w, r, &listing); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.listings.Submit(r.Context(), &listing)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HTTP: GET /instructors
func (h *ListingHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	listings, err := h.listings.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// HTTP: GET /instructors/{id}
func (h *ListingHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	listing, err := h.listings.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listing)
}

// HandleUpdate replaces className, price and seat.
//
// HTTP: PUT /instructors/{id}
func (h *ListingHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var changes model.ListingChanges
	if err := decodeJSON(w, r, &changes); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.listings.Update(r.Context(), chi.URLParam(r, "id"), changes)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HTTP: PATCH /approvedinstructors/admin/{id}
func (h *ListingHandler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	res, err := h.listings.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HTTP: PATCH /deniedinstructors/admin/{id}
func (h *ListingHandler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	res, err := h.listings.Deny(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

// HTTP: PATCH /feedback/admin/{id}
func (h *ListingHandler) HandleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	res, err := h.listings.Feedback(r.Context(), chi.URLParam(r, "id"), req.Feedback)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
