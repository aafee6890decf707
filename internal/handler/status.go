// Package handler contains the HTTP handlers of the marketplace API.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming request (path params, query, JSON body)
// 2. Call the service layer
// 3. Write the response through writeJSON / writeError
//
// Handlers hold no business rules. Anything a CLI or a background job would
// also need to enforce belongs in internal/service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// RootMessage is the liveness text served on GET /.
const RootMessage = "ŌmBliss Yoĝa is running"

// Pinger is satisfied by repository.Store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StatusHandler answers liveness and readiness probes.
type StatusHandler struct {
	store  Pinger
	logger *slog.Logger
}

func NewStatusHandler(store Pinger, logger *slog.Logger) *StatusHandler {
	return &StatusHandler{store: store, logger: logger}
}

// HandleRoot is the plain-text liveness probe.
//
// HTTP: GET /
func (h *StatusHandler) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(RootMessage))
}

type healthResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}

// HandleHealth reports whether the store answers a ping within two seconds.
//
// HTTP: GET /healthz
func (h *StatusHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Store: "down"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Store: "up"})
}
