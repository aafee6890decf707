package handler

// RESPONSE HELPERS:
// Every handler answers through writeJSON or writeError, so the wire format
// lives in one place.
//
// ERROR FORMAT:
// Every error response has the same shape, matching what the auth gates send:
//   {"error": true, "message": "class not found with id 65f0..."}
//
// The frontend checks the boolean and shows the message; the status code
// carries the category.

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/auth"
	"github.com/sakif/ombliss-yoga/internal/payment"
)

// maxBodyBytes caps request bodies. Nothing this API accepts comes close.
const maxBodyBytes = 1 << 20

// internalErrorMessage is all a client ever learns about an unexpected failure.
const internalErrorMessage = "An internal error occurred"

const paymentsUnavailableMessage = "payments are not available"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

// MessageResponse is a bare {"message": "..."} answer.
type MessageResponse struct {
	Message string `json:"message"`
}

// writeJSON sends data with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status must be set before the body; once Encode writes, any
// later header change is silently ignored.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are gone already; logging is all that's left.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps a domain error to an HTTP status and sends it.
//
// errors.As finds the *apperror.AppError anywhere in the chain the service
// built with fmt.Errorf("...: %w", err), and its Message is safe to show.
// Anything else is a 500 with a generic message: raw errors can carry
// connection strings, queries or gateway diagnostics.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		message := appErr.Message

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, apperror.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, apperror.ErrConflict):
			status = http.StatusConflict
		default:
			message = internalErrorMessage
		}

		writeJSON(w, status, ErrorResponse{Error: true, Message: message})
		return
	}

	if errors.Is(err, payment.ErrNotConfigured) {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: true, Message: paymentsUnavailableMessage})
		return
	}

	logger.Error("request failed", slog.Any("error", err))
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: true, Message: internalErrorMessage})
}

// decodeJSON reads a JSON body into dst. Malformed or oversized bodies are
// validation errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.ValidationFailed("body", "request body is required")
		}
		return apperror.ValidationFailed("body", fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// callerEmail returns the verified email attached by auth.RequireAuth. A
// token minted without an email claim verifies, but it names nobody, so it
// cannot read or change anyone's enrollments or payments.
func callerEmail(r *http.Request) (string, error) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok || identity.Email == "" {
		return "", apperror.Unauthorized(auth.UnauthorizedMessage)
	}
	return identity.Email, nil
}
