package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/ombliss-yoga/internal/auth"
	"github.com/sakif/ombliss-yoga/internal/service"
)

// AuthHandler issues access tokens.
//
//   - HandleIssueToken → POST /jwt, signs whatever identity the client sends
//   - HandleLogin      → POST /login, email+password for users who set one
type AuthHandler struct {
	tokens *auth.TokenService
	users  *service.UserService
	logger *slog.Logger
}

func NewAuthHandler(tokens *auth.TokenService, users *service.UserService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{tokens: tokens, users: users, logger: logger}
}

// TokenResponse is the body of a successful POST /jwt or POST /login.
type TokenResponse struct {
	Token string `json:"token"`
}

// HandleIssueToken signs the request body as-is.
//
// HTTP: POST /jwt
//
// The client has already proven who it is to the identity provider in the
// browser; this endpoint only turns that identity into a token our own
// routes accept. The payload is not validated: a body without an email
// produces a token that passes verification but never passes a role gate.
func (h *AuthHandler) HandleIssueToken(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if payload == nil {
		// A literal "null" body.
		payload = map[string]any{}
	}

	token, err := h.tokens.Issue(payload)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin exchanges an email and password for a token.
//
// HTTP: POST /login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	token, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token})
}
