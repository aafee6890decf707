package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/service"
)

// UserHandler serves the /users routes and the instructor showcase.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

type createUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoURL"`
	Password string `json:"password"`
}

// HandleCreate records a user on first sign-in.
//
// HTTP: POST /users
//
// New email → the insert acknowledgement. Known email → 200 with
// {"message": "user already exists"} and nothing written.
func (h *UserHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}

	res, existed, err := h.users.Create(r.Context(), service.NewUser{
		Name:     req.Name,
		Email:    req.Email,
		PhotoURL: req.PhotoURL,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if existed {
		writeJSON(w, http.StatusOK, MessageResponse{Message: service.UserExistsMessage})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleList returns every user. Admin only.
//
// HTTP: GET /users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// HandleListInstructors returns up to six instructors for the landing page.
//
// HTTP: GET /instructorusers
func (h *UserHandler) HandleListInstructors(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListInstructors(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// probeKey is the JSON key both probe routes answer under. The frontend
// reads .admin from either route, so the instructor probe uses it too.
const probeKey = "admin"

// HandleRoleProbe answers whether the caller holds role:
// GET /users/admin/{email} → {"admin": bool},
// GET /users/instructor/{email} → {"admin": bool, "instructor": bool}.
//
// The {email} in the path must be the caller's own; any other email is
// answered false without touching the store.
func (h *UserHandler) HandleRoleProbe(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := callerEmail(r)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}

		has, err := h.users.HasRole(r.Context(), caller, chi.URLParam(r, "email"), role)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}

		body := map[string]bool{probeKey: has}
		if role != model.RoleAdmin {
			body[string(role)] = has
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// HandleSetRole assigns role to the user in the {id} path segment.
//
// HTTP: PATCH /users/admin/{id}, /users/instructor/{id}, /users/student/{id}
func (h *UserHandler) HandleSetRole(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := h.users.SetRole(r.Context(), chi.URLParam(r, "id"), role)
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
