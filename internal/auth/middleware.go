package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/metrics"
	"github.com/sakif/ombliss-yoga/internal/model"
)

// Client-facing messages. They are part of the API contract; the frontend
// matches on them to decide between "log in again" and "not allowed".
const (
	UnauthorizedMessage = "unauthorized access"
	ForbiddenMessage    = "forbidden message"
)

// contextKey is an unexported type so no other package can read or shadow the
// identity stored in the request context.
type contextKey string

const identityKey contextKey = "identity"

// RoleResolver looks up the stored role for an email.
//
// Implementations must hit the store on every call: a role revoked mid-session
// has to take effect on the very next request. A missing user is reported as
// an error wrapping apperror.ErrNotFound.
type RoleResolver interface {
	RoleOf(ctx context.Context, email string) (model.Role, error)
}

// RequireAuth is the token verifier. It reads "Authorization: Bearer <token>",
// validates it, and stores the decoded Identity in the request context.
//
// Missing header, missing token, bad signature and expiry all produce the same
// 401 body; the reason is only logged at debug level.
//
// MIDDLEWARE PATTERN IN GO:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... decide, then either return or call next ...
//	        next.ServeHTTP(w, r)
//	    })
//	}
func RequireAuth(tokens *TokenService, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				metrics.AuthDecisions.WithLabelValues("verify", "unauthorized").Inc()
				writeDenied(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			identity, err := tokens.Verify(token)
			if err != nil {
				logger.Debug("credential rejected",
					slog.String("path", r.URL.Path),
					slog.String("error", err.Error()),
				)
				metrics.AuthDecisions.WithLabelValues("verify", "unauthorized").Inc()
				writeDenied(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			metrics.AuthDecisions.WithLabelValues("verify", "allowed").Inc()
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(r.Context(), identity)))
		})
	}
}

// RequireRole admits the request only if the verified caller's stored role is
// role. It must be mounted after RequireAuth.
//
// One store read per request, no caching. A missing user and a different role
// are both 403. A store failure is a 500 with a generic message.
func RequireRole(resolver RoleResolver, role model.Role, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				// Mounted without RequireAuth in front of it.
				metrics.AuthDecisions.WithLabelValues("role", "unauthorized").Inc()
				writeDenied(w, http.StatusUnauthorized, UnauthorizedMessage)
				return
			}

			stored, err := resolver.RoleOf(r.Context(), identity.Email)
			switch {
			case errors.Is(err, apperror.ErrNotFound):
				stored = model.RoleNone
			case err != nil:
				logger.Error("role lookup failed",
					slog.String("email", identity.Email),
					slog.String("error", err.Error()),
				)
				metrics.AuthDecisions.WithLabelValues("role", "error").Inc()
				writeDenied(w, http.StatusInternalServerError, "An internal error occurred")
				return
			}

			if stored != role {
				metrics.AuthDecisions.WithLabelValues("role", "forbidden").Inc()
				writeDenied(w, http.StatusForbidden, ForbiddenMessage)
				return
			}

			metrics.AuthDecisions.WithLabelValues("role", "allowed").Inc()
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is the authorization gate for admin-only routes.
func RequireAdmin(resolver RoleResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return RequireRole(resolver, model.RoleAdmin, logger)
}

// ContextWithIdentity returns a copy of ctx carrying identity.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// IdentityFromContext retrieves the verified caller. It returns (nil, false)
// on routes that are not behind RequireAuth.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

type deniedResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

func writeDenied(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(deniedResponse{Error: true, Message: message})
}
