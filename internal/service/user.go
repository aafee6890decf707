// Package service contains the business rules of the marketplace.
//
// Handlers parse HTTP and write responses; services validate, enforce
// ownership and orchestrate repositories; repositories talk to the store.
// Services never see an *http.Request and return apperror values that the
// handler layer turns into status codes.
//
//	main.go builds:  Store → Services → Handlers → Router
//	at runtime:      Handler → Service → Repository → Store
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/auth"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

// InstructorShowcaseLimit caps GET /instructorusers.
const InstructorShowcaseLimit = 6

// UserExistsMessage is what POST /users answers for an email already on file.
const UserExistsMessage = "user already exists"

var _ auth.RoleResolver = (*UserService)(nil)

// NewUser is the body of POST /users. Password is optional: users coming from
// a social sign-in never have one.
type NewUser struct {
	Name     string
	Email    string
	PhotoURL string
	Password string
}

// UserService owns user records and role assignment.
type UserService struct {
	users     repository.UserRepository
	passwords *auth.PasswordService
	tokens    *auth.TokenService
	logger    *slog.Logger
}

func NewUserService(
	users repository.UserRepository,
	passwords *auth.PasswordService,
	tokens *auth.TokenService,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		logger:    logger,
	}
}

// Create stores a user the first time an email signs in.
//
// The call is idempotent: if the email is already on file nothing is written
// and existed is true. Two concurrent first sign-ins race on the store's
// unique email index; the loser sees ErrConflict and is reported the same way.
func (s *UserService) Create(ctx context.Context, in NewUser) (res *model.InsertResult, existed bool, err error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return nil, false, apperror.ValidationFailed("email", "email is required")
	}

	_, err = s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, true, nil
	case !errors.Is(err, apperror.ErrNotFound):
		return nil, false, fmt.Errorf("service/user: looking up %s: %w", email, err)
	}

	user := &model.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    email,
		PhotoURL: in.PhotoURL,
	}
	if in.Password != "" {
		if n := len(in.Password); n < auth.MinPasswordLength || n > auth.MaxPasswordLength {
			return nil, false, apperror.ValidationFailed("password",
				fmt.Sprintf("password must be between %d and %d characters", auth.MinPasswordLength, auth.MaxPasswordLength))
		}
		hash, err := s.passwords.Hash(in.Password)
		if err != nil {
			return nil, false, fmt.Errorf("service/user: hashing password: %w", err)
		}
		user.PasswordHash = hash
	}

	res, err = s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("service/user: creating %s: %w", email, err)
	}

	s.logger.Info("user created", slog.String("userID", user.ID), slog.String("email", email))
	return res, false, nil
}

// Login checks an email+password pair and issues a token for it. Every
// failure looks the same to the caller so emails cannot be probed.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	invalid := apperror.Unauthorized("invalid email or password")

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", invalid
		}
		return "", fmt.Errorf("service/user: looking up %s: %w", email, err)
	}
	if user.PasswordHash == "" {
		return "", invalid
	}
	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return "", invalid
		}
		return "", fmt.Errorf("service/user: verifying password: %w", err)
	}

	token, err := s.tokens.Issue(map[string]any{
		"email": user.Email,
		"name":  user.Name,
	})
	if err != nil {
		return "", fmt.Errorf("service/user: issuing token: %w", err)
	}
	return token, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx, repository.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("service/user: listing users: %w", err)
	}
	return users, nil
}

// ListInstructors returns the instructors shown on the landing page.
func (s *UserService) ListInstructors(ctx context.Context) ([]model.User, error) {
	users, err := s.users.ListByRole(ctx, model.RoleInstructor, repository.ListOptions{Limit: InstructorShowcaseLimit})
	if err != nil {
		return nil, fmt.Errorf("service/user: listing instructors: %w", err)
	}
	return users, nil
}

func (s *UserService) SetRole(ctx context.Context, id string, role model.Role) (*model.UpdateResult, error) {
	if !role.Valid() {
		return nil, apperror.ValidationFailed("role", fmt.Sprintf("unknown role %q", role))
	}
	res, err := s.users.SetRole(ctx, id, role)
	if err != nil {
		return nil, fmt.Errorf("service/user: setting role %s on %s: %w", role, id, err)
	}
	s.logger.Info("role assigned", slog.String("userID", id), slog.String("role", string(role)))
	return res, nil
}

// RoleOf reads the stored role for email on every call. It satisfies
// auth.RoleResolver, so a promotion or demotion is seen by the very next
// request.
func (s *UserService) RoleOf(ctx context.Context, email string) (model.Role, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return model.RoleNone, fmt.Errorf("service/user: resolving role of %s: %w", email, err)
	}
	return user.Role, nil
}

// HasRole answers the self-scoped probes. A caller may only ask about
// themselves: asking about anyone else is answered false without a lookup,
// as is an email nobody signed in with.
func (s *UserService) HasRole(ctx context.Context, callerEmail, email string, role model.Role) (bool, error) {
	if email != callerEmail {
		return false, nil
	}
	got, err := s.RoleOf(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return got == role, nil
}
