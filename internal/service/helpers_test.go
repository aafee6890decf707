package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/ombliss-yoga/internal/auth"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
	"github.com/sakif/ombliss-yoga/internal/repository/sqlite"
)

// Service tests run against an in-memory SQLite store: the repositories are
// already covered by their own tests, so here they stand in for the real
// thing. failingUsers covers the store-down paths SQLite cannot produce.

func newTestStore(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUserService(t *testing.T, users repository.UserRepository) *UserService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret-at-least-16")
	require.NoError(t, err)
	return NewUserService(users, auth.NewPasswordServiceWithCost(bcrypt.MinCost), tokens, quietLogger())
}

func seedClass(t *testing.T, store repository.Store, name string, seats int) *model.Class {
	t.Helper()
	class := &model.Class{ClassName: name, Price: 19.99, Seat: seats, InstructorEmail: "mira@example.com"}
	_, err := store.Classes().Create(context.Background(), class)
	require.NoError(t, err)
	return class
}

// failingUsers is a UserRepository whose every call fails with err.
type failingUsers struct{ err error }

func (f failingUsers) Create(context.Context, *model.User) (*model.InsertResult, error) {
	return nil, f.err
}

func (f failingUsers) GetByEmail(context.Context, string) (*model.User, error) {
	return nil, f.err
}

func (f failingUsers) List(context.Context, repository.ListOptions) ([]model.User, error) {
	return nil, f.err
}

func (f failingUsers) ListByRole(context.Context, model.Role, repository.ListOptions) ([]model.User, error) {
	return nil, f.err
}

func (f failingUsers) SetRole(context.Context, string, model.Role) (*model.UpdateResult, error) {
	return nil, f.err
}
