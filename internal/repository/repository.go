// Package repository declares the storage contracts the services depend on.
//
// Two implementations exist: repository/mongo for the hosted document store
// used in production, and repository/sqlite for local development and tests.
// Both report a missing record as apperror.ErrNotFound and a malformed id as
// apperror.ErrValidation.
package repository

import (
	"context"

	"github.com/sakif/ombliss-yoga/internal/model"
)

// ListOptions restricts a find. A zero Limit means "no limit".
type ListOptions struct {
	Limit int
}

type UserRepository interface {
	// Create inserts a user. A second user with the same email fails with
	// apperror.ErrConflict; the store's unique index is the final arbiter.
	Create(ctx context.Context, user *model.User) (*model.InsertResult, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, opts ListOptions) ([]model.User, error)
	ListByRole(ctx context.Context, role model.Role, opts ListOptions) ([]model.User, error)
	SetRole(ctx context.Context, id string, role model.Role) (*model.UpdateResult, error)
}

// ListingRepository stores instructor class submissions ("instructors").
type ListingRepository interface {
	Create(ctx context.Context, listing *model.ClassListing) (*model.InsertResult, error)
	GetByID(ctx context.Context, id string) (*model.ClassListing, error)
	List(ctx context.Context, opts ListOptions) ([]model.ClassListing, error)
	UpdateDetails(ctx context.Context, id string, changes model.ListingChanges) (*model.UpdateResult, error)
	SetStatus(ctx context.Context, id string, status model.ListingStatus) (*model.UpdateResult, error)
	SetFeedback(ctx context.Context, id, feedback string) (*model.UpdateResult, error)
}

// ClassRepository stores published classes.
type ClassRepository interface {
	Create(ctx context.Context, class *model.Class) (*model.InsertResult, error)
	GetByID(ctx context.Context, id string) (*model.Class, error)
	List(ctx context.Context, opts ListOptions) ([]model.Class, error)
	// TakeSeat moves one seat from available to enrolled. It fails with
	// apperror.ErrConflict when no seat is left.
	TakeSeat(ctx context.Context, id string) (*model.UpdateResult, error)
}

// EnrollmentRepository stores the classes students selected.
type EnrollmentRepository interface {
	Create(ctx context.Context, enrollment *model.Enrollment) (*model.InsertResult, error)
	GetByID(ctx context.Context, id string) (*model.Enrollment, error)
	ListByEmail(ctx context.Context, email string) ([]model.Enrollment, error)
	// MarkPaid sets paid on an unpaid enrollment. An enrollment that is
	// already paid fails with apperror.ErrConflict.
	MarkPaid(ctx context.Context, id string) (*model.UpdateResult, error)
	Delete(ctx context.Context, id string) (*model.DeleteResult, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) (*model.InsertResult, error)
	// ListByEmail returns newest first.
	ListByEmail(ctx context.Context, email string) ([]model.Payment, error)
}

// Store bundles every collection plus the connection lifecycle. The server
// owns exactly one Store for the life of the process.
type Store interface {
	Users() UserRepository
	Listings() ListingRepository
	Classes() ClassRepository
	Enrollments() EnrollmentRepository
	Payments() PaymentRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
