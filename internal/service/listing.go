package service

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

const MaxClassNameLength = 120

// ListingService handles the classes instructors submit for review.
type ListingService struct {
	listings repository.ListingRepository
	logger   *slog.Logger
}

func NewListingService(listings repository.ListingRepository, logger *slog.Logger) *ListingService {
	return &ListingService{listings: listings, logger: logger}
}

// Submit stores a new listing. Review state always starts over: whatever the
// client sent for status, enrolled or feedback is discarded.
func (s *ListingService) Submit(ctx context.Context, listing *model.ClassListing) (*model.InsertResult, error) {
	listing.ClassName = strings.TrimSpace(listing.ClassName)
	if err := validateClassFields(listing.ClassName, listing.Price, listing.Seat); err != nil {
		return nil, err
	}
	listing.Status = model.StatusPending
	listing.Enrolled = 0
	listing.Feedback = ""

	res, err := s.listings.Create(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("service/listing: creating: %w", err)
	}
	s.logger.Info("class listing submitted",
		slog.String("listingID", listing.ID),
		slog.String("instructor", listing.InstructorEmail),
	)
	return res, nil
}

func (s *ListingService) List(ctx context.Context) ([]model.ClassListing, error) {
	listings, err := s.listings.List(ctx, repository.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("service/listing: listing: %w", err)
	}
	return listings, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*model.ClassListing, error) {
	listing, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/listing: getting %s: %w", id, err)
	}
	return listing, nil
}

// Update replaces the instructor-editable fields of a listing.
func (s *ListingService) Update(ctx context.Context, id string, changes model.ListingChanges) (*model.UpdateResult, error) {
	changes.ClassName = strings.TrimSpace(changes.ClassName)
	if err := validateClassFields(changes.ClassName, changes.Price, changes.Seat); err != nil {
		return nil, err
	}
	res, err := s.listings.UpdateDetails(ctx, id, changes)
	if err != nil {
		return nil, fmt.Errorf("service/listing: updating %s: %w", id, err)
	}
	return res, nil
}

func (s *ListingService) Approve(ctx context.Context, id string) (*model.UpdateResult, error) {
	return s.setStatus(ctx, id, model.StatusApproved)
}

func (s *ListingService) Deny(ctx context.Context, id string) (*model.UpdateResult, error) {
	return s.setStatus(ctx, id, model.StatusDenied)
}

// Feedback stores the admin's note for the instructor. An empty note clears it.
func (s *ListingService) Feedback(ctx context.Context, id, feedback string) (*model.UpdateResult, error) {
	res, err := s.listings.SetFeedback(ctx, id, strings.TrimSpace(feedback))
	if err != nil {
		return nil, fmt.Errorf("service/listing: feedback on %s: %w", id, err)
	}
	return res, nil
}

func (s *ListingService) setStatus(ctx context.Context, id string, status model.ListingStatus) (*model.UpdateResult, error) {
	res, err := s.listings.SetStatus(ctx, id, status)
	if err != nil {
		return nil, fmt.Errorf("service/listing: marking %s %s: %w", id, status, err)
	}
	s.logger.Info("class listing reviewed", slog.String("listingID", id), slog.String("status", string(status)))
	return res, nil
}

// validateClassFields checks the fields shared by listings and classes.
func validateClassFields(name string, price float64, seat int) error {
	if name == "" {
		return apperror.ValidationFailed("className", "class name is required")
	}
	if len(name) > MaxClassNameLength {
		return apperror.ValidationFailed("className",
			fmt.Sprintf("class name must be %d characters or less", MaxClassNameLength))
	}
	if price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return apperror.ValidationFailed("price", "price must be a non-negative number")
	}
	if seat < 0 {
		return apperror.ValidationFailed("seat", "seat must not be negative")
	}
	return nil
}
