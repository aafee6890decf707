package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

// ClassService publishes and lists the classes students can enroll in.
type ClassService struct {
	classes  repository.ClassRepository
	listings repository.ListingRepository
	logger   *slog.Logger
}

func NewClassService(classes repository.ClassRepository, listings repository.ListingRepository, logger *slog.Logger) *ClassService {
	return &ClassService{classes: classes, listings: listings, logger: logger}
}

// Publish makes a class visible to students. When the class names the
// listing it came from, that listing must have been approved.
func (s *ClassService) Publish(ctx context.Context, class *model.Class) (*model.InsertResult, error) {
	class.ClassName = strings.TrimSpace(class.ClassName)
	if err := validateClassFields(class.ClassName, class.Price, class.Seat); err != nil {
		return nil, err
	}
	if class.ListingID != "" {
		listing, err := s.listings.GetByID(ctx, class.ListingID)
		if err != nil {
			return nil, fmt.Errorf("service/class: loading listing %s: %w", class.ListingID, err)
		}
		if listing.Status != model.StatusApproved {
			return nil, apperror.ValidationFailed("listingId",
				fmt.Sprintf("listing %s is %s, not approved", listing.ID, listing.Status))
		}
	}
	class.Enrolled = 0

	res, err := s.classes.Create(ctx, class)
	if err != nil {
		return nil, fmt.Errorf("service/class: creating: %w", err)
	}
	s.logger.Info("class published", slog.String("classID", class.ID), slog.String("name", class.ClassName))
	return res, nil
}

// List returns published classes; limit <= 0 returns all of them.
func (s *ClassService) List(ctx context.Context, limit int) ([]model.Class, error) {
	classes, err := s.classes.List(ctx, repository.ListOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("service/class: listing: %w", err)
	}
	return classes, nil
}

func (s *ClassService) Get(ctx context.Context, id string) (*model.Class, error) {
	class, err := s.classes.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/class: getting %s: %w", id, err)
	}
	return class, nil
}
