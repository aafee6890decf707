package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/auth"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

// EnrollmentService manages the classes a student has selected. Every method
// takes the verified caller email; students only ever see their own rows.
type EnrollmentService struct {
	enrollments repository.EnrollmentRepository
	classes     repository.ClassRepository
	logger      *slog.Logger
}

func NewEnrollmentService(enrollments repository.EnrollmentRepository, classes repository.ClassRepository, logger *slog.Logger) *EnrollmentService {
	return &EnrollmentService{enrollments: enrollments, classes: classes, logger: logger}
}

// Select adds classID to the caller's selection. Name and price are copied
// from the class so the cart shows what the student agreed to.
func (s *EnrollmentService) Select(ctx context.Context, email, classID string) (*model.InsertResult, error) {
	if classID == "" {
		return nil, apperror.ValidationFailed("classId", "classId is required")
	}
	class, err := s.classes.GetByID(ctx, classID)
	if err != nil {
		return nil, fmt.Errorf("service/enrollment: loading class %s: %w", classID, err)
	}
	if class.Seat <= 0 {
		return nil, apperror.Conflict("class seat", classID)
	}

	existing, err := s.enrollments.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/enrollment: listing for %s: %w", email, err)
	}
	for _, e := range existing {
		if e.ClassID == classID {
			return nil, apperror.Conflict("enrollment", classID)
		}
	}

	enrollment := &model.Enrollment{
		ClassID:   class.ID,
		ClassName: class.ClassName,
		Price:     class.Price,
		Email:     email,
	}
	res, err := s.enrollments.Create(ctx, enrollment)
	if err != nil {
		return nil, fmt.Errorf("service/enrollment: creating: %w", err)
	}
	s.logger.Info("class selected", slog.String("email", email), slog.String("classID", classID))
	return res, nil
}

// List returns the caller's enrollments. queryEmail is the ?email= the
// client sent; naming anyone but the caller is forbidden.
func (s *EnrollmentService) List(ctx context.Context, callerEmail, queryEmail string) ([]model.Enrollment, error) {
	if queryEmail != "" && queryEmail != callerEmail {
		return nil, apperror.Forbidden(auth.ForbiddenMessage)
	}
	enrollments, err := s.enrollments.ListByEmail(ctx, callerEmail)
	if err != nil {
		return nil, fmt.Errorf("service/enrollment: listing for %s: %w", callerEmail, err)
	}
	return enrollments, nil
}

// Remove drops one of the caller's enrollments.
func (s *EnrollmentService) Remove(ctx context.Context, callerEmail, id string) (*model.DeleteResult, error) {
	enrollment, err := s.enrollments.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/enrollment: loading %s: %w", id, err)
	}
	if enrollment.Email != callerEmail {
		return nil, apperror.Forbidden(auth.ForbiddenMessage)
	}
	res, err := s.enrollments.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/enrollment: deleting %s: %w", id, err)
	}
	return res, nil
}
