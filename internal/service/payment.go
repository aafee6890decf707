package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/auth"
	"github.com/sakif/ombliss-yoga/internal/metrics"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/payment"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

const (
	PaymentCurrency = "usd"
	// MaxPrice guards the conversion to cents against absurd input.
	MaxPrice = 1_000_000
)

// PaymentMethodTypes are the methods offered on every intent.
var PaymentMethodTypes = []string{"card"}

// NewPayment is the body of POST /payments, sent by the browser after the
// gateway confirmed the card.
type NewPayment struct {
	TransactionID string
	Price         float64
	EnrollmentIDs []string
	ClassIDs      []string
}

// PaymentService creates gateway intents and records completed payments.
type PaymentService struct {
	gateway     payment.Gateway
	payments    repository.PaymentRepository
	enrollments repository.EnrollmentRepository
	classes     repository.ClassRepository
	logger      *slog.Logger
}

func NewPaymentService(
	gateway payment.Gateway,
	store repository.Store,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		gateway:     gateway,
		payments:    store.Payments(),
		enrollments: store.Enrollments(),
		classes:     store.Classes(),
		logger:      logger,
	}
}

// ToCents converts a price in currency units to the gateway's minor units,
// rounding half away from zero: 19.99 → 1999, 0.005 → 1.
func ToCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// CreateIntent asks the gateway for a card intent of price dollars and
// returns its client secret.
func (s *PaymentService) CreateIntent(ctx context.Context, price float64) (string, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) || price <= 0 || price > MaxPrice {
		return "", apperror.ValidationFailed("price", "price must be a positive amount")
	}
	amount := ToCents(price)
	if amount <= 0 {
		return "", apperror.ValidationFailed("price", "price must be at least one cent")
	}

	secret, err := s.gateway.CreatePaymentIntent(ctx, amount, PaymentCurrency, PaymentMethodTypes)
	if err != nil {
		metrics.PaymentIntents.WithLabelValues("error").Inc()
		return "", fmt.Errorf("service/payment: creating intent for %d cents: %w", amount, err)
	}
	metrics.PaymentIntents.WithLabelValues("ok").Inc()
	return secret, nil
}

// Record stores a completed payment for the caller, then marks each listed
// enrollment paid and takes a seat in its class.
//
// The charge already happened at the gateway, so once the payment row is
// written a seat that cannot be taken is logged rather than failing the
// request.
func (s *PaymentService) Record(ctx context.Context, email string, in NewPayment) (*model.InsertResult, error) {
	in.TransactionID = strings.TrimSpace(in.TransactionID)
	if in.TransactionID == "" {
		return nil, apperror.ValidationFailed("transactionId", "transactionId is required")
	}
	if math.IsNaN(in.Price) || in.Price < 0 {
		return nil, apperror.ValidationFailed("price", "price must not be negative")
	}

	in.EnrollmentIDs = uniqueIDs(in.EnrollmentIDs)
	enrollments := make([]*model.Enrollment, 0, len(in.EnrollmentIDs))
	classIDs := uniqueIDs(in.ClassIDs)
	for _, id := range in.EnrollmentIDs {
		e, err := s.enrollments.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("service/payment: loading enrollment %s: %w", id, err)
		}
		if e.Email != email {
			return nil, apperror.Forbidden(auth.ForbiddenMessage)
		}
		enrollments = append(enrollments, e)
		if !slices.Contains(classIDs, e.ClassID) {
			classIDs = append(classIDs, e.ClassID)
		}
	}

	record := &model.Payment{
		Email:         email,
		TransactionID: in.TransactionID,
		Amount:        in.Price,
		ClassIDs:      classIDs,
		EnrollmentIDs: append([]string{}, in.EnrollmentIDs...),
	}
	res, err := s.payments.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("service/payment: storing payment %s: %w", in.TransactionID, err)
	}

	for _, e := range enrollments {
		if e.Paid {
			continue
		}
		// Only the request that flips paid takes the seat. A concurrent
		// payment for the same enrollment gets the conflict and moves on.
		if _, err := s.enrollments.MarkPaid(ctx, e.ID); err != nil {
			if errors.Is(err, apperror.ErrConflict) {
				s.logger.Warn("enrollment already paid", slog.String("enrollmentID", e.ID))
				continue
			}
			return nil, fmt.Errorf("service/payment: marking enrollment %s paid: %w", e.ID, err)
		}
		if _, err := s.classes.TakeSeat(ctx, e.ClassID); err != nil {
			if !errors.Is(err, apperror.ErrConflict) && !errors.Is(err, apperror.ErrNotFound) {
				return nil, fmt.Errorf("service/payment: taking seat in %s: %w", e.ClassID, err)
			}
			s.logger.Warn("paid enrollment could not take a seat",
				slog.String("classID", e.ClassID),
				slog.String("enrollmentID", e.ID),
				slog.Any("error", err),
			)
		}
	}

	s.logger.Info("payment recorded",
		slog.String("email", email),
		slog.String("transactionID", in.TransactionID),
		slog.Int("enrollments", len(enrollments)),
	)
	return res, nil
}

// uniqueIDs drops repeated ids, keeping the first occurrence of each.
func uniqueIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

// History returns the caller's payments, newest first.
func (s *PaymentService) History(ctx context.Context, email string) ([]model.Payment, error) {
	payments, err := s.payments.ListByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("service/payment: listing for %s: %w", email, err)
	}
	return payments, nil
}
