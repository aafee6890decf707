package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
)

func createTestEnrollment(t *testing.T, db *DB, class *model.Class, email string) *model.Enrollment {
	t.Helper()
	enrollment := &model.Enrollment{
		ClassID:   class.ID,
		ClassName: class.ClassName,
		Price:     class.Price,
		Email:     email,
	}
	if _, err := db.Enrollments().Create(context.Background(), enrollment); err != nil {
		t.Fatalf("failed to create test enrollment: %v", err)
	}
	return enrollment
}

// =========================================================================
// ENROLLMENT TESTS
// =========================================================================

func TestEnrollmentListByEmail(t *testing.T) {
	db := newTestDB(t)
	yin := createTestClass(t, db, "Yin", 5)
	flow := createTestClass(t, db, "Flow", 5)
	createTestEnrollment(t, db, yin, "sam@example.com")
	createTestEnrollment(t, db, flow, "sam@example.com")
	createTestEnrollment(t, db, yin, "other@example.com")

	mine, err := db.Enrollments().ListByEmail(context.Background(), "sam@example.com")
	if err != nil {
		t.Fatalf("ListByEmail() error = %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("ListByEmail() returned %d enrollments, want 2", len(mine))
	}
	for _, e := range mine {
		if e.Email != "sam@example.com" {
			t.Errorf("ListByEmail() leaked enrollment of %s", e.Email)
		}
		if e.Paid {
			t.Errorf("new enrollment %s is already paid", e.ID)
		}
	}
}

func TestEnrollmentMarkPaid(t *testing.T) {
	db := newTestDB(t)
	class := createTestClass(t, db, "Yin", 5)
	enrollment := createTestEnrollment(t, db, class, "sam@example.com")
	ctx := context.Background()

	if _, err := db.Enrollments().MarkPaid(ctx, enrollment.ID); err != nil {
		t.Fatalf("MarkPaid() error = %v", err)
	}

	found, err := db.Enrollments().GetByID(ctx, enrollment.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !found.Paid {
		t.Error("enrollment not marked paid")
	}

	if _, err := db.Enrollments().MarkPaid(ctx, enrollment.ID); !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("second MarkPaid() error = %v, want ErrConflict", err)
	}

	if _, err := db.Enrollments().MarkPaid(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("MarkPaid() error = %v, want ErrNotFound", err)
	}
}

func TestEnrollmentDelete(t *testing.T) {
	db := newTestDB(t)
	class := createTestClass(t, db, "Yin", 5)
	enrollment := createTestEnrollment(t, db, class, "sam@example.com")
	ctx := context.Background()

	res, err := db.Enrollments().Delete(ctx, enrollment.ID)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if res.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", res.DeletedCount)
	}

	if _, err := db.Enrollments().GetByID(ctx, enrollment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}
	if _, err := db.Enrollments().Delete(ctx, enrollment.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// PAYMENT TESTS
// =========================================================================

func TestPaymentListByEmail_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	older := &model.Payment{
		Email:         "sam@example.com",
		TransactionID: "pi_old",
		Amount:        20,
		ClassIDs:      []string{"c1"},
		EnrollmentIDs: []string{"e1"},
		Date:          base,
	}
	newer := &model.Payment{
		Email:         "sam@example.com",
		TransactionID: "pi_new",
		Amount:        45.5,
		ClassIDs:      []string{"c2", "c3"},
		EnrollmentIDs: []string{"e2", "e3"},
		Date:          base.Add(24 * time.Hour),
	}
	for _, p := range []*model.Payment{older, newer} {
		if _, err := db.Payments().Create(ctx, p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	if _, err := db.Payments().Create(ctx, &model.Payment{Email: "other@example.com", TransactionID: "pi_x"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	payments, err := db.Payments().ListByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("ListByEmail() error = %v", err)
	}
	if len(payments) != 2 {
		t.Fatalf("ListByEmail() returned %d payments, want 2", len(payments))
	}
	if payments[0].TransactionID != "pi_new" {
		t.Errorf("first payment = %q, want pi_new", payments[0].TransactionID)
	}
	if len(payments[0].ClassIDs) != 2 || payments[0].ClassIDs[1] != "c3" {
		t.Errorf("ClassIDs = %v, want [c2 c3]", payments[0].ClassIDs)
	}
	if payments[1].Amount != 20 {
		t.Errorf("Amount = %v, want 20", payments[1].Amount)
	}
}

func TestPaymentCreate_NilIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	p := &model.Payment{Email: "sam@example.com", TransactionID: "pi_1", Amount: 10}
	if _, err := db.Payments().Create(ctx, p); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Date.IsZero() {
		t.Error("Create() did not default Date")
	}

	payments, err := db.Payments().ListByEmail(ctx, "sam@example.com")
	if err != nil {
		t.Fatalf("ListByEmail() error = %v", err)
	}
	if payments[0].ClassIDs == nil || len(payments[0].ClassIDs) != 0 {
		t.Errorf("ClassIDs = %#v, want empty slice", payments[0].ClassIDs)
	}
}
