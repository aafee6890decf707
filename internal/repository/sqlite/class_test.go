package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

func createTestListing(t *testing.T, db *DB, name string) *model.ClassListing {
	t.Helper()
	listing := &model.ClassListing{
		ClassName:       name,
		InstructorName:  "Mira",
		InstructorEmail: "mira@example.com",
		Price:           25,
		Seat:            10,
		Status:          model.StatusPending,
	}
	if _, err := db.Listings().Create(context.Background(), listing); err != nil {
		t.Fatalf("failed to create test listing: %v", err)
	}
	return listing
}

func createTestClass(t *testing.T, db *DB, name string, seats int) *model.Class {
	t.Helper()
	class := &model.Class{
		ClassName:       name,
		InstructorName:  "Mira",
		InstructorEmail: "mira@example.com",
		Price:           19.99,
		Seat:            seats,
	}
	if _, err := db.Classes().Create(context.Background(), class); err != nil {
		t.Fatalf("failed to create test class: %v", err)
	}
	return class
}

// =========================================================================
// LISTING TESTS
// =========================================================================

func TestListingCreateAndGet(t *testing.T) {
	db := newTestDB(t)
	created := createTestListing(t, db, "Sunrise Flow")

	found, err := db.Listings().GetByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.ClassName != "Sunrise Flow" {
		t.Errorf("ClassName = %q, want %q", found.ClassName, "Sunrise Flow")
	}
	if found.Status != model.StatusPending {
		t.Errorf("Status = %q, want pending", found.Status)
	}
	if found.Seat != 10 || found.Price != 25 {
		t.Errorf("Seat/Price = %d/%v, want 10/25", found.Seat, found.Price)
	}
}

func TestListingGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Listings().GetByID(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestListingUpdates(t *testing.T) {
	db := newTestDB(t)
	listing := createTestListing(t, db, "Hatha Basics")
	ctx := context.Background()

	if _, err := db.Listings().UpdateDetails(ctx, listing.ID, model.ListingChanges{
		ClassName: "Hatha Deep", Price: 30, Seat: 12,
	}); err != nil {
		t.Fatalf("UpdateDetails() error = %v", err)
	}
	if _, err := db.Listings().SetStatus(ctx, listing.ID, model.StatusApproved); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if _, err := db.Listings().SetFeedback(ctx, listing.ID, "lovely sequence"); err != nil {
		t.Fatalf("SetFeedback() error = %v", err)
	}

	found, err := db.Listings().GetByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.ClassName != "Hatha Deep" || found.Price != 30 || found.Seat != 12 {
		t.Errorf("details = %q/%v/%d, want Hatha Deep/30/12", found.ClassName, found.Price, found.Seat)
	}
	if found.Status != model.StatusApproved {
		t.Errorf("Status = %q, want approved", found.Status)
	}
	if found.Feedback != "lovely sequence" {
		t.Errorf("Feedback = %q, want %q", found.Feedback, "lovely sequence")
	}
}

func TestListingUpdates_NotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.Listings().SetStatus(ctx, "missing", model.StatusDenied); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetStatus() error = %v, want ErrNotFound", err)
	}
	if _, err := db.Listings().SetFeedback(ctx, "missing", "x"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("SetFeedback() error = %v, want ErrNotFound", err)
	}
	if _, err := db.Listings().UpdateDetails(ctx, "missing", model.ListingChanges{}); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateDetails() error = %v, want ErrNotFound", err)
	}
}

func TestListingList(t *testing.T) {
	db := newTestDB(t)
	createTestListing(t, db, "One")
	createTestListing(t, db, "Two")

	listings, err := db.Listings().List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(listings) != 2 {
		t.Errorf("List() returned %d listings, want 2", len(listings))
	}
}

// =========================================================================
// CLASS TESTS
// =========================================================================

func TestClassCreateAndList(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"Yin", "Vinyasa", "Ashtanga", "Kundalini"} {
		createTestClass(t, db, name, 5)
	}

	all, err := db.Classes().List(context.Background(), repository.ListOptions{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 4 {
		t.Errorf("List() returned %d classes, want 4", len(all))
	}

	limited, err := db.Classes().List(context.Background(), repository.ListOptions{Limit: 3})
	if err != nil {
		t.Fatalf("List(limit 3) error = %v", err)
	}
	if len(limited) != 3 {
		t.Errorf("List(limit 3) returned %d classes, want 3", len(limited))
	}
}

func TestClassTakeSeat(t *testing.T) {
	db := newTestDB(t)
	class := createTestClass(t, db, "Restorative", 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := db.Classes().TakeSeat(ctx, class.ID); err != nil {
			t.Fatalf("TakeSeat() #%d error = %v", i+1, err)
		}
	}

	found, err := db.Classes().GetByID(ctx, class.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if found.Seat != 0 || found.Enrolled != 2 {
		t.Errorf("Seat/Enrolled = %d/%d, want 0/2", found.Seat, found.Enrolled)
	}

	// The class is now full.
	_, err = db.Classes().TakeSeat(ctx, class.ID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("TakeSeat() on a full class error = %v, want ErrConflict", err)
	}
}

func TestClassTakeSeat_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Classes().TakeSeat(context.Background(), "missing")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("TakeSeat() error = %v, want ErrNotFound", err)
	}
}
