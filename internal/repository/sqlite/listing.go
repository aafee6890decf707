package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/ombliss-yoga/internal/apperror"
	"github.com/sakif/ombliss-yoga/internal/model"
	"github.com/sakif/ombliss-yoga/internal/repository"
)

var _ repository.ListingRepository = (*ListingDB)(nil)

// ListingDB is the listings table (instructor submissions).
type ListingDB struct {
	conn *sql.DB
}

const listingColumns = `id, class_name, image, instructor_name, instructor_email,
	price, seat, enrolled, status, feedback, created_at`

func (l *ListingDB) Create(ctx context.Context, listing *model.ClassListing) (*model.InsertResult, error) {
	listing.ID = xid.New().String()
	listing.CreatedAt = time.Now()

	_, err := l.conn.ExecContext(ctx,
		`INSERT INTO listings (`+listingColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.ID,
		listing.ClassName,
		listing.Image,
		listing.InstructorName,
		listing.InstructorEmail,
		listing.Price,
		listing.Seat,
		listing.Enrolled,
		string(listing.Status),
		listing.Feedback,
		listing.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting listing: %w", err)
	}
	return &model.InsertResult{Acknowledged: true, InsertedID: listing.ID}, nil
}

func (l *ListingDB) GetByID(ctx context.Context, id string) (*model.ClassListing, error) {
	row := l.conn.QueryRowContext(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = ?`, id)

	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("class listing", id)
		}
		return nil, fmt.Errorf("sqlite: getting listing %s: %w", id, err)
	}
	return listing, nil
}

func (l *ListingDB) List(ctx context.Context, opts repository.ListOptions) ([]model.ClassListing, error) {
	rows, err := l.conn.QueryContext(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY created_at LIMIT ?`,
		limitClause(opts))
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing listings: %w", err)
	}
	defer rows.Close()

	listings := []model.ClassListing{}
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning listing row: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating listings: %w", err)
	}
	return listings, nil
}

func (l *ListingDB) UpdateDetails(ctx context.Context, id string, changes model.ListingChanges) (*model.UpdateResult, error) {
	return l.update(ctx, id,
		`UPDATE listings SET class_name = ?, price = ?, seat = ? WHERE id = ?`,
		changes.ClassName, changes.Price, changes.Seat, id)
}

func (l *ListingDB) SetStatus(ctx context.Context, id string, status model.ListingStatus) (*model.UpdateResult, error) {
	return l.update(ctx, id, `UPDATE listings SET status = ? WHERE id = ?`, string(status), id)
}

func (l *ListingDB) SetFeedback(ctx context.Context, id, feedback string) (*model.UpdateResult, error) {
	return l.update(ctx, id, `UPDATE listings SET feedback = ? WHERE id = ?`, feedback, id)
}

// update runs a single-row UPDATE and maps zero affected rows to NotFound.
func (l *ListingDB) update(ctx context.Context, id, query string, args ...any) (*model.UpdateResult, error) {
	res, err := l.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating listing %s: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperror.NotFound("class listing", id)
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func scanListing(s scanner) (*model.ClassListing, error) {
	var (
		listing model.ClassListing
		status  string
	)
	if err := s.Scan(
		&listing.ID,
		&listing.ClassName,
		&listing.Image,
		&listing.InstructorName,
		&listing.InstructorEmail,
		&listing.Price,
		&listing.Seat,
		&listing.Enrolled,
		&status,
		&listing.Feedback,
		&listing.CreatedAt,
	); err != nil {
		return nil, err
	}
	listing.Status = model.ListingStatus(status)
	return &listing, nil
}
