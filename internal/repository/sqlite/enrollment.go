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

var _ repository.EnrollmentRepository = (*EnrollmentDB)(nil)

// EnrollmentDB is the enrollments table (classes students selected).
type EnrollmentDB struct {
	conn *sql.DB
}

const enrollmentColumns = `id, class_id, class_name, price, email, paid, created_at`

func (e *EnrollmentDB) Create(ctx context.Context, enrollment *model.Enrollment) (*model.InsertResult, error) {
	enrollment.ID = xid.New().String()
	enrollment.CreatedAt = time.Now()

	_, err := e.conn.ExecContext(ctx,
		`INSERT INTO enrollments (`+enrollmentColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		enrollment.ID,
		enrollment.ClassID,
		enrollment.ClassName,
		enrollment.Price,
		enrollment.Email,
		enrollment.Paid,
		enrollment.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting enrollment: %w", err)
	}
	return &model.InsertResult{Acknowledged: true, InsertedID: enrollment.ID}, nil
}

func (e *EnrollmentDB) GetByID(ctx context.Context, id string) (*model.Enrollment, error) {
	row := e.conn.QueryRowContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ?`, id)

	enrollment, err := scanEnrollment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("enrollment", id)
		}
		return nil, fmt.Errorf("sqlite: getting enrollment %s: %w", id, err)
	}
	return enrollment, nil
}

func (e *EnrollmentDB) ListByEmail(ctx context.Context, email string) ([]model.Enrollment, error) {
	rows, err := e.conn.QueryContext(ctx,
		`SELECT `+enrollmentColumns+` FROM enrollments WHERE email = ? ORDER BY created_at`, email)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing enrollments for %s: %w", email, err)
	}
	defer rows.Close()

	enrollments := []model.Enrollment{}
	for rows.Next() {
		enrollment, err := scanEnrollment(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning enrollment row: %w", err)
		}
		enrollments = append(enrollments, *enrollment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating enrollments: %w", err)
	}
	return enrollments, nil
}

// MarkPaid flips paid from false to true. Only one caller can win that flip:
// an enrollment that is already paid fails with apperror.ErrConflict.
func (e *EnrollmentDB) MarkPaid(ctx context.Context, id string) (*model.UpdateResult, error) {
	res, err := e.conn.ExecContext(ctx, `UPDATE enrollments SET paid = 1 WHERE id = ? AND paid = 0`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: marking enrollment %s paid: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either the enrollment is gone or it was paid already.
		if _, err := e.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("enrollment payment", id)
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func (e *EnrollmentDB) Delete(ctx context.Context, id string) (*model.DeleteResult, error) {
	res, err := e.conn.ExecContext(ctx, `DELETE FROM enrollments WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: deleting enrollment %s: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperror.NotFound("enrollment", id)
	}
	return &model.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func scanEnrollment(s scanner) (*model.Enrollment, error) {
	var enrollment model.Enrollment
	if err := s.Scan(
		&enrollment.ID,
		&enrollment.ClassID,
		&enrollment.ClassName,
		&enrollment.Price,
		&enrollment.Email,
		&enrollment.Paid,
		&enrollment.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &enrollment, nil
}
