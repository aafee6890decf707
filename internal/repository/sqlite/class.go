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

var _ repository.ClassRepository = (*ClassDB)(nil)

// ClassDB is the classes table (published classes).
type ClassDB struct {
	conn *sql.DB
}

const classColumns = `id, listing_id, class_name, image, instructor_name, instructor_email,
	price, seat, enrolled, created_at`

func (c *ClassDB) Create(ctx context.Context, class *model.Class) (*model.InsertResult, error) {
	class.ID = xid.New().String()
	class.CreatedAt = time.Now()

	_, err := c.conn.ExecContext(ctx,
		`INSERT INTO classes (`+classColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		class.ID,
		class.ListingID,
		class.ClassName,
		class.Image,
		class.InstructorName,
		class.InstructorEmail,
		class.Price,
		class.Seat,
		class.Enrolled,
		class.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting class: %w", err)
	}
	return &model.InsertResult{Acknowledged: true, InsertedID: class.ID}, nil
}

func (c *ClassDB) GetByID(ctx context.Context, id string) (*model.Class, error) {
	row := c.conn.QueryRowContext(ctx,
		`SELECT `+classColumns+` FROM classes WHERE id = ?`, id)

	class, err := scanClass(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("class", id)
		}
		return nil, fmt.Errorf("sqlite: getting class %s: %w", id, err)
	}
	return class, nil
}

func (c *ClassDB) List(ctx context.Context, opts repository.ListOptions) ([]model.Class, error) {
	rows, err := c.conn.QueryContext(ctx,
		`SELECT `+classColumns+` FROM classes ORDER BY created_at LIMIT ?`,
		limitClause(opts))
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing classes: %w", err)
	}
	defer rows.Close()

	classes := []model.Class{}
	for rows.Next() {
		class, err := scanClass(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning class row: %w", err)
		}
		classes = append(classes, *class)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating classes: %w", err)
	}
	return classes, nil
}

// TakeSeat decrements seat and increments enrolled in one statement. The
// "seat > 0" guard keeps a sold-out class from going negative.
func (c *ClassDB) TakeSeat(ctx context.Context, id string) (*model.UpdateResult, error) {
	res, err := c.conn.ExecContext(ctx,
		`UPDATE classes SET seat = seat - 1, enrolled = enrolled + 1
		 WHERE id = ? AND seat > 0`, id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: taking seat in class %s: %w", id, err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Either the class is gone or it is full; tell the caller which.
		if _, err := c.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperror.Conflict("class seat", id)
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

func scanClass(s scanner) (*model.Class, error) {
	var class model.Class
	if err := s.Scan(
		&class.ID,
		&class.ListingID,
		&class.ClassName,
		&class.Image,
		&class.InstructorName,
		&class.InstructorEmail,
		&class.Price,
		&class.Seat,
		&class.Enrolled,
		&class.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &class, nil
}
