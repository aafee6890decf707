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

// compile-time check that *UserDB implements repository.UserRepository
var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the users table.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, email, name, photo_url, role, password_hash, created_at`

// Create inserts user, assigning ID and CreatedAt in place.
// The UNIQUE index on email turns a duplicate into apperror.ErrConflict.
func (u *UserDB) Create(ctx context.Context, user *model.User) (*model.InsertResult, error) {
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Email,
		user.Name,
		user.PhotoURL,
		string(user.Role),
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperror.Conflict("user", user.Email)
		}
		return nil, fmt.Errorf("sqlite: inserting user %s: %w", user.Email, err)
	}

	return &model.InsertResult{Acknowledged: true, InsertedID: user.ID}, nil
}

// GetByEmail returns apperror.ErrNotFound if nobody signed in with email.
func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := u.conn.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", email, err)
	}
	return user, nil
}

func (u *UserDB) List(ctx context.Context, opts repository.ListOptions) ([]model.User, error) {
	rows, err := u.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at LIMIT ?`,
		limitClause(opts))
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing users: %w", err)
	}
	return collectUsers(rows)
}

func (u *UserDB) ListByRole(ctx context.Context, role model.Role, opts repository.ListOptions) ([]model.User, error) {
	rows, err := u.conn.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = ? ORDER BY created_at LIMIT ?`,
		string(role), limitClause(opts))
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing %s users: %w", role, err)
	}
	return collectUsers(rows)
}

// SetRole assigns role to the user with the given id.
func (u *UserDB) SetRole(ctx context.Context, id string, role model.Role) (*model.UpdateResult, error) {
	res, err := u.conn.ExecContext(ctx,
		`UPDATE users SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return nil, fmt.Errorf("sqlite: setting role on user %s: %w", id, err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, apperror.NotFound("user", id)
	}
	return &model.UpdateResult{Acknowledged: true, MatchedCount: n, ModifiedCount: n}, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*model.User, error) {
	var (
		user model.User
		role string
	)
	if err := s.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PhotoURL,
		&role,
		&user.PasswordHash,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	user.Role = model.Role(role)
	return &user, nil
}

func collectUsers(rows *sql.Rows) ([]model.User, error) {
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating users: %w", err)
	}
	return users, nil
}
