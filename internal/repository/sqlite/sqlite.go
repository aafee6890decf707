// Package sqlite implements the repository interfaces on an embedded SQLite
// database. It backs local development (no hosted cluster needed) and every
// storage-level test, where ":memory:" gives each test a fresh database.
//
// modernc.org/sqlite is a pure Go translation of SQLite, so no C compiler is
// needed. The blank-imported driver registers itself with database/sql as
// "sqlite".
//
// DATABASE/SQL OVERVIEW:
//   - sql.DB:   a connection pool (NOT a single connection!)
//   - sql.Row:  a single result row
//   - sql.Rows: multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/ombliss-yoga/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and hands out one repository per table.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
//
// dbPath examples:
//   - "data/yoga.db" → file-based database (persistent)
//   - ":memory:"     → in-memory database (tests)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Every pooled connection to ":memory:" would be a separate, empty
	// database. One connection keeps tests and local runs coherent.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

func (db *DB) Users() repository.UserRepository             { return &UserDB{conn: db.conn} }
func (db *DB) Listings() repository.ListingRepository       { return &ListingDB{conn: db.conn} }
func (db *DB) Classes() repository.ClassRepository          { return &ClassDB{conn: db.conn} }
func (db *DB) Enrollments() repository.EnrollmentRepository { return &EnrollmentDB{conn: db.conn} }
func (db *DB) Payments() repository.PaymentRepository       { return &PaymentDB{conn: db.conn} }

// Ping checks the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the connection pool. The context is unused; it is part of the
// Store contract because closing a network store can block.
func (db *DB) Close(_ context.Context) error {
	return db.conn.Close()
}

// migrate creates every table. CREATE ... IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	statements := []struct {
		name string
		sql  string
	}{
		{"users", `
			CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				name          TEXT NOT NULL DEFAULT '',
				photo_url     TEXT NOT NULL DEFAULT '',
				role          TEXT NOT NULL DEFAULT '',
				password_hash TEXT NOT NULL DEFAULT '',
				created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_users_role ON users(role);`},
		{"listings", `
			CREATE TABLE IF NOT EXISTS listings (
				id               TEXT PRIMARY KEY,
				class_name       TEXT NOT NULL,
				image            TEXT NOT NULL DEFAULT '',
				instructor_name  TEXT NOT NULL DEFAULT '',
				instructor_email TEXT NOT NULL DEFAULT '',
				price            REAL NOT NULL DEFAULT 0,
				seat             INTEGER NOT NULL DEFAULT 0,
				enrolled         INTEGER NOT NULL DEFAULT 0,
				status           TEXT NOT NULL DEFAULT 'pending',
				feedback         TEXT NOT NULL DEFAULT '',
				created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"classes", `
			CREATE TABLE IF NOT EXISTS classes (
				id               TEXT PRIMARY KEY,
				listing_id       TEXT NOT NULL DEFAULT '',
				class_name       TEXT NOT NULL,
				image            TEXT NOT NULL DEFAULT '',
				instructor_name  TEXT NOT NULL DEFAULT '',
				instructor_email TEXT NOT NULL DEFAULT '',
				price            REAL NOT NULL DEFAULT 0,
				seat             INTEGER NOT NULL DEFAULT 0,
				enrolled         INTEGER NOT NULL DEFAULT 0,
				created_at       DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);`},
		{"enrollments", `
			CREATE TABLE IF NOT EXISTS enrollments (
				id         TEXT PRIMARY KEY,
				class_id   TEXT NOT NULL,
				class_name TEXT NOT NULL DEFAULT '',
				price      REAL NOT NULL DEFAULT 0,
				email      TEXT NOT NULL,
				paid       INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_enrollments_email ON enrollments(email);`},
		{"payments", `
			CREATE TABLE IF NOT EXISTS payments (
				id             TEXT PRIMARY KEY,
				email          TEXT NOT NULL,
				transaction_id TEXT NOT NULL,
				amount         REAL NOT NULL,
				class_ids      TEXT NOT NULL DEFAULT '[]',
				enrollment_ids TEXT NOT NULL DEFAULT '[]',
				date           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_payments_email ON payments(email);`},
	}

	for _, st := range statements {
		if _, err := db.conn.Exec(st.sql); err != nil {
			return fmt.Errorf("creating %s table: %w", st.name, err)
		}
	}
	return nil
}

// limitClause turns ListOptions into a LIMIT argument; -1 means unlimited in SQLite.
func limitClause(opts repository.ListOptions) int {
	if opts.Limit <= 0 {
		return -1
	}
	return opts.Limit
}

// isUniqueViolation reports whether err came from a UNIQUE constraint.
func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(se.Error(), "UNIQUE")
	}
	return false
}

// rowsAffected reads RowsAffected from an exec result.
func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}
