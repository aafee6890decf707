// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data. The json tags control the wire
// shape of every API response; storage backends map these structs to their own
// row or document layouts.
package model

import "time"

// Role is the authorization level stored on a user record.
//
// The zero value (RoleNone) means "signed in but never assigned a role".
// Only RoleAdmin passes the admin gate; the others are informational for
// the probe routes and the frontend dashboards.
type Role string

const (
	RoleNone       Role = ""
	RoleAdmin      Role = "admin"
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// Valid reports whether r is one of the roles a user can be assigned.
// RoleNone is not assignable; it only exists before the first assignment.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleInstructor, RoleStudent:
		return true
	}
	return false
}

// User represents a person who signed in to the marketplace.
//
// Email is the natural key: there is exactly one User per email, enforced by a
// UNIQUE index in every backend. ID is the storage identifier (a Mongo ObjectID
// hex string or an xid for SQLite) and is what the role-assignment routes use.
//
// WHY PasswordHash HAS json:"-"?
// Users who register with email+password get a bcrypt hash stored alongside
// their profile. The "-" tag guarantees it never leaves the server, even when an
// admin lists every user.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name,omitempty"`
	Email        string    `json:"email"`
	PhotoURL     string    `json:"photoURL,omitempty"`
	Role         Role      `json:"role,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
