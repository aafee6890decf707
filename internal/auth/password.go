package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bounds for passwords accepted at registration. bcrypt silently truncates
// anything past 72 bytes, so we reject it instead.
const (
	MinPasswordLength = 6
	MaxPasswordLength = 72
)

// ErrPasswordMismatch is returned by Verify when the password is wrong.
var ErrPasswordMismatch = errors.New("auth: invalid password")

// PasswordService hashes and checks the passwords of users who register with
// email+password instead of Google sign-in.
//
// The cost is a field so tests can use bcrypt.MinCost; production uses
// bcrypt cost 12 (~250ms per hash).
type PasswordService struct {
	cost int
}

// NewPasswordService creates a PasswordService with cost 12.
func NewPasswordService() *PasswordService {
	return &PasswordService{cost: 12}
}

// NewPasswordServiceWithCost is for tests in other packages. Never use a cost
// below 10 in production.
func NewPasswordServiceWithCost(cost int) *PasswordService {
	return &PasswordService{cost: cost}
}

// Hash returns the self-contained bcrypt string ($2a$<cost>$<salt><hash>) for
// plaintext. Store it as-is.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) < MinPasswordLength {
		return "", fmt.Errorf("auth: password must be at least %d characters", MinPasswordLength)
	}
	if len(plaintext) > MaxPasswordLength {
		return "", fmt.Errorf("auth: password must be %d bytes or fewer", MaxPasswordLength)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify returns nil if plaintext matches hash, ErrPasswordMismatch if it does
// not, and a wrapped error if hash is not a bcrypt hash at all.
// The comparison is constant-time.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
	return nil
}
