// Package auth issues and verifies the credentials used by the marketplace API
// and provides the middleware that gates protected routes.
//
// AUTHENTICATION FLOW OVERVIEW:
//  1. The frontend signs the user in (Google or email/password) and POSTs the
//     user's identity, e.g. {"email":"a@x.com"}, to /jwt.
//  2. The server signs that payload into an HS256 JWT valid for one hour.
//  3. The client sends it back on every protected call:
//     Authorization: Bearer <token>
//  4. RequireAuth validates the token and puts the decoded Identity in the
//     request context; RequireAdmin then checks the caller's stored role.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: {"alg":"HS256","typ":"JWT"}
//	- Payload: the caller's identity + exp, iat, jti, iss
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"
)

// TokenTTL is how long an issued credential stays valid.
const TokenTTL = time.Hour

const issuer = "ombliss-yoga"

var (
	// ErrInvalidToken covers every rejected credential: bad signature, wrong
	// algorithm, malformed input, wrong issuer.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired is returned for a well-formed token past its exp claim.
	ErrTokenExpired = errors.New("auth: token expired")
)

// Identity is the decoded claim set of a verified credential.
//
// Email is pulled out because every gate keys on it. Claims holds the full
// payload the client originally submitted (plus the registered claims we
// added), so handlers can read extra fields like "name" without another
// store lookup.
type Identity struct {
	Email  string
	Claims map[string]any
}

// TokenService handles JWT creation and validation with a single HMAC secret.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: ACCESS_TOKEN_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: token secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue signs payload into a credential that expires after TokenTTL.
//
// The payload is not validated: /jwt is the sign-in boundary and the caller is
// trusted to submit its own identity there. Registered claims in the payload
// (exp, iat, jti, iss) are overwritten.
//
// Every token gets a fresh xid as its "jti", so issuing twice for the same
// payload within the same second still produces two distinct strings.
func (s *TokenService) Issue(payload map[string]any) (string, error) {
	return s.IssueWithTTL(payload, TokenTTL)
}

// IssueWithTTL is Issue with a custom lifetime. Tests use a negative ttl to
// mint already-expired tokens.
func (s *TokenService) IssueWithTTL(payload map[string]any, ttl time.Duration) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{}
	maps.Copy(claims, payload)
	claims["iat"] = jwt.NewNumericDate(now)
	claims["exp"] = jwt.NewNumericDate(now.Add(ttl))
	claims["jti"] = xid.New().String()
	claims["iss"] = issuer

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and validates a credential and returns the identity inside it.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature matches our secret
//   - Algorithm is HS256 (no "none", no RS/HS confusion)
//   - exp is present and in the future
//   - iss is ours
//
// The returned error wraps ErrTokenExpired or ErrInvalidToken. Callers must not
// forward its text to clients.
func (s *TokenService) Verify(tokenStr string) (*Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(
		tokenStr,
		claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	email, _ := claims["email"].(string)

	return &Identity{
		Email:  email,
		Claims: map[string]any(claims),
	}, nil
}
