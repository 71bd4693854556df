// Package jwtx issues, verifies and decodes the HS256 session tokens shared by
// the API server and its clients.
package jwtx

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTTL is the validity window of a session token.
const DefaultTTL = 12 * time.Hour

var (
	// ErrMalformed reports a token that cannot be parsed at all.
	ErrMalformed = errors.New("jwtx: malformed token")
	// ErrInvalid reports a token whose signature, algorithm or claims fail verification.
	ErrInvalid = errors.New("jwtx: invalid token")
	// ErrExpired reports a token past its exp claim.
	ErrExpired = errors.New("jwtx: token expired")
)

// Claims is the session token payload: {id, email, role, name, sub, iat, exp}.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

// NewClaims builds the claims for a session starting at now.
func NewClaims(id, email, role, name string, ttl time.Duration, now time.Time) Claims {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return Claims{
		UserID: id,
		Email:  email,
		Role:   role,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
}

// IssuedAtTime returns iat, or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ExpiresAtTime returns exp, or the zero time when absent.
func (c *Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Expired reports whether exp is missing or not after now.
func (c *Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return !now.Before(c.ExpiresAt.Time)
}
