package jwtx

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Decode extracts the claims of raw WITHOUT verifying its signature or expiry.
// Clients use it to read their own identity; authorization must never rely on it.
func Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return claims, nil
}
