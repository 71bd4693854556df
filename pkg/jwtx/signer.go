package jwtx

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Signer issues HS256 tokens with a shared secret.
type Signer struct {
	key []byte
}

// NewSigner returns a Signer for secret. The secret must not be empty.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, errors.New("jwtx: empty signing key")
	}
	return &Signer{key: []byte(secret)}, nil
}

// Issue signs claims and returns the compact three-part token.
func (s *Signer) Issue(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign token: %w", err)
	}
	return signed, nil
}
