package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/retailhub/backoffice/internal/api/metrics"
	"github.com/retailhub/backoffice/internal/core/domain"
	"github.com/retailhub/backoffice/pkg/jwtx"
)

// IdentityKey is the echo context key holding the verified domain.Identity.
const IdentityKey = "identity"

// TokenVerifier verifies a raw bearer token. *jwtx.Verifier implements it.
type TokenVerifier interface {
	Verify(raw string) (*jwtx.Claims, error)
}

// Auth verifies the bearer token and stores the caller's identity in the
// context. OPTIONS requests pass through unauthenticated.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Method == http.MethodOptions {
				return next(c)
			}

			raw := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
				return domain.ErrMissingToken
			}

			claims, err := verifier.Verify(raw)
			if err != nil {
				metrics.TokenVerificationsTotal.WithLabelValues(verifyResult(err)).Inc()
				return domain.ErrInvalidToken
			}

			role, ok := domain.ParseRole(claims.Role)
			if !ok || claims.UserID == "" {
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return domain.ErrInvalidToken
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(IdentityKey, domain.Identity{
				ID:        claims.UserID,
				Email:     claims.Email,
				Role:      role,
				Name:      claims.Name,
				IssuedAt:  claims.IssuedAtTime(),
				ExpiresAt: claims.ExpiresAtTime(),
			})
			return next(c)
		}
	}
}

// bearerToken extracts the credential from "Bearer <token>". Any other
// scheme or an empty credential yields "".
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func verifyResult(err error) string {
	switch {
	case errors.Is(err, jwtx.ErrExpired):
		return "expired"
	case errors.Is(err, jwtx.ErrMalformed):
		return "malformed"
	default:
		return "invalid"
	}
}

// IdentityFrom returns the identity stored by Auth, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	return id, ok
}
