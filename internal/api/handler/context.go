package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/retailhub/backoffice/internal/api/middleware"
	"github.com/retailhub/backoffice/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware. Its
// absence means the route was mounted without Auth, which is treated as an
// unauthenticated request.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok || identity.ID == "" {
		return domain.Identity{}, domain.ErrMissingToken
	}
	return identity, nil
}
