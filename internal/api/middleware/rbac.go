package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/retailhub/backoffice/internal/api/metrics"
	"github.com/retailhub/backoffice/internal/core/domain"
)

// RBAC admits requests whose identity holds one of allowedRoles. It must run
// after Auth; a request without an identity is forbidden.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFrom(c)
			if !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues("none").Inc()
				return domain.ErrForbidden
			}
			if _, ok := allowed[identity.Role]; !ok {
				metrics.AuthorizationDenialsTotal.WithLabelValues(identity.Role.String()).Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
