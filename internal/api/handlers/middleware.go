package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"petaria-auction/internal/domain"
)

const principalContextKey = "principal"

// PrincipalMiddleware reads the identity headers set by the site gateway.
// Authentication happens upstream; here a missing user id just means the
// request is unauthenticated.
func PrincipalMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal := domain.Principal{
				ID:   c.Request().Header.Get("X-User-ID"),
				Role: c.Request().Header.Get("X-User-Role"),
			}
			c.Set(principalContextKey, principal)
			return next(c)
		}
	}
}

func principalFrom(c echo.Context) (domain.Principal, bool) {
	principal, ok := c.Get(principalContextKey).(domain.Principal)
	if !ok || principal.ID == "" {
		return domain.Principal{}, false
	}
	return principal, true
}

func requirePrincipal(c echo.Context) (domain.Principal, error) {
	principal, ok := principalFrom(c)
	if !ok {
		return domain.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return principal, nil
}
