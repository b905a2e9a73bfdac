package middleware

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/event-booking/internal/models"
	"github.com/Eursukkul/event-booking/pkg/auth"
	"github.com/labstack/echo/v4"
)

const (
	ContextUserID   = "userId"
	ContextUserRole = "userRole"
)

type TokenParser interface {
	Parse(tokenStr string) (*auth.Claims, error)
}

// Auth requires a valid bearer token and stores the caller's id and role on the context.
func Auth(tokens TokenParser) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "authorization header missing")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims, err := tokens.Parse(strings.TrimSpace(parts[1]))
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}

			c.Set(ContextUserID, claims.UserID)
			c.Set(ContextUserRole, models.Role(claims.Role))
			return next(c)
		}
	}
}

// RequireRole must run after Auth.
func RequireRole(role models.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if CurrentRole(c) != role {
				return echo.NewHTTPError(http.StatusForbidden, "not authorized")
			}
			return next(c)
		}
	}
}

func CurrentUserID(c echo.Context) uint {
	id, _ := c.Get(ContextUserID).(uint)
	return id
}

func CurrentRole(c echo.Context) models.Role {
	role, _ := c.Get(ContextUserRole).(models.Role)
	return role
}
