package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/storekeep/storekeep/internal/domain"
)

const userContextKey = "auth.user"

// UserLoader fetches an account by id; satisfied by the store.
type UserLoader interface {
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
}

// Middleware returns echo middleware that resolves the bearer token to an
// active user and stashes it in the request context.
func Middleware(tokens *TokenManager, users UserLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}

			userID, ok := tokens.Resolve(token)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
			}

			user, err := users.GetUserByID(c.Request().Context(), userID)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
			}
			if user == nil || !user.IsActive {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "user account is inactive"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the acting user resolved by Middleware.
func CurrentUser(c echo.Context) *domain.User {
	user, _ := c.Get(userContextKey).(*domain.User)
	return user
}

// SetCurrentUser stashes the acting user, used by handler tests.
func SetCurrentUser(c echo.Context, user *domain.User) {
	c.Set(userContextKey, user)
}
