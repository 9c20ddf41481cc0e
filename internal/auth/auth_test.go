package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/storekeep/storekeep/internal/domain"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("secret123")
	assert.NoError(t, err)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, CheckPassword("secret123", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("secret123", ""))
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager(time.Hour)

	token, err := m.Issue(42)
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, ok := m.Resolve(token)
	assert.True(t, ok)
	assert.Equal(t, int64(42), userID)

	_, ok = m.Resolve("not-a-token")
	assert.False(t, ok)

	m.Revoke(token)
	_, ok = m.Resolve(token)
	assert.False(t, ok)
}

func TestTokenManagerExpiry(t *testing.T) {
	m := NewTokenManager(-time.Second) // already expired on issue

	token, err := m.Issue(42)
	assert.NoError(t, err)

	_, ok := m.Resolve(token)
	assert.False(t, ok)
}

func TestTokenManagerRevokeUser(t *testing.T) {
	m := NewTokenManager(time.Hour)

	t1, _ := m.Issue(1)
	t2, _ := m.Issue(1)
	t3, _ := m.Issue(2)

	m.RevokeUser(1)

	_, ok := m.Resolve(t1)
	assert.False(t, ok)
	_, ok = m.Resolve(t2)
	assert.False(t, ok)
	_, ok = m.Resolve(t3)
	assert.True(t, ok)
}

type staticUserLoader struct {
	user *domain.User
}

func (l staticUserLoader) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	if l.user != nil && l.user.ID == id {
		return l.user, nil
	}
	return nil, nil
}

func TestMiddleware(t *testing.T) {
	e := echo.New()
	tokens := NewTokenManager(time.Hour)
	active := &domain.User{ID: 1, Username: "alice", Role: domain.RoleUser, IsActive: true}

	next := func(c echo.Context) error {
		user := CurrentUser(c)
		return c.String(http.StatusOK, user.Username)
	}

	call := func(header string, loader UserLoader) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		err := Middleware(tokens, loader)(next)(c)
		assert.NoError(t, err)
		return rec
	}

	t.Run("missing token", func(t *testing.T) {
		rec := call("", staticUserLoader{active})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := call("Bearer bogus", staticUserLoader{active})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _ := tokens.Issue(1)
		rec := call("Bearer "+token, staticUserLoader{active})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "alice", rec.Body.String())
	})

	t.Run("inactive user", func(t *testing.T) {
		inactive := &domain.User{ID: 2, Username: "bob", Role: domain.RoleUser, IsActive: false}
		token, _ := tokens.Issue(2)
		rec := call("Bearer "+token, staticUserLoader{inactive})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("deleted user", func(t *testing.T) {
		token, _ := tokens.Issue(99)
		rec := call("Bearer "+token, staticUserLoader{active})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
