package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/service"
)

// ListUsers lists all accounts.
// GET /v1/users
func (h *Handler) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.service.ListUsers(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": users})
}

// GetUser gets a specific account by id.
// GET /v1/users/:user_id
func (h *Handler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	user, err := h.service.GetUser(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if user == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser creates an account.
// POST /v1/users
func (h *Handler) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.UserInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Role == "" {
		req.Role = domain.RoleUser
	}

	user, err := h.service.CreateUser(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, user)
}

// DeleteUser removes an account.
// DELETE /v1/users/:user_id
func (h *Handler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	actor := auth.CurrentUser(c)

	id, err := pathID(c, "user_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	if err := h.service.DeleteUser(ctx, id, actor); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}
