package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/service"
)

// CreateBillRequest is the request to create a bill by product ids.
type CreateBillRequest struct {
	Items []service.BillLineInput `json:"items"`
}

// CreateBill creates a bill, decrementing stock atomically.
// POST /v1/bills
func (h *Handler) CreateBill(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	var req CreateBillRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	bill, err := h.service.CreateBill(ctx, req.Items, user)
	if err != nil {
		var insufficient *domain.InsufficientStockError
		switch {
		case errors.As(err, &insufficient):
			return c.JSON(http.StatusConflict, map[string]string{"error": insufficient.Error()})
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
	}
	return c.JSON(http.StatusCreated, bill)
}

// ListBills lists bills visible to the caller.
// GET /v1/bills
func (h *Handler) ListBills(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	bills, err := h.service.ListBills(ctx, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"bills": bills})
}

// GetBill gets a bill with its items.
// GET /v1/bills/:bill_id
func (h *Handler) GetBill(c echo.Context) error {
	ctx := c.Request().Context()
	user := auth.CurrentUser(c)

	id, err := pathID(c, "bill_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid bill id"})
	}

	bill, err := h.service.GetBill(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if bill == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "bill not found"})
	}
	if bill.CreatedBy != user.ID && !user.Role.AtLeast(domain.RoleAdmin) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient role"})
	}
	return c.JSON(http.StatusOK, bill)
}
