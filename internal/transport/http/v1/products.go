package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/service"
)

// ListProducts lists all products.
// GET /v1/products
func (h *Handler) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.service.ListProducts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"products": products})
}

// GetProduct gets a specific product by id.
// GET /v1/products/:product_id
func (h *Handler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id"})
	}

	product, err := h.service.GetProduct(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if product == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
	}
	return c.JSON(http.StatusOK, product)
}

// CreateProduct adds a product to the inventory.
// POST /v1/products
func (h *Handler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	product, err := h.service.CreateProduct(ctx, req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct rewrites a product.
// PUT /v1/products/:product_id
func (h *Handler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id"})
	}

	var req service.ProductInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	product, err := h.service.UpdateProduct(ctx, id, req)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "product not found"})
		}
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product.
// DELETE /v1/products/:product_id
func (h *Handler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := pathID(c, "product_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid product id"})
	}

	if err := h.service.DeleteProduct(ctx, id); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"ok": true})
}
