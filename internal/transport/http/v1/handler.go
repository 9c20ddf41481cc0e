// Package v1 provides the HTTP handlers for the store backend.
package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server. Everything under
// /v1 except login requires a bearer token.
func (h *Handler) RegisterRoutes(e *echo.Echo, authn echo.MiddlewareFunc) {
	e.POST("/v1/auth/login", h.Login)
	e.GET("/health", h.Health)

	g := e.Group("/v1", authn)

	// Conversational API
	g.POST("/chat", h.Chat)
	g.POST("/chat/reset", h.ResetSession)
	g.GET("/chat/history", h.ChatHistory)

	// Products
	g.GET("/products", h.ListProducts)
	g.GET("/products/:product_id", h.GetProduct)
	g.POST("/products", h.CreateProduct, requireRole(domain.RoleAdmin))
	g.PUT("/products/:product_id", h.UpdateProduct, requireRole(domain.RoleAdmin))
	g.DELETE("/products/:product_id", h.DeleteProduct, requireRole(domain.RoleAdmin))

	// Bills
	g.POST("/bills", h.CreateBill)
	g.GET("/bills", h.ListBills)
	g.GET("/bills/:bill_id", h.GetBill)

	// Reports
	g.GET("/reports/daily-sales", h.DailySales, requireRole(domain.RoleAdmin))
	g.GET("/reports/profit-loss", h.ProfitLoss, requireRole(domain.RoleAdmin))

	// Users
	g.GET("/users", h.ListUsers, requireRole(domain.RoleAdmin))
	g.GET("/users/:user_id", h.GetUser, requireRole(domain.RoleAdmin))
	g.POST("/users", h.CreateUser, requireRole(domain.RoleSuperAdmin))
	g.DELETE("/users/:user_id", h.DeleteUser, requireRole(domain.RoleSuperAdmin))
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}

// requireRole rejects requests whose authenticated user is below min.
func requireRole(min domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := auth.CurrentUser(c)
			if user == nil || !user.Role.AtLeast(min) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient role"})
			}
			return next(c)
		}
	}
}

func pathID(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
