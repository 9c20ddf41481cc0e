// Package http provides the HTTP server for the store backend.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/service"
	v1 "github.com/storekeep/storekeep/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server. It serves the
// conversational API, the REST resources, and authentication.
func NewServer(svc *service.Service, tokens *auth.TokenManager, users auth.UserLoader) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	handler := v1.NewHandler(svc)
	handler.RegisterRoutes(e, auth.Middleware(tokens, users))

	return e
}
