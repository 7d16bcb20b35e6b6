package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/darkiku/RfsGov/internal/auth/service"
	"github.com/darkiku/RfsGov/internal/middleware"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler, tokens service.TokenGenerator) {
	auth := app.Group("/api/auth")
	auth.Post("/login", h.Login)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", middleware.RequireAuth(tokens), h.Logout)
}
