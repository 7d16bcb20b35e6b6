package admin

import (
	"github.com/gofiber/fiber/v2"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/auth/service"
	"github.com/darkiku/RfsGov/internal/middleware"
)

func RegisterRoutes(app *fiber.App, h *Handler, tokens service.TokenGenerator) {
	group := app.Group("/api/admin",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleAdmin),
	)

	group.Get("/users", h.ListUsers)
	group.Post("/users", h.CreateUser)
	group.Get("/users/:id", h.GetUser)
	group.Put("/users/:id", h.UpdateUser)
	group.Delete("/users/:id", h.DeleteUser)
	group.Put("/users/:id/role", h.UpdateRole)
	group.Put("/users/:id/status", h.ToggleStatus)
	group.Put("/users/:id/password", h.UpdatePassword)
	group.Post("/users/unlock/:username", h.Unlock)

	group.Get("/dashboard/stats", h.DashboardStats)
	group.Get("/audit-logs", h.ListAuditLogs)
}
