package content

import (
	"github.com/gofiber/fiber/v2"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/auth/service"
	"github.com/darkiku/RfsGov/internal/middleware"
)

// RegisterRoutes mounts public reads under /api and role-gated writes.
// Each section is writable by its manager role or an administrator.
func RegisterRoutes(app *fiber.App, h *Handler, tokens service.TokenGenerator) {
	api := app.Group("/api")

	api.Get("/news", h.ListNews)
	api.Get("/news/:id", h.GetNews)
	api.Get("/procurements", h.ListProcurements)
	api.Get("/procurements/:id", h.GetProcurement)
	api.Get("/services", h.ListServices)
	api.Get("/services/:id", h.GetService)
	api.Get("/contacts", h.ListContacts)
	api.Get("/departments", h.ListDepartments)
	api.Get("/departments/:id", h.GetDepartment)
	api.Get("/about", h.ListAboutSections)
	api.Get("/about/:key", h.GetAboutSection)
	api.Get("/documents", h.ListDocuments)
	api.Get("/documents/:id", h.GetDocument)

	news := api.Group("/news",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleNewsManager, domain.RoleAdmin))
	news.Post("/", h.CreateNews)
	news.Put("/:id", h.UpdateNews)
	news.Delete("/:id", h.DeleteNews)

	procurements := api.Group("/procurements",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleProcurementManager, domain.RoleAdmin))
	procurements.Post("/", h.CreateProcurement)
	procurements.Put("/:id", h.UpdateProcurement)
	procurements.Delete("/:id", h.DeleteProcurement)

	services := api.Group("/services",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleServicesManager, domain.RoleAdmin))
	services.Post("/", h.CreateService)
	services.Put("/:id", h.UpdateService)
	services.Delete("/:id", h.DeleteService)

	contacts := api.Group("/contacts",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleContactsManager, domain.RoleAdmin))
	contacts.Post("/", h.CreateContact)
	contacts.Put("/:id", h.UpdateContact)
	contacts.Delete("/:id", h.DeleteContact)

	departments := api.Group("/departments",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleHRManager, domain.RoleAdmin))
	departments.Post("/", h.CreateDepartment)
	departments.Put("/:id", h.UpdateDepartment)
	departments.Delete("/:id", h.DeleteDepartment)
	departments.Post("/:id/employees", h.CreateEmployee)
	departments.Put("/:id/employees/:employeeId", h.UpdateEmployee)
	departments.Delete("/:id/employees/:employeeId", h.DeleteEmployee)

	about := api.Group("/about",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleAboutManager, domain.RoleAdmin))
	about.Put("/:key", h.UpsertAboutSection)
	about.Delete("/:key", h.DeleteAboutSection)

	documents := api.Group("/documents",
		middleware.RequireAuth(tokens),
		middleware.RequireRole(domain.RoleAboutManager, domain.RoleAdmin))
	documents.Post("/", h.CreateDocument)
	documents.Put("/:id", h.UpdateDocument)
	documents.Delete("/:id", h.DeleteDocument)
}
