package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/darkiku/RfsGov/internal/audit"
	"github.com/darkiku/RfsGov/internal/auth/domain"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
	"github.com/darkiku/RfsGov/internal/middleware"
	"github.com/darkiku/RfsGov/internal/obs"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Repository holds the portal's public content: news, procurements,
// services, contacts, departments with staff, about sections and
// documents. All entities carry Russian, Kazakh and English fields.
type Repository struct {
	db DB
}

func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

type Handler struct {
	repo  *Repository
	audit *audit.Service
	log   *obs.Logger
}

func NewHandler(repo *Repository, auditSvc *audit.Service, log *obs.Logger) *Handler {
	return &Handler{repo: repo, audit: auditSvc, log: log}
}

func (h *Handler) recordAudit(c *fiber.Ctx, action, entityType, entityID, details string) {
	actorID, _ := c.Locals(middleware.LocalUserID).(string)
	event := domain.AuditEvent{
		UserID:     actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  middleware.ClientIP(c),
	}
	if err := h.audit.Record(c.Context(), event); err != nil {
		h.log.Error("failed to record audit event", map[string]any{"action": action, "error": err.Error()})
	}
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
}

func badInput(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": message})
}

func internalError(c *fiber.Ctx, err error) error {
	obs.CaptureError(err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

func respondError(c *fiber.Ctx, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return notFound(c)
	}
	return internalError(c, err)
}

func wrapQuery(entity string, err error) error {
	return fmt.Errorf("query %s: %w", entity, err)
}
