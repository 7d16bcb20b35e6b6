package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

type Service struct {
	ID            string `json:"id"`
	TitleRu       string `json:"titleRu"`
	TitleKk       string `json:"titleKk"`
	TitleEn       string `json:"titleEn"`
	DescriptionRu string `json:"descriptionRu"`
	DescriptionKk string `json:"descriptionKk"`
	DescriptionEn string `json:"descriptionEn"`
	IconURL       string `json:"iconUrl"`
	Link          string `json:"link"`
	ServiceType   string `json:"serviceType"`
	DisplayOrder  int    `json:"displayOrder"`
	IsActive      bool   `json:"isActive"`
}

const serviceColumns = `id, title_ru, title_kk, title_en,
	description_ru, description_kk, description_en,
	icon_url, link, service_type, display_order, is_active`

func scanService(row pgx.Row) (*Service, error) {
	var s Service
	err := row.Scan(
		&s.ID, &s.TitleRu, &s.TitleKk, &s.TitleEn,
		&s.DescriptionRu, &s.DescriptionKk, &s.DescriptionEn,
		&s.IconURL, &s.Link, &s.ServiceType, &s.DisplayOrder, &s.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan service: %w", err)
	}
	return &s, nil
}

func (r *Repository) ListServices(ctx context.Context) ([]Service, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE is_active ORDER BY display_order, title_ru`)
	if err != nil {
		return nil, wrapQuery("services", err)
	}
	defer rows.Close()

	var items []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

func (r *Repository) GetService(ctx context.Context, id string) (*Service, error) {
	return scanService(r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = $1`, id))
}

type ServiceInput struct {
	TitleRu       string `json:"titleRu"`
	TitleKk       string `json:"titleKk"`
	TitleEn       string `json:"titleEn"`
	DescriptionRu string `json:"descriptionRu"`
	DescriptionKk string `json:"descriptionKk"`
	DescriptionEn string `json:"descriptionEn"`
	IconURL       string `json:"iconUrl"`
	Link          string `json:"link"`
	ServiceType   string `json:"serviceType"`
	DisplayOrder  int    `json:"displayOrder"`
	IsActive      *bool  `json:"isActive"`
}

func (r *Repository) CreateService(ctx context.Context, input ServiceInput) (*Service, error) {
	id := uuid.NewString()
	if input.ServiceType == "" {
		input.ServiceType = "GENERAL"
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO services (id, title_ru, title_kk, title_en,
			description_ru, description_kk, description_en,
			icon_url, link, service_type, display_order, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn,
		input.IconURL, input.Link, input.ServiceType, input.DisplayOrder, isActive)
	if err != nil {
		return nil, fmt.Errorf("insert service: %w", err)
	}

	return r.GetService(ctx, id)
}

func (r *Repository) UpdateService(ctx context.Context, id string, input ServiceInput) (*Service, error) {
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE services SET title_ru = $2, title_kk = $3, title_en = $4,
			description_ru = $5, description_kk = $6, description_en = $7,
			icon_url = $8, link = $9, service_type = $10, display_order = $11, is_active = $12
		 WHERE id = $1`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn,
		input.IconURL, input.Link, input.ServiceType, input.DisplayOrder, isActive)
	if err != nil {
		return nil, fmt.Errorf("update service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetService(ctx, id)
}

func (r *Repository) DeleteService(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (h *Handler) ListServices(c *fiber.Ctx) error {
	items, err := h.repo.ListServices(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []Service{}
	}
	return c.JSON(items)
}

func (h *Handler) GetService(c *fiber.Ctx) error {
	item, err := h.repo.GetService(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) CreateService(c *fiber.Ctx) error {
	var input ServiceInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" {
		return badInput(c, "titleRu is required")
	}

	item, err := h.repo.CreateService(c.Context(), input)
	if err != nil {
		return internalError(c, err)
	}

	h.recordAudit(c, "CREATE_SERVICE", "SERVICE", item.ID, item.TitleRu)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateService(c *fiber.Ctx) error {
	var input ServiceInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" {
		return badInput(c, "titleRu is required")
	}

	item, err := h.repo.UpdateService(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "UPDATE_SERVICE", "SERVICE", item.ID, item.TitleRu)
	return c.JSON(item)
}

func (h *Handler) DeleteService(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteService(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_SERVICE", "SERVICE", id, "")
	return c.SendStatus(fiber.StatusNoContent)
}
