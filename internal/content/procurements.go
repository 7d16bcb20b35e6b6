package content

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

type Procurement struct {
	ID              string     `json:"id"`
	TitleRu         string     `json:"titleRu"`
	TitleKk         string     `json:"titleKk"`
	TitleEn         string     `json:"titleEn"`
	DescriptionRu   string     `json:"descriptionRu"`
	DescriptionKk   string     `json:"descriptionKk"`
	DescriptionEn   string     `json:"descriptionEn"`
	Year            *int       `json:"year"`
	PublishDate     *time.Time `json:"publishDate"`
	Deadline        *time.Time `json:"deadline"`
	DocumentURL     string     `json:"documentUrl"`
	ProcurementType string     `json:"procurementType"`
	IsActive        bool       `json:"isActive"`
	CreatedAt       time.Time  `json:"createdAt"`
}

const procurementColumns = `id, title_ru, title_kk, title_en,
	description_ru, description_kk, description_en,
	year, publish_date, deadline, document_url, procurement_type, is_active, created_at`

func scanProcurement(row pgx.Row) (*Procurement, error) {
	var p Procurement
	err := row.Scan(
		&p.ID, &p.TitleRu, &p.TitleKk, &p.TitleEn,
		&p.DescriptionRu, &p.DescriptionKk, &p.DescriptionEn,
		&p.Year, &p.PublishDate, &p.Deadline,
		&p.DocumentURL, &p.ProcurementType, &p.IsActive, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan procurement: %w", err)
	}
	return &p, nil
}

// ListProcurements filters by year when year > 0.
func (r *Repository) ListProcurements(ctx context.Context, year int) ([]Procurement, error) {
	query := `SELECT ` + procurementColumns + ` FROM procurements WHERE is_active`
	var args []any
	if year > 0 {
		query += ` AND year = $1`
		args = append(args, year)
	}
	query += ` ORDER BY publish_date DESC NULLS LAST, created_at DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQuery("procurements", err)
	}
	defer rows.Close()

	var items []Procurement
	for rows.Next() {
		p, err := scanProcurement(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

func (r *Repository) GetProcurement(ctx context.Context, id string) (*Procurement, error) {
	return scanProcurement(r.db.QueryRow(ctx,
		`SELECT `+procurementColumns+` FROM procurements WHERE id = $1`, id))
}

type ProcurementInput struct {
	TitleRu         string     `json:"titleRu"`
	TitleKk         string     `json:"titleKk"`
	TitleEn         string     `json:"titleEn"`
	DescriptionRu   string     `json:"descriptionRu"`
	DescriptionKk   string     `json:"descriptionKk"`
	DescriptionEn   string     `json:"descriptionEn"`
	Year            *int       `json:"year"`
	PublishDate     *time.Time `json:"publishDate"`
	Deadline        *time.Time `json:"deadline"`
	DocumentURL     string     `json:"documentUrl"`
	ProcurementType string     `json:"procurementType"`
	IsActive        *bool      `json:"isActive"`
}

func (r *Repository) CreateProcurement(ctx context.Context, input ProcurementInput) (*Procurement, error) {
	id := uuid.NewString()
	if input.ProcurementType == "" {
		input.ProcurementType = "TENDER"
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO procurements (id, title_ru, title_kk, title_en,
			description_ru, description_kk, description_en,
			year, publish_date, deadline, document_url, procurement_type, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn,
		input.Year, input.PublishDate, input.Deadline,
		input.DocumentURL, input.ProcurementType, isActive)
	if err != nil {
		return nil, fmt.Errorf("insert procurement: %w", err)
	}

	return r.GetProcurement(ctx, id)
}

func (r *Repository) UpdateProcurement(ctx context.Context, id string, input ProcurementInput) (*Procurement, error) {
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE procurements SET title_ru = $2, title_kk = $3, title_en = $4,
			description_ru = $5, description_kk = $6, description_en = $7,
			year = $8, publish_date = $9, deadline = $10,
			document_url = $11, procurement_type = $12, is_active = $13
		 WHERE id = $1`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn,
		input.Year, input.PublishDate, input.Deadline,
		input.DocumentURL, input.ProcurementType, isActive)
	if err != nil {
		return nil, fmt.Errorf("update procurement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetProcurement(ctx, id)
}

func (r *Repository) DeleteProcurement(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM procurements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete procurement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (h *Handler) ListProcurements(c *fiber.Ctx) error {
	items, err := h.repo.ListProcurements(c.Context(), c.QueryInt("year", 0))
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []Procurement{}
	}
	return c.JSON(items)
}

func (h *Handler) GetProcurement(c *fiber.Ctx) error {
	item, err := h.repo.GetProcurement(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) CreateProcurement(c *fiber.Ctx) error {
	var input ProcurementInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" {
		return badInput(c, "titleRu is required")
	}

	item, err := h.repo.CreateProcurement(c.Context(), input)
	if err != nil {
		return internalError(c, err)
	}

	h.recordAudit(c, "CREATE_PROCUREMENT", "PROCUREMENT", item.ID, item.TitleRu)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateProcurement(c *fiber.Ctx) error {
	var input ProcurementInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" {
		return badInput(c, "titleRu is required")
	}

	item, err := h.repo.UpdateProcurement(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "UPDATE_PROCUREMENT", "PROCUREMENT", item.ID, item.TitleRu)
	return c.JSON(item)
}

func (h *Handler) DeleteProcurement(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteProcurement(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_PROCUREMENT", "PROCUREMENT", id, "")
	return c.SendStatus(fiber.StatusNoContent)
}
