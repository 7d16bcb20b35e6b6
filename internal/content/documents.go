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

type Document struct {
	ID            string    `json:"id"`
	TitleRu       string    `json:"titleRu"`
	TitleKk       string    `json:"titleKk"`
	TitleEn       string    `json:"titleEn"`
	DescriptionRu string    `json:"descriptionRu"`
	DescriptionKk string    `json:"descriptionKk"`
	DescriptionEn string    `json:"descriptionEn"`
	FileURL       string    `json:"fileUrl"`
	FileName      string    `json:"fileName"`
	FileSize      int64     `json:"fileSize"`
	DocumentType  string    `json:"documentType"`
	IsActive      bool      `json:"isActive"`
	UploadDate    time.Time `json:"uploadDate"`
}

const documentColumns = `id, title_ru, title_kk, title_en,
	description_ru, description_kk, description_en,
	file_url, file_name, file_size, document_type, is_active, upload_date`

func scanDocument(row pgx.Row) (*Document, error) {
	var d Document
	err := row.Scan(
		&d.ID, &d.TitleRu, &d.TitleKk, &d.TitleEn,
		&d.DescriptionRu, &d.DescriptionKk, &d.DescriptionEn,
		&d.FileURL, &d.FileName, &d.FileSize, &d.DocumentType, &d.IsActive, &d.UploadDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	return &d, nil
}

// ListDocuments filters by documentType when non-empty.
func (r *Repository) ListDocuments(ctx context.Context, documentType string) ([]Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_active`
	var args []any
	if documentType != "" {
		query += ` AND document_type = $1`
		args = append(args, documentType)
	}
	query += ` ORDER BY upload_date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQuery("documents", err)
	}
	defer rows.Close()

	var items []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	return items, rows.Err()
}

func (r *Repository) GetDocument(ctx context.Context, id string) (*Document, error) {
	return scanDocument(r.db.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
}

type DocumentInput struct {
	TitleRu       string `json:"titleRu"`
	TitleKk       string `json:"titleKk"`
	TitleEn       string `json:"titleEn"`
	DescriptionRu string `json:"descriptionRu"`
	DescriptionKk string `json:"descriptionKk"`
	DescriptionEn string `json:"descriptionEn"`
	FileURL       string `json:"fileUrl"`
	FileName      string `json:"fileName"`
	FileSize      int64  `json:"fileSize"`
	DocumentType  string `json:"documentType"`
	IsActive      *bool  `json:"isActive"`
}

func (r *Repository) CreateDocument(ctx context.Context, input DocumentInput) (*Document, error) {
	id := uuid.NewString()
	if input.DocumentType == "" {
		input.DocumentType = "REPORT"
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO documents (id, title_ru, title_kk, title_en,
			description_ru, description_kk, description_en,
			file_url, file_name, file_size, document_type, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn,
		input.FileURL, input.FileName, input.FileSize, input.DocumentType, isActive)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	return r.GetDocument(ctx, id)
}

func (r *Repository) UpdateDocument(ctx context.Context, id string, input DocumentInput) (*Document, error) {
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET title_ru = $2, title_kk = $3, title_en = $4,
			description_ru = $5, description_kk = $6, description_en = $7,
			file_url = $8, file_name = $9, file_size = $10, document_type = $11, is_active = $12
		 WHERE id = $1`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.DescriptionRu, input.DescriptionKk, input.DescriptionEn,
		input.FileURL, input.FileName, input.FileSize, input.DocumentType, isActive)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return r.GetDocument(ctx, id)
}

func (r *Repository) DeleteDocument(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (h *Handler) ListDocuments(c *fiber.Ctx) error {
	items, err := h.repo.ListDocuments(c.Context(), c.Query("type"))
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []Document{}
	}
	return c.JSON(items)
}

func (h *Handler) GetDocument(c *fiber.Ctx) error {
	item, err := h.repo.GetDocument(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) CreateDocument(c *fiber.Ctx) error {
	var input DocumentInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" || input.FileURL == "" {
		return badInput(c, "titleRu and fileUrl are required")
	}

	item, err := h.repo.CreateDocument(c.Context(), input)
	if err != nil {
		return internalError(c, err)
	}

	h.recordAudit(c, "CREATE_DOCUMENT", "DOCUMENT", item.ID, item.TitleRu)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateDocument(c *fiber.Ctx) error {
	var input DocumentInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" || input.FileURL == "" {
		return badInput(c, "titleRu and fileUrl are required")
	}

	item, err := h.repo.UpdateDocument(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "UPDATE_DOCUMENT", "DOCUMENT", item.ID, item.TitleRu)
	return c.JSON(item)
}

func (h *Handler) DeleteDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteDocument(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_DOCUMENT", "DOCUMENT", id, "")
	return c.SendStatus(fiber.StatusNoContent)
}
