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

type Contact struct {
	ID           string `json:"id"`
	LabelRu      string `json:"labelRu"`
	LabelKk      string `json:"labelKk"`
	LabelEn      string `json:"labelEn"`
	Value        string `json:"value"`
	ContactType  string `json:"contactType"`
	DisplayOrder int    `json:"displayOrder"`
}

const contactColumns = `id, label_ru, label_kk, label_en, value, contact_type, display_order`

func scanContact(row pgx.Row) (*Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.LabelRu, &c.LabelKk, &c.LabelEn, &c.Value, &c.ContactType, &c.DisplayOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	return &c, nil
}

func (r *Repository) ListContacts(ctx context.Context) ([]Contact, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+contactColumns+` FROM contacts ORDER BY display_order, label_ru`)
	if err != nil {
		return nil, wrapQuery("contacts", err)
	}
	defer rows.Close()

	var items []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

type ContactInput struct {
	LabelRu      string `json:"labelRu"`
	LabelKk      string `json:"labelKk"`
	LabelEn      string `json:"labelEn"`
	Value        string `json:"value"`
	ContactType  string `json:"contactType"`
	DisplayOrder int    `json:"displayOrder"`
}

func (r *Repository) CreateContact(ctx context.Context, input ContactInput) (*Contact, error) {
	id := uuid.NewString()
	if input.ContactType == "" {
		input.ContactType = "PHONE"
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO contacts (id, label_ru, label_kk, label_en, value, contact_type, display_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, input.LabelRu, input.LabelKk, input.LabelEn, input.Value, input.ContactType, input.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("insert contact: %w", err)
	}

	return scanContact(r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
}

func (r *Repository) UpdateContact(ctx context.Context, id string, input ContactInput) (*Contact, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE contacts SET label_ru = $2, label_kk = $3, label_en = $4,
			value = $5, contact_type = $6, display_order = $7
		 WHERE id = $1`,
		id, input.LabelRu, input.LabelKk, input.LabelEn, input.Value, input.ContactType, input.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	return scanContact(r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
}

func (r *Repository) DeleteContact(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (h *Handler) ListContacts(c *fiber.Ctx) error {
	items, err := h.repo.ListContacts(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []Contact{}
	}
	return c.JSON(items)
}

func (h *Handler) CreateContact(c *fiber.Ctx) error {
	var input ContactInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.LabelRu == "" || input.Value == "" {
		return badInput(c, "labelRu and value are required")
	}

	item, err := h.repo.CreateContact(c.Context(), input)
	if err != nil {
		return internalError(c, err)
	}

	h.recordAudit(c, "CREATE_CONTACT", "CONTACT", item.ID, item.LabelRu)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateContact(c *fiber.Ctx) error {
	var input ContactInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.LabelRu == "" || input.Value == "" {
		return badInput(c, "labelRu and value are required")
	}

	item, err := h.repo.UpdateContact(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "UPDATE_CONTACT", "CONTACT", item.ID, item.LabelRu)
	return c.JSON(item)
}

func (h *Handler) DeleteContact(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteContact(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_CONTACT", "CONTACT", id, "")
	return c.SendStatus(fiber.StatusNoContent)
}
