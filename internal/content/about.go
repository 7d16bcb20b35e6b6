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

// AboutSection is a keyed block of the "about us" page: history, mission,
// leadership and so on. Keys are unique so the frontend can address a
// block directly.
type AboutSection struct {
	ID           string `json:"id"`
	SectionKey   string `json:"sectionKey"`
	TitleRu      string `json:"titleRu"`
	TitleKk      string `json:"titleKk"`
	TitleEn      string `json:"titleEn"`
	ContentRu    string `json:"contentRu"`
	ContentKk    string `json:"contentKk"`
	ContentEn    string `json:"contentEn"`
	DisplayOrder int    `json:"displayOrder"`
}

const aboutColumns = `id, section_key, title_ru, title_kk, title_en,
	content_ru, content_kk, content_en, display_order`

func scanAboutSection(row pgx.Row) (*AboutSection, error) {
	var s AboutSection
	err := row.Scan(
		&s.ID, &s.SectionKey, &s.TitleRu, &s.TitleKk, &s.TitleEn,
		&s.ContentRu, &s.ContentKk, &s.ContentEn, &s.DisplayOrder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan about section: %w", err)
	}
	return &s, nil
}

func (r *Repository) ListAboutSections(ctx context.Context) ([]AboutSection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+aboutColumns+` FROM about_sections ORDER BY display_order, section_key`)
	if err != nil {
		return nil, wrapQuery("about sections", err)
	}
	defer rows.Close()

	var items []AboutSection
	for rows.Next() {
		s, err := scanAboutSection(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	return items, rows.Err()
}

func (r *Repository) GetAboutSection(ctx context.Context, key string) (*AboutSection, error) {
	return scanAboutSection(r.db.QueryRow(ctx,
		`SELECT `+aboutColumns+` FROM about_sections WHERE section_key = $1`, key))
}

type AboutSectionInput struct {
	SectionKey   string `json:"sectionKey"`
	TitleRu      string `json:"titleRu"`
	TitleKk      string `json:"titleKk"`
	TitleEn      string `json:"titleEn"`
	ContentRu    string `json:"contentRu"`
	ContentKk    string `json:"contentKk"`
	ContentEn    string `json:"contentEn"`
	DisplayOrder int    `json:"displayOrder"`
}

// UpsertAboutSection creates or replaces the section with the given key.
func (r *Repository) UpsertAboutSection(ctx context.Context, input AboutSectionInput) (*AboutSection, error) {
	_, err := r.db.Exec(ctx,
		`INSERT INTO about_sections (id, section_key, title_ru, title_kk, title_en,
			content_ru, content_kk, content_en, display_order)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (section_key) DO UPDATE SET
			title_ru = EXCLUDED.title_ru, title_kk = EXCLUDED.title_kk, title_en = EXCLUDED.title_en,
			content_ru = EXCLUDED.content_ru, content_kk = EXCLUDED.content_kk, content_en = EXCLUDED.content_en,
			display_order = EXCLUDED.display_order`,
		uuid.NewString(), input.SectionKey, input.TitleRu, input.TitleKk, input.TitleEn,
		input.ContentRu, input.ContentKk, input.ContentEn, input.DisplayOrder)
	if err != nil {
		return nil, fmt.Errorf("upsert about section: %w", err)
	}

	return r.GetAboutSection(ctx, input.SectionKey)
}

func (r *Repository) DeleteAboutSection(ctx context.Context, key string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM about_sections WHERE section_key = $1`, key)
	if err != nil {
		return fmt.Errorf("delete about section: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (h *Handler) ListAboutSections(c *fiber.Ctx) error {
	items, err := h.repo.ListAboutSections(c.Context())
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []AboutSection{}
	}
	return c.JSON(items)
}

func (h *Handler) GetAboutSection(c *fiber.Ctx) error {
	item, err := h.repo.GetAboutSection(c.Context(), c.Params("key"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) UpsertAboutSection(c *fiber.Ctx) error {
	var input AboutSectionInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	input.SectionKey = c.Params("key")
	if input.SectionKey == "" || input.TitleRu == "" {
		return badInput(c, "sectionKey and titleRu are required")
	}

	item, err := h.repo.UpsertAboutSection(c.Context(), input)
	if err != nil {
		return internalError(c, err)
	}

	h.recordAudit(c, "UPSERT_ABOUT_SECTION", "ABOUT_SECTION", item.ID, item.SectionKey)
	return c.JSON(item)
}

func (h *Handler) DeleteAboutSection(c *fiber.Ctx) error {
	key := c.Params("key")
	if err := h.repo.DeleteAboutSection(c.Context(), key); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_ABOUT_SECTION", "ABOUT_SECTION", key, "")
	return c.SendStatus(fiber.StatusNoContent)
}
