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

type News struct {
	ID                 string      `json:"id"`
	TitleRu            string      `json:"titleRu"`
	TitleKk            string      `json:"titleKk"`
	TitleEn            string      `json:"titleEn"`
	ContentRu          string      `json:"contentRu"`
	ContentKk          string      `json:"contentKk"`
	ContentEn          string      `json:"contentEn"`
	ShortDescriptionRu string      `json:"shortDescriptionRu"`
	ShortDescriptionKk string      `json:"shortDescriptionKk"`
	ShortDescriptionEn string      `json:"shortDescriptionEn"`
	ImageURL           string      `json:"imageUrl"`
	Author             string      `json:"author"`
	NewsType           string      `json:"newsType"`
	ViewCount          int         `json:"viewCount"`
	IsActive           bool        `json:"isActive"`
	PublishedDate      time.Time   `json:"publishedDate"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
	Images             []NewsImage `json:"images,omitempty"`
}

type NewsImage struct {
	ID       string `json:"id"`
	NewsID   string `json:"-"`
	ImageURL string `json:"imageUrl"`
	Caption  string `json:"caption"`
}

const newsColumns = `id, title_ru, title_kk, title_en, content_ru, content_kk, content_en,
	short_description_ru, short_description_kk, short_description_en,
	image_url, author, news_type, view_count, is_active, published_date, created_at, updated_at`

func scanNews(row pgx.Row) (*News, error) {
	var n News
	err := row.Scan(
		&n.ID, &n.TitleRu, &n.TitleKk, &n.TitleEn,
		&n.ContentRu, &n.ContentKk, &n.ContentEn,
		&n.ShortDescriptionRu, &n.ShortDescriptionKk, &n.ShortDescriptionEn,
		&n.ImageURL, &n.Author, &n.NewsType, &n.ViewCount, &n.IsActive,
		&n.PublishedDate, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan news: %w", err)
	}
	return &n, nil
}

// ListNews returns active items newest first. newsType filters when non-empty.
func (r *Repository) ListNews(ctx context.Context, newsType string, limit, offset int) ([]News, error) {
	query := `SELECT ` + newsColumns + ` FROM news WHERE is_active`
	args := []any{limit, offset}
	if newsType != "" {
		query += ` AND news_type = $3`
		args = append(args, newsType)
	}
	query += ` ORDER BY published_date DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapQuery("news", err)
	}
	defer rows.Close()

	var items []News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *n)
	}
	return items, rows.Err()
}

// GetNews loads one item with its gallery and bumps the view counter.
// The counter update is fire-and-forget relative to the read: a failed
// increment does not fail the request.
func (r *Repository) GetNews(ctx context.Context, id string) (*News, error) {
	n, err := scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1 AND is_active`, id))
	if err != nil {
		return nil, err
	}

	if _, err := r.db.Exec(ctx, `UPDATE news SET view_count = view_count + 1 WHERE id = $1`, id); err == nil {
		n.ViewCount++
	}

	n.Images, err = r.listNewsImages(ctx, id)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *Repository) listNewsImages(ctx context.Context, newsID string) ([]NewsImage, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, news_id, image_url, caption FROM news_images WHERE news_id = $1`, newsID)
	if err != nil {
		return nil, wrapQuery("news images", err)
	}
	defer rows.Close()

	var images []NewsImage
	for rows.Next() {
		var img NewsImage
		if err := rows.Scan(&img.ID, &img.NewsID, &img.ImageURL, &img.Caption); err != nil {
			return nil, fmt.Errorf("scan news image: %w", err)
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

type NewsInput struct {
	TitleRu            string      `json:"titleRu"`
	TitleKk            string      `json:"titleKk"`
	TitleEn            string      `json:"titleEn"`
	ContentRu          string      `json:"contentRu"`
	ContentKk          string      `json:"contentKk"`
	ContentEn          string      `json:"contentEn"`
	ShortDescriptionRu string      `json:"shortDescriptionRu"`
	ShortDescriptionKk string      `json:"shortDescriptionKk"`
	ShortDescriptionEn string      `json:"shortDescriptionEn"`
	ImageURL           string      `json:"imageUrl"`
	Author             string      `json:"author"`
	NewsType           string      `json:"newsType"`
	IsActive           *bool       `json:"isActive"`
	PublishedDate      *time.Time  `json:"publishedDate"`
	Images             []NewsImage `json:"images"`
}

func (r *Repository) CreateNews(ctx context.Context, input NewsInput) (*News, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin news create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	id := uuid.NewString()
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	published := time.Now()
	if input.PublishedDate != nil {
		published = *input.PublishedDate
	}
	if input.NewsType == "" {
		input.NewsType = "NEWS"
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO news (id, title_ru, title_kk, title_en, content_ru, content_kk, content_en,
			short_description_ru, short_description_kk, short_description_en,
			image_url, author, news_type, is_active, published_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.ContentRu, input.ContentKk, input.ContentEn,
		input.ShortDescriptionRu, input.ShortDescriptionKk, input.ShortDescriptionEn,
		input.ImageURL, input.Author, input.NewsType, isActive, published)
	if err != nil {
		return nil, fmt.Errorf("insert news: %w", err)
	}

	for _, img := range input.Images {
		_, err = tx.Exec(ctx,
			`INSERT INTO news_images (id, news_id, image_url, caption) VALUES ($1, $2, $3, $4)`,
			uuid.NewString(), id, img.ImageURL, img.Caption)
		if err != nil {
			return nil, fmt.Errorf("insert news image: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit news create: %w", err)
	}

	return scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
}

func (r *Repository) UpdateNews(ctx context.Context, id string, input NewsInput) (*News, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin news update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	tag, err := tx.Exec(ctx,
		`UPDATE news SET title_ru = $2, title_kk = $3, title_en = $4,
			content_ru = $5, content_kk = $6, content_en = $7,
			short_description_ru = $8, short_description_kk = $9, short_description_en = $10,
			image_url = $11, author = $12, news_type = $13, is_active = $14, updated_at = now()
		 WHERE id = $1`,
		id, input.TitleRu, input.TitleKk, input.TitleEn,
		input.ContentRu, input.ContentKk, input.ContentEn,
		input.ShortDescriptionRu, input.ShortDescriptionKk, input.ShortDescriptionEn,
		input.ImageURL, input.Author, input.NewsType, isActive)
	if err != nil {
		return nil, fmt.Errorf("update news: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrNotFound
	}

	// The gallery is replaced wholesale on update.
	if input.Images != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM news_images WHERE news_id = $1`, id); err != nil {
			return nil, fmt.Errorf("clear news images: %w", err)
		}
		for _, img := range input.Images {
			_, err = tx.Exec(ctx,
				`INSERT INTO news_images (id, news_id, image_url, caption) VALUES ($1, $2, $3, $4)`,
				uuid.NewString(), id, img.ImageURL, img.Caption)
			if err != nil {
				return nil, fmt.Errorf("insert news image: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit news update: %w", err)
	}

	return scanNews(r.db.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id))
}

func (r *Repository) DeleteNews(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (h *Handler) ListNews(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	items, err := h.repo.ListNews(c.Context(), c.Query("type"), limit, offset)
	if err != nil {
		return internalError(c, err)
	}
	if items == nil {
		items = []News{}
	}
	return c.JSON(items)
}

func (h *Handler) GetNews(c *fiber.Ctx) error {
	item, err := h.repo.GetNews(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(item)
}

func (h *Handler) CreateNews(c *fiber.Ctx) error {
	var input NewsInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" || input.ContentRu == "" {
		return badInput(c, "titleRu and contentRu are required")
	}

	item, err := h.repo.CreateNews(c.Context(), input)
	if err != nil {
		return internalError(c, err)
	}

	h.recordAudit(c, "CREATE_NEWS", "NEWS", item.ID, item.TitleRu)
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *Handler) UpdateNews(c *fiber.Ctx) error {
	var input NewsInput
	if err := c.BodyParser(&input); err != nil {
		return badInput(c, "invalid input")
	}
	if input.TitleRu == "" || input.ContentRu == "" {
		return badInput(c, "titleRu and contentRu are required")
	}

	item, err := h.repo.UpdateNews(c.Context(), c.Params("id"), input)
	if err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "UPDATE_NEWS", "NEWS", item.ID, item.TitleRu)
	return c.JSON(item)
}

func (h *Handler) DeleteNews(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.repo.DeleteNews(c.Context(), id); err != nil {
		return respondError(c, err)
	}

	h.recordAudit(c, "DELETE_NEWS", "NEWS", id, "")
	return c.SendStatus(fiber.StatusNoContent)
}
