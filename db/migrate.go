package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		last_login TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		token TEXT NOT NULL UNIQUE,
		expires_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_expiry ON refresh_tokens (expires_at)`,

	`CREATE TABLE IF NOT EXISTS audit_logs (
		id UUID PRIMARY KEY,
		user_id UUID,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT,
		details TEXT,
		ip_address TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_created ON audit_logs (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS news (
		id UUID PRIMARY KEY,
		title_ru TEXT NOT NULL,
		title_kk TEXT NOT NULL,
		title_en TEXT NOT NULL DEFAULT '',
		content_ru TEXT NOT NULL,
		content_kk TEXT NOT NULL,
		content_en TEXT NOT NULL DEFAULT '',
		short_description_ru TEXT NOT NULL DEFAULT '',
		short_description_kk TEXT NOT NULL DEFAULT '',
		short_description_en TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		news_type TEXT NOT NULL DEFAULT 'NEWS',
		view_count INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		published_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_news_active_date ON news (is_active, published_date DESC)`,

	`CREATE TABLE IF NOT EXISTS news_images (
		id UUID PRIMARY KEY,
		news_id UUID NOT NULL REFERENCES news(id) ON DELETE CASCADE,
		image_url TEXT NOT NULL,
		caption TEXT NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS procurements (
		id UUID PRIMARY KEY,
		title_ru TEXT NOT NULL,
		title_kk TEXT NOT NULL DEFAULT '',
		title_en TEXT NOT NULL DEFAULT '',
		description_ru TEXT NOT NULL DEFAULT '',
		description_kk TEXT NOT NULL DEFAULT '',
		description_en TEXT NOT NULL DEFAULT '',
		year INTEGER,
		publish_date DATE,
		deadline DATE,
		document_url TEXT NOT NULL DEFAULT '',
		procurement_type TEXT NOT NULL DEFAULT 'TENDER',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,

	`CREATE TABLE IF NOT EXISTS services (
		id UUID PRIMARY KEY,
		title_ru TEXT NOT NULL,
		title_kk TEXT NOT NULL DEFAULT '',
		title_en TEXT NOT NULL DEFAULT '',
		description_ru TEXT NOT NULL DEFAULT '',
		description_kk TEXT NOT NULL DEFAULT '',
		description_en TEXT NOT NULL DEFAULT '',
		icon_url TEXT NOT NULL DEFAULT '',
		link TEXT NOT NULL DEFAULT '',
		service_type TEXT NOT NULL DEFAULT 'GENERAL',
		display_order INTEGER NOT NULL DEFAULT 0,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,

	`CREATE TABLE IF NOT EXISTS contacts (
		id UUID PRIMARY KEY,
		label_ru TEXT NOT NULL,
		label_kk TEXT NOT NULL DEFAULT '',
		label_en TEXT NOT NULL DEFAULT '',
		value TEXT NOT NULL,
		contact_type TEXT NOT NULL DEFAULT 'PHONE',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS departments (
		id UUID PRIMARY KEY,
		name_ru TEXT NOT NULL,
		name_kk TEXT NOT NULL DEFAULT '',
		name_en TEXT NOT NULL DEFAULT '',
		description_ru TEXT NOT NULL DEFAULT '',
		description_kk TEXT NOT NULL DEFAULT '',
		description_en TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS employees (
		id UUID PRIMARY KEY,
		department_id UUID NOT NULL REFERENCES departments(id) ON DELETE CASCADE,
		full_name TEXT NOT NULL,
		position TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS about_sections (
		id UUID PRIMARY KEY,
		section_key TEXT NOT NULL UNIQUE,
		title_ru TEXT NOT NULL,
		title_kk TEXT NOT NULL DEFAULT '',
		title_en TEXT NOT NULL DEFAULT '',
		content_ru TEXT NOT NULL DEFAULT '',
		content_kk TEXT NOT NULL DEFAULT '',
		content_en TEXT NOT NULL DEFAULT '',
		display_order INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		title_ru TEXT NOT NULL,
		title_kk TEXT NOT NULL DEFAULT '',
		title_en TEXT NOT NULL DEFAULT '',
		description_ru TEXT NOT NULL DEFAULT '',
		description_kk TEXT NOT NULL DEFAULT '',
		description_en TEXT NOT NULL DEFAULT '',
		file_url TEXT NOT NULL,
		file_name TEXT NOT NULL DEFAULT '',
		file_size BIGINT NOT NULL DEFAULT 0,
		document_type TEXT NOT NULL DEFAULT 'REPORT',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		upload_date TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
}

// RunMigrations applies the schema. Statements are idempotent, so running
// on every startup is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
