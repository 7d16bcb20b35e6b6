package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresRepository implements domain.UserStore and domain.TokenLedger.
type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, email, full_name, password_hash, role, is_active, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.Role, &user.IsActive, &user.LastLogin, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// ReplaceForUser atomically swaps the user's refresh token: delete any
// existing row, insert the new one, commit. It always runs in its own
// transaction so token issuance never rides on a caller's unit of work.
func (r *PostgresRepository) ReplaceForUser(ctx context.Context, userID, token string, expiresAt time.Time) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin token replace: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("delete old refresh token: %w", err)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO refresh_tokens (id, user_id, token, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.NewString(), userID, token, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit token replace: %w", err)
	}
	return nil
}

// Redeem consumes a refresh token exactly once. The FOR UPDATE lock on the
// token row serializes concurrent redemptions of the same token string: the
// loser blocks until the winner's delete commits, then sees no row and gets
// ErrInvalidToken. An expired token is deleted before ErrTokenExpired is
// returned; a disabled owner aborts without consuming the token.
func (r *PostgresRepository) Redeem(ctx context.Context, token string) (*domain.RefreshToken, *domain.User, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin token redeem: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var rec domain.RefreshToken
	var user domain.User
	err = tx.QueryRow(ctx,
		`SELECT rt.id, rt.user_id, rt.token, rt.expires_at, rt.created_at,
		        u.id, u.username, u.email, u.full_name, u.password_hash, u.role, u.is_active
		 FROM refresh_tokens rt
		 JOIN users u ON u.id = rt.user_id
		 WHERE rt.token = $1
		 FOR UPDATE OF rt`, token).Scan(
		&rec.ID, &rec.UserID, &rec.Token, &rec.ExpiresAt, &rec.CreatedAt,
		&user.ID, &user.Username, &user.Email, &user.FullName, &user.PasswordHash,
		&user.Role, &user.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.ErrInvalidToken
		}
		return nil, nil, fmt.Errorf("lock refresh token: %w", err)
	}

	if time.Now().After(rec.ExpiresAt) {
		if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, rec.ID); err != nil {
			return nil, nil, fmt.Errorf("delete expired refresh token: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, nil, fmt.Errorf("commit expired token cleanup: %w", err)
		}
		return nil, nil, apperrors.ErrTokenExpired
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDisabled
	}

	if _, err := tx.Exec(ctx, `DELETE FROM refresh_tokens WHERE id = $1`, rec.ID); err != nil {
		return nil, nil, fmt.Errorf("delete redeemed refresh token: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit token redeem: %w", err)
	}

	return &rec, &user, nil
}

func (r *PostgresRepository) DeleteByUserID(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete refresh tokens for user: %w", err)
	}
	return nil
}

func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
