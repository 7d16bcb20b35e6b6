package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

const (
	userID  = "5f3c1c2a-91f7-4a6e-8a34-0d6f2c3e4b5a"
	tokenID = "a1b2c3d4-0000-4000-8000-000000000001"
)

func newMock(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return mock, NewPostgresRepository(mock)
}

func userRows() *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{
		"id", "username", "email", "full_name", "password_hash",
		"role", "is_active", "last_login", "created_at", "updated_at",
	}).AddRow(userID, "editor", "editor@example.kz", "Editor", "$2a$10$hash",
		"NEWS_MANAGER", true, nil, now, now)
}

func TestFindByUsername(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email, full_name, password_hash, role, is_active, last_login, created_at, updated_at FROM users WHERE username = $1 LIMIT 1`)).
		WithArgs("editor").
		WillReturnRows(userRows())

	user, err := repo.FindByUsername(context.Background(), "editor")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, userID, user.ID)
	assert.Equal(t, "NEWS_MANAGER", user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsername_NotFound(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "username", "email", "full_name", "password_hash",
			"role", "is_active", "last_login", "created_at", "updated_at",
		}))

	user, err := repo.FindByUsername(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceForUser(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_tokens`)).
		WithArgs(pgxmock.AnyArg(), userID, "new-token", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.ReplaceForUser(context.Background(), userID, "new-token", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func redeemRows(expiresAt time.Time, isActive bool) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "user_id", "token", "expires_at", "created_at",
		"id", "username", "email", "full_name", "password_hash", "role", "is_active",
	}).AddRow(tokenID, userID, "the-token", expiresAt, time.Now(),
		userID, "editor", "editor@example.kz", "Editor", "$2a$10$hash", "NEWS_MANAGER", isActive)
}

func TestRedeem_ConsumesToken(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT rt\.id, .+ FOR UPDATE OF rt`).
		WithArgs("the-token").
		WillReturnRows(redeemRows(time.Now().Add(time.Hour), true))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE id = $1`)).
		WithArgs(tokenID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	rec, user, err := repo.Redeem(context.Background(), "the-token")
	require.NoError(t, err)
	assert.Equal(t, tokenID, rec.ID)
	assert.Equal(t, userID, user.ID)
	assert.True(t, user.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_UnknownToken(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT rt\.id, .+ FOR UPDATE OF rt`).
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "user_id", "token", "expires_at", "created_at",
			"id", "username", "email", "full_name", "password_hash", "role", "is_active",
		}))
	mock.ExpectRollback()

	_, _, err := repo.Redeem(context.Background(), "unknown")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_ExpiredTokenDeleted(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT rt\.id, .+ FOR UPDATE OF rt`).
		WithArgs("stale").
		WillReturnRows(redeemRows(time.Now().Add(-time.Minute), true))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE id = $1`)).
		WithArgs(tokenID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	_, _, err := repo.Redeem(context.Background(), "stale")
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_DisabledOwnerKeepsToken(t *testing.T) {
	mock, repo := newMock(t)

	// No delete, no commit: the transaction rolls back and the token row
	// stays untouched.
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT rt\.id, .+ FOR UPDATE OF rt`).
		WithArgs("the-token").
		WillReturnRows(redeemRows(time.Now().Add(time.Hour), false))
	mock.ExpectRollback()

	_, _, err := repo.Redeem(context.Background(), "the-token")
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByUserID(t *testing.T) {
	mock, repo := newMock(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE user_id = $1`)).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	require.NoError(t, repo.DeleteByUserID(context.Background(), userID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteExpired(t *testing.T) {
	mock, repo := newMock(t)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_tokens WHERE expires_at < $1`)).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	deleted, err := repo.DeleteExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLogin(t *testing.T) {
	mock, repo := newMock(t)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE users SET last_login = $2, updated_at = now() WHERE id = $1`)).
		WithArgs(userID, at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), userID, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}
