package domain

import (
	"context"
	"time"
)

// UserStore is the credential store consulted during authentication.
// Lookups return (nil, nil) when no user matches.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// TokenLedger owns the refresh_tokens table.
//
// ReplaceForUser runs in its own transaction: it deletes any existing token
// for the user and inserts the new one, so the single-live-token invariant
// holds and issuance does not depend on the caller's unit of work.
//
// Redeem consumes a token exactly once. It locks the matched row, deletes an
// expired token before reporting ErrTokenExpired, refuses (without consuming)
// when the owning account is disabled, and otherwise deletes the row and
// returns it together with the owning user. Concurrent Redeem calls for the
// same token value serialize on the row lock; the loser sees ErrInvalidToken.
type TokenLedger interface {
	ReplaceForUser(ctx context.Context, userID, token string, expiresAt time.Time) error
	Redeem(ctx context.Context, token string) (*RefreshToken, *User, error)
	DeleteByUserID(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AuditRecorder persists audit events.
type AuditRecorder interface {
	Record(ctx context.Context, event AuditEvent) error
}
