package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/darkiku/RfsGov/internal/auth/domain"
)

type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Service writes and reads the append-only audit trail. Recording is
// best-effort from callers: they log and continue on error.
type Service struct {
	db DB
}

func NewService(db DB) *Service {
	return &Service{db: db}
}

type Entry struct {
	ID         string    `json:"id"`
	UserID     *string   `json:"userId"`
	Action     string    `json:"action"`
	EntityType string    `json:"entityType"`
	EntityID   string    `json:"entityId"`
	Details    string    `json:"details"`
	IPAddress  string    `json:"ipAddress"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (s *Service) Record(ctx context.Context, event domain.AuditEvent) error {
	var userID any
	if event.UserID != "" {
		userID = event.UserID
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, ip_address, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.NewString(), userID, event.Action, event.EntityType, event.EntityID,
		event.Details, event.IPAddress, time.Now())
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List returns entries newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, user_id, action, entity_type, entity_id, details, ip_address, created_at
		 FROM audit_logs
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query audit logs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var entityID, details, ip *string
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.EntityType, &entityID, &details, &ip, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		if entityID != nil {
			e.EntityID = *entityID
		}
		if details != nil {
			e.Details = *details
		}
		if ip != nil {
			e.IPAddress = *ip
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
