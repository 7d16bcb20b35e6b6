package domain

import "time"

// Roles understood by the portal. Each content section has its own manager
// role; account management is ADMIN only.
const (
	RoleUser               = "USER"
	RoleAdmin              = "ADMIN"
	RoleNewsManager        = "NEWS_MANAGER"
	RoleProcurementManager = "PROCUREMENT_MANAGER"
	RoleAboutManager       = "ABOUT_MANAGER"
	RoleServicesManager    = "SERVICES_MANAGER"
	RoleContactsManager    = "CONTACTS_MANAGER"
	RoleHRManager          = "HR_MANAGER"
)

type User struct {
	ID           string
	Username     string
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RefreshToken is one outstanding session-renewal credential. The ledger
// keeps at most one row per user.
type RefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// AuditEvent is a single entry for the audit trail. Recording is
// best-effort from the caller's perspective.
type AuditEvent struct {
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	Details    string
	IPAddress  string
}
