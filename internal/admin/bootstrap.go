package admin

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/obs"
)

// Bootstrap creates the initial administrator when the users table is
// empty. Credentials come from configuration; when they are not set on an
// empty database the server refuses to start rather than run without any
// way to sign in.
func Bootstrap(ctx context.Context, repo *Repository, username, email, password string, log *obs.Logger) error {
	count, err := repo.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil
	}

	if username == "" || password == "" {
		return fmt.Errorf("no users exist and ADMIN_USERNAME/ADMIN_PASSWORD are not set")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return fmt.Errorf("create initial admin: %w", err)
	}

	log.Info("created initial administrator account", map[string]any{"username": username})
	return nil
}
