package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/auth/service"
)

func protectedApp(tokens service.TokenGenerator, roles ...string) *fiber.App {
	app := fiber.New()
	handlers := []fiber.Handler{RequireAuth(tokens)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"userID":   c.Locals(LocalUserID),
			"username": c.Locals(LocalUsername),
			"role":     c.Locals(LocalRole),
		})
	})
	app.Get("/protected", handlers...)
	return app
}

func TestRequireAuth(t *testing.T) {
	tokens := service.NewTokenService(strings.Repeat("k", 64), 15)
	app := protectedApp(tokens)

	user := &domain.User{ID: "uid-1", Username: "editor", Role: domain.RoleNewsManager}
	access, _, err := tokens.Issue(user)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + access, fiber.StatusOK},
		{"missing header", "", fiber.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, fiber.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	tokens := service.NewTokenService(strings.Repeat("k", 64), 15)
	app := protectedApp(tokens, domain.RoleAdmin)

	admin, _, err := tokens.Issue(&domain.User{ID: "uid-1", Username: "root", Role: domain.RoleAdmin})
	require.NoError(t, err)
	editor, _, err := tokens.Issue(&domain.User{ID: "uid-2", Username: "editor", Role: domain.RoleNewsManager})
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+admin)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+editor)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
