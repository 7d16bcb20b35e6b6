package handler_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/auth/handler"
	"github.com/darkiku/RfsGov/internal/auth/service"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
	"github.com/darkiku/RfsGov/internal/mocks"
	"github.com/darkiku/RfsGov/internal/obs"
)

type env struct {
	app    *fiber.App
	users  *mocks.MockUserStore
	ledger *mocks.MockTokenLedger
	tokens *service.TokenService
}

func newEnv(t *testing.T, maxAttempts int) *env {
	ctrl := gomock.NewController(t)

	e := &env{
		users:  mocks.NewMockUserStore(ctrl),
		ledger: mocks.NewMockTokenLedger(ctrl),
		tokens: service.NewTokenService(strings.Repeat("k", 64), 15),
	}

	tracker := service.NewAttemptTracker(maxAttempts, 5*time.Minute)
	audit := mocks.NewMockAuditRecorder(ctrl)
	audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	svc := service.NewAuthService(
		e.users, e.ledger, e.tokens, tracker, audit, obs.NewLogger(), 168*time.Hour,
	)

	e.app = fiber.New()
	handler.RegisterRoutes(e.app, handler.NewAuthHandler(svc), e.tokens)
	return e
}

func storedUser(t *testing.T, password string) *domain.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &domain.User{
		ID:           "5f3c1c2a-91f7-4a6e-8a34-0d6f2c3e4b5a",
		Username:     "editor",
		Email:        "editor@example.kz",
		PasswordHash: string(hash),
		Role:         domain.RoleNewsManager,
		IsActive:     true,
	}
}

func postJSON(path string, body any) *http.Request {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestLoginEndpoint_Success(t *testing.T) {
	e := newEnv(t, 10)
	user := storedUser(t, "correct-horse-1")

	e.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)
	e.users.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	e.ledger.EXPECT().ReplaceForUser(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).Return(nil)

	resp, err := e.app.Test(postJSON("/api/auth/login", fiber.Map{
		"username": "editor", "password": "correct-horse-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.Equal(t, "Bearer", body["tokenType"])
	assert.Equal(t, "editor", body["username"])
}

func TestLoginEndpoint_MissingFields(t *testing.T) {
	e := newEnv(t, 10)

	resp, err := e.app.Test(postJSON("/api/auth/login", fiber.Map{"username": "editor"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	e := newEnv(t, 10)
	user := storedUser(t, "correct-horse-1")

	e.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)

	resp, err := e.app.Test(postJSON("/api/auth/login", fiber.Map{
		"username": "editor", "password": "wrong",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginEndpoint_DisabledAccount(t *testing.T) {
	e := newEnv(t, 10)
	user := storedUser(t, "correct-horse-1")
	user.IsActive = false

	e.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)

	resp, err := e.app.Test(postJSON("/api/auth/login", fiber.Map{
		"username": "editor", "password": "correct-horse-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestLoginEndpoint_LockedWithRetryAfter(t *testing.T) {
	e := newEnv(t, 2)
	user := storedUser(t, "correct-horse-1")

	e.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil).Times(2)

	for i := 0; i < 2; i++ {
		resp, err := e.app.Test(postJSON("/api/auth/login", fiber.Map{
			"username": "editor", "password": "wrong",
		}))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	}

	resp, err := e.app.Test(postJSON("/api/auth/login", fiber.Map{
		"username": "editor", "password": "correct-horse-1",
	}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusLocked, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotNil(t, body["retryAfter"])
}

func TestRefreshEndpoint_InvalidToken(t *testing.T) {
	e := newEnv(t, 10)

	e.ledger.EXPECT().Redeem(gomock.Any(), "bogus").
		Return(nil, nil, apperrors.ErrInvalidToken)

	resp, err := e.app.Test(postJSON("/api/auth/refresh", fiber.Map{"refreshToken": "bogus"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRefreshEndpoint_StoreFailureIs500(t *testing.T) {
	e := newEnv(t, 10)

	e.ledger.EXPECT().Redeem(gomock.Any(), "some-token").
		Return(nil, nil, errors.New("connection reset"))

	resp, err := e.app.Test(postJSON("/api/auth/refresh", fiber.Map{"refreshToken": "some-token"}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "internal server error", body["error"])
}

func TestRefreshEndpoint_MissingToken(t *testing.T) {
	e := newEnv(t, 10)

	resp, err := e.app.Test(postJSON("/api/auth/refresh", fiber.Map{}))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogoutEndpoint_RequiresAuth(t *testing.T) {
	e := newEnv(t, 10)

	resp, err := e.app.Test(postJSON("/api/auth/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogoutEndpoint_Success(t *testing.T) {
	e := newEnv(t, 10)
	user := storedUser(t, "correct-horse-1")

	access, _, err := e.tokens.Issue(user)
	require.NoError(t, err)

	e.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)
	e.ledger.EXPECT().DeleteByUserID(gomock.Any(), user.ID).Return(nil)

	req := postJSON("/api/auth/logout", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+access)

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
