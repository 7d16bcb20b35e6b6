package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/auth/dto"
	"github.com/darkiku/RfsGov/internal/auth/service"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
	"github.com/darkiku/RfsGov/internal/mocks"
	"github.com/darkiku/RfsGov/internal/obs"
)

type fixture struct {
	users   *mocks.MockUserStore
	ledger  *mocks.MockTokenLedger
	tokens  *mocks.MockTokenGenerator
	audit   *mocks.MockAuditRecorder
	tracker *service.AttemptTracker
	svc     *service.AuthService
}

func newFixture(t *testing.T, maxAttempts int) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		users:   mocks.NewMockUserStore(ctrl),
		ledger:  mocks.NewMockTokenLedger(ctrl),
		tokens:  mocks.NewMockTokenGenerator(ctrl),
		audit:   mocks.NewMockAuditRecorder(ctrl),
		tracker: service.NewAttemptTracker(maxAttempts, 5*time.Minute),
	}
	f.svc = service.NewAuthService(
		f.users, f.ledger, f.tokens, f.tracker, f.audit, obs.NewLogger(), 168*time.Hour,
	)
	return f
}

func activeUser(t *testing.T, password string) *domain.User {
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

func TestLogin_Success(t *testing.T) {
	f := newFixture(t, 10)
	user := activeUser(t, "correct-horse-1")

	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)
	f.users.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	f.tokens.EXPECT().Issue(user).Return("signed.access.token", time.Now().Add(15*time.Minute), nil)
	f.ledger.EXPECT().ReplaceForUser(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).Return(nil)
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	resp, err := f.svc.Login(context.Background(), dto.LoginInput{
		Username: "editor", Password: "correct-horse-1", IPAddress: "10.0.0.1",
	})
	require.NoError(t, err)
	assert.Equal(t, "signed.access.token", resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.UserID)
	assert.Equal(t, domain.RoleNewsManager, resp.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t, 10)
	user := activeUser(t, "correct-horse-1")

	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)

	_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "wrong"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_UnknownUserSameError(t *testing.T) {
	f := newFixture(t, 10)

	f.users.EXPECT().FindByUsername(gomock.Any(), "ghost").Return(nil, nil)

	_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_DisabledAccount(t *testing.T) {
	f := newFixture(t, 10)
	user := activeUser(t, "correct-horse-1")
	user.IsActive = false

	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)

	_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "correct-horse-1"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestLogin_LocksAfterRepeatedFailures(t *testing.T) {
	f := newFixture(t, 3)
	user := activeUser(t, "correct-horse-1")

	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil).Times(3)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	// The fourth attempt never reaches the store.
	_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "correct-horse-1"})
	var locked *apperrors.AccountLockedError
	require.True(t, errors.As(err, &locked))
	assert.Greater(t, locked.RetryAfter, time.Duration(0))
}

func TestLogin_SuccessClearsFailures(t *testing.T) {
	f := newFixture(t, 3)
	user := activeUser(t, "correct-horse-1")

	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil).Times(3)
	f.users.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	f.tokens.EXPECT().Issue(user).Return("access", time.Now().Add(15*time.Minute), nil)
	f.ledger.EXPECT().ReplaceForUser(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).Return(nil)
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}

	_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "correct-horse-1"})
	require.NoError(t, err)

	// Counter restarted: two more failures still do not lock.
	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil).Times(2)
	for i := 0; i < 2; i++ {
		_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "wrong"})
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	}
}

func TestLogin_AuditFailureDoesNotFailLogin(t *testing.T) {
	f := newFixture(t, 10)
	user := activeUser(t, "correct-horse-1")

	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)
	f.users.EXPECT().UpdateLastLogin(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	f.tokens.EXPECT().Issue(user).Return("access", time.Now().Add(15*time.Minute), nil)
	f.ledger.EXPECT().ReplaceForUser(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).Return(nil)
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("audit store down"))

	_, err := f.svc.Login(context.Background(), dto.LoginInput{Username: "editor", Password: "correct-horse-1"})
	assert.NoError(t, err)
}

func TestRefresh_RotatesToken(t *testing.T) {
	f := newFixture(t, 10)
	user := activeUser(t, "correct-horse-1")
	rec := &domain.RefreshToken{ID: "tok-id", UserID: user.ID, Token: "old-token"}

	f.ledger.EXPECT().Redeem(gomock.Any(), "old-token").Return(rec, user, nil)
	f.tokens.EXPECT().Issue(user).Return("new.access", time.Now().Add(15*time.Minute), nil)

	var rotated string
	f.ledger.EXPECT().
		ReplaceForUser(gomock.Any(), user.ID, gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, token string, _ time.Time) error {
			rotated = token
			return nil
		})

	resp, err := f.svc.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "old-token"})
	require.NoError(t, err)
	assert.Equal(t, "new.access", resp.AccessToken)
	assert.Equal(t, rotated, resp.RefreshToken)
	assert.NotEqual(t, "old-token", resp.RefreshToken)
}

func TestRefresh_PropagatesRedeemErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"invalid", apperrors.ErrInvalidToken},
		{"expired", apperrors.ErrTokenExpired},
		{"disabled owner", apperrors.ErrAccountDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 10)
			f.ledger.EXPECT().Redeem(gomock.Any(), "some-token").Return(nil, nil, tt.err)

			_, err := f.svc.Refresh(context.Background(), dto.RefreshInput{RefreshToken: "some-token"})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestLogout_DeletesTokenAndClearsTracker(t *testing.T) {
	f := newFixture(t, 1)
	user := activeUser(t, "correct-horse-1")

	f.tracker.RecordFailure("editor")

	f.users.EXPECT().FindByUsername(gomock.Any(), "editor").Return(user, nil)
	f.ledger.EXPECT().DeleteByUserID(gomock.Any(), user.ID).Return(nil)
	f.audit.EXPECT().Record(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.svc.Logout(context.Background(), "editor", "10.0.0.1"))
	assert.NoError(t, f.tracker.Check("editor"))
}

func TestLogout_UnknownUserIsNoop(t *testing.T) {
	f := newFixture(t, 10)

	f.users.EXPECT().FindByUsername(gomock.Any(), "ghost").Return(nil, nil)

	assert.NoError(t, f.svc.Logout(context.Background(), "ghost", "10.0.0.1"))
}

func TestUnlock_ClearsLockout(t *testing.T) {
	f := newFixture(t, 1)

	f.tracker.RecordFailure("editor")
	require.Error(t, f.tracker.Check("editor"))

	f.svc.Unlock("editor")
	assert.NoError(t, f.tracker.Check("editor"))
}
