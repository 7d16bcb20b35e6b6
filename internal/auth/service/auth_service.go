package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	"github.com/darkiku/RfsGov/internal/auth/dto"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
	"github.com/darkiku/RfsGov/internal/obs"
)

// AuthService orchestrates login, token refresh and logout.
type AuthService struct {
	users   domain.UserStore
	ledger  domain.TokenLedger
	tokens  TokenGenerator
	tracker *AttemptTracker
	audit   domain.AuditRecorder
	log     *obs.Logger

	refreshTTL time.Duration
}

func NewAuthService(
	users domain.UserStore,
	ledger domain.TokenLedger,
	tokens TokenGenerator,
	tracker *AttemptTracker,
	audit domain.AuditRecorder,
	log *obs.Logger,
	refreshTTL time.Duration,
) *AuthService {
	return &AuthService{
		users:      users,
		ledger:     ledger,
		tokens:     tokens,
		tracker:    tracker,
		audit:      audit,
		log:        log,
		refreshTTL: refreshTTL,
	}
}

func (s *AuthService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	if err := s.tracker.Check(input.Username); err != nil {
		obs.CountLogin("locked")
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, input.Username)
	if err != nil {
		return nil, err
	}

	// Unknown user and wrong password are indistinguishable to the caller.
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)) != nil {
		s.tracker.RecordFailure(input.Username)
		obs.CountLogin("invalid_credentials")
		s.log.Warn("login failed", map[string]any{"username": input.Username, "ip": input.IPAddress})
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		obs.CountLogin("disabled")
		s.log.Warn("login rejected for disabled account", map[string]any{"username": user.Username})
		return nil, apperrors.ErrAccountDisabled
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		return nil, err
	}

	accessToken, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.tracker.Clear(user.Username)
	s.recordAudit(ctx, user.ID, "LOGIN", "User", user.ID, "User logged in successfully", input.IPAddress)
	obs.CountLogin("success")
	s.log.Info("login succeeded", map[string]any{"username": user.Username})

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
	}, nil
}

func (s *AuthService) Refresh(ctx context.Context, input dto.RefreshInput) (*dto.AuthResponse, error) {
	// Redeem locks the row, checks expiry and the owner's active flag, and
	// consumes the token, all inside one transaction.
	_, user, err := s.ledger.Redeem(ctx, input.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTokenExpired):
			obs.CountRefresh("expired")
		case errors.Is(err, apperrors.ErrInvalidToken):
			obs.CountRefresh("invalid")
		case errors.Is(err, apperrors.ErrAccountDisabled):
			obs.CountRefresh("disabled")
		}
		return nil, err
	}

	accessToken, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.issueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	obs.CountRefresh("success")
	s.log.Info("token refreshed", map[string]any{"username": user.Username})

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		UserID:       user.ID,
		Username:     user.Username,
		Email:        user.Email,
		Role:         user.Role,
	}, nil
}

// Logout drops the user's refresh token and tracker state. Idempotent:
// logging out with no outstanding token is not an error.
func (s *AuthService) Logout(ctx context.Context, username, ip string) error {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	if err := s.ledger.DeleteByUserID(ctx, user.ID); err != nil {
		return err
	}

	s.tracker.Clear(username)
	s.recordAudit(ctx, user.ID, "LOGOUT", "User", user.ID, "User logged out", ip)
	s.log.Info("logout", map[string]any{"username": username})

	return nil
}

// Unlock is the administrative escape hatch for a locked account.
func (s *AuthService) Unlock(username string) {
	s.tracker.Clear(username)
	s.log.Info("lockout cleared", map[string]any{"username": username})
}

// issueRefreshToken replaces any existing token for the user in a separate
// unit of work, so issuance survives failures elsewhere in the request.
func (s *AuthService) issueRefreshToken(ctx context.Context, userID string) (string, error) {
	token := uuid.NewString()
	if err := s.ledger.ReplaceForUser(ctx, userID, token, time.Now().Add(s.refreshTTL)); err != nil {
		return "", err
	}
	return token, nil
}

// StartSweeper deletes expired refresh tokens on a fixed interval until ctx
// is cancelled. Best-effort housekeeping: failures are logged and swallowed,
// expired tokens are rejected at refresh time regardless.
func (s *AuthService) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				deleted, err := s.ledger.DeleteExpired(ctx, time.Now())
				if err != nil {
					s.log.Error("token sweep failed", map[string]any{"error": err.Error()})
					continue
				}
				if deleted > 0 {
					s.log.Info("token sweep", map[string]any{"deleted": deleted})
				}
			}
		}
	}()
}

func (s *AuthService) recordAudit(ctx context.Context, userID, action, entityType, entityID, details, ip string) {
	if s.audit == nil {
		return
	}
	event := domain.AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
		IPAddress:  ip,
	}
	if err := s.audit.Record(ctx, event); err != nil {
		s.log.Warn("audit record failed", map[string]any{"action": action, "error": err.Error()})
	}
}
