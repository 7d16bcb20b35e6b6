package service

//go:generate mockgen -destination=../../mocks/mock_token_generator.go -package=mocks github.com/darkiku/RfsGov/internal/auth/service TokenGenerator

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/darkiku/RfsGov/internal/auth/domain"
	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

// TokenGenerator issues and verifies signed access tokens. Refresh tokens
// are opaque strings owned by the token ledger, never JWTs.
type TokenGenerator interface {
	Issue(user *domain.User) (string, time.Time, error)
	Verify(tokenString string) (*AccessClaims, error)
	AccessTokenTTL() time.Duration
}

type TokenService struct {
	secret    []byte
	accessTTL time.Duration
}

type AccessClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func NewTokenService(secret string, accessMinutes int) *TokenService {
	return &TokenService{
		secret:    []byte(secret),
		accessTTL: time.Duration(accessMinutes) * time.Minute,
	}
}

// Issue signs a short-lived HS256 token carrying the username as subject
// plus the user's id and role.
func (ts *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ts.accessTTL)

	claims := AccessClaims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

// Verify parses and validates an access token. Expiry is checked on every
// call; there is no revocation list.
func (ts *TokenService) Verify(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return ts.secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if !token.Valid {
		return nil, apperrors.ErrInvalidToken
	}

	return claims, nil
}

func (ts *TokenService) AccessTokenTTL() time.Duration {
	return ts.accessTTL
}
