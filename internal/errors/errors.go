package errors

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountDisabled    = errors.New("account is disabled")
	ErrInvalidToken       = errors.New("invalid refresh token")
	ErrTokenExpired       = errors.New("refresh token expired")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrEmailTaken         = errors.New("email already exists")
	ErrWeakPassword       = errors.New("password must be at least 8 characters and contain letters and digits")
	ErrNotFound           = errors.New("not found")
)

// AccountLockedError reports a temporary login lockout for a username.
type AccountLockedError struct {
	RetryAfter time.Duration
}

func (e *AccountLockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %d seconds", int(e.RetryAfter.Seconds()))
}
