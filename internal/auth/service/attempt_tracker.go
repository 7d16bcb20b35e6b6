package service

import (
	"sync"
	"time"

	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

// AttemptTracker counts failed logins per username and locks the account
// after too many in a row. State is process-local: with several instances
// each node tracks its own counts. It guards against credential stuffing
// on a single account and is independent of the per-IP rate limiter.
type AttemptTracker struct {
	mu          sync.Mutex
	maxAttempts int
	lockout     time.Duration
	failures    map[string]int
	lockedUntil map[string]time.Time

	now func() time.Time
}

func NewAttemptTracker(maxAttempts int, lockout time.Duration) *AttemptTracker {
	return &AttemptTracker{
		maxAttempts: maxAttempts,
		lockout:     lockout,
		failures:    make(map[string]int),
		lockedUntil: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Check fails with AccountLockedError while a lockout is active. An expired
// lockout is cleared lazily here; no background sweep is needed.
func (t *AttemptTracker) Check(username string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	until, ok := t.lockedUntil[username]
	if !ok {
		return nil
	}

	now := t.now()
	if now.Before(until) {
		return &apperrors.AccountLockedError{RetryAfter: until.Sub(now)}
	}

	delete(t.lockedUntil, username)
	delete(t.failures, username)
	return nil
}

// RecordFailure increments the counter; hitting the threshold starts a
// lockout and resets the counter so the next post-lockout failure starts a
// fresh count.
func (t *AttemptTracker) RecordFailure(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.failures[username]++
	if t.failures[username] >= t.maxAttempts {
		t.lockedUntil[username] = t.now().Add(t.lockout)
		delete(t.failures, username)
	}
}

// Clear drops all state for the username. Called after a successful login
// and by the administrative unlock operation.
func (t *AttemptTracker) Clear(username string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.failures, username)
	delete(t.lockedUntil, username)
}
