package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/darkiku/RfsGov/internal/errors"
)

func TestAttemptTracker_LocksAfterThreshold(t *testing.T) {
	tracker := NewAttemptTracker(3, 5*time.Minute)

	assert.NoError(t, tracker.Check("alice"))
	tracker.RecordFailure("alice")
	tracker.RecordFailure("alice")
	assert.NoError(t, tracker.Check("alice"))

	tracker.RecordFailure("alice")

	err := tracker.Check("alice")
	var locked *apperrors.AccountLockedError
	require.True(t, errors.As(err, &locked))
	assert.Greater(t, locked.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, locked.RetryAfter, 5*time.Minute)
}

func TestAttemptTracker_LockExpires(t *testing.T) {
	tracker := NewAttemptTracker(1, 5*time.Minute)

	current := time.Now()
	tracker.now = func() time.Time { return current }

	tracker.RecordFailure("bob")
	assert.Error(t, tracker.Check("bob"))

	current = current.Add(5*time.Minute + time.Second)
	assert.NoError(t, tracker.Check("bob"))

	// The expired lockout also reset the failure count.
	tracker.RecordFailure("bob")
	assert.Error(t, tracker.Check("bob"))
}

func TestAttemptTracker_ClearResets(t *testing.T) {
	tracker := NewAttemptTracker(2, time.Minute)

	tracker.RecordFailure("carol")
	tracker.RecordFailure("carol")
	assert.Error(t, tracker.Check("carol"))

	tracker.Clear("carol")
	assert.NoError(t, tracker.Check("carol"))

	// One failure after a clear must not lock again.
	tracker.RecordFailure("carol")
	assert.NoError(t, tracker.Check("carol"))
}

func TestAttemptTracker_UsernamesIndependent(t *testing.T) {
	tracker := NewAttemptTracker(1, time.Minute)

	tracker.RecordFailure("dave")
	assert.Error(t, tracker.Check("dave"))
	assert.NoError(t, tracker.Check("erin"))
}
