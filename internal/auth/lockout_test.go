// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Postline Contributors

package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckFailures_ProgressiveDelay(t *testing.T) {
	tests := []struct {
		failures int
		want     time.Duration
	}{
		{0, 0},
		{1, 1 * time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{6, 32 * time.Second},
	}
	for _, tt := range tests {
		result := CheckFailures(tt.failures, nil)
		assert.Equal(t, tt.want, result.Delay, "failures=%d", tt.failures)
		assert.False(t, result.IsLockedOut)
	}
}

func TestCheckFailures_ActiveLockout(t *testing.T) {
	until := time.Now().Add(5 * time.Minute)

	result := CheckFailures(LockoutThreshold, &until)
	assert.True(t, result.IsLockedOut)
	assert.Greater(t, result.LockoutRemaining, 4*time.Minute)
}

func TestCheckFailures_ExpiredLockout(t *testing.T) {
	until := time.Now().Add(-time.Minute)

	result := CheckFailures(2, &until)
	assert.False(t, result.IsLockedOut)
	assert.Equal(t, 2*time.Second, result.Delay)
}

func TestComputeLockoutTime(t *testing.T) {
	assert.Nil(t, ComputeLockoutTime(LockoutThreshold-1))

	lockout := ComputeLockoutTime(LockoutThreshold)
	require.NotNil(t, lockout)
	assert.WithinDuration(t, time.Now().Add(LockoutDuration), *lockout, time.Second)
}

func TestUser_FailureTracking(t *testing.T) {
	user, err := NewUser(Profile{}, "ada@example.com", "hash")
	require.NoError(t, err)

	for range LockoutThreshold {
		user.RecordFailure()
	}
	assert.Equal(t, LockoutThreshold, user.FailedAttempts)
	assert.True(t, user.IsLocked())

	user.RecordSuccess()
	assert.Zero(t, user.FailedAttempts)
	assert.False(t, user.IsLocked())
	assert.Nil(t, user.LockedUntil)
}
