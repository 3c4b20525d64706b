package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasPendingReset(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	code := "AB12CD"

	var u User
	assert.False(t, u.HasPendingReset(now), "no token at all")

	expires := now.Add(15 * time.Minute)
	u.ResetCode = &code
	u.ResetExpires = &expires
	assert.True(t, u.HasPendingReset(now))
	assert.False(t, u.HasPendingReset(now.Add(16*time.Minute)), "past expiry")
	assert.False(t, u.HasPendingReset(expires), "boundary instant counts as expired")
}

func TestUserJSONHidesCredentials(t *testing.T) {
	code := "AB12CD"
	expires := time.Now()
	u := User{
		ID:           "u-1",
		Email:        "alice@example.com",
		PasswordHash: "$2a$10$hash",
		ResetCode:    &code,
		ResetExpires: &expires,
		IsDeleted:    true,
	}

	data, err := json.Marshal(u)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "hash")
	assert.NotContains(t, string(data), "AB12CD")
	assert.Contains(t, string(data), "alice@example.com")
}
