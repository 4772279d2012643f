package utils

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisTest(t *testing.T) func() {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))

	return func() {
		SetRedisClient(nil)
		mr.Close()
	}
}

func TestTokenSession_Lifecycle(t *testing.T) {
	cleanup := setupRedisTest(t)
	defer cleanup()

	userID := uuid.New()
	teamID := uuid.New()
	token := "opaque-access-token"

	created, err := CreateTokenSession(token, userID, teamID, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, userID, created.UserID)
	assert.Equal(t, teamID, created.TeamID)
	assert.NotEmpty(t, created.SessionID)

	got, err := GetTokenSession(token)
	require.NoError(t, err)
	assert.Equal(t, created.SessionID, got.SessionID)

	require.NoError(t, RevokeTokenSession(token))

	_, err = GetTokenSession(token)
	assert.Error(t, err)
}

func TestGetTokenSession_UnknownToken(t *testing.T) {
	cleanup := setupRedisTest(t)
	defer cleanup()

	_, err := GetTokenSession("never-issued")
	assert.Error(t, err)
}

func TestTokenSession_RawTokenNotStored(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	SetRedisClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer SetRedisClient(nil)

	token := "secret-token-value"
	_, err = CreateTokenSession(token, uuid.New(), uuid.New(), time.Hour)
	require.NoError(t, err)

	for _, key := range mr.Keys() {
		assert.NotContains(t, key, token)
	}
}

func TestTokenSession_WithoutClient(t *testing.T) {
	SetRedisClient(nil)

	_, err := CreateTokenSession("token", uuid.New(), uuid.New(), time.Hour)
	assert.Error(t, err)
	_, err = GetTokenSession("token")
	assert.Error(t, err)
	assert.Error(t, RevokeTokenSession("token"))
}
