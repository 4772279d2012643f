package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"github.com/dugouthq/dugout/shared/models"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

const permissionCacheTTL = 5 * time.Minute

// InitRedis initializes the Redis client from REDIS_HOST / REDIS_PORT.
func InitRedis() error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return nil
}

// SetRedisClient swaps the client, used by tests running against miniredis.
func SetRedisClient(client *redis.Client) {
	RedisClient = client
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// tokenHash hashes the access token so the raw token is never stored.
func tokenHash(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

func sessionKey(token string) string {
	return "token:session:" + tokenHash(token)
}

// CreateTokenSession stores a new session keyed by the token hash. Revoking
// the session invalidates the token ahead of its JWT expiry.
func CreateTokenSession(accessToken string, userID, teamID uuid.UUID, ttl time.Duration) (*models.TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	now := time.Now()
	session := &models.TokenSession{
		UserID:     userID,
		TeamID:     teamID,
		SessionID:  uuid.New().String(),
		CreatedAt:  now,
		LastUsedAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	data, err := json.Marshal(session)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := RedisClient.Set(ctx, sessionKey(accessToken), data, ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to store session in Redis: %w", err)
	}

	return session, nil
}

// GetTokenSession looks up the live session for a token. A missing or expired
// session means the token has been revoked or aged out.
func GetTokenSession(accessToken string) (*models.TokenSession, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}

	key := sessionKey(accessToken)
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("session not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from Redis: %w", err)
	}

	var session models.TokenSession
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.IsExpired() {
		RedisClient.Del(ctx, key)
		return nil, fmt.Errorf("session expired")
	}

	return &session, nil
}

// RevokeTokenSession deletes the session for a token.
func RevokeTokenSession(accessToken string) error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return RedisClient.Del(ctx, sessionKey(accessToken)).Err()
}

func permissionKey(teamID, userID uuid.UUID) string {
	return fmt.Sprintf("perms:%s:%s", teamID, userID)
}

// CachePermissionSet stores the resolved permission set for a user.
func CachePermissionSet(teamID, userID uuid.UUID, perms []models.Permission) error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	data, err := json.Marshal(perms)
	if err != nil {
		return fmt.Errorf("failed to marshal permissions: %w", err)
	}
	return RedisClient.Set(ctx, permissionKey(teamID, userID), data, permissionCacheTTL).Err()
}

// GetCachedPermissionSet returns the cached permission set, or an error on a
// cache miss so the caller falls through to the database.
func GetCachedPermissionSet(teamID, userID uuid.UUID) (models.PermissionSet, error) {
	if RedisClient == nil {
		return nil, fmt.Errorf("redis client not initialized")
	}
	data, err := RedisClient.Get(ctx, permissionKey(teamID, userID)).Result()
	if err == redis.Nil {
		return nil, fmt.Errorf("permission set not cached")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions from Redis: %w", err)
	}

	var perms []models.Permission
	if err := json.Unmarshal([]byte(data), &perms); err != nil {
		return nil, fmt.Errorf("failed to unmarshal permissions: %w", err)
	}
	return models.NewPermissionSet(perms), nil
}

// InvalidatePermissionSet drops the cached set after a grant changes, so the
// next check reads the new grants from the database.
func InvalidatePermissionSet(teamID, userID uuid.UUID) error {
	if RedisClient == nil {
		return fmt.Errorf("redis client not initialized")
	}
	return RedisClient.Del(ctx, permissionKey(teamID, userID)).Err()
}
