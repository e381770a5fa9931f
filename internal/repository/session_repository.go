package repository

import (
	"book_platform_backend/internal/util"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// SessionRepository maps opaque session tokens to user ids in redis.
// Expiry is enforced by the key TTL; logout deletes the key, which makes
// invalidation immediate.
type SessionRepository struct {
	Redis *redis.Client
}

func NewSessionRepository(rdb *redis.Client) *SessionRepository {
	return &SessionRepository{Redis: rdb}
}

// Create issues a fresh token bound to userID with the given lifetime.
func (r *SessionRepository) Create(ctx context.Context, userID uint, lifetime time.Duration) (string, error) {
	token := uuid.New().String()
	key := sessionKeyPrefix + token

	if err := r.Redis.Set(ctx, key, userID, lifetime).Err(); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return token, nil
}

// GetUserID resolves a token to the bound user id. A missing or expired
// token returns util.ErrSessionNotFound.
func (r *SessionRepository) GetUserID(ctx context.Context, token string) (uint, error) {
	val, err := r.Redis.Get(ctx, sessionKeyPrefix+token).Result()
	if err == redis.Nil {
		return 0, util.ErrSessionNotFound
	}
	if err != nil {
		return 0, err
	}

	userID, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, util.ErrSessionNotFound
	}
	return uint(userID), nil
}

// Delete invalidates a token. Deleting an unknown token is a no-op.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	return r.Redis.Del(ctx, sessionKeyPrefix+token).Err()
}
