package tokenstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "refresh:"

// RedisStore keeps jti records in the expiring key-value backend. The TTL
// equals the refresh-token validity window, so a store entry never
// outlives the token it belongs to.
type RedisStore struct {
	rdb      *redis.Client
	validity time.Duration
}

func NewRedisStore(rdb *redis.Client, validity time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, validity: validity}
}

func (s *RedisStore) Store(ctx context.Context, jti string, userID int64) error {
	key := keyPrefix + jti
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), s.validity).Err(); err != nil {
		return fmt.Errorf("error storing refresh token: %w", err)
	}
	return nil
}

func (s *RedisStore) IsActive(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("error checking refresh token: %w", err)
	}
	return n > 0, nil
}

func (s *RedisStore) Revoke(ctx context.Context, jti string) error {
	if err := s.rdb.Del(ctx, keyPrefix+jti).Err(); err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	return nil
}
