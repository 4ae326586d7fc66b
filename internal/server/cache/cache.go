// Package cache wraps the external key-value backend used for listing
// payloads. The client is an injected capability with an explicit
// lifecycle, not a process global; values are opaque JSON blobs.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/onomatheater/blog-api/internal/logging"
)

// Client is a thin wrapper over the redis client. Reads are best-effort:
// any backend failure degrades to a cache miss so the read path never
// depends on cache availability.
type Client struct {
	rdb    *redis.Client
	logger logging.Logger
}

func New(rdb *redis.Client, logger logging.Logger) *Client {
	return &Client{rdb: rdb, logger: logger.With("module", "cache")}
}

// Get returns the raw payload for key, or ok=false on a miss. Backend
// errors are logged and reported as a miss.
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "cache read failed, treating as miss", "key", key, "error", err)
		}
		return nil, false
	}
	return raw, true
}

// Set stores payload under key with the given TTL.
func (c *Client) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Deleting absent keys is a no-op success.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// Ping checks backend availability for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
