package cache

import (
	"context"
	"encoding/json"
	"time"
)

// GetJSON reads a typed payload from the cache. A payload that fails to
// unmarshal is treated as a miss, same as a backend failure: the caller
// falls through to storage and overwrites the bad entry.
func GetJSON[T any](ctx context.Context, c *Client, key string) (T, bool) {
	var value T

	raw, ok := c.Get(ctx, key)
	if !ok {
		return value, false
	}

	if err := json.Unmarshal(raw, &value); err != nil {
		c.logger.Warn(ctx, "cache payload corrupt, treating as miss", "key", key, "error", err)
		return value, false
	}

	return value, true
}

// SetJSON stores a typed payload in the cache.
func SetJSON[T any](ctx context.Context, c *Client, key string, value T, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, raw, ttl)
}
