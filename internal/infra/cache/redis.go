package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ListingCache backs the public listing read cache with redis. Every
// operation is best-effort: a missing or unreachable redis degrades to a
// cache miss, never to a failed request.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewListingCache(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &ListingCache{client: client, ttl: ttl}
}

func (c *ListingCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.DebugContext(ctx, "listing cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return raw, true
}

func (c *ListingCache) Set(ctx context.Context, key string, value []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.DebugContext(ctx, "listing cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func (c *ListingCache) Invalidate(ctx context.Context, key string) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		slog.DebugContext(ctx, "listing cache invalidation failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}
