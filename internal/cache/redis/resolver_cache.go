package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResolverCache stores query -> event-slug resolutions with a TTL.
//
// Key schema:
//
//	resolve:{normalized query} - string value of the event slug
type ResolverCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewResolverCache creates a ResolverCache backed by the given Client.
func NewResolverCache(c *Client, ttl time.Duration) *ResolverCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResolverCache{rdb: c.Underlying(), ttl: ttl}
}

// resolveKey lowercases and collapses whitespace so trivially different
// spellings of the same query share one entry.
func resolveKey(query string) string {
	return "resolve:" + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

// Get returns the cached slug for the query, or ("", false) on a miss.
// Cache errors are returned so the caller can log them, but a caller should
// treat any error as a miss.
func (rc *ResolverCache) Get(ctx context.Context, query string) (string, bool, error) {
	slug, err := rc.rdb.Get(ctx, resolveKey(query)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis: get resolution: %w", err)
	}
	return slug, slug != "", nil
}

// Set stores a resolution with the configured TTL.
func (rc *ResolverCache) Set(ctx context.Context, query, slug string) error {
	if err := rc.rdb.Set(ctx, resolveKey(query), slug, rc.ttl).Err(); err != nil {
		return fmt.Errorf("redis: set resolution: %w", err)
	}
	return nil
}
