package resolver

import (
	"context"
	"log/slog"

	"github.com/polyscout/polyscout/internal/domain"
)

// Cache is the lookup table consulted before the backend chain. Implemented
// by the Redis resolver cache; any error is treated as a miss.
type Cache interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Set(ctx context.Context, query, slug string) error
}

// Cached wraps a resolver with a read-through cache. Only successful
// resolutions are cached; misses are re-tried on the next run so newly
// listed events are not masked.
type Cached struct {
	inner  domain.Resolver
	cache  Cache
	logger *slog.Logger
}

// NewCached wraps inner with the given cache.
func NewCached(inner domain.Resolver, cache Cache, logger *slog.Logger) *Cached {
	return &Cached{
		inner:  inner,
		cache:  cache,
		logger: logger.With(slog.String("component", "resolver_cache")),
	}
}

// Name implements domain.Resolver.
func (c *Cached) Name() string {
	return "cached(" + c.inner.Name() + ")"
}

// Resolve implements domain.Resolver.
func (c *Cached) Resolve(ctx context.Context, query string) (string, error) {
	slug, ok, err := c.cache.Get(ctx, query)
	if err != nil {
		c.logger.Warn("cache lookup failed, treating as miss",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
	} else if ok {
		return slug, nil
	}

	slug, err = c.inner.Resolve(ctx, query)
	if err != nil {
		return "", err
	}

	if err := c.cache.Set(ctx, query, slug); err != nil {
		c.logger.Warn("cache store failed",
			slog.String("query", query),
			slog.String("error", err.Error()),
		)
	}
	return slug, nil
}
