// Package resolver maps natural-language queries to canonical event
// identifiers by trying a rank-ordered chain of interchangeable search
// backends. Chain failure means "no identifier for this query", never a
// fatal error; new backends are added by appending to the list.
package resolver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/polyscout/polyscout/internal/domain"
)

// Chain tries each backend in order until one returns a hit. It implements
// domain.Resolver itself, so chains can nest behind a cache wrapper.
type Chain struct {
	backends []domain.Resolver
	logger   *slog.Logger
}

// NewChain creates a Chain over the given backends. Order is priority order.
func NewChain(logger *slog.Logger, backends ...domain.Resolver) *Chain {
	return &Chain{
		backends: backends,
		logger:   logger.With(slog.String("component", "resolver")),
	}
}

// Name implements domain.Resolver.
func (c *Chain) Name() string {
	return "chain"
}

// Resolve tries each backend in order. A backend error or empty result
// moves on to the next backend; it is logged at debug level only, since
// mirror failures are routine. When every backend has been exhausted,
// domain.ErrNoMatch is returned.
func (c *Chain) Resolve(ctx context.Context, query string) (string, error) {
	for _, backend := range c.backends {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		slug, err := backend.Resolve(ctx, query)
		if err != nil {
			if !errors.Is(err, domain.ErrNoMatch) && !errors.Is(err, domain.ErrNotFound) {
				c.logger.Debug("backend failed, falling through",
					slog.String("backend", backend.Name()),
					slog.String("query", query),
					slog.String("error", err.Error()),
				)
			}
			continue
		}
		if slug == "" {
			continue
		}

		c.logger.Info("query resolved",
			slog.String("backend", backend.Name()),
			slog.String("query", query),
			slog.String("slug", slug),
		)
		return slug, nil
	}

	return "", domain.ErrNoMatch
}
