package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/polyscout/polyscout/internal/domain"
	"github.com/polyscout/polyscout/internal/platform/algolia"
	"github.com/polyscout/polyscout/internal/platform/polymarket"
)

// newBreaker builds the circuit breaker guarding one backend host. Three
// consecutive failures open the circuit for 30 seconds, so a dead mirror is
// skipped quickly for the remaining queries of a run.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
}

// AlgoliaBackend resolves queries against one Algolia mirror host, guarded
// by a circuit breaker. A clean no-hit answer does not count as a failure.
type AlgoliaBackend struct {
	client  *algolia.Client
	breaker *gobreaker.CircuitBreaker
	timeout time.Duration
}

// NewAlgoliaBackend wraps one mirror client.
func NewAlgoliaBackend(client *algolia.Client, timeout time.Duration) *AlgoliaBackend {
	return &AlgoliaBackend{
		client:  client,
		breaker: newBreaker("algolia:" + client.Host()),
		timeout: timeout,
	}
}

// Name implements domain.Resolver.
func (b *AlgoliaBackend) Name() string {
	return "algolia:" + b.client.Host()
}

// Resolve implements domain.Resolver.
func (b *AlgoliaBackend) Resolve(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	out, err := b.breaker.Execute(func() (any, error) {
		slug, err := b.client.SearchTop(ctx, query)
		if errors.Is(err, domain.ErrNoMatch) {
			// The index answered; an empty result must not trip the breaker.
			return "", nil
		}
		return slug, err
	})
	if err != nil {
		return "", err
	}

	slug := out.(string)
	if slug == "" {
		return "", domain.ErrNoMatch
	}
	return slug, nil
}

// GammaSearchBackend is the public keyword-search fallback, tried after the
// Algolia mirrors. It runs with a slightly longer timeout and takes the
// first-ranked result.
type GammaSearchBackend struct {
	client  *polymarket.GammaClient
	timeout time.Duration
}

// NewGammaSearchBackend wraps the Gamma client's public-search endpoint.
func NewGammaSearchBackend(client *polymarket.GammaClient, timeout time.Duration) *GammaSearchBackend {
	return &GammaSearchBackend{client: client, timeout: timeout}
}

// Name implements domain.Resolver.
func (b *GammaSearchBackend) Name() string {
	return "gamma-public-search"
}

// Resolve implements domain.Resolver.
func (b *GammaSearchBackend) Resolve(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	return b.client.PublicSearch(ctx, query)
}
