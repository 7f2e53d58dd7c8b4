package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/polyscout/polyscout/internal/cache/redis"
	"github.com/polyscout/polyscout/internal/config"
	"github.com/polyscout/polyscout/internal/domain"
	"github.com/polyscout/polyscout/internal/notify"
	"github.com/polyscout/polyscout/internal/platform/algolia"
	"github.com/polyscout/polyscout/internal/platform/github"
	"github.com/polyscout/polyscout/internal/platform/polymarket"
	"github.com/polyscout/polyscout/internal/resolver"
	s3store "github.com/polyscout/polyscout/internal/store/s3"
)

// Dependencies bundles every domain-level dependency the application modes
// need. It is constructed by Wire and torn down by the returned cleanup
// function.
type Dependencies struct {
	Store      domain.SnapshotStore
	Events     domain.EventSource
	Resolver   domain.Resolver
	Directives domain.DirectiveSource // nil when no directive repo is configured
	Notifier   *notify.Notifier
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that should
// be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Exchange client ---
	gamma := polymarket.NewGammaClient(polymarket.GammaConfig{
		BaseURL:      cfg.Polymarket.GammaHost,
		UserAgent:    cfg.Polymarket.UserAgent,
		RateLimitRPS: cfg.Polymarket.RateLimitRPS,
		Timeout:      cfg.Polymarket.FetchTimeout.Duration,
	})
	deps.Events = gamma

	// --- Document store ---
	switch strings.ToLower(cfg.Store.Backend) {
	case "github":
		gh := github.NewClient(github.ClientConfig{
			APIHost: cfg.Store.GitHub.APIHost,
			Token:   cfg.Store.GitHub.Token,
		})
		deps.Store = github.NewContentsStore(gh, cfg.Store.GitHub.Owner, cfg.Store.GitHub.Repo)
	case "s3":
		s3Client, err := s3store.New(ctx, s3store.ClientConfig{
			Endpoint:       cfg.Store.S3.Endpoint,
			Region:         cfg.Store.S3.Region,
			Bucket:         cfg.Store.S3.Bucket,
			AccessKey:      cfg.Store.S3.AccessKey,
			SecretKey:      cfg.Store.S3.SecretKey,
			UseSSL:         cfg.Store.S3.UseSSL,
			ForcePathStyle: cfg.Store.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		closers = append(closers, func() { _ = s3Client.Close() })
		// Persistence failures later in the run are fatal, so verify bucket
		// access up front rather than after a full sweep.
		if err := s3Client.Health(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Store = s3store.NewStore(s3Client)
	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unknown store backend %q", cfg.Store.Backend)
	}

	// --- Directive source (optional) ---
	if cfg.Directives.Owner != "" && cfg.Directives.Repo != "" {
		gh := github.NewClient(github.ClientConfig{
			APIHost: cfg.Directives.APIHost,
			Token:   cfg.Directives.Token,
		})
		deps.Directives = github.NewIssueSource(gh, cfg.Directives.Owner, cfg.Directives.Repo, cfg.Directives.Tag)
	}

	// --- Resolver chain: Algolia mirrors first, public search last ---
	var backends []domain.Resolver
	if cfg.Search.AlgoliaAppID != "" && cfg.Search.AlgoliaAPIKey != "" {
		for _, host := range cfg.Search.AlgoliaHostList() {
			client := algolia.New(algolia.Config{
				Host:    host,
				AppID:   cfg.Search.AlgoliaAppID,
				APIKey:  cfg.Search.AlgoliaAPIKey,
				Index:   cfg.Search.AlgoliaIndex,
				Timeout: cfg.Search.SearchTimeout.Duration,
			})
			backends = append(backends, resolver.NewAlgoliaBackend(client, cfg.Search.SearchTimeout.Duration))
		}
	}
	backends = append(backends, resolver.NewGammaSearchBackend(gamma, cfg.Search.FallbackTimeout.Duration))
	deps.Resolver = resolver.NewChain(logger, backends...)

	// --- Resolver cache (optional) ---
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		cache := redis.NewResolverCache(redisClient, cfg.Redis.ResolveTTL.Duration)
		deps.Resolver = resolver.NewCached(deps.Resolver, cache, logger)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	return deps, cleanup, nil
}
