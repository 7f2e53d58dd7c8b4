package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polyscout/polyscout/internal/config"
	"github.com/polyscout/polyscout/internal/domain"
)

// Targeter is the directive-driven agent: it expands operator directives (or
// the builtin topic list) into concrete queries, resolves each to an event
// identifier through the resolver chain, fetches and normalizes the events,
// and writes a snapshot sorted by lifetime volume.
type Targeter struct {
	cfg        config.TargeterConfig
	resolver   domain.Resolver
	events     domain.EventSource
	directives domain.DirectiveSource
	snapshots  *SnapshotWriter
	siteHost   string
	logger     *slog.Logger
}

func NewTargeter(cfg config.TargeterConfig, resolver domain.Resolver, events domain.EventSource, directives domain.DirectiveSource, snapshots *SnapshotWriter, siteHost string, logger *slog.Logger) *Targeter {
	return &Targeter{
		cfg:        cfg,
		resolver:   resolver,
		events:     events,
		directives: directives,
		snapshots:  snapshots,
		siteHost:   siteHost,
		logger:     logger.With("component", "targeter"),
	}
}

// Run executes one targeting pass and returns the number of signals written.
// Resolution and fetch failures are per-query and noted in the run log; only
// a persistence failure aborts.
func (t *Targeter) Run(ctx context.Context, now time.Time) (int, error) {
	runID := uuid.NewString()
	runLog := &domain.RunLog{}
	log := t.logger.With("run_id", runID)

	queries := t.buildQueries(ctx, now, runLog, log)
	log.Info("targeting starting", "queries", len(queries))

	// Resolve every query, keeping one originating topic per event so the
	// snapshot can attribute contracts back to directives.
	resolved := make(map[string]string)
	var order []string
	for _, q := range queries {
		slug, err := t.resolver.Resolve(ctx, q.Text)
		if err != nil {
			if !errors.Is(err, domain.ErrNoMatch) {
				runLog.Addf("resolve %q failed: %v", q.Text, err)
			}
			continue
		}
		if _, dup := resolved[slug]; dup {
			continue
		}
		resolved[slug] = q.Topic
		order = append(order, slug)
	}
	log.Info("queries resolved", "unique_events", len(order))

	var signals []domain.Signal
	for _, slug := range order {
		ev, err := t.events.EventBySlug(ctx, slug)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				runLog.Addf("fetch event %s failed: %v", slug, err)
			}
			log.Debug("event fetch skipped", "slug", slug, "error", err)
			continue
		}
		topic := resolved[slug]
		category := CategoryForTopic(topic)
		for _, m := range ev.Markets {
			if m.Volume < t.cfg.MinVolume && m.Liquidity < t.cfg.MinLiquidity {
				continue
			}
			c, err := newSignal(ev, m, category)
			if err != nil {
				log.Debug("market skipped", "ticker", m.Ticker, "error", err)
				continue
			}
			c.Signal.Spread = FormatSpread(m.Spread)
			c.Signal.SortOrder = m.SortOrder
			c.Signal.Engine = "targeter"
			c.Signal.CoreTopic = topic
			c.Signal.URL = t.siteHost + "/event/" + ev.Slug
			signals = append(signals, c.Signal)
		}
	}
	ComposeTargeter(signals)

	if _, err := t.snapshots.Write(ctx, now, runID, signals, runLog); err != nil {
		return 0, err
	}
	return len(signals), nil
}

// buildQueries selects the query source. Directives are preferred; the
// builtin topic list serves when directives are disabled, unavailable, or
// empty.
func (t *Targeter) buildQueries(ctx context.Context, now time.Time, runLog *domain.RunLog, log *slog.Logger) []Query {
	if t.cfg.UseBuiltinTopics || t.directives == nil {
		return BuiltinQueries(now)
	}
	open, err := t.directives.Open(ctx)
	if err != nil {
		log.Warn("directive lookup failed, using builtin topics", "error", err)
		runLog.Addf("directive lookup failed: %v", err)
		return BuiltinQueries(now)
	}
	if len(open) == 0 {
		log.Info("no open directives, using builtin topics")
		return BuiltinQueries(now)
	}
	templates := make([]string, len(open))
	for i, d := range open {
		templates[i] = d.Title
	}
	return ExpandTemplates(templates, now)
}
