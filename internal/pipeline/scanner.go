package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/polyscout/polyscout/internal/config"
	"github.com/polyscout/polyscout/internal/domain"
)

// Scanner is the broad-sweep agent: it pulls the top events by 24h volume,
// classifies them against the sector table, filters out everything the
// Targeter already covers, and writes a bounded ranked snapshot.
type Scanner struct {
	cfg         config.ScannerConfig
	events      domain.EventSource
	coordinator *Coordinator
	snapshots   *SnapshotWriter
	sectors     *SectorTable
	logger      *slog.Logger
}

func NewScanner(cfg config.ScannerConfig, events domain.EventSource, coordinator *Coordinator, snapshots *SnapshotWriter, logger *slog.Logger) *Scanner {
	return &Scanner{
		cfg:         cfg,
		events:      events,
		coordinator: coordinator,
		snapshots:   snapshots,
		sectors:     NewSectorTable(cfg.Sectors),
		logger:      logger.With("component", "scanner"),
	}
}

// Run executes one sweep and returns the number of signals written. A failed
// sweep still produces a diagnostic snapshot; only a persistence failure is
// returned as an error.
func (s *Scanner) Run(ctx context.Context, now time.Time) (int, error) {
	runID := uuid.NewString()
	runLog := &domain.RunLog{}
	log := s.logger.With("run_id", runID)
	log.Info("sweep starting", "limit", s.cfg.SweepLimit)

	excl := s.coordinator.BuildExclusions(ctx, now, runLog)

	events, err := s.events.TopEvents(ctx, s.cfg.SweepLimit)
	if err != nil {
		log.Error("event sweep failed", "error", err)
		runLog.Addf("event sweep failed: %v", err)
	}

	var candidates []Candidate
	dropped := map[string]int{}
	for _, ev := range events {
		rule, category, ok := s.sectors.Classify(ev.Tags)
		if !ok {
			dropped["no_sector"]++
			continue
		}
		title := NormalizeText(ev.Title)
		if excl.Excluded(ev.Slug, title) {
			dropped["excluded"]++
			continue
		}
		if !TitleEligible(rule, title) {
			dropped["title"]++
			continue
		}
		for _, m := range ev.Markets {
			c, err := newSignal(ev, m, category)
			if err != nil {
				dropped["unusable"]++
				log.Debug("market skipped", "ticker", m.Ticker, "error", err)
				continue
			}
			if sortMetric(rule, c) < rule.MinVol {
				dropped["thin"]++
				continue
			}
			c.Signal.UpdatedAt = m.UpdatedAt
			candidates = append(candidates, c)
		}
	}

	signals := ComposeScanner(candidates, s.sectors.Rules(), s.cfg.BaselineSize, s.cfg.GemsPerSector)
	log.Info("sweep classified",
		"events", len(events), "candidates", len(candidates), "signals", len(signals),
		"dropped_no_sector", dropped["no_sector"], "dropped_excluded", dropped["excluded"],
		"dropped_title", dropped["title"], "dropped_thin", dropped["thin"],
		"dropped_unusable", dropped["unusable"])

	if _, err := s.snapshots.Write(ctx, now, runID, signals, runLog); err != nil {
		return 0, err
	}
	return len(signals), nil
}
