package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/polyscout/polyscout/internal/domain"
)

// ExclusionSet combines the two scanner-side deduplication filters: exact
// identifier subtraction against the Targeter's latest same-day snapshot, and
// a normalized text-overlap blacklist built from the open directives. Both
// filters always apply; a market escapes the sweep only when neither holds.
type ExclusionSet struct {
	slugs     map[string]struct{}
	blacklist []string
}

func NewExclusionSet() *ExclusionSet {
	return &ExclusionSet{slugs: make(map[string]struct{})}
}

// AddSlug excludes the event identifier exactly.
func (e *ExclusionSet) AddSlug(slug string) {
	e.slugs[slug] = struct{}{}
}

// AddBlacklist adds an already-normalized directive text to the overlap
// blacklist.
func (e *ExclusionSet) AddBlacklist(text string) {
	if text != "" {
		e.blacklist = append(e.blacklist, text)
	}
}

// Len reports the combined filter size, for logging.
func (e *ExclusionSet) Len() int { return len(e.slugs) + len(e.blacklist) }

// Excluded reports whether a candidate event is already covered by the
// Targeter. Titles overlap when either normalized text contains the other,
// so "fed decision in september" blocks both "Fed decision in September?" and
// the longer listed variants of it.
func (e *ExclusionSet) Excluded(slug, normTitle string) bool {
	if _, ok := e.slugs[slug]; ok {
		return true
	}
	for _, b := range e.blacklist {
		if strings.Contains(normTitle, b) || strings.Contains(b, normTitle) {
			return true
		}
	}
	return false
}

// Coordinator assembles the Scanner's exclusion set before a sweep. Every
// lookup is best-effort: a store or directive failure is noted in the run log
// and the sweep proceeds with whatever subset was gathered.
type Coordinator struct {
	store          domain.SnapshotStore
	directives     domain.DirectiveSource
	targeterPrefix string
	logger         *slog.Logger
}

func NewCoordinator(store domain.SnapshotStore, directives domain.DirectiveSource, targeterPrefix string, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		store:          store,
		directives:     directives,
		targeterPrefix: targeterPrefix,
		logger:         logger.With("component", "coordinator"),
	}
}

// BuildExclusions gathers the directive blacklist and the identifier set from
// the Targeter's most recent snapshot of the day.
func (c *Coordinator) BuildExclusions(ctx context.Context, now time.Time, runLog *domain.RunLog) *ExclusionSet {
	excl := NewExclusionSet()
	c.addDirectiveBlacklist(ctx, now, runLog, excl)
	c.addSnapshotSlugs(ctx, now, runLog, excl)
	c.logger.Info("exclusion set built", "slugs", len(excl.slugs), "blacklist", len(excl.blacklist))
	return excl
}

func (c *Coordinator) addDirectiveBlacklist(ctx context.Context, now time.Time, runLog *domain.RunLog, excl *ExclusionSet) {
	if c.directives == nil {
		return
	}
	open, err := c.directives.Open(ctx)
	if err != nil {
		c.logger.Warn("directive lookup failed, blacklist skipped", "error", err)
		runLog.Addf("directive lookup failed: %v", err)
		return
	}
	for _, d := range open {
		for _, text := range expandDirectiveDates(d.Title, now) {
			excl.AddBlacklist(NormalizeText(text))
		}
	}
}

// expandDirectiveDates expands {date}/{year} placeholders over the next three
// days so a dated directive blankets the whole resolution window the Targeter
// searches.
func expandDirectiveDates(title string, now time.Time) []string {
	if !strings.Contains(title, phDate) {
		return []string{fillCalendar(title, now, now)}
	}
	out := make([]string, 0, 3)
	for i := 0; i < 3; i++ {
		d := now.AddDate(0, 0, i)
		out = append(out, fillCalendar(title, d, d))
	}
	return out
}

func (c *Coordinator) addSnapshotSlugs(ctx context.Context, now time.Time, runLog *domain.RunLog, excl *ExclusionSet) {
	prefix := fmt.Sprintf("%s/%s/", c.targeterPrefix, now.Format("2006-01-02"))
	infos, err := c.store.List(ctx, prefix)
	if err != nil {
		c.logger.Warn("snapshot listing failed, identifier filter skipped", "prefix", prefix, "error", err)
		runLog.Addf("snapshot listing under %s failed: %v", prefix, err)
		return
	}
	if len(infos) == 0 {
		return
	}
	latest := latestSnapshot(infos)
	data, err := c.store.Get(ctx, latest.Path)
	if err != nil {
		c.logger.Warn("snapshot fetch failed, identifier filter skipped", "path", latest.Path, "error", err)
		runLog.Addf("snapshot fetch %s failed: %v", latest.Path, err)
		return
	}
	var signals []domain.Signal
	if err := json.Unmarshal(data, &signals); err != nil {
		c.logger.Debug("snapshot not a signal list, skipped", "path", latest.Path, "error", err)
		return
	}
	for _, s := range signals {
		// A diagnostic record from an empty run decodes as one signal with no
		// slug; the guard drops it.
		if s.Slug != "" {
			excl.AddSlug(s.Slug)
		}
	}
}

// latestSnapshot picks the most recent object, preferring store modification
// times and falling back to filename order. Filenames within one daily
// directory differ only in the zero-padded HH_MM suffix, so lexical order is
// chronological.
func latestSnapshot(infos []domain.SnapshotInfo) domain.SnapshotInfo {
	sorted := make([]domain.SnapshotInfo, len(infos))
	copy(sorted, infos)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if !a.LastModified.Equal(b.LastModified) {
			return a.LastModified.Before(b.LastModified)
		}
		return a.Path < b.Path
	})
	return sorted[len(sorted)-1]
}
