package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyscout/polyscout/internal/domain"
)

func TestExclusionSet(t *testing.T) {
	excl := NewExclusionSet()
	excl.AddSlug("fed-decision-march")
	excl.AddBlacklist("fed decision in march")

	t.Run("slug match", func(t *testing.T) {
		assert.True(t, excl.Excluded("fed-decision-march", "anything"))
		assert.False(t, excl.Excluded("other-event", "unrelated title"))
	})

	t.Run("title contains blacklist entry", func(t *testing.T) {
		assert.True(t, excl.Excluded("x", "will the fed decision in march move markets"))
	})

	t.Run("blacklist entry contains title", func(t *testing.T) {
		assert.True(t, excl.Excluded("x", "fed decision"))
	})

	t.Run("no overlap", func(t *testing.T) {
		assert.False(t, excl.Excluded("x", "bitcoin all time high"))
	})
}

func TestExpandDirectiveDates(t *testing.T) {
	now := time.Date(2026, time.March, 30, 0, 0, 0, 0, time.UTC)

	t.Run("dated directive blankets three days", func(t *testing.T) {
		got := expandDirectiveDates("Bitcoin above 100k on {date}?", now)
		require.Len(t, got, 3)
		assert.Equal(t, "Bitcoin above 100k on March 30?", got[0])
		assert.Equal(t, "Bitcoin above 100k on March 31?", got[1])
		assert.Equal(t, "Bitcoin above 100k on April 1?", got[2])
	})

	t.Run("undated directive expands once", func(t *testing.T) {
		got := expandDirectiveDates("Fed decision in {month} {year}?", now)
		require.Len(t, got, 1)
		assert.Equal(t, "Fed decision in March 2026?", got[0])
	})
}

func TestCoordinatorBuildExclusions(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)

	t.Run("combines directives and latest snapshot", func(t *testing.T) {
		store := newFakeStore()
		early := SnapshotPath("data/strategy", "targeter", now.Add(-4*time.Hour))
		late := SnapshotPath("data/strategy", "targeter", now.Add(-1*time.Hour))
		store.objects[early] = []byte(`[{"slug":"old-event","strategy_tags":["RAW_MARKET"]}]`)
		store.objects[late] = []byte(`[{"slug":"fed-march","strategy_tags":["RAW_MARKET"]},{"slug":"btc-ath","strategy_tags":["RAW_MARKET"]}]`)

		directives := &fakeDirectives{directives: []domain.Directive{
			{Number: 1, Title: "Fed decision in March?"},
		}}

		c := NewCoordinator(store, directives, "data/strategy", testLogger())
		runLog := &domain.RunLog{}
		excl := c.BuildExclusions(ctx, now, runLog)

		assert.True(t, excl.Excluded("fed-march", "x"))
		assert.True(t, excl.Excluded("btc-ath", "x"))
		// only the latest snapshot of the day counts
		assert.False(t, excl.Excluded("old-event", "x"))
		assert.True(t, excl.Excluded("y", "fed decision in march"))
		assert.Empty(t, runLog.Entries())
	})

	t.Run("store failure degrades to directives only", func(t *testing.T) {
		store := newFakeStore()
		store.listErr = errBoom
		directives := &fakeDirectives{directives: []domain.Directive{{Number: 1, Title: "Bitcoin all time high?"}}}

		c := NewCoordinator(store, directives, "data/strategy", testLogger())
		runLog := &domain.RunLog{}
		excl := c.BuildExclusions(ctx, now, runLog)

		assert.True(t, excl.Excluded("x", "bitcoin all time high"))
		assert.NotEmpty(t, runLog.Entries())
	})

	t.Run("directive failure degrades to snapshot only", func(t *testing.T) {
		store := newFakeStore()
		path := SnapshotPath("data/strategy", "targeter", now)
		store.objects[path] = []byte(`[{"slug":"fed-march","strategy_tags":["RAW_MARKET"]}]`)

		c := NewCoordinator(store, &fakeDirectives{err: errBoom}, "data/strategy", testLogger())
		runLog := &domain.RunLog{}
		excl := c.BuildExclusions(ctx, now, runLog)

		assert.True(t, excl.Excluded("fed-march", "x"))
		assert.NotEmpty(t, runLog.Entries())
	})

	t.Run("diagnostic snapshot is skipped", func(t *testing.T) {
		store := newFakeStore()
		path := SnapshotPath("data/strategy", "targeter", now)
		store.objects[path] = []byte(`[{"info":"no eligible markets found in this run","debug":[]}]`)

		c := NewCoordinator(store, &fakeDirectives{}, "data/strategy", testLogger())
		excl := c.BuildExclusions(ctx, now, &domain.RunLog{})

		assert.Equal(t, 0, excl.Len())
	})

	t.Run("empty day yields empty set", func(t *testing.T) {
		c := NewCoordinator(newFakeStore(), &fakeDirectives{}, "data/strategy", testLogger())
		excl := c.BuildExclusions(ctx, now, &domain.RunLog{})
		assert.Equal(t, 0, excl.Len())
	})
}
