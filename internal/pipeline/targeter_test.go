package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyscout/polyscout/internal/config"
	"github.com/polyscout/polyscout/internal/domain"
)

func newTestTargeter(store *fakeStore, resolver domain.Resolver, events domain.EventSource, directives domain.DirectiveSource) *Targeter {
	cfg := config.Defaults().Targeter
	snapshots := NewSnapshotWriter(store, "data/strategy", "targeter", testLogger())
	return NewTargeter(cfg, resolver, events, directives, snapshots, "https://polymarket.com", testLogger())
}

func targeterSnapshot(t *testing.T, store *fakeStore, now time.Time) []domain.Signal {
	t.Helper()
	path := SnapshotPath("data/strategy", "targeter", now)
	data, ok := store.objects[path]
	require.True(t, ok, "snapshot %s not written", path)
	var signals []domain.Signal
	require.NoError(t, json.Unmarshal(data, &signals))
	return signals
}

func TestTargeterRun(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	fedMarket := yesNoMarket("fed-cut-march", 0.672)
	fedMarket.Volume = 40000
	fedMarket.Spread = 0.015
	fedMarket.SortOrder = 2

	btcMarket := yesNoMarket("btc-100k-march", 0.3)
	btcMarket.Volume = 90000

	resolver := &fakeResolver{table: map[string]string{
		"Fed decision in March?":        "fed-decision-march",
		"Bitcoin above 100k in March?":  "btc-100k",
		"Fed rates decision March 2026": "fed-decision-march", // second query, same event
	}}
	events := &fakeEvents{bySlug: map[string]domain.Event{
		"fed-decision-march": {Slug: "fed-decision-march", Title: "Fed decision in March?", Markets: []domain.Market{fedMarket}},
		"btc-100k":           {Slug: "btc-100k", Title: "Bitcoin above 100k in March?", Markets: []domain.Market{btcMarket}},
	}}
	directives := &fakeDirectives{directives: []domain.Directive{
		{Number: 1, Title: "Fed decision in {month}?"},
		{Number: 2, Title: "Bitcoin above 100k in {month}?"},
		{Number: 3, Title: "Fed rates decision March {year}"},
		{Number: 4, Title: "Unresolvable question?"},
	}}

	store := newFakeStore()
	tg := newTestTargeter(store, resolver, events, directives)

	count, err := tg.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "same event resolved twice yields one signal")

	signals := targeterSnapshot(t, store, now)
	require.Len(t, signals, 2)

	// sorted by lifetime volume descending
	assert.Equal(t, "btc-100k", signals[0].Slug)
	assert.Equal(t, "fed-decision-march", signals[1].Slug)

	fed := signals[1]
	assert.Equal(t, "targeter", fed.Engine)
	assert.Equal(t, "Fed decision in {month}?", fed.CoreTopic)
	assert.Equal(t, "ECONOMY", fed.Category)
	assert.Equal(t, "1.50%", fed.Spread)
	assert.Equal(t, float64(2), fed.SortOrder)
	assert.Equal(t, "https://polymarket.com/event/fed-decision-march", fed.URL)
	assert.Equal(t, "CRYPTO", signals[0].Category)
}

func TestTargeterSkipsDustMarkets(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	dust := yesNoMarket("dust", 0.5)
	dust.Volume = 1
	dust.Liquidity = 1

	resolver := &fakeResolver{table: map[string]string{"Dusty market?": "dusty"}}
	events := &fakeEvents{bySlug: map[string]domain.Event{
		"dusty": {Slug: "dusty", Title: "Dusty market?", Markets: []domain.Market{dust}},
	}}
	directives := &fakeDirectives{directives: []domain.Directive{{Number: 1, Title: "Dusty market?"}}}

	store := newFakeStore()
	tg := newTestTargeter(store, resolver, events, directives)

	count, err := tg.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// empty run persists a diagnostic record
	path := SnapshotPath("data/strategy", "targeter", now)
	var records []domain.DiagnosticRecord
	require.NoError(t, json.Unmarshal(store.objects[path], &records))
	require.Len(t, records, 1)
}

func TestTargeterFallsBackToBuiltinTopics(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	fed := yesNoMarket("fed-cut", 0.6)
	fed.Volume = 30000

	resolver := &fakeResolver{table: map[string]string{"Fed decision in March?": "fed-decision-march"}}
	events := &fakeEvents{bySlug: map[string]domain.Event{
		"fed-decision-march": {Slug: "fed-decision-march", Title: "Fed decision in March?", Markets: []domain.Market{fed}},
	}}

	t.Run("directive source failed", func(t *testing.T) {
		store := newFakeStore()
		tg := newTestTargeter(store, resolver, events, &fakeDirectives{err: errBoom})

		count, err := tg.Run(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("no open directives", func(t *testing.T) {
		store := newFakeStore()
		tg := newTestTargeter(store, resolver, events, &fakeDirectives{})

		count, err := tg.Run(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("no directive source configured", func(t *testing.T) {
		store := newFakeStore()
		tg := newTestTargeter(store, resolver, events, nil)

		count, err := tg.Run(context.Background(), now)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

func TestTargeterPersistenceFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.putErr = errBoom
	tg := newTestTargeter(store, &fakeResolver{}, &fakeEvents{}, &fakeDirectives{})

	_, err := tg.Run(context.Background(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}
