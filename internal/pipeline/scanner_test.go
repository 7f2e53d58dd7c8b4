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

func newTestScanner(store *fakeStore, events *fakeEvents, directives domain.DirectiveSource) *Scanner {
	cfg := config.Defaults().Scanner
	coordinator := NewCoordinator(store, directives, "data/strategy", testLogger())
	snapshots := NewSnapshotWriter(store, "data/trends", "scanner", testLogger())
	return NewScanner(cfg, events, coordinator, snapshots, testLogger())
}

func scannerSnapshot(t *testing.T, store *fakeStore, now time.Time) []domain.Signal {
	t.Helper()
	path := SnapshotPath("data/trends", "scanner", now)
	data, ok := store.objects[path]
	require.True(t, ok, "snapshot %s not written", path)
	var signals []domain.Signal
	require.NoError(t, json.Unmarshal(data, &signals))
	return signals
}

func liveMarket(ticker string, vol24h float64) domain.Market {
	m := yesNoMarket(ticker, 0.6)
	m.Volume24h = vol24h
	return m
}

func TestScannerRun(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	events := &fakeEvents{top: []domain.Event{
		{
			Slug:    "fed-decision-march",
			Title:   "Fed decision in March?",
			Tags:    []string{"economy"},
			Markets: []domain.Market{liveMarket("fed-cut", 50000)},
		},
		{
			Slug:    "uncategorized",
			Title:   "Celebrity wedding of the year?",
			Tags:    []string{"pop-culture"},
			Markets: []domain.Market{liveMarket("wedding", 90000)},
		},
		{
			Slug:    "thin-market",
			Title:   "Fed rate path?",
			Tags:    []string{"economy"},
			Markets: []domain.Market{liveMarket("thin", 50)}, // below the ECONOMY floor
		},
	}}

	store := newFakeStore()
	s := newTestScanner(store, events, &fakeDirectives{})

	count, err := s.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	signals := scannerSnapshot(t, store, now)
	require.Len(t, signals, 1)
	assert.Equal(t, "fed-decision-march", signals[0].Slug)
	assert.Equal(t, "ECONOMY", signals[0].Category)
	assert.NotEmpty(t, signals[0].StrategyTags)
	// scanner signals carry no targeter-only fields
	assert.Empty(t, signals[0].Engine)
	assert.Empty(t, signals[0].URL)
}

func TestScannerExcludesTargeterCoverage(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	events := &fakeEvents{top: []domain.Event{
		{
			Slug:    "fed-decision-march",
			Title:   "Fed decision in March?",
			Tags:    []string{"economy"},
			Markets: []domain.Market{liveMarket("fed-cut", 50000)},
		},
		{
			Slug:    "btc-100k",
			Title:   "Bitcoin above 100k in March?",
			Tags:    []string{"crypto"},
			Markets: []domain.Market{liveMarket("btc", 80000)},
		},
	}}

	store := newFakeStore()
	// targeter already covered the fed event earlier today
	prior := SnapshotPath("data/strategy", "targeter", now.Add(-2*time.Hour))
	store.objects[prior] = []byte(`[{"slug":"fed-decision-march","strategy_tags":["RAW_MARKET"]}]`)

	s := newTestScanner(store, events, &fakeDirectives{})
	count, err := s.Run(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	signals := scannerSnapshot(t, store, now)
	require.Len(t, signals, 1)
	assert.Equal(t, "btc-100k", signals[0].Slug)
}

func TestScannerSweepFailureWritesDiagnostic(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)

	store := newFakeStore()
	s := newTestScanner(store, &fakeEvents{topErr: errBoom}, &fakeDirectives{})

	count, err := s.Run(context.Background(), now)
	require.NoError(t, err, "a failed sweep still persists a diagnostic snapshot")
	assert.Equal(t, 0, count)

	path := SnapshotPath("data/trends", "scanner", now)
	var records []domain.DiagnosticRecord
	require.NoError(t, json.Unmarshal(store.objects[path], &records))
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].Debug)
}

func TestScannerPersistenceFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.putErr = errBoom
	s := newTestScanner(store, &fakeEvents{}, &fakeDirectives{})

	_, err := s.Run(context.Background(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}
