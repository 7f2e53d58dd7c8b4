package pipeline

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polyscout/polyscout/internal/domain"
)

func TestSnapshotPath(t *testing.T) {
	now := time.Date(2026, time.March, 5, 9, 7, 0, 0, time.UTC)
	got := SnapshotPath("data/trends", "scanner", now)
	// directory date padded, filename month/day unpadded, clock padded
	assert.Equal(t, "data/trends/2026-03-05/scanner-2026-3-5-09_07.json", got)

	now = time.Date(2026, time.November, 21, 23, 59, 0, 0, time.UTC)
	got = SnapshotPath("data/strategy", "targeter", now)
	assert.Equal(t, "data/strategy/2026-11-21/targeter-2026-11-21-23_59.json", got)
}

func TestSnapshotWriterWritesSignals(t *testing.T) {
	store := newFakeStore()
	w := NewSnapshotWriter(store, "data/trends", "scanner", testLogger())
	now := time.Date(2026, time.March, 5, 9, 7, 0, 0, time.UTC)

	signals := []domain.Signal{{Slug: "fed-march", Category: "ECONOMY", StrategyTags: []string{domain.TagRawMarket}}}
	path, err := w.Write(context.Background(), now, "run-1", signals, &domain.RunLog{})
	require.NoError(t, err)
	assert.Equal(t, "data/trends/2026-03-05/scanner-2026-3-5-09_07.json", path)

	var got []domain.Signal
	require.NoError(t, json.Unmarshal(store.objects[path], &got))
	require.Len(t, got, 1)
	assert.Equal(t, "fed-march", got[0].Slug)
}

func TestSnapshotWriterEmptyRunWritesDiagnostic(t *testing.T) {
	store := newFakeStore()
	w := NewSnapshotWriter(store, "data/strategy", "targeter", testLogger())
	now := time.Date(2026, time.March, 5, 9, 7, 0, 0, time.UTC)

	runLog := &domain.RunLog{}
	runLog.Addf("resolve %q failed: timeout", "Fed decision in March?")

	path, err := w.Write(context.Background(), now, "run-2", nil, runLog)
	require.NoError(t, err)

	var got []domain.DiagnosticRecord
	require.NoError(t, json.Unmarshal(store.objects[path], &got))
	require.Len(t, got, 1)
	assert.Equal(t, "run-2", got[0].RunID)
	assert.NotEmpty(t, got[0].Info)
	assert.Len(t, got[0].Debug, 1)
}

func TestSnapshotWriterPutFailureIsFatal(t *testing.T) {
	store := newFakeStore()
	store.putErr = errBoom
	w := NewSnapshotWriter(store, "data/trends", "scanner", testLogger())

	_, err := w.Write(context.Background(), time.Now(), "run-3", nil, &domain.RunLog{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}
