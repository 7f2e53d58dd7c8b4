package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/polyscout/polyscout/internal/domain"
)

// SnapshotPath builds the immutable object path for an agent run:
// <prefix>/<YYYY-MM-DD>/<agent>-<y>-<m>-<d>-<HH>_<MM>.json. The directory
// date is zero-padded for clean listing; the filename keeps unpadded month
// and day with padded clock fields, which existing consumers parse.
func SnapshotPath(prefix, agent string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%s-%d-%d-%d-%02d_%02d.json",
		prefix, now.Format("2006-01-02"),
		agent, now.Year(), int(now.Month()), now.Day(), now.Hour(), now.Minute())
}

// SnapshotWriter persists one agent's run results. Persistence is the whole
// point of a run, so unlike the acquisition stages a write failure is
// returned to the caller and aborts the run.
type SnapshotWriter struct {
	store  domain.SnapshotStore
	prefix string
	agent  string
	logger *slog.Logger
}

func NewSnapshotWriter(store domain.SnapshotStore, prefix, agent string, logger *slog.Logger) *SnapshotWriter {
	return &SnapshotWriter{
		store:  store,
		prefix: prefix,
		agent:  agent,
		logger: logger.With("component", "snapshot", "agent", agent),
	}
}

// Write marshals the signals and stores them under the timestamped path. An
// empty result set is replaced by a single diagnostic record carrying the run
// log, so empty runs stay observable in the store itself.
func (w *SnapshotWriter) Write(ctx context.Context, now time.Time, runID string, signals []domain.Signal, runLog *domain.RunLog) (string, error) {
	var payload any = signals
	if len(signals) == 0 {
		payload = []domain.DiagnosticRecord{{
			Info:  "no eligible markets found in this run",
			RunID: runID,
			Debug: runLog.Entries(),
		}}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("snapshot: marshal: %w", err)
	}
	path := SnapshotPath(w.prefix, w.agent, now)
	if err := w.store.Put(ctx, path, data); err != nil {
		return "", fmt.Errorf("snapshot: put %s: %w", path, err)
	}
	w.logger.Info("snapshot written", "path", path, "signals", len(signals), "bytes", len(data))
	return path, nil
}
