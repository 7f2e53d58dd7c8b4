package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/polyscout/polyscout/internal/notify"
	"github.com/polyscout/polyscout/internal/pipeline"
)

// ScanMode runs the broad-sweep Scanner once.
func (a *App) ScanMode(ctx context.Context, deps *Dependencies) error {
	return a.runAgent(ctx, deps, "scanner", a.runScanner)
}

// TargetMode runs the directive-driven Targeter once.
func (a *App) TargetMode(ctx context.Context, deps *Dependencies) error {
	return a.runAgent(ctx, deps, "targeter", a.runTargeter)
}

// FullMode runs the Targeter and then the Scanner, in that order, so the
// Scanner's exclusion lookup sees the Targeter snapshot written moments
// before. A Targeter failure does not stop the sweep; the first error is
// still reported.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	targetErr := a.TargetMode(ctx, deps)
	scanErr := a.ScanMode(ctx, deps)
	if targetErr != nil {
		return targetErr
	}
	return scanErr
}

// runAgent executes one agent run and reports the outcome on the notifier.
func (a *App) runAgent(ctx context.Context, deps *Dependencies, name string, run func(context.Context, *Dependencies, time.Time) (int, error)) error {
	start := time.Now()
	count, err := run(ctx, deps, start)
	if err != nil {
		a.logger.ErrorContext(ctx, "run failed", "agent", name, "error", err)
		_ = deps.Notifier.Notify(ctx, notify.EventError,
			fmt.Sprintf("polyscout %s failed", name), err.Error())
		return fmt.Errorf("app: %s: %w", name, err)
	}
	a.logger.InfoContext(ctx, "run complete",
		"agent", name, "signals", count, "elapsed", time.Since(start).Round(time.Millisecond))
	_ = deps.Notifier.Notify(ctx, notify.EventRunComplete,
		fmt.Sprintf("polyscout %s complete", name),
		fmt.Sprintf("%d signals in %s", count, time.Since(start).Round(time.Second)))
	return nil
}

func (a *App) runScanner(ctx context.Context, deps *Dependencies, now time.Time) (int, error) {
	logger := slog.Default()
	coordinator := pipeline.NewCoordinator(deps.Store, deps.Directives, a.cfg.Store.TargeterPrefix, logger)
	snapshots := pipeline.NewSnapshotWriter(deps.Store, a.cfg.Store.ScannerPrefix, "scanner", logger)
	scanner := pipeline.NewScanner(a.cfg.Scanner, deps.Events, coordinator, snapshots, logger)
	return scanner.Run(ctx, now)
}

func (a *App) runTargeter(ctx context.Context, deps *Dependencies, now time.Time) (int, error) {
	logger := slog.Default()
	snapshots := pipeline.NewSnapshotWriter(deps.Store, a.cfg.Store.TargeterPrefix, "targeter", logger)
	targeter := pipeline.NewTargeter(a.cfg.Targeter, deps.Resolver, deps.Events, deps.Directives,
		snapshots, a.cfg.Polymarket.SiteHost, logger)
	return targeter.Run(ctx, now)
}
