package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/earnview/portfolio/internal/portfolio"
)

// SnapshotGenerator defines the interface for generating snapshots.
type SnapshotGenerator interface {
	Generate(ctx context.Context, account string, date time.Time) (portfolio.View, error)
}

// AfterSnapshotHook is called after each successful snapshot generation.
type AfterSnapshotHook interface {
	Export(ctx context.Context, view portfolio.View) error
}

// SnapshotWorker periodically generates portfolio snapshots for a set of accounts.
type SnapshotWorker struct {
	generator SnapshotGenerator
	accounts  []string
	interval  time.Duration
	hook      AfterSnapshotHook // optional
}

// NewSnapshotWorker creates a new SnapshotWorker with an optional post-generation hook.
func NewSnapshotWorker(generator SnapshotGenerator, accounts []string, interval time.Duration, hook AfterSnapshotHook) *SnapshotWorker {
	return &SnapshotWorker{
		generator: generator,
		accounts:  accounts,
		interval:  interval,
		hook:      hook,
	}
}

// Run starts the snapshot worker loop. It blocks until the context is cancelled.
func (w *SnapshotWorker) Run(ctx context.Context) {
	slog.Info("SnapshotWorker: starting", "accounts", len(w.accounts))

	w.generateAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("SnapshotWorker: shutting down")
			return
		case <-ticker.C:
			w.generateAll(ctx)
		}
	}
}

func (w *SnapshotWorker) generateAll(ctx context.Context) {
	date := utcDate()
	for _, account := range w.accounts {
		view, err := w.generator.Generate(ctx, account, date)
		if err != nil {
			slog.Error("SnapshotWorker: generation failed", "account", account, "error", err)
			continue
		}
		slog.Info("SnapshotWorker: generation completed", "account", account)
		w.runHook(ctx, view)
	}
}

// runHook calls the post-generation hook if one is configured.
func (w *SnapshotWorker) runHook(ctx context.Context, view portfolio.View) {
	if w.hook == nil {
		return
	}
	if err := w.hook.Export(ctx, view); err != nil {
		slog.Error("SnapshotWorker: export hook failed", "error", err)
	} else {
		slog.Info("SnapshotWorker: export hook completed")
	}
}

// utcDate returns the current date normalized to midnight UTC.
func utcDate() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
