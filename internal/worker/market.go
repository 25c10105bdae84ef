package worker

import (
	"context"
	"log/slog"
	"time"
)

// Refresher defines a component whose cached data can be refreshed.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// MarketWorker periodically refreshes market data and vault metrics.
type MarketWorker struct {
	market   Refresher
	yields   Refresher
	interval time.Duration
}

// NewMarketWorker creates a new MarketWorker. The yields refresher may be nil.
func NewMarketWorker(market, yields Refresher, interval time.Duration) *MarketWorker {
	return &MarketWorker{
		market:   market,
		yields:   yields,
		interval: interval,
	}
}

// Run starts the market worker loop. It blocks until the context is cancelled.
func (w *MarketWorker) Run(ctx context.Context) {
	slog.Info("MarketWorker: starting")

	w.refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("MarketWorker: shutting down")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *MarketWorker) refresh(ctx context.Context) {
	if err := w.market.Refresh(ctx); err != nil {
		slog.Error("MarketWorker: market refresh failed", "error", err)
	} else {
		slog.Info("MarketWorker: market refresh completed")
	}

	if w.yields == nil {
		return
	}
	if err := w.yields.Refresh(ctx); err != nil {
		slog.Error("MarketWorker: vault metrics refresh failed", "error", err)
	} else {
		slog.Info("MarketWorker: vault metrics refresh completed")
	}
}
