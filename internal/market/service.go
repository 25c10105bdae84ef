package market

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/earnview/portfolio/internal/domain"
)

// Provider supplies the current market record set in rank order.
type Provider interface {
	FetchMarkets(ctx context.Context) ([]domain.MarketRecord, error)
}

// Service refreshes the market data store from a Provider. Refreshes are
// independent of the asset catalog: the two caches share keys but nothing else.
type Service struct {
	provider Provider
	store    *Store
}

// NewService creates a market data Service.
func NewService(provider Provider, store *Store) *Service {
	if provider == nil {
		panic("market.NewService: provider is nil")
	}
	if store == nil {
		panic("market.NewService: store is nil")
	}
	return &Service{provider: provider, store: store}
}

// Store exposes the underlying store for read-side consumers.
func (s *Service) Store() *Store { return s.store }

// Refresh fetches the current market data and atomically replaces the
// store contents. On failure the previous entries are kept until they expire.
func (s *Service) Refresh(ctx context.Context) error {
	records, err := s.provider.FetchMarkets(ctx)
	if err != nil {
		return fmt.Errorf("refreshing market data: %w", err)
	}

	s.store.Replace(records)
	slog.Info("market data refreshed", "records", len(records))
	return nil
}
