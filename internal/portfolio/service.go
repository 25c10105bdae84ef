package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/earnview/portfolio/internal/balance"
	"github.com/earnview/portfolio/internal/catalog"
	"github.com/earnview/portfolio/internal/domain"
	"github.com/earnview/portfolio/internal/market"
	"github.com/earnview/portfolio/internal/row"
	"github.com/earnview/portfolio/internal/vault"
)

// View is the fully derived portfolio state for one account. It is always
// recomputable from its inputs; nothing in it is authoritative.
type View struct {
	Account         string                      `json:"account"`
	Rows            []row.Row                   `json:"rows"`
	Vaults          map[string]domain.VaultView `json:"vaults"`
	TotalVaultValue decimal.Decimal             `json:"totalVaultValue"`
	GeneratedAt     time.Time                   `json:"generatedAt"`
}

// Service derives portfolio views from the normalized caches and the
// latest balance snapshot. Any external trigger (wallet connect, balance
// change, provider readiness) recomputes the entire view; the vault set is
// small enough that incremental recompute is not worth its complexity.
type Service struct {
	catalog  *catalog.Store
	market   *market.Store
	balances balance.Provider
	yields   vault.YieldProvider
	defs     []domain.VaultDefinition
}

// NewService creates a portfolio Service over the shared caches.
func NewService(catalogStore *catalog.Store, marketStore *market.Store, balances balance.Provider, yields vault.YieldProvider) *Service {
	if catalogStore == nil {
		panic("portfolio.NewService: catalog store is nil")
	}
	if marketStore == nil {
		panic("portfolio.NewService: market store is nil")
	}
	if balances == nil {
		panic("portfolio.NewService: balance provider is nil")
	}
	if yields == nil {
		panic("portfolio.NewService: yield provider is nil")
	}
	return &Service{
		catalog:  catalogStore,
		market:   marketStore,
		balances: balances,
		yields:   yields,
		defs:     vault.Definitions(),
	}
}

// Refresh pulls the account's latest balances and recomputes the full view.
// Assets held but absent from the catalog are skipped silently; missing
// market data degrades to placeholders, never to an error.
func (s *Service) Refresh(ctx context.Context, account string) (View, error) {
	balances, err := s.balances.FetchBalances(ctx, account)
	if err != nil {
		return View{}, fmt.Errorf("refreshing portfolio for %s: %w", account, err)
	}

	assets := s.catalog.Snapshot()
	marketByID := s.market.ByID()
	ordered := market.SortedByMarketCap(assets.ByID, marketByID)

	// First pass: fiat value per held asset, for allocation weights.
	fiatByID := make(map[string]decimal.Decimal)
	totalFiat := decimal.Zero
	for _, rec := range ordered {
		key := rec.ID.Canonical()
		raw := balances[key]
		if raw == "" || domain.SafeParse(raw).IsZero() {
			continue
		}
		m, ok := marketByID[key]
		if !ok || !m.HasPrice() {
			continue
		}
		fiat := domain.ScaleToHuman(raw, rec.Precision).Mul(*m.Price)
		fiatByID[key] = fiat
		totalFiat = domain.SafeSum(totalFiat, fiat)
	}

	var rows []row.Row
	for _, rec := range ordered {
		key := rec.ID.Canonical()
		raw := balances[key]
		if raw == "" || domain.SafeParse(raw).IsZero() {
			continue
		}

		allocation := decimal.Zero
		if fiat, ok := fiatByID[key]; ok && !totalFiat.IsZero() {
			allocation = fiat.Div(totalFiat)
		}

		var marketRec *domain.MarketRecord
		if m, ok := marketByID[key]; ok {
			marketRec = &m
		}

		if r, ok := row.Build(&rec, raw, marketRec, allocation); ok {
			rows = append(rows, r)
		}
	}

	vaults := vault.ComputeVaults(ctx, s.defs, balances, s.yields, s.marketPrice)
	return View{
		Account:         account,
		Rows:            rows,
		Vaults:          vaults,
		TotalVaultValue: vault.TotalValue(vaults),
		GeneratedAt:     time.Now().UTC(),
	}, nil
}

// marketPrice adapts the market store to the vault aggregator's lookup.
func (s *Service) marketPrice(id domain.AssetID) *decimal.Decimal {
	rec, ok := s.market.Get(id)
	if !ok || !rec.HasPrice() {
		return nil
	}
	return rec.Price
}
