package balance

import (
	"context"

	"github.com/earnview/portfolio/internal/domain"
)

// Provider supplies the active wallet's current balances. Refreshes are
// triggered externally (wallet connect, periodic poll); this layer only
// consumes the latest snapshot and never caches one.
type Provider interface {
	FetchBalances(ctx context.Context, account string) (domain.BalanceSnapshot, error)
}
