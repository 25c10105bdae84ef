package vault

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/earnview/portfolio/internal/domain"
)

// fiatPrecision is the number of decimal places for formatted fiat amounts.
const fiatPrecision = 2

// Terms holds provider-reported yield terms for a vault.
type Terms struct {
	APY decimal.Decimal `json:"apy"`
}

// YieldProvider supplies per-vault yield metrics.
type YieldProvider interface {
	// PricePerShare returns the vault's raw exchange rate, scaled by the
	// vault's precision like a balance. May fail or be unknown.
	PricePerShare(ctx context.Context, vaultAddress string) (decimal.Decimal, error)
	// FindByVaultToken returns the yield terms for a vault token, if known.
	FindByVaultToken(vaultAddress string) (Terms, bool)
}

// PriceLookup resolves an underlying token's fiat price, or nil when no
// market data is available.
type PriceLookup func(id domain.AssetID) *decimal.Decimal

// ComputeVaults joins the static vault registry with wallet balances and
// provider yield metrics. Only held vaults are materialized: a zero or
// absent receipt-token balance excludes the vault entirely. A failed
// price-per-share fetch degrades to zero instead of failing the batch; the
// vault stays in the result with its crypto amount from the balance alone.
func ComputeVaults(ctx context.Context, defs []domain.VaultDefinition, balances domain.BalanceSnapshot, provider YieldProvider, prices PriceLookup) map[string]domain.VaultView {
	views := make(map[string]domain.VaultView)

	for _, def := range defs {
		vaultID := def.VaultTokenID()
		raw := balances.Lookup(vaultID)
		if raw == "" || domain.SafeParse(raw).IsZero() {
			continue
		}

		pps, err := provider.PricePerShare(ctx, def.VaultAddress)
		if err != nil {
			slog.Warn("price-per-share unavailable, degrading to zero", "vault", def.VaultAddress, "error", err)
			pps = decimal.Zero
		}

		view := domain.VaultView{
			Definition:    def,
			VaultID:       vaultID,
			TokenID:       def.UnderlyingTokenID(),
			RawBalance:    raw,
			PricePerShare: pps,
			CryptoAmount:  domain.FormatAmount(cryptoAmount(raw, pps, def.Precision), def.Precision),
		}

		fiat := decimal.Zero
		if price := prices(view.TokenID); price != nil {
			fiat = FiatAmount(view, def.Precision, *price)
		}
		view.FiatAmount = domain.FormatAmount(fiat, fiatPrecision)

		if terms, ok := provider.FindByVaultToken(def.VaultAddress); ok {
			apy := terms.APY
			view.APY = &apy
		}

		views[def.VaultAddress] = view
	}

	return views
}

// cryptoAmount converts a raw receipt-token balance into underlying human
// units. With a degraded (zero) price-per-share, the share balance alone is
// shown rather than a misleading zero.
func cryptoAmount(raw string, pricePerShare decimal.Decimal, precision int) decimal.Decimal {
	shares := domain.ScaleToHuman(raw, precision)
	if pricePerShare.IsZero() {
		return shares
	}
	return shares.Mul(pricePerShare.Shift(int32(-precision)))
}

// FiatAmount computes a held vault's fiat value:
// rawBalance/10^precision × pricePerShare/10^precision × underlyingPrice.
// All arithmetic is arbitrary-precision decimal; precision losses from
// binary floats would compound across the three terms.
func FiatAmount(view domain.VaultView, precision int, underlyingPrice decimal.Decimal) decimal.Decimal {
	shares := domain.ScaleToHuman(view.RawBalance, precision)
	rate := view.PricePerShare.Shift(int32(-precision))
	return shares.Mul(rate).Mul(underlyingPrice)
}

// TotalValue sums the fiat value of all held vaults. A vault with missing
// price data contributes zero; it never aborts the sum.
func TotalValue(views map[string]domain.VaultView) decimal.Decimal {
	return lo.Reduce(lo.Values(views), func(acc decimal.Decimal, v domain.VaultView, _ int) decimal.Decimal {
		return domain.SafeSum(acc, domain.SafeParse(v.FiatAmount))
	}, decimal.Zero)
}
