package domain

import "github.com/shopspring/decimal"

// MarketRecord holds price and market-cap info for one asset. A missing
// record for an identifier is a normal state, not an error: downstream
// consumers render a placeholder instead of zero.
type MarketRecord struct {
	ID            AssetID          `json:"id"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	MarketCapRank *int             `json:"marketCapRank,omitempty"`
}

// HasPrice reports whether a usable price is present.
func (m MarketRecord) HasPrice() bool {
	return m.Price != nil
}
