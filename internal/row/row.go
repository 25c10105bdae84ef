package row

import (
	"github.com/shopspring/decimal"

	"github.com/earnview/portfolio/internal/domain"
)

// allocationPrecision is the number of decimal places for allocation weights.
const allocationPrecision = 4

// Row is the renderable description of one asset holding. Price and
// FiatValue hold the placeholder when no market data is available.
type Row struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Symbol       string `json:"symbol"`
	Icon         string `json:"icon,omitempty"`
	Color        string `json:"color,omitempty"`
	CryptoAmount string `json:"cryptoAmount"`
	Price        string `json:"price"`
	FiatValue    string `json:"fiatValue"`
	Allocation   string `json:"allocation"`
}

// Build derives the display row for one asset. It is pure: no cache or
// network access. A nil asset record yields no row — assets missing from
// the catalog are unsupported, which is a normal state, not an error.
// Missing market data renders as the placeholder, never as zero.
func Build(rec *domain.AssetRecord, rawBalance string, market *domain.MarketRecord, allocation decimal.Decimal) (Row, bool) {
	if rec == nil {
		return Row{}, false
	}

	crypto := domain.ScaleToHuman(rawBalance, rec.Precision)

	price := domain.Placeholder
	fiat := domain.Placeholder
	if market != nil && market.HasPrice() {
		price = domain.FormatAmount(*market.Price, rec.Precision)
		fiat = domain.FormatAmount(crypto.Mul(*market.Price), 2)
	}

	return Row{
		ID:           rec.ID.Canonical(),
		Name:         rec.Name,
		Symbol:       rec.Symbol,
		Icon:         rec.Icon,
		Color:        rec.Color,
		CryptoAmount: domain.FormatAmount(crypto, rec.Precision),
		Price:        price,
		FiatValue:    fiat,
		Allocation:   domain.FormatAmount(allocation, allocationPrecision),
	}, true
}
