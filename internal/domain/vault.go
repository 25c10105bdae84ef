package domain

import "github.com/shopspring/decimal"

// VaultDefinition is a compiled-in description of a yield-bearing vault:
// a contract accepting one token and issuing a receipt token whose
// price-per-share grows over time. Immutable for the process lifetime.
type VaultDefinition struct {
	Chain        string `json:"chain"`
	Network      string `json:"network"`
	VaultAddress string `json:"vaultAddress"`
	TokenAddress string `json:"tokenAddress"`
	Name         string `json:"name"`
	Precision    int    `json:"precision"`
}

// VaultTokenID returns the identifier of the vault's receipt token.
func (d VaultDefinition) VaultTokenID() AssetID {
	return TokenAssetID(d.Chain, d.Network, ContractTypeVault, d.VaultAddress)
}

// UnderlyingTokenID returns the identifier of the token the vault accepts.
func (d VaultDefinition) UnderlyingTokenID() AssetID {
	return TokenAssetID(d.Chain, d.Network, ContractTypeERC20, d.TokenAddress)
}

// VaultView is the derived, renderable state of one held vault. It is never
// persisted on its own: recomputing from the same inputs yields the same view.
type VaultView struct {
	Definition    VaultDefinition  `json:"definition"`
	VaultID       AssetID          `json:"vaultId"`
	TokenID       AssetID          `json:"tokenId"`
	RawBalance    string           `json:"rawBalance"`
	PricePerShare decimal.Decimal  `json:"pricePerShare"`
	CryptoAmount  string           `json:"cryptoAmount"`
	FiatAmount    string           `json:"fiatAmount"`
	APY           *decimal.Decimal `json:"apy,omitempty"`
}
