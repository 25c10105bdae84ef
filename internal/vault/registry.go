package vault

import "github.com/earnview/portfolio/internal/domain"

// definitions is the compiled-in vault list. Unexported to prevent mutation;
// the app only ever shows vaults from this registry.
var definitions = []domain.VaultDefinition{
	{
		Chain:        "ethereum",
		Network:      "mainnet",
		VaultAddress: "0x5f18C75AbDAe578b483E5F43f12a39cF75b973a9",
		TokenAddress: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Name:         "USDC Yield Vault",
		Precision:    6,
	},
	{
		Chain:        "ethereum",
		Network:      "mainnet",
		VaultAddress: "0xa258C4606Ca8206D8aA700cE2143D7db854D168c",
		TokenAddress: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Name:         "WETH Yield Vault",
		Precision:    18,
	},
	{
		Chain:        "ethereum",
		Network:      "mainnet",
		VaultAddress: "0xdA816459F1AB5631232FE5e97a05BBBb94970c95",
		TokenAddress: "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Name:         "DAI Yield Vault",
		Precision:    18,
	},
}

// Definitions returns the static vault registry.
func Definitions() []domain.VaultDefinition {
	out := make([]domain.VaultDefinition, len(definitions))
	copy(out, definitions)
	return out
}
