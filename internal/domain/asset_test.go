package domain

import (
	"errors"
	"testing"
)

func TestCanonicalFormats(t *testing.T) {
	tests := []struct {
		name string
		id   AssetID
		want string
	}{
		{"native", NativeAssetID("ethereum", "mainnet"), "ethereum:mainnet:native"},
		{"erc20 token", TokenAssetID("ethereum", "mainnet", ContractTypeERC20, "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), "ethereum:mainnet:erc20:0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
		{"vault token", TokenAssetID("ethereum", "goerli", ContractTypeVault, "0xdeadbeef"), "ethereum:goerli:vault:0xdeadbeef"},
		{"chain and network only", AssetID{Chain: "bitcoin", Network: "mainnet"}, "bitcoin:mainnet"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Canonical(); got != tt.want {
				t.Errorf("Canonical() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRoundTrip(t *testing.T) {
	ids := []AssetID{
		{Chain: "ethereum", Network: "mainnet"},
		NativeAssetID("polygon", "mainnet"),
		TokenAssetID("ethereum", "mainnet", ContractTypeERC20, "0xdAC17F958D2ee523a2206206994597C13D831ec7"),
		TokenAssetID("ethereum", "sepolia", ContractTypeVault, "0x1234"),
	}

	for _, id := range ids {
		parsed, err := ParseAssetID(id.Canonical())
		if err != nil {
			t.Fatalf("ParseAssetID(%q): %v", id.Canonical(), err)
		}
		if parsed != id {
			t.Errorf("round trip of %q = %+v, want %+v", id.Canonical(), parsed, id)
		}
	}
}

func TestParseCaseSensitive(t *testing.T) {
	upper, err := ParseAssetID("Ethereum:Mainnet:erc20:0xABC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lower, err := ParseAssetID("ethereum:mainnet:erc20:0xabc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if upper == lower {
		t.Error("identifiers differing only in case must not be equal")
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []string{
		"",
		"ethereum",
		"ethereum:",
		":mainnet",
		"ethereum:mainnet:",
		"ethereum::erc20:0xabc",
		"ethereum:mainnet:erc20:",
	}

	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			_, err := ParseAssetID(s)
			if err == nil {
				t.Fatalf("ParseAssetID(%q) succeeded, want error", s)
			}
			if !errors.Is(err, ErrMalformedID) {
				t.Errorf("error = %v, want ErrMalformedID", err)
			}
		})
	}
}
