package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedID indicates that an asset identifier string does not parse.
var ErrMalformedID = errors.New("malformed asset identifier")

// ContractType classifies how a token is realized on its chain.
type ContractType string

const (
	ContractTypeNative ContractType = "native"
	ContractTypeERC20  ContractType = "erc20"
	ContractTypeVault  ContractType = "vault"
)

// AssetID identifies a fungible asset across chain, network, contract type
// and token dimensions. The zero ContractType/TokenID denote the chain's
// native asset.
type AssetID struct {
	Chain        string       `json:"chain"`
	Network      string       `json:"network"`
	ContractType ContractType `json:"contractType,omitempty"`
	TokenID      string       `json:"tokenId,omitempty"`
}

// Canonical returns the canonical string encoding:
// "chain:network[:contractType[:tokenID]]". Segment order and case are part
// of the contract; two AssetIDs are equal iff their canonical strings are.
func (a AssetID) Canonical() string {
	var b strings.Builder
	b.WriteString(a.Chain)
	b.WriteByte(':')
	b.WriteString(a.Network)
	if a.ContractType != "" {
		b.WriteByte(':')
		b.WriteString(string(a.ContractType))
		if a.TokenID != "" {
			b.WriteByte(':')
			b.WriteString(a.TokenID)
		}
	}
	return b.String()
}

// ParseAssetID parses a canonical identifier string back into its tuple.
// It is the exact inverse of Canonical on the domain of well-formed tuples.
func ParseAssetID(s string) (AssetID, error) {
	parts := strings.SplitN(s, ":", 4)
	if len(parts) < 2 {
		return AssetID{}, fmt.Errorf("%w: %q: chain and network segments required", ErrMalformedID, s)
	}
	for i, p := range parts {
		if p == "" {
			return AssetID{}, fmt.Errorf("%w: %q: empty segment at position %d", ErrMalformedID, s, i)
		}
	}

	id := AssetID{Chain: parts[0], Network: parts[1]}
	if len(parts) > 2 {
		id.ContractType = ContractType(parts[2])
	}
	if len(parts) > 3 {
		id.TokenID = parts[3]
	}
	return id, nil
}

// NativeAssetID returns the identifier of a chain's native asset.
func NativeAssetID(chain, network string) AssetID {
	return AssetID{Chain: chain, Network: network, ContractType: ContractTypeNative}
}

// TokenAssetID returns the identifier of a contract-issued token.
func TokenAssetID(chain, network string, ct ContractType, tokenID string) AssetID {
	return AssetID{Chain: chain, Network: network, ContractType: ct, TokenID: tokenID}
}

// AssetRecord describes a catalog asset. Records are owned by the catalog
// store; all other components hold them by lookup only.
type AssetRecord struct {
	ID          AssetID `json:"id"`
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	Precision   int     `json:"precision"`
	Icon        string  `json:"icon,omitempty"`
	Color       string  `json:"color,omitempty"`
	Description string  `json:"description,omitempty"`
}
