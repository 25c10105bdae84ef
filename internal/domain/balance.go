package domain

// BalanceSnapshot maps canonical asset identifiers to raw balances in
// smallest units (integer strings). Snapshots are ephemeral: this layer
// always consumes the latest one and never caches them.
type BalanceSnapshot map[string]string

// Lookup returns the raw balance for an asset, or "" if the wallet holds none.
func (s BalanceSnapshot) Lookup(id AssetID) string {
	return s[id.Canonical()]
}
