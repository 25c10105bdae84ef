package market

import (
	"sort"

	"github.com/samber/lo"

	"github.com/earnview/portfolio/internal/domain"
)

// SortedByMarketCap orders catalog assets for display: assets with market
// data come first, ascending by market-cap rank; assets without market data
// follow, ordered lexicographically by (name, symbol). Both orderings are
// stable and the input maps are never mutated.
func SortedByMarketCap(assetsByID map[string]domain.AssetRecord, marketByID map[string]domain.MarketRecord) []domain.AssetRecord {
	ids := lo.Keys(assetsByID)

	ranked := lo.Filter(ids, func(id string, _ int) bool {
		rec, ok := marketByID[id]
		return ok && rec.MarketCapRank != nil
	})
	unranked := lo.Filter(ids, func(id string, _ int) bool {
		rec, ok := marketByID[id]
		return !ok || rec.MarketCapRank == nil
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		return *marketByID[ranked[i]].MarketCapRank < *marketByID[ranked[j]].MarketCapRank
	})
	sort.SliceStable(unranked, func(i, j int) bool {
		a, b := assetsByID[unranked[i]], assetsByID[unranked[j]]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Symbol < b.Symbol
	})

	out := make([]domain.AssetRecord, 0, len(ids))
	for _, id := range append(ranked, unranked...) {
		out = append(out, assetsByID[id])
	}
	return out
}
